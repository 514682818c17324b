package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id        uuid.UUID
	Name      string
	Content   string
	Size      int64
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
