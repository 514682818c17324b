package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content    string         `gorm:"type:text"`
	Embedding  datatypes.JSON `gorm:"type:jsonb"`
	ChunkIndex int            `gorm:"default:0"` // 0-based index for ordering
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
