package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId uuid.UUID `gorm:"type:uuid;index"`
	Content    string
	// Embedding is nil when the stored vector could not be decoded;
	// search scores such chunks as zero instead of failing.
	Embedding  []float32
	ChunkIndex int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

// ScoredChunk is a chunk annotated with its similarity to a query and
// the name of the document it came from.
type ScoredChunk struct {
	Chunk        *DocumentChunk
	DocumentName string
	Score        float64
}
