package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type IngestDocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ChunkCount int       `json:"chunkCount"`
}

type DocumentResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Size      int64      `json:"size"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type DocumentDetailResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	Size       int64      `json:"size"`
	ChunkCount int        `json:"chunkCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

type SearchResultDTO struct {
	DocumentName string  `json:"documentName"`
	Content      string  `json:"content"`
	Score        float64 `json:"score"`
}

type SearchResponse struct {
	Query   string            `json:"query"`
	Results []SearchResultDTO `json:"results"`
}

type KnowledgeStatsResponse struct {
	DocumentCount int64 `json:"documentCount"`
	ChunkCount    int64 `json:"chunkCount"`
}
