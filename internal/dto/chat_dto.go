package dto

import (
	"encoding/json"
	"time"
)

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionId string `json:"sessionId,omitempty"`
	UserId    string `json:"userId,omitempty"`
}

type SourceDTO struct {
	DocumentName string  `json:"documentName"`
	Content      string  `json:"content"`
	Score        float64 `json:"score"`
}

type ChatResponse struct {
	Answer     string          `json:"answer"`
	SessionId  string          `json:"sessionId"`
	Mode       string          `json:"mode"` // "rag" | "tool" | "task" | "escalate"
	Sources    []SourceDTO     `json:"sources,omitempty"`
	ToolResult json.RawMessage `json:"toolResult,omitempty"`
	TaskResult json.RawMessage `json:"taskResult,omitempty"`
}

type ChatTurnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode,omitempty"`
	Sources   []string  `json:"sources,omitempty"`
}

type ChatHistoryResponse struct {
	SessionId string        `json:"sessionId"`
	Turns     []ChatTurnDTO `json:"turns"`
}
