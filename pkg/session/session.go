package session

import (
	"context"
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation. Assistant turns carry the mode
// that produced them and, depending on that mode, the supporting sources
// or the raw tool/task payload.
type Turn struct {
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	Timestamp  time.Time       `json:"timestamp"`
	Mode       string          `json:"mode,omitempty"`
	Sources    []string        `json:"sources,omitempty"`
	ToolResult json.RawMessage `json:"tool_result,omitempty"`
	TaskResult json.RawMessage `json:"task_result,omitempty"`
}

// Store holds per-(user, session) conversation history with a sliding
// TTL that is refreshed on every write. An expired or absent session
// reads back as an empty history, never an error.
//
// Appends are read-modify-write; concurrent appends to the same session
// resolve as last writer wins.
type Store interface {
	Get(ctx context.Context, userID, sessionID string) ([]Turn, error)
	Append(ctx context.Context, userID, sessionID string, turns ...Turn) error
	Delete(ctx context.Context, userID, sessionID string) error
}
