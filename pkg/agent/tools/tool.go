package tools

import (
	"context"
	"fmt"

	"ai-cservice-be/pkg/agent/backend"
)

// Params carries tool arguments extracted from a user message. Values
// arrive as strings or numbers depending on the extractor.
type Params map[string]any

func (p Params) String(key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Result is the structured payload every tool returns. Expected failures
// (missing order, policy violations) come back with Success=false and a
// user-facing Message; only malformed invocations produce an error.
type Result struct {
	Success    bool                     `json:"success"`
	Message    string                   `json:"message,omitempty"`
	Order      *backend.Order           `json:"order,omitempty"`
	Orders     []backend.Order          `json:"orders,omitempty"`
	Total      int                      `json:"total,omitempty"`
	Logistics  *backend.Logistics       `json:"logistics,omitempty"`
	Anomalies  []backend.Anomaly        `json:"anomalies,omitempty"`
	Status     string                   `json:"status,omitempty"`
	Return     *backend.ReturnOrder     `json:"returnOrder,omitempty"`
	Refund     *backend.Refund          `json:"refund,omitempty"`
	Refunds    []backend.Refund         `json:"refunds,omitempty"`
	Protection *backend.PriceProtection `json:"protectOrder,omitempty"`
}

func Failure(format string, args ...any) *Result {
	return &Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Tool is one customer-service capability.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]string
	Execute(ctx context.Context, params Params) (*Result, error)
}
