package tools

import (
	"context"
	"testing"
	"time"

	"ai-cservice-be/pkg/agent/backend"
)

var testClock = func() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestOrderToolLookup(t *testing.T) {
	tool := NewOrderTool(backend.NewMockWithClock(testClock))
	ctx := context.Background()

	res, err := tool.Execute(ctx, Params{"orderId": "ORD20240115001", "userId": "u1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Message)
	}
	if res.Order == nil || res.Order.OrderID != "ORD20240115001" {
		t.Fatalf("Execute() order = %+v, want ORD20240115001", res.Order)
	}
	if res.Order.Status != backend.StatusShipped {
		t.Errorf("order status = %q, want %q", res.Order.Status, backend.StatusShipped)
	}
}

func TestOrderToolListAll(t *testing.T) {
	tool := NewOrderTool(backend.NewMockWithClock(testClock))

	res, err := tool.Execute(context.Background(), Params{"userId": "u1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Message)
	}
	if res.Total != 3 || len(res.Orders) != 3 {
		t.Errorf("Execute() total = %d, orders = %d; want 3", res.Total, len(res.Orders))
	}
}

func TestOrderToolUnknownOrder(t *testing.T) {
	tool := NewOrderTool(backend.NewMockWithClock(testClock))

	res, err := tool.Execute(context.Background(), Params{"orderId": "ORD404", "userId": "u1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() succeeded for a nonexistent order")
	}
	if res.Message == "" {
		t.Error("Execute() failure has no message")
	}
}

func TestOrderToolRequiresUserID(t *testing.T) {
	tool := NewOrderTool(backend.NewMockWithClock(testClock))

	if _, err := tool.Execute(context.Background(), Params{"orderId": "ORD20240115001"}); err == nil {
		t.Error("Execute() without userId did not error")
	}
}
