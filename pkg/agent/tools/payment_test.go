package tools

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"ai-cservice-be/pkg/agent/backend"
)

func newPaymentTool() *PaymentTool {
	mock := backend.NewMockWithClock(testClock)
	return NewPaymentTool(mock, mock, testClock)
}

func TestPaymentToolPriceProtect(t *testing.T) {
	tool := newPaymentTool()

	// ORD20240114002 is completed at 599; current price 499 refunds the
	// difference.
	res, err := tool.Execute(context.Background(), Params{
		"orderId":      "ORD20240114002",
		"userId":       "u1",
		"action":       "price_protect",
		"currentPrice": 499.0,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Message)
	}
	if res.Protection == nil {
		t.Fatal("Execute() returned no protection record")
	}
	if math.Abs(res.Protection.RefundAmount-100.0) > 1e-9 {
		t.Errorf("refund amount = %v, want 100.00", res.Protection.RefundAmount)
	}
	if res.Protection.Status != "审核通过" {
		t.Errorf("protection status = %q, want 审核通过", res.Protection.Status)
	}
}

func TestPaymentToolPriceProtectRejections(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{
			name: "order not completed",
			params: Params{
				"orderId": "ORD20240115001", "userId": "u1",
				"action": "price_protect", "currentPrice": 199.0,
			},
		},
		{
			name: "current price not lower",
			params: Params{
				"orderId": "ORD20240114002", "userId": "u1",
				"action": "price_protect", "currentPrice": 599.0,
			},
		},
		{
			name: "missing current price",
			params: Params{
				"orderId": "ORD20240114002", "userId": "u1",
				"action": "price_protect",
			},
		},
		{
			name: "order not found",
			params: Params{
				"orderId": "ORD404", "userId": "u1",
				"action": "price_protect", "currentPrice": 100.0,
			},
		},
	}

	tool := newPaymentTool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tool.Execute(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if res.Success {
				t.Errorf("Execute() succeeded, want policy rejection")
			}
			if res.Message == "" {
				t.Error("rejection carries no message")
			}
		})
	}
}

func TestPaymentToolPriceProtectPastWindow(t *testing.T) {
	mock := backend.NewMockWithClock(testClock)
	lateClock := func() time.Time { return testClock().Add(35 * 24 * time.Hour) }
	tool := NewPaymentTool(mock, mock, lateClock)

	res, err := tool.Execute(context.Background(), Params{
		"orderId":      "ORD20240114002",
		"userId":       "u1",
		"action":       "price_protect",
		"currentPrice": 499.0,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() granted price protection past the 30-day window")
	}
	if !strings.Contains(res.Message, "30天") {
		t.Errorf("failure message = %q, want mention of the 30-day window", res.Message)
	}
}

func TestPaymentToolQueryRefund(t *testing.T) {
	tool := newPaymentTool()

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
		"action":  "query_refund",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success || len(res.Refunds) != 1 {
		t.Fatalf("Execute() = %+v, want one refund record", res)
	}
	if res.Refunds[0].Reason != "价格保护" {
		t.Errorf("refund reason = %q, want 价格保护", res.Refunds[0].Reason)
	}
}

func TestPaymentToolQueryRefundNoRecord(t *testing.T) {
	tool := newPaymentTool()

	// ORD20240112003 exists but has no refund history.
	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240112003",
		"userId":  "u1",
		"action":  "query_refund",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Message)
	}
	if len(res.Refunds) != 0 {
		t.Errorf("Execute() refunds = %+v, want empty", res.Refunds)
	}
}

func TestPaymentToolRefundStatus(t *testing.T) {
	tool := newPaymentTool()
	ctx := context.Background()

	res, err := tool.Execute(ctx, Params{"orderId": "ORD20240114002", "userId": "u1", "action": "refund_status"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success || res.Refund == nil {
		t.Fatalf("Execute() = %+v, want refund record", res)
	}
	if res.Refund.Status != "退款中" {
		t.Errorf("refund status = %q, want 退款中", res.Refund.Status)
	}

	res, err = tool.Execute(ctx, Params{"orderId": "ORD20240112003", "userId": "u1", "action": "refund_status"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() reported status for an order with no refund")
	}
}

func TestPaymentToolMissingParams(t *testing.T) {
	tool := newPaymentTool()

	if _, err := tool.Execute(context.Background(), Params{"userId": "u1"}); err == nil {
		t.Error("Execute() without orderId did not error")
	}
	if _, err := tool.Execute(context.Background(), Params{"orderId": "ORD20240114002"}); err == nil {
		t.Error("Execute() without userId did not error")
	}
}
