package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-cservice-be/pkg/agent/backend"
)

func newReturnTool() *ReturnTool {
	mock := backend.NewMockWithClock(testClock)
	return NewReturnTool(mock, mock, testClock)
}

func TestReturnToolCreate(t *testing.T) {
	tool := newReturnTool()

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
		"action":  "create",
		"reason":  "质量问题",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Message)
	}
	if res.Return == nil {
		t.Fatal("Execute() returned no return order")
	}
	if res.Return.Status != "待审核" {
		t.Errorf("return status = %q, want 待审核", res.Return.Status)
	}
	if res.Return.Reason != "质量问题" {
		t.Errorf("return reason = %q, want 质量问题", res.Return.Reason)
	}
	if res.Return.RefundAmount != 299.00 {
		t.Errorf("refund amount = %v, want 299.00", res.Return.RefundAmount)
	}
	if res.Return.RefundMethod != "原路退回" {
		t.Errorf("refund method = %q, want default 原路退回", res.Return.RefundMethod)
	}
}

func TestReturnToolCreateRejectsPendingPayment(t *testing.T) {
	tool := newReturnTool()

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240112003",
		"userId":  "u1",
		"action":  "create",
		"reason":  "不想要了",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() created a return for a pending-payment order")
	}
}

func TestReturnToolCreatePastWindow(t *testing.T) {
	// Record source timestamps stay at testClock; the tool evaluates
	// eligibility ten days later, putting every order past the 7-day
	// return window.
	mock := backend.NewMockWithClock(testClock)
	lateClock := func() time.Time { return testClock().Add(10 * 24 * time.Hour) }
	tool := NewReturnTool(mock, mock, lateClock)

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
		"action":  "create",
		"reason":  "质量问题",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() created a return past the 7-day window")
	}
	if !strings.Contains(res.Message, "7天") {
		t.Errorf("failure message = %q, want mention of the 7-day window", res.Message)
	}
}

func TestReturnToolCreateMissingReason(t *testing.T) {
	tool := newReturnTool()

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
		"action":  "create",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() created a return without a reason")
	}
}

func TestReturnToolQuery(t *testing.T) {
	tool := newReturnTool()

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
		"action":  "query",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success || res.Return == nil {
		t.Fatalf("Execute() = %+v, want existing return record", res)
	}
	if res.Return.Status != "审核通过" {
		t.Errorf("return status = %q, want 审核通过", res.Return.Status)
	}
}

func TestReturnToolDefaultActionIsQuery(t *testing.T) {
	tool := newReturnTool()

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success || res.Return == nil {
		t.Errorf("Execute() without action = %+v, want query result", res)
	}
}

func TestReturnToolCancel(t *testing.T) {
	tool := newReturnTool()
	ctx := context.Background()

	// ORD20240112003's return record is still 待审核, so it can cancel.
	res, err := tool.Execute(ctx, Params{"orderId": "ORD20240112003", "userId": "u1", "action": "cancel"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success {
		t.Errorf("cancel of pending return failed: %s", res.Message)
	}

	// ORD20240115001's return record is already approved.
	res, err = tool.Execute(ctx, Params{"orderId": "ORD20240115001", "userId": "u1", "action": "cancel"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("cancel of an approved return succeeded")
	}
}

func TestReturnToolUnsupportedAction(t *testing.T) {
	tool := newReturnTool()

	res, err := tool.Execute(context.Background(), Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
		"action":  "explode",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() accepted an unsupported action")
	}
}
