package planner

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-cservice-be/pkg/agent/backend"
	"ai-cservice-be/pkg/agent/tools"
)

var testClock = func() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()

	mock := backend.NewMockWithClock(testClock)
	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		tools.NewOrderTool(mock),
		tools.NewLogisticsTool(mock, testClock),
		tools.NewReturnTool(mock, mock, testClock),
		tools.NewPaymentTool(mock, mock, testClock),
	} {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("register %s: %v", tool.Name(), err)
		}
	}
	return NewPlanner(registry)
}

func TestIdentifyTaskType(t *testing.T) {
	p := newTestPlanner(t)

	tests := []struct {
		name    string
		message string
		params  tools.Params
		want    string
	}{
		{"complaint keyword", "我要投诉这个订单", tools.Params{}, TaskOrderComplaint},
		{"return keyword", "帮我退货", tools.Params{}, TaskReturnProcess},
		{"price keyword", "降价了补差价", tools.Params{}, TaskPriceProtection},
		{"logistics keyword", "快递好几天没动了", tools.Params{}, TaskLogisticsIssue},
		{"reason param fallback", "帮帮我", tools.Params{"reason": "质量问题"}, TaskReturnProcess},
		{"price param fallback", "帮帮我", tools.Params{"currentPrice": 499.0}, TaskPriceProtection},
		{"no task", "你们几点上班", tools.Params{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IdentifyTaskType(tt.params, tt.message); got != tt.want {
				t.Errorf("IdentifyTaskType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecuteTaskOrderComplaint(t *testing.T) {
	p := newTestPlanner(t)

	result, err := p.ExecuteTask(context.Background(), TaskOrderComplaint, tools.Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if !result.Success {
		t.Errorf("ExecuteTask() success = false: %+v", result.Steps)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("ExecuteTask() recorded %d steps, want 3", len(result.Steps))
	}

	// Shipped order satisfies the logistics condition, then hands off.
	wantStatuses := []string{StepCompleted, StepCompleted, StepEscalated}
	for i, want := range wantStatuses {
		if result.Steps[i].Status != want {
			t.Errorf("step %d status = %q, want %q", i, result.Steps[i].Status, want)
		}
	}
}

func TestExecuteTaskSkipsConditionalStep(t *testing.T) {
	p := newTestPlanner(t)

	// Completed order: the logistics-lookup condition (shipped or in
	// transit) is false, so that step must be recorded as skipped.
	result, err := p.ExecuteTask(context.Background(), TaskOrderComplaint, tools.Params{
		"orderId": "ORD20240114002",
		"userId":  "u1",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("ExecuteTask() recorded %d steps, want 3 (skipped steps must be recorded)", len(result.Steps))
	}
	if result.Steps[1].Status != StepSkipped {
		t.Errorf("step 1 status = %q, want %q", result.Steps[1].Status, StepSkipped)
	}
	if !result.Success {
		t.Error("skipped step must not affect overall success")
	}
}

func TestExecuteTaskReturnProcess(t *testing.T) {
	p := newTestPlanner(t)

	result, err := p.ExecuteTask(context.Background(), TaskReturnProcess, tools.Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
		"reason":  "质量问题",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("ExecuteTask() success = false: %+v", result.Steps)
	}

	last := result.Steps[len(result.Steps)-1]
	if last.Status != StepCompleted || last.Result == nil || last.Result.Return == nil {
		t.Fatalf("create-return step = %+v, want completed with return order", last)
	}
	if last.Result.Return.Reason != "质量问题" {
		t.Errorf("return reason = %q, want 质量问题", last.Result.Return.Reason)
	}
}

func TestExecuteTaskReturnProcessPendingPayment(t *testing.T) {
	p := newTestPlanner(t)

	// A pending-payment order must surface the policy violation as a
	// failed create-return step, not a silent skip.
	result, err := p.ExecuteTask(context.Background(), TaskReturnProcess, tools.Params{
		"orderId": "ORD20240112003",
		"userId":  "u1",
		"reason":  "不想要了",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if result.Success {
		t.Error("ExecuteTask() success = true for an ineligible order")
	}

	last := result.Steps[len(result.Steps)-1]
	if last.Status != StepFailed {
		t.Errorf("create-return step status = %q, want %q", last.Status, StepFailed)
	}
}

func TestExecuteTaskPriceProtection(t *testing.T) {
	p := newTestPlanner(t)

	result, err := p.ExecuteTask(context.Background(), TaskPriceProtection, tools.Params{
		"orderId":      "ORD20240114002",
		"userId":       "u1",
		"currentPrice": 499.0,
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("ExecuteTask() success = false: %+v", result.Steps)
	}

	last := result.Steps[len(result.Steps)-1]
	if last.Result == nil || last.Result.Protection == nil {
		t.Fatalf("price-protect step = %+v, want protection record", last)
	}
	if last.Result.Protection.RefundAmount != 100.0 {
		t.Errorf("refund amount = %v, want 100.00", last.Result.Protection.RefundAmount)
	}
}

func TestExecuteTaskLogisticsIssueEscalation(t *testing.T) {
	p := newTestPlanner(t)

	result, err := p.ExecuteTask(context.Background(), TaskLogisticsIssue, tools.Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}

	last := result.Steps[len(result.Steps)-1]
	if last.Status != StepEscalated {
		t.Fatalf("final step status = %q, want %q", last.Status, StepEscalated)
	}
	if !strings.Contains(last.Message, "人工客服") {
		t.Errorf("escalation message = %q, want human-handoff text", last.Message)
	}
}

func TestExecuteTaskUnknownType(t *testing.T) {
	p := newTestPlanner(t)

	if _, err := p.ExecuteTask(context.Background(), "no_such_task", tools.Params{}); err == nil {
		t.Error("ExecuteTask() with unknown type did not error")
	}
}

func TestExecuteTaskRecordsToolFailure(t *testing.T) {
	p := newTestPlanner(t)

	// Unknown order: step one fails, step two is skipped for lack of an
	// order, and the task still completes with success=false.
	result, err := p.ExecuteTask(context.Background(), TaskReturnProcess, tools.Params{
		"orderId": "ORD404",
		"userId":  "u1",
		"reason":  "质量问题",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if result.Success {
		t.Error("ExecuteTask() success = true despite failed step")
	}
	if len(result.Steps) != 2 {
		t.Fatalf("ExecuteTask() recorded %d steps, want 2", len(result.Steps))
	}
	if result.Steps[0].Status != StepFailed {
		t.Errorf("step 0 status = %q, want %q", result.Steps[0].Status, StepFailed)
	}
	if result.Steps[1].Status != StepSkipped {
		t.Errorf("step 1 status = %q, want %q", result.Steps[1].Status, StepSkipped)
	}
}

func TestGenerateReport(t *testing.T) {
	p := newTestPlanner(t)

	result, err := p.ExecuteTask(context.Background(), TaskOrderComplaint, tools.Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}

	report := GenerateReport(result)
	for _, want := range []string{"处理订单投诉", "1. 查询订单信息", "订单状态：已发货", "人工客服"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	// Same inputs, same report.
	again, err := p.ExecuteTask(context.Background(), TaskOrderComplaint, tools.Params{
		"orderId": "ORD20240115001",
		"userId":  "u1",
	})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if GenerateReport(again) != report {
		t.Error("GenerateReport() not deterministic for identical inputs")
	}
}
