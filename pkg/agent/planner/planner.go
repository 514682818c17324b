package planner

import (
	"context"
	"fmt"
	"strings"

	"ai-cservice-be/pkg/agent/backend"
	"ai-cservice-be/pkg/agent/tools"
)

// Task types the planner can execute.
const (
	TaskOrderComplaint  = "order_complaint"
	TaskReturnProcess   = "return_process"
	TaskPriceProtection = "price_protection"
	TaskLogisticsIssue  = "logistics_issue"
)

// Step statuses recorded in a task result.
const (
	StepCompleted = "completed"
	StepFailed    = "failed"
	StepSkipped   = "skipped"
	StepEscalated = "escalate"
)

// Context accumulates the most recent order, logistics and anomaly data
// across steps, so later steps can gate on or phrase from earlier
// results.
type Context struct {
	Order     *backend.Order
	Logistics *backend.Logistics
	Anomalies []backend.Anomaly
}

type step struct {
	description string
	tool        string
	buildParams func(tools.Params) tools.Params
	// condition gates a tool step on the accumulated context; a false
	// result records the step as skipped without affecting success.
	condition func(*Context) bool
	// escalate marks a human-handoff step; the function renders the
	// handoff message from the accumulated context.
	escalate func(*Context) string
}

type template struct {
	description string
	steps       []step
}

type StepResult struct {
	Step    string        `json:"step"`
	Status  string        `json:"status"`
	Result  *tools.Result `json:"result,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type TaskResult struct {
	TaskType    string       `json:"taskType"`
	Description string       `json:"description"`
	Steps       []StepResult `json:"steps"`
	Success     bool         `json:"success"`
}

// Planner decomposes a recognized task into an ordered step list and
// runs it against the tool registry.
type Planner struct {
	registry  *tools.Registry
	templates map[string]template
}

func NewPlanner(registry *tools.Registry) *Planner {
	p := &Planner{registry: registry}
	p.templates = map[string]template{
		TaskOrderComplaint: {
			description: "处理订单投诉",
			steps: []step{
				{
					description: "查询订单信息",
					tool:        tools.ToolQueryOrder,
					buildParams: passOrderParams,
				},
				{
					description: "查询物流信息",
					tool:        tools.ToolQueryLogistics,
					buildParams: passOrderParams,
					condition: func(ctx *Context) bool {
						return ctx.Order != nil &&
							(ctx.Order.Status == backend.StatusShipped || ctx.Order.Status == "运输中")
					},
				},
				{
					description: "转接人工客服处理投诉",
					escalate: func(*Context) string {
						return "已收集订单和物流信息，正在为您转接人工客服处理..."
					},
				},
			},
		},
		TaskReturnProcess: {
			description: "处理退货流程",
			steps: []step{
				{
					description: "查询订单信息",
					tool:        tools.ToolQueryOrder,
					buildParams: passOrderParams,
				},
				{
					// The return tool enforces the eligibility policy
					// itself, so an ineligible order records a failed
					// step rather than a silent skip.
					description: "创建退货申请",
					tool:        tools.ToolProcessReturn,
					buildParams: func(params tools.Params) tools.Params {
						reason := params.String("reason")
						if reason == "" {
							reason = "用户未提供原因"
						}
						return tools.Params{
							"orderId": params["orderId"],
							"userId":  params["userId"],
							"action":  tools.ReturnActionCreate,
							"reason":  reason,
						}
					},
					condition: func(ctx *Context) bool {
						return ctx.Order != nil
					},
				},
			},
		},
		TaskPriceProtection: {
			description: "处理价格保护申请",
			steps: []step{
				{
					description: "查询订单信息",
					tool:        tools.ToolQueryOrder,
					buildParams: passOrderParams,
				},
				{
					description: "申请价格保护",
					tool:        tools.ToolPaymentOperation,
					buildParams: func(params tools.Params) tools.Params {
						return tools.Params{
							"orderId":      params["orderId"],
							"userId":       params["userId"],
							"action":       tools.PaymentActionPriceProtect,
							"currentPrice": params["currentPrice"],
						}
					},
				},
			},
		},
		TaskLogisticsIssue: {
			description: "处理物流异常",
			steps: []step{
				{
					description: "查询物流信息",
					tool:        tools.ToolQueryLogistics,
					buildParams: passOrderParams,
				},
				{
					description: "转接人工客服",
					escalate: func(ctx *Context) string {
						if len(ctx.Anomalies) > 0 {
							descriptions := make([]string, len(ctx.Anomalies))
							for i, a := range ctx.Anomalies {
								descriptions[i] = a.Description
							}
							return fmt.Sprintf("检测到物流异常：%s，正在为您转接人工客服处理...", strings.Join(descriptions, "；"))
						}
						return "正在为您转接人工客服处理物流问题..."
					},
				},
			},
		},
	}
	return p
}

func passOrderParams(params tools.Params) tools.Params {
	return tools.Params{
		"orderId": params["orderId"],
		"userId":  params["userId"],
	}
}

// IdentifyTaskType picks a template by message keywords, falling back
// to parameter shape. Returns "" when no template applies.
func (p *Planner) IdentifyTaskType(params tools.Params, message string) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, "投诉", "问题", "不满意"):
		return TaskOrderComplaint
	case containsAny(lower, "退货", "退换货"):
		return TaskReturnProcess
	case containsAny(lower, "降价", "价格保护", "差价"):
		return TaskPriceProtection
	case containsAny(lower, "物流", "快递", "配送", "没收到"):
		return TaskLogisticsIssue
	}

	if params.String("reason") != "" {
		return TaskReturnProcess
	}
	if _, ok := params.Float("currentPrice"); ok {
		return TaskPriceProtection
	}
	return ""
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// ExecuteTask runs every applicable step of the template in order.
// Per-step failures are recorded, never propagated, so the task always
// completes; overall success requires no failed step.
func (p *Planner) ExecuteTask(ctx context.Context, taskType string, params tools.Params) (*TaskResult, error) {
	tmpl, ok := p.templates[taskType]
	if !ok {
		return nil, fmt.Errorf("unknown task type: %s", taskType)
	}

	result := &TaskResult{
		TaskType:    taskType,
		Description: tmpl.description,
		Steps:       make([]StepResult, 0, len(tmpl.steps)),
	}
	taskCtx := &Context{}

	for _, s := range tmpl.steps {
		if s.escalate != nil {
			result.Steps = append(result.Steps, StepResult{
				Step:    s.description,
				Status:  StepEscalated,
				Message: s.escalate(taskCtx),
			})
			continue
		}

		if s.condition != nil && !s.condition(taskCtx) {
			result.Steps = append(result.Steps, StepResult{
				Step:   s.description,
				Status: StepSkipped,
			})
			continue
		}

		toolResult, err := p.registry.Invoke(ctx, s.tool, s.buildParams(params))
		if err != nil {
			result.Steps = append(result.Steps, StepResult{
				Step:   s.description,
				Status: StepFailed,
				Error:  err.Error(),
			})
			continue
		}

		status := StepCompleted
		if !toolResult.Success {
			status = StepFailed
		}
		result.Steps = append(result.Steps, StepResult{
			Step:   s.description,
			Status: status,
			Result: toolResult,
		})

		if toolResult.Order != nil {
			taskCtx.Order = toolResult.Order
		}
		if toolResult.Logistics != nil {
			taskCtx.Logistics = toolResult.Logistics
		}
		if toolResult.Anomalies != nil {
			taskCtx.Anomalies = toolResult.Anomalies
		}
	}

	result.Success = true
	for _, s := range result.Steps {
		if s.Status == StepFailed {
			result.Success = false
			break
		}
	}
	return result, nil
}

// GenerateReport renders a step-by-step execution summary.
func GenerateReport(result *TaskResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "已为您执行任务：%s\n\n", result.Description)

	for i, s := range result.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Step)

		switch s.Status {
		case StepEscalated:
			fmt.Fprintf(&b, "   %s\n", s.Message)
		case StepSkipped:
			b.WriteString("   ⏭️ 条件不满足，已跳过\n")
		case StepCompleted:
			b.WriteString("   ✅ 完成\n")
			if s.Result != nil {
				if s.Result.Order != nil {
					fmt.Fprintf(&b, "   订单状态：%s\n", s.Result.Order.Status)
				}
				if s.Result.Logistics != nil {
					fmt.Fprintf(&b, "   物流状态：%s\n", s.Result.Logistics.CurrentStatus)
				}
				if s.Result.Message != "" {
					fmt.Fprintf(&b, "   %s\n", s.Result.Message)
				}
			}
		case StepFailed:
			reason := s.Error
			if reason == "" && s.Result != nil {
				reason = s.Result.Message
			}
			fmt.Fprintf(&b, "   ❌ 失败：%s\n", reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}
