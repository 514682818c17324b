package tools

import (
	"context"
	"fmt"
	"time"

	"ai-cservice-be/pkg/agent/backend"
)

const ToolProcessReturn = "process_return"

const (
	ReturnActionCreate = "create"
	ReturnActionQuery  = "query"
	ReturnActionCancel = "cancel"
)

const returnWindow = 7 * 24 * time.Hour

// ReturnTool handles return requests: eligibility-checked creation,
// progress queries, and cancellation.
type ReturnTool struct {
	orders  backend.OrderSource
	returns backend.ReturnSource
	now     func() time.Time
}

var _ Tool = &ReturnTool{}

func NewReturnTool(orders backend.OrderSource, returns backend.ReturnSource, now func() time.Time) *ReturnTool {
	if now == nil {
		now = time.Now
	}
	return &ReturnTool{orders: orders, returns: returns, now: now}
}

func (t *ReturnTool) Name() string { return ToolProcessReturn }

func (t *ReturnTool) Description() string {
	return "处理用户的退货申请，包括创建退货单、检查退货资格、查询退货进度等"
}

func (t *ReturnTool) Parameters() map[string]string {
	return map[string]string{
		"orderId":      "订单号（字符串），创建退货时必需",
		"userId":       "用户ID（字符串），必需参数",
		"action":       "操作类型（字符串）：create(创建退货), query(查询退货进度), cancel(取消退货)",
		"reason":       "退货原因（字符串），创建退货时必需",
		"refundMethod": "退款方式（字符串）：原路退回、账户余额等，创建退货时可选",
	}
}

func (t *ReturnTool) Execute(ctx context.Context, params Params) (*Result, error) {
	userID := params.String("userId")
	if userID == "" {
		return nil, fmt.Errorf("用户ID是必需参数")
	}

	action := params.String("action")
	if action == "" {
		action = ReturnActionQuery
	}

	orderID := params.String("orderId")

	switch action {
	case ReturnActionCreate:
		return t.createReturn(ctx, orderID, userID, params.String("reason"), params.String("refundMethod"))
	case ReturnActionQuery:
		return t.queryReturn(ctx, orderID, userID)
	case ReturnActionCancel:
		return t.cancelReturn(ctx, orderID, userID)
	default:
		return Failure("不支持的操作类型: %s", action), nil
	}
}

func (t *ReturnTool) createReturn(ctx context.Context, orderID, userID, reason, refundMethod string) (*Result, error) {
	if orderID == "" || reason == "" {
		return Failure("订单号和退货原因是必需参数"), nil
	}

	order, err := t.orders.Order(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	if order == nil {
		return Failure("订单 %s 不存在，无法退货", orderID), nil
	}

	now := t.now()
	if now.Sub(order.OrderTime) > returnWindow {
		return Failure("订单已超过7天退货期（下单时间：%s），无法退货", order.OrderTime.Format("2006-01-02 15:04:05")), nil
	}

	if order.Status == backend.StatusPendingPayment || order.Status == backend.StatusCancelled {
		return Failure("订单状态为 %s，无法退货", order.Status), nil
	}

	if refundMethod == "" {
		refundMethod = "原路退回"
	}

	returnOrder := &backend.ReturnOrder{
		ReturnID:     fmt.Sprintf("RTN%d", now.UnixMilli()),
		OrderID:      orderID,
		UserID:       userID,
		Reason:       reason,
		RefundMethod: refundMethod,
		Status:       "待审核",
		CreateTime:   now,
		Products:     order.Products,
		RefundAmount: order.TotalAmount,
	}

	return &Result{
		Success: true,
		Message: "退货申请已提交，等待商家审核",
		Return:  returnOrder,
	}, nil
}

func (t *ReturnTool) queryReturn(ctx context.Context, orderID, userID string) (*Result, error) {
	returnOrder, err := t.findReturn(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if returnOrder == nil {
		return Failure("未找到该订单的退货记录"), nil
	}
	return &Result{Success: true, Return: returnOrder}, nil
}

func (t *ReturnTool) cancelReturn(ctx context.Context, orderID, userID string) (*Result, error) {
	returnOrder, err := t.findReturn(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if returnOrder == nil {
		return Failure("未找到该订单的退货记录"), nil
	}
	if returnOrder.Status != "待审核" {
		return Failure("退货状态为 %s，无法取消", returnOrder.Status), nil
	}
	return &Result{Success: true, Message: "退货申请已取消"}, nil
}

func (t *ReturnTool) findReturn(ctx context.Context, orderID, userID string) (*backend.ReturnOrder, error) {
	returns, err := t.returns.Returns(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	for i := range returns {
		if returns[i].OrderID == orderID {
			return &returns[i], nil
		}
	}
	return nil, nil
}
