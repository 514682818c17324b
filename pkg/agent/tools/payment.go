package tools

import (
	"context"
	"fmt"
	"time"

	"ai-cservice-be/pkg/agent/backend"
)

const ToolPaymentOperation = "payment_operation"

const (
	PaymentActionPriceProtect = "price_protect"
	PaymentActionQueryRefund  = "query_refund"
	PaymentActionRefundStatus = "refund_status"
)

const priceProtectWindow = 30 * 24 * time.Hour

// PaymentTool handles price-protection requests and refund queries.
type PaymentTool struct {
	orders  backend.OrderSource
	refunds backend.RefundSource
	now     func() time.Time
}

var _ Tool = &PaymentTool{}

func NewPaymentTool(orders backend.OrderSource, refunds backend.RefundSource, now func() time.Time) *PaymentTool {
	if now == nil {
		now = time.Now
	}
	return &PaymentTool{orders: orders, refunds: refunds, now: now}
}

func (t *PaymentTool) Name() string { return ToolPaymentOperation }

func (t *PaymentTool) Description() string {
	return "处理支付相关操作，包括价格保护申请、退款查询、退款进度查询等"
}

func (t *PaymentTool) Parameters() map[string]string {
	return map[string]string{
		"orderId":      "订单号（字符串），必需参数",
		"userId":       "用户ID（字符串），必需参数",
		"action":       "操作类型（字符串）：price_protect(价格保护), query_refund(查询退款), refund_status(退款状态)",
		"currentPrice": "当前商品价格（数字），价格保护时必需",
	}
}

func (t *PaymentTool) Execute(ctx context.Context, params Params) (*Result, error) {
	orderID := params.String("orderId")
	userID := params.String("userId")
	if orderID == "" || userID == "" {
		return nil, fmt.Errorf("订单号和用户ID都是必需参数")
	}

	action := params.String("action")
	if action == "" {
		action = PaymentActionQueryRefund
	}

	switch action {
	case PaymentActionPriceProtect:
		currentPrice, ok := params.Float("currentPrice")
		if !ok {
			return Failure("请提供当前商品价格"), nil
		}
		return t.applyPriceProtection(ctx, orderID, userID, currentPrice)
	case PaymentActionQueryRefund:
		return t.queryRefund(ctx, orderID, userID)
	case PaymentActionRefundStatus:
		return t.queryRefundStatus(ctx, orderID, userID)
	default:
		return Failure("不支持的操作类型: %s", action), nil
	}
}

func (t *PaymentTool) applyPriceProtection(ctx context.Context, orderID, userID string, currentPrice float64) (*Result, error) {
	order, err := t.orders.Order(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	if order == nil {
		return Failure("订单 %s 不存在", orderID), nil
	}

	if order.Status != backend.StatusCompleted {
		return Failure("订单状态为 %s，不适用价格保护政策", order.Status), nil
	}

	priceDiff := order.TotalAmount - currentPrice
	if priceDiff <= 0 {
		return Failure("当前价格 %.2f 元不低于订单价格 %.2f 元，无需价格保护", currentPrice, order.TotalAmount), nil
	}

	now := t.now()
	if now.Sub(order.OrderTime) > priceProtectWindow {
		return Failure("订单已超过30天价格保护期（下单时间：%s）", order.OrderTime.Format("2006-01-02 15:04:05")), nil
	}

	protection := &backend.PriceProtection{
		ProtectID:     fmt.Sprintf("PP%d", now.UnixMilli()),
		OrderID:       orderID,
		UserID:        userID,
		OriginalPrice: order.TotalAmount,
		CurrentPrice:  currentPrice,
		RefundAmount:  priceDiff,
		Status:        "审核通过",
		CreateTime:    now,
		RefundMethod:  order.PaymentMethod,
	}

	return &Result{
		Success:    true,
		Message:    fmt.Sprintf("价格保护申请已通过，将退还差价 %.2f 元", priceDiff),
		Protection: protection,
	}, nil
}

func (t *PaymentTool) queryRefund(ctx context.Context, orderID, userID string) (*Result, error) {
	order, err := t.orders.Order(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	if order == nil {
		return Failure("订单 %s 不存在", orderID), nil
	}

	refund, err := t.findRefund(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return &Result{Success: true, Message: "该订单暂无退款记录", Refunds: []backend.Refund{}}, nil
	}
	return &Result{Success: true, Refunds: []backend.Refund{*refund}}, nil
}

func (t *PaymentTool) queryRefundStatus(ctx context.Context, orderID, userID string) (*Result, error) {
	refund, err := t.findRefund(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return Failure("未找到该订单的退款记录"), nil
	}
	return &Result{Success: true, Refund: refund}, nil
}

func (t *PaymentTool) findRefund(ctx context.Context, orderID, userID string) (*backend.Refund, error) {
	refunds, err := t.refunds.Refunds(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list refunds: %w", err)
	}
	for i := range refunds {
		if refunds[i].OrderID == orderID {
			return &refunds[i], nil
		}
	}
	return nil, nil
}
