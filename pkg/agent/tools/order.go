package tools

import (
	"context"
	"fmt"

	"ai-cservice-be/pkg/agent/backend"
)

const ToolQueryOrder = "query_order"

// OrderTool looks up a single order or a user's full order list.
type OrderTool struct {
	orders backend.OrderSource
}

var _ Tool = &OrderTool{}

func NewOrderTool(orders backend.OrderSource) *OrderTool {
	return &OrderTool{orders: orders}
}

func (t *OrderTool) Name() string { return ToolQueryOrder }

func (t *OrderTool) Description() string {
	return "查询用户的订单信息，包括订单状态、商品详情、下单时间等"
}

func (t *OrderTool) Parameters() map[string]string {
	return map[string]string{
		"orderId": "订单号（字符串），如果未提供则查询用户所有订单",
		"userId":  "用户ID（字符串），必需参数",
	}
}

func (t *OrderTool) Execute(ctx context.Context, params Params) (*Result, error) {
	userID := params.String("userId")
	if userID == "" {
		return nil, fmt.Errorf("用户ID是必需参数")
	}

	orderID := params.String("orderId")
	if orderID != "" {
		order, err := t.orders.Order(ctx, userID, orderID)
		if err != nil {
			return nil, fmt.Errorf("query order: %w", err)
		}
		if order == nil {
			return Failure("订单 %s 不存在或不属于该用户", orderID), nil
		}
		return &Result{Success: true, Order: order}, nil
	}

	orders, err := t.orders.Orders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &Result{Success: true, Orders: orders, Total: len(orders)}, nil
}
