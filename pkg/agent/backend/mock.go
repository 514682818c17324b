package backend

import (
	"context"
	"time"
)

// Mock serves canned order, logistics, return and refund records for
// any user, standing in for the real order-system APIs. Timestamps are
// generated relative to the injected clock so age-based policies (7-day
// returns, 30-day price protection) behave the same on any date.
type Mock struct {
	now func() time.Time
}

var (
	_ OrderSource     = &Mock{}
	_ LogisticsSource = &Mock{}
	_ ReturnSource    = &Mock{}
	_ RefundSource    = &Mock{}
)

func NewMock() *Mock {
	return &Mock{now: time.Now}
}

// NewMockWithClock fixes the reference time used for generated records.
func NewMockWithClock(now func() time.Time) *Mock {
	return &Mock{now: now}
}

func (m *Mock) Order(_ context.Context, userID, orderID string) (*Order, error) {
	for _, o := range m.mockOrders(userID) {
		if o.OrderID == orderID {
			order := o
			return &order, nil
		}
	}
	return nil, nil
}

func (m *Mock) Orders(_ context.Context, userID string) ([]Order, error) {
	return m.mockOrders(userID), nil
}

func (m *Mock) Track(_ context.Context, userID, orderID string) (*Logistics, error) {
	now := m.now()

	switch orderID {
	case "ORD20240115001":
		eta := now.Add(24 * time.Hour)
		return &Logistics{
			OrderID:           orderID,
			UserID:            userID,
			Company:           "顺丰速运",
			TrackingNumber:    "SF1234567890",
			CurrentStatus:     "派送中",
			EstimatedDelivery: &eta,
			Routes: []Route{
				{Status: "已揽收", Location: "北京市朝阳区", Time: now.Add(-48 * time.Hour), Description: "快递员已揽收包裹"},
				{Status: "运输中", Location: "北京市转运中心", Time: now.Add(-44 * time.Hour), Description: "包裹已到达北京转运中心"},
				{Status: "运输中", Location: "河北省石家庄市转运中心", Time: now.Add(-30 * time.Hour), Description: "包裹已到达石家庄转运中心"},
				{Status: "派送中", Location: "河北省唐山市路南区", Time: now.Add(-4 * time.Hour), Description: "快递员正在派送中"},
			},
		}, nil
	case "ORD20240114002":
		return &Logistics{
			OrderID:        orderID,
			UserID:         userID,
			Company:        "顺丰速运",
			TrackingNumber: "SF9876543210",
			CurrentStatus:  StatusDelivered,
			Routes: []Route{
				{Status: "已揽收", Location: "北京市朝阳区", Time: now.Add(-70 * time.Hour), Description: "快递员已揽收包裹"},
				{Status: "运输中", Location: "北京市转运中心", Time: now.Add(-66 * time.Hour), Description: "包裹已到达北京转运中心"},
				{Status: "派送中", Location: "北京市朝阳区", Time: now.Add(-28 * time.Hour), Description: "快递员正在派送中"},
				{Status: StatusDelivered, Location: "北京市朝阳区", Time: now.Add(-24 * time.Hour), Description: "包裹已签收，签收人：本人"},
			},
		}, nil
	}
	return nil, nil
}

func (m *Mock) Returns(_ context.Context, userID string) ([]ReturnOrder, error) {
	now := m.now()
	audit := now.Add(-20 * time.Hour)
	refundTime := now.Add(-2 * time.Hour)

	return []ReturnOrder{
		{
			ReturnID:     "RTN202401160001",
			OrderID:      "ORD20240115001",
			UserID:       userID,
			Reason:       "商品有质量问题",
			RefundMethod: "原路退回",
			Status:       "审核通过",
			CreateTime:   now.Add(-24 * time.Hour),
			AuditTime:    &audit,
			RefundTime:   &refundTime,
			RefundAmount: 299.00,
		},
		{
			ReturnID:     "RTN202401160002",
			OrderID:      "ORD20240112003",
			UserID:       userID,
			Reason:       "不想要了",
			RefundMethod: "账户余额",
			Status:       "待审核",
			CreateTime:   now.Add(-10 * time.Hour),
			RefundAmount: 1299.00,
		},
	}, nil
}

func (m *Mock) Refunds(_ context.Context, userID string) ([]Refund, error) {
	now := m.now()
	complete := now.Add(-20 * time.Hour)

	return []Refund{
		{
			RefundID:     "REF202401170001",
			OrderID:      "ORD20240115001",
			UserID:       userID,
			RefundAmount: 50.00,
			Reason:       "价格保护",
			Status:       "退款成功",
			RefundMethod: "原路退回",
			ApplyTime:    now.Add(-24 * time.Hour),
			CompleteTime: &complete,
			Remark:       "30天内价格保护政策",
		},
		{
			RefundID:     "REF202401160002",
			OrderID:      "ORD20240114002",
			UserID:       userID,
			RefundAmount: 599.00,
			Reason:       "退货退款",
			Status:       "退款中",
			RefundMethod: "原路退回",
			ApplyTime:    now.Add(-9 * time.Hour),
			Remark:       "商品有质量问题",
		},
	}, nil
}

func (m *Mock) mockOrders(userID string) []Order {
	now := m.now()

	shippedETA := now.Add(24 * time.Hour)
	completed := now.Add(-24 * time.Hour)
	expired := now.Add(-119 * time.Hour)

	return []Order{
		{
			OrderID:       "ORD20240115001",
			UserID:        userID,
			Status:        StatusShipped,
			StatusDesc:    "商品已出库，等待收货",
			TotalAmount:   299.00,
			PaymentMethod: "微信支付",
			OrderTime:     now.Add(-48 * time.Hour),
			Products: []Product{
				{Name: "智能蓝牙耳机", SKU: "BT001", Price: 299.00, Quantity: 1},
			},
			Address: &Address{
				Receiver: "张三",
				Phone:    "138****1234",
				Address:  "北京市朝阳区XX路XX号",
			},
			Shipping: &ShippingInfo{
				Company:           "顺丰速运",
				TrackingNumber:    "SF1234567890",
				EstimatedDelivery: &shippedETA,
			},
		},
		{
			OrderID:       "ORD20240114002",
			UserID:        userID,
			Status:        StatusCompleted,
			StatusDesc:    "订单已完成",
			TotalAmount:   599.00,
			PaymentMethod: "支付宝",
			OrderTime:     now.Add(-72 * time.Hour),
			Products: []Product{
				{Name: "智能手表 Pro", SKU: "WATCH001", Price: 599.00, Quantity: 1},
			},
			Address: &Address{
				Receiver: "张三",
				Phone:    "138****1234",
				Address:  "北京市朝阳区XX路XX号",
			},
			CompletedTime: &completed,
		},
		{
			OrderID:     "ORD20240112003",
			UserID:      userID,
			Status:      StatusPendingPayment,
			StatusDesc:  "订单已创建，请在30分钟内完成支付",
			TotalAmount: 1299.00,
			OrderTime:   now.Add(-120 * time.Hour),
			Products: []Product{
				{Name: "笔记本电脑 15.6寸", SKU: "LAPTOP001", Price: 1299.00, Quantity: 1},
			},
			ExpireTime: &expired,
		},
	}
}
