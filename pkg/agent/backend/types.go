package backend

import "time"

// Order status values as surfaced to customers.
const (
	StatusPendingPayment = "待付款"
	StatusShipped        = "已发货"
	StatusCompleted      = "已完成"
	StatusCancelled      = "已取消"
	StatusDelivered      = "已签收"
)

type Product struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Address struct {
	Receiver string `json:"receiver"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// ShippingInfo is the logistics summary carried on an order record.
type ShippingInfo struct {
	Company           string     `json:"company"`
	TrackingNumber    string     `json:"trackingNumber"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

type Order struct {
	OrderID       string        `json:"orderId"`
	UserID        string        `json:"userId"`
	Status        string        `json:"status"`
	StatusDesc    string        `json:"statusDesc,omitempty"`
	TotalAmount   float64       `json:"totalAmount"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	OrderTime     time.Time     `json:"orderTime"`
	Products      []Product     `json:"products,omitempty"`
	Address       *Address      `json:"address,omitempty"`
	Shipping      *ShippingInfo `json:"logistics,omitempty"`
	CompletedTime *time.Time    `json:"completedTime,omitempty"`
	ExpireTime    *time.Time    `json:"expireTime,omitempty"`
}

type Route struct {
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Time        time.Time `json:"time"`
	Description string    `json:"description"`
}

type Logistics struct {
	OrderID           string     `json:"orderId"`
	UserID            string     `json:"userId"`
	Company           string     `json:"company"`
	TrackingNumber    string     `json:"trackingNumber"`
	CurrentStatus     string     `json:"currentStatus"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	Routes            []Route    `json:"routes"`
}

type Anomaly struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type ReturnOrder struct {
	ReturnID     string     `json:"returnId"`
	OrderID      string     `json:"orderId"`
	UserID       string     `json:"userId"`
	Reason       string     `json:"reason"`
	RefundMethod string     `json:"refundMethod"`
	Status       string     `json:"status"`
	CreateTime   time.Time  `json:"createTime"`
	AuditTime    *time.Time `json:"auditTime,omitempty"`
	RefundTime   *time.Time `json:"refundTime,omitempty"`
	Products     []Product  `json:"products,omitempty"`
	RefundAmount float64    `json:"refundAmount"`
}

type Refund struct {
	RefundID     string     `json:"refundId"`
	OrderID      string     `json:"orderId"`
	UserID       string     `json:"userId"`
	RefundAmount float64    `json:"refundAmount"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	RefundMethod string     `json:"refundMethod"`
	ApplyTime    time.Time  `json:"applyTime"`
	CompleteTime *time.Time `json:"completeTime,omitempty"`
	Remark       string     `json:"remark,omitempty"`
}

type PriceProtection struct {
	ProtectID     string    `json:"protectId"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	OriginalPrice float64   `json:"originalPrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	RefundAmount  float64   `json:"refundAmount"`
	Status        string    `json:"status"`
	CreateTime    time.Time `json:"createTime"`
	RefundMethod  string    `json:"refundMethod"`
}
