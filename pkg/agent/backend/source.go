package backend

import "context"

// Record sources back the customer-service tools. A nil record with a
// nil error means "not found"; tools translate that into a structured
// failure payload instead of an error.

type OrderSource interface {
	Order(ctx context.Context, userID, orderID string) (*Order, error)
	Orders(ctx context.Context, userID string) ([]Order, error)
}

type LogisticsSource interface {
	Track(ctx context.Context, userID, orderID string) (*Logistics, error)
}

type ReturnSource interface {
	Returns(ctx context.Context, userID string) ([]ReturnOrder, error)
}

type RefundSource interface {
	Refunds(ctx context.Context, userID string) ([]Refund, error)
}
