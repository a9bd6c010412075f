package domain

import "time"

type OrderCreatedEvent struct {
	OrderID   string      `json:"orderId"`
	Username  string      `json:"username"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

type OrderPaymentFailedEvent struct {
	OrderID  string    `json:"orderId"`
	Username string    `json:"username"`
	Total    float64   `json:"total"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failedAt"`
}
