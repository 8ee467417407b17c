// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer that move them.
package queue

// Queue names, one per event type.  Routing key equals queue name on the
// default exchange.
const (
	QueueBookingCreated       = "booking.created"
	QueueBookingStatusChanged = "booking.status_changed"
	QueueOrderCreated         = "order.created"
	QueueOrderStatusChanged   = "order.status_changed"
)

// BookingCreatedEvent is published after a booking commits.  It carries
// enough for downstream consumers to notify or log without querying the
// primary database.
type BookingCreatedEvent struct {
	BookingID     string `json:"booking_id"`
	ServiceID     uint64 `json:"service_id"`
	SellerID      uint64 `json:"seller_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// BookingStatusChangedEvent is published after a booking transition
// commits, whether driven by the seller or by the customer's cancellation.
type BookingStatusChangedEvent struct {
	BookingID      string `json:"booking_id"`
	SellerID       uint64 `json:"seller_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	StartsAt       string `json:"starts_at"`
	ChangedAt      string `json:"changed_at"`
}

// OrderLine is one snapshotted line inside an order event.
type OrderLine struct {
	ItemID    uint64 `json:"item_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderCreatedEvent is published after an order and its stock
// reservations commit.
type OrderCreatedEvent struct {
	OrderID       uint64      `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	SellerID      uint64      `json:"seller_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	Lines         []OrderLine `json:"lines"`
	Subtotal      string      `json:"subtotal"`
	PlatformFee   string      `json:"platform_fee"`
	SellerAmount  string      `json:"seller_amount"`
	Currency      string      `json:"currency"`
	Status        string      `json:"status"`
	CreatedAt     string      `json:"created_at"`
}

// OrderStatusChangedEvent is published after an order transition commits.
type OrderStatusChangedEvent struct {
	OrderID        uint64 `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	SellerID       uint64 `json:"seller_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	PaymentStatus  string `json:"payment_status"`
	ChangedAt      string `json:"changed_at"`
}
