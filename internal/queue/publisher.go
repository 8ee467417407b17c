package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/model"
)

// Publisher delivers domain events to RabbitMQ after the owning
// transaction commits.  Publishing is strictly fire-and-forget: any broker
// error is logged and swallowed, so a broker outage never fails a booking
// or an order that already committed.
type Publisher struct {
	url string
	log zerolog.Logger
}

// NewPublisher constructs a Publisher for the given AMQP URL.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// BookingCreated publishes a BookingCreatedEvent.
func (p *Publisher) BookingCreated(ctx context.Context, b *model.Booking) {
	p.publish(ctx, QueueBookingCreated, BookingCreatedEvent{
		BookingID:     b.ID,
		ServiceID:     b.ServiceID,
		SellerID:      b.ResourceID,
		CustomerName:  b.Customer.Name,
		CustomerPhone: b.Customer.Phone,
		StartsAt:      b.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:        b.EndsAt.UTC().Format(time.RFC3339),
		Status:        b.Status,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// BookingStatusChanged publishes a BookingStatusChangedEvent.
func (p *Publisher) BookingStatusChanged(ctx context.Context, b *model.Booking, previous string) {
	p.publish(ctx, QueueBookingStatusChanged, BookingStatusChangedEvent{
		BookingID:      b.ID,
		SellerID:       b.ResourceID,
		PreviousStatus: previous,
		NewStatus:      b.Status,
		StartsAt:       b.StartsAt.UTC().Format(time.RFC3339),
		ChangedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

// OrderCreated publishes an OrderCreatedEvent.
func (p *Publisher) OrderCreated(ctx context.Context, o *model.Order) {
	lines := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, OrderLine{
			ItemID:    it.ItemID,
			Name:      it.Name,
			Type:      it.Type,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Quantity:  it.Quantity,
		})
	}
	p.publish(ctx, QueueOrderCreated, OrderCreatedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		SellerID:      o.SellerID,
		CustomerName:  o.Customer.Name,
		CustomerPhone: o.Customer.Phone,
		Lines:         lines,
		Subtotal:      o.Subtotal.StringFixed(2),
		PlatformFee:   o.PlatformFee.StringFixed(2),
		SellerAmount:  o.SellerAmount.StringFixed(2),
		Currency:      o.Currency,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// OrderStatusChanged publishes an OrderStatusChangedEvent.
func (p *Publisher) OrderStatusChanged(ctx context.Context, o *model.Order, previous string) {
	p.publish(ctx, QueueOrderStatusChanged, OrderStatusChangedEvent{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		SellerID:       o.SellerID,
		PreviousStatus: previous,
		NewStatus:      o.Status,
		PaymentStatus:  o.PaymentStatus,
		ChangedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

// publish dials, declares the durable queue and delivers one persistent
// message.  A short-lived connection per event keeps failure modes simple;
// event volume here is request-rate, not a stream.
func (p *Publisher) publish(ctx context.Context, queueName string, event any) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("rabbitmq dial failed, event dropped")
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("rabbitmq channel open failed, event dropped")
		return
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("rabbitmq queue declare failed, event dropped")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("queue", queueName).Msg("event marshal failed")
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("rabbitmq publish failed, event dropped")
		return
	}
	p.log.Debug().Str("queue", queueName).Msg("event published")
}
