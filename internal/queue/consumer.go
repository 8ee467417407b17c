package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// StartEventConsumer connects to RabbitMQ, declares the four event queues
// and appends each delivery to logs/events.log in a single-line format.
// It runs a reconnect loop with exponential backoff and never returns
// under normal operation; processing errors reject the offending message
// without requeueing so the loop cannot spin on a poison payload.
func StartEventConsumer(url string, log zerolog.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("event consumer dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, log); err != nil {
			log.Warn().Err(err).Msg("event consumer loop ended, reconnecting")
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("set QoS failed")
	}

	queues := []string{
		QueueBookingCreated,
		QueueBookingStatusChanged,
		QueueOrderCreated,
		QueueOrderStatusChanged,
	}
	deliveries := make(chan amqp.Delivery)
	for _, name := range queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go func() {
			for d := range msgs {
				deliveries <- d
			}
		}()
	}

	for d := range deliveries {
		if err := appendEventLog(d.RoutingKey, d.Body); err != nil {
			log.Error().Err(err).Str("queue", d.RoutingKey).Msg("handle event failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func appendEventLog(queueName string, body []byte) error {
	line, err := formatEvent(queueName, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "events.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatEvent(queueName string, body []byte) (string, error) {
	switch queueName {
	case QueueBookingCreated:
		var ev BookingCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking created | booking_id=%s | seller_id=%d | service_id=%d | customer=%q | starts_at=%s\n",
			ev.CreatedAt, ev.BookingID, ev.SellerID, ev.ServiceID, ev.CustomerName, ev.StartsAt), nil
	case QueueBookingStatusChanged:
		var ev BookingStatusChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking %s -> %s | booking_id=%s | seller_id=%d\n",
			ev.ChangedAt, ev.PreviousStatus, ev.NewStatus, ev.BookingID, ev.SellerID), nil
	case QueueOrderCreated:
		var ev OrderCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Order created | order=%s | seller_id=%d | customer=%q | subtotal=%s %s | lines=%d | status=%s\n",
			ev.CreatedAt, ev.OrderNumber, ev.SellerID, ev.CustomerName, ev.Subtotal, ev.Currency, len(ev.Lines), ev.Status), nil
	case QueueOrderStatusChanged:
		var ev OrderStatusChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Order %s -> %s | order=%s | seller_id=%d | payment=%s\n",
			ev.ChangedAt, ev.PreviousStatus, ev.NewStatus, ev.OrderNumber, ev.SellerID, ev.PaymentStatus), nil
	}
	return "", fmt.Errorf("unknown queue %q", queueName)
}
