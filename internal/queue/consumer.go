package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/service"
)

const paymentQueueName = "payment.results"

// StartPaymentConsumer connects to RabbitMQ, declares the
// payment.results queue (durable) and feeds each message through the
// lifecycle's idempotent ConfirmPayment path.  The function runs a
// reconnect loop with exponential backoff and keeps running across
// broker restarts; malformed messages are rejected without requeue so
// they cannot wedge the queue forever.
func StartPaymentConsumer(lc *service.Lifecycle) error {
	url := brokerURL()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("payment-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumePayments(conn, lc); err != nil {
			log.Printf("payment-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumePayments(conn *amqp.Connection, lc *service.Lifecycle) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(paymentQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	deliveries, err := ch.Consume(paymentQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		if err := handlePaymentResult(d.Body, lc); err != nil {
			log.Printf("payment-consumer: message failed: %v", err)
			// Requeue transient failures; drop malformed payloads.
			_ = d.Nack(false, !strings.Contains(err.Error(), "decode"))
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

// handlePaymentResult decodes one payment result and applies it.  A
// duplicate delivery lands on an already-resolved membership and
// ConfirmPayment absorbs it as a no-op, so redelivery is always safe.
func handlePaymentResult(body []byte, lc *service.Lifecycle) error {
	var msg PaymentResultMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode payment result: %w", err)
	}
	if msg.MembershipID == 0 {
		return fmt.Errorf("decode payment result: missing membership_id")
	}
	success := strings.EqualFold(msg.Status, "SUCCESS")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := lc.ConfirmPayment(ctx, msg.MembershipID, msg.ProviderRef, success); err != nil {
		return fmt.Errorf("confirm payment for membership %d: %w", msg.MembershipID, err)
	}
	return nil
}
