package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

// StatusChangePayload is published whenever a guest's RSVP status
// moves, feeding the dashboard activity log and the notification
// worker.
type StatusChangePayload struct {
	GuestID         string            `json:"guest_id"`
	Name            string            `json:"name"`
	Phone           string            `json:"phone"`
	OldStatus       entity.RsvpStatus `json:"old_status"`
	NewStatus       entity.RsvpStatus `json:"new_status"`
	AttendeesCount  *int              `json:"attendees_count"`
	ResponseMessage string            `json:"response_message"`
	Origin          string            `json:"origin"` // WEBHOOK, SIMULATE or SEND
	OccurredAt      time.Time         `json:"occurred_at"`
}

type QueueProducerInterface interface {
	PublishStatusChange(ctx context.Context, payload StatusChangePayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishStatusChange(ctx context.Context, payload StatusChangePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish status change: %w", err)
	}

	return nil
}
