package queue

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

// OrganizerNotifier is whoever tells the event organizer that a reply
// needs human follow-up.
type OrganizerNotifier interface {
	NotifyNeedsAttention(payload StatusChangePayload) error
}

// Worker consumes status-change events and escalates the ones the
// interpreter could not resolve on its own.
type Worker struct {
	Channel  *amqp.Channel
	Notifier OrganizerNotifier
}

func NewWorker(ch *amqp.Channel, notifier OrganizerNotifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack off, we ack after processing
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register queue consumer")
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload StatusChangePayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Error().Err(err).Msg("worker: malformed event, dropping")
				// Poison message, reject without requeue.
				d.Nack(false, false)
				continue
			}

			if err := w.processEvent(payload); err != nil {
				log.Error().Err(err).Str("guest_id", payload.GuestID).Msg("worker: event processing failed")
				d.Nack(false, false)
				continue
			}

			d.Ack(false)
		}
	}()

	log.Info().Str("queue", queueName).Msg("worker waiting for status-change events")
	<-forever
}

func (w *Worker) processEvent(payload StatusChangePayload) error {
	if payload.NewStatus != entity.StatusNeedsAttention {
		// Confirmations and declines resolve themselves; only ambiguous
		// replies are escalated.
		return nil
	}

	log.Info().
		Str("guest_id", payload.GuestID).
		Str("phone", payload.Phone).
		Msg("worker: escalating reply for manual review")

	return w.Notifier.NotifyNeedsAttention(payload)
}
