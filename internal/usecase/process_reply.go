package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/queue"
)

// ProcessReplyUseCase applies one guest reply: interpret the text,
// overwrite the guest's RSVP outcome and persist it. Used by both the
// webhook ingestion path and the operator's simulate-reply path, each
// with its own interpreter strategy.
type ProcessReplyUseCase struct {
	GuestRepo   GuestRepositoryInterface
	Interpreter ReplyInterpreter
	Producer    queue.QueueProducerInterface // optional
	Origin      string
}

func NewProcessReplyUseCase(
	guestRepo GuestRepositoryInterface,
	interpreter ReplyInterpreter,
	producer queue.QueueProducerInterface,
	origin string,
) *ProcessReplyUseCase {
	return &ProcessReplyUseCase{
		GuestRepo:   guestRepo,
		Interpreter: interpreter,
		Producer:    producer,
		Origin:      origin,
	}
}

func (uc *ProcessReplyUseCase) Execute(ctx context.Context, guest *entity.Guest, message string) (*entity.Guest, error) {
	processed := uc.Interpreter.Interpret(ctx, message)

	oldStatus := guest.Status
	guest.ApplyReply(processed, message, time.Now())

	if err := uc.GuestRepo.Update(ctx, guest); err != nil {
		return nil, err
	}

	log.Info().
		Str("guest_id", guest.ID).
		Str("from", string(oldStatus)).
		Str("to", string(guest.Status)).
		Str("origin", uc.Origin).
		Msg("reply processed")

	// Best effort: a down broker must never fail reply processing.
	if uc.Producer != nil {
		payload := queue.StatusChangePayload{
			GuestID:         guest.ID,
			Name:            guest.Name,
			Phone:           guest.Phone,
			OldStatus:       oldStatus,
			NewStatus:       guest.Status,
			AttendeesCount:  guest.AttendeesCount,
			ResponseMessage: message,
			Origin:          uc.Origin,
			OccurredAt:      guest.LastUpdate,
		}
		if err := uc.Producer.PublishStatusChange(ctx, payload); err != nil {
			log.Warn().Err(err).Str("guest_id", guest.ID).Msg("status change event not published")
		}
	}

	return guest, nil
}
