package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/queue"
)

// SendInvitationUseCase dispatches the invitation message for one
// guest and records the outcome on the guest row.
type SendInvitationUseCase struct {
	GuestRepo GuestRepositoryInterface
	Sender    MessageSender
	Producer  queue.QueueProducerInterface // optional
}

func NewSendInvitationUseCase(
	guestRepo GuestRepositoryInterface,
	sender MessageSender,
	producer queue.QueueProducerInterface,
) *SendInvitationUseCase {
	return &SendInvitationUseCase{
		GuestRepo: guestRepo,
		Sender:    sender,
		Producer:  producer,
	}
}

func (uc *SendInvitationUseCase) Execute(ctx context.Context, guestID string) (*entity.Guest, error) {
	guest, err := uc.GuestRepo.FindByID(ctx, guestID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Hello %s, you are invited to our event! Please reply to RSVP.", guest.Name)

	oldStatus := guest.Status
	if err := uc.Sender.SendText(ctx, guest.Phone, message); err != nil {
		// The failure must be on the row before the caller sees the
		// error, so the stored status never diverges from what was
		// reported.
		guest.MarkFailed(time.Now())
		if uerr := uc.GuestRepo.Update(ctx, guest); uerr != nil {
			log.Error().Err(uerr).Str("guest_id", guest.ID).Msg("could not persist FAILED status")
		}
		uc.publish(ctx, guest, oldStatus)
		return nil, fmt.Errorf("send invitation to %s: %w", guest.Phone, err)
	}

	guest.MarkSent(time.Now())
	if err := uc.GuestRepo.Update(ctx, guest); err != nil {
		return nil, err
	}
	uc.publish(ctx, guest, oldStatus)

	log.Info().Str("guest_id", guest.ID).Str("phone", guest.Phone).Msg("invitation sent")
	return guest, nil
}

func (uc *SendInvitationUseCase) publish(ctx context.Context, guest *entity.Guest, oldStatus entity.RsvpStatus) {
	if uc.Producer == nil {
		return
	}

	payload := queue.StatusChangePayload{
		GuestID:    guest.ID,
		Name:       guest.Name,
		Phone:      guest.Phone,
		OldStatus:  oldStatus,
		NewStatus:  guest.Status,
		Origin:     "SEND",
		OccurredAt: guest.LastUpdate,
	}

	if err := uc.Producer.PublishStatusChange(ctx, payload); err != nil {
		log.Warn().Err(err).Str("guest_id", guest.ID).Msg("status change event not published")
	}
}
