package usecase

import (
	"context"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

// GuestRepositoryInterface is the storage collaborator. Phone is the
// correlation key for inbound replies; ID is used by the dashboard.
type GuestRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*entity.Guest, error)
	FindByPhone(ctx context.Context, phone string) (*entity.Guest, error)
	FindAll(ctx context.Context) ([]entity.Guest, error)
	Update(ctx context.Context, guest *entity.Guest) error
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, guests []*entity.Guest) error
}

// MessageSender is the outbound transport to the messaging channel.
type MessageSender interface {
	SendText(ctx context.Context, to, body string) error
}

// ReplyInterpreter turns raw reply text into a normalized RSVP outcome.
// Implementations never fail: anything they cannot understand comes
// back as NEEDS_ATTENTION so a reply is never silently dropped.
type ReplyInterpreter interface {
	Interpret(ctx context.Context, message string) entity.ProcessedReply
}
