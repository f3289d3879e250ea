package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

// InterpretReply maps raw reply text to an RSVP outcome without any
// external service. A purely numeric reply is an attendee count: a
// positive number confirms, zero declines. Everything else needs a
// human to look at it. Total over all inputs, never errors.
func InterpretReply(message string) entity.ProcessedReply {
	trimmed := strings.TrimSpace(message)
	if !isAllDigits(trimmed) {
		return entity.ProcessedReply{Status: entity.StatusNeedsAttention}
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		// A digit string too long for an int is not a real headcount.
		return entity.ProcessedReply{Status: entity.StatusNeedsAttention}
	}

	if n > 0 {
		return entity.ProcessedReply{Status: entity.StatusConfirmed, AttendeesCount: &n}
	}

	zero := 0
	return entity.ProcessedReply{Status: entity.StatusDeclined, AttendeesCount: &zero}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ManualInterpreter is the deterministic ReplyInterpreter strategy,
// used by the simulate-reply flow and as the webhook default.
type ManualInterpreter struct{}

func NewManualInterpreter() *ManualInterpreter {
	return &ManualInterpreter{}
}

func (i *ManualInterpreter) Interpret(_ context.Context, message string) entity.ProcessedReply {
	return InterpretReply(message)
}
