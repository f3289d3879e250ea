package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

func TestNewGuestStartsPending(t *testing.T) {
	guest, err := entity.NewGuest("Moshe Cohen", "972501234567")

	assert.NoError(t, err)
	assert.NotEmpty(t, guest.ID)
	assert.Equal(t, entity.StatusPending, guest.Status)
	assert.Nil(t, guest.AttendeesCount)
	assert.Nil(t, guest.ResponseMessage)
	assert.False(t, guest.CreatedAt.IsZero())
}

func TestNewGuestValidation(t *testing.T) {
	_, err := entity.NewGuest("", "972501234567")
	assert.Error(t, err)

	_, err = entity.NewGuest("Moshe Cohen", "   ")
	assert.Error(t, err)
}

func TestApplyReplyOverwritesPreviousReply(t *testing.T) {
	guest, err := entity.NewGuest("Yael Katz", "972509998877")
	assert.NoError(t, err)

	two := 2
	first := time.Now().Add(-time.Minute)
	guest.ApplyReply(entity.ProcessedReply{Status: entity.StatusConfirmed, AttendeesCount: &two}, "2", first)

	assert.Equal(t, entity.StatusConfirmed, guest.Status)
	assert.Equal(t, "2", *guest.ResponseMessage)
	assert.Equal(t, first, guest.LastUpdate)

	second := time.Now()
	guest.ApplyReply(entity.ProcessedReply{Status: entity.StatusNeedsAttention}, "actually not sure", second)

	assert.Equal(t, entity.StatusNeedsAttention, guest.Status)
	assert.Nil(t, guest.AttendeesCount)
	assert.Equal(t, "actually not sure", *guest.ResponseMessage)
	assert.Equal(t, second, guest.LastUpdate)
}

func TestMarkSentAndFailed(t *testing.T) {
	guest, err := entity.NewGuest("Guy Avraham", "972501112233")
	assert.NoError(t, err)

	now := time.Now()
	guest.MarkSent(now)
	assert.Equal(t, entity.StatusSent, guest.Status)
	assert.Equal(t, now, guest.LastUpdate)

	later := now.Add(time.Second)
	guest.MarkFailed(later)
	assert.Equal(t, entity.StatusFailed, guest.Status)
	assert.Equal(t, later, guest.LastUpdate)
}

func TestStatusValidity(t *testing.T) {
	for _, s := range entity.AllStatuses() {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, entity.RsvpStatus("MAYBE").IsValid())
}

func TestLabelCoversAllStatuses(t *testing.T) {
	for _, s := range entity.AllStatuses() {
		label := s.Label()
		assert.NotEmpty(t, label)
		// The fallthrough returns the raw enum value; a status equal to
		// its own label means the mapping was not extended.
		assert.NotEqual(t, string(s), label, "missing Label mapping for %s", s)
	}
}
