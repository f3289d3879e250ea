package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RsvpStatus is the lifecycle state of an invitation.
type RsvpStatus string

const (
	StatusPending        RsvpStatus = "PENDING"
	StatusSent           RsvpStatus = "SENT"
	StatusDelivered      RsvpStatus = "DELIVERED"
	StatusRead           RsvpStatus = "READ"
	StatusConfirmed      RsvpStatus = "CONFIRMED"
	StatusDeclined       RsvpStatus = "DECLINED"
	StatusNeedsAttention RsvpStatus = "NEEDS_ATTENTION"
	StatusFailed         RsvpStatus = "FAILED"
)

func (s RsvpStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSent, StatusDelivered, StatusRead,
		StatusConfirmed, StatusDeclined, StatusNeedsAttention, StatusFailed:
		return true
	}
	return false
}

// Label is the display name used by the dashboard. Adding a status
// without extending this switch is caught by TestLabelCoversAllStatuses.
func (s RsvpStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusSent:
		return "Sent"
	case StatusDelivered:
		return "Delivered"
	case StatusRead:
		return "Read"
	case StatusConfirmed:
		return "Confirmed"
	case StatusDeclined:
		return "Declined"
	case StatusNeedsAttention:
		return "Needs Attention"
	case StatusFailed:
		return "Failed"
	}
	return string(s)
}

// AllStatuses lists every RsvpStatus, in lifecycle order.
func AllStatuses() []RsvpStatus {
	return []RsvpStatus{
		StatusPending, StatusSent, StatusDelivered, StatusRead,
		StatusConfirmed, StatusDeclined, StatusNeedsAttention, StatusFailed,
	}
}

var (
	ErrGuestNotFound      = errors.New("guest not found")
	ErrPhoneAlreadyExists = errors.New("phone already registered")
)

// Guest is the single persisted entity: one invited person, correlated
// to incoming replies by phone number.
type Guest struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Status          RsvpStatus `json:"status"`
	AttendeesCount  *int       `json:"attendeesCount"`
	ResponseMessage *string    `json:"responseMessage"`
	LastUpdate      time.Time  `json:"lastUpdate"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ProcessedReply is the normalized outcome of interpreting a reply.
// AttendeesCount is nil when the reply carried no usable number.
type ProcessedReply struct {
	Status         RsvpStatus `json:"status"`
	AttendeesCount *int       `json:"attendeesCount"`
}

// NewGuest creates a guest in PENDING. Guests are never created in any
// other state.
func NewGuest(name, phone string) (*Guest, error) {
	now := time.Now()
	guest := &Guest{
		ID:         uuid.New().String(),
		Name:       name,
		Phone:      phone,
		Status:     StatusPending,
		LastUpdate: now,
		CreatedAt:  now,
	}

	if err := guest.Validate(); err != nil {
		return nil, err
	}

	return guest, nil
}

func (g *Guest) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(g.Phone) == "" {
		return errors.New("phone is required")
	}
	if !g.Status.IsValid() {
		return errors.New("invalid status")
	}
	return nil
}

// ApplyReply overwrites the guest's RSVP outcome with the latest reply.
// Replies are permissive on purpose: a guest who already confirmed may
// decline (or go back to needing attention) with a later message.
func (g *Guest) ApplyReply(reply ProcessedReply, message string, now time.Time) {
	g.Status = reply.Status
	g.AttendeesCount = reply.AttendeesCount
	g.ResponseMessage = &message
	g.LastUpdate = now
}

// MarkSent records a successful invitation dispatch.
func (g *Guest) MarkSent(now time.Time) {
	g.Status = StatusSent
	g.LastUpdate = now
}

// MarkFailed records a dispatch failure.
func (g *Guest) MarkFailed(now time.Time) {
	g.Status = StatusFailed
	g.LastUpdate = now
}
