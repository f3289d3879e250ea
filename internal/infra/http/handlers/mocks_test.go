package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

type MockGuestRepository struct {
	mock.Mock
}

func (m *MockGuestRepository) FindByID(ctx context.Context, id string) (*entity.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Guest), args.Error(1)
}

func (m *MockGuestRepository) FindByPhone(ctx context.Context, phone string) (*entity.Guest, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Guest), args.Error(1)
}

func (m *MockGuestRepository) FindAll(ctx context.Context) ([]entity.Guest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Guest), args.Error(1)
}

func (m *MockGuestRepository) Update(ctx context.Context, guest *entity.Guest) error {
	args := m.Called(ctx, guest)
	return args.Error(0)
}

func (m *MockGuestRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockGuestRepository) CreateBatch(ctx context.Context, guests []*entity.Guest) error {
	args := m.Called(ctx, guests)
	return args.Error(0)
}

type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) SendText(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}

func newGuest(t *testing.T, name, phone string, status entity.RsvpStatus) *entity.Guest {
	t.Helper()
	guest, err := entity.NewGuest(name, phone)
	require.NoError(t, err)
	guest.Status = status
	guest.LastUpdate = time.Now().Add(-time.Hour)
	return guest
}
