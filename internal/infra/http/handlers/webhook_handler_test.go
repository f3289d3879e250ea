package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/http/handlers"
	"github.com/omerdahan/whatsapp-rsvp/internal/usecase"
)

const verifyToken = "shared-secret"

func newWebhookHandler(repo *MockGuestRepository) *handlers.WebhookHandler {
	processUC := usecase.NewProcessReplyUseCase(repo, usecase.NewManualInterpreter(), nil, "WEBHOOK")
	return handlers.NewWebhookHandler(repo, processUC, verifyToken)
}

func textPayload(from, body string) []byte {
	payload := fmt.Sprintf(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"messages": [{
						"from": %q,
						"id": "wamid.1",
						"type": "text",
						"text": {"body": %q}
					}]
				}
			}]
		}]
	}`, from, body)
	return []byte(payload)
}

func TestWebhookVerificationSuccess(t *testing.T) {
	req := httptest.NewRequest("GET",
		"/api/whatsapp-webhook?hub.mode=subscribe&hub.verify_token="+verifyToken+"&hub.challenge=challenge-42", nil)
	w := httptest.NewRecorder()

	newWebhookHandler(new(MockGuestRepository)).Handle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "challenge-42", w.Body.String())
}

func TestWebhookVerificationWrongToken(t *testing.T) {
	req := httptest.NewRequest("GET",
		"/api/whatsapp-webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=challenge-42", nil)
	w := httptest.NewRecorder()

	newWebhookHandler(new(MockGuestRepository)).Handle(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "challenge-42")
}

func TestWebhookVerificationWrongMode(t *testing.T) {
	req := httptest.NewRequest("GET",
		"/api/whatsapp-webhook?hub.mode=unsubscribe&hub.verify_token="+verifyToken+"&hub.challenge=x", nil)
	w := httptest.NewRecorder()

	newWebhookHandler(new(MockGuestRepository)).Handle(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookDeliveryConfirmsGuest(t *testing.T) {
	repo := new(MockGuestRepository)
	guest := newGuest(t, "Israel Israeli", "972501234567", entity.StatusSent)
	before := guest.LastUpdate

	repo.On("FindByPhone", mock.Anything, "972501234567").Return(guest, nil)

	var persisted entity.Guest
	repo.On("Update", mock.Anything, guest).Run(func(args mock.Arguments) {
		persisted = *args.Get(1).(*entity.Guest)
	}).Return(nil)

	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(textPayload("972501234567", "2")))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.StatusConfirmed, persisted.Status)
	if assert.NotNil(t, persisted.AttendeesCount) {
		assert.Equal(t, 2, *persisted.AttendeesCount)
	}
	if assert.NotNil(t, persisted.ResponseMessage) {
		assert.Equal(t, "2", *persisted.ResponseMessage)
	}
	assert.True(t, persisted.LastUpdate.After(before))
}

func TestWebhookDeliveryNoMessagesIsAcked(t *testing.T) {
	repo := new(MockGuestRepository)

	// Delivery receipt payload: statuses but no messages.
	payload := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"value": {
					"statuses": [{"id": "wamid.1", "status": "delivered", "recipient_id": "972501234567"}]
				}
			}]
		}]
	}`)

	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestWebhookDeliveryNonTextMessageIsAcked(t *testing.T) {
	repo := new(MockGuestRepository)

	payload := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{"from": "972501234567", "id": "wamid.2", "type": "image"}]
				}
			}]
		}]
	}`)

	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestWebhookDeliveryUnknownSenderIsAcked(t *testing.T) {
	repo := new(MockGuestRepository)
	repo.On("FindByPhone", mock.Anything, "972999999999").Return(nil, entity.ErrGuestNotFound)

	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(textPayload("972999999999", "2")))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	// No guest is created, no error surfaced: a non-200 would make the
	// provider resend the same event.
	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestWebhookDeliveryWrongObjectIsAcked(t *testing.T) {
	repo := new(MockGuestRepository)

	payload := []byte(`{"object": "instagram", "entry": []}`)
	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

func TestWebhookDeliveryStorageFailure(t *testing.T) {
	repo := new(MockGuestRepository)
	repo.On("FindByPhone", mock.Anything, "972501234567").Return(nil, errors.New("connection refused"))

	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(textPayload("972501234567", "2")))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhookDeliveryBadJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()

	newWebhookHandler(new(MockGuestRepository)).Handle(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnsupportedMethod(t *testing.T) {
	req := httptest.NewRequest("PUT", "/api/whatsapp-webhook", nil)
	w := httptest.NewRecorder()

	newWebhookHandler(new(MockGuestRepository)).Handle(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWebhookOnlyFirstMessageProcessed(t *testing.T) {
	repo := new(MockGuestRepository)
	guest := newGuest(t, "Dana Sharon", "972501111111", entity.StatusSent)

	repo.On("FindByPhone", mock.Anything, "972501111111").Return(guest, nil)
	repo.On("Update", mock.Anything, guest).Return(nil)

	payload := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"value": {
					"messages": [
						{"from": "972501111111", "id": "wamid.1", "type": "text", "text": {"body": "3"}},
						{"from": "972502222222", "id": "wamid.2", "type": "text", "text": {"body": "0"}}
					]
				}
			}]
		}]
	}`)

	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertNotCalled(t, "FindByPhone", mock.Anything, "972502222222")
	assert.Equal(t, entity.StatusConfirmed, guest.Status)
}

func TestWebhookResponseBodyOnGuestMatch(t *testing.T) {
	repo := new(MockGuestRepository)
	guest := newGuest(t, "Avi Levi", "972503334455", entity.StatusRead)

	repo.On("FindByPhone", mock.Anything, "972503334455").Return(guest, nil)
	repo.On("Update", mock.Anything, guest).Return(nil)

	req := httptest.NewRequest("POST", "/api/whatsapp-webhook", bytes.NewReader(textPayload("972503334455", "lo yodea")))
	w := httptest.NewRecorder()

	newWebhookHandler(repo).Handle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.StatusNeedsAttention, guest.Status)
	assert.Nil(t, guest.AttendeesCount)

	var decoded map[string]any
	// Ack body is empty; the contract is the status code alone.
	err := json.NewDecoder(w.Body).Decode(&decoded)
	assert.Error(t, err)
}
