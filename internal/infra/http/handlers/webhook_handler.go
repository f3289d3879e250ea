package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/http/middleware"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/integration/whatsapp"
	"github.com/omerdahan/whatsapp-rsvp/internal/usecase"
)

// WebhookHandler serves both sub-protocols of the Meta webhook
// endpoint: the GET verification handshake and POST event deliveries.
//
// Deliveries are acked with 200 even when nothing happens (non-text
// message, unknown sender): anything else makes the provider retry the
// same event aggressively. Only a real processing failure returns 500.
type WebhookHandler struct {
	GuestRepo   usecase.GuestRepositoryInterface
	ProcessUC   *usecase.ProcessReplyUseCase
	VerifyToken string
}

func NewWebhookHandler(
	guestRepo usecase.GuestRepositoryInterface,
	processUC *usecase.ProcessReplyUseCase,
	verifyToken string,
) *WebhookHandler {
	return &WebhookHandler{
		GuestRepo:   guestRepo,
		ProcessUC:   processUC,
		VerifyToken: verifyToken,
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleVerification(w, r)
	case http.MethodPost:
		h.handleDelivery(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *WebhookHandler) handleVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == h.VerifyToken {
		log.Info().Msg("webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	log.Warn().Str("mode", mode).Msg("webhook verification failed")
	w.WriteHeader(http.StatusForbidden)
}

func (h *WebhookHandler) handleDelivery(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad JSON")
		return
	}

	from, text, ok := payload.FirstTextMessage()
	if !ok {
		// Status receipts, media messages and the like: ack and move on.
		w.WriteHeader(http.StatusOK)
		return
	}

	guest, err := h.GuestRepo.FindByPhone(r.Context(), from)
	if errors.Is(err, entity.ErrGuestNotFound) {
		log.Info().Str("from", from).Msg("reply from unknown number, ignoring")
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("from", from).Msg("guest lookup failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	updated, err := h.ProcessUC.Execute(r.Context(), guest, text)
	if err != nil {
		log.Error().Err(err).Str("guest_id", guest.ID).Msg("webhook reply processing failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	middleware.RecordReply(string(updated.Status), "WEBHOOK")
	log.Info().Str("from", from).Str("status", string(updated.Status)).Msg("webhook reply processed")
	w.WriteHeader(http.StatusOK)
}
