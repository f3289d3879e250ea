package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
	"github.com/omerdahan/whatsapp-rsvp/internal/infra/http/middleware"
	"github.com/omerdahan/whatsapp-rsvp/internal/usecase"
)

type GuestHandler struct {
	GuestRepo  usecase.GuestRepositoryInterface
	SendUC     *usecase.SendInvitationUseCase
	SimulateUC *usecase.ProcessReplyUseCase
}

func NewGuestHandler(
	guestRepo usecase.GuestRepositoryInterface,
	sendUC *usecase.SendInvitationUseCase,
	simulateUC *usecase.ProcessReplyUseCase,
) *GuestHandler {
	return &GuestHandler{
		GuestRepo:  guestRepo,
		SendUC:     sendUC,
		SimulateUC: simulateUC,
	}
}

// HandleList returns every guest, oldest first.
func (h *GuestHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	guests, err := h.GuestRepo.FindAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list guests")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, guests)
}

// HandleSend dispatches the invitation for one guest.
func (h *GuestHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	guestID := chi.URLParam(r, "guestId")

	guest, err := h.SendUC.Execute(r.Context(), guestID)
	if errors.Is(err, entity.ErrGuestNotFound) {
		writeError(w, http.StatusNotFound, "Guest not found")
		return
	}
	if err != nil {
		// The guest was already marked FAILED by the use case.
		log.Error().Err(err).Str("guest_id", guestID).Msg("invitation dispatch failed")
		middleware.RecordInvitation("failed")
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	middleware.RecordInvitation("sent")
	writeJSON(w, http.StatusOK, guest)
}

// HandleSimulateReply feeds operator-provided text through the
// deterministic interpreter as if the guest had replied.
func (h *GuestHandler) HandleSimulateReply(w http.ResponseWriter, r *http.Request) {
	guestID := chi.URLParam(r, "guestId")

	var input usecase.SimulateReplyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	guest, err := h.GuestRepo.FindByID(r.Context(), guestID)
	if errors.Is(err, entity.ErrGuestNotFound) {
		writeError(w, http.StatusNotFound, "Guest not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("guest_id", guestID).Msg("guest lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to process reply")
		return
	}

	updated, err := h.SimulateUC.Execute(r.Context(), guest, input.Message)
	if err != nil {
		log.Error().Err(err).Str("guest_id", guestID).Msg("simulated reply failed")
		writeError(w, http.StatusInternalServerError, "Failed to process reply")
		return
	}

	middleware.RecordReply(string(updated.Status), "SIMULATE")
	writeJSON(w, http.StatusOK, updated)
}
