package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"raffler/domain/interfaces"
	"raffler/domain/services"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Handler serves the raffle HTTP API
type Handler struct {
	coordinator interfaces.RaffleCoordinator
	history     interfaces.RoundHistoryRepository
}

// NewHandler creates a new API handler. history may be nil, in which case
// GET /raffle/history responds 503.
func NewHandler(coordinator interfaces.RaffleCoordinator, history interfaces.RoundHistoryRepository) *Handler {
	return &Handler{
		coordinator: coordinator,
		history:     history,
	}
}

// GetRound returns a snapshot of the current round
func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newRoundResponse(h.coordinator.Snapshot()))
}

// GetParticipant returns the participant at an entry index
func (h *Handler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return
	}

	participant, err := h.coordinator.Participant(index)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ParticipantResponse{Index: index, Participant: participant})
}

// Enter adds a participant to the open round
func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	var input EnterRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("failed to decode request body: %v", err))
		return
	}

	if err := h.coordinator.Enter(r.Context(), input.Participant, input.AmountPaid); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newRoundResponse(h.coordinator.Snapshot()))
}

// CheckUpkeep reports whether upkeep is needed without changing state
func (h *Handler) CheckUpkeep(w http.ResponseWriter, r *http.Request) {
	needed, performData := h.coordinator.CheckUpkeep(r.Context())
	writeJSON(w, http.StatusOK, UpkeepCheckResponse{
		UpkeepNeeded: needed,
		PerformData:  hex.EncodeToString(performData),
	})
}

// PerformUpkeep requests randomness for the current round
func (h *Handler) PerformUpkeep(w http.ResponseWriter, r *http.Request) {
	requestID, err := h.coordinator.PerformUpkeep(r.Context(), nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, UpkeepResponse{RequestID: requestID.String()})
}

// GetHistory returns recently resolved rounds, newest first
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history_unavailable", "round history is not configured")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	rounds, err := h.history.GetRecent(r.Context(), limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch round history")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to fetch round history")
		return
	}

	writeJSON(w, http.StatusOK, rounds)
}

// Healthz reports liveness
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError maps coordinator errors onto HTTP status codes
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientPayment):
		writeError(w, http.StatusPaymentRequired, "insufficient_payment", err.Error())
	case errors.Is(err, services.ErrRoundNotOpen):
		writeError(w, http.StatusConflict, "round_not_open", err.Error())
	case errors.Is(err, services.ErrUpkeepNotNeeded):
		writeError(w, http.StatusConflict, "upkeep_not_needed", err.Error())
	case errors.Is(err, services.ErrParticipantIndexOutOfRange):
		writeError(w, http.StatusNotFound, "index_out_of_range", err.Error())
	case errors.Is(err, services.ErrBalanceOverflow):
		writeError(w, http.StatusUnprocessableEntity, "balance_overflow", err.Error())
	case errors.Is(err, services.ErrInvalidParticipant):
		writeError(w, http.StatusBadRequest, "invalid_participant", err.Error())
	case errors.Is(err, services.ErrTransferFailed):
		writeError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	default:
		log.WithError(err).Error("Unhandled raffle API error")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}
