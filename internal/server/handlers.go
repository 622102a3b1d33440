package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/ledger"
	"github.com/chaindocs/tradecore/internal/lifecycle"
	"github.com/chaindocs/tradecore/internal/risk"
	"github.com/chaindocs/tradecore/internal/tradestore"
)

// Actor identity headers. Token issuance and verification belong to the
// backend; this surface only relays who is acting.
const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
)

// APIHandlers exposes HTTP handlers for the lifecycle API.
type APIHandlers struct {
	logger   *slog.Logger
	store    *tradestore.Store
	assessor *risk.Assessor
	ledger   ledger.Store
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, store *tradestore.Store, assessor *risk.Assessor, ledgerStore ledger.Store) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		store:    store,
		assessor: assessor,
		ledger:   ledgerStore,
	}
}

// handleTrade dispatches /trades/{id} and its sub-resources.
func (h *APIHandlers) handleTrade(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/trades/"), "/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "trade ID is required")
		return
	}

	tradeID, sub, _ := strings.Cut(rest, "/")
	switch sub {
	case "":
		h.getTrade(w, r, tradeID)
	case "timeline":
		h.getTimeline(w, r, tradeID)
	case "actions":
		h.getActions(w, r, tradeID)
	case "transition":
		h.postTransition(w, r, tradeID)
	case "assign-bank":
		h.postAssignBank(w, r, tradeID)
	case "risk":
		h.getRisk(w, r, tradeID)
	default:
		writeError(w, http.StatusNotFound, "unknown trade resource")
	}
}

func (h *APIHandlers) getTrade(w http.ResponseWriter, r *http.Request, tradeID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	trade, err := h.store.Load(r.Context(), tradeID)
	if err != nil {
		h.writeFailure(w, err, "failed to load trade", "tradeId", tradeID)
		return
	}
	respondJSON(w, http.StatusOK, toTradeResponse(trade, h.store.Pending(tradeID)))
}

func (h *APIHandlers) getTimeline(w http.ResponseWriter, r *http.Request, tradeID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	entries, err := h.ledger.EntriesForTrade(r.Context(), tradeID)
	if err != nil {
		h.writeFailure(w, err, "failed to load timeline", "tradeId", tradeID)
		return
	}

	response := timelineResponse{TradeID: tradeID, Entries: []timelineEntry{}}
	for _, entry := range entries {
		response.Entries = append(response.Entries, timelineEntry{
			EventType:    entry.EventType,
			ActorID:      entry.ActorID,
			ActorRole:    entry.ActorRole,
			Remarks:      entry.Remarks,
			PreviousHash: entry.PreviousHash,
			CurrentHash:  entry.CurrentHash,
			CreatedAt:    formatTime(entry.CreatedAt),
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) getActions(w http.ResponseWriter, r *http.Request, tradeID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trade, err := h.store.Load(r.Context(), tradeID)
	if err != nil {
		h.writeFailure(w, err, "failed to load trade", "tradeId", tradeID)
		return
	}

	response := actionsResponse{TradeID: tradeID, Actions: []actionItem{}}
	for _, action := range lifecycle.AvailableActions(trade, actor) {
		response.Actions = append(response.Actions, actionItem{
			Label:  action.Label,
			Target: string(action.Target),
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) postTransition(w http.ResponseWriter, r *http.Request, tradeID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload transitionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target := domain.TradeStatus(payload.Status)
	if !target.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status "+payload.Status)
		return
	}

	trade, err := h.store.RequestTransition(r.Context(), tradeID, target, actor, payload.Remarks)
	if err != nil {
		h.writeFailure(w, err, "transition denied", "tradeId", tradeID, "target", payload.Status)
		return
	}
	respondJSON(w, http.StatusOK, toTradeResponse(trade, false))
}

func (h *APIHandlers) postAssignBank(w http.ResponseWriter, r *http.Request, tradeID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload assignBankRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Bank == "" {
		writeError(w, http.StatusBadRequest, "bank is required")
		return
	}

	trade, err := h.store.RequestBankAssignment(r.Context(), tradeID, payload.Bank, actor, payload.Remarks)
	if err != nil {
		h.writeFailure(w, err, "bank assignment denied", "tradeId", tradeID)
		return
	}
	respondJSON(w, http.StatusOK, toTradeResponse(trade, false))
}

func (h *APIHandlers) getRisk(w http.ResponseWriter, r *http.Request, tradeID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	trade, err := h.store.Load(r.Context(), tradeID)
	if err != nil {
		h.writeFailure(w, err, "failed to load trade", "tradeId", tradeID)
		return
	}

	assessment, err := h.assessor.Assess(r.Context(), trade)
	if err != nil {
		h.writeFailure(w, err, "risk assessment failed", "tradeId", tradeID)
		return
	}

	respondJSON(w, http.StatusOK, riskResponse{
		TradeID:      assessment.TradeID,
		Score:        assessment.Score,
		Level:        string(assessment.Level),
		Reasons:      assessment.Reasons,
		CalculatedAt: formatTime(assessment.CalculatedAt),
	})
}

// writeFailure maps store and lifecycle errors onto HTTP statuses and logs
// the ones worth operator attention.
func (h *APIHandlers) writeFailure(w http.ResponseWriter, err error, msg string, args ...any) {
	if errors.Is(err, tradestore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}

	if denial, ok := lifecycle.DenialOf(err); ok {
		respondJSON(w, denialStatus(denial.Reason), denialResponse{
			Reason: string(denial.Reason),
			Detail: denial.Detail,
		})
		return
	}

	h.logger.Error(msg, append(args, "error", err)...)
	writeError(w, http.StatusInternalServerError, msg)
}

func denialStatus(reason lifecycle.Reason) int {
	switch reason {
	case lifecycle.ReasonRoleMismatch, lifecycle.ReasonRelationshipMismatch:
		return http.StatusForbidden
	case lifecycle.ReasonAlreadyTerminal, lifecycle.ReasonIllegalTransition, lifecycle.ReasonTransitionInProgress:
		return http.StatusConflict
	case lifecycle.ReasonPreconditionFailed:
		return http.StatusPreconditionFailed
	case lifecycle.ReasonRemoteRejected:
		return http.StatusConflict
	case lifecycle.ReasonRemoteUnreachable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func actorFrom(r *http.Request) (domain.Actor, error) {
	id := strings.TrimSpace(r.Header.Get(headerActorID))
	role := domain.Role(strings.ToUpper(strings.TrimSpace(r.Header.Get(headerActorRole))))
	if id == "" {
		return domain.Actor{}, errors.New("X-Actor-Id header is required")
	}
	if !role.Valid() {
		return domain.Actor{}, errors.New("X-Actor-Role header is missing or unknown")
	}
	return domain.Actor{ID: id, Role: role}, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
