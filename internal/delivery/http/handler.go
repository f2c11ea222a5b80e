package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/service"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/response"
)

type HTTPHandler struct {
	svc       service.QueueService
	refresher service.WaitRefresher
	l         logger.Logger
}

func NewHTTPHandler(svc service.QueueService, refresher service.WaitRefresher, l logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		refresher: refresher,
		l:         l,
	}
}

// HealthCheck handles health check requests
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "servicequeue",
	})
}

// JoinQueue handles join queue requests
func (h *HTTPHandler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	var req service.JoinQueueInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.svc.JoinQueue(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, entry)
}

// LeaveQueue handles leave queue requests
func (h *HTTPHandler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")

	removed, err := h.svc.LeaveQueue(r.Context(), entryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !removed {
		response.Error(w, http.StatusNotFound, "Queue entry not found")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"entry_id": entryID, "removed": true})
}

func (h *HTTPHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetEntry(r.Context(), chi.URLParam(r, "entryId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "Queue entry not found")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) GetUserEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetUserEntry(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "No active queue entry for this user")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) ListQueues(w http.ResponseWriter, r *http.Request) {
	queues, err := h.svc.GetAllQueues(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, queues)
}

func (h *HTTPHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceId")

	t, err := h.svc.GetServiceType(r.Context(), serviceID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if t == nil {
		response.Error(w, http.StatusNotFound, "Service type not found")
		return
	}

	entries, err := h.svc.GetQueueForService(r.Context(), serviceID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"service": t, "entries": entries})
}

func (h *HTTPHandler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetQueueStats(r.Context(), chi.URLParam(r, "serviceId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if stats == nil {
		response.Error(w, http.StatusNotFound, "Service type not found")
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) GetOverallStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetQueueStats(r.Context(), "")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

// CallNext handles staff calling the next waiting guest
func (h *HTTPHandler) CallNext(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.CallNext(r.Context(), chi.URLParam(r, "serviceId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "No guests waiting in this queue")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) StartService(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.MarkServiceStarted(r.Context(), chi.URLParam(r, "entryId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "Queue entry not found")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) CompleteService(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.MarkServiceCompleted(r.Context(), chi.URLParam(r, "entryId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "Queue entry not found")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) SkipEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason  string `json:"reason"`
		ActorID string `json:"actor_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	entry, err := h.svc.SkipEntry(r.Context(), service.SkipEntryInput{
		EntryID: chi.URLParam(r, "entryId"),
		Reason:  body.Reason,
		ActorID: body.ActorID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "Queue entry not found")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) AdjustPosition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewPosition int    `json:"new_position"`
		ActorID     string `json:"actor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.svc.AdjustPosition(r.Context(), service.AdjustPositionInput{
		EntryID:     chi.URLParam(r, "entryId"),
		NewPosition: body.NewPosition,
		ActorID:     body.ActorID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "Queue entry not found")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

// VerifyAdmission checks the token staff scan when a called guest
// arrives at the station.
func (h *HTTPHandler) VerifyAdmission(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.svc.VerifyAdmissionToken(r.Context(), body.Token)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entry == nil {
		response.Error(w, http.StatusNotFound, "Entry is no longer in the queue")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

func (h *HTTPHandler) ListServiceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.GetServiceTypes(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, types)
}

func (h *HTTPHandler) GetServiceType(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetServiceType(r.Context(), chi.URLParam(r, "serviceId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if t == nil {
		response.Error(w, http.StatusNotFound, "Service type not found")
		return
	}

	response.JSON(w, http.StatusOK, t)
}

func (h *HTTPHandler) UpdateServiceType(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateServiceTypeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ID = chi.URLParam(r, "serviceId")

	t, err := h.svc.UpdateServiceType(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, t)
}

func (h *HTTPHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetConfiguration(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, cfg)
}

func (h *HTTPHandler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg domain.QueueConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.UpdateConfiguration(r.Context(), &cfg); err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, cfg)
}

func (h *HTTPHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	txs, err := h.svc.GetRecentTransactions(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, txs)
}

func (h *HTTPHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"refresher": h.refresher.Status(),
	})
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		h.l.Errorf(r.Context(), "delivery.http.handler: %v", err)
	}
	response.Error(w, code, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrServiceNotFound):
		return http.StatusNotFound, "Service type not found"
	case errors.Is(err, service.ErrServiceInactive):
		return http.StatusForbidden, "Service is not accepting guests"
	case errors.Is(err, service.ErrAlreadyQueued):
		return http.StatusConflict, "You already have an active queue entry"
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusServiceUnavailable, "Queue is full"
	case errors.Is(err, service.ErrPriorityDisabled):
		return http.StatusForbidden, "Priority placement is disabled"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "Entry status does not allow this action"
	case errors.Is(err, service.ErrTokenEmpty), errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized, "Invalid admission token"
	case errors.Is(err, service.ErrServiceClosed):
		return http.StatusServiceUnavailable, "Service is shutting down"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
