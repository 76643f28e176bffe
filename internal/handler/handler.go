package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"zhamesh/internal/domain"
	"zhamesh/internal/repository"
)

// MaxLimit caps the limit query parameter
const MaxLimit = 1000

// TopologySource provides the current topology view
type TopologySource interface {
	View() *domain.TopologyView
}

// HistorySource provides persisted observations
type HistorySource interface {
	ListObservations(ctx context.Context, filter repository.ObservationFilter) ([]domain.Observation, error)
	ListOffline(ctx context.Context, limit int) ([]domain.OfflineFlag, error)
}

// APIHandler handles the read API
type APIHandler struct {
	topology TopologySource
	history  HistorySource
	logger   zerolog.Logger
}

// NewAPIHandler creates a new API handler. history may be nil, in which
// case the history endpoints answer 503.
func NewAPIHandler(topology TopologySource, history HistorySource, logger zerolog.Logger) *APIHandler {
	return &APIHandler{topology: topology, history: history, logger: logger}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DevicesResponse lists the registry
type DevicesResponse struct {
	Sequence   int             `json:"sequence"`
	CapturedAt string          `json:"captured_at,omitempty"`
	Devices    []domain.Device `json:"devices"`
}

// DeviceResponse is one device with the edges touching it
type DeviceResponse struct {
	Device   domain.Device `json:"device"`
	Outgoing []domain.Edge `json:"outgoing"`
	Incoming []domain.Edge `json:"incoming"`
}

// EdgesResponse lists the edge table
type EdgesResponse struct {
	Sequence int           `json:"sequence"`
	Edges    []domain.Edge `json:"edges"`
}

// ListDevices returns every device in the registry
func (h *APIHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	view := h.topology.View()

	resp := DevicesResponse{Sequence: view.Sequence, Devices: view.Devices}
	if !view.CapturedAt.IsZero() {
		resp.CapturedAt = view.CapturedAt.Format(time.RFC3339)
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// GetDevice returns one device and its edges
func (h *APIHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		h.writeError(w, "Invalid address", "Device address is required", http.StatusBadRequest)
		return
	}

	view := h.topology.View()
	device, ok := view.FindDevice(address)
	if !ok {
		h.writeError(w, "Not found", "device "+address+" not found", http.StatusNotFound)
		return
	}

	resp := DeviceResponse{
		Device:   device,
		Outgoing: make([]domain.Edge, 0),
		Incoming: make([]domain.Edge, 0),
	}
	for _, e := range view.Edges {
		switch address {
		case e.Source:
			resp.Outgoing = append(resp.Outgoing, e)
		case e.Target:
			resp.Incoming = append(resp.Incoming, e)
		}
	}

	h.writeJSON(w, resp, http.StatusOK)
}

// ListEdges returns the edge table
func (h *APIHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	view := h.topology.View()
	h.writeJSON(w, EdgesResponse{Sequence: view.Sequence, Edges: view.Edges}, http.StatusOK)
}

// ListObservations returns persisted observations, newest first
func (h *APIHandler) ListObservations(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, "Unavailable", "history is not persisted", http.StatusServiceUnavailable)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, "Invalid limit", err.Error(), http.StatusBadRequest)
		return
	}

	observations, err := h.history.ListObservations(r.Context(), repository.ObservationFilter{
		Limit:   limit,
		Address: r.URL.Query().Get("address"),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list observations")
		h.writeError(w, "Failed to list observations", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, observations, http.StatusOK)
}

// ListOffline returns persisted offline flags, newest first
func (h *APIHandler) ListOffline(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, "Unavailable", "history is not persisted", http.StatusServiceUnavailable)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, "Invalid limit", err.Error(), http.StatusBadRequest)
		return
	}

	flags, err := h.history.ListOffline(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list offline flags")
		h.writeError(w, "Failed to list offline flags", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, flags, http.StatusOK)
}

// Helper methods

func (h *APIHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode JSON")
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

// parseLimit reads ?limit=, returning 0 when absent
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, strconv.ErrSyntax
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit, nil
}
