package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voxhaus/voxhaus-core/internal/audit"
	"github.com/voxhaus/voxhaus-core/internal/dispatch"
	"github.com/voxhaus/voxhaus-core/internal/registry"
)

// handleDispatch resolves and executes one spoken command.
//
// Request body:
//
//	{"target": "office lamp", "action": "turn_on", "value": null}
//
// On success the full dispatch result is returned. On failure the error code
// is the dispatch kind (device_not_found, unsupported_action, invalid_value,
// dispatch_failed) and the message is the advisory sentence.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatch.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Target == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "target is required")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "action is required")
		return
	}

	result, derr := s.dispatcher.Dispatch(r.Context(), req)
	if derr != nil {
		writeDispatchError(w, derr)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListDevices returns the current registry snapshot, with an optional
// domain filter.
//
// Query parameters:
//   - domain: filter by domain (light, switch, cover, climate, media_player, other)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()

	if domainStr := r.URL.Query().Get("domain"); domainStr != "" {
		domain := registry.Domain(domainStr)
		devices := make([]registry.DeviceRecord, 0)
		for _, d := range snap.Devices {
			if d.Domain == domain {
				devices = append(devices, d)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"devices":    devices,
			"count":      len(devices),
			"generation": snap.Generation,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices":    snap.Devices,
		"count":      snap.Len(),
		"generation": snap.Generation,
	})
}

// handleGetDevice returns a single device record by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record := s.store.Current().Get(id)
	if record == nil {
		writeNotFound(w, "device not found")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleRegistryRefresh forces an immediate registry refresh and returns the
// new snapshot summary. Concurrent refreshes coalesce into one backend call.
func (s *Server) handleRegistryRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("manual registry refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "registry refresh failed")
		return
	}

	summary := map[string]any{
		"generation": snap.Generation,
		"count":      snap.Len(),
		"built_at":   snap.BuiltAt,
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelRegistryRefreshed, summary)
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleProfile returns the backend capability profile currently in effect.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if s.discoverer == nil {
		writeNotFound(w, "capability discovery not configured")
		return
	}

	writeJSON(w, http.StatusOK, s.discoverer.Profile(r.Context()))
}

// handleHistory returns paginated dispatch history.
//
// Query parameters:
//   - device_id: filter by resolved device ID
//   - action: filter by spoken action
//   - status: filter by outcome (completed, failed)
//   - limit: page size (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "dispatch history not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		DeviceID: q.Get("device_id"),
		Action:   q.Get("action"),
		Status:   q.Get("status"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	result, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("dispatch history query failed", "error", err)
		writeInternalError(w, "failed to query dispatch history")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
