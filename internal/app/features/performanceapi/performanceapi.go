// Package performanceapi provides the performance record and sync API.
//
// Endpoints (mounted at /api):
//   - POST /performance      - Save a record (local cache first)
//   - GET  /performance      - List a user's records
//   - GET  /performance/{id} - Fetch one record
//   - GET  /sync/status      - Sync state and queue depth
//   - POST /sync             - Trigger a sync cycle now
//
// Saves succeed even when the remote store is unreachable; the record is
// queued and pushed by the next sync cycle.
package performanceapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/stratashare/internal/app/system/apicors"
	"github.com/dalemusser/stratashare/internal/app/system/auth"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashare/internal/app/system/syncer"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Handler handles performance record requests.
type Handler struct {
	sync   *syncer.Syncer
	logger *zap.Logger
}

// NewHandler creates a new performanceapi handler.
func NewHandler(s *syncer.Syncer, logger *zap.Logger) *Handler {
	return &Handler{sync: s, logger: logger}
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, faults.ErrValidation):
		jsonutil.BadRequest(w, err.Error())
	case errors.Is(err, faults.ErrNotFound):
		jsonutil.NotFound(w, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "internal error")
	}
}

// SaveHandler handles POST /performance.
//
// Request body:
//
//	{
//	    "userId": "u1",
//	    "recordedAt": "2026-08-30T12:00:00Z",  // optional
//	    "scores": {"overall": 82, "technical": 85, ...},
//	    "details": { ... any JSON ... }
//	}
func (h *Handler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID         string                   `json:"id"`
		UserID     string                   `json:"userId"`
		RecordedAt time.Time                `json:"recordedAt"`
		Scores     models.PerformanceScores `json:"scores"`
		Details    bson.M                   `json:"details"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	rec, err := h.sync.Save(r.Context(), models.PerformanceRecord{
		ID:         in.ID,
		UserID:     in.UserID,
		RecordedAt: in.RecordedAt,
		Scores:     in.Scores,
		Details:    in.Details,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	jsonutil.Created(w, map[string]any{"record": rec})
}

// ListHandler handles GET /performance?userId=. Records come from the
// local cache, which sync keeps current with the remote store.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	recs, err := h.sync.List(userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if recs == nil {
		recs = []models.PerformanceRecord{}
	}
	jsonutil.OK(w, map[string]any{"records": recs})
}

// GetHandler handles GET /performance/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sync.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"record": rec})
}

// StatusHandler handles GET /sync/status.
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	st, err := h.sync.Status()
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, st)
}

// SyncNowHandler handles POST /sync. A syncer that is unauthenticated or
// offline reports 409 rather than failing silently.
func (h *Handler) SyncNowHandler(w http.ResponseWriter, r *http.Request) {
	err := h.sync.SyncNow(r.Context())
	if errors.Is(err, syncer.ErrSyncUnavailable) {
		jsonutil.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	st, err := h.sync.Status()
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, st)
}

// Routes returns a router with the performance record endpoints,
// intended to be mounted at /api/performance.
func Routes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Post("/", h.SaveHandler)
	r.Get("/", h.ListHandler)
	r.Get("/{id}", h.GetHandler)

	return r
}

// SyncRoutes returns a router with the sync control endpoints,
// intended to be mounted at /api/sync.
func SyncRoutes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Post("/", h.SyncNowHandler)
	r.Get("/status", h.StatusHandler)

	return r
}
