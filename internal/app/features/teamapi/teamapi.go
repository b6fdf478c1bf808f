// Package teamapi provides the team management API.
//
// Endpoints (mounted at /api/teams):
//   - POST /          - Create a team; the creator becomes owner
//   - GET  /{id}      - Fetch a team
//   - PUT  /{id}/members  - Set or remove a member's role
//   - PUT  /{id}/settings - Toggle file sharing
package teamapi

import (
	"errors"
	"net/http"

	"github.com/dalemusser/stratashare/internal/app/store/team"
	"github.com/dalemusser/stratashare/internal/app/system/apicors"
	"github.com/dalemusser/stratashare/internal/app/system/auth"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles team management requests.
type Handler struct {
	teams  *team.Store
	logger *zap.Logger
}

// NewHandler creates a new teamapi handler.
func NewHandler(teams *team.Store, logger *zap.Logger) *Handler {
	return &Handler{teams: teams, logger: logger}
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, faults.ErrValidation):
		jsonutil.BadRequest(w, err.Error())
	case errors.Is(err, faults.ErrAccessDenied):
		jsonutil.Forbidden(w, err.Error())
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

// CreateHandler handles POST /teams.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name             string `json:"name"`
		UserID           string `json:"userId"`
		AllowFileSharing *bool  `json:"allowFileSharing"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Name == "" || in.UserID == "" {
		jsonutil.BadRequest(w, "name and userId are required")
		return
	}

	allow := true
	if in.AllowFileSharing != nil {
		allow = *in.AllowFileSharing
	}

	t, err := h.teams.Create(r.Context(), team.CreateInput{
		Name:             in.Name,
		CreatedBy:        in.UserID,
		AllowFileSharing: allow,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	jsonutil.Created(w, map[string]any{"team": t})
}

// GetHandler handles GET /teams/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	t, err := h.teams.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"team": t})
}

// MembersHandler handles PUT /teams/{id}/members. Only the team owner or
// an admin member may change roles; an empty role removes the member.
func (h *Handler) MembersHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID       string `json:"userId"`
		TargetUserID string `json:"targetUserId"`
		Role         string `json:"role"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" || in.TargetUserID == "" {
		jsonutil.BadRequest(w, "userId and targetUserId are required")
		return
	}

	id := chi.URLParam(r, "id")
	t, err := h.teams.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	switch t.RoleOf(in.UserID) {
	case models.RoleOwner, models.RoleAdmin:
	default:
		jsonutil.Forbidden(w, "only team owners and admins may change roles")
		return
	}

	if err := h.teams.SetMemberRole(r.Context(), id, in.TargetUserID, in.Role); err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"updated": true})
}

// SettingsHandler handles PUT /teams/{id}/settings.
func (h *Handler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID           string `json:"userId"`
		AllowFileSharing *bool  `json:"allowFileSharing"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" || in.AllowFileSharing == nil {
		jsonutil.BadRequest(w, "userId and allowFileSharing are required")
		return
	}

	id := chi.URLParam(r, "id")
	t, err := h.teams.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	switch t.RoleOf(in.UserID) {
	case models.RoleOwner, models.RoleAdmin:
	default:
		jsonutil.Forbidden(w, "only team owners and admins may change settings")
		return
	}

	if err := h.teams.SetAllowFileSharing(r.Context(), id, *in.AllowFileSharing); err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"updated": true})
}

// Routes returns a router with the team management endpoints.
func Routes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Post("/", h.CreateHandler)
	r.Get("/{id}", h.GetHandler)
	r.Put("/{id}/members", h.MembersHandler)
	r.Put("/{id}/settings", h.SettingsHandler)

	return r
}
