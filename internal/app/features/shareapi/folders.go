package shareapi

import (
	"net/http"

	"github.com/dalemusser/stratashare/internal/app/system/fileshare"
	"github.com/dalemusser/stratashare/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
)

// CreateFolderHandler handles POST /folders.
//
// Request body:
//
//	{
//	    "teamId": "team_...",
//	    "userId": "u1",
//	    "name": "Specs",
//	    "parentId": "folder_...",   // optional, omit for root
//	    "description": "..."        // optional
//	}
func (h *Handler) CreateFolderHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TeamID      string  `json:"teamId"`
		UserID      string  `json:"userId"`
		Name        string  `json:"name"`
		ParentID    *string `json:"parentId"`
		Description string  `json:"description"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	folder, err := h.svc.CreateFolder(r.Context(), fileshare.CreateFolderInput{
		TeamID:      in.TeamID,
		UserID:      in.UserID,
		Name:        in.Name,
		ParentID:    in.ParentID,
		Description: in.Description,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	jsonutil.Created(w, map[string]any{"folder": folder})
}

// GetFolderHandler handles GET /folders/{id}?userId=.
func (h *Handler) GetFolderHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	folder, err := h.svc.GetFolder(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"folder": folder})
}

// BreadcrumbsHandler handles GET /folders/{id}/breadcrumbs?userId=.
// The chain starts at the synthetic team root and ends at the folder
// itself, so clients can render navigation without walking parents.
func (h *Handler) BreadcrumbsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	crumbs, err := h.svc.Breadcrumbs(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"breadcrumbs": crumbs})
}

// MoveFolderHandler handles POST /folders/{id}/move. The stored paths of
// every descendant are rewritten in the same request.
func (h *Handler) MoveFolderHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID      string  `json:"userId"`
		NewParentID *string `json:"newParentId"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	if err := h.svc.MoveFolder(r.Context(), chi.URLParam(r, "id"), in.NewParentID, in.UserID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"moved": true})
}

// UpdateFolderHandler handles PUT /folders/{id} (rename).
func (h *Handler) UpdateFolderHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" || in.Name == "" {
		jsonutil.BadRequest(w, "userId and name are required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.RenameFolder(r.Context(), id, in.Name, in.UserID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	folder, err := h.svc.GetFolder(r.Context(), id, in.UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"folder": folder})
}

// FolderPermissionsHandler handles PUT /folders/{id}/permissions.
func (h *Handler) FolderPermissionsHandler(w http.ResponseWriter, r *http.Request) {
	h.setPermissions(w, r, fileshare.KindFolder)
}

// DeleteFolderHandler handles DELETE /folders/{id}?userId=. Descendant
// folders and files go with it.
func (h *Handler) DeleteFolderHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	if err := h.svc.DeleteFolder(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"deleted": true})
}
