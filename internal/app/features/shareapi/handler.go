// Package shareapi provides the team file and folder sharing API.
//
// Endpoints (mounted at /api):
//   - GET    /files            - List a folder's contents (folders first)
//   - POST   /files            - Share a file with a team
//   - GET    /files/{id}       - Fetch one file
//   - PUT    /files/{id}       - Update content or rename
//   - DELETE /files/{id}       - Delete a file
//   - POST   /files/{id}/move  - Move a file
//   - PUT    /files/{id}/permissions - Grant or revoke a tier
//   - POST   /folders, /folders/{id}/... - Folder counterparts
//
// Authentication is via API key; the acting user is identified by the
// userId field or query parameter, as supplied by the practice client.
package shareapi

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/fileshare"
	"github.com/dalemusser/stratashare/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles file and folder sharing API requests.
type Handler struct {
	svc    *fileshare.Service
	logger *zap.Logger
}

// NewHandler creates a new shareapi handler.
func NewHandler(svc *fileshare.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// writeErr maps service errors onto the API's status contract.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, faults.ErrValidation):
		jsonutil.BadRequest(w, err.Error())
	case errors.Is(err, faults.ErrAccessDenied):
		jsonutil.Forbidden(w, err.Error())
	case errors.Is(err, faults.ErrNotFound):
		jsonutil.NotFound(w, err.Error())
	case errors.Is(err, faults.ErrExternalStore):
		jsonutil.BadGateway(w, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "internal error")
	}
}

// listEntry is one element of the merged listing.
type listEntry struct {
	Type   string               `json:"type"` // "folder" or "file"
	Folder *models.SharedFolder `json:"folder,omitempty"`
	File   *models.SharedFile   `json:"file,omitempty"`
	Access models.Effective     `json:"access"`
}

// ListHandler handles GET /files?teamId=&parentId=&userId=.
// Folders come first, then files, each group name-ordered.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("teamId")
	userID := r.URL.Query().Get("userId")
	if teamID == "" || userID == "" {
		jsonutil.BadRequest(w, "teamId and userId are required")
		return
	}
	var parentID *string
	if p := r.URL.Query().Get("parentId"); p != "" {
		parentID = &p
	}

	folders, files, err := h.svc.List(r.Context(), teamID, parentID, userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	entries := make([]listEntry, 0, len(folders)+len(files))
	for i := range folders {
		entries = append(entries, listEntry{
			Type:   "folder",
			Folder: &folders[i],
			Access: models.EffectiveFor(folders[i].Permissions, folders[i].CreatedBy, userID),
		})
	}
	for i := range files {
		entries = append(entries, listEntry{
			Type:   "file",
			File:   &files[i],
			Access: models.EffectiveFor(files[i].Permissions, files[i].CreatedBy, userID),
		})
	}

	jsonutil.OK(w, map[string]any{"files": entries})
}

// ShareHandler handles POST /files.
//
// Request body:
//
//	{
//	    "teamId": "team_...",
//	    "userId": "u1",
//	    "fileName": "notes.pdf",
//	    "fileType": "application/pdf",
//	    "content": "<base64>",      // or "url": "https://..."
//	    "parentId": "folder_..."    // optional, omit for root
//	}
func (h *Handler) ShareHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TeamID   string  `json:"teamId"`
		UserID   string  `json:"userId"`
		FileName string  `json:"fileName"`
		FileType string  `json:"fileType"`
		Content  string  `json:"content"`
		URL      string  `json:"url"`
		ParentID *string `json:"parentId"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	var data []byte
	if in.Content != "" {
		var err error
		data, err = base64.StdEncoding.DecodeString(in.Content)
		if err != nil {
			jsonutil.BadRequest(w, "content must be base64 encoded")
			return
		}
	}

	file, err := h.svc.ShareFile(r.Context(), fileshare.ShareFileInput{
		TeamID:   in.TeamID,
		UserID:   in.UserID,
		Name:     in.FileName,
		FileType: in.FileType,
		ParentID: in.ParentID,
		Data:     data,
		URLRef:   in.URL,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	jsonutil.Created(w, map[string]any{"file": file})
}

// GetFileHandler handles GET /files/{id}?userId=.
func (h *Handler) GetFileHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	file, err := h.svc.GetFile(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	jsonutil.OK(w, map[string]any{
		"file":   file,
		"access": models.EffectiveFor(file.Permissions, file.CreatedBy, userID),
	})
}

// UpdateFileHandler handles PUT /files/{id}. Supplying content replaces
// the payload and bumps the version; supplying name renames.
func (h *Handler) UpdateFileHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID  string `json:"userId"`
		Content string `json:"content"`
		Name    string `json:"name"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}
	if in.Content == "" && in.Name == "" {
		jsonutil.BadRequest(w, "nothing to update")
		return
	}

	id := chi.URLParam(r, "id")

	if in.Name != "" {
		if err := h.svc.RenameFile(r.Context(), id, in.Name, in.UserID); err != nil {
			h.writeErr(w, r, err)
			return
		}
	}

	if in.Content != "" {
		data, err := base64.StdEncoding.DecodeString(in.Content)
		if err != nil {
			jsonutil.BadRequest(w, "content must be base64 encoded")
			return
		}
		file, err := h.svc.UpdateFileContent(r.Context(), id, data, in.UserID)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		jsonutil.OK(w, map[string]any{"file": file})
		return
	}

	file, err := h.svc.GetFile(r.Context(), id, in.UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"file": file})
}

// DeleteFileHandler handles DELETE /files/{id}?userId=.
func (h *Handler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	if err := h.svc.DeleteFile(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"deleted": true})
}

// MoveFileHandler handles POST /files/{id}/move.
func (h *Handler) MoveFileHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.MoveFile(r.Context(), chi.URLParam(r, "id"), in.NewParentID, in.UserID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"moved": true})
}

// FilePermissionsHandler handles PUT /files/{id}/permissions.
// An empty tier revokes the target user's access.
func (h *Handler) FilePermissionsHandler(w http.ResponseWriter, r *http.Request) {
	h.setPermissions(w, r, fileshare.KindFile)
}

func (h *Handler) setPermissions(w http.ResponseWriter, r *http.Request, kind string) {
	var in struct {
		UserID       string `json:"userId"`
		TargetUserID string `json:"targetUserId"`
		Tier         string `json:"tier"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" {
		jsonutil.BadRequest(w, "userId is required")
		return
	}

	err := h.svc.SetPermission(r.Context(), kind, chi.URLParam(r, "id"), in.TargetUserID, models.Tier(in.Tier), in.UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	jsonutil.OK(w, map[string]any{"updated": true})
}
