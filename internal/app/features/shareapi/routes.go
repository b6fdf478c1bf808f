package shareapi

import (
	"net/http"

	"github.com/dalemusser/stratashare/internal/app/system/apicors"
	"github.com/dalemusser/stratashare/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileRoutes returns a router with the file sharing endpoints.
//
// When mounted at /api/files:
//   - GET    /api/files                   - List a folder's contents
//   - POST   /api/files                   - Share a file with a team
//   - GET    /api/files/{id}              - Fetch one file
//   - PUT    /api/files/{id}              - Update content or rename
//   - DELETE /api/files/{id}              - Delete a file
//   - POST   /api/files/{id}/move         - Move a file
//   - PUT    /api/files/{id}/permissions  - Grant or revoke a tier
//
// Authentication is via API key (Bearer token in Authorization header).
// CORS is permissive (allows any origin) since API key auth is used.
func FileRoutes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// API CORS - permissive for API key auth
	r.Use(apicors.Middleware())

	// API key authentication
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Get("/", h.ListHandler)
	r.Post("/", h.ShareHandler)
	r.Get("/{id}", h.GetFileHandler)
	r.Put("/{id}", h.UpdateFileHandler)
	r.Delete("/{id}", h.DeleteFileHandler)
	r.Post("/{id}/move", h.MoveFileHandler)
	r.Put("/{id}/permissions", h.FilePermissionsHandler)

	return r
}

// FolderRoutes returns a router with the folder endpoints.
//
// When mounted at /api/folders:
//   - POST   /api/folders                    - Create a folder
//   - GET    /api/folders/{id}               - Fetch one folder
//   - PUT    /api/folders/{id}               - Rename
//   - DELETE /api/folders/{id}               - Delete with descendants
//   - GET    /api/folders/{id}/breadcrumbs   - Ancestor chain for navigation
//   - POST   /api/folders/{id}/move          - Move (cascades path rewrites)
//   - PUT    /api/folders/{id}/permissions   - Grant or revoke a tier
func FolderRoutes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Post("/", h.CreateFolderHandler)
	r.Get("/{id}", h.GetFolderHandler)
	r.Put("/{id}", h.UpdateFolderHandler)
	r.Delete("/{id}", h.DeleteFolderHandler)
	r.Get("/{id}/breadcrumbs", h.BreadcrumbsHandler)
	r.Post("/{id}/move", h.MoveFolderHandler)
	r.Put("/{id}/permissions", h.FolderPermissionsHandler)

	return r
}
