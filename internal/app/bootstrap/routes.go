// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	healthfeature "github.com/dalemusser/stratashare/internal/app/features/health"
	performanceapifeature "github.com/dalemusser/stratashare/internal/app/features/performanceapi"
	shareapifeature "github.com/dalemusser/stratashare/internal/app/features/shareapi"
	teamapifeature "github.com/dalemusser/stratashare/internal/app/features/teamapi"
	"github.com/dalemusser/stratashare/internal/app/store/sharedfile"
	"github.com/dalemusser/stratashare/internal/app/store/sharedfolder"
	"github.com/dalemusser/stratashare/internal/app/store/team"
	"github.com/dalemusser/stratashare/internal/app/system/fileshare"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Every /api route uses API key auth with permissive CORS; there is no
// session or CSRF layer because no browser cookies are involved. The
// acting user is identified per request by the client.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Stores over the document collections
	teams := team.New(deps.MongoDatabase)
	folders := sharedfolder.New(deps.MongoDatabase)
	files := sharedfile.New(deps.MongoDatabase)

	// The file sharing service owns permission checks, tier placement,
	// and path maintenance.
	shareSvc := fileshare.New(teams, folders, files, deps.FileStorage, logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// ─────────────────────────────────────────────────────────────────────────────
	// File and Folder Sharing API
	// ─────────────────────────────────────────────────────────────────────────────
	shareHandler := shareapifeature.NewHandler(shareSvc, logger)
	r.Mount("/api/files", shareapifeature.FileRoutes(shareHandler, appCfg.APIKey, logger))
	r.Mount("/api/folders", shareapifeature.FolderRoutes(shareHandler, appCfg.APIKey, logger))

	// ─────────────────────────────────────────────────────────────────────────────
	// Team Management API
	// ─────────────────────────────────────────────────────────────────────────────
	teamHandler := teamapifeature.NewHandler(teams, logger)
	r.Mount("/api/teams", teamapifeature.Routes(teamHandler, appCfg.APIKey, logger))

	// ─────────────────────────────────────────────────────────────────────────────
	// Performance Records and Sync API
	// The syncer is built in Startup; the API only triggers and observes it.
	// ─────────────────────────────────────────────────────────────────────────────
	perfHandler := performanceapifeature.NewHandler(appSyncer, logger)
	r.Mount("/api/performance", performanceapifeature.Routes(perfHandler, appCfg.APIKey, logger))
	r.Mount("/api/sync", performanceapifeature.SyncRoutes(perfHandler, appCfg.APIKey, logger))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.LocalCache, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	logger.Info("HTTP handler built",
		zap.Bool("api_key_auth", appCfg.APIKey != ""),
		zap.Bool("sync_enabled", appCfg.SyncEnabled),
	)

	return r, nil
}
