// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratashare/internal/app/store/performance"
	"github.com/dalemusser/stratashare/internal/app/store/team"
	"github.com/dalemusser/stratashare/internal/app/system/syncer"
	"github.com/dalemusser/stratashare/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// This is the place for one-time initialization that depends on having live
// database connections and fully loaded configuration. Unlike ConnectDB and
// EnsureSchema which focus on infrastructure, Startup is for application-level
// initialization.
//
// Here that means:
//   - Seed an initial team if configured
//   - Build the performance syncer over the local cache and remote store
//   - Start the background task runner (periodic sync, cache compaction)
//
// Returning a non-nil error will abort startup and prevent the server from
// starting. Returning nil signals that initialization succeeded.
//
// The context will be cancelled if the process is asked to shut down while
// Startup is running; honor it in any long-running work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Seed a team if configured
	if appCfg.SeedTeamName != "" {
		if err := ensureSeedTeam(ctx, deps, appCfg.SeedTeamName, appCfg.SeedTeamOwner, logger); err != nil {
			logger.Error("failed to seed team", zap.Error(err))
			return err
		}
	}

	// Build the syncer here, in the composition root, and hand it to the
	// task runner and (via BuildHandler) the API. Nothing else holds a
	// reference to it.
	appSyncer = syncer.New(deps.LocalCache, performance.New(deps.MongoDatabase), logger)
	if appCfg.SyncUserID != "" {
		appSyncer.SetAuthenticated(appCfg.SyncUserID)
	}

	startTaskRunner(appCfg, deps, logger)

	return nil
}

// taskRunner and appSyncer live for the process lifetime; Shutdown stops
// them. They are package-level only so the Startup/BuildHandler/Shutdown
// hooks can share them.
var (
	taskRunner *tasks.Runner
	appSyncer  *syncer.Syncer
)

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	if appCfg.SyncEnabled {
		taskRunner.Register(tasks.PerformanceSyncJob(appSyncer, appCfg.SyncInterval, logger))
	}
	taskRunner.Register(tasks.LocalCacheCompactJob(deps.LocalCache, logger))

	// Start running jobs
	taskRunner.Start()
}

// ensureSeedTeam creates a team with the given name and owner unless one
// already exists. Useful for fresh deployments so the practice client has
// a team to share into.
func ensureSeedTeam(ctx context.Context, deps DBDeps, name, ownerID string, logger *zap.Logger) error {
	coll := deps.MongoDatabase.Collection(team.CollectionName)

	err := coll.FindOne(ctx, bson.M{"name": name}).Err()
	if err == nil {
		logger.Debug("seed team already exists", zap.String("name", name))
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	teams := team.New(deps.MongoDatabase)
	created, err := teams.Create(ctx, team.CreateInput{
		Name:             name,
		CreatedBy:        ownerID,
		AllowFileSharing: true,
	})
	if err != nil {
		return err
	}

	logger.Info("created seed team",
		zap.String("team_id", created.ID),
		zap.String("name", name),
		zap.String("owner", ownerID))
	return nil
}
