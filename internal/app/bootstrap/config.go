// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
// Change this constant when forking stratashare for a new project.
const EnvVarPrefix = "STRATASHARE"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, cache_path, etc.
//   - Environment variables: STRATASHARE_MONGO_URI, STRATASHARE_CACHE_PATH, etc.
//   - Command-line flags: --mongo_uri, --cache_path, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratashare", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// API key configuration (Bearer token auth for the practice client)
	{Name: "api_key", Default: "", Desc: "API key for API access (leave empty to disable API key auth)"},

	// Blob storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./blobs", Desc: "Local storage path for uploaded file blobs"},
	{Name: "storage_local_url", Default: "/blobs", Desc: "URL prefix for serving local blobs"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "teams/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Local performance cache and sync configuration
	{Name: "cache_path", Default: "./data/cache.db", Desc: "SQLite path for the local performance record cache"},
	{Name: "sync_enabled", Default: true, Desc: "Run the periodic performance sync job"},
	{Name: "sync_interval", Default: "1m", Desc: "Performance sync interval (e.g., 30s, 1m, 5m)"},
	{Name: "sync_user_id", Default: "", Desc: "User ID whose records sync remotely on startup"},

	// Team seeding configuration
	{Name: "seed_team_name", Default: "", Desc: "Name of a team to create on first startup"},
	{Name: "seed_team_owner", Default: "", Desc: "User ID that owns the seeded team"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATASHARE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey: appValues.String("api_key"),

		// Blob storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		// Local cache and sync
		CachePath:    appValues.String("cache_path"),
		SyncEnabled:  appValues.Bool("sync_enabled"),
		SyncInterval: appValues.Duration("sync_interval", 1*time.Minute),
		SyncUserID:   appValues.String("sync_user_id"),

		// Team seeding
		SeedTeamName:  appValues.String("seed_team_name"),
		SeedTeamOwner: appValues.String("seed_team_owner"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.StorageType == "s3" && appCfg.StorageS3Bucket == "" {
		return fmt.Errorf("storage_s3_bucket is required when storage_type is 's3'")
	}

	if appCfg.SeedTeamName != "" && appCfg.SeedTeamOwner == "" {
		return fmt.Errorf("seed_team_owner is required when seed_team_name is set")
	}

	return nil
}
