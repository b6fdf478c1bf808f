// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to this service lives: the
// document store, the blob store, the local performance cache, and the
// sync cadence.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// API key authentication (for the practice client)
	// When set, enables Bearer token authentication for /api/* routes.
	// Leave empty to disable API key authentication.
	APIKey string

	// Blob storage configuration for files too large to embed
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./blobs")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/blobs")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "teams/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Local performance cache and sync configuration
	CachePath    string        // SQLite database path for the local record cache
	SyncEnabled  bool          // Run the periodic performance sync job
	SyncInterval time.Duration // How often the sync job pushes/pulls (default: 1m)
	SyncUserID   string        // User whose records sync remotely (set at deploy, or via API later)

	// Team seeding configuration
	SeedTeamName  string // Name of a team to create on first startup (if set)
	SeedTeamOwner string // User ID that owns the seeded team
}
