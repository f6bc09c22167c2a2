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
type AppConfig struct {
	// PersistenceMode selects the storage backend: "mongo" for the
	// MongoDB stores, "memory" for the in-process stores (single
	// instance, data lost on restart).
	PersistenceMode string

	// MongoDB connection configuration (ignored in memory mode)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Invite and confirmation lifetimes
	InviteTTL  time.Duration // default lifetime of an invite token
	ConfirmTTL time.Duration // lifetime of a confirmation token

	// RateLimitPolicyFile optionally points at a YAML file overriding
	// the built-in per-action rate budgets.
	RateLimitPolicyFile string

	// CleanupInterval is how often the expiry sweep runs.
	CleanupInterval time.Duration

	// Audit logging configuration per category:
	// "all" (db+log), "db", "log", or "off".
	AuditLogAccess string
	AuditLogInvite string
	AuditLogAdmin  string
}
