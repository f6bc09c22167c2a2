// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/studycove/studyhub/internal/app/system/confirm"
	"github.com/studycove/studyhub/internal/app/system/invites"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StudyHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: persistence_mode, mongo_uri, etc.
//   - Environment variables: STUDYHUB_PERSISTENCE_MODE, STUDYHUB_MONGO_URI, etc.
//   - Command-line flags: --persistence_mode, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "persistence_mode", Default: "mongo", Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "study_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Token lifetimes
	{Name: "invite_ttl", Default: "168h", Desc: "Default invite lifetime (e.g., 168h for 7 days)"},
	{Name: "confirm_ttl", Default: "5m", Desc: "Confirmation token lifetime (e.g., 5m, 90s)"},

	// Rate limiting
	{Name: "rate_limit_policy_file", Default: "", Desc: "Optional YAML file overriding per-action rate budgets"},

	// Background cleanup
	{Name: "cleanup_interval", Default: "10m", Desc: "How often expired invites and confirmation tokens are purged"},

	// Audit logging settings
	{Name: "audit_log_access", Default: "all", Desc: "Access event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_invite", Default: "all", Desc: "Invite event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		PersistenceMode:  appValues.String("persistence_mode"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		InviteTTL:  appValues.Duration("invite_ttl", invites.DefaultTTL),
		ConfirmTTL: appValues.Duration("confirm_ttl", confirm.DefaultTTL),

		RateLimitPolicyFile: appValues.String("rate_limit_policy_file"),

		CleanupInterval: appValues.Duration("cleanup_interval", 10*time.Minute),

		AuditLogAccess: appValues.String("audit_log_access"),
		AuditLogInvite: appValues.String("audit_log_invite"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// StudyHub validates the persistence mode and, in mongo mode, the URI
// format, to catch configuration errors before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.PersistenceMode {
	case "mongo":
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case "memory":
		// Nothing to validate; data lives and dies with the process.
	default:
		return fmt.Errorf("persistence_mode must be 'mongo' or 'memory', got %q", appCfg.PersistenceMode)
	}

	if appCfg.InviteTTL <= 0 {
		return fmt.Errorf("invite_ttl must be positive, got %s", appCfg.InviteTTL)
	}
	if appCfg.ConfirmTTL <= 0 {
		return fmt.Errorf("confirm_ttl must be positive, got %s", appCfg.ConfirmTTL)
	}
	if appCfg.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive, got %s", appCfg.CleanupInterval)
	}

	for name, v := range map[string]string{
		"audit_log_access": appCfg.AuditLogAccess,
		"audit_log_invite": appCfg.AuditLogInvite,
		"audit_log_admin":  appCfg.AuditLogAdmin,
	} {
		switch v {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be 'all', 'db', 'log', or 'off', got %q", name, v)
		}
	}

	return nil
}
