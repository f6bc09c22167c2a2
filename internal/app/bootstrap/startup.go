// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/studycove/studyhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// cleanup is the background expiry sweeper. Created in Startup, stopped
// in Shutdown.
var cleanup *workers.ExpiryCleanup

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// StudyHub starts the background sweep that purges expired invites and
// dead confirmation tokens.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	cleanup = workers.NewExpiryCleanup(deps.Invites, deps.Confirmations, logger, appCfg.CleanupInterval)
	cleanup.Start()
	return nil
}
