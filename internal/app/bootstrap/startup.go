// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	auditstore "github.com/dalemusser/greenledger/internal/app/store/audit"
	"github.com/dalemusser/greenledger/internal/app/system/timeouts"
	"github.com/dalemusser/greenledger/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// timeout overrides and starts the audit retention worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("count", n),
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("batch", cur.Batch))
	}

	if appCfg.AuditRetention > 0 {
		w := workers.NewAuditRetention(auditstore.New(deps.MongoDatabase), logger, appCfg.AuditPruneInterval, appCfg.AuditRetention)
		w.Start()
		onShutdown(w.Stop)
	}
	return nil
}
