// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"sync"

	activityfeature "github.com/dalemusser/greenledger/internal/app/features/auditlog"
	authapifeature "github.com/dalemusser/greenledger/internal/app/features/authapi"
	healthfeature "github.com/dalemusser/greenledger/internal/app/features/health"
	metricfeature "github.com/dalemusser/greenledger/internal/app/features/metric"
	userinfofeature "github.com/dalemusser/greenledger/internal/app/features/userinfo"
	"github.com/dalemusser/greenledger/internal/app/services/accounts"
	"github.com/dalemusser/greenledger/internal/app/services/sustainability"
	auditstore "github.com/dalemusser/greenledger/internal/app/store/audit"
	metricsstore "github.com/dalemusser/greenledger/internal/app/store/metrics"
	userstore "github.com/dalemusser/greenledger/internal/app/store/users"
	"github.com/dalemusser/greenledger/internal/app/system/auditlog"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/app/system/ratelimit"
	"github.com/dalemusser/greenledger/internal/app/system/reqlog"
	"github.com/dalemusser/greenledger/internal/app/system/telemetry"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// stoppers holds background workers started by BuildHandler so Shutdown can
// stop them.
var stoppers struct {
	mu  sync.Mutex
	fns []func()
}

func onShutdown(fn func()) {
	stoppers.mu.Lock()
	stoppers.fns = append(stoppers.fns, fn)
	stoppers.mu.Unlock()
}

func runStoppers() {
	stoppers.mu.Lock()
	fns := stoppers.fns
	stoppers.fns = nil
	stoppers.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It wires stores into services, services
// into feature handlers, and mounts:
//
//	/health   database liveness
//	/auth     register and login
//	/metric   bearer-protected sustainability metrics
//	/me       the token holder's identity
//	/activity the token holder's auth events
//	/metrics  Prometheus exposition
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokens(appCfg.TokenSecret)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	metrics := telemetry.New()

	users := userstore.New(deps.MongoDatabase)
	auditEvents := auditstore.New(deps.MongoDatabase)
	audit := auditlog.New(auditEvents, logger, auditlog.Config{Auth: appCfg.AuditLogAuth})

	accountsSvc := accounts.New(users, tokens, audit, metrics, accounts.Config{BcryptCost: appCfg.BcryptCost}, logger)
	metricSvc := sustainability.New(metricsstore.New(deps.MongoDatabase), users, metrics, sustainability.Config{
		UpsertConcurrency: appCfg.UpsertConcurrency,
		Benchmarks:        appCfg.benchmarks(),
	}, logger)

	loginLimiter := ratelimit.NewLoginLimiterWithConfig(
		appCfg.LoginIPLimit, appCfg.LoginIPWindow,
		appCfg.LoginEmailLimit, appCfg.LoginEmailWindow)
	onShutdown(loginLimiter.Stop)
	registerLimiter := ratelimit.New(appCfg.RegisterIPLimit, appCfg.RegisterIPWindow)
	onShutdown(registerLimiter.Stop)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(reqlog.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Conn, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler())

	authHandler := authapifeature.NewHandler(accountsSvc, loginLimiter, registerLimiter, audit, metrics, logger)
	r.Mount("/auth", authapifeature.Routes(authHandler))

	metricHandler := metricfeature.NewHandler(metricSvc, logger)
	r.Mount("/metric", metricfeature.Routes(metricHandler, tokens))

	userInfoHandler := userinfofeature.NewHandler(users, logger)
	r.Mount("/me", userinfofeature.Routes(userInfoHandler, tokens))

	activityHandler := activityfeature.NewHandler(auditEvents, logger)
	r.Mount("/activity", activityfeature.Routes(activityHandler, tokens))

	return r, nil
}
