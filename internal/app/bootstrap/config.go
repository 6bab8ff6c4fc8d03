// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/greenledger/internal/app/services/sustainability"
	"github.com/dalemusser/greenledger/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// minTokenSecretLen is the secret length below which startup warns.
const minTokenSecretLen = 32

// appConfigKeys defines the configuration keys for GreenLedger.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_secret, etc.
//   - Environment variables: GREENLEDGER_MONGO_URI, GREENLEDGER_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "greenledger", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "token_secret", Default: "", Desc: "HMAC secret for signing access tokens (required)"},
	{Name: "bcrypt_cost", Default: bcrypt.DefaultCost, Desc: "bcrypt cost for password hashing"},

	{Name: "upsert_concurrency", Default: sustainability.DefaultUpsertConcurrency, Desc: "Years of one metric batch written concurrently"},

	// Rate limiting
	{Name: "login_ip_limit", Default: 10, Desc: "Login attempts allowed per IP per login_ip_window"},
	{Name: "login_ip_window", Default: "1m", Desc: "Window for login_ip_limit"},
	{Name: "login_email_limit", Default: 5, Desc: "Login attempts allowed per email per login_email_window"},
	{Name: "login_email_window", Default: "5m", Desc: "Window for login_email_limit"},
	{Name: "register_ip_limit", Default: 20, Desc: "Registrations allowed per IP per register_ip_window"},
	{Name: "register_ip_window", Default: "1h", Desc: "Window for register_ip_limit"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps them forever)"},
	{Name: "audit_prune_interval", Default: "1h", Desc: "How often expired audit events are pruned"},

	// Industry benchmarks
	{Name: "benchmark_carbon", Default: "75", Desc: "Carbon emissions benchmark (tons CO2e)"},
	{Name: "benchmark_water", Default: "1200", Desc: "Water usage benchmark (kiloliters)"},
	{Name: "benchmark_waste", Default: "45", Desc: "Waste benchmark (tons)"},
	{Name: "benchmark_energy", Default: "850", Desc: "Energy consumption benchmark (MWh)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, GREENLEDGER_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GREENLEDGER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSecret: appValues.String("token_secret"),
		BcryptCost:  appValues.Int("bcrypt_cost"),

		UpsertConcurrency: appValues.Int("upsert_concurrency"),

		LoginIPLimit:     appValues.Int("login_ip_limit"),
		LoginIPWindow:    appValues.Duration("login_ip_window", time.Minute),
		LoginEmailLimit:  appValues.Int("login_email_limit"),
		LoginEmailWindow: appValues.Duration("login_email_window", 5*time.Minute),
		RegisterIPLimit:  appValues.Int("register_ip_limit"),
		RegisterIPWindow: appValues.Duration("register_ip_window", time.Hour),

		AuditLogAuth:       strings.ToLower(strings.TrimSpace(appValues.String("audit_log_auth"))),
		AuditRetention:     appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditPruneInterval: appValues.Duration("audit_prune_interval", time.Hour),
	}

	bench := []struct {
		key string
		dst *float64
	}{
		{"benchmark_carbon", &appCfg.BenchmarkCarbon},
		{"benchmark_water", &appCfg.BenchmarkWater},
		{"benchmark_waste", &appCfg.BenchmarkWaste},
		{"benchmark_energy", &appCfg.BenchmarkEnergy},
	}
	for _, b := range bench {
		v, err := strconv.ParseFloat(strings.TrimSpace(appValues.String(b.key)), 64)
		if err != nil {
			return nil, AppConfig{}, fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = v
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database must not be empty")
	}

	if appCfg.TokenSecret == "" {
		return errors.New("token_secret is required")
	}
	if len(appCfg.TokenSecret) < minTokenSecretLen {
		logger.Warn("token_secret is shorter than recommended",
			zap.Int("length", len(appCfg.TokenSecret)),
			zap.Int("recommended", minTokenSecretLen))
	}

	if appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if appCfg.UpsertConcurrency < 1 {
		return errors.New("upsert_concurrency must be at least 1")
	}

	limits := []struct {
		name   string
		limit  int
		window time.Duration
	}{
		{"login_ip", appCfg.LoginIPLimit, appCfg.LoginIPWindow},
		{"login_email", appCfg.LoginEmailLimit, appCfg.LoginEmailWindow},
		{"register_ip", appCfg.RegisterIPLimit, appCfg.RegisterIPWindow},
	}
	for _, l := range limits {
		if l.limit < 1 || l.window <= 0 {
			return fmt.Errorf("%s_limit and %s_window must be positive", l.name, l.name)
		}
	}

	switch appCfg.AuditLogAuth {
	case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("audit_log_auth must be one of all, db, log, off (got %q)", appCfg.AuditLogAuth)
	}

	if appCfg.AuditRetention < 0 {
		return errors.New("audit_retention must not be negative")
	}
	if appCfg.AuditRetention > 0 && appCfg.AuditPruneInterval <= 0 {
		return errors.New("audit_prune_interval must be positive when audit_retention is set")
	}

	for name, v := range map[string]float64{
		"benchmark_carbon": appCfg.BenchmarkCarbon,
		"benchmark_water":  appCfg.BenchmarkWater,
		"benchmark_waste":  appCfg.BenchmarkWaste,
		"benchmark_energy": appCfg.BenchmarkEnergy,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be greater than zero", name)
		}
	}

	return nil
}

// benchmarks converts the configured values for the metric service.
func (c AppConfig) benchmarks() sustainability.Benchmarks {
	return sustainability.Benchmarks{
		CarbonEmissions:   c.BenchmarkCarbon,
		WaterUsage:        c.BenchmarkWater,
		WasteDistributed:  c.BenchmarkWaste,
		EnergyConsumption: c.BenchmarkEnergy,
	}
}
