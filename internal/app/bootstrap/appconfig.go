// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (GREENLEDGER_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and CORS; everything specific to GreenLedger
// lives here and is passed to the lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens and password hashing
	TokenSecret string // HMAC key for signing access tokens
	BcryptCost  int

	// Metric upserts
	UpsertConcurrency int // Years of one batch written at once

	// Rate limiting
	LoginIPLimit     int
	LoginIPWindow    time.Duration
	LoginEmailLimit  int
	LoginEmailWindow time.Duration
	RegisterIPLimit  int
	RegisterIPWindow time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth string

	// Events older than AuditRetention are pruned every AuditPruneInterval.
	// Zero retention keeps events forever.
	AuditRetention     time.Duration
	AuditPruneInterval time.Duration

	// Industry benchmarks
	BenchmarkCarbon float64
	BenchmarkWater  float64
	BenchmarkWaste  float64
	BenchmarkEnergy float64
}
