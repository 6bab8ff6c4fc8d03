// Package sustainability implements per-user, per-year metric storage and
// the reports built on top of it.
package sustainability

import (
	"context"
	"errors"

	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Client-facing messages.
const (
	MsgUnauthorized = "Unauthorized"
	MsgUserNotFound = "User not found"
	MsgUnavailable  = "Service temporarily unavailable"
	MsgNoData       = "No metrics recorded"
)

// MetricStore is the slice of the metrics store the service needs.
type MetricStore interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, year int, m models.Measurements) (models.Metric, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Metric, error)
	GetByUserYear(ctx context.Context, userID primitive.ObjectID, year int) (*models.Metric, error)
	Latest(ctx context.Context, userID primitive.ObjectID) (*models.Metric, error)
}

// UserLookup resolves token owners.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Recorder counts upsert activity. *telemetry.Metrics satisfies it.
type Recorder interface {
	UpsertBatch(size int)
	UpsertEntry(result string)
}

// Config tunes the service.
type Config struct {
	// UpsertConcurrency bounds how many years of one batch are written at once.
	UpsertConcurrency int
	Benchmarks        Benchmarks
}

// DefaultUpsertConcurrency is used when Config.UpsertConcurrency is not positive.
const DefaultUpsertConcurrency = 8

// Service reads and writes metric entries on behalf of authenticated users.
type Service struct {
	metrics     MetricStore
	users       UserLookup
	rec         Recorder
	concurrency int
	benchmarks  Benchmarks
	log         *zap.Logger
}

// New builds a Service. rec may be nil.
func New(metrics MetricStore, users UserLookup, rec Recorder, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	n := cfg.UpsertConcurrency
	if n <= 0 {
		n = DefaultUpsertConcurrency
	}
	b := cfg.Benchmarks
	if b == (Benchmarks{}) {
		b = DefaultBenchmarks
	}
	return &Service{
		metrics:     metrics,
		users:       users,
		rec:         rec,
		concurrency: n,
		benchmarks:  b,
		log:         log,
	}
}

// callerID extracts the owner id from claims without touching the store.
func callerID(claims *auth.Claims) (primitive.ObjectID, error) {
	if claims == nil || claims.UserID == "" {
		return primitive.NilObjectID, apperr.New(apperr.Unauthorized, MsgUnauthorized)
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Unauthorized, MsgUnauthorized)
	}
	return id, nil
}

// resolveOwner confirms the token's user still exists.
func (s *Service) resolveOwner(ctx context.Context, claims *auth.Claims) (primitive.ObjectID, error) {
	id, err := callerID(claims)
	if err != nil {
		return id, err
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, apperr.New(apperr.Unauthorized, MsgUserNotFound)
		}
		return primitive.NilObjectID, apperr.Wrap(apperr.StoreUnavailable, MsgUnavailable, err)
	}
	return id, nil
}

// CheckOwner reports whether claims name an existing user, failing the same
// way UpsertMetrics does when they do not.
func (s *Service) CheckOwner(ctx context.Context, claims *auth.Claims) error {
	_, err := s.resolveOwner(ctx, claims)
	return err
}

// GetMetrics returns every entry owned by the caller, sorted by year.
func (s *Service) GetMetrics(ctx context.Context, claims *auth.Claims) ([]models.Metric, error) {
	id, err := callerID(claims)
	if err != nil {
		return nil, err
	}
	list, err := s.metrics.ListByUser(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, MsgUnavailable, err)
	}
	if list == nil {
		list = []models.Metric{}
	}
	return list, nil
}
