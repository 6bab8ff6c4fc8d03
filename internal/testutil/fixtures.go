package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/greenledger/internal/app/system/normalize"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user whose password is hashed at bcrypt.MinCost
// so tests stay fast.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        normalize.Email(email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateMetric inserts a metric record for userID and year.
func (f *Fixtures) CreateMetric(ctx context.Context, userID primitive.ObjectID, year int, m models.Measurements) models.Metric {
	f.t.Helper()

	now := time.Now().UTC()
	metric := models.Metric{
		ID:                primitive.NewObjectID(),
		UserID:            userID,
		Year:              year,
		CarbonEmissions:   m.CarbonEmissions,
		EnergyConsumption: m.EnergyConsumption,
		WasteDistributed:  m.WasteDistributed,
		WaterUsage:        m.WaterUsage,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := f.db.Collection("metrics").InsertOne(ctx, metric); err != nil {
		f.t.Fatalf("failed to create test metric: %v", err)
	}
	return metric
}

// CountDocuments counts documents in coll matching filter.
func (f *Fixtures) CountDocuments(ctx context.Context, coll string, filter bson.M) int64 {
	f.t.Helper()
	n, err := f.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("count %s: %v", coll, err)
	}
	return n
}
