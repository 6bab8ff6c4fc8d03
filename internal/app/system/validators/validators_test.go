package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/greenledger/internal/app/system/validators"
	"github.com/dalemusser/greenledger/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) *mongo.Database {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Second call should also succeed (idempotent)
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"users", "metrics", "audit_events"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestUsersValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	now := time.Now().UTC()

	valid := bson.M{"name": "Ada", "email": "ada@example.com", "password_hash": "$2a$10$x", "created_at": now, "updated_at": now}
	if _, err := db.Collection("users").InsertOne(ctx, valid); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	invalid := []bson.M{
		{"email": "a@example.com", "password_hash": "h"},
		{"name": "   ", "email": "b@example.com", "password_hash": "h"},
		{"name": "Bo", "email": "not-an-email", "password_hash": "h"},
		{"name": "Bo", "email": "c@example.com"},
	}
	for i, doc := range invalid {
		if _, err := db.Collection("users").InsertOne(ctx, doc); err == nil {
			t.Errorf("invalid user %d accepted: %v", i, doc)
		}
	}
}

func TestMetricsValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := func() bson.M {
		return bson.M{
			"user_id":            primitive.NewObjectID(),
			"year":               2023,
			"carbon_emissions":   70.5,
			"energy_consumption": 800,
			"waste_distributed":  0,
			"water_usage":        1300.25,
		}
	}
	if _, err := db.Collection("metrics").InsertOne(ctx, base()); err != nil {
		t.Fatalf("valid metric rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(bson.M)
	}{
		{"missing user", func(d bson.M) { delete(d, "user_id") }},
		{"string user", func(d bson.M) { d["user_id"] = "abc" }},
		{"zero year", func(d bson.M) { d["year"] = 0 }},
		{"fractional year", func(d bson.M) { d["year"] = 2023.5 }},
		{"negative carbon", func(d bson.M) { d["carbon_emissions"] = -1.0 }},
		{"string water", func(d bson.M) { d["water_usage"] = "lots" }},
		{"missing waste", func(d bson.M) { delete(d, "waste_distributed") }},
	}
	for _, tt := range tests {
		doc := base()
		tt.mutate(doc)
		if _, err := db.Collection("metrics").InsertOne(ctx, doc); err == nil {
			t.Errorf("%s: invalid metric accepted", tt.name)
		}
	}
}

func TestAuditEventsValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	valid := bson.M{"timestamp": time.Now().UTC(), "category": "auth", "event_type": "login_success", "success": true, "ip": "127.0.0.1"}
	if _, err := db.Collection("audit_events").InsertOne(ctx, valid); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	invalid := bson.M{"timestamp": time.Now().UTC(), "category": "billing", "event_type": "x", "success": true}
	if _, err := db.Collection("audit_events").InsertOne(ctx, invalid); err == nil {
		t.Error("unknown category accepted")
	}
}
