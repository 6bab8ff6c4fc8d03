package metricsstore

import (
	"context"
	"time"

	"github.com/dalemusser/greenledger/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the metrics collection.
const Collection = "metrics"

// Store persists one Metric per (user_id, year).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Upsert creates the (userID, year) entry if absent, otherwise overwrites all
// four measurements in place, and returns the stored document.
//
// The write is a single findAndModify, so two writers for the same key never
// both insert. When two upserts race on an empty key the unique index
// rejects the loser with E11000; the retry then takes the update path.
func (s *Store) Upsert(ctx context.Context, userID primitive.ObjectID, year int, m models.Measurements) (models.Metric, error) {
	filter := bson.M{"user_id": userID, "year": year}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"carbon_emissions":   m.CarbonEmissions,
			"energy_consumption": m.EnergyConsumption,
			"waste_distributed":  m.WasteDistributed,
			"water_usage":        m.WaterUsage,
			"updated_at":         now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.Metric
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err != nil && wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return models.Metric{}, err
	}
	return out, nil
}

// ListByUser returns every entry owned by userID, oldest year first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Metric, error) {
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Metric, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByUserYear loads one entry. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUserYear(ctx context.Context, userID primitive.ObjectID, year int) (*models.Metric, error) {
	var m models.Metric
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID, "year": year}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Latest returns the entry with the highest year for userID.
// Returns mongo.ErrNoDocuments if the user has no entries.
func (s *Store) Latest(ctx context.Context, userID primitive.ObjectID) (*models.Metric, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "year", Value: -1}})
	var m models.Metric
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
