// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureMetrics(ctx, db); err != nil {
		problems = append(problems, "metrics: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

type desiredIndex struct {
	model  mongo.IndexModel
	name   string
	unique bool
	sig    string
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func describe(m mongo.IndexModel) desiredIndex {
	d := desiredIndex{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		if m.Options.Unique != nil {
			d.unique = *m.Options.Unique
		}
	}
	return d
}

func (e existingIndex) unique() bool {
	return e.Unique != nil && *e.Unique
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// listExisting returns the collection's indexes keyed by key signature.
func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func createErr(coll *mongo.Collection, d desiredIndex, err error) string {
	if wafflemongo.IsDup(err) && d.unique {
		helper := ""
		if coll.Name() == "users" && strings.Contains(d.sig, "email:1") {
			helper = " (find them with db.users.aggregate([{ $group: { _id: \"$email\", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }]))"
		}
		return fmt.Sprintf("%s(%s): cannot create unique index, duplicates present%s", coll.Name(), d.name, helper)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err)
}

// recreate drops ex and creates d in its place.
func recreate(ctx context.Context, coll *mongo.Collection, ex existingIndex, d desiredIndex) error {
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		return fmt.Errorf("%s(%s): drop %s failed: %w", coll.Name(), d.name, ex.Name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
		return errors.New(createErr(coll, d, err))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		d := describe(m)
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.unique),
		}
		zap.L().Info("ensuring index", fields...)

		existing := listExisting(ctx, coll)
		if ex, ok := existing[d.sig]; ok {
			switch {
			case ex.unique() == d.unique && (d.name == "" || ex.Name == d.name):
				zap.L().Info("reusing existing index",
					append(fields, zap.String("took", time.Since(start).String()))...)
			default:
				// Name or uniqueness differs: drop and recreate.
				if err := recreate(ctx, coll, ex, d); err != nil {
					zap.L().Warn("index recreate failed", append(fields, zap.Error(err))...)
					errs = append(errs, err.Error())
					continue
				}
				zap.L().Info("index dropped and recreated",
					append(fields, zap.String("from", ex.Name), zap.String("took", time.Since(start).String()))...)
			}
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			zap.L().Info("index ensured",
				append(fields, zap.String("created_name", created), zap.String("took", time.Since(start).String()))...)
			continue
		}

		if isOptionsConflictErr(err) {
			if ex, ok := listExisting(ctx, coll)[d.sig]; ok {
				if ex.unique() == d.unique {
					zap.L().Info("reusing existing index (post-conflict)",
						append(fields, zap.String("existing", ex.Name))...)
					continue
				}
				if rerr := recreate(ctx, coll, ex, d); rerr != nil {
					errs = append(errs, rerr.Error())
					continue
				}
				zap.L().Info("index dropped and recreated (post-conflict)", fields...)
				continue
			}
		}

		zap.L().Warn("index ensure failed",
			append(fields, zap.String("took", time.Since(start).String()), zap.Error(err))...)
		errs = append(errs, createErr(coll, d, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Emails are stored lowercased, so this makes uniqueness case-insensitive.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
	})
}

func ensureMetrics(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("metrics")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One record per (user, year). Upserts rely on this to collapse races.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "year", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_metrics_user_year"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_event_timestamp"),
		},
	})
}
