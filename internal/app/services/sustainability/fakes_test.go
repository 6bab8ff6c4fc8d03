package sustainability

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type metricKey struct {
	user primitive.ObjectID
	year int
}

type fakeMetrics struct {
	mu      sync.Mutex
	docs    map[metricKey]models.Metric
	writes  int
	failOn  int // year that fails, 0 = none
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{docs: map[metricKey]models.Metric{}}
}

func (f *fakeMetrics) Upsert(_ context.Context, userID primitive.ObjectID, year int, m models.Measurements) (models.Metric, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != 0 && year == f.failOn {
		return models.Metric{}, errors.New("write failed")
	}
	f.writes++
	k := metricKey{userID, year}
	now := time.Now().UTC()
	doc, ok := f.docs[k]
	if !ok {
		doc = models.Metric{ID: primitive.NewObjectID(), UserID: userID, Year: year, CreatedAt: now}
	}
	doc.CarbonEmissions = m.CarbonEmissions
	doc.EnergyConsumption = m.EnergyConsumption
	doc.WasteDistributed = m.WasteDistributed
	doc.WaterUsage = m.WaterUsage
	doc.UpdatedAt = now
	f.docs[k] = doc
	return doc, nil
}

func (f *fakeMetrics) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Metric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Metric{}
	for k, d := range f.docs {
		if k.user == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (f *fakeMetrics) GetByUserYear(_ context.Context, userID primitive.ObjectID, year int) (*models.Metric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[metricKey{userID, year}]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &d, nil
}

func (f *fakeMetrics) Latest(ctx context.Context, userID primitive.ObjectID) (*models.Metric, error) {
	list, _ := f.ListByUser(ctx, userID)
	if len(list) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	last := list[len(list)-1]
	return &last, nil
}

func (f *fakeMetrics) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakeUsers struct {
	ids map[primitive.ObjectID]bool
	err error
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.ids[id] {
		return nil, mongo.ErrNoDocuments
	}
	return &models.User{ID: id}, nil
}
