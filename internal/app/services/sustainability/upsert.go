package sustainability

import (
	"context"

	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UpsertMetrics writes each entry as the caller's record for its year and
// returns the stored documents in input order.
//
// The whole batch is validated before any write. Distinct years are written
// concurrently; entries that share a year are applied one after another in
// input order, so the last one wins.
func (s *Service) UpsertMetrics(ctx context.Context, claims *auth.Claims, entries []EntryInput) ([]models.Metric, error) {
	owner, err := s.resolveOwner(ctx, claims)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []models.Metric{}, nil
	}

	valid := make([]validEntry, len(entries))
	for i, e := range entries {
		v, err := e.validate()
		if err != nil {
			return nil, err
		}
		valid[i] = v
	}

	if s.rec != nil {
		s.rec.UpsertBatch(len(valid))
	}

	// Group entry indexes by year, keeping first-seen order.
	var years []int
	byYear := make(map[int][]int)
	for i, v := range valid {
		if _, ok := byYear[v.year]; !ok {
			years = append(years, v.year)
		}
		byYear[v.year] = append(byYear[v.year], i)
	}

	results := make([]models.Metric, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, year := range years {
		idxs := byYear[year]
		g.Go(func() error {
			for _, i := range idxs {
				m, err := s.metrics.Upsert(gctx, owner, year, valid[i].m)
				if err != nil {
					s.record("error")
					return err
				}
				s.record("ok")
				results[i] = m
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error("metric upsert failed",
			zap.String("user_id", owner.Hex()),
			zap.Int("entries", len(valid)),
			zap.Error(err))
		return nil, apperr.Wrap(apperr.StoreUnavailable, MsgUnavailable, err)
	}
	return results, nil
}

func (s *Service) record(result string) {
	if s.rec != nil {
		s.rec.UpsertEntry(result)
	}
}
