package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/rangeset"
)

// LoadRangeSets returns saved range sets. When nothing usable is stored the
// default set is seeded, saved and returned.
func (s *Store) LoadRangeSets(ctx context.Context) []model.RangeSet {
	sets, ok := loadJSON[[]model.RangeSet](ctx, s, KeyRangeSets, nil)
	if ok && len(sets) > 0 {
		return sets
	}
	defaults := []model.RangeSet{rangeset.Default(s.now())}
	s.log.Info("seeding default range set", zap.String("range_set", rangeset.DefaultID))
	s.SaveRangeSets(ctx, defaults)
	return defaults
}

// SaveRangeSets persists every range set.
func (s *Store) SaveRangeSets(ctx context.Context, sets []model.RangeSet) {
	s.SaveJSON(ctx, KeyRangeSets, sets)
}
