// Package rangeset manages range sets: defaults, lookup, editing and validation.
package rangeset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/preflop/internal/hand"
	"github.com/verte-zerg/preflop/internal/model"
)

// DefaultID is the id of the built-in range set.
const DefaultID = "default_6max_open"

// Errors returned by Delete and lookups.
var (
	ErrLastRangeSet    = errors.New("cannot delete the last range set")
	ErrUnknownRangeSet = errors.New("unknown range set")
)

var (
	utgOpen = []model.HandCode{"AA", "KK", "QQ", "JJ", "TT", "AKs", "AQs", "AJs", "KQs", "AKo", "AQo"}
	coOpen  = []model.HandCode{
		"AA", "KK", "QQ", "JJ", "TT", "99", "88",
		"AKs", "AQs", "AJs", "ATs", "KQs", "KJs", "QJs", "JTs", "T9s",
		"AKo", "AQo", "AJo",
	}
	btnOpen = []model.HandCode{
		"AA", "KK", "QQ", "JJ", "TT", "99", "88", "77", "66",
		"AKs", "AQs", "AJs", "ATs", "A9s", "A8s", "KQs", "KJs", "KTs", "QJs", "QTs", "JTs", "T9s", "98s", "87s",
		"AKo", "AQo", "AJo", "ATo",
	}
)

// Tier boundaries by strength rank (1-based, inclusive).
var tierLimits = []struct {
	tier  string
	limit int
}{
	{model.TierPremium, 10},
	{model.TierStrong, 30},
	{model.TierMedium, 70},
	{model.TierSpeculative, hand.Count},
}

func openScenario(id, name string, pos model.Position, stack int, open []model.HandCode) model.RangeScenario {
	hands := make(map[model.HandCode]model.HandDecision, len(open))
	for _, h := range open {
		hands[h] = model.HandDecision{Raise: 100}
	}
	enabled := append([]model.HandCode(nil), open...)
	hand.SortCanonical(enabled)
	return model.RangeScenario{
		ID:               id,
		Name:             name,
		HeroPosition:     pos,
		StackSizeBB:      stack,
		ScenarioType:     model.ScenarioOpen,
		Hands:            hands,
		EnabledHandCodes: enabled,
	}
}

// Default returns the built-in 6-max open set: UTG, CO and BTN at 40bb, raising 100%.
func Default(now time.Time) model.RangeSet {
	ranked := hand.RankedByStrength()
	tiers := Tiers(ranked)
	return model.RangeSet{
		Meta: model.RangeSetMeta{
			ID:          DefaultID,
			Name:        "6-max open (default)",
			Description: "UTG, CO and BTN 40bb opening ranges",
			Version:     1,
			GameType:    "6max",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Scenarios: []model.RangeScenario{
			openScenario("utg_open_40bb", "UTG open 40BB", model.PositionUTG, 40, utgOpen),
			openScenario("co_open_40bb", "CO open 40BB", model.PositionCO, 40, coOpen),
			openScenario("btn_open_40bb", "BTN open 40BB", model.PositionBTN, 40, btnOpen),
		},
		Categories: map[model.Position]map[string][]model.HandCode{
			model.PositionUTG: tiers,
			model.PositionCO:  tiers,
			model.PositionBTN: tiers,
		},
		RankedHands: ranked,
	}
}

// Tiers buckets ranked hands into strength tiers, keeping rank order inside each tier.
func Tiers(ranked []model.HandCode) map[string][]model.HandCode {
	out := make(map[string][]model.HandCode, len(tierLimits))
	for i, code := range ranked {
		for _, tl := range tierLimits {
			if i+1 <= tl.limit {
				out[tl.tier] = append(out[tl.tier], code)
				break
			}
		}
	}
	return out
}

// FindRangeSet returns the set with id, falling back to the first set. Nil when sets is empty.
func FindRangeSet(sets []model.RangeSet, id string) *model.RangeSet {
	if len(sets) == 0 {
		return nil
	}
	for i := range sets {
		if sets[i].Meta.ID == id {
			return &sets[i]
		}
	}
	return &sets[0]
}

// FindScenario returns the scenario with id, falling back to the first one.
func FindScenario(set *model.RangeSet, id string) *model.RangeScenario {
	if set == nil || len(set.Scenarios) == 0 {
		return nil
	}
	for i := range set.Scenarios {
		if set.Scenarios[i].ID == id {
			return &set.Scenarios[i]
		}
	}
	return &set.Scenarios[0]
}

// ToggleHand flips whether code is enabled and reports the new state.
func ToggleHand(sc *model.RangeScenario, code model.HandCode) (bool, error) {
	grid, ok := hand.ToGrid(code)
	if !ok {
		return false, fmt.Errorf("invalid hand code %q", code)
	}
	kept := sc.EnabledHandCodes[:0:0]
	removed := false
	for _, h := range sc.EnabledHandCodes {
		if h == grid {
			removed = true
			continue
		}
		kept = append(kept, h)
	}
	if !removed {
		kept = append(kept, grid)
	}
	hand.SortCanonical(kept)
	sc.EnabledHandCodes = kept
	return !removed, nil
}

// ApplyPreset enables the top ratio of ranked hands: every hand whose 1-based
// rank is at most max(1, round(169*ratio)). An empty ranking uses Chen order.
func ApplyPreset(sc *model.RangeScenario, ranked []model.HandCode, ratio float64) (int, error) {
	if ratio <= 0 || ratio > 1 || math.IsNaN(ratio) {
		return 0, fmt.Errorf("preset ratio must be in (0, 1], got %v", ratio)
	}
	if len(ranked) == 0 {
		ranked = hand.RankedByStrength()
	}
	threshold := int(math.Max(1, math.Round(hand.Count*ratio)))
	seen := map[model.HandCode]bool{}
	enabled := make([]model.HandCode, 0, threshold)
	for i, code := range ranked {
		if i+1 > threshold {
			break
		}
		grid, ok := hand.ToGrid(code)
		if !ok || seen[grid] {
			continue
		}
		seen[grid] = true
		enabled = append(enabled, grid)
	}
	hand.SortCanonical(enabled)
	sc.EnabledHandCodes = enabled
	return len(enabled), nil
}

// Touch bumps the set's UpdatedAt.
func Touch(set *model.RangeSet, now time.Time) {
	set.Meta.UpdatedAt = now
}

// Delete removes the set with id. The last remaining set cannot be deleted.
func Delete(sets []model.RangeSet, id string) ([]model.RangeSet, error) {
	idx := -1
	for i := range sets {
		if sets[i].Meta.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sets, fmt.Errorf("failed to delete %q: %w", id, ErrUnknownRangeSet)
	}
	if len(sets) <= 1 {
		return sets, ErrLastRangeSet
	}
	out := make([]model.RangeSet, 0, len(sets)-1)
	out = append(out, sets[:idx]...)
	return append(out, sets[idx+1:]...), nil
}

// Validate rejects sets with missing ids, unknown hand codes or negative weights.
func Validate(set model.RangeSet) error {
	if set.Meta.ID == "" {
		return errors.New("range set id is required")
	}
	if len(set.Scenarios) == 0 {
		return fmt.Errorf("range set %s has no scenarios", set.Meta.ID)
	}
	ids := map[string]bool{}
	for _, sc := range set.Scenarios {
		if sc.ID == "" {
			return fmt.Errorf("range set %s: scenario id is required", set.Meta.ID)
		}
		if ids[sc.ID] {
			return fmt.Errorf("range set %s: duplicate scenario %s", set.Meta.ID, sc.ID)
		}
		ids[sc.ID] = true
		for code, d := range sc.Hands {
			if !hand.IsGrid(code) {
				return fmt.Errorf("scenario %s: invalid hand code %q", sc.ID, code)
			}
			if d.Raise < 0 || d.Call < 0 || d.Fold < 0 {
				return fmt.Errorf("scenario %s: negative weight for %s", sc.ID, code)
			}
		}
		for _, code := range sc.EnabledHandCodes {
			if !hand.IsGrid(code) {
				return fmt.Errorf("scenario %s: invalid enabled hand %q", sc.ID, code)
			}
		}
	}
	for pos, byTier := range set.Categories {
		for tier, codes := range byTier {
			for _, code := range codes {
				if _, ok := hand.ToGrid(code); !ok {
					return fmt.Errorf("category %s:%s: invalid hand code %q", pos, tier, code)
				}
			}
		}
	}
	return nil
}
