package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verte-zerg/preflop/internal/hand"
	"github.com/verte-zerg/preflop/internal/model"
)

// CategoryInput is what a classifier sees for each answered question.
type CategoryInput struct {
	ScenarioID string
	Hand       model.HandCode
	IsCorrect  bool
}

// Classifier maps a result to a category key. ok=false excludes the result.
type Classifier func(CategoryInput) (key string, ok bool)

// CalcCategories groups every result by the classifier's key, sorted by key.
func CalcCategories(sessions []model.TrainingSession, classify Classifier) []model.CategoryStats {
	groups := map[string]*model.CategoryStats{}
	for _, s := range sessions {
		for _, r := range s.Results {
			key, ok := classify(CategoryInput{ScenarioID: r.ScenarioID, Hand: r.Hand, IsCorrect: r.IsCorrect})
			if !ok {
				continue
			}
			g := groups[key]
			if g == nil {
				g = &model.CategoryStats{CategoryKey: key}
				groups[key] = g
			}
			g.TotalQuestions++
			if r.IsCorrect {
				g.TotalCorrect++
			}
		}
	}
	out := make([]model.CategoryStats, 0, len(groups))
	for _, g := range groups {
		g.Accuracy = ratio(g.TotalCorrect, g.TotalQuestions)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CategoryKey < out[j].CategoryKey
	})
	return out
}

// TierClassifier buckets results as "<heroPosition>:<tier>" using range set categories.
// Dealt codes are converted to grid codes first.
func TierClassifier(rangeSets []model.RangeSet) Classifier {
	heroes := map[string]model.Position{}
	tiers := map[model.Position]map[model.HandCode]string{}
	for _, set := range rangeSets {
		for _, sc := range set.Scenarios {
			if _, ok := heroes[sc.ID]; !ok && sc.HeroPosition != "" {
				heroes[sc.ID] = sc.HeroPosition
			}
		}
		for pos, byTier := range set.Categories {
			idx := tiers[pos]
			if idx == nil {
				idx = map[model.HandCode]string{}
				tiers[pos] = idx
			}
			for tier, codes := range byTier {
				for _, code := range codes {
					grid, ok := hand.ToGrid(code)
					if !ok {
						continue
					}
					if _, seen := idx[grid]; !seen {
						idx[grid] = tier
					}
				}
			}
		}
	}
	return func(in CategoryInput) (string, bool) {
		pos, ok := heroes[in.ScenarioID]
		if !ok {
			return "", false
		}
		grid, ok := hand.ToGrid(in.Hand)
		if !ok {
			return "", false
		}
		tier, ok := tiers[pos][grid]
		if !ok {
			return "", false
		}
		return string(pos) + ":" + tier, true
	}
}

func orderIndex[T comparable](items []T, v T) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return len(items)
}

// RenderCategoryTable prints position x tier results in table order.
func RenderCategoryTable(w io.Writer, rows []model.CategoryStats) error {
	if len(rows) == 0 {
		_, err := fmt.Fprint(w, "Position x Tier\nNot enough categorized history yet.\n\n")
		return err
	}
	type row struct {
		pos   model.Position
		tier  string
		stats model.CategoryStats
	}
	parsed := make([]row, 0, len(rows))
	for _, r := range rows {
		pos, tier, _ := strings.Cut(r.CategoryKey, ":")
		parsed = append(parsed, row{pos: model.Position(pos), tier: tier, stats: r})
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		pi, pj := orderIndex(model.PositionOrder, parsed[i].pos), orderIndex(model.PositionOrder, parsed[j].pos)
		if pi != pj {
			return pi < pj
		}
		return orderIndex(model.Tiers, parsed[i].tier) < orderIndex(model.Tiers, parsed[j].tier)
	})
	tbl := newTable("Position x Tier", left("Position"), left("Tier"), right("Questions"), right("Accuracy"))
	for _, r := range parsed {
		tbl.add(string(r.pos), r.tier, fmt.Sprintf("%d", r.stats.TotalQuestions), pct(r.stats.Accuracy))
	}
	return tbl.writeTo(w)
}
