package stats

import (
	"sort"

	"github.com/verte-zerg/preflop/internal/model"
)

// TopHandsByVolume returns the n most answered hands.
func TopHandsByVolume(hands []model.HandStats, n int) []model.HandStats {
	if n <= 0 || len(hands) == 0 {
		return nil
	}
	items := make([]model.HandStats, len(hands))
	copy(items, hands)
	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalQuestions == items[j].TotalQuestions {
			return items[i].Hand < items[j].Hand
		}
		return items[i].TotalQuestions > items[j].TotalQuestions
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
