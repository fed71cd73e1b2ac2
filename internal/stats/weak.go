package stats

import (
	"sort"

	"github.com/verte-zerg/preflop/internal/model"
)

// WeakOptions bounds which hands count as weak.
type WeakOptions struct {
	MinSample   int
	MaxAccuracy float64
}

// DefaultWeakOptions returns minSample 5 and maxAccuracy 0.6.
func DefaultWeakOptions() WeakOptions {
	return WeakOptions{MinSample: 5, MaxAccuracy: 0.6}
}

// WeakHands returns hands with enough answers and low accuracy, worst first.
func WeakHands(snap model.StatsSnapshot, opts WeakOptions) []model.HandStats {
	out := make([]model.HandStats, 0)
	for _, h := range snap.ByHand {
		if h.TotalQuestions >= opts.MinSample && h.Accuracy <= opts.MaxAccuracy {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy == out[j].Accuracy {
			return out[i].Hand < out[j].Hand
		}
		return out[i].Accuracy < out[j].Accuracy
	})
	return out
}

// HandCodes extracts hand codes, e.g. to seed a review session.
func HandCodes(hands []model.HandStats) []model.HandCode {
	codes := make([]model.HandCode, len(hands))
	for i, h := range hands {
		codes[i] = h.Hand
	}
	return codes
}

// WeakHandsChange returns previous - current. A positive value means fewer weak hands.
// ok is false when there is no previous count.
func WeakHandsChange(current int, previous *int) (diff int, ok bool) {
	if previous == nil {
		return 0, false
	}
	return *previous - current, true
}
