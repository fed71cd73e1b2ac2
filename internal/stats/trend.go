package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/preflop/internal/model"
)

// BaselineWindow is how many sessions before the latest form the growth baseline.
const BaselineWindow = 10

// Growth compares the latest session with the mean of the preceding ones.
func Growth(sessions []model.TrainingSession) model.GrowthMetrics {
	if len(sessions) == 0 {
		return model.GrowthMetrics{}
	}
	ordered := make([]*model.TrainingSession, len(sessions))
	for i := range sessions {
		ordered[i] = &sessions[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.Before(ordered[j].StartedAt)
	})
	latest := ordered[len(ordered)-1]
	g := model.GrowthMetrics{
		LatestAccuracy:  latest.Accuracy(),
		LatestQuestions: len(latest.Results),
	}
	prev := ordered[:len(ordered)-1]
	if len(prev) == 0 {
		return g
	}
	if len(prev) > BaselineWindow {
		prev = prev[len(prev)-BaselineWindow:]
	}
	var sum float64
	for _, s := range prev {
		sum += s.Accuracy()
	}
	g.HasEnoughData = true
	g.BaselineSessions = len(prev)
	g.BaselineAccuracy = sum / float64(len(prev))
	g.Diff = g.LatestAccuracy - g.BaselineAccuracy
	return g
}

// Streak counts consecutive calendar days in loc that have a session, ending at
// the most recent session day. A nil loc means time.Local.
func Streak(sessions []model.TrainingSession, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	days := map[int64]struct{}{}
	for _, s := range sessions {
		if s.StartedAt.IsZero() {
			continue
		}
		days[civilDay(s.StartedAt.In(loc))] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}
	ordered := make([]int64, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] > ordered[j] })

	streak := 1
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1]-ordered[i] != 1 {
			break
		}
		streak++
	}
	return streak
}

// civilDay numbers the calendar date of t, ignoring its zone offset.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Insights holds the motivational figures shown after the summary.
type Insights struct {
	Growth        model.GrowthMetrics
	StreakDays    int
	WeakCount     int
	PreviousWeak  *int
	MostPracticed []model.HandStats
}

// RenderInsights prints growth, streak and weak-hand progress.
func RenderInsights(w io.Writer, in Insights) error {
	if _, err := fmt.Fprintln(w, "Insights"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, growthLine(in.Growth)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, streakLine(in.StreakDays)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, weakLine(in.WeakCount, in.PreviousWeak)); err != nil {
		return err
	}
	if len(in.MostPracticed) > 0 {
		line := "Most practiced:"
		for _, h := range in.MostPracticed {
			line += fmt.Sprintf(" %s (%d)", h.Hand, h.TotalQuestions)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func growthLine(g model.GrowthMetrics) string {
	if g.LatestQuestions == 0 && !g.HasEnoughData {
		return "Growth: not enough sessions to compare yet."
	}
	latest := math.Round(g.LatestAccuracy * 100)
	if !g.HasEnoughData {
		return fmt.Sprintf("Growth: latest session %.0f%%, more sessions needed for a comparison.", latest)
	}
	baseline := math.Round(g.BaselineAccuracy * 100)
	diff := math.Round(g.Diff * 100)
	switch {
	case diff > 0:
		return fmt.Sprintf("Growth: latest session %.0f%% vs %.0f%% average, up %.0f points.", latest, baseline, diff)
	case diff < 0:
		return fmt.Sprintf("Growth: latest session %.0f%% vs %.0f%% average, down %.0f points. Review weak hands to recover.", latest, baseline, -diff)
	default:
		return fmt.Sprintf("Growth: latest session %.0f%% matches the %.0f%% average.", latest, baseline)
	}
}

func streakLine(days int) string {
	switch {
	case days <= 0:
		return "Streak: no sessions yet."
	case days == 1:
		return "Streak: 1 day. Come back tomorrow to extend it."
	default:
		return fmt.Sprintf("Streak: %d days in a row.", days)
	}
}

func weakLine(current int, previous *int) string {
	diff, ok := WeakHandsChange(current, previous)
	switch {
	case !ok:
		return fmt.Sprintf("Weak hands: %d. Changes will show from the next stats run.", current)
	case diff > 0:
		return fmt.Sprintf("Weak hands: %d, %d fewer than last time (%d -> %d).", current, diff, *previous, current)
	case diff < 0:
		return fmt.Sprintf("Weak hands: %d, %d more than last time (%d -> %d).", current, -diff, *previous, current)
	default:
		return fmt.Sprintf("Weak hands: %d, unchanged since last time.", current)
	}
}
