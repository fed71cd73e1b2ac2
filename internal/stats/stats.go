// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/preflop/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RecentLimit caps the recent sessions kept in a snapshot.
const RecentLimit = 10

// Calc aggregates sessions into a snapshot. Only answered questions count;
// scenarios are keyed by the session, so an unanswered session still gets a row.
func Calc(sessions []model.TrainingSession) model.StatsSnapshot {
	snap := model.StatsSnapshot{
		Global:         model.GlobalStats{TotalSessions: len(sessions)},
		ByScenario:     []model.ScenarioStats{},
		ByHand:         []model.HandStats{},
		RecentSessions: []model.RecentSessionSummary{},
	}
	byScenario := map[string]*model.ScenarioStats{}
	byHand := map[model.HandCode]*model.HandStats{}
	for i := range sessions {
		s := &sessions[i]
		sc := byScenario[s.ScenarioID]
		if sc == nil {
			sc = &model.ScenarioStats{ScenarioID: s.ScenarioID}
			byScenario[s.ScenarioID] = sc
		}
		for _, r := range s.Results {
			snap.Global.TotalQuestions++
			sc.TotalQuestions++
			hs := byHand[r.Hand]
			if hs == nil {
				hs = &model.HandStats{Hand: r.Hand}
				byHand[r.Hand] = hs
			}
			hs.TotalQuestions++
			if r.IsCorrect {
				snap.Global.TotalCorrect++
				sc.TotalCorrect++
				hs.TotalCorrect++
			}
		}
	}
	snap.Global.Accuracy = ratio(snap.Global.TotalCorrect, snap.Global.TotalQuestions)

	for _, sc := range byScenario {
		sc.Accuracy = ratio(sc.TotalCorrect, sc.TotalQuestions)
		snap.ByScenario = append(snap.ByScenario, *sc)
	}
	sort.Slice(snap.ByScenario, func(i, j int) bool {
		return snap.ByScenario[i].ScenarioID < snap.ByScenario[j].ScenarioID
	})
	for _, hs := range byHand {
		hs.Accuracy = ratio(hs.TotalCorrect, hs.TotalQuestions)
		snap.ByHand = append(snap.ByHand, *hs)
	}
	sort.Slice(snap.ByHand, func(i, j int) bool {
		return snap.ByHand[i].Hand < snap.ByHand[j].Hand
	})

	snap.RecentSessions = recent(sessions, RecentLimit)
	return snap
}

func recent(sessions []model.TrainingSession, limit int) []model.RecentSessionSummary {
	ordered := make([]*model.TrainingSession, len(sessions))
	for i := range sessions {
		ordered[i] = &sessions[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.After(ordered[j].StartedAt)
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	out := make([]model.RecentSessionSummary, 0, len(ordered))
	for _, s := range ordered {
		out = append(out, model.RecentSessionSummary{
			ID:            s.ID,
			StartedAt:     s.StartedAt,
			FinishedAt:    s.FinishedAt,
			ScenarioID:    s.ScenarioID,
			Accuracy:      s.Accuracy(),
			QuestionCount: len(s.Results),
		})
	}
	return out
}

func ratio(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// NameScenarios fills scenario display names from an id -> name map.
// Unknown ids keep their id as the name.
func NameScenarios(snap *model.StatsSnapshot, names map[string]string) {
	lookup := func(id string) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id
	}
	for i := range snap.ByScenario {
		snap.ByScenario[i].ScenarioName = lookup(snap.ByScenario[i].ScenarioID)
	}
	for i := range snap.RecentSessions {
		snap.RecentSessions[i].ScenarioName = lookup(snap.RecentSessions[i].ScenarioID)
	}
}

// ScenarioNames collects scenario names from range sets. The first set wins on id clashes.
func ScenarioNames(rangeSets []model.RangeSet) map[string]string {
	names := map[string]string{}
	for _, set := range rangeSets {
		for _, sc := range set.Scenarios {
			if _, ok := names[sc.ID]; !ok {
				names[sc.ID] = sc.Name
			}
		}
	}
	return names
}

// SessionAccuracies returns per-session accuracy in chronological order, as percentages.
func SessionAccuracies(sessions []model.TrainingSession) []float64 {
	ordered := make([]*model.TrainingSession, len(sessions))
	for i := range sessions {
		ordered[i] = &sessions[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.Before(ordered[j].StartedAt)
	})
	out := make([]float64, len(ordered))
	for i, s := range ordered {
		out[i] = s.Accuracy() * 100
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// RenderSummary prints global totals.
func RenderSummary(w io.Writer, g model.GlobalStats) error {
	if g.TotalSessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", g.TotalSessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Questions: %d\n", g.TotalQuestions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Correct: %d\n", g.TotalCorrect); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy: %s\n", pct(g.Accuracy)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderScenarioTable prints per-scenario results.
func RenderScenarioTable(w io.Writer, rows []model.ScenarioStats) error {
	if len(rows) == 0 {
		return nil
	}
	tbl := newTable("By Scenario", left("Scenario"), right("Questions"), right("Correct"), right("Accuracy"))
	for _, r := range rows {
		name := r.ScenarioName
		if name == "" {
			name = r.ScenarioID
		}
		tbl.add(name, fmt.Sprintf("%d", r.TotalQuestions), fmt.Sprintf("%d", r.TotalCorrect), pct(r.Accuracy))
	}
	return tbl.writeTo(w)
}

// RenderHandTable prints per-hand results, worst accuracy first.
func RenderHandTable(w io.Writer, title string, rows []model.HandStats) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "%s\nNo hands found.\n\n", title)
		return err
	}
	sorted := make([]model.HandStats, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Accuracy == sorted[j].Accuracy {
			return sorted[i].Hand < sorted[j].Hand
		}
		return sorted[i].Accuracy < sorted[j].Accuracy
	})
	tbl := newTable(title, left("Hand"), right("Questions"), right("Correct"), right("Accuracy"))
	for _, r := range sorted {
		tbl.add(r.Hand, fmt.Sprintf("%d", r.TotalQuestions), fmt.Sprintf("%d", r.TotalCorrect), pct(r.Accuracy))
	}
	return tbl.writeTo(w)
}

// RenderRecent prints recent sessions, newest first, with a trend line.
func RenderRecent(w io.Writer, rows []model.RecentSessionSummary) error {
	if len(rows) == 0 {
		return nil
	}
	tbl := newTable("Recent Sessions", left("Started"), left("Scenario"), right("Questions"), right("Accuracy"), left("Status"))
	trend := make([]float64, len(rows))
	for i, r := range rows {
		name := r.ScenarioName
		if name == "" {
			name = r.ScenarioID
		}
		status := "done"
		if r.FinishedAt == nil {
			status = "open"
		}
		tbl.add(r.StartedAt.Local().Format("2006-01-02 15:04"), name, fmt.Sprintf("%d", r.QuestionCount), pct(r.Accuracy), status)
		trend[len(rows)-1-i] = r.Accuracy
	}
	if err := tbl.writeTo(w); err != nil {
		return err
	}
	if len(trend) < 2 {
		return nil
	}
	_, err := fmt.Fprintf(w, "Trend: [%s]\n\n", Sparkline(MovingAverage(trend, 3)))
	return err
}
