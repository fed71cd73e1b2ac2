package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/store"
)

// ReportOptions configures report building.
type ReportOptions struct {
	Weak WeakOptions
	// Location decides calendar days for the streak. Nil means time.Local.
	Location *time.Location
	// RecordWeakCount saves the current weak-hand count for the next report.
	RecordWeakCount bool
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Snapshot     model.StatsSnapshot
	Weak         []model.HandStats
	Categories   []model.CategoryStats
	Growth       model.GrowthMetrics
	StreakDays   int
	PreviousWeak *int
	// Accuracies holds per-session accuracy percentages, oldest first.
	Accuracies []float64
}

// NewReport derives a report from sessions and range sets.
func NewReport(sessions []model.TrainingSession, rangeSets []model.RangeSet, previousWeak *int, opts ReportOptions) Report {
	snap := Calc(sessions)
	NameScenarios(&snap, ScenarioNames(rangeSets))
	return Report{
		Snapshot:     snap,
		Weak:         WeakHands(snap, opts.Weak),
		Categories:   CalcCategories(sessions, TierClassifier(rangeSets)),
		Growth:       Growth(sessions),
		StreakDays:   Streak(sessions, opts.Location),
		PreviousWeak: previousWeak,
		Accuracies:   SessionAccuracies(sessions),
	}
}

// BuildReport loads sessions and range sets from the store and prepares a report.
func BuildReport(ctx context.Context, st *store.Store, opts ReportOptions) (Report, error) {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load sessions: %w", err)
	}
	report := NewReport(sessions, st.LoadRangeSets(ctx), st.LoadPrevWeakCount(ctx), opts)
	if opts.RecordWeakCount {
		st.SavePrevWeakCount(ctx, len(report.Weak))
	}
	return report, nil
}

// Insights returns the figures printed by RenderInsights.
func (r Report) Insights() Insights {
	return Insights{
		Growth:        r.Growth,
		StreakDays:    r.StreakDays,
		WeakCount:     len(r.Weak),
		PreviousWeak:  r.PreviousWeak,
		MostPracticed: TopHandsByVolume(r.Snapshot.ByHand, 5),
	}
}

// Render prints the full plain-text report. width <= 0 sizes the curve to the terminal.
func (r Report) Render(w io.Writer, width int, forceColor bool) error {
	if err := RenderSummary(w, r.Snapshot.Global); err != nil {
		return err
	}
	if r.Snapshot.Global.TotalSessions == 0 {
		return nil
	}
	if err := RenderInsights(w, r.Insights()); err != nil {
		return err
	}
	if len(r.Accuracies) > 1 {
		plotWidth := 0
		if width > 0 {
			plotWidth = PlotWidthFor(width)
		}
		if err := PlotAccuracy(w, "Accuracy per Session", MovingAverage(r.Accuracies, 3), plotWidth, 0, forceColor); err != nil {
			return err
		}
	}
	if err := RenderScenarioTable(w, r.Snapshot.ByScenario); err != nil {
		return err
	}
	if err := RenderHandTable(w, "Weak Hands", r.Weak); err != nil {
		return err
	}
	if err := RenderCategoryTable(w, r.Categories); err != nil {
		return err
	}
	return RenderRecent(w, r.Snapshot.RecentSessions)
}
