package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/store"
)

func TestBuildReport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "preflop.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		s := makeSession("s"+string(rune('a'+i)), start, "btn_open_40bb", map[model.HandCode][2]int{
			"AA":  {5, 5},
			"A9s": {i, 5},
		})
		if err := st.UpsertSession(ctx, &s); err != nil {
			t.Fatalf("upsert session: %v", err)
		}
	}

	opts := ReportOptions{Weak: DefaultWeakOptions(), Location: time.UTC, RecordWeakCount: true}
	report, err := BuildReport(ctx, st, opts)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Snapshot.Global.TotalSessions != 3 || report.Snapshot.Global.TotalQuestions != 30 {
		t.Fatalf("unexpected global stats: %+v", report.Snapshot.Global)
	}
	if len(report.Weak) != 1 || report.Weak[0].Hand != "A9s" {
		t.Fatalf("expected A9s to be weak, got %+v", report.Weak)
	}
	if report.StreakDays != 3 {
		t.Fatalf("expected 3 day streak, got %d", report.StreakDays)
	}
	if report.PreviousWeak != nil {
		t.Fatalf("expected no previous weak count on the first run")
	}
	if report.Snapshot.ByScenario[0].ScenarioName != "BTN open 40BB" {
		t.Fatalf("expected scenario name from the default range set, got %q", report.Snapshot.ByScenario[0].ScenarioName)
	}
	if len(report.Categories) == 0 {
		t.Fatalf("expected tier categories for the default range set")
	}
	if len(report.Accuracies) != 3 || report.Accuracies[0] != 50 {
		t.Fatalf("unexpected accuracies %v", report.Accuracies)
	}

	again, err := BuildReport(ctx, st, opts)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if again.PreviousWeak == nil || *again.PreviousWeak != 1 {
		t.Fatalf("expected previous weak count 1, got %v", again.PreviousWeak)
	}

	var buf bytes.Buffer
	if err := again.Render(&buf, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Insights", "Streak: 3 days", "unchanged since last time", "Accuracy per Session", "Weak Hands", "Position x Tier", "Recent Sessions"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestRenderEmptyReport(t *testing.T) {
	report := NewReport(nil, nil, nil, ReportOptions{Weak: DefaultWeakOptions()})
	var buf bytes.Buffer
	if err := report.Render(&buf, 80, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
