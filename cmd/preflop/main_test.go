package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/preflop/internal/config"
	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/rangeset"
	"github.com/verte-zerg/preflop/internal/store"
)

func testSets() []model.RangeSet {
	return []model.RangeSet{
		{Meta: model.RangeSetMeta{ID: "a"}, Scenarios: []model.RangeScenario{{ID: "a1"}, {ID: "a2"}}},
		{Meta: model.RangeSetMeta{ID: "b"}, Scenarios: []model.RangeScenario{{ID: "b1", Name: "B one"}}},
	}
}

func TestSelectActiveFallsBack(t *testing.T) {
	settings := model.AppSettings{ActiveRangeSetID: "missing", ActiveScenarioID: "nope"}
	if !selectActive(&settings, testSets()) {
		t.Fatalf("expected selection to change")
	}
	if settings.ActiveRangeSetID != "a" || settings.ActiveScenarioID != "a1" {
		t.Fatalf("unexpected selection %+v", settings)
	}
	settings.ActiveScenarioID = "a2"
	if selectActive(&settings, testSets()) {
		t.Fatalf("valid selection should not change")
	}
	if selectActive(&settings, nil) {
		t.Fatalf("empty sets should not change selection")
	}
}

func TestLookupScenarioIsStrict(t *testing.T) {
	sets := testSets()
	set, sc, err := lookupScenario(sets, "b", "")
	if err != nil || set.Meta.ID != "b" || sc.ID != "b1" {
		t.Fatalf("unexpected lookup %v %v %v", set, sc, err)
	}
	if _, _, err := lookupScenario(sets, "zzz", ""); !errors.Is(err, rangeset.ErrUnknownRangeSet) {
		t.Fatalf("expected unknown range set, got %v", err)
	}
	if _, _, err := lookupScenario(sets, "a", "b1"); err == nil {
		t.Fatalf("expected unknown scenario error")
	}
}

func TestUpsertRangeSet(t *testing.T) {
	sets, replaced := upsertRangeSet(testSets(), model.RangeSet{Meta: model.RangeSetMeta{ID: "b", Name: "new"}})
	if !replaced || len(sets) != 2 || sets[1].Meta.Name != "new" {
		t.Fatalf("expected replacement, got %+v", sets)
	}
	sets, replaced = upsertRangeSet(sets, model.RangeSet{Meta: model.RangeSetMeta{ID: "c"}})
	if replaced || len(sets) != 3 {
		t.Fatalf("expected append, got %+v", sets)
	}
}

func TestWriteRangeListMarksActive(t *testing.T) {
	var buf bytes.Buffer
	settings := model.AppSettings{ActiveRangeSetID: "a", ActiveScenarioID: "a2"}
	if err := writeRangeList(&buf, settings, testSets()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "* a") || !strings.HasPrefix(lines[2], "    * a2") || !strings.HasPrefix(lines[3], "  b") {
		t.Fatalf("unexpected markers:\n%s", buf.String())
	}
}

func TestScenarioTitle(t *testing.T) {
	if got := scenarioTitle(testSets(), "b", "b1"); got != "B one" {
		t.Fatalf("expected scenario name, got %q", got)
	}
	if got := scenarioTitle(testSets(), "a", "a1"); got != "a1" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}

func TestStreakLocation(t *testing.T) {
	loc, err := streakLocation(nil)
	if err != nil || loc != time.Local {
		t.Fatalf("expected local zone, got %v %v", loc, err)
	}
	name := "UTC"
	if loc, err = streakLocation(&name); err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v %v", loc, err)
	}
	bad := "Mars/Olympus"
	if _, err := streakLocation(&bad); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var questions int
	var accuracy float64
	cmd.Flags().IntVar(&questions, "questions", 20, "")
	cmd.Flags().Float64Var(&accuracy, "max-accuracy", 0.6, "")
	if err := cmd.Flags().Set("questions", "5"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	fromFile := 40
	fileAcc := 0.5
	applyIntConfig(cmd, "questions", &questions, &fromFile)
	applyFloatConfig(cmd, "max-accuracy", &accuracy, &fileAcc)
	if questions != 5 {
		t.Fatalf("changed flag must win, got %d", questions)
	}
	if accuracy != 0.5 {
		t.Fatalf("config must apply to unchanged flag, got %v", accuracy)
	}
}

func TestWriteConfigTemplateKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preflop", "config.toml")
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != config.Template {
		t.Fatalf("expected template, got %q %v", data, err)
	}
	if err := os.WriteFile(path, []byte("[trainer]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "[trainer]\n" {
		t.Fatalf("existing config must be kept")
	}
}

func setupHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func openDB(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestRangesCommands(t *testing.T) {
	setupHome(t)

	if _, err := execute(t, "ranges", "use", rangeset.DefaultID, "co_open_40bb"); err != nil {
		t.Fatalf("ranges use: %v", err)
	}
	if _, err := execute(t, "ranges", "preset", "0.25"); err != nil {
		t.Fatalf("ranges preset: %v", err)
	}
	if _, err := execute(t, "ranges", "toggle", "72o"); err != nil {
		t.Fatalf("ranges toggle: %v", err)
	}
	out, err := execute(t, "ranges", "list")
	if err != nil {
		t.Fatalf("ranges list: %v", err)
	}
	if !strings.Contains(out, "* co_open_40bb") {
		t.Fatalf("expected active co scenario in list:\n%s", out)
	}

	st := openDB(t)
	sets := st.LoadRangeSets(context.Background())
	sc := rangeset.FindScenario(&sets[0], "co_open_40bb")
	if len(sc.EnabledHandCodes) != 43 {
		t.Fatalf("expected 42 preset hands plus 72o, got %d", len(sc.EnabledHandCodes))
	}

	export := filepath.Join(t.TempDir(), "ranges.yaml")
	if _, err := execute(t, "ranges", "export", export); err != nil {
		t.Fatalf("ranges export: %v", err)
	}
	if _, err := execute(t, "ranges", "delete", rangeset.DefaultID); !errors.Is(err, rangeset.ErrLastRangeSet) {
		t.Fatalf("expected last range set error, got %v", err)
	}
	if _, err := execute(t, "ranges", "import", export); err != nil {
		t.Fatalf("ranges import: %v", err)
	}
	if _, err := execute(t, "ranges", "use", "missing"); !errors.Is(err, rangeset.ErrUnknownRangeSet) {
		t.Fatalf("expected unknown range set error, got %v", err)
	}
}

func TestModeCommand(t *testing.T) {
	setupHome(t)
	if _, err := execute(t, "mode", "probabilistic"); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	out, err := execute(t, "mode")
	if err != nil {
		t.Fatalf("show mode: %v", err)
	}
	if strings.TrimSpace(out) != string(model.JudgeProbabilistic) {
		t.Fatalf("unexpected mode %q", out)
	}
	if _, err := execute(t, "mode", "sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestStatsPlainAndReview(t *testing.T) {
	setupHome(t)
	out, err := execute(t, "stats", "--plain")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if strings.TrimSpace(out) != "No sessions found." {
		t.Fatalf("unexpected empty stats %q", out)
	}

	st := openDB(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := model.TrainingSession{ID: "s1", StartedAt: start, RangeSetID: rangeset.DefaultID, ScenarioID: "btn_open_40bb"}
	for i := 0; i < 6; i++ {
		s.Results = append(s.Results, model.QuestionResult{Hand: "KJo", IsCorrect: i == 0, Timestamp: start})
	}
	s.QuestionCount = len(s.Results)
	if err := st.UpsertSession(context.Background(), &s); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	out, err = execute(t, "review")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !strings.Contains(out, "Queued 1 weak hands: KJo") {
		t.Fatalf("unexpected review output %q", out)
	}
	if hands := st.LoadReviewHands(context.Background()); len(hands) != 1 || hands[0] != "KJo" {
		t.Fatalf("expected KJo queued, got %v", hands)
	}

	out, err = execute(t, "stats", "--plain", "--min-sample", "10")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Summary") || !strings.Contains(out, "No hands found.") {
		t.Fatalf("unexpected report:\n%s", out)
	}
	if _, err := execute(t, "stats", "--plain", "--max-accuracy", "2"); err == nil {
		t.Fatalf("expected error for accuracy above 1")
	}

	if _, err := execute(t, "review", "--clear"); err != nil {
		t.Fatalf("review clear: %v", err)
	}
	if hands := st.LoadReviewHands(context.Background()); len(hands) != 0 {
		t.Fatalf("expected cleared review hands, got %v", hands)
	}
}

func TestSessionsCommands(t *testing.T) {
	setupHome(t)
	out, err := execute(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	if strings.TrimSpace(out) != "No sessions found." {
		t.Fatalf("unexpected empty list %q", out)
	}

	st := openDB(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new"} {
		s := model.TrainingSession{ID: id, StartedAt: start.Add(time.Duration(i) * time.Hour), RangeSetID: rangeset.DefaultID, ScenarioID: "btn_open_40bb"}
		s.Results = []model.QuestionResult{{Hand: "AA", IsCorrect: true, Timestamp: start}}
		s.QuestionCount = 1
		if err := st.UpsertSession(context.Background(), &s); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	out, err = execute(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "new  ") || !strings.Contains(lines[1], "1/1  100.0%  open") {
		t.Fatalf("unexpected session list:\n%s", out)
	}

	out, err = execute(t, "sessions", "delete", "old")
	if err != nil {
		t.Fatalf("sessions delete: %v", err)
	}
	if !strings.Contains(out, "Deleted session old") {
		t.Fatalf("unexpected delete output %q", out)
	}
	if sessions := st.LoadSessions(context.Background()); len(sessions) != 1 || sessions[0].ID != "new" {
		t.Fatalf("expected only the new session left, got %+v", sessions)
	}
	if _, err := execute(t, "sessions", "delete", "old"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}
