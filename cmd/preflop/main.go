// Package main provides the CLI entrypoint for preflop.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/preflop/internal/config"
	"github.com/verte-zerg/preflop/internal/judge"
	"github.com/verte-zerg/preflop/internal/logger"
	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/rangeset"
	"github.com/verte-zerg/preflop/internal/store"
	"github.com/verte-zerg/preflop/internal/trainer"
	"github.com/verte-zerg/preflop/internal/tui"
)

const defaultLogLevel = "info"

var (
	quizMode      string
	quizPolicy    string
	quizQuestions int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "preflop",
		Short:         "TUI preflop range trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.Flags().StringVar(&quizMode, "mode", "", "judge mode for this run: FREQUENCY or PROBABILISTIC (default: saved mode)")
	rootCmd.Flags().StringVar(&quizPolicy, "policy", string(judge.PolicyResample), "PROBABILISTIC judging: resample or freeze")
	rootCmd.Flags().IntVar(&quizQuestions, "questions", trainer.DefaultQuestionCount, "questions per session")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newModeCmd())
	rootCmd.AddCommand(newRangesCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// env bundles what every command needs: the config file, a logger and the store.
type env struct {
	cfg config.FileConfig
	log *zap.Logger
	st  *store.Store
}

func openEnv() (*env, error) {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logPath := config.DefaultLogPath()
	if cfg.Log.File != nil {
		logPath = *cfg.Log.File
	}
	level := defaultLogLevel
	if cfg.Log.Level != nil {
		level = *cfg.Log.Level
	}
	log, err := logger.New(logPath, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	st, err := store.Open(config.DefaultDBPath(), store.WithLogger(log))
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &env{cfg: cfg, log: log, st: st}, nil
}

func (e *env) close() {
	if cerr := e.st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	if err := e.log.Sync(); err != nil {
		// Best-effort flush.
		_ = err
	}
}

// loadSelection returns stored settings and range sets with the active
// selection pointing at an existing set and scenario.
func (e *env) loadSelection(ctx context.Context) (model.AppSettings, []model.RangeSet) {
	settings := e.st.LoadSettings(ctx)
	sets := e.st.LoadRangeSets(ctx)
	if selectActive(&settings, sets) {
		e.st.SaveSettings(ctx, settings)
	}
	return settings, sets
}

// selectActive points settings at an existing set and scenario, falling back
// to the first of each. It reports whether anything changed.
func selectActive(settings *model.AppSettings, sets []model.RangeSet) bool {
	set := rangeset.FindRangeSet(sets, settings.ActiveRangeSetID)
	if set == nil {
		return false
	}
	scenarioID := ""
	if sc := rangeset.FindScenario(set, settings.ActiveScenarioID); sc != nil {
		scenarioID = sc.ID
	}
	changed := settings.ActiveRangeSetID != set.Meta.ID || settings.ActiveScenarioID != scenarioID
	settings.ActiveRangeSetID = set.Meta.ID
	settings.ActiveScenarioID = scenarioID
	return changed
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	applyStringConfig(cmd, "mode", &quizMode, e.cfg.Trainer.JudgeMode)
	applyStringConfig(cmd, "policy", &quizPolicy, e.cfg.Trainer.JudgePolicy)
	applyIntConfig(cmd, "questions", &quizQuestions, e.cfg.Trainer.Questions)

	policy, err := judge.ParsePolicy(quizPolicy)
	if err != nil {
		return err
	}
	if quizQuestions <= 0 {
		return fmt.Errorf("--questions must be > 0")
	}

	ctx := context.Background()
	settings, sets := e.loadSelection(ctx)
	if quizMode != "" {
		mode, err := judge.ParseMode(quizMode)
		if err != nil {
			return err
		}
		settings.JudgeMode = mode
	}

	tr := trainer.New(settings, sets,
		trainer.WithQuestionCount(quizQuestions),
		trainer.WithPolicy(policy),
		trainer.WithLogger(e.log),
	)
	review := e.st.LoadReviewHands(ctx)
	session, err := tr.StartSession(trainer.StartOptions{Hands: review})
	if err != nil {
		return errors.New(trainer.UserMessage(err))
	}
	if len(review) > 0 {
		e.st.ClearReviewHands(ctx)
	}

	title := scenarioTitle(sets, session.RangeSetID, session.ScenarioID)
	if len(review) > 0 {
		title += " (weak hand review)"
	}
	m := tui.NewModel(tr, e.st, session, tui.Options{Title: title, Log: e.log})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		tr.AbandonSession(m.Session())
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if last := m.Session(); last.FinishedAt != nil {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Last session: %d/%d correct (%.1f%%)\n",
			last.Correct(), len(last.Results), last.Accuracy()*100); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func scenarioTitle(sets []model.RangeSet, setID, scenarioID string) string {
	for _, set := range sets {
		if set.Meta.ID != setID {
			continue
		}
		for _, sc := range set.Scenarios {
			if sc.ID == scenarioID {
				if sc.Name != "" {
					return sc.Name
				}
				return sc.ID
			}
		}
	}
	return scenarioID
}

func newModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mode [FREQUENCY|PROBABILISTIC]",
		Short: "Show or set the saved judge mode",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModeCmd,
	}
}

func runModeCmd(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	settings := e.st.LoadSettings(ctx)
	if len(args) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), settings.JudgeMode)
		return err
	}
	mode, err := judge.ParseMode(args[0])
	if err != nil {
		return err
	}
	settings.JudgeMode = mode
	e.st.SaveSettings(ctx, settings)
	logErrf("Judge mode set to %s\n", mode)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

// streakLocation maps the streak-tz setting to a location. Empty or "Local"
// means the system zone.
func streakLocation(name *string) (*time.Location, error) {
	if name == nil || *name == "" || strings.EqualFold(*name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(*name)
	if err != nil {
		return nil, fmt.Errorf("invalid streak-tz %q: %w", *name, err)
	}
	return loc, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
