package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/preflop/internal/stats"
	"github.com/verte-zerg/preflop/internal/statsui"
)

var (
	statsPlain       bool
	statsMinSample   int
	statsMaxAccuracy float64

	reviewMinSample   int
	reviewMaxAccuracy float64
	reviewClear       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	defaults := stats.DefaultWeakOptions()
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain-text report instead of the TUI")
	cmd.Flags().IntVar(&statsMinSample, "min-sample", defaults.MinSample, "answers needed before a hand can be weak")
	cmd.Flags().Float64Var(&statsMaxAccuracy, "max-accuracy", defaults.MaxAccuracy, "accuracy at or below which a hand is weak (0-1)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	weak, err := weakOptions(cmd, e, &statsMinSample, &statsMaxAccuracy)
	if err != nil {
		return err
	}
	loc, err := streakLocation(e.cfg.Stats.StreakTZ)
	if err != nil {
		return err
	}

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), e.st, stats.ReportOptions{
			Weak:            weak,
			Location:        loc,
			RecordWeakCount: true,
		})
		if err != nil {
			return err
		}
		if err := report.Render(cmd.OutOrStdout(), 0, false); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	m := statsui.NewModel(e.st, statsui.Options{Weak: weak, Location: loc})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

// weakOptions applies config values to the weak-hand flags and validates them.
func weakOptions(cmd *cobra.Command, e *env, minSample *int, maxAccuracy *float64) (stats.WeakOptions, error) {
	applyIntConfig(cmd, "min-sample", minSample, e.cfg.Stats.WeakMinSample)
	applyFloatConfig(cmd, "max-accuracy", maxAccuracy, e.cfg.Stats.WeakMaxAccuracy)
	if *minSample < 1 {
		return stats.WeakOptions{}, fmt.Errorf("--min-sample must be >= 1")
	}
	if *maxAccuracy < 0 || *maxAccuracy > 1 {
		return stats.WeakOptions{}, fmt.Errorf("--max-accuracy must be between 0 and 1")
	}
	return stats.WeakOptions{MinSample: *minSample, MaxAccuracy: *maxAccuracy}, nil
}

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Queue weak hands as the pool of the next session",
		Args:  cobra.NoArgs,
		RunE:  runReviewCmd,
	}
	defaults := stats.DefaultWeakOptions()
	cmd.Flags().IntVar(&reviewMinSample, "min-sample", defaults.MinSample, "answers needed before a hand can be weak")
	cmd.Flags().Float64Var(&reviewMaxAccuracy, "max-accuracy", defaults.MaxAccuracy, "accuracy at or below which a hand is weak (0-1)")
	cmd.Flags().BoolVar(&reviewClear, "clear", false, "drop the queued review hands")
	return cmd
}

func runReviewCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	if reviewClear {
		e.st.ClearReviewHands(ctx)
		logErrln("Cleared queued review hands.")
		return nil
	}
	weak, err := weakOptions(cmd, e, &reviewMinSample, &reviewMaxAccuracy)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(ctx, e.st, stats.ReportOptions{Weak: weak})
	if err != nil {
		return err
	}
	hands := stats.HandCodes(report.Weak)
	if len(hands) == 0 {
		logErrln("No weak hands yet. Play a few sessions first.")
		return nil
	}
	e.st.SaveReviewHands(ctx, hands)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Queued %d weak hands: %s\n", len(hands), strings.Join(hands, " ")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logErrln("Run preflop to review them.")
	return nil
}
