package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/preflop/internal/model"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or delete saved sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		Args:  cobra.NoArgs,
		RunE:  runSessionsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>...",
		Short: "Delete sessions and their answers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSessionsDelete,
	})
	return cmd
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sessions, err := e.st.ListSessions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if err := writeSessionList(cmd.OutOrStdout(), sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeSessionList(w io.Writer, sessions []model.TrainingSession) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	ordered := make([]model.TrainingSession, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.After(ordered[j].StartedAt)
	})
	for _, s := range ordered {
		status := "done"
		if s.FinishedAt == nil {
			status = "open"
		}
		if _, err := fmt.Fprintf(w, "%s  %s  %s  %d/%d  %.1f%%  %s\n",
			s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.ScenarioID,
			s.Correct(), len(s.Results), s.Accuracy()*100, status); err != nil {
			return err
		}
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	for _, id := range args {
		if err := e.st.DeleteSession(ctx, id); err != nil {
			return err
		}
		e.log.Info("session deleted", zap.String("session", id))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", id); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
