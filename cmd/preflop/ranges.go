package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/rangeset"
)

var rangesScenario string

func newRangesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranges",
		Short: "Manage range sets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List range sets and scenarios",
		Args:  cobra.NoArgs,
		RunE:  runRangesList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use <range-set-id> [scenario-id]",
		Short: "Select the active range set and scenario",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runRangesUse,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import a range set from YAML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runRangesImport,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export <file> [range-set-id]",
		Short: "Export a range set to YAML or JSON (by extension)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runRangesExport,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <range-set-id>",
		Short: "Delete a range set",
		Args:  cobra.ExactArgs(1),
		RunE:  runRangesDelete,
	})

	presetCmd := &cobra.Command{
		Use:   "preset <ratio>",
		Short: "Enable the strongest share of hands, e.g. 0.25",
		Args:  cobra.ExactArgs(1),
		RunE:  runRangesPreset,
	}
	presetCmd.Flags().StringVar(&rangesScenario, "scenario", "", "scenario id (default: active scenario)")
	cmd.AddCommand(presetCmd)

	toggleCmd := &cobra.Command{
		Use:   "toggle <hand>...",
		Short: "Enable or disable hands in the active scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRangesToggle,
	}
	toggleCmd.Flags().StringVar(&rangesScenario, "scenario", "", "scenario id (default: active scenario)")
	cmd.AddCommand(toggleCmd)
	return cmd
}

func runRangesList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	settings, sets := e.loadSelection(context.Background())
	if err := writeRangeList(cmd.OutOrStdout(), settings, sets); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeRangeList(w io.Writer, settings model.AppSettings, sets []model.RangeSet) error {
	for _, set := range sets {
		marker := " "
		if set.Meta.ID == settings.ActiveRangeSetID {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s  %s (v%d)\n", marker, set.Meta.ID, set.Meta.Name, set.Meta.Version); err != nil {
			return err
		}
		for _, sc := range set.Scenarios {
			scMarker := " "
			if marker == "*" && sc.ID == settings.ActiveScenarioID {
				scMarker = "*"
			}
			if _, err := fmt.Fprintf(w, "    %s %s  %s  %d/%d hands enabled\n",
				scMarker, sc.ID, sc.Name, len(sc.EnabledHandCodes), len(sc.Hands)); err != nil {
				return err
			}
		}
	}
	return nil
}

func runRangesUse(_ *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	settings, sets := e.loadSelection(ctx)
	set, sc, err := lookupScenario(sets, args[0], optionalArg(args, 1))
	if err != nil {
		return err
	}
	settings.ActiveRangeSetID = set.Meta.ID
	settings.ActiveScenarioID = sc.ID
	e.st.SaveSettings(ctx, settings)
	logErrf("Active scenario: %s / %s\n", set.Meta.ID, sc.ID)
	return nil
}

// lookupScenario finds a set and scenario strictly by id. An empty scenario
// id selects the first scenario of the set.
func lookupScenario(sets []model.RangeSet, setID, scenarioID string) (*model.RangeSet, *model.RangeScenario, error) {
	var set *model.RangeSet
	for i := range sets {
		if sets[i].Meta.ID == setID {
			set = &sets[i]
			break
		}
	}
	if set == nil {
		return nil, nil, fmt.Errorf("range set %q: %w", setID, rangeset.ErrUnknownRangeSet)
	}
	if scenarioID == "" {
		if sc := rangeset.FindScenario(set, ""); sc != nil {
			return set, sc, nil
		}
		return nil, nil, fmt.Errorf("range set %q has no scenarios", setID)
	}
	for i := range set.Scenarios {
		if set.Scenarios[i].ID == scenarioID {
			return set, &set.Scenarios[i], nil
		}
	}
	return nil, nil, fmt.Errorf("unknown scenario %q in range set %q", scenarioID, setID)
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func runRangesImport(_ *cobra.Command, args []string) error {
	set, err := rangeset.Import(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	sets, replaced := upsertRangeSet(e.st.LoadRangeSets(ctx), set)
	e.st.SaveRangeSets(ctx, sets)
	verb := "Imported"
	if replaced {
		verb = "Replaced"
	}
	logErrf("%s range set %s with %d scenarios\n", verb, set.Meta.ID, len(set.Scenarios))
	return nil
}

// upsertRangeSet replaces the set with the same id or appends it.
func upsertRangeSet(sets []model.RangeSet, set model.RangeSet) ([]model.RangeSet, bool) {
	for i := range sets {
		if sets[i].Meta.ID == set.Meta.ID {
			sets[i] = set
			return sets, true
		}
	}
	return append(sets, set), false
}

func runRangesExport(_ *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	settings, sets := e.loadSelection(context.Background())
	id := optionalArg(args, 1)
	if id == "" {
		id = settings.ActiveRangeSetID
	}
	set, _, err := lookupScenario(sets, id, "")
	if err != nil {
		return err
	}
	if err := rangeset.Export(args[0], *set); err != nil {
		return err
	}
	logErrf("Exported %s to %s\n", set.Meta.ID, args[0])
	return nil
}

func runRangesDelete(_ *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	settings, sets := e.loadSelection(ctx)
	remaining, err := rangeset.Delete(sets, args[0])
	if err != nil {
		return err
	}
	e.st.SaveRangeSets(ctx, remaining)
	if selectActive(&settings, remaining) {
		e.st.SaveSettings(ctx, settings)
	}
	logErrf("Deleted range set %s\n", args[0])
	return nil
}

func runRangesPreset(_ *cobra.Command, args []string) error {
	ratio, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid ratio %q: %w", args[0], err)
	}
	return editScenario(func(set *model.RangeSet, sc *model.RangeScenario) error {
		n, err := rangeset.ApplyPreset(sc, set.RankedHands, ratio)
		if err != nil {
			return err
		}
		logErrf("Enabled the top %d hands in %s\n", n, sc.ID)
		return nil
	})
}

func runRangesToggle(_ *cobra.Command, args []string) error {
	return editScenario(func(_ *model.RangeSet, sc *model.RangeScenario) error {
		for _, code := range args {
			enabled, err := rangeset.ToggleHand(sc, code)
			if err != nil {
				return err
			}
			state := "disabled"
			if enabled {
				state = "enabled"
			}
			logErrf("%s %s in %s\n", code, state, sc.ID)
		}
		return nil
	})
}

// editScenario applies edit to the active (or --scenario) scenario and saves the range sets.
func editScenario(edit func(*model.RangeSet, *model.RangeScenario) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	settings, sets := e.loadSelection(ctx)
	scenarioID := rangesScenario
	if scenarioID == "" {
		scenarioID = settings.ActiveScenarioID
	}
	set, sc, err := lookupScenario(sets, settings.ActiveRangeSetID, scenarioID)
	if err != nil {
		return err
	}
	if err := edit(set, sc); err != nil {
		return err
	}
	rangeset.Touch(set, time.Now())
	e.st.SaveRangeSets(ctx, sets)
	return nil
}
