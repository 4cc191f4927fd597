package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/tactic/internal/store"
)

var (
	flagSuite   string
	flagCase    string
	flagOutcome string
	flagLimit   int
	flagSummary bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded benchmark runs",
	Long:  "Lists recorded runs, newest first, or with --summary aggregates them per suite case.",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete [suite]",
	Short: "Delete recorded runs of a suite, or all runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.Flags().StringVar(&flagSuite, "suite", "", "only runs of this suite")
	runsCmd.Flags().StringVar(&flagCase, "case", "", "only runs of this case")
	runsCmd.Flags().StringVar(&flagOutcome, "outcome", "", "only runs with this outcome: found|no_results|fault|canceled")
	runsCmd.Flags().IntVar(&flagLimit, "limit", 50, "maximum runs to list (0 for all)")
	runsCmd.Flags().BoolVar(&flagSummary, "summary", false, "aggregate runs per suite case")

	runsCmd.AddCommand(runsDeleteCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return outputError(cmd, "runs", err)
	}
	defer st.Close()

	if flagSummary {
		sums, err := st.Summaries(flagSuite)
		if err != nil {
			return outputError(cmd, "runs", err)
		}
		out := make([]CLISummary, 0, len(sums))
		for _, s := range sums {
			out = append(out, toCLISummary(s))
		}
		return outputResult(cmd, CLIResult{Command: "runs", Results: out})
	}

	runs, err := st.Runs(store.RunFilter{
		Suite:   flagSuite,
		Case:    flagCase,
		Outcome: flagOutcome,
		Limit:   flagLimit,
	})
	if err != nil {
		return outputError(cmd, "runs", err)
	}
	out := make([]CLIRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, toCLIRun(r))
	}
	return outputResult(cmd, CLIResult{Command: "runs", Results: out})
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return outputError(cmd, "runs delete", err)
	}
	defer st.Close()

	suite := ""
	if len(args) > 0 {
		suite = args[0]
	}
	n, err := st.DeleteRuns(suite)
	if err != nil {
		return outputError(cmd, "runs delete", err)
	}
	return outputResult(cmd, CLIResult{Command: "runs delete", Results: map[string]int64{"deleted": n}})
}
