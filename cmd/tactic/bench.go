package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/tactic/internal/bench"
	"github.com/jward/tactic/internal/store"
)

var (
	flagTestdata string
	flagKinds    string
	flagQueens   string
	flagNoStore  bool
)

var benchCmd = &cobra.Command{
	Use:   "bench [suite...]",
	Short: "Run benchmark suites and record the runs",
	Long: "Runs the queens and syntax suites (or the named ones) through the search driver, " +
		"checks result counts of exhaustive runs, and records every run in the run database.",
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVar(&flagTestdata, "testdata", "testdata/go", "source tree of the syntax suite")
	benchCmd.Flags().StringVar(&flagKinds, "kinds", "", "comma-separated node kinds of the syntax suite")
	benchCmd.Flags().StringVar(&flagQueens, "queens", "", "comma-separated board sizes (overrides bench.queens)")
	benchCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "do not record runs")
}

// suiteNames lists the suites bench knows, in run order.
var suiteNames = []string{"queens", "syntax"}

// parseSizes parses a comma-separated list of board sizes.
func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid board size %q: must be a positive integer", part)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	names := args
	if len(names) == 0 {
		names = suiteNames
	}
	sizes := cfg.Bench.Queens
	if flagQueens != "" {
		var err error
		if sizes, err = parseSizes(flagQueens); err != nil {
			return outputError(cmd, "bench", err)
		}
	}

	// Build all suites before running any, so a bad name fails fast.
	var suites []bench.Suite
	for _, name := range names {
		switch name {
		case "queens":
			suites = append(suites, bench.QueensSuite(sizes))
		case "syntax":
			suite, err := bench.SyntaxSuite(ctx, flagTestdata, splitList(flagKinds))
			if err != nil {
				return outputError(cmd, "bench", err)
			}
			suites = append(suites, suite)
		default:
			return outputError(cmd, "bench", fmt.Errorf("unknown suite %q: must be one of %v", name, suiteNames))
		}
	}

	opts := []bench.Option{
		bench.WithParallel(cfg.Bench.Parallel),
		bench.WithRepeat(cfg.Bench.Repeat),
		bench.WithBound(cfg.Bound()),
		bench.WithSearchOptions(cfg.SearchOptions(logger)...),
		bench.WithLogger(logger),
	}
	var st *store.Store
	if !flagNoStore {
		var err error
		if st, err = createStore(); err != nil {
			return outputError(cmd, "bench", err)
		}
		defer st.Close()
		opts = append(opts, bench.WithStore(st))
	}
	runner := bench.NewRunner(opts...)

	start := time.Now()
	var runs []CLIRun
	var errs []error
	for _, suite := range suites {
		report, err := runner.Run(ctx, suite)
		if report != nil {
			for i := range report.Runs {
				runs = append(runs, toCLIRun(&report.Runs[i]))
			}
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if st != nil {
		if err := st.SetMetadata("last_bench", start.UTC().Format(time.RFC3339)); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := fmt.Errorf("bench had %d error(s): %w", len(errs), errs[0])
		return outputErrorWith(cmd, CLIResult{Command: "bench", Results: runs}, err)
	}
	return outputResult(cmd, CLIResult{Command: "bench", Results: runs})
}
