package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/tactic"
	"github.com/jward/tactic/internal/runtime"
	"github.com/jward/tactic/scripts"
)

var (
	flagScriptsDir string
	flagCombinator string
	flagSet        []string
)

var scriptCmd = &cobra.Command{
	Use:   "script <name|file.risor> [input...]",
	Short: "Search with a Risor-scripted strategy",
	Long: "Runs a Risor script as a leaf strategy on each input and prints its outputs. " +
		"A name loads a bundled script (or one from --scripts-dir); a path ending in .risor loads that file. " +
		"Inputs are parsed as integers, floats, booleans or JSON where possible and passed as strings otherwise.",
	Args: cobra.MinimumNArgs(1),
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "load named scripts from this directory instead of the bundled ones")
	scriptCmd.Flags().StringVar(&flagCombinator, "apply", "", "wrap the script: repeat|saturate|try")
	scriptCmd.Flags().StringArrayVar(&flagSet, "set", nil, "initial binding key=value (repeatable)")
}

// loadScript resolves the script argument to a strategy.
func loadScript(arg string) (tactic.Strategy[*runtime.Env, any, any], error) {
	if strings.HasSuffix(arg, ".risor") {
		if _, err := os.Stat(arg); err == nil {
			rt := runtime.NewRuntime(runtime.WithScriptsDir(filepath.Dir(arg)), runtime.WithLogger(logger))
			return rt.Load(filepath.Base(arg))
		}
	}
	opts := []runtime.RuntimeOption{runtime.WithLogger(logger)}
	if flagScriptsDir != "" {
		opts = append(opts, runtime.WithScriptsDir(flagScriptsDir))
	} else {
		opts = append(opts, runtime.WithRuntimeFS(scripts.FS))
	}
	return runtime.NewRuntime(opts...).Load(arg)
}

// applyCombinator wraps s in the combinator named by --apply.
func applyCombinator(name string, s tactic.Strategy[*runtime.Env, any, any]) (tactic.Strategy[*runtime.Env, any, any], error) {
	switch name {
	case "":
		return s, nil
	case "repeat":
		return tactic.Repeat(s), nil
	case "saturate":
		return tactic.Saturate(s), nil
	case "try":
		return tactic.Try(s), nil
	}
	return nil, fmt.Errorf("invalid --apply %q: must be repeat, saturate or try", name)
}

// parseInput converts a command-line value to a script input.
func parseInput(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

// parseBindings parses --set key=value pairs.
func parseBindings(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", p)
		}
		out[k] = parseInput(v)
	}
	return out, nil
}

func runScript(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := loadScript(args[0])
	if err != nil {
		return outputError(cmd, "script", err)
	}
	if s, err = applyCombinator(flagCombinator, s); err != nil {
		return outputError(cmd, "script", err)
	}
	bindings, err := parseBindings(flagSet)
	if err != nil {
		return outputError(cmd, "script", err)
	}
	inputs := make([]any, 0, len(args)-1)
	for _, a := range args[1:] {
		inputs = append(inputs, parseInput(a))
	}

	tr, err := newSearchTracing(ctx)
	if err != nil {
		return outputError(cmd, "script", err)
	}
	env := runtime.NewEnv(ctx,
		runtime.WithHandler(tr.handler()),
		runtime.WithEnvLogger(logger),
		runtime.WithBindings(bindings),
	)
	opts := append(cfg.SearchOptions(logger), tr.options()...)
	bound := cfg.Bound()
	res, searchErr := tactic.NewDriver(s, opts...).Search(ctx, env, bound, inputs...)
	if err := tr.finish(ctx); err != nil {
		logger.WarnContext(ctx, "trace output failed", "error", err)
	}
	if searchErr != nil {
		return outputError(cmd, "script", searchErr)
	}

	values := res.Values
	if values == nil {
		values = []any{}
	}
	return outputResult(cmd, CLIResult{
		Command:  "script",
		Results:  values,
		Search:   toCLISearch(tactic.Print(s), bound, res),
		Stats:    tr.statsResult(),
		Bindings: env.Bindings(),
	})
}
