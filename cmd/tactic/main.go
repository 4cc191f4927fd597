package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/tactic/internal/config"
	"github.com/jward/tactic/internal/store"
)

var (
	flagConfig string
	flagDB     string
	flagFormat string
	flagBound  string
)

// cfg and logger are set by the root command before any subcommand runs.
var (
	cfg    config.Config
	logger *slog.Logger
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tactic",
	Short: "Lazy strategy search over syntax trees, scripts and benchmark suites",
	Long: "Tactic composes search strategies from combinators and drives them lazily to a bound. " +
		"It searches tree-sitter syntax trees, runs Risor-scripted strategies, and records benchmark runs in SQLite.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagBound != "" {
			loaded.Search.Bound = flagBound
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("--bound: %w", err)
			}
		}
		cfg = loaded
		logger = cfg.Logger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
	// No Run, prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "tactic.yaml", "config file (missing file uses defaults)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "run database path (default: store.path relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagBound, "bound", "", "search bound: first|first-N|all (overrides search.bound)")

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(runsCmd)
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the
// configured store path. Relative paths are taken from the repo root.
func resolveDBPath(repoRoot string) string {
	path := cfg.Store.Path
	if flagDB != "" {
		path = flagDB
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoRoot, path)
}

// dbPath resolves the database path from the working directory.
func dbPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	return resolveDBPath(findRepoRoot(cwd)), nil
}

// createStore opens the run database, creating and migrating it as needed.
func createStore() (*store.Store, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openStore opens an existing run database.
func openStore() (*store.Store, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'tactic bench' first)", path)
	}
	return store.NewStore(path)
}
