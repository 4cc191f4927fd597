package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/tactic"
	"github.com/jward/tactic/internal/syntax"
	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

var (
	flagText   string
	flagInside string
)

var findCmd = &cobra.Command{
	Use:   "find <kind>[,<kind>...] [path...]",
	Short: "Find syntax nodes by kind",
	Long: "Parses source files with tree-sitter and searches every tree, in preorder, for named nodes of the given kinds. " +
		"Paths default to the current directory. Line and column numbers are 1-based.",
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().StringVar(&flagText, "text", "", "only nodes whose source text equals this")
	findCmd.Flags().StringVar(&flagInside, "inside", "", "only nodes with an ancestor of this kind")
}

// findContext is the strategy context of syntax searches. Syntax strategies
// only read the tree, so it just carries the trace handler.
type findContext struct {
	handler tactic.EventHandler
}

func (c *findContext) EventHandler() tactic.EventHandler { return c.handler }

// findStrategy builds the node search for the given kinds and filters.
func findStrategy(kinds []string, text, inside string) tactic.Strategy[*findContext, syntax.Node, syntax.Node] {
	p := syntax.Kind[*findContext](kinds...)
	if text != "" {
		p = pattern.And(p, syntax.TextEq[*findContext](text))
	}
	if inside != "" {
		p = pattern.And(p, insidePattern(inside))
	}
	return syntax.Find(p)
}

// insideKind matches nodes with an ancestor of the given kind.
type insideKind struct {
	kind      string
	enclosing tactic.Strategy[*findContext, syntax.Node, syntax.Node]
}

func insidePattern(kind string) pattern.Pattern[*findContext, syntax.Node] {
	return insideKind{
		kind:      kind,
		enclosing: tactic.Where(syntax.Ancestors[*findContext](), syntax.Kind[*findContext](kind)),
	}
}

func (p insideKind) Match(ctx *findContext, n syntax.Node) bool {
	found, err := seq.Any(p.enclosing.Eval(ctx, n))
	return err == nil && found
}

func (p insideKind) String() string { return "inside(" + p.kind + ")" }

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kinds := splitList(args[0])
	if len(kinds) == 0 {
		return outputError(cmd, "find", fmt.Errorf("no node kinds given"))
	}
	paths := args[1:]
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var files []string
	for _, p := range paths {
		found, err := syntax.ListFiles(p)
		if err != nil {
			return outputError(cmd, "find", err)
		}
		files = append(files, found...)
	}

	roots := make([]syntax.Node, 0, len(files))
	for _, f := range files {
		doc, err := syntax.ParseFile(ctx, f)
		if err != nil {
			return outputError(cmd, "find", err)
		}
		defer doc.Close()
		roots = append(roots, doc.Root())
	}

	tr, err := newSearchTracing(ctx)
	if err != nil {
		return outputError(cmd, "find", err)
	}
	s := findStrategy(kinds, flagText, flagInside)
	opts := append(cfg.SearchOptions(logger), tr.options()...)
	bound := cfg.Bound()
	res, searchErr := tactic.NewDriver(s, opts...).Search(ctx, &findContext{handler: tr.handler()}, bound, roots...)
	if err := tr.finish(ctx); err != nil {
		logger.WarnContext(ctx, "trace output failed", "error", err)
	}
	if searchErr != nil {
		return outputError(cmd, "find", searchErr)
	}

	nodes := make([]CLINode, 0, len(res.Values))
	for _, n := range res.Values {
		nodes = append(nodes, toCLINode(n))
	}
	return outputResult(cmd, CLIResult{
		Command: "find",
		Results: nodes,
		Search:  toCLISearch(tactic.Print(s), bound, res),
		Stats:   tr.statsResult(),
	})
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
