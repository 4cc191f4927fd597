package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jward/tactic/internal/syntax"
)

// DefaultKinds are the node kinds the syntax suite counts in Go sources.
var DefaultKinds = []string{"function_declaration", "method_declaration", "type_spec", "call_expression"}

// SyntaxSuite returns one case per source file under root and node kind.
// Each case finds the nodes of its kind with syntax.Find and is checked
// against a direct walk of the same tree. Every run parses its own copy of
// the file, since parsed trees are not safe to share between goroutines.
func SyntaxSuite(ctx context.Context, root string, kinds []string) (Suite, error) {
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	paths, err := syntax.ListFiles(root)
	if err != nil {
		return Suite{}, fmt.Errorf("syntax suite: %w", err)
	}
	if len(paths) == 0 {
		return Suite{}, fmt.Errorf("syntax suite: no source files under %s: %w", root, os.ErrNotExist)
	}

	suite := Suite{Name: "syntax"}
	for _, path := range paths {
		doc, err := syntax.ParseFile(ctx, path)
		if err != nil {
			return Suite{}, fmt.Errorf("syntax suite: %w", err)
		}
		counts := make(map[string]int, len(kinds))
		countKinds(doc.Root(), counts)
		doc.Close()

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		setup := func(ctx context.Context) (struct{}, []syntax.Node, func(), error) {
			d, err := syntax.ParseFile(ctx, path)
			if err != nil {
				return struct{}{}, nil, nil, err
			}
			return struct{}{}, []syntax.Node{d.Root()}, d.Close, nil
		}
		for _, kind := range kinds {
			s := syntax.Find(syntax.Kind[struct{}](kind))
			name := filepath.ToSlash(rel) + ":" + kind
			suite.Cases = append(suite.Cases, NewCase(name, s, setup, counts[kind]))
		}
	}
	return suite, nil
}

// countKinds tallies the kinds of n and its named descendants.
func countKinds(n syntax.Node, counts map[string]int) {
	counts[n.Kind()]++
	for _, c := range n.Children(true) {
		countKinds(c, counts)
	}
}
