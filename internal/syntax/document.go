// Package syntax exposes tree-sitter syntax trees to strategies: documents,
// node patterns, and traversal strategies such as Subterms and Find.
//
// Nodes carry their document, so the strategies here work under any
// strategy context.
package syntax

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// Document is a parsed source file.
type Document struct {
	path string
	lang string
	src  []byte
	tree *sitter.Tree
}

// Parse parses src as lang.
func Parse(ctx context.Context, lang string, src []byte) (*Document, error) {
	g, ok := grammar(lang)
	if !ok {
		return nil, fmt.Errorf("parse: unsupported language %q", lang)
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse: tree-sitter parse failed: %w", err)
	}
	return &Document{lang: lang, src: src, tree: tree}, nil
}

// ParseFile reads and parses path, choosing the language by extension.
func ParseFile(ctx context.Context, path string) (*Document, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("parse %s: unrecognized file extension", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc, err := Parse(ctx, lang, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc.path = path
	return doc, nil
}

// Root returns the root node.
func (d *Document) Root() Node { return Node{n: d.tree.RootNode(), doc: d} }

// Path returns the file the document was read from, or "" for Parse.
func (d *Document) Path() string { return d.path }

func (d *Document) Language() string { return d.lang }

func (d *Document) Source() []byte { return d.src }

// Close releases the syntax tree. Nodes of a closed document must not be
// used.
func (d *Document) Close() {
	d.tree.Close()
}
