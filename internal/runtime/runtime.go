// Package runtime turns Risor scripts into leaf strategies and patterns.
//
// A script sees its candidate as the global "input" and produces outputs by
// calling emit(v) or through its final value: a list yields each element,
// nil yields nothing and any other value yields itself. Calling fail()
// discards all outputs. A script error faults the evaluation.
package runtime

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/tactic"
	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

// Runtime embeds a Risor VM and loads scripts from a directory or an fs.FS.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithScriptsDir loads scripts and imported modules from dir.
func WithScriptsDir(dir string) RuntimeOption {
	return func(r *Runtime) {
		r.scriptsDir = dir
	}
}

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger behind the scripts' log global.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategy returns a leaf strategy that runs source on each input. The
// script runs when the result is first pulled.
func (r *Runtime) Strategy(name, source string) tactic.Strategy[*Env, any, any] {
	return tactic.Func(name, func(env *Env, input any) seq.Seq[any] {
		out, err := r.call(env, name, source, input)
		if err != nil {
			return seq.Fault[any](err)
		}
		return seq.FromSlice(out)
	})
}

// Load reads <name>.risor and returns it as a strategy.
func (r *Runtime) Load(name string) (tactic.Strategy[*Env, any, any], error) {
	src, err := r.LoadScript(ScriptPath(name))
	if err != nil {
		return nil, err
	}
	return r.Strategy(name, src), nil
}

// Predicate returns a pattern that matches when source, run on the value,
// produces a truthy result. A script error does not match; patterns cannot
// fault, so the error is logged.
func Predicate[T any](r *Runtime, name, source string) pattern.Pattern[*Env, T] {
	return predicate[T]{r: r, name: name, source: source}
}

type predicate[T any] struct {
	r      *Runtime
	name   string
	source string
}

func (p predicate[T]) Match(env *Env, v T) bool {
	res, err := p.r.eval(env, p.name, p.source, v, nil)
	if err != nil {
		env.logger().Warn("predicate script failed", slog.String("script", p.name), slog.String("error", err.Error()))
		return false
	}
	return res.IsTruthy()
}

func (p predicate[T]) String() string { return "script(" + p.name + ")" }

// call runs a script and collects its outputs.
func (r *Runtime) call(env *Env, name, source string, input any) ([]any, error) {
	st := &callState{}
	res, err := r.eval(env, name, source, input, st)
	if err != nil {
		return nil, err
	}
	if st.failed {
		return nil, nil
	}
	return append(st.emitted, results(res)...), nil
}

func (r *Runtime) eval(env *Env, name, source string, input any, st *callState) (object.Object, error) {
	globals := r.buildGlobals(env, name, input, st)

	var opts []risor.Option
	for k, v := range globals {
		opts = append(opts, risor.WithGlobal(k, v))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	res, err := risor.Eval(env.context(), source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", name, err)
	}
	return res, nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on that filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// ScriptPath returns the file name of a named script.
func ScriptPath(name string) string {
	if strings.HasSuffix(name, ".risor") {
		return name
	}
	return name + ".risor"
}

// buildGlobals constructs the globals exposed to one script run.
func (r *Runtime) buildGlobals(env *Env, name string, input any, st *callState) map[string]any {
	logger := r.logger.With(slog.String("script", name))
	globals := map[string]any{
		"input": toObject(input),
		"get":   makeGetFn(env),
		"set":   makeSetFn(env),
		"log":   mustProxy(&logObject{logger: logger}),
	}
	if st != nil {
		globals["emit"] = makeEmitFn(st)
		globals["fail"] = makeFailFn(st)
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
