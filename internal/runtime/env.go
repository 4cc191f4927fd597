package runtime

import (
	"context"
	"log/slog"
	"maps"

	"github.com/jward/tactic"
)

// Env is the strategy context of scripted searches: named bindings that
// scripts read with get and write with set.
//
// Env is not safe for concurrent use; each search gets its own.
type Env struct {
	ctx      context.Context
	bindings map[string]any
	handler  tactic.EventHandler
	log      *slog.Logger
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithHandler reports every evaluation under the Env to h.
func WithHandler(h tactic.EventHandler) EnvOption {
	return func(e *Env) { e.handler = h }
}

// WithEnvLogger sets the logger for problems that cannot surface as faults.
func WithEnvLogger(l *slog.Logger) EnvOption {
	return func(e *Env) { e.log = l }
}

// WithBindings seeds the bindings.
func WithBindings(b map[string]any) EnvOption {
	return func(e *Env) { maps.Copy(e.bindings, b) }
}

// NewEnv returns an Env whose scripts run under ctx. Canceling ctx stops
// running scripts.
func NewEnv(ctx context.Context, opts ...EnvOption) *Env {
	e := &Env{ctx: ctx, bindings: make(map[string]any)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Get returns the binding for key.
func (e *Env) Get(key string) (any, bool) {
	v, ok := e.bindings[key]
	return v, ok
}

// Set binds key to v.
func (e *Env) Set(key string, v any) { e.bindings[key] = v }

// Bindings returns a copy of all bindings.
func (e *Env) Bindings() map[string]any { return maps.Clone(e.bindings) }

// Snapshot implements tactic.Snapshotter.
func (e *Env) Snapshot() any { return maps.Clone(e.bindings) }

// Restore implements tactic.Snapshotter.
func (e *Env) Restore(s any) { e.bindings = maps.Clone(s.(map[string]any)) }

// EventHandler implements tactic.Traced.
func (e *Env) EventHandler() tactic.EventHandler { return e.handler }

func (e *Env) context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

func (e *Env) logger() *slog.Logger {
	if e.log == nil {
		return slog.Default()
	}
	return e.log
}
