package runtime

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"
)

// callState collects what one strategy script run produced.
type callState struct {
	emitted []any
	failed  bool
}

// makeEmitFn creates the "emit" host function.
//
// emit(value) → nil
func makeEmitFn(st *callState) *object.Builtin {
	return object.NewBuiltin("emit", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("emit", 1, len(args))
		}
		st.emitted = append(st.emitted, args[0].Interface())
		return object.Nil
	})
}

// makeFailFn creates the "fail" host function. After fail() the run yields
// nothing, whatever it emitted or returns.
//
// fail() → nil
func makeFailFn(st *callState) *object.Builtin {
	return object.NewBuiltin("fail", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("fail", 0, len(args))
		}
		st.failed = true
		return object.Nil
	})
}

// makeGetFn creates the "get" host function reading a search binding.
//
// get(key) → value or nil
func makeGetFn(env *Env) *object.Builtin {
	return object.NewBuiltin("get", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("get", 1, len(args))
		}
		key, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("get: key must be a string, got %s", args[0].Type())
		}
		v, found := env.Get(key.Value())
		if !found {
			return object.Nil
		}
		return toObject(v)
	})
}

// makeSetFn creates the "set" host function writing a search binding. The
// binding is a context mutation and follows the search's rollback policy.
//
// set(key, value) → nil
func makeSetFn(env *Env) *object.Builtin {
	return object.NewBuiltin("set", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("set", 2, len(args))
		}
		key, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("set: key must be a string, got %s", args[0].Type())
		}
		env.Set(key.Value(), args[1].Interface())
		return object.Nil
	})
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg)
}
