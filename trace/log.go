package trace

import (
	"context"
	"log/slog"

	"github.com/jward/tactic"
)

// Logger logs evaluations at Debug level, indented by nesting depth.
type Logger struct {
	logger  *slog.Logger
	level   slog.Level
	pulling stack[*logCall]
}

// NewLogger returns a logging handler. A nil logger means slog.Default().
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l, level: slog.LevelDebug}
}

// Enter implements tactic.EventHandler.
func (l *Logger) Enter(d tactic.Decl, input any) tactic.Call {
	c := &logCall{l: l, name: Label(d), depth: len(l.pulling)}
	l.log("enter", c, slog.String("input", Value(input)))
	return c
}

func (l *Logger) log(msg string, c *logCall, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{slog.String("strategy", c.name), slog.Int("depth", c.depth)}, attrs...)
	l.logger.LogAttrs(context.Background(), l.level, msg, attrs...)
}

type logCall struct {
	l     *Logger
	name  string
	depth int
}

func (c *logCall) Pull() { c.l.pulling.push(c) }

func (c *logCall) Yield(v any) {
	c.l.pulling.pop(c)
	c.l.log("yield", c, slog.String("output", Value(v)))
}

func (c *logCall) Leave(produced int, err error) {
	c.l.pulling.pop(c)
	if err != nil {
		c.l.log("fault", c, slog.Int("produced", produced), slog.String("error", err.Error()))
		return
	}
	c.l.log("leave", c, slog.Int("produced", produced))
}
