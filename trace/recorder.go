package trace

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jward/tactic"
)

// Status is the final state of a recorded evaluation.
type Status string

const (
	StatusSucceeded Status = "succeeded" // produced at least one output and ended
	StatusFailed    Status = "failed"    // ended without output
	StatusFaulted   Status = "faulted"   // ended with an error
	StatusAbandoned Status = "abandoned" // never pulled to the end
)

// CallRecord is one recorded evaluation and the evaluations nested in it.
type CallRecord struct {
	Strategy string        `yaml:"strategy"`
	Input    string        `yaml:"input"`
	Outputs  []string      `yaml:"outputs,omitempty"`
	Produced int           `yaml:"produced"`
	Status   Status        `yaml:"status"`
	Error    string        `yaml:"error,omitempty"`
	Elapsed  time.Duration `yaml:"elapsed"`
	Calls    []*CallRecord `yaml:"calls,omitempty"`
}

// Recorder records every evaluation as a call tree.
type Recorder struct {
	maxOutputs int
	roots      []*CallRecord
	pulling    stack[*recCall]
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithMaxOutputs bounds how many outputs are kept per call (default 16).
// Produced still counts all of them.
func WithMaxOutputs(n int) RecorderOption {
	return func(r *Recorder) { r.maxOutputs = n }
}

// NewRecorder returns an empty Recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{maxOutputs: 16}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enter implements tactic.EventHandler.
func (r *Recorder) Enter(d tactic.Decl, input any) tactic.Call {
	rec := &CallRecord{Strategy: Label(d), Input: Value(input), Status: StatusAbandoned}
	if parent, ok := r.pulling.top(); ok {
		parent.rec.Calls = append(parent.rec.Calls, rec)
	} else {
		r.roots = append(r.roots, rec)
	}
	return &recCall{r: r, rec: rec}
}

// Calls returns the top-level recorded evaluations.
func (r *Recorder) Calls() []*CallRecord { return r.roots }

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.roots = nil
	r.pulling = nil
}

// WriteYAML writes the call tree as YAML.
func (r *Recorder) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.roots); err != nil {
		return fmt.Errorf("encode call tree: %w", err)
	}
	return enc.Close()
}

type recCall struct {
	r     *Recorder
	rec   *CallRecord
	since time.Time
}

func (c *recCall) Pull() {
	c.since = time.Now()
	c.r.pulling.push(c)
}

func (c *recCall) Yield(v any) {
	c.end()
	c.rec.Produced++
	if len(c.rec.Outputs) < c.r.maxOutputs {
		c.rec.Outputs = append(c.rec.Outputs, Value(v))
	}
}

func (c *recCall) Leave(_ int, err error) {
	c.end()
	switch {
	case err != nil:
		c.rec.Status = StatusFaulted
		c.rec.Error = err.Error()
	case c.rec.Produced > 0:
		c.rec.Status = StatusSucceeded
	default:
		c.rec.Status = StatusFailed
	}
}

func (c *recCall) end() {
	c.rec.Elapsed += time.Since(c.since)
	c.r.pulling.pop(c)
}
