package router

import (
	"io"
	"os"
	"sync"
)

// ConsoleHandler writes formatted records to standard output, switching to
// standard error at or above a configurable severity. Delivery is best
// effort: write errors are reported through Diagnostics and never surface to
// the emitting caller.
type ConsoleHandler struct {
	core
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	stderrAt Level
}

// ConsoleOption configures a ConsoleHandler.
type ConsoleOption func(*ConsoleHandler)

// WithConsoleWriters overrides the stdout/stderr destinations, mainly for tests.
func WithConsoleWriters(out, errOut io.Writer) ConsoleOption {
	return func(h *ConsoleHandler) {
		h.out = out
		h.errOut = errOut
	}
}

// WithStderrAt sets the severity at which records switch to the error stream.
// The default is ErrorLevel.
func WithStderrAt(level Level) ConsoleOption {
	return func(h *ConsoleHandler) { h.stderrAt = level }
}

// NewConsoleHandler creates a console sink with the given minimum level,
// formatter and filter.
func NewConsoleHandler(level Level, f Formatter, filter Filter, diag Diagnostics, opts ...ConsoleOption) *ConsoleHandler {
	h := &ConsoleHandler{
		core:     newCore(level, f, filter, diag),
		out:      os.Stdout,
		errOut:   os.Stderr,
		stderrAt: ErrorLevel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Write implements Handler. It never returns an error: console delivery is
// best effort per the routing contract.
func (h *ConsoleHandler) Write(r *Record) error {
	b, err := h.format(r)
	if err != nil {
		h.diag("console format", err)
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.out
	if r.Level >= h.stderrAt {
		w = h.errOut
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		h.diag("console write dropped", err)
	}
	return nil
}

// Close implements Handler. The console streams are not owned by the handler
// and stay open.
func (h *ConsoleHandler) Close() error { return nil }
