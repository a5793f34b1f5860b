package router

import (
	"fmt"
	"os"
)

// Handler is a sink that receives filtered, formatted log records.
//
// Enabled gates a record by the handler's minimum level and optional filter;
// the Router additionally gates by the owning logger's level before calling.
// Write delivers one record. Close flushes any buffered state and releases
// resources; after Close the handler must not be written to.
type Handler interface {
	Enabled(r *Record) bool
	Write(r *Record) error
	Close() error
}

// Diagnostics receives the pipeline's own operational events: dropped console
// writes, rotation failures, broker fallbacks. It must not log back through
// the router.
type Diagnostics func(event string, err error)

// StderrDiagnostics writes pipeline diagnostics to standard error. It is the
// default when no Diagnostics is configured.
func StderrDiagnostics(event string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "logroute: %s: %v\n", event, err)
		return
	}
	fmt.Fprintf(os.Stderr, "logroute: %s\n", event)
}

// nopDiagnostics discards pipeline diagnostics.
func nopDiagnostics(string, error) {}

// core carries the settings shared by the built-in handlers.
type core struct {
	level     Level
	formatter Formatter
	filter    Filter
	diag      Diagnostics
}

func newCore(level Level, f Formatter, filter Filter, diag Diagnostics) core {
	if f == nil {
		f = &VerboseFormatter{}
	}
	if diag == nil {
		diag = StderrDiagnostics
	}
	return core{level: level, formatter: f, filter: filter, diag: diag}
}

// Enabled reports whether the record passes the handler-side gates.
func (c *core) Enabled(r *Record) bool {
	return r.Level >= c.level && c.filter.Match(r)
}

func (c *core) format(r *Record) ([]byte, error) {
	b, err := c.formatter.Format(r)
	if err != nil {
		return nil, fmt.Errorf("format record: %w", err)
	}
	return b, nil
}
