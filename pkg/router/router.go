package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rzbill/logroute/pkg/id"
)

// RootLogger is the name of the implicit top of the logger hierarchy.
const RootLogger = "root"

// Router dispatches emitted records to the handlers bound to named loggers.
// Loggers form a dotted-name hierarchy ("api.auth" -> "api" -> root); a
// record climbing the hierarchy is re-gated by each logger's level, and stops
// at the first logger with propagation disabled.
//
// Handlers bound to one logger fire in their declared order. The original
// configuration format is silent on this, so declaration order is the
// documented contract here.
type Router struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	gen     *id.Generator
	diag    Diagnostics
	closed  bool
}

// Option configures a Router.
type Option func(*Router)

// WithDiagnostics routes the pipeline's own operational events. The default
// writes to standard error.
func WithDiagnostics(d Diagnostics) Option {
	return func(r *Router) {
		if d != nil {
			r.diag = d
		}
	}
}

// WithLogger registers a named logger during construction. Handlers fire in
// the given order.
func WithLogger(name string, level Level, propagate bool, handlers ...Handler) Option {
	return func(r *Router) {
		r.register(name, level, propagate, handlers)
	}
}

// New creates a Router. When no root logger is configured, a console-only
// root at InfoLevel is installed so emitted records always have somewhere to
// land.
func New(opts ...Option) *Router {
	r := &Router{
		loggers: make(map[string]*Logger),
		gen:     id.NewGenerator(),
		diag:    StderrDiagnostics,
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := r.loggers[RootLogger]; !ok {
		console := NewConsoleHandler(DebugLevel, SimpleFormatter{}, Filter{}, r.diag)
		r.register(RootLogger, InfoLevel, false, []Handler{console})
	}
	return r
}

func (r *Router) register(name string, level Level, propagate bool, handlers []Handler) *Logger {
	l := &Logger{
		name:      name,
		level:     level,
		propagate: propagate,
		handlers:  handlers,
		router:    r,
	}
	r.loggers[name] = l
	return l
}

// Register adds or replaces a named logger after construction.
func (r *Router) Register(name string, level Level, propagate bool, handlers ...Handler) *Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(name, level, propagate, handlers)
}

// Logger returns the named logger, creating an implicit one when the name was
// never configured. Implicit loggers bind no handlers, pass every level and
// propagate, so their records are handled entirely by configured ancestors.
func (r *Router) Logger(name string) *Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[name]; ok {
		return l
	}
	return r.register(name, DebugLevel, true, nil)
}

// parentOf resolves the nearest configured ancestor by dotted-name prefix,
// falling back to root. Returns nil for the root itself.
func (r *Router) parentOf(name string) *Logger {
	if name == RootLogger {
		return nil
	}
	for {
		i := strings.LastIndex(name, ".")
		if i < 0 {
			return r.loggers[RootLogger]
		}
		name = name[:i]
		if l, ok := r.loggers[name]; ok {
			return l
		}
	}
}

// Emit routes one record through the named logger and, per propagation, its
// ancestors. Sink I/O failures with no local fallback (the file handler)
// surface as the returned error; console and broker trouble never does.
func (r *Router) Emit(loggerName string, rec *Record) error {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return fmt.Errorf("router is closed")
	}
	l, ok := r.loggers[loggerName]
	if !ok {
		// Unconfigured name: records belong to the nearest configured
		// ancestor's subtree.
		l = r.parentOf(loggerName)
	}
	r.mu.RUnlock()

	if rec.ID.IsZero() {
		rec.ID = r.gen.Next()
	}

	var firstErr error
	for l != nil {
		if rec.Level >= l.level {
			for _, h := range l.handlers {
				if !h.Enabled(rec) {
					continue
				}
				if err := h.Write(rec); err != nil {
					r.diag("handler write failed", err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
		if !l.propagate {
			break
		}
		r.mu.RLock()
		parent := r.parentOf(l.name)
		r.mu.RUnlock()
		l = parent
	}
	return firstErr
}

// Close flushes and closes every handler exactly once, even when a handler is
// bound to several loggers. The router rejects emission afterwards.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	seen := make(map[Handler]struct{})
	var errs []error
	for _, l := range r.loggers {
		for _, h := range l.handlers {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			if err := h.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
