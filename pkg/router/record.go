package router

import (
	"runtime"
	"strings"
	"time"

	"github.com/rzbill/logroute/pkg/id"
)

// Record is a single log record flowing through the pipeline. It is built
// once at the emit site and never mutated afterwards; handlers receive a
// shared pointer and must treat it as read-only.
type Record struct {
	ID       id.ID
	Time     time.Time
	Level    Level
	Module   string
	Function string
	Line     int
	Message  string
}

// NewRecord builds a Record for the caller's source location. skip is the
// number of stack frames above NewRecord to attribute the record to; 0 means
// the direct caller.
func NewRecord(level Level, message string, skip int) *Record {
	module, function, line := callerInfo(skip + 2)
	return &Record{
		Time:     time.Now(),
		Level:    level,
		Module:   module,
		Function: function,
		Line:     line,
		Message:  message,
	}
}

// callerInfo resolves the emitting package path, bare function name and line.
func callerInfo(skip int) (module, function string, line int) {
	pc, _, l, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown", 0
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", "unknown", l
	}
	module, function = splitFuncName(fn.Name())
	return module, function, l
}

// splitFuncName splits a runtime function name like
// "github.com/rzbill/logroute/pkg/router.Logger.Info" into the package path
// and the function part after it.
func splitFuncName(full string) (module, function string) {
	// The package path never contains dots after the last slash boundary,
	// so the first dot past the last slash separates package from function.
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return full, full
	}
	dot += slash + 1
	return full[:dot], full[dot+1:]
}
