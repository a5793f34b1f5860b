package router

import "fmt"

// Logger is a named entry point into the Router: a minimum level, an ordered
// handler list and a propagation flag. Loggers are created through Router
// options, Register, or implicitly by Logger().
type Logger struct {
	name      string
	level     Level
	propagate bool
	handlers  []Handler
	router    *Router
}

// Name returns the logger's dotted name.
func (l *Logger) Name() string { return l.name }

// Level returns the logger's minimum severity.
func (l *Logger) Level() Level { return l.level }

// log builds the record at the caller's call site and routes it.
func (l *Logger) log(level Level, msg string) error {
	return l.router.Emit(l.name, NewRecord(level, msg, 2))
}

// Debug emits a DEBUG record.
func (l *Logger) Debug(msg string) error { return l.log(DebugLevel, msg) }

// Info emits an INFO record.
func (l *Logger) Info(msg string) error { return l.log(InfoLevel, msg) }

// Warning emits a WARNING record.
func (l *Logger) Warning(msg string) error { return l.log(WarningLevel, msg) }

// Error emits an ERROR record.
func (l *Logger) Error(msg string) error { return l.log(ErrorLevel, msg) }

// Critical emits a CRITICAL record.
func (l *Logger) Critical(msg string) error { return l.log(CriticalLevel, msg) }

// Debugf emits a formatted DEBUG record.
func (l *Logger) Debugf(format string, args ...interface{}) error {
	return l.log(DebugLevel, fmt.Sprintf(format, args...))
}

// Infof emits a formatted INFO record.
func (l *Logger) Infof(format string, args ...interface{}) error {
	return l.log(InfoLevel, fmt.Sprintf(format, args...))
}

// Warningf emits a formatted WARNING record.
func (l *Logger) Warningf(format string, args ...interface{}) error {
	return l.log(WarningLevel, fmt.Sprintf(format, args...))
}

// Errorf emits a formatted ERROR record.
func (l *Logger) Errorf(format string, args ...interface{}) error {
	return l.log(ErrorLevel, fmt.Sprintf(format, args...))
}

// Criticalf emits a formatted CRITICAL record.
func (l *Logger) Criticalf(format string, args ...interface{}) error {
	return l.log(CriticalLevel, fmt.Sprintf(format, args...))
}
