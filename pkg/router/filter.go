package router

import (
	"strings"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program evaluated against each record after the
// level gates pass. When disabled (empty expression), Match always returns true.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles a CEL expression over the record attributes. The
// expression sees:
//
//	level   int     numeric severity (DEBUG=0 .. CRITICAL=4)
//	module  string  emitting package path
//	fn      string  emitting function name
//	line    int     emitting source line
//	message string  record message text
//
// An empty expression yields a disabled filter. Compilation errors are fatal
// at configuration-load time.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("level", cel.IntType),
		cel.Variable("module", cel.StringType),
		cel.Variable("fn", cel.StringType),
		cel.Variable("line", cel.IntType),
		cel.Variable("message", cel.StringType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match evaluates the compiled expression against a record. When disabled,
// returns true. Evaluation errors count as a non-match.
func (f Filter) Match(r *Record) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"level":   int64(r.Level),
		"module":  r.Module,
		"fn":      r.Function,
		"line":    int64(r.Line),
		"message": r.Message,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
