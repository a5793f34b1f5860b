package router

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fastjson"

	"github.com/rzbill/logroute/pkg/id"
)

// Formatter converts a Record into its wire form. The returned bytes carry no
// trailing newline; sinks append one where the medium is line-delimited.
type Formatter interface {
	Format(r *Record) ([]byte, error)
}

// DefaultTimeFormat is the timestamp layout used by VerboseFormatter unless
// overridden. RFC3339Nano survives a format/parse round trip losslessly.
const DefaultTimeFormat = time.RFC3339Nano

// VerboseFormatter renders a record as a single JSON object carrying the full
// source context. Its output parses back into an equal Record via ParseVerbose.
type VerboseFormatter struct {
	// TimeFormat overrides DefaultTimeFormat when non-empty.
	TimeFormat string
}

// verboseLine is the wire schema of the verbose format.
type verboseLine struct {
	ID       string `json:"id,omitempty"`
	TS       string `json:"ts"`
	Level    string `json:"level"`
	Module   string `json:"module"`
	Function string `json:"func"`
	Line     int    `json:"line"`
	Message  string `json:"msg"`
}

// Format implements Formatter.
func (f *VerboseFormatter) Format(r *Record) ([]byte, error) {
	layout := f.TimeFormat
	if layout == "" {
		layout = DefaultTimeFormat
	}
	line := verboseLine{
		TS:       r.Time.Format(layout),
		Level:    r.Level.String(),
		Module:   r.Module,
		Function: r.Function,
		Line:     r.Line,
		Message:  r.Message,
	}
	if !r.ID.IsZero() {
		line.ID = r.ID.String()
	}
	return json.Marshal(line)
}

// SimpleFormatter renders only the record message.
type SimpleFormatter struct{}

// Format implements Formatter.
func (SimpleFormatter) Format(r *Record) ([]byte, error) {
	return []byte(r.Message), nil
}

// verboseParsers is a pool of fastjson parsers for ParseVerbose.
var verboseParsers fastjson.ParserPool

// ParseVerbose reconstructs a Record from a verbose-formatted line. Replay
// tooling uses it to recover broker keys and ordering from backup files.
func ParseVerbose(b []byte) (*Record, error) {
	p := verboseParsers.Get()
	defer verboseParsers.Put(p)

	v, err := p.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("parse verbose record: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes("ts")))
	if err != nil {
		return nil, fmt.Errorf("parse verbose timestamp: %w", err)
	}
	level, err := ParseLevel(string(v.GetStringBytes("level")))
	if err != nil {
		return nil, fmt.Errorf("parse verbose level: %w", err)
	}
	r := &Record{
		Time:     ts,
		Level:    level,
		Module:   string(v.GetStringBytes("module")),
		Function: string(v.GetStringBytes("func")),
		Line:     v.GetInt("line"),
		Message:  string(v.GetStringBytes("msg")),
	}
	if hexID := v.GetStringBytes("id"); len(hexID) > 0 {
		parsed, err := id.ParseHex(string(hexID))
		if err != nil {
			return nil, fmt.Errorf("parse verbose id: %w", err)
		}
		r.ID = parsed
	}
	return r, nil
}
