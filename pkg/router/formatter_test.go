package router

import (
	"strings"
	"testing"
	"time"

	"github.com/rzbill/logroute/pkg/id"
)

func sampleRecord(t *testing.T) *Record {
	t.Helper()
	return &Record{
		ID:       id.NewGenerator().Next(),
		Time:     time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC),
		Level:    ErrorLevel,
		Module:   "github.com/rzbill/logroute/pkg/router",
		Function: "TestVerboseRoundTrip",
		Line:     42,
		Message:  `disk said "no"` + "\nand then hung up",
	}
}

func TestVerboseRoundTrip(t *testing.T) {
	r := sampleRecord(t)
	f := &VerboseFormatter{}
	b, err := f.Format(r)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	got, err := ParseVerbose(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Time.Equal(r.Time) {
		t.Fatalf("timestamp: got %v, want %v", got.Time, r.Time)
	}
	if got.Level != r.Level {
		t.Fatalf("level: got %s, want %s", got.Level, r.Level)
	}
	if got.Module != r.Module || got.Function != r.Function || got.Line != r.Line {
		t.Fatalf("source: got %s/%s:%d", got.Module, got.Function, got.Line)
	}
	if got.Message != r.Message {
		t.Fatalf("message: got %q, want %q", got.Message, r.Message)
	}
	if got.ID.Compare(r.ID) != 0 {
		t.Fatalf("id: got %s, want %s", got.ID, r.ID)
	}
}

func TestVerboseEscapesMessage(t *testing.T) {
	r := sampleRecord(t)
	b, err := (&VerboseFormatter{}).Format(r)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	line := string(b)
	if strings.ContainsRune(line, '\n') {
		t.Fatalf("formatted record spans several lines: %q", line)
	}
	if !strings.Contains(line, `\"no\"`) {
		t.Fatalf("quotes not escaped: %q", line)
	}
}

func TestVerboseOmitsZeroID(t *testing.T) {
	r := sampleRecord(t)
	r.ID = id.Zero
	b, err := (&VerboseFormatter{}).Format(r)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if strings.Contains(string(b), `"id"`) {
		t.Fatalf("zero id should be omitted: %s", b)
	}
	got, err := ParseVerbose(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.ID.IsZero() {
		t.Fatalf("expected zero id after round trip")
	}
}

func TestSimpleFormatter(t *testing.T) {
	r := sampleRecord(t)
	b, err := SimpleFormatter{}.Format(r)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if string(b) != r.Message {
		t.Fatalf("simple output = %q, want message only", b)
	}
}

func TestParseVerboseRejectsGarbage(t *testing.T) {
	if _, err := ParseVerbose([]byte("not json")); err == nil {
		t.Fatalf("expected error for non-JSON input")
	}
	if _, err := ParseVerbose([]byte(`{"ts":"tuesday","level":"INFO"}`)); err == nil {
		t.Fatalf("expected error for bad timestamp")
	}
	if _, err := ParseVerbose([]byte(`{"ts":"2026-03-14T09:26:53Z","level":"LOUD"}`)); err == nil {
		t.Fatalf("expected error for bad level")
	}
}
