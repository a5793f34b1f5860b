package router

import (
	"testing"
	"time"
)

func filterRecord(module, function, message string, level Level) *Record {
	return &Record{
		Time:     time.Now(),
		Level:    level,
		Module:   module,
		Function: function,
		Line:     10,
		Message:  message,
	}
}

func TestFilterDisabledMatchesEverything(t *testing.T) {
	f, err := NewFilter("")
	if err != nil {
		t.Fatalf("empty filter: %v", err)
	}
	if !f.Match(filterRecord("m", "f", "msg", DebugLevel)) {
		t.Fatalf("disabled filter should match")
	}
}

func TestFilterByModuleAndLevel(t *testing.T) {
	f, err := NewFilter(`module.endsWith("api") && level >= 2`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Match(filterRecord("svc/api", "handle", "boom", ErrorLevel)) {
		t.Fatalf("expected match for api error")
	}
	if f.Match(filterRecord("svc/worker", "handle", "boom", ErrorLevel)) {
		t.Fatalf("module mismatch should not match")
	}
	if f.Match(filterRecord("svc/api", "handle", "fine", InfoLevel)) {
		t.Fatalf("level below threshold should not match")
	}
}

func TestFilterByMessage(t *testing.T) {
	f, err := NewFilter(`message.contains("timeout")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Match(filterRecord("m", "fn", "upstream timeout after 3s", WarningLevel)) {
		t.Fatalf("expected match")
	}
	if f.Match(filterRecord("m", "fn", "all good", WarningLevel)) {
		t.Fatalf("unexpected match")
	}
}

func TestFilterCompileErrorIsFatal(t *testing.T) {
	if _, err := NewFilter(`module ==`); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := NewFilter(`nonexistent_var == 1`); err == nil {
		t.Fatalf("expected unknown variable error")
	}
}
