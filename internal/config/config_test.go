package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	root, ok := cfg.Loggers["root"]
	if !ok {
		t.Fatalf("default config has no root logger")
	}
	if root.Level != "INFO" {
		t.Fatalf("root level = %q", root.Level)
	}
	if len(root.Handlers) != 1 || root.Handlers[0] != "console" {
		t.Fatalf("root handlers = %v", root.Handlers)
	}
	if cfg.Handlers["console"].Type != "console" {
		t.Fatalf("console handler missing")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logroute.yaml")
	data := []byte(`
formatters:
  verbose:
    type: verbose
handlers:
  app:
    type: file
    level: DEBUG
    formatter: verbose
    path: /var/log/app.log
    maxBytes: 1000000
    maxBackups: 5
  events:
    type: kafka
    level: WARNING
    formatter: verbose
    brokers: "k1:9092, k2:9092"
    topic: app-logs
    batchSize: 100
    backupPath: /var/log/app-backup.log
loggers:
  root:
    level: INFO
    handlers: [app]
  kafka:
    level: WARNING
    handlers: [events]
    propagate: false
`)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Handlers["app"].MaxBytes != 1000000 {
		t.Fatalf("maxBytes = %d", cfg.Handlers["app"].MaxBytes)
	}
	if got := SplitBrokers(cfg.Handlers["events"].Brokers); len(got) != 2 || got[1] != "k2:9092" {
		t.Fatalf("brokers = %v", got)
	}
	kl := cfg.Loggers["kafka"]
	if kl.Propagate == nil || *kl.Propagate {
		t.Fatalf("kafka logger should have propagate=false")
	}
	if cfg.Loggers["root"].Propagate != nil {
		t.Fatalf("omitted propagate should stay nil (defaults to true)")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logroute.json")
	data := []byte(`{
		"handlers": {"console": {"type": "console", "level": "ERROR", "formatter": "simple"}},
		"loggers": {"root": {"level": "DEBUG", "handlers": ["console"]}}
	}`)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Handlers["console"].Level != "ERROR" {
		t.Fatalf("console level = %q", cfg.Handlers["console"].Level)
	}
}

func TestLoadMalformedIsFatal(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(file, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := cfg.Loggers["root"]; !ok {
		t.Fatalf("expected defaults")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	cfg.Handlers["events"] = HandlerConfig{Type: "kafka", Brokers: "old:9092", Topic: "old"}
	cfg.Handlers["app"] = HandlerConfig{Type: "file", Path: "/old/app.log"}

	os.Setenv("LOGROUTE_LEVEL", "ERROR")
	os.Setenv("LOGROUTE_BROKERS", "new1:9092,new2:9092")
	os.Setenv("LOGROUTE_TOPIC", "fresh")
	os.Setenv("LOGROUTE_FILE_PATH", "/new/app.log")
	t.Cleanup(func() {
		os.Unsetenv("LOGROUTE_LEVEL")
		os.Unsetenv("LOGROUTE_BROKERS")
		os.Unsetenv("LOGROUTE_TOPIC")
		os.Unsetenv("LOGROUTE_FILE_PATH")
	})

	FromEnv(&cfg)
	if cfg.Loggers["root"].Level != "ERROR" {
		t.Fatalf("env override level")
	}
	if cfg.Handlers["events"].Brokers != "new1:9092,new2:9092" {
		t.Fatalf("env override brokers")
	}
	if cfg.Handlers["events"].Topic != "fresh" {
		t.Fatalf("env override topic")
	}
	if cfg.Handlers["app"].Path != "/new/app.log" {
		t.Fatalf("env override file path")
	}
}
