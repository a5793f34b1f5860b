package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level routing document loaded from file/env: named
// formatters, named handlers, and named loggers binding the two.
type Config struct {
	Formatters map[string]FormatterConfig `json:"formatters" yaml:"formatters"`
	Handlers   map[string]HandlerConfig   `json:"handlers" yaml:"handlers"`
	Loggers    map[string]LoggerConfig    `json:"loggers" yaml:"loggers"`
}

// FormatterConfig selects a formatter variant.
type FormatterConfig struct {
	Type       string `json:"type" yaml:"type"`             // "verbose" or "simple"
	TimeFormat string `json:"timeFormat" yaml:"timeFormat"` // verbose only; Go layout string
}

// HandlerConfig configures one sink. Type selects which of the sink-specific
// fields apply.
type HandlerConfig struct {
	Type      string `json:"type" yaml:"type"` // "console", "file" or "kafka"
	Level     string `json:"level" yaml:"level"`
	Formatter string `json:"formatter" yaml:"formatter"`
	Filter    string `json:"filter" yaml:"filter"` // optional CEL expression

	// console
	StderrAt string `json:"stderrAt" yaml:"stderrAt"`

	// file
	Path       string `json:"path" yaml:"path"`
	MaxBytes   int64  `json:"maxBytes" yaml:"maxBytes"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
	Compress   bool   `json:"compress" yaml:"compress"`

	// kafka
	Brokers          string `json:"brokers" yaml:"brokers"` // comma-separated host:port list
	Topic            string `json:"topic" yaml:"topic"`
	BatchSize        int    `json:"batchSize" yaml:"batchSize"`
	BackupPath       string `json:"backupPath" yaml:"backupPath"`
	PublishTimeoutMs int    `json:"publishTimeoutMs" yaml:"publishTimeoutMs"`
	FlushIntervalMs  int    `json:"flushIntervalMs" yaml:"flushIntervalMs"`
}

// LoggerConfig configures one named logger. Handlers fire in list order.
// Propagate defaults to true when omitted.
type LoggerConfig struct {
	Level     string   `json:"level" yaml:"level"`
	Handlers  []string `json:"handlers" yaml:"handlers"`
	Propagate *bool    `json:"propagate" yaml:"propagate"`
}

// Default returns built-in defaults: a console-only root at INFO.
func Default() Config {
	return Config{
		Formatters: map[string]FormatterConfig{
			"simple":  {Type: "simple"},
			"verbose": {Type: "verbose"},
		},
		Handlers: map[string]HandlerConfig{
			"console": {Type: "console", Level: "DEBUG", Formatter: "simple"},
		},
		Loggers: map[string]LoggerConfig{
			"root": {Level: "INFO", Handlers: []string{"console"}},
		},
	}
}

// Load reads a routing document from a JSON or YAML file (by extension).
// If path is empty, returns defaults. A loaded document fully replaces the
// defaults; it is not merged with them.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
