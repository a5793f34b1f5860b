package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rzbill/logroute/pkg/router"
)

// Build constructs a Router from the document, resolving every name exactly
// once. Any dangling reference, unknown type, unparsable level or malformed
// filter expression is fatal here, before a single record flows.
func Build(cfg Config) (*router.Router, error) {
	return BuildWith(cfg, router.StderrDiagnostics)
}

// BuildWith is Build with an explicit diagnostics destination.
func BuildWith(cfg Config, diag router.Diagnostics) (*router.Router, error) {
	formatters, err := buildFormatters(cfg)
	if err != nil {
		return nil, err
	}

	handlers := make(map[string]router.Handler, len(cfg.Handlers))
	for name, hc := range cfg.Handlers {
		h, err := buildHandler(name, hc, formatters, diag)
		if err != nil {
			return nil, err
		}
		handlers[name] = h
	}

	opts := []router.Option{router.WithDiagnostics(diag)}
	for name, lc := range cfg.Loggers {
		level := router.InfoLevel
		if lc.Level != "" {
			level, err = router.ParseLevel(lc.Level)
			if err != nil {
				return nil, fmt.Errorf("logger %q: %w", name, err)
			}
		}
		bound := make([]router.Handler, 0, len(lc.Handlers))
		for _, ref := range lc.Handlers {
			h, ok := handlers[ref]
			if !ok {
				return nil, fmt.Errorf("logger %q references unknown handler %q", name, ref)
			}
			bound = append(bound, h)
		}
		propagate := true
		if lc.Propagate != nil {
			propagate = *lc.Propagate
		}
		opts = append(opts, router.WithLogger(name, level, propagate, bound...))
	}
	return router.New(opts...), nil
}

// buildFormatters materializes the formatter section. The builtin names
// "simple" and "verbose" are available even when the section omits them.
func buildFormatters(cfg Config) (map[string]router.Formatter, error) {
	formatters := map[string]router.Formatter{
		"simple":  router.SimpleFormatter{},
		"verbose": &router.VerboseFormatter{},
	}
	for name, fc := range cfg.Formatters {
		switch fc.Type {
		case "simple":
			formatters[name] = router.SimpleFormatter{}
		case "verbose":
			formatters[name] = &router.VerboseFormatter{TimeFormat: fc.TimeFormat}
		default:
			return nil, fmt.Errorf("formatter %q: unknown type %q", name, fc.Type)
		}
	}
	return formatters, nil
}

func buildHandler(name string, hc HandlerConfig, formatters map[string]router.Formatter, diag router.Diagnostics) (router.Handler, error) {
	level := router.DebugLevel
	if hc.Level != "" {
		var err error
		level, err = router.ParseLevel(hc.Level)
		if err != nil {
			return nil, fmt.Errorf("handler %q: %w", name, err)
		}
	}
	formatter, ok := formatters[hc.Formatter]
	if hc.Formatter == "" {
		formatter = &router.VerboseFormatter{}
	} else if !ok {
		return nil, fmt.Errorf("handler %q references unknown formatter %q", name, hc.Formatter)
	}
	filter, err := router.NewFilter(hc.Filter)
	if err != nil {
		return nil, fmt.Errorf("handler %q filter: %w", name, err)
	}

	switch hc.Type {
	case "console":
		var opts []router.ConsoleOption
		if hc.StderrAt != "" {
			at, err := router.ParseLevel(hc.StderrAt)
			if err != nil {
				return nil, fmt.Errorf("handler %q stderrAt: %w", name, err)
			}
			opts = append(opts, router.WithStderrAt(at))
		}
		return router.NewConsoleHandler(level, formatter, filter, diag, opts...), nil

	case "file":
		if hc.Path == "" {
			return nil, fmt.Errorf("handler %q: file handler needs a path", name)
		}
		opts := []router.FileOption{router.WithCompression(hc.Compress)}
		if hc.MaxBytes > 0 {
			opts = append(opts, router.WithMaxBytes(hc.MaxBytes))
		}
		if hc.MaxBackups > 0 {
			opts = append(opts, router.WithMaxBackups(hc.MaxBackups))
		}
		h, err := router.NewFileHandler(hc.Path, level, formatter, filter, diag, opts...)
		if err != nil {
			return nil, fmt.Errorf("handler %q: %w", name, err)
		}
		return h, nil

	case "kafka":
		brokers := SplitBrokers(hc.Brokers)
		if len(brokers) == 0 {
			return nil, fmt.Errorf("handler %q: kafka handler needs brokers", name)
		}
		if hc.Topic == "" {
			return nil, fmt.Errorf("handler %q: kafka handler needs a topic", name)
		}
		backup := hc.BackupPath
		if backup == "" {
			backup = DefaultBackupPath()
		}
		var opts []router.KafkaOption
		if hc.BatchSize > 0 {
			opts = append(opts, router.WithBatchSize(hc.BatchSize))
		}
		if hc.PublishTimeoutMs > 0 {
			opts = append(opts, router.WithPublishTimeout(time.Duration(hc.PublishTimeoutMs)*time.Millisecond))
		}
		if hc.FlushIntervalMs > 0 {
			opts = append(opts, router.WithFlushInterval(time.Duration(hc.FlushIntervalMs)*time.Millisecond))
		}
		return router.NewKafkaHandler(brokers, hc.Topic, backup, level, formatter, filter, diag, opts...), nil

	default:
		return nil, fmt.Errorf("handler %q: unknown type %q", name, hc.Type)
	}
}

// SplitBrokers parses a comma-separated host:port list, trimming blanks.
func SplitBrokers(s string) []string {
	var brokers []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}
