package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LOGROUTE_* environment variables onto cfg. Sink-specific
// overrides apply to every handler of the matching type.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LOGROUTE_LEVEL"); v != "" {
		if root, ok := cfg.Loggers["root"]; ok {
			root.Level = v
			cfg.Loggers["root"] = root
		}
	}
	for name, h := range cfg.Handlers {
		switch h.Type {
		case "file":
			if v := os.Getenv("LOGROUTE_FILE_PATH"); v != "" {
				h.Path = v
			}
			if v := os.Getenv("LOGROUTE_FILE_MAX_BYTES"); v != "" {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					h.MaxBytes = n
				}
			}
			if v := os.Getenv("LOGROUTE_FILE_MAX_BACKUPS"); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					h.MaxBackups = n
				}
			}
		case "kafka":
			if v := os.Getenv("LOGROUTE_BROKERS"); v != "" {
				h.Brokers = v
			}
			if v := os.Getenv("LOGROUTE_TOPIC"); v != "" {
				h.Topic = v
			}
			if v := os.Getenv("LOGROUTE_BACKUP_PATH"); v != "" {
				h.BackupPath = v
			}
			if v := os.Getenv("LOGROUTE_BATCH_SIZE"); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					h.BatchSize = n
				}
			}
		}
		cfg.Handlers[name] = h
	}
}
