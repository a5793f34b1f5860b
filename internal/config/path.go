package config

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default directory for log and backup files based
// on the host OS. It prefers standard locations when available and falls back
// to a dotdir in the user's home directory.
func DefaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./logs"
	}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "logroute")
	}

	// Common Linux/Unix system dir
	if isDir("/var/log") {
		return "/var/log/logroute"
	}

	// macOS: ~/Library/Logs/Logroute
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Logs", "Logroute")
	}

	// Windows: %USERPROFILE%/AppData/Local/Logroute
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "Logroute")
	}

	// Fallback: ~/.logroute
	return filepath.Join(homeDir, ".logroute")
}

// DefaultBackupPath is where the broker sink parks unpublished batches when
// no backup path is configured.
func DefaultBackupPath() string {
	return filepath.Join(DefaultLogDir(), "broker-backup.log")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
