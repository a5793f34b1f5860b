package router

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// File handler defaults, matching the routing contract.
const (
	DefaultMaxBytes   = 1_000_000
	DefaultMaxBackups = 5
)

// FileHandler appends formatted records to a file and rotates it by size.
// When a write would push the file past MaxBytes, the current file is closed
// and renamed with a numeric suffix: ".1" is the most recent backup, ".N" the
// oldest, and at most MaxBackups backups are retained. With compression
// enabled, backups are gzipped and carry a ".gz" suffix.
//
// Unlike the broker sink, file I/O errors are fatal: they propagate to the
// emitting caller, since a full or unwritable disk has no local fallback.
type FileHandler struct {
	core
	path       string
	maxBytes   int64
	maxBackups int
	compress   bool

	mu   sync.Mutex
	file *os.File
	size int64
}

// FileOption configures a FileHandler.
type FileOption func(*FileHandler)

// WithMaxBytes sets the rotation threshold in bytes.
func WithMaxBytes(n int64) FileOption {
	return func(h *FileHandler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// WithMaxBackups sets how many rotated files are retained.
func WithMaxBackups(n int) FileOption {
	return func(h *FileHandler) {
		if n >= 0 {
			h.maxBackups = n
		}
	}
}

// WithCompression gzips rotated files.
func WithCompression(on bool) FileOption {
	return func(h *FileHandler) { h.compress = on }
}

// NewFileHandler opens (or creates) the log file at path and returns the
// handler. The parent directory is created when missing.
func NewFileHandler(path string, level Level, f Formatter, filter Filter, diag Diagnostics, opts ...FileOption) (*FileHandler, error) {
	h := &FileHandler{
		core:       newCore(level, f, filter, diag),
		path:       path,
		maxBytes:   DefaultMaxBytes,
		maxBackups: DefaultMaxBackups,
	}
	for _, opt := range opts {
		opt(h)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	if err := h.open(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *FileHandler) open() error {
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", h.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file %s: %w", h.path, err)
	}
	h.file = f
	h.size = info.Size()
	return nil
}

// Write implements Handler.
func (h *FileHandler) Write(r *Record) error {
	b, err := h.format(r)
	if err != nil {
		return err
	}
	line := append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return fmt.Errorf("file handler %s is closed", h.path)
	}
	if h.size > 0 && h.size+int64(len(line)) > h.maxBytes {
		if err := h.rotate(); err != nil {
			return err
		}
	}
	n, err := h.file.Write(line)
	h.size += int64(n)
	if err != nil {
		return fmt.Errorf("write log file %s: %w", h.path, err)
	}
	return nil
}

// backupName returns the path of the i-th rotated file, newest first.
func (h *FileHandler) backupName(i int) string {
	name := h.path + "." + strconv.Itoa(i)
	if h.compress {
		name += ".gz"
	}
	return name
}

// rotate shifts existing backups up by one, retires the oldest, and moves the
// live file into the ".1" slot. Caller holds h.mu.
func (h *FileHandler) rotate() error {
	if err := h.file.Close(); err != nil {
		return fmt.Errorf("close for rotation %s: %w", h.path, err)
	}
	h.file = nil

	if h.maxBackups > 0 {
		if err := os.Remove(h.backupName(h.maxBackups)); err != nil && !os.IsNotExist(err) {
			h.diag("remove oldest backup", err)
		}
		for i := h.maxBackups - 1; i >= 1; i-- {
			if err := os.Rename(h.backupName(i), h.backupName(i+1)); err != nil && !os.IsNotExist(err) {
				h.diag("shift backup", err)
			}
		}
		if h.compress {
			if err := compressFile(h.path, h.backupName(1)); err != nil {
				return fmt.Errorf("compress rotated file: %w", err)
			}
			if err := os.Remove(h.path); err != nil {
				return fmt.Errorf("remove rotated file: %w", err)
			}
		} else {
			if err := os.Rename(h.path, h.backupName(1)); err != nil {
				return fmt.Errorf("rename rotated file: %w", err)
			}
		}
	} else {
		// No backups retained: truncate in place.
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("truncate rotated file: %w", err)
		}
	}
	return h.open()
}

// Close implements Handler.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	if err != nil {
		return fmt.Errorf("close log file %s: %w", h.path, err)
	}
	return nil
}

// compressFile gzips src into dst.
func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
