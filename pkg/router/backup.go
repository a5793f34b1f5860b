package router

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// maxBackupLine bounds a single backup-file line. Formatted records are far
// smaller in practice; the bound only guards the scanner buffer.
const maxBackupLine = 1 << 20

// AppendBackup appends formatted records, one per line and in order, to the
// local backup file at path. It is the fail-open destination for batches the
// broker did not accept.
func AppendBackup(path string, lines [][]byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open backup file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			f.Close()
			return fmt.Errorf("write backup file %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return fmt.Errorf("write backup file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush backup file %s: %w", path, err)
	}
	return f.Close()
}

// ReadBackup reads a newline-delimited backup file and returns its records in
// file order. Empty lines are skipped.
func ReadBackup(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backup file %s: %w", path, err)
	}
	defer f.Close()

	var lines [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxBackupLine)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		line := make([]byte, len(sc.Bytes()))
		copy(line, sc.Bytes())
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read backup file %s: %w", path, err)
	}
	return lines, nil
}
