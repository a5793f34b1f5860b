package router

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakePublisher records publish attempts and fails on demand.
type fakePublisher struct {
	mu      sync.Mutex
	batches [][]Message
	err     error
	block   bool
	closed  bool
}

func (p *fakePublisher) Publish(ctx context.Context, msgs []Message) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	batch := make([]Message, len(msgs))
	copy(batch, msgs)
	p.batches = append(p.batches, batch)
	return nil
}

func (p *fakePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePublisher) batchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func newTestKafkaHandler(t *testing.T, pub Publisher, opts ...KafkaOption) (*KafkaHandler, string) {
	t.Helper()
	backup := filepath.Join(t.TempDir(), "backup.log")
	opts = append([]KafkaOption{
		WithPublisher(pub),
		WithBatchSize(3),
		WithFlushInterval(0),
	}, opts...)
	h := NewKafkaHandler(nil, "logs", backup, DebugLevel, SimpleFormatter{}, Filter{}, nopDiagnostics, opts...)
	t.Cleanup(func() { _ = h.Close() })
	return h, backup
}

func TestKafkaBatchSizeTriggersPublish(t *testing.T) {
	pub := &fakePublisher{}
	h, _ := newTestKafkaHandler(t, pub)

	if h.State() != StateIdle {
		t.Fatalf("initial state = %s", h.State())
	}
	for _, msg := range []string{"one", "two"} {
		if err := h.Write(NewRecord(InfoLevel, msg, 0)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if pub.batchCount() != 0 {
		t.Fatalf("published before the batch filled")
	}
	if h.State() != StateBatching {
		t.Fatalf("state with partial batch = %s", h.State())
	}

	if err := h.Write(NewRecord(InfoLevel, "three", 0)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if pub.batchCount() != 1 {
		t.Fatalf("full batch did not publish immediately")
	}
	if h.State() != StateIdle {
		t.Fatalf("state after publish = %s", h.State())
	}

	batch := pub.batches[0]
	if len(batch) != 3 {
		t.Fatalf("batch size = %d", len(batch))
	}
	for i, want := range []string{"one", "two", "three"} {
		if string(batch[i].Value) != want {
			t.Fatalf("batch[%d] = %q, want %q", i, batch[i].Value, want)
		}
	}
}

func TestKafkaPublishFailureFallsOpenToBackup(t *testing.T) {
	pub := &fakePublisher{err: errors.New("all brokers down")}
	h, backup := newTestKafkaHandler(t, pub)

	for _, msg := range []string{"one", "two", "three"} {
		if err := h.Write(NewRecord(WarningLevel, msg, 0)); err != nil {
			t.Fatalf("publish failure leaked to the caller: %v", err)
		}
	}

	lines, err := ReadBackup(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("backup holds %d records, want 3", len(lines))
	}
	for i, want := range []string{"one", "two", "three"} {
		if string(lines[i]) != want {
			t.Fatalf("backup[%d] = %q, want %q", i, lines[i], want)
		}
	}
	if h.State() != StateIdle {
		t.Fatalf("state after fallback = %s", h.State())
	}
}

func TestKafkaPublishTimeoutFallsOpenToBackup(t *testing.T) {
	pub := &fakePublisher{block: true}
	h, backup := newTestKafkaHandler(t, pub, WithPublishTimeout(20*time.Millisecond))

	for _, msg := range []string{"one", "two", "three"} {
		if err := h.Write(NewRecord(InfoLevel, msg, 0)); err != nil {
			t.Fatalf("timed-out publish leaked to the caller: %v", err)
		}
	}
	lines, err := ReadBackup(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("backup holds %d records, want 3", len(lines))
	}
}

func TestKafkaCloseRoutesPartialBatchToBackup(t *testing.T) {
	pub := &fakePublisher{}
	h, backup := newTestKafkaHandler(t, pub)

	for _, msg := range []string{"one", "two"} {
		if err := h.Write(NewRecord(InfoLevel, msg, 0)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if pub.batchCount() != 0 {
		t.Fatalf("shutdown should not publish over the network")
	}
	if !pub.closed {
		t.Fatalf("publisher not closed")
	}
	lines, err := ReadBackup(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("backup holds %d records, want the partial batch of 2", len(lines))
	}
}

func TestKafkaBackgroundFlushDrainsPartialBatch(t *testing.T) {
	pub := &fakePublisher{}
	backup := filepath.Join(t.TempDir(), "backup.log")
	h := NewKafkaHandler(nil, "logs", backup, DebugLevel, SimpleFormatter{}, Filter{}, nopDiagnostics,
		WithPublisher(pub), WithBatchSize(100), WithFlushInterval(10*time.Millisecond))
	t.Cleanup(func() { _ = h.Close() })

	if err := h.Write(NewRecord(InfoLevel, "lonely", 0)); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for pub.batchCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("background flush never published the partial batch")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestKafkaMessageKeysCarryRecordIDs(t *testing.T) {
	pub := &fakePublisher{}
	h, _ := newTestKafkaHandler(t, pub)
	r := New(WithLogger(RootLogger, DebugLevel, false, h))

	for _, msg := range []string{"one", "two", "three"} {
		if err := r.Emit(RootLogger, NewRecord(InfoLevel, msg, 0)); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	batch := pub.batches[0]
	for i := 1; i < len(batch); i++ {
		if len(batch[i].Key) != 16 {
			t.Fatalf("message %d key length = %d", i, len(batch[i].Key))
		}
		if bytes.Compare(batch[i-1].Key, batch[i].Key) >= 0 {
			t.Fatalf("message keys not strictly increasing at %d", i)
		}
	}
}

func TestBackupAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "backup.log")
	if err := AppendBackup(path, [][]byte{[]byte("a"), []byte("b")}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := AppendBackup(path, [][]byte{[]byte("c")}); err != nil {
		t.Fatalf("append again: %v", err)
	}
	lines, err := ReadBackup(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 3 || string(lines[0]) != "a" || string(lines[1]) != "b" || string(lines[2]) != "c" {
		t.Fatalf("lines = %q", lines)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if string(raw) != "a\nb\nc\n" {
		t.Fatalf("backup file not newline-delimited: %q", raw)
	}
}
