package router

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Broker handler defaults, matching the routing contract.
const (
	DefaultBatchSize      = 100
	DefaultPublishTimeout = 5 * time.Second
	DefaultFlushInterval  = time.Second
)

// Message is one formatted record bound for the broker. Key carries the
// record's sortable ID so partition-local ordering matches emission order.
type Message struct {
	Key   []byte
	Value []byte
}

// Publisher abstracts the broker transport so the handler can be exercised
// without a running cluster.
type Publisher interface {
	Publish(ctx context.Context, msgs []Message) error
	Close() error
}

// KafkaPublisher publishes messages to a Kafka topic.
type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher connects a writer to the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, msgs []Message) error {
	kmsgs := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		kmsgs[i] = kafka.Message{Key: m.Key, Value: m.Value}
	}
	return p.w.WriteMessages(ctx, kmsgs...)
}

// Close implements Publisher.
func (p *KafkaPublisher) Close() error { return p.w.Close() }

// BatchState is the broker handler's lifecycle state.
type BatchState int

// Handler states. Transitions: Idle -> Batching while records accumulate,
// Batching -> Flushing when the batch fills or the flush interval fires,
// Flushing -> Idle on publish success, Flushing -> BackingUp -> Idle on
// publish failure.
const (
	StateIdle BatchState = iota
	StateBatching
	StateFlushing
	StateBackingUp
)

// String returns the state name.
func (s BatchState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateBatching:
		return "BATCHING"
	case StateFlushing:
		return "FLUSHING"
	case StateBackingUp:
		return "BACKING_UP"
	default:
		return "UNKNOWN"
	}
}

// KafkaHandler batches formatted records and publishes them to a broker
// topic. When the batch reaches BatchSize the publish attempt happens
// immediately on the emitting goroutine; a background ticker flushes partial
// batches so records never sit indefinitely.
//
// The handler fails open: when a publish attempt errors or exceeds the
// bounded timeout, the whole batch is appended, in order, to the local backup
// file, and nothing surfaces to the emitting caller. On Close any partial
// batch goes straight to the backup file.
type KafkaHandler struct {
	core
	pub        Publisher
	backupPath string
	batchSize  int
	timeout    time.Duration
	flushEvery time.Duration

	mu    sync.Mutex
	batch []Message
	state BatchState

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// KafkaOption configures a KafkaHandler.
type KafkaOption func(*KafkaHandler)

// WithBatchSize sets how many records accumulate before a publish attempt.
func WithBatchSize(n int) KafkaOption {
	return func(h *KafkaHandler) {
		if n > 0 {
			h.batchSize = n
		}
	}
}

// WithPublishTimeout bounds a single publish attempt; past it the batch is
// treated as failed and routed to backup.
func WithPublishTimeout(d time.Duration) KafkaOption {
	return func(h *KafkaHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithFlushInterval sets the background flush cadence for partial batches.
// Zero disables the background flusher; batches then move only when full, on
// an explicit Flush, or at Close.
func WithFlushInterval(d time.Duration) KafkaOption {
	return func(h *KafkaHandler) { h.flushEvery = d }
}

// WithPublisher swaps the broker transport, mainly for tests.
func WithPublisher(p Publisher) KafkaOption {
	return func(h *KafkaHandler) { h.pub = p }
}

// NewKafkaHandler creates a broker sink publishing to topic on the given
// brokers, with backupPath as the fail-open destination.
func NewKafkaHandler(brokers []string, topic, backupPath string, level Level, f Formatter, filter Filter, diag Diagnostics, opts ...KafkaOption) *KafkaHandler {
	h := &KafkaHandler{
		core:       newCore(level, f, filter, diag),
		backupPath: backupPath,
		batchSize:  DefaultBatchSize,
		timeout:    DefaultPublishTimeout,
		flushEvery: DefaultFlushInterval,
		state:      StateIdle,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.pub == nil {
		h.pub = NewKafkaPublisher(brokers, topic)
	}
	if h.flushEvery > 0 {
		h.wg.Add(1)
		go h.flushLoop()
	}
	return h
}

// flushLoop periodically publishes partial batches.
func (h *KafkaHandler) flushLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.flushEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Flush()
		case <-h.done:
			return
		}
	}
}

// Write implements Handler. A full batch triggers an immediate publish
// attempt on the calling goroutine; the error contract stays fail-open, so
// Write never reports broker trouble.
func (h *KafkaHandler) Write(r *Record) error {
	b, err := h.format(r)
	if err != nil {
		h.diag("kafka format", err)
		return nil
	}
	msg := Message{Value: b}
	if !r.ID.IsZero() {
		msg.Key = r.ID.Bytes()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.batch = append(h.batch, msg)
	h.state = StateBatching
	if len(h.batch) >= h.batchSize {
		h.flushLocked()
	}
	return nil
}

// Flush publishes the current partial batch, if any.
func (h *KafkaHandler) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushLocked()
}

// flushLocked attempts publication of the buffered batch and falls back to
// the backup file on failure. Caller holds h.mu.
func (h *KafkaHandler) flushLocked() {
	if len(h.batch) == 0 {
		h.state = StateIdle
		return
	}
	batch := h.batch
	h.batch = nil
	h.state = StateFlushing

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	err := h.pub.Publish(ctx, batch)
	cancel()
	if err != nil {
		h.state = StateBackingUp
		h.diag("broker publish failed, writing batch to backup", err)
		h.backupLocked(batch)
	}
	h.state = StateIdle
}

// backupLocked appends a failed batch to the backup file. Backup write
// failures are reported through Diagnostics; by then there is nowhere left
// to put the records.
func (h *KafkaHandler) backupLocked(batch []Message) {
	lines := make([][]byte, len(batch))
	for i, m := range batch {
		lines[i] = m.Value
	}
	if err := AppendBackup(h.backupPath, lines); err != nil {
		h.diag("backup write failed, batch lost", err)
	}
}

// State returns the handler's current lifecycle state.
func (h *KafkaHandler) State() BatchState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Close implements Handler. The background flusher stops first; any partial
// batch then goes to the backup file rather than over the network, so
// shutdown never waits on an unreachable cluster.
func (h *KafkaHandler) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		if len(h.batch) > 0 {
			batch := h.batch
			h.batch = nil
			h.state = StateBackingUp
			h.backupLocked(batch)
		}
		h.state = StateIdle
		h.mu.Unlock()

		h.closeErr = h.pub.Close()
	})
	return h.closeErr
}
