package replay

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rzbill/logroute/pkg/router"
)

// DefaultBatchSize bounds how many backed-up lines are published per call.
const DefaultBatchSize = 100

type Options struct {
	BackupPath string
	Brokers    []string
	Topic      string
	BatchSize  int
	// Truncate empties the backup file after every line has been
	// published. Left false, the file is kept for a second attempt.
	Truncate bool

	// Publisher overrides the Kafka publisher; used by tests.
	Publisher router.Publisher
}

// Run drains a broker backup file, re-publishing its lines to the topic in
// the order they were written. Lines keep their original record IDs as
// message keys when they parse as verbose records; lines that don't parse
// are published with an empty key rather than dropped.
func Run(ctx context.Context, opts Options) error {
	if opts.BackupPath == "" {
		return fmt.Errorf("replay: backup path required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	pub := opts.Publisher
	if pub == nil {
		if len(opts.Brokers) == 0 || opts.Topic == "" {
			return fmt.Errorf("replay: brokers and topic required")
		}
		pub = router.NewKafkaPublisher(opts.Brokers, opts.Topic)
		defer pub.Close()
	}

	lines, err := router.ReadBackup(opts.BackupPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("replay: read %s: %w", opts.BackupPath, err)
	}
	if len(lines) == 0 {
		return nil
	}

	batch := make([]router.Message, 0, opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := pub.Publish(ctx, batch); err != nil {
			return fmt.Errorf("replay: publish: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for _, line := range lines {
		batch = append(batch, router.Message{Key: messageKey(line), Value: line})
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if opts.Truncate {
		if err := os.Truncate(opts.BackupPath, 0); err != nil {
			return fmt.Errorf("replay: truncate %s: %w", opts.BackupPath, err)
		}
	}
	return nil
}

// messageKey recovers the record ID from a verbose line so replayed
// messages land on the same partition as the originals.
func messageKey(line []byte) []byte {
	rec, err := router.ParseVerbose(line)
	if err != nil || rec.ID.IsZero() {
		return nil
	}
	return rec.ID[:]
}
