// Package replay exposes a shared Run entrypoint used by the CLI to drain a
// broker backup file back into Kafka after an outage.
//
// Example:
//
//	opts := replay.Options{BackupPath: "/var/log/logroute/broker-backup.log", Brokers: []string{"localhost:9092"}, Topic: "logs", Truncate: true}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = replay.Run(ctx, opts)
package replay
