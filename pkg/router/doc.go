// Package router implements a structured log routing pipeline: named loggers
// dispatch records to console, rotating-file and Kafka sinks based on
// severity thresholds, optional CEL filters, and propagation through the
// dotted-name logger hierarchy.
//
// # Overview
//
// A Record is built once at the emit site (timestamp, severity, source
// module/function/line, message, sortable ID) and never mutated. The Router
// gates it by the logger's minimum level, then by each bound handler's own
// level and filter, and finally hands the formatted bytes to the sink. With
// propagation enabled the record climbs to the parent logger and repeats.
//
// Quick start
//
//	file, _ := router.NewFileHandler("/var/log/app.log",
//	    router.DebugLevel, &router.VerboseFormatter{}, router.Filter{}, nil)
//	r := router.New(
//	    router.WithLogger("root", router.InfoLevel, false,
//	        router.NewConsoleHandler(router.InfoLevel, router.SimpleFormatter{}, router.Filter{}, nil)),
//	    router.WithLogger("api", router.DebugLevel, true, file),
//	)
//	defer r.Close()
//	r.Logger("api.auth").Info("session opened")
//
// # Failure policy
//
// Console delivery is best effort. File I/O errors are fatal and surface to
// the emitting caller. Broker trouble never does: failed or timed-out
// publishes fall open to a local newline-delimited backup file, which the
// replay tooling can later push back to the cluster.
//
// # Sinks
//
// ConsoleHandler writes to stdout, switching to stderr at a configurable
// severity. FileHandler rotates by size with numeric backup suffixes and
// optional gzip compression. KafkaHandler batches records (default 100) and
// publishes them keyed by the record ID, with a bounded publish timeout.
package router
