// Package config provides loading, environment overlay and construction of
// the log routing document. It exposes a Default() baseline, file loading for
// YAML and JSON, and Build to turn a document into a wired Router with every
// name resolved up front.
//
// Example:
//
//	cfg, err := config.Load("/etc/logroute.yaml")
//	if err != nil {
//	    // malformed document: fatal at startup
//	}
//	config.FromEnv(&cfg)
//	r, err := config.Build(cfg)
//	if err != nil {
//	    // dangling handler/formatter reference or bad filter: fatal at startup
//	}
//	defer r.Close()
//	r.Logger("api").Info("configured and routing")
package config
