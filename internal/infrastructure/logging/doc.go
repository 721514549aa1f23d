// Package logging provides structured logging for the Gray Logic toolkit.
//
// It wraps log/slog. Every record carries the service name and build
// version, and records logged with a context that holds an active
// OpenTelemetry span also carry trace_id and span_id so logs and traces
// can be joined.
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.InfoContext(ctx, "setting changed", "id", id)
//
// Never log secrets, tokens or passwords.
package logging
