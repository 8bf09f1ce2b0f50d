// Package logging builds the process logger.
//
// Logs are written with log/slog in JSON (default) or text format. The
// minimum level and optional source locations come from the telemetry
// configuration:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//	slog.SetDefault(logger)
//
// Request-scoped fields such as the request ID travel in the context and are
// attached with FromContext.
package logging
