// Package logger builds slog loggers and provides nil-safe attribute helpers.
//
// Create a logger with presets and overrides:
//
//	log := logger.New(
//		logger.WithProduction("pointersync"),
//		logger.WithLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL"))),
//	)
//
// Attribute helpers return an empty slog.Attr for zero inputs, so they can be
// passed unconditionally:
//
//	log.Warn("delivery failed",
//		logger.ConnectionID(id),
//		logger.Error(err), // dropped when err == nil
//	)
package logger
