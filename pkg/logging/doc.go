// Package logging provides structured logging configuration for mph.
//
// This package wraps log/slog so every component of the host (the backend
// registry, each backend, each mounted sub-application) logs through the same
// handler with consistent attributes.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "addr", ":5000")
//	logging.ForBackend(logger, "docs").Warn("projects directory unreadable", "error", err)
//
// # Scoped loggers
//
// ForBackend and ForProject attach the "backend" and "project" attributes.
// Backends log through ForBackend; a mounted sub-application receives a
// ForProject logger that also carries its namespace.
//
// # Output Formats
//
//   - Text: Human-readable format for development
//   - JSON: Structured format for log aggregation systems
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop().
package logging
