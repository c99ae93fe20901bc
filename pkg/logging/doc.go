// Package logging provides structured logging utilities for capmon.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// for consistent diagnostics. It supports environment-based log level
// configuration, module/version context injection, and automatic source
// location tracking for debug logs.
//
// Diagnostics go to stderr as JSON. The human-readable per-tick progress
// notice is not a log line; the sampling loop prints it to stdout.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-tick details with source location
//   - INFO: lifecycle messages (default)
//   - WARN/WARNING: recoverable failures such as kernel log fetch errors
//   - ERROR: fatal probe or sink failures
//
// # Usage
//
//	logging.SetDefaultStructuredLoggerWithLevel("capmon", version, cmd.String("log-level"))
//	slog.Info("sampler starting", "output", path)
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable feeds the --log-level flag:
//
//	LOG_LEVEL=debug capmon
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "sampler starting",
//	    "module": "capmon",
//	    "version": "v1.0.0",
//	    "output": "cheri_memory_anomalies.csv"
//	}
package logging
