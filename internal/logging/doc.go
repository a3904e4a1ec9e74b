// Package logging provides structured logging utilities for the agentic assistant.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "availability.free_slots")
//	logger.Info("computed slots",
//	    logging.Status("success"))
//
// User requests are fingerprinted rather than logged verbatim:
//
//	logger.Info("planning request",
//	    logging.InputHash(input))
//
// # Output
//
// New writes to stderr by default. Stdout is reserved for the MCP stdio
// transport and for command output.
package logging
