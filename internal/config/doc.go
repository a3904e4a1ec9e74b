// Package config loads the application settings from an optional
// agentic.yaml, AGENTIC_* environment variables and command line flags.
//
// Flags are bound by the cmd package; their values win over the
// environment, which wins over the file.
package config
