// Package cmd implements the command-line interface for agentic.
//
// This package provides the following commands:
//   - ask: Plan a request, run at most one tool and print the answer
//   - slots: List free calendar blocks inside the work window
//   - extract: Extract a tool plan from model output
//   - normalize: Normalize the time arguments of a tool plan
//   - auth: Authorize a Google account (url, save, status)
//   - serve: Start the MCP server on stdio
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Configuration is loaded through viper from agentic.yaml, AGENTIC_*
// environment variables and the persistent flags of the root command.
package cmd
