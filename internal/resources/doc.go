// Package resources provides MCP resources that expose the assistant's
// configuration. Resources are read-only: clients fetch them to learn the
// timezone, work window and account the planning tools operate with.
package resources
