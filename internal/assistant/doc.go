// Package assistant runs a single request end to end: the planner picks at
// most one tool, the dispatcher runs it and the model writes a short
// Turkish answer from the tool output.
package assistant
