// Package assistant_tools provides MCP tools for the planning assistant.
//
// The tools expose each step of a request separately (planning, plan
// extraction, argument normalization, dispatch) as well as the whole
// pipeline through assistant_ask, and a read-only free slot lookup.
//
// In read-only mode assistant_ask and assistant_dispatch are not
// registered because both can create calendar events and tasks.
package assistant_tools
