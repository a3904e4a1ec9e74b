package instrumentation

import "strings"

// Cardinality management helpers for metrics.
//
// Tool names come straight from model output and may be anything. Recording
// them verbatim as label values would let a misbehaving model create an
// unbounded number of time series.

// knownTools are the tool names recorded as-is
var knownTools = map[string]bool{
	"calendar": true,
	"mail":     true,
	"task":     true,
	"none":     true,
}

// ToolLabel reduces a tool name to a bounded label value.
//
// Example:
//
//	ToolLabel("calendar")      // "calendar"
//	ToolLabel(" Mail ")        // "mail"
//	ToolLabel("rm -rf /")      // "unknown"
//	ToolLabel("")              // "unknown"
func ToolLabel(tool string) string {
	tool = strings.ToLower(strings.TrimSpace(tool))
	if knownTools[tool] {
		return tool
	}
	return ToolUnknown
}

// Common operation types for Google API metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationFreeBusy = "freebusy"
)
