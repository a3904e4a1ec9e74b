package planner

import (
	"strings"
	"time"
)

// Tool names produced by the planner
const (
	ToolCalendar = "calendar"
	ToolNone     = "none"
)

// Plan is a single tool invocation decided by the model
type Plan struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
	Reason string         `json:"reason,omitempty"`
}

// FromObject converts an extracted object into a Plan. A missing tool
// means "none", missing or non-object args become an empty map.
func FromObject(obj map[string]any) Plan {
	p := Plan{Tool: ToolNone, Args: map[string]any{}}

	if tool, ok := obj["tool"].(string); ok && strings.TrimSpace(tool) != "" {
		p.Tool = strings.ToLower(strings.TrimSpace(tool))
	}
	if args, ok := obj["args"].(map[string]any); ok {
		p.Args = args
	}
	if reason, ok := obj["reason"].(string); ok {
		p.Reason = reason
	}

	return p
}

// fallbackKeywords hint that the user is asking about their calendar
var fallbackKeywords = []string{
	"yarın",
	"hafta",
	"öğleden sonra",
	"takvim",
	"randevu",
	"blok",
	"tomorrow",
	"week",
	"afternoon",
	"calendar",
	"appointment",
	"schedule",
}

// Fallback returns the plan used when no structured command could be
// extracted. Calendar-ish requests get a free slot query for the coming
// week, anything else gets the explicit no-op.
func Fallback(userInput string, now time.Time) Plan {
	text := strings.ToLower(userInput)

	for _, kw := range fallbackKeywords {
		if !strings.Contains(text, kw) {
			continue
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 13, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), now.Day()+7, 18, 0, 0, 0, now.Location())
		return Plan{
			Tool: ToolCalendar,
			Args: map[string]any{
				"start_iso":   start.Format("2006-01-02T15:04"),
				"end_iso":     end.Format("2006-01-02T15:04"),
				"block_hours": 2,
			},
			Reason: "Heuristic fallback: request mentions the calendar.",
		}
	}

	return Plan{
		Tool:   ToolNone,
		Args:   map[string]any{},
		Reason: "Heuristic fallback: no tool.",
	}
}
