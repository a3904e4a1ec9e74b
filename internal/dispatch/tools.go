package dispatch

import (
	"errors"
	"strings"
)

// Tool names understood by the dispatcher
const (
	ToolCalendar = "calendar"
	ToolMail     = "mail"
	ToolTask     = "task"
	ToolNone     = "none"
)

// Calendar actions
const (
	ActionCreate = "create"
)

var (
	// ErrUnknownTool is returned by ParseArgs for names outside the tool set
	ErrUnknownTool = errors.New("unknown tool")

	// ErrProviderUnavailable is returned when the provider a tool needs is not configured
	ErrProviderUnavailable = errors.New("provider not configured")
)

// aliases maps alternative spellings models produce to canonical tool names
var aliases = map[string]string{
	"gmail": ToolMail,
	"email": ToolMail,
	"tasks": ToolTask,
	"todo":  ToolTask,
}

// CanonicalTool lowercases and trims name and resolves aliases.
// Unknown names are returned lowercased so callers can report them.
func CanonicalTool(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// IsActionable reports whether dispatching name calls a provider.
// "none" and unknown names are not actionable.
func IsActionable(name string) bool {
	switch CanonicalTool(name) {
	case ToolCalendar, ToolMail, ToolTask:
		return true
	}
	return false
}

// IsKnown reports whether name resolves to a tool of the tool set, "none" included
func IsKnown(name string) bool {
	return IsActionable(name) || CanonicalTool(name) == ToolNone
}
