package dispatch

import (
	"encoding/json"

	"github.com/teemow/agentic/internal/availability"
	"github.com/teemow/agentic/internal/calendar"
	"github.com/teemow/agentic/internal/gmail"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/tasks"
)

// Outcome classifies a dispatch
type Outcome string

const (
	// OutcomeOK means the tool ran and produced a payload
	OutcomeOK Outcome = instrumentation.OutcomeOK

	// OutcomeNone means the plan asked for no tool
	OutcomeNone Outcome = instrumentation.OutcomeNone

	// OutcomeWarning means the tool name was not recognized
	OutcomeWarning Outcome = instrumentation.OutcomeWarning

	// OutcomeError means validation or the provider failed
	OutcomeError Outcome = instrumentation.OutcomeError
)

// Result is the outcome of one dispatch. Exactly one payload field is set
// for OutcomeOK; Warning or Error carry the message otherwise.
type Result struct {
	Tool    string
	Outcome Outcome

	Created   *calendar.EventRecord
	FreeSlots []availability.Slot
	Emails    []gmail.Message
	Task      *tasks.TaskRecord

	Warning string
	Error   string

	// Args echoes the arguments the dispatch was called with
	Args map[string]any
}

// Failed reports whether the dispatch ended in an error payload
func (r Result) Failed() bool {
	return r.Outcome == OutcomeError
}

type errorPayload struct {
	Error string         `json:"error"`
	Tool  string         `json:"tool"`
	Args  map[string]any `json:"args"`
}

type warningPayload struct {
	Warning string         `json:"warning"`
	Args    map[string]any `json:"args"`
}

// MarshalJSON renders the result in the shape of its outcome:
//
//	{"created": {...}}        calendar create
//	{"free_slots": [...]}     calendar query
//	{"emails": [...]}         mail
//	{"task": {...}}           task
//	{"error", "tool", "args"} any failure
//	{"warning", "args"}       unknown tool
//	null                      none
func (r Result) MarshalJSON() ([]byte, error) {
	args := r.Args
	if args == nil {
		args = map[string]any{}
	}

	switch r.Outcome {
	case OutcomeError:
		return json.Marshal(errorPayload{Error: r.Error, Tool: r.Tool, Args: args})
	case OutcomeWarning:
		return json.Marshal(warningPayload{Warning: r.Warning, Args: args})
	case OutcomeNone:
		return []byte("null"), nil
	}

	switch {
	case r.Created != nil:
		return json.Marshal(map[string]any{"created": r.Created})
	case r.Task != nil:
		return json.Marshal(map[string]any{"task": r.Task})
	case CanonicalTool(r.Tool) == ToolMail:
		emails := r.Emails
		if emails == nil {
			emails = []gmail.Message{}
		}
		return json.Marshal(map[string]any{"emails": emails})
	default:
		slots := r.FreeSlots
		if slots == nil {
			slots = []availability.Slot{}
		}
		return json.Marshal(map[string]any{"free_slots": slots})
	}
}
