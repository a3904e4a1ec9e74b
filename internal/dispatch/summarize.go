package dispatch

import (
	"fmt"
	"strings"

	"github.com/teemow/agentic/internal/gmail"
	"github.com/teemow/agentic/internal/temporal"
)

// Summary lines used when a result carries nothing to list
const (
	NoOutputSummary = "Herhangi bir araç çıktısı yok."
	NoSlotsSummary  = "Uygun boş zaman bulunamadı."
	NoEmailsSummary = "Yeni e-posta yok."
)

// Summarize renders a result as short plain text for display or as
// context for a final answer.
func Summarize(r Result) string {
	switch r.Outcome {
	case OutcomeNone, "":
		return NoOutputSummary
	case OutcomeWarning:
		return r.Warning
	case OutcomeError:
		return fmt.Sprintf("Hata (%s): %s", r.Tool, r.Error)
	}

	switch {
	case r.Created != nil:
		summary := r.Created.Summary
		if summary == "" {
			summary = "Etkinlik"
		}
		return fmt.Sprintf("Oluşturuldu: %s (%s → %s)", summary, r.Created.Start, r.Created.End)

	case r.Task != nil:
		line := "Task: " + r.Task.Title
		if r.Task.Due != "" {
			line += " (due " + r.Task.Due + ")"
		}
		if r.Task.Project != "" {
			line += " [" + r.Task.Project + "]"
		}
		return line

	case CanonicalTool(r.Tool) == ToolMail:
		if len(r.Emails) == 0 {
			return NoEmailsSummary
		}
		lines := make([]string, 0, len(r.Emails))
		for _, m := range r.Emails {
			subject := strings.TrimSpace(m.Subject)
			if subject == "" {
				subject = gmail.NoSubject
			}
			lines = append(lines, "- "+subject)
		}
		return strings.Join(lines, "\n")

	default:
		if len(r.FreeSlots) == 0 {
			return NoSlotsSummary
		}
		lines := make([]string, 0, len(r.FreeSlots))
		for _, s := range r.FreeSlots {
			lines = append(lines, fmt.Sprintf("- %s → %s",
				temporal.FormatInstant(s.Start), temporal.FormatInstant(s.End)))
		}
		return strings.Join(lines, "\n")
	}
}
