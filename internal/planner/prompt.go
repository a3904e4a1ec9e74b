package planner

import (
	"fmt"
	"time"
)

const systemPrompt = `You are a planning assistant for a single-tool agent.
Your ONLY job is to decide whether to call exactly one tool and with what minimal arguments.

Output rules (VERY IMPORTANT):
- Output EXACTLY ONE valid JSON object.
- No backticks, no markdown, no labels, no prefixes/suffixes, no extra text.
- Keys: "tool", "args", "reason".
- "tool" is one of "calendar", "mail", "task", "none".
- Keep "args" minimal. Use ISO 8601 for times (include minutes, seconds optional, timezone preferred).
- "reason" must be concise English and placed outside "args".
- Prefer future times (do not schedule in the past).
- If the user says "yarın"/"tomorrow", resolve it as the next calendar day from today's date (context provided).
- If the user gives both a relative date (tomorrow) and a weekday (Friday), prioritize the relative date.

Good examples:
{"tool":"calendar","args":{"start_iso":"2025-08-20T12:00","end_iso":"2025-08-27T18:00","block_hours":2},"reason":"User wants free afternoon 2-hour blocks next week."}
{"tool":"calendar","args":{"action":"create","title":"Design Review","start_iso":"2025-08-22T15:00","end_iso":"2025-08-22T17:00"},"reason":"User asked to add a meeting at a specific time."}
{"tool":"mail","args":{"days":7,"limit":5},"reason":"User asked to summarize important emails from last week."}
{"tool":"task","args":{"title":"Prepare demo","due":"2025-08-22T10:00","project":"AI-Assistant"},"reason":"User wants to create a task for Friday 10am."}
{"tool":"none","args":{},"reason":"No external data needed."}`

const promptTemplate = `%s

Context:
- Today (local): %s (%s)
- Current time: %s
- Timezone: %s

User request (Turkish may appear):
%s

Return ONLY ONE JSON object on a single line as specified above. Nothing else.
`

// strictSuffix is appended when the first answer contained no JSON object
const strictSuffix = "\nOutput must be ONLY one JSON object. No explanations."

// BuildPrompt renders the planning prompt with the current date context
func BuildPrompt(userInput string, now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return fmt.Sprintf(promptTemplate,
		systemPrompt,
		now.Format("2006-01-02"),
		now.Weekday().String(),
		now.Format("15:04"),
		now.Location().String(),
		userInput,
	)
}
