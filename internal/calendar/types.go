package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// PrimaryCalendarID addresses the account's main calendar
const PrimaryCalendarID = "primary"

// EventRecord is the created-event payload returned to the caller.
// Start and End carry the event's dateTime strings as Google returned them.
type EventRecord struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
	Status   string `json:"status"`
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// toEventRecord converts a Google Calendar event to an EventRecord
func toEventRecord(event *calendar.Event) EventRecord {
	if event == nil {
		return EventRecord{}
	}

	record := EventRecord{
		ID:       event.Id,
		HTMLLink: event.HtmlLink,
		Status:   event.Status,
		Summary:  event.Summary,
	}
	if event.Start != nil {
		record.Start = firstNonEmpty(event.Start.DateTime, event.Start.Date)
	}
	if event.End != nil {
		record.End = firstNonEmpty(event.End.DateTime, event.End.Date)
	}
	return record
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseBusyTime parses a freebusy boundary into loc, truncated to the second
func parseBusyTime(s string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc).Truncate(time.Second), true
}
