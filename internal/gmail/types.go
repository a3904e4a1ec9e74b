package gmail

import (
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// NoSubject replaces a missing Subject header
const NoSubject = "(no subject)"

// Message is a recent mail as presented to the assistant.
// Date is the raw Date header; Received is internalDate in UTC.
type Message struct {
	ID         string `json:"id"`
	ThreadID   string `json:"threadId"`
	Subject    string `json:"subject"`
	From       string `json:"from"`
	Date       string `json:"date"`
	Received   string `json:"received"`
	Snippet    string `json:"snippet"`
	InternalTS int64  `json:"internal_ts"`
}

// HeaderValue extracts a header value from a Gmail message. Header names
// are compared case-insensitively.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, mph := range m.Payload.Headers {
		if strings.EqualFold(mph.Name, header) {
			return mph.Value
		}
	}
	return ""
}
