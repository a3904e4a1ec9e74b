package google

import (
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
	tasks "google.golang.org/api/tasks/v1"
)

// DefaultOAuthScopes are the scopes the assistant asks for:
//   - Calendar: free/busy lookup and event creation
//   - Gmail: read-only metadata of recent messages
//   - Tasks: task and task list creation
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
	gmail.GmailReadonlyScope,
	tasks.TasksScope,
}
