package tasks

import (
	tasks "google.golang.org/api/tasks/v1"
)

// DefaultListID addresses the account's default task list
const DefaultListID = "@default"

// TaskRecord is the created-task payload returned to the caller
type TaskRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status,omitempty"`
	Due     string `json:"due,omitempty"`
	ListID  string `json:"list_id"`
	Project string `json:"project,omitempty"`
	Link    string `json:"link,omitempty"`
}

// toTaskRecord converts a Google Tasks task created in listID
func toTaskRecord(t *tasks.Task, listID, project string) TaskRecord {
	if t == nil {
		return TaskRecord{ListID: listID, Project: project}
	}
	return TaskRecord{
		ID:      t.Id,
		Title:   t.Title,
		Status:  t.Status,
		Due:     t.Due,
		ListID:  listID,
		Project: project,
		Link:    t.WebViewLink,
	}
}
