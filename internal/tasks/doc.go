// Package tasks provides a client for creating Google Tasks.
//
// CreateTask files a task into the default list, or into the list named
// after the task's project. Missing project lists are created on demand.
//
// # Authentication
//
// The client uses the same OAuth2 token files as the calendar and gmail
// packages. Run "agentic auth url" to authorize an account.
//
// # Example Usage
//
//	client, err := tasks.NewClientForAccountWithProvider(ctx, "default", conf, provider)
//	if err != nil {
//	    return err
//	}
//	due := time.Now().AddDate(0, 0, 7)
//	task, err := client.CreateTask(ctx, "Submit report", &due, "Work")
package tasks
