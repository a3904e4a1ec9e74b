package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/agentic/internal/google"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/logging"
)

// listPageSize is the largest page the Tasks API accepts for task lists
const listPageSize = 100

// Client wraps the Google Tasks service
type Client struct {
	svc     *tasks.Service
	account string // The account this client is associated with
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithMetrics records Google API metrics for every call
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a new Tasks client with OAuth2 authentication for a specific account
func NewClientForAccountWithProvider(ctx context.Context, account string, conf *oauth2.Config, tokenProvider google.TokenProvider, opts ...Option) (*Client, error) {
	httpClient, err := google.HTTPClient(ctx, conf, tokenProvider, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client for account %s: %w", account, err)
	}

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return NewClientWithService(svc, account, opts...), nil
}

// NewClientWithService wraps an existing Tasks service
func NewClientWithService(svc *tasks.Service, account string, opts ...Option) *Client {
	c := &Client{
		svc:     svc,
		account: account,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithService(c.logger, instrumentation.ServiceTasks)
	return c
}

// CreateTask creates a task. A non-empty project selects the task list with
// that title, creating it when missing; otherwise the default list is used.
func (c *Client) CreateTask(ctx context.Context, title string, due *time.Time, project string) (*TaskRecord, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationCreate)
	defer span.End()

	project = strings.TrimSpace(project)
	listID := DefaultListID
	if project != "" {
		id, err := c.resolveList(ctx, project)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return nil, err
		}
		listID = id
	}

	t := &tasks.Task{Title: title}
	if due != nil {
		t.Due = due.Format(time.RFC3339)
	}

	began := time.Now()
	created, err := c.svc.Tasks.Insert(listID, t).Context(ctx).Do()
	c.record(ctx, instrumentation.OperationCreate, err, time.Since(began))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	record := toTaskRecord(created, listID, project)
	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("task created",
		slog.String("task_id", record.ID),
		slog.String("list_id", listID))
	return &record, nil
}

// resolveList returns the ID of the task list titled name, creating it when
// no list matches. Titles are compared case-insensitively.
func (c *Client) resolveList(ctx context.Context, name string) (string, error) {
	pageToken := ""
	for {
		call := c.svc.Tasklists.List().MaxResults(listPageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		began := time.Now()
		res, err := call.Do()
		c.record(ctx, instrumentation.OperationList, err, time.Since(began))
		if err != nil {
			return "", fmt.Errorf("failed to list task lists: %w", err)
		}

		for _, tl := range res.Items {
			if strings.EqualFold(strings.TrimSpace(tl.Title), name) {
				return tl.Id, nil
			}
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	began := time.Now()
	created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
	c.record(ctx, instrumentation.OperationCreate, err, time.Since(began))
	if err != nil {
		return "", fmt.Errorf("failed to create task list %q: %w", name, err)
	}

	c.logger.Info("created task list for project", slog.String("list_id", created.Id))
	return created.Id, nil
}

func (c *Client) record(ctx context.Context, operation string, err error, d time.Duration) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceTasks, operation, status, d)
}
