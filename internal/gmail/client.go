package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/agentic/internal/google"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/logging"
)

const (
	// maxListResults caps the search page regardless of the requested limit
	maxListResults = 50

	// fetchConcurrency bounds parallel metadata requests
	fetchConcurrency = 5

	userID = "me"
)

// metadataHeaders are the headers requested for every message
var metadataHeaders = []string{"Subject", "From", "Date"}

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
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

// NewClientForAccountWithProvider creates a new Gmail client with OAuth2 authentication for a specific account
func NewClientForAccountWithProvider(ctx context.Context, account string, conf *oauth2.Config, tokenProvider google.TokenProvider, opts ...Option) (*Client, error) {
	httpClient, err := google.HTTPClient(ctx, conf, tokenProvider, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return NewClientWithService(svc, account, opts...), nil
}

// NewClientWithService wraps an existing Gmail service
func NewClientWithService(svc *gmail.Service, account string, opts ...Option) *Client {
	c := &Client{
		svc:     svc.Users,
		account: account,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithService(c.logger, instrumentation.ServiceGmail)
	return c
}

// RecentQuery returns the search query for primary mail of the last days
func RecentQuery(days int) string {
	return fmt.Sprintf("newer_than:%dd -category:promotions -category:social", days)
}

// ListRecentImportant returns up to limit messages of the last days, skipping
// promotions and social mail, newest first.
func (c *Client) ListRecentImportant(ctx context.Context, days, limit int) ([]Message, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, instrumentation.OperationList)
	defer span.End()

	if limit <= 0 {
		return []Message{}, nil
	}

	pageSize := int64(limit) * 3
	if pageSize > maxListResults {
		pageSize = maxListResults
	}

	began := time.Now()
	res, err := c.svc.Messages.List(userID).Q(RecentQuery(days)).MaxResults(pageSize).Context(ctx).Do()
	c.record(ctx, instrumentation.OperationList, err, time.Since(began))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	refs := res.Messages
	if len(refs) > limit {
		refs = refs[:limit]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	messages := make([]Message, len(refs))
	for i, ref := range refs {
		g.Go(func() error {
			m, err := c.getMetadata(gctx, ref.Id)
			if err != nil {
				return err
			}
			messages[i] = toMessage(m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].InternalTS > messages[j].InternalTS
	})

	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("listed recent mail",
		slog.Int("days", days),
		slog.Int("count", len(messages)))
	return messages, nil
}

func (c *Client) getMetadata(ctx context.Context, id string) (*gmail.Message, error) {
	began := time.Now()
	m, err := c.svc.Messages.Get(userID, id).
		Format("metadata").
		MetadataHeaders(metadataHeaders...).
		Context(ctx).
		Do()
	c.record(ctx, instrumentation.OperationGet, err, time.Since(began))
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return m, nil
}

// toMessage converts a metadata-format Gmail message
func toMessage(m *gmail.Message) Message {
	subject := HeaderValue(m, "Subject")
	if subject == "" {
		subject = NoSubject
	}
	return Message{
		ID:         m.Id,
		ThreadID:   m.ThreadId,
		Subject:    subject,
		From:       HeaderValue(m, "From"),
		Date:       HeaderValue(m, "Date"),
		Received:   time.UnixMilli(m.InternalDate).UTC().Format(time.RFC3339),
		Snippet:    strings.TrimSpace(m.Snippet),
		InternalTS: m.InternalDate,
	}
}

func (c *Client) record(ctx context.Context, operation string, err error, d time.Duration) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, operation, status, d)
}
