package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/agentic/internal/google"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/interval"
	"github.com/teemow/agentic/internal/logging"
)

// Client wraps the Google Calendar service
type Client struct {
	svc        *calendar.Service
	account    string // The account this client is associated with
	calendarID string
	location   *time.Location
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLocation sets the zone busy intervals are reported in
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithCalendarID targets a calendar other than the primary one
func WithCalendarID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.calendarID = id
		}
	}
}

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

// CalendarID returns the calendar this client queries and writes to
func (c *Client) CalendarID() string {
	return c.calendarID
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2 authentication for a specific account.
// The OAuth token is retrieved from the provided token provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, conf *oauth2.Config, tokenProvider google.TokenProvider, opts ...Option) (*Client, error) {
	httpClient, err := google.HTTPClient(ctx, conf, tokenProvider, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client for account %s: %w", account, err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return NewClientWithService(svc, account, opts...), nil
}

// NewClientWithService wraps an existing Calendar service
func NewClientWithService(svc *calendar.Service, account string, opts ...Option) *Client {
	c := &Client{
		svc:        svc,
		account:    account,
		calendarID: PrimaryCalendarID,
		location:   time.UTC,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithService(c.logger, instrumentation.ServiceCalendar)
	return c
}

// FindBusy returns the busy intervals of the calendar intersecting [start, end].
// Boundaries are converted to the client's zone and truncated to the second;
// intervals that are empty after conversion are dropped.
func (c *Client) FindBusy(ctx context.Context, start, end time.Time) ([]interval.Interval, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationFreeBusy)
	defer span.End()

	query := &calendar.FreeBusyRequest{
		TimeMin:  start.Format(time.RFC3339),
		TimeMax:  end.Format(time.RFC3339),
		TimeZone: c.location.String(),
		Items:    []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	began := time.Now()
	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	c.record(ctx, instrumentation.OperationFreeBusy, err, time.Since(began))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[c.calendarID]
	if !ok {
		return []interval.Interval{}, nil
	}
	for _, e := range cal.Errors {
		c.logger.Warn("freebusy reported calendar error",
			slog.String("calendar", c.calendarID),
			slog.String("reason", e.Reason))
	}

	busy := make([]interval.Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		s, okStart := parseBusyTime(period.Start, c.location)
		e, okEnd := parseBusyTime(period.End, c.location)
		if !okStart || !okEnd {
			continue
		}
		busy = append(busy, interval.Interval{Start: s, End: e})
	}

	instrumentation.SetSpanSuccess(span)
	return interval.Filter(busy), nil
}

// CreateEvent inserts an event into the calendar. An empty zone falls back to
// the client's zone.
func (c *Client) CreateEvent(ctx context.Context, title string, start, end time.Time, zone string) (*EventRecord, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate)
	defer span.End()

	if zone == "" {
		zone = c.location.String()
	}

	event := &calendar.Event{
		Summary: title,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: zone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: zone,
		},
	}

	began := time.Now()
	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	c.record(ctx, instrumentation.OperationCreate, err, time.Since(began))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	record := toEventRecord(created)
	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("event created", slog.String("event_id", record.ID))
	return &record, nil
}

func (c *Client) record(ctx context.Context, operation string, err error, d time.Duration) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, d)
}
