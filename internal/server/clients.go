package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/agentic/internal/calendar"
	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/gmail"
	"github.com/teemow/agentic/internal/google"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/interval"
	"github.com/teemow/agentic/internal/tasks"
)

// GoogleClients creates the Google API clients of an account on first use
// and caches them. Accounts without a stored token get
// google.ErrNotAuthorized until a token is saved, so the server does not
// need a restart after authorization.
type GoogleClients struct {
	ctx        context.Context
	conf       *oauth2.Config
	tokens     google.TokenProvider
	account    string
	calendarID string
	location   *time.Location
	metrics    *instrumentation.Metrics
	logger     *slog.Logger

	mu             sync.Mutex
	calendarClient map[string]*calendar.Client
	gmailClient    map[string]*gmail.Client
	tasksClient    map[string]*tasks.Client
}

// GoogleClientsConfig configures GoogleClients
type GoogleClientsConfig struct {
	OAuth   *oauth2.Config
	Tokens  google.TokenProvider
	Account string
	// CalendarID selects the calendar queried and written to. Empty means
	// the primary calendar.
	CalendarID string
	Location   *time.Location
	Metrics    *instrumentation.Metrics
	Logger     *slog.Logger
}

// NewGoogleClients creates an empty client cache. ctx bounds the lifetime
// of token refreshes.
func NewGoogleClients(ctx context.Context, cfg GoogleClientsConfig) *GoogleClients {
	account := cfg.Account
	if account == "" {
		account = google.DefaultAccount
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleClients{
		ctx:            ctx,
		conf:           cfg.OAuth,
		tokens:         cfg.Tokens,
		account:        account,
		calendarID:     cfg.CalendarID,
		location:       cfg.Location,
		metrics:        cfg.Metrics,
		logger:         logger,
		calendarClient: make(map[string]*calendar.Client),
		gmailClient:    make(map[string]*gmail.Client),
		tasksClient:    make(map[string]*tasks.Client),
	}
}

// Account returns the account used by the providers
func (g *GoogleClients) Account() string {
	return g.account
}

// Authorized reports whether a token is stored for the account
func (g *GoogleClients) Authorized() bool {
	return g.AuthorizedAccount(g.account)
}

// AuthorizedAccount reports whether a token is stored for account
func (g *GoogleClients) AuthorizedAccount(account string) bool {
	return g.tokens != nil && g.tokens.HasTokenForAccount(account)
}

// AuthURL returns the URL the user visits to grant access
func (g *GoogleClients) AuthURL(state string) (string, error) {
	if g.conf == nil {
		return "", config.ErrMissingGoogleCredentials
	}
	return google.AuthURL(g.conf, state), nil
}

// SaveAuthCode exchanges an authorization code and stores the token of
// account. Cached clients of the account are dropped so the next call uses
// the new token.
func (g *GoogleClients) SaveAuthCode(ctx context.Context, account, code string) error {
	if g.conf == nil {
		return config.ErrMissingGoogleCredentials
	}
	store, ok := g.tokens.(google.TokenStore)
	if !ok {
		return fmt.Errorf("token provider cannot store tokens")
	}

	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := store.SaveToken(account, token); err != nil {
		return err
	}

	g.mu.Lock()
	delete(g.calendarClient, account)
	delete(g.gmailClient, account)
	delete(g.tasksClient, account)
	g.mu.Unlock()

	g.logger.Info("google token saved", slog.String("account", account))
	return nil
}

func (g *GoogleClients) checkToken(account string) error {
	if g.conf == nil || g.tokens == nil || !g.tokens.HasTokenForAccount(account) {
		return fmt.Errorf("%w: %s", google.ErrNotAuthorized, google.AuthenticationErrorMessage(account))
	}
	return nil
}

// CalendarClientForAccount returns the cached Calendar client of account,
// creating it when a token exists
func (g *GoogleClients) CalendarClientForAccount(account string) (*calendar.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.calendarClient[account]; ok {
		return client, nil
	}
	if err := g.checkToken(account); err != nil {
		return nil, err
	}

	client, err := calendar.NewClientForAccountWithProvider(g.ctx, account, g.conf, g.tokens,
		calendar.WithLocation(g.location),
		calendar.WithCalendarID(g.calendarID),
		calendar.WithMetrics(g.metrics),
		calendar.WithLogger(g.logger))
	if err != nil {
		return nil, err
	}
	g.calendarClient[account] = client
	return client, nil
}

// GmailClientForAccount returns the cached Gmail client of account,
// creating it when a token exists
func (g *GoogleClients) GmailClientForAccount(account string) (*gmail.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.gmailClient[account]; ok {
		return client, nil
	}
	if err := g.checkToken(account); err != nil {
		return nil, err
	}

	client, err := gmail.NewClientForAccountWithProvider(g.ctx, account, g.conf, g.tokens,
		gmail.WithMetrics(g.metrics),
		gmail.WithLogger(g.logger))
	if err != nil {
		return nil, err
	}
	g.gmailClient[account] = client
	return client, nil
}

// TasksClientForAccount returns the cached Tasks client of account,
// creating it when a token exists
func (g *GoogleClients) TasksClientForAccount(account string) (*tasks.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.tasksClient[account]; ok {
		return client, nil
	}
	if err := g.checkToken(account); err != nil {
		return nil, err
	}

	client, err := tasks.NewClientForAccountWithProvider(g.ctx, account, g.conf, g.tokens,
		tasks.WithMetrics(g.metrics),
		tasks.WithLogger(g.logger))
	if err != nil {
		return nil, err
	}
	g.tasksClient[account] = client
	return client, nil
}

// SetCalendarClientForAccount caches an existing Calendar client
func (g *GoogleClients) SetCalendarClientForAccount(account string, client *calendar.Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calendarClient[account] = client
}

// SetGmailClientForAccount caches an existing Gmail client
func (g *GoogleClients) SetGmailClientForAccount(account string, client *gmail.Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gmailClient[account] = client
}

// SetTasksClientForAccount caches an existing Tasks client
func (g *GoogleClients) SetTasksClientForAccount(account string, client *tasks.Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tasksClient[account] = client
}

// CalendarProvider returns a provider bound to the configured account
func (g *GoogleClients) CalendarProvider() *CalendarProvider {
	return &CalendarProvider{clients: g}
}

// MailProvider returns a provider bound to the configured account
func (g *GoogleClients) MailProvider() *MailProvider {
	return &MailProvider{clients: g}
}

// TaskProvider returns a provider bound to the configured account
func (g *GoogleClients) TaskProvider() *TaskProvider {
	return &TaskProvider{clients: g}
}

// CalendarProvider resolves the Calendar client on every call
type CalendarProvider struct {
	clients *GoogleClients
}

func (p *CalendarProvider) FindBusy(ctx context.Context, start, end time.Time) ([]interval.Interval, error) {
	client, err := p.clients.CalendarClientForAccount(p.clients.account)
	if err != nil {
		return nil, err
	}
	return client.FindBusy(ctx, start, end)
}

func (p *CalendarProvider) CreateEvent(ctx context.Context, title string, start, end time.Time, zone string) (*calendar.EventRecord, error) {
	client, err := p.clients.CalendarClientForAccount(p.clients.account)
	if err != nil {
		return nil, err
	}
	return client.CreateEvent(ctx, title, start, end, zone)
}

// MailProvider resolves the Gmail client on every call
type MailProvider struct {
	clients *GoogleClients
}

func (p *MailProvider) ListRecentImportant(ctx context.Context, days, limit int) ([]gmail.Message, error) {
	client, err := p.clients.GmailClientForAccount(p.clients.account)
	if err != nil {
		return nil, err
	}
	return client.ListRecentImportant(ctx, days, limit)
}

// TaskProvider resolves the Tasks client on every call
type TaskProvider struct {
	clients *GoogleClients
}

func (p *TaskProvider) CreateTask(ctx context.Context, title string, due *time.Time, project string) (*tasks.TaskRecord, error) {
	client, err := p.clients.TasksClientForAccount(p.clients.account)
	if err != nil {
		return nil, err
	}
	return client.CreateTask(ctx, title, due, project)
}
