package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account used when none is given
const DefaultAccount = "default"

// OOBRedirectURL makes Google show the authorization code to the user
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// ErrNotAuthorized is returned when no token is stored for an account
var ErrNotAuthorized = errors.New("google not authorized")

// accountNamePattern allows letters, digits, hyphens and underscores
var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// OAuthConfig holds the client credentials of the installed application
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewOAuthConfig returns the OAuth2 configuration for the calendar, mail and
// task APIs used by the assistant
func NewOAuthConfig(cfg OAuthConfig) *oauth2.Config {
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = OOBRedirectURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       DefaultOAuthScopes,
	}
}

// AuthURL returns the URL the user visits to grant access
func AuthURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// DefaultTokenDir returns the per-user directory token files are kept in
func DefaultTokenDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "agentic")
}

// validateAccountName ensures account names are safe to use in file paths
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

// AuthenticationErrorMessage tells the user how to authorize an account
func AuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Google OAuth token not found for account %q. "+
		"Run 'agentic auth url --account %s' and then 'agentic auth save --account %s <code>'.",
		account, account, account)
}

// HTTPClient returns an HTTP client authorized for account. Refreshed tokens
// are written back through the provider when it can store them.
func HTTPClient(ctx context.Context, conf *oauth2.Config, provider TokenProvider, account string) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	var ts oauth2.TokenSource = conf.TokenSource(ctx, token)
	if store, ok := provider.(TokenStore); ok {
		ts = &persistingTokenSource{base: ts, store: store, account: account, last: token.AccessToken}
	}

	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, ts))

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}

	return client, nil
}

// persistingTokenSource saves tokens whenever the access token changes
type persistingTokenSource struct {
	base    oauth2.TokenSource
	store   TokenStore
	account string
	last    string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != p.last {
		if err := p.store.SaveToken(p.account, token); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		p.last = token.AccessToken
	}
	return token, nil
}
