package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid work", "work", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenPath(t *testing.T) {
	p := NewFileTokenProvider(t.TempDir())

	got, err := p.tokenPath("work")
	if err != nil {
		t.Fatalf("tokenPath() error = %v", err)
	}
	if filepath.Base(got) != "google-work.token" {
		t.Errorf("tokenPath() = %v, want base google-work.token", got)
	}

	if _, err := p.tokenPath("../etc"); err == nil {
		t.Error("tokenPath() should reject path traversal")
	}
}

func TestFileTokenProvider_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	p := NewFileTokenProvider(dir)

	if p.HasTokenForAccount(DefaultAccount) {
		t.Fatal("HasTokenForAccount() should be false before saving")
	}

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := p.SaveToken(DefaultAccount, token); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	if !p.HasTokenForAccount(DefaultAccount) {
		t.Error("HasTokenForAccount() should be true after saving")
	}

	info, err := os.Stat(filepath.Join(dir, "google-default.token"))
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := p.GetTokenForAccount(context.Background(), DefaultAccount)
	if err != nil {
		t.Fatalf("GetTokenForAccount() error = %v", err)
	}
	if got.RefreshToken != "refresh" || got.AccessToken != "access" {
		t.Errorf("GetTokenForAccount() = %+v", got)
	}
	if !got.Expiry.Equal(token.Expiry) {
		t.Errorf("expiry = %v, want %v", got.Expiry, token.Expiry)
	}
}

func TestFileTokenProvider_Missing(t *testing.T) {
	p := NewFileTokenProvider(t.TempDir())

	_, err := p.GetTokenForAccount(context.Background(), "work")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("GetTokenForAccount() error = %v, want ErrNotAuthorized", err)
	}
	if !strings.Contains(err.Error(), "agentic auth url") {
		t.Errorf("error should explain how to authorize, got %q", err.Error())
	}
}

func TestFileTokenProvider_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "google-default.token"), []byte("access refresh"), 0600); err != nil {
		t.Fatal(err)
	}

	p := NewFileTokenProvider(dir)
	if _, err := p.GetTokenForAccount(context.Background(), DefaultAccount); err == nil {
		t.Error("GetTokenForAccount() should fail on a corrupt token file")
	}
}

func TestAuthenticationErrorMessage(t *testing.T) {
	for _, account := range []string{"default", "work", "personal"} {
		msg := AuthenticationErrorMessage(account)
		if !strings.Contains(msg, account) {
			t.Errorf("AuthenticationErrorMessage() should mention account %s", account)
		}
		if !strings.Contains(msg, "OAuth") {
			t.Error("AuthenticationErrorMessage() should mention OAuth")
		}
	}
}

func TestNewOAuthConfig(t *testing.T) {
	conf := NewOAuthConfig(OAuthConfig{ClientID: "client-id", ClientSecret: "secret"})

	if conf.RedirectURL != OOBRedirectURL {
		t.Errorf("RedirectURL = %q, want %q", conf.RedirectURL, OOBRedirectURL)
	}
	if len(conf.Scopes) != len(DefaultOAuthScopes) {
		t.Errorf("Scopes = %v, want %v", conf.Scopes, DefaultOAuthScopes)
	}

	url := AuthURL(conf, "state-123")
	for _, want := range []string{"client_id=client-id", "access_type=offline", "state=state-123"} {
		if !strings.Contains(url, want) {
			t.Errorf("AuthURL() = %q, missing %q", url, want)
		}
	}
}

func TestHTTPClient(t *testing.T) {
	p := NewFileTokenProvider(t.TempDir())
	conf := NewOAuthConfig(OAuthConfig{ClientID: "id", ClientSecret: "secret"})

	if _, err := HTTPClient(context.Background(), conf, p, DefaultAccount); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("HTTPClient() error = %v, want ErrNotAuthorized", err)
	}

	token := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}
	if err := p.SaveToken(DefaultAccount, token); err != nil {
		t.Fatal(err)
	}

	client, err := HTTPClient(context.Background(), conf, p, DefaultAccount)
	if err != nil {
		t.Fatalf("HTTPClient() error = %v", err)
	}
	if client == nil {
		t.Fatal("HTTPClient() returned nil client")
	}

	if _, err := HTTPClient(context.Background(), conf, nil, DefaultAccount); err == nil {
		t.Error("HTTPClient() should reject a nil provider")
	}
}

type memoryStore struct {
	saved map[string]*oauth2.Token
}

func (m *memoryStore) GetTokenForAccount(context.Context, string) (*oauth2.Token, error) {
	return nil, ErrNotAuthorized
}

func (m *memoryStore) HasTokenForAccount(string) bool { return false }

func (m *memoryStore) SaveToken(account string, token *oauth2.Token) error {
	m.saved[account] = token
	return nil
}

type staticSource struct{ token *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.token, nil }

func TestPersistingTokenSource(t *testing.T) {
	store := &memoryStore{saved: map[string]*oauth2.Token{}}

	ts := &persistingTokenSource{
		base:    staticSource{token: &oauth2.Token{AccessToken: "old"}},
		store:   store,
		account: "work",
		last:    "old",
	}
	if _, err := ts.Token(); err != nil {
		t.Fatal(err)
	}
	if len(store.saved) != 0 {
		t.Error("unchanged token should not be saved")
	}

	ts.base = staticSource{token: &oauth2.Token{AccessToken: "new"}}
	if _, err := ts.Token(); err != nil {
		t.Fatal(err)
	}
	if store.saved["work"] == nil || store.saved["work"].AccessToken != "new" {
		t.Error("refreshed token should be saved")
	}
}
