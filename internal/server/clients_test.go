package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/google"
)

type memStore struct {
	mu     sync.Mutex
	tokens map[string]*oauth2.Token
}

func (m *memStore) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[account]
	if !ok {
		return nil, errors.New("no token")
	}
	return token, nil
}

func (m *memStore) HasTokenForAccount(account string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[account]
	return ok
}

func (m *memStore) SaveToken(account string, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[account] = token
	return nil
}

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleClients_SaveAuthCode(t *testing.T) {
	srv := newTokenServer(t)
	store := &memStore{tokens: map[string]*oauth2.Token{}}

	conf := google.NewOAuthConfig(google.OAuthConfig{ClientID: "id", ClientSecret: "secret"})
	conf.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}

	clients := NewGoogleClients(context.Background(), GoogleClientsConfig{
		OAuth:  conf,
		Tokens: store,
	})
	assert.False(t, clients.Authorized())

	authURL, err := clients.AuthURL("state-1")
	require.NoError(t, err)
	assert.Contains(t, authURL, srv.URL+"/auth")
	assert.Contains(t, authURL, "state=state-1")
	assert.Contains(t, authURL, "access_type=offline")

	err = clients.SaveAuthCode(context.Background(), google.DefaultAccount, "bad-code")
	assert.Error(t, err)
	assert.False(t, clients.Authorized())

	require.NoError(t, clients.SaveAuthCode(context.Background(), google.DefaultAccount, "good-code"))
	assert.True(t, clients.Authorized())
	assert.Equal(t, "refresh-1", store.tokens[google.DefaultAccount].RefreshToken)

	_, err = clients.TasksClientForAccount(google.DefaultAccount)
	assert.NoError(t, err, "a saved token is used without a restart")
}

func TestGoogleClients_WithoutOAuthClient(t *testing.T) {
	clients := NewGoogleClients(context.Background(), GoogleClientsConfig{
		Tokens: &memStore{tokens: map[string]*oauth2.Token{}},
	})

	_, err := clients.AuthURL("s")
	assert.ErrorIs(t, err, config.ErrMissingGoogleCredentials)
	assert.ErrorIs(t, clients.SaveAuthCode(context.Background(), "default", "code"), config.ErrMissingGoogleCredentials)
}

func TestGoogleClients_ReadOnlyTokens(t *testing.T) {
	conf := google.NewOAuthConfig(google.OAuthConfig{ClientID: "id", ClientSecret: "secret"})
	clients := NewGoogleClients(context.Background(), GoogleClientsConfig{
		OAuth:  conf,
		Tokens: memTokens{accounts: map[string]bool{}},
	})

	err := clients.SaveAuthCode(context.Background(), "default", "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot store tokens")
}

func TestGoogleClients_CalendarID(t *testing.T) {
	conf := google.NewOAuthConfig(google.OAuthConfig{ClientID: "id", ClientSecret: "secret"})
	tokens := &memStore{tokens: map[string]*oauth2.Token{
		google.DefaultAccount: {AccessToken: "access-1"},
	}}

	clients := NewGoogleClients(context.Background(), GoogleClientsConfig{
		OAuth:      conf,
		Tokens:     tokens,
		CalendarID: "team@group.calendar.google.com",
	})
	client, err := clients.CalendarClientForAccount(google.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, "team@group.calendar.google.com", client.CalendarID())

	clients = NewGoogleClients(context.Background(), GoogleClientsConfig{OAuth: conf, Tokens: tokens})
	client, err = clients.CalendarClientForAccount(google.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, "primary", client.CalendarID())
}
