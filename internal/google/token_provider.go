package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// TokenStore is a TokenProvider that can also persist tokens
type TokenStore interface {
	TokenProvider
	SaveToken(account string, token *oauth2.Token) error
}

// FileTokenProvider keeps one JSON token file per account in a directory
type FileTokenProvider struct {
	dir string
}

// NewFileTokenProvider creates a file based token provider. An empty dir
// uses DefaultTokenDir.
func NewFileTokenProvider(dir string) *FileTokenProvider {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenProvider{dir: dir}
}

// Dir returns the token directory
func (p *FileTokenProvider) Dir() string {
	return p.dir
}

// tokenPath returns the token file of an account
func (p *FileTokenProvider) tokenPath(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	return filepath.Join(p.dir, fmt.Sprintf("google-%s.token", account)), nil
}

// GetTokenForAccount reads the stored token of an account
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	path, err := p.tokenPath(account)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, AuthenticationErrorMessage(account))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	if token.RefreshToken == "" && token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token file %s is empty", ErrNotAuthorized, path)
	}

	return &token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	path, err := p.tokenPath(account)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// SaveToken writes the token of an account, readable only by the owner
func (p *FileTokenProvider) SaveToken(account string, token *oauth2.Token) error {
	path, err := p.tokenPath(account)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// Exchange trades an authorization code for a token and stores it
func (p *FileTokenProvider) Exchange(ctx context.Context, conf *oauth2.Config, account, code string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return p.SaveToken(account, token)
}
