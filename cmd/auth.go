package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/agentic/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar, Gmail and Tasks",
		Long: `Authorize the assistant for a Google account.

  1. Run "agentic auth url" and open the printed URL
  2. Sign in and grant access
  3. Run "agentic auth save <code>" with the code Google shows

The token is stored in the token directory and refreshed automatically.
Requires google.client_id and google.client_secret in the configuration
(AGENTIC_GOOGLE_CLIENT_ID and AGENTIC_GOOGLE_CLIENT_SECRET).`,
	}

	cmd.AddCommand(newAuthURLCmd())
	cmd.AddCommand(newAuthSaveCmd())
	cmd.AddCommand(newAuthStatusCmd())

	return cmd
}

func newAuthURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the Google authorization URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireGoogle(); err != nil {
				return err
			}

			state, err := randomState()
			if err != nil {
				return err
			}

			conf := google.NewOAuthConfig(cfg.OAuth())
			fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL for account %q:\n\n%s\n\nThen run: agentic auth save --account %s <code>\n",
				cfg.Google.Account, google.AuthURL(conf, state), cfg.Google.Account)
			return nil
		},
	}
}

func newAuthSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <code>",
		Short: "Exchange an authorization code and store the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireGoogle(); err != nil {
				return err
			}

			tokens := google.NewFileTokenProvider(cfg.Google.TokenDir)
			conf := google.NewOAuthConfig(cfg.OAuth())
			if err := tokens.Exchange(cmd.Context(), conf, cfg.Google.Account, args[0]); err != nil {
				return err
			}

			logger.Info("google token saved", "account", cfg.Google.Account, "dir", tokens.Dir())
			fmt.Fprintf(cmd.OutOrStdout(), "Authorized account %q\n", cfg.Google.Account)
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a token is stored for the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			tokens := google.NewFileTokenProvider(cfg.Google.TokenDir)
			status := "not authorized"
			if tokens.HasTokenForAccount(cfg.Google.Account) {
				status = "authorized"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Google.Account, status)
			return nil
		},
	}
}

// randomState returns an unguessable OAuth state value
func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
