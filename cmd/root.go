package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/logging"
)

// rootCmd represents the base command for the agentic application
var rootCmd = newRootCmd()

// version will be set by main
var version = "dev"

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configFile string
	debug      bool
}

var (
	flags = &globalFlags{}
	vpr   = config.NewViper()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentic",
		Short: "Single-tool planning assistant for calendar, mail and tasks",
		Long: `agentic turns a natural language request into at most one tool call
against Google Calendar, Gmail or Google Tasks, runs it and answers in Turkish.

It can run as:
  - A CLI for single requests (ask, slots, extract, normalize)
  - An MCP (Model Context Protocol) server for AI assistants (serve)

Configuration is read from agentic.yaml (current directory or
$HOME/.config/agentic), AGENTIC_* environment variables and flags.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Config file (default: agentic.yaml in . or $HOME/.config/agentic)")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	pf.String("log-level", "info", "Log level: debug, info, warn, error. Can also use AGENTIC_LOG_LEVEL env var.")
	pf.String("log-format", "text", "Log format: text or json. Can also use AGENTIC_LOG_FORMAT env var.")
	pf.String("timezone", "", "IANA time zone used for all dates (default: Europe/Istanbul). Can also use AGENTIC_TIMEZONE env var.")
	pf.String("account", "", "Google account name (default: 'default'). Can also use AGENTIC_GOOGLE_ACCOUNT env var.")
	pf.String("model", "", "Language model name. Can also use AGENTIC_LLM_MODEL env var.")
	pf.String("llm-base-url", "", "OpenAI compatible API base URL. Can also use AGENTIC_LLM_BASE_URL env var.")

	bindFlags(vpr, cmd)

	return cmd
}

// bindFlags maps persistent flags onto configuration keys. Flags only
// override the config file and environment when set explicitly.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	bindings := map[string]string{
		"log-level":    config.KeyLogLevel,
		"log-format":   config.KeyLogFormat,
		"timezone":     config.KeyTimezone,
		"account":      config.KeyGoogleAccount,
		"model":        config.KeyLLMModel,
		"llm-base-url": config.KeyLLMBaseURL,
	}
	for flag, key := range bindings {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

// loadConfig reads and validates the configuration and builds the logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(vpr, flags.configFile)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if flags.debug {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "agentic version %s\n" .Version}}`)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newNormalizeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
