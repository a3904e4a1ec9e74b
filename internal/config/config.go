package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/teemow/agentic/internal/availability"
	"github.com/teemow/agentic/internal/calendar"
	"github.com/teemow/agentic/internal/google"
	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/temporal"
)

// EnvPrefix prefixes environment overrides, e.g. AGENTIC_LLM_MODEL
const EnvPrefix = "AGENTIC"

// FileName is the config file name looked up without extension
const FileName = "agentic"

// Keys of the configuration tree
const (
	KeyTimezone          = "timezone"
	KeyWorkWindowStart   = "work_window.start"
	KeyWorkWindowEnd     = "work_window.end"
	KeyDefaultBlockHours = "default_block_hours"

	KeyLLMBaseURL     = "llm.base_url"
	KeyLLMAPIKey      = "llm.api_key"
	KeyLLMModel       = "llm.model"
	KeyLLMTemperature = "llm.temperature"
	KeyLLMMaxTokens   = "llm.max_tokens"
	KeyLLMTimeout     = "llm.timeout"
	KeyLLMMaxRetries  = "llm.max_retries"

	KeyGoogleClientID     = "google.client_id"
	KeyGoogleClientSecret = "google.client_secret"
	KeyGoogleTokenDir     = "google.token_dir"
	KeyGoogleAccount      = "google.account"
	KeyGoogleCalendarID   = "google.calendar_id"

	KeyPlannerAggressiveRepair = "planner.aggressive_repair"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// ErrMissingGoogleCredentials is returned by RequireGoogle when no OAuth
// client is configured
var ErrMissingGoogleCredentials = errors.New("google client id and secret are not configured")

// Config is the application configuration
type Config struct {
	Timezone          string           `mapstructure:"timezone"`
	WorkWindow        WorkWindowConfig `mapstructure:"work_window"`
	DefaultBlockHours float64          `mapstructure:"default_block_hours"`

	LLM     LLMConfig     `mapstructure:"llm"`
	Google  GoogleConfig  `mapstructure:"google"`
	Planner PlannerConfig `mapstructure:"planner"`
	Log     LogConfig     `mapstructure:"log"`

	// location is resolved by Validate
	location *time.Location
}

// WorkWindowConfig bounds the daily window free slots are searched in ("HH:MM")
type WorkWindowConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// LLMConfig points at an OpenAI-compatible chat endpoint
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// GoogleConfig holds the OAuth client and token storage settings
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenDir     string `mapstructure:"token_dir"`
	Account      string `mapstructure:"account"`
	CalendarID   string `mapstructure:"calendar_id"`
}

// PlannerConfig tunes plan extraction
type PlannerConfig struct {
	AggressiveRepair bool `mapstructure:"aggressive_repair"`
}

// LogConfig selects the log level and format
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key with its default so that environment
// overrides are picked up by Unmarshal
func SetDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()

	v.SetDefault(KeyTimezone, temporal.DefaultTimezone)
	v.SetDefault(KeyWorkWindowStart, "13:00")
	v.SetDefault(KeyWorkWindowEnd, "19:00")
	v.SetDefault(KeyDefaultBlockHours, availability.DefaultBlock.Hours())

	v.SetDefault(KeyLLMBaseURL, llmDefaults.BaseURL)
	v.SetDefault(KeyLLMAPIKey, llmDefaults.APIKey)
	v.SetDefault(KeyLLMModel, llmDefaults.Model)
	v.SetDefault(KeyLLMTemperature, float64(llmDefaults.Temperature))
	v.SetDefault(KeyLLMMaxTokens, llmDefaults.MaxTokens)
	v.SetDefault(KeyLLMTimeout, llmDefaults.Timeout)
	v.SetDefault(KeyLLMMaxRetries, llmDefaults.MaxRetries)

	v.SetDefault(KeyGoogleClientID, "")
	v.SetDefault(KeyGoogleClientSecret, "")
	v.SetDefault(KeyGoogleTokenDir, google.DefaultTokenDir())
	v.SetDefault(KeyGoogleAccount, google.DefaultAccount)
	v.SetDefault(KeyGoogleCalendarID, calendar.PrimaryCalendarID)

	v.SetDefault(KeyPlannerAggressiveRepair, false)

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// NewViper returns a viper instance with defaults, AGENTIC_* environment
// overrides and the usual config file search paths
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/agentic")
	return v
}

// Load reads the config file (an explicit path, or the search paths of v
// when file is empty) and returns the validated configuration. A missing
// file in the search paths is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the validated built-in configuration, ignoring config
// files and the environment
func Default() (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and resolves the time zone
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	start, err := availability.ParseClock(c.WorkWindow.Start)
	if err != nil {
		return fmt.Errorf("invalid work window start: %w", err)
	}
	end, err := availability.ParseClock(c.WorkWindow.End)
	if err != nil {
		return fmt.Errorf("invalid work window end: %w", err)
	}
	if start.Hour*60+start.Minute >= end.Hour*60+end.Minute {
		return fmt.Errorf("work window start %s must be before end %s", start, end)
	}

	if c.DefaultBlockHours <= 0 || math.IsNaN(c.DefaultBlockHours) {
		return fmt.Errorf("default block hours must be positive, got %v", c.DefaultBlockHours)
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be between 0.0 and 2.0, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("llm model is required")
	}

	if (c.Google.ClientID == "") != (c.Google.ClientSecret == "") {
		return fmt.Errorf("google client id and secret must be set together")
	}

	return nil
}

// Location returns the configured zone. Validate must have been called.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Availability returns the availability engine settings
func (c *Config) Availability() availability.Config {
	cfg := availability.DefaultConfig(c.Location())
	if clock, err := availability.ParseClock(c.WorkWindow.Start); err == nil {
		cfg.WindowStart = clock
	}
	if clock, err := availability.ParseClock(c.WorkWindow.End); err == nil {
		cfg.WindowEnd = clock
	}
	cfg.DefaultBlock = time.Duration(c.DefaultBlockHours * float64(time.Hour))
	return cfg
}

// LLMClientConfig returns the settings of the chat client
func (c *Config) LLMClientConfig() llm.Config {
	return llm.Config{
		BaseURL:     c.LLM.BaseURL,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		Temperature: float32(c.LLM.Temperature),
		MaxTokens:   c.LLM.MaxTokens,
		MaxRetries:  c.LLM.MaxRetries,
		Timeout:     c.LLM.Timeout,
	}
}

// OAuth returns the Google OAuth client settings
func (c *Config) OAuth() google.OAuthConfig {
	return google.OAuthConfig{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
	}
}

// RequireGoogle fails when no Google OAuth client is configured
func (c *Config) RequireGoogle() error {
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return ErrMissingGoogleCredentials
	}
	return nil
}
