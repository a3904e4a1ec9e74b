package instrumentation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: agentic)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID identifies this process (default: hostname)
	ServiceInstanceID string

	// Enabled determines if instrumentation is active (default: true)
	// Set to false via INSTRUMENTATION_ENABLED=false to disable metrics and tracing
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint
	// Example: "localhost:4318" (without protocol prefix)
	OTLPEndpoint string

	// OTLPInsecure sends OTLP data over plain HTTP. Spans carry tool names
	// and account labels, so keep TLS outside local setups.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64

	// MetricInterval is the flush interval of the otlp and stdout metric
	// exporters (default: 10s)
	MetricInterval time.Duration

	// MetricsPath is the path the Prometheus exporter is served on (default: "/metrics")
	MetricsPath string

	// Output receives the stdout exporters' data. Stdout carries the MCP
	// stdio transport, so nil means os.Stderr.
	Output io.Writer

	// DetailedLabels controls whether high-cardinality labels are included.
	// When false (default), only essential labels are included.
	// When true, the Google account name is added to tool metrics.
	DetailedLabels bool

	// AuditLogging configures audit logging behavior.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool

	// IncludeArgs controls whether tool arguments are written to audit logs.
	// Arguments may contain event titles and task names.
	IncludeArgs bool
}

// Environment variables read by DefaultConfig
const (
	EnvServiceName       = "OTEL_SERVICE_NAME"
	EnvServiceInstanceID = "OTEL_SERVICE_INSTANCE_ID"
	EnvEnabled           = "INSTRUMENTATION_ENABLED"
	EnvMetricsExporter   = "METRICS_EXPORTER"
	EnvTracingExporter   = "TRACING_EXPORTER"
	EnvOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvSamplingRate      = "OTEL_TRACES_SAMPLER_ARG"
	EnvMetricInterval    = "OTEL_METRIC_EXPORT_INTERVAL"
	EnvMetricsPath       = "METRICS_PATH"
	EnvDetailedLabels    = "METRICS_DETAILED_LABELS"
	EnvAuditEnabled      = "AUDIT_LOGGING_ENABLED"
	EnvAuditIncludeArgs  = "AUDIT_LOGGING_INCLUDE_ARGS"
)

// DefaultConfig returns the instrumentation settings from the environment,
// falling back to defaults for unset or unparseable values.
func DefaultConfig() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvServiceName, "agentic")
	v.SetDefault(EnvServiceInstanceID, "")
	v.SetDefault(EnvEnabled, true)
	v.SetDefault(EnvMetricsExporter, ExporterPrometheus)
	v.SetDefault(EnvTracingExporter, ExporterNone)
	v.SetDefault(EnvOTLPEndpoint, "")
	v.SetDefault(EnvOTLPInsecure, false)
	v.SetDefault(EnvSamplingRate, 0.1)
	v.SetDefault(EnvMetricInterval, DefaultMetricInterval)
	v.SetDefault(EnvMetricsPath, DefaultMetricsPath)
	v.SetDefault(EnvDetailedLabels, false)
	v.SetDefault(EnvAuditEnabled, true)
	v.SetDefault(EnvAuditIncludeArgs, false)

	return Config{
		ServiceName:       v.GetString(EnvServiceName),
		ServiceVersion:    "unknown",
		ServiceInstanceID: v.GetString(EnvServiceInstanceID),
		Enabled:           envBool(v, EnvEnabled, true),
		MetricsExporter:   strings.ToLower(v.GetString(EnvMetricsExporter)),
		TracingExporter:   strings.ToLower(v.GetString(EnvTracingExporter)),
		OTLPEndpoint:      v.GetString(EnvOTLPEndpoint),
		OTLPInsecure:      envBool(v, EnvOTLPInsecure, false),
		TraceSamplingRate: envFloat(v, EnvSamplingRate, 0.1),
		MetricInterval:    envDuration(v, EnvMetricInterval, DefaultMetricInterval),
		MetricsPath:       v.GetString(EnvMetricsPath),
		DetailedLabels:    envBool(v, EnvDetailedLabels, false),
		AuditLogging: AuditLoggingConfig{
			Enabled:     envBool(v, EnvAuditEnabled, true),
			IncludeArgs: envBool(v, EnvAuditIncludeArgs, false),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracingExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics path must start with /, got %q", c.MetricsPath)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("metric interval must not be negative, got %s", c.MetricInterval)
	}

	return nil
}

// output returns the writer of the stdout exporters
func (c *Config) output() io.Writer {
	if c.Output == nil {
		return os.Stderr
	}
	return c.Output
}

// metricsPath returns MetricsPath or its default
func (c *Config) metricsPath() string {
	if c.MetricsPath == "" {
		return DefaultMetricsPath
	}
	return c.MetricsPath
}

// envBool keeps def when the variable does not parse. viper would read an
// unparseable value as false.
func envBool(v *viper.Viper, key string, def bool) bool {
	b, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return def
	}
	return b
}

func envFloat(v *viper.Viper, key string, def float64) float64 {
	f, err := cast.ToFloat64E(v.Get(key))
	if err != nil {
		return def
	}
	return f
}

func envDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	d, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		return def
	}
	return d
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"

	// Dispatch outcomes
	OutcomeOK      = "ok"
	OutcomeNone    = "none"
	OutcomeWarning = "warning"
	OutcomeError   = "error"

	// ToolUnknown replaces tool names outside the known set
	ToolUnknown = "unknown"

	// Google service names
	ServiceGmail    = "gmail"
	ServiceCalendar = "calendar"
	ServiceTasks    = "tasks"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// DefaultMetricInterval is how often push exporters flush
	DefaultMetricInterval = 10 * time.Second

	// DefaultMetricsPath is where the Prometheus exporter is served
	DefaultMetricsPath = "/metrics"
)
