package instrumentation

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearInstrumentationEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvServiceName, EnvServiceInstanceID, EnvEnabled, EnvMetricsExporter, EnvTracingExporter,
		EnvOTLPEndpoint, EnvOTLPInsecure, EnvSamplingRate, EnvMetricInterval, EnvMetricsPath,
		EnvDetailedLabels, EnvAuditEnabled, EnvAuditIncludeArgs,
	} {
		// empty values count as unset
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	clearInstrumentationEnv(t)

	config := DefaultConfig()

	assert.Equal(t, "agentic", config.ServiceName)
	assert.True(t, config.Enabled)
	assert.Equal(t, ExporterPrometheus, config.MetricsExporter)
	assert.Equal(t, ExporterNone, config.TracingExporter)
	assert.Equal(t, 0.1, config.TraceSamplingRate)
	assert.Equal(t, DefaultMetricInterval, config.MetricInterval)
	assert.Equal(t, DefaultMetricsPath, config.MetricsPath)
	assert.False(t, config.DetailedLabels)
	assert.True(t, config.AuditLogging.Enabled)
	assert.False(t, config.AuditLogging.IncludeArgs)
	assert.NoError(t, config.Validate())
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	clearInstrumentationEnv(t)
	t.Setenv(EnvServiceName, "test-service")
	t.Setenv(EnvEnabled, "false")
	t.Setenv(EnvMetricsExporter, "STDOUT")
	t.Setenv(EnvTracingExporter, "stdout")
	t.Setenv(EnvSamplingRate, "0.5")
	t.Setenv(EnvMetricInterval, "30s")
	t.Setenv(EnvMetricsPath, "/internal/metrics")
	t.Setenv(EnvAuditIncludeArgs, "true")

	config := DefaultConfig()

	assert.Equal(t, "test-service", config.ServiceName)
	assert.False(t, config.Enabled)
	assert.Equal(t, ExporterStdout, config.MetricsExporter)
	assert.Equal(t, ExporterStdout, config.TracingExporter)
	assert.Equal(t, 0.5, config.TraceSamplingRate)
	assert.Equal(t, 30*time.Second, config.MetricInterval)
	assert.Equal(t, "/internal/metrics", config.MetricsPath)
	assert.True(t, config.AuditLogging.IncludeArgs)
}

func TestDefaultConfig_UnparseableValuesKeepDefaults(t *testing.T) {
	clearInstrumentationEnv(t)
	t.Setenv(EnvEnabled, "not_a_bool")
	t.Setenv(EnvSamplingRate, "often")
	t.Setenv(EnvMetricInterval, "soon")

	config := DefaultConfig()

	assert.True(t, config.Enabled)
	assert.Equal(t, 0.1, config.TraceSamplingRate)
	assert.Equal(t, DefaultMetricInterval, config.MetricInterval)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		errContains string
	}{
		{
			name: "valid config with prometheus",
			config: Config{
				ServiceName:     "test",
				Enabled:         true,
				MetricsExporter: ExporterPrometheus,
				TracingExporter: ExporterNone,
			},
		},
		{
			name: "valid config with otlp",
			config: Config{
				ServiceName:     "test",
				Enabled:         true,
				MetricsExporter: ExporterPrometheus,
				TracingExporter: ExporterOTLP,
				OTLPEndpoint:    "localhost:4318",
			},
		},
		{
			name:        "invalid sampling rate negative",
			config:      Config{TraceSamplingRate: -0.5},
			errContains: "sampling rate",
		},
		{
			name:        "invalid sampling rate above 1",
			config:      Config{TraceSamplingRate: 1.5},
			errContains: "sampling rate",
		},
		{
			name:        "invalid metrics exporter",
			config:      Config{MetricsExporter: "invalid"},
			errContains: "invalid metrics exporter",
		},
		{
			name:        "invalid tracing exporter",
			config:      Config{TracingExporter: "invalid"},
			errContains: "invalid tracing exporter",
		},
		{
			name:        "otlp tracing without endpoint",
			config:      Config{TracingExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
		{
			name:        "otlp metrics without endpoint",
			config:      Config{MetricsExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
		{
			name:        "relative metrics path",
			config:      Config{MetricsPath: "metrics"},
			errContains: "must start with /",
		},
		{
			name:        "negative metric interval",
			config:      Config{MetricInterval: -time.Second},
			errContains: "metric interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestConfig_Output(t *testing.T) {
	var config Config
	assert.Equal(t, os.Stderr, config.output())
	assert.Equal(t, DefaultMetricsPath, config.metricsPath())

	var buf bytes.Buffer
	config.Output = &buf
	config.MetricsPath = "/m"
	assert.Equal(t, &buf, config.output())
	assert.Equal(t, "/m", config.metricsPath())
}
