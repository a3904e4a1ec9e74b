// Package instrumentation provides OpenTelemetry instrumentation for the
// agentic planning assistant.
//
// # Metrics
//
// Dispatcher Metrics:
//   - agentic_tool_dispatch_total: Counter of dispatches by tool and outcome
//   - agentic_tool_dispatch_duration_seconds: Histogram of dispatch durations
//
// Planner Metrics:
//   - agentic_plan_extractions_total: Counter of plans by source (strict, repaired, fallback)
//
// LLM Metrics:
//   - llm_requests_total: Counter of chat completion requests by model and status
//   - llm_request_duration_seconds: Histogram of chat completion durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Tool names come from model output, so the tool label is always reduced
// with ToolLabel before it is recorded.
//
// # Tracing
//
// Spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Tool dispatches (dispatch.<tool>)
//   - Chat completions (llm.complete)
//   - Google API calls (google.<service>.<operation>)
//
// # Configuration
//
// DefaultConfig reads the settings from environment variables; values that
// do not parse keep their default:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_METRIC_EXPORT_INTERVAL: Flush interval of push exporters (default: 10s)
//   - OTEL_SERVICE_NAME: Service name (default: agentic)
//   - METRICS_PATH: Path of the Prometheus endpoint (default: /metrics)
//   - AUDIT_LOGGING_INCLUDE_ARGS: Write tool arguments to audit logs (default: false)
//
// The stdout exporters write to stderr unless Config.Output says otherwise:
// stdout belongs to the MCP stdio transport.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "agentic",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordDispatch(ctx, "calendar", instrumentation.OutcomeOK, time.Since(start))
//	recorder.RecordGoogleAPIOperation(ctx, "calendar", "freebusy", "success", time.Since(start))
package instrumentation
