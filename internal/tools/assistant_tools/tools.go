package assistant_tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentic/internal/assistant"
	"github.com/teemow/agentic/internal/dispatch"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/planner"
	"github.com/teemow/agentic/internal/server"
	"github.com/teemow/agentic/internal/tools/common"
)

// Tool names
const (
	ToolAsk           = "assistant_ask"
	ToolPlan          = "assistant_plan"
	ToolExtractPlan   = "assistant_extract_plan"
	ToolNormalizeArgs = "assistant_normalize_args"
	ToolDispatch      = "assistant_dispatch"
	ToolCalendarSlots = "calendar_free_slots"
)

const (
	maxBlockHours      = 24.0
	accountDescription = "Account name (default: the configured account). Used for audit logging."
)

// dispatchOutput is the result of assistant_dispatch
type dispatchOutput struct {
	Result  dispatch.Result `json:"result"`
	Summary string          `json:"summary"`
}

// RegisterAssistantTools registers the assistant tools with the MCP server.
// In read-only mode the tools that can create events or tasks are left out.
func RegisterAssistantTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("mcp server and server context are required")
	}

	registerPlanningTools(s, sc)
	registerCalendarTools(s, sc)

	if !readOnly {
		registerActionTools(s, sc)
	}

	return nil
}

// registerPlanningTools registers tools that never touch Google APIs
func registerPlanningTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	planTool := mcp.NewTool(ToolPlan,
		mcp.WithDescription("Ask the language model for a single tool plan for a request, without running the tool. Time arguments in the plan are normalized."),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("The user request in natural language"),
		),
	)
	s.AddTool(planTool, common.InstrumentedToolHandler(ToolPlan, sc, handlePlan(sc)))

	extractTool := mcp.NewTool(ToolExtractPlan,
		mcp.WithDescription("Extract the last JSON plan object from free-form model output. Returns found=false when no object could be parsed."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Model output that may contain a JSON object, code fences or role markers"),
		),
	)
	s.AddTool(extractTool, common.InstrumentedToolHandler(ToolExtractPlan, sc, handleExtractPlan(sc)))

	normalizeTool := mcp.NewTool(ToolNormalizeArgs,
		mcp.WithDescription("Normalize the time arguments (due, start_iso, end_iso) of a tool plan to RFC3339 in the configured time zone and correct wrong years"),
		mcp.WithObject("args",
			mcp.Required(),
			mcp.Description("Tool arguments as an object or a JSON string"),
		),
	)
	s.AddTool(normalizeTool, common.InstrumentedToolHandler(ToolNormalizeArgs, sc, handleNormalizeArgs(sc)))
}

// registerCalendarTools registers read-only calendar tools
func registerCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	slotsTool := mcp.NewTool(ToolCalendarSlots,
		mcp.WithDescription("List free blocks inside the daily work window between two dates, skipping busy calendar times"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Range start, a date (2025-08-18) or a date-time"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Range end. A bare date means the end of that day."),
		),
		mcp.WithNumber("block_hours",
			mcp.Description("Length of each free block in hours (default: the configured block length)"),
		),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(slotsTool, common.InstrumentedToolHandlerWithService(ToolCalendarSlots,
		instrumentation.ServiceCalendar, instrumentation.OperationFreeBusy, sc, handleFreeSlots(sc)))
}

// registerActionTools registers tools that may create events or tasks
func registerActionTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	askTool := mcp.NewTool(ToolAsk,
		mcp.WithDescription("Handle a request end to end: plan one tool call, run it and answer in Turkish using the tool output. May create calendar events or tasks."),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("The user request in natural language"),
		),
	)
	s.AddTool(askTool, common.InstrumentedToolHandler(ToolAsk, sc, handleAsk(sc)))

	dispatchTool := mcp.NewTool(ToolDispatch,
		mcp.WithDescription("Run one tool directly: calendar (free slots or event creation), mail (recent important emails) or task (create a task). Unknown tools return a warning."),
		mcp.WithString("tool",
			mcp.Required(),
			mcp.Description("Tool name: calendar, mail, task or none"),
		),
		mcp.WithObject("args",
			mcp.Description("Tool arguments as an object or a JSON string, e.g. {\"action\":\"create\",\"title\":\"Gym\",\"start_iso\":\"...\",\"end_iso\":\"...\"}"),
		),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(dispatchTool, common.InstrumentedToolHandler(ToolDispatch, sc, handleDispatch(sc)))
}

func handleAsk(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, _ := common.StringArg(request.GetArguments(), "input")

		resp, err := sc.Assistant().Handle(ctx, input)
		if errors.Is(err, assistant.ErrEmptyInput) {
			return mcp.NewToolResultError("input is required"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to handle request: %v", err)), nil
		}

		return common.JSONResult(resp)
	}
}

func handlePlan(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, ok := common.StringArg(request.GetArguments(), "input")
		if !ok {
			return mcp.NewToolResultError("input is required"), nil
		}

		res, err := sc.Planner().Plan(ctx, input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to plan request: %v", err)), nil
		}

		return common.JSONResult(res)
	}
}

func handleExtractPlan(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, ok := common.StringArg(request.GetArguments(), "text")
		if !ok {
			return mcp.NewToolResultError("text is required"), nil
		}

		extractor := planner.Extractor{AggressiveRepair: sc.Config().Planner.AggressiveRepair}
		return common.JSONResult(extractor.ExtractNormalized(text, sc.Normalizer()))
	}
}

func handleNormalizeArgs(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := common.ObjectArg(request.GetArguments(), "args")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return common.JSONResult(sc.Normalizer().NormalizeArgs(args))
	}
}

func handleDispatch(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqArgs := request.GetArguments()

		tool, ok := common.StringArg(reqArgs, "tool")
		if !ok {
			return mcp.NewToolResultError("tool is required"), nil
		}
		args, err := common.ObjectArg(reqArgs, "args")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res := sc.Dispatcher().Dispatch(ctx, tool, sc.Normalizer().NormalizeArgs(args))
		out := dispatchOutput{Result: res, Summary: dispatch.Summarize(res)}
		if res.Failed() {
			result, _ := common.JSONResult(out)
			result.IsError = true
			return result, nil
		}

		return common.JSONResult(out)
	}
}

func handleFreeSlots(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		start, ok := common.StringArg(args, "start")
		if !ok {
			return mcp.NewToolResultError("start is required"), nil
		}
		end, ok := common.StringArg(args, "end")
		if !ok {
			return mcp.NewToolResultError("end is required"), nil
		}

		var block time.Duration
		if hours, ok := args["block_hours"].(float64); ok {
			if hours <= 0 || hours > maxBlockHours {
				return mcp.NewToolResultError(fmt.Sprintf("block_hours must be between 0 and %.0f", maxBlockHours)), nil
			}
			block = time.Duration(hours * float64(time.Hour))
		}

		slots, err := sc.Dispatcher().Engine().FreeSlots(ctx, start, end, block)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to find free slots: %v", err)), nil
		}

		return common.JSONResult(map[string]any{"free_slots": slots})
	}
}
