package google_tools

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentic/internal/server"
	"github.com/teemow/agentic/internal/tools/common"
)

// Tool names
const (
	ToolGetAuthURL   = "google_get_auth_url"
	ToolSaveAuthCode = "google_save_auth_code"
	ToolAuthStatus   = "google_auth_status"
)

const accountDescription = "Account name (default: the configured account). Used to manage multiple Google accounts."

// RegisterGoogleTools registers the Google OAuth tools with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAuthURLTool := mcp.NewTool(ToolGetAuthURL,
		mcp.WithDescription("Get the OAuth URL to authorize Google Calendar, Gmail and Tasks access for a specific account"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler(ToolGetAuthURL, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetAuthURL(ctx, request, sc)
	}))

	saveAuthCodeTool := mcp.NewTool(ToolSaveAuthCode,
		mcp.WithDescription("Save the OAuth authorization code to complete Google authentication for a specific account. The calendar, mail and task tools use the token right away."),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)
	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler(ToolSaveAuthCode, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSaveAuthCode(ctx, request, sc)
	}))

	statusTool := mcp.NewTool(ToolAuthStatus,
		mcp.WithDescription("Report whether a Google token is stored for an account"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(statusTool, common.InstrumentedToolHandler(ToolAuthStatus, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAuthStatus(ctx, request, sc)
	}))

	return nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(request.GetArguments(), sc.GoogleClients().Account())

	state := make([]byte, 16)
	if _, err := rand.Read(state); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate state: %v", err)), nil
	}

	authURL, err := sc.GoogleClients().AuthURL(hex.EncodeToString(state))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf(`To authorize Google Calendar, Gmail and Tasks access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access
4. Copy the authorization code

5. Call the %s tool with the code and account name to complete authentication`, account, authURL, ToolSaveAuthCode)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args, sc.GoogleClients().Account())

	authCode, ok := common.StringArg(args, "authCode")
	if !ok {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	if err := sc.GoogleClients().SaveAuthCode(ctx, account, authCode); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'. Calendar, mail and task tools can now be used with this account.", account)), nil
}

func handleAuthStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(request.GetArguments(), sc.GoogleClients().Account())

	return common.JSONResult(map[string]any{
		"account":    account,
		"authorized": sc.GoogleClients().AuthorizedAccount(account),
	})
}
