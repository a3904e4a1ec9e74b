package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentic/internal/server"
)

// Resource URIs
const (
	SettingsURI = "agentic://settings"
	AccountURI  = "agentic://account"
)

// Settings is the planning configuration the assistant works with
type Settings struct {
	Timezone          string  `json:"timezone"`
	WorkWindowStart   string  `json:"workWindowStart"`
	WorkWindowEnd     string  `json:"workWindowEnd"`
	DefaultBlockHours float64 `json:"defaultBlockHours"`
	Model             string  `json:"model"`
	AggressiveRepair  bool    `json:"aggressiveRepair"`
}

// Account describes the Google account the calendar, mail and task tools use
type Account struct {
	Account    string `json:"account"`
	Authorized bool   `json:"authorized"`
}

// Catalog lists the resources RegisterSettingsResources adds
func Catalog() []mcp.Resource {
	return []mcp.Resource{
		mcp.NewResource(
			SettingsURI,
			"Planning Settings",
			mcp.WithResourceDescription("Timezone, work window, default block length and model used for planning"),
			mcp.WithMIMEType("application/json"),
		),
		mcp.NewResource(
			AccountURI,
			"Google Account",
			mcp.WithResourceDescription("The configured Google account and whether a token is stored for it"),
			mcp.WithMIMEType("application/json"),
		),
	}
}

// RegisterSettingsResources registers the read-only configuration resources
func RegisterSettingsResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}

	handlers := map[string]func(context.Context, mcp.ReadResourceRequest, *server.ServerContext) ([]mcp.ResourceContents, error){
		SettingsURI: handleSettings,
		AccountURI:  handleAccount,
	}
	for _, resource := range Catalog() {
		handle := handlers[resource.URI]
		s.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handle(ctx, request, sc)
		})
	}

	return nil
}

func handleSettings(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	return jsonContents(request.Params.URI, Settings{
		Timezone:          cfg.Location().String(),
		WorkWindowStart:   cfg.WorkWindow.Start,
		WorkWindowEnd:     cfg.WorkWindow.End,
		DefaultBlockHours: cfg.DefaultBlockHours,
		Model:             cfg.LLM.Model,
		AggressiveRepair:  cfg.Planner.AggressiveRepair,
	})
}

func handleAccount(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	clients := sc.GoogleClients()
	return jsonContents(request.Params.URI, Account{
		Account:    clients.Account(),
		Authorized: clients.Authorized(),
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
