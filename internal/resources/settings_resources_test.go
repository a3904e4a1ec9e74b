package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/server"
)

type nopCompleter struct{}

func (nopCompleter) Complete(context.Context, string, llm.Options) (string, error) {
	return "{}", nil
}

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Google.Account = "work"

	sc, err := server.NewServerContext(context.Background(), server.Dependencies{
		Config:    cfg,
		Completer: nopCompleter{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func readResource(t *testing.T, handler func(context.Context, mcp.ReadResourceRequest, *server.ServerContext) ([]mcp.ResourceContents, error), sc *server.ServerContext, uri string) string {
	t.Helper()

	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri

	contents, err := handler(context.Background(), req, sc)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, uri, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)
	return text.Text
}

func TestRegisterSettingsResources(t *testing.T) {
	assert.Error(t, RegisterSettingsResources(nil, nil))

	s := mcpserver.NewMCPServer("agentic", "test", mcpserver.WithResourceCapabilities(false, false))
	assert.NoError(t, RegisterSettingsResources(s, newTestServerContext(t)))
}

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 2)
	assert.Equal(t, SettingsURI, catalog[0].URI)
	assert.Equal(t, AccountURI, catalog[1].URI)
	for _, resource := range catalog {
		assert.Equal(t, "application/json", resource.MIMEType)
		assert.NotEmpty(t, resource.Description)
	}
}

func TestHandleSettings(t *testing.T) {
	sc := newTestServerContext(t)

	var settings Settings
	require.NoError(t, json.Unmarshal([]byte(readResource(t, handleSettings, sc, SettingsURI)), &settings))

	cfg := sc.Config()
	assert.Equal(t, cfg.Location().String(), settings.Timezone)
	assert.Equal(t, cfg.WorkWindow.Start, settings.WorkWindowStart)
	assert.Equal(t, cfg.WorkWindow.End, settings.WorkWindowEnd)
	assert.Equal(t, cfg.DefaultBlockHours, settings.DefaultBlockHours)
	assert.Equal(t, cfg.LLM.Model, settings.Model)
}

func TestHandleAccount(t *testing.T) {
	text := readResource(t, handleAccount, newTestServerContext(t), AccountURI)
	assert.JSONEq(t, `{"account":"work","authorized":false}`, text)
}
