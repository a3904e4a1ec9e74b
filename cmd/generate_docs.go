package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/resources"
	"github.com/teemow/agentic/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Built-in defaults are enough, no model or Google access happens
	cfg, err := config.Default()
	if err != nil {
		return err
	}

	ctx := context.Background()
	serverContext, err := server.NewServerContext(ctx, server.Dependencies{
		Config:    cfg,
		Completer: llm.NewClient(cfg.LLMClientConfig(), nil, nil),
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	tools, err := listTools(serverContext, false)
	if err != nil {
		return err
	}
	readOnlyTools, err := listTools(serverContext, true)
	if err != nil {
		return err
	}

	markdown := generateToolsMarkdown(tools, writeTools(tools, readOnlyTools), resources.Catalog())

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// listTools registers the tools on a scratch server and returns them
func listTools(sc *server.ServerContext, readOnly bool) ([]mcp.Tool, error) {
	mcpSrv := mcpserver.NewMCPServer("agentic", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	return tools, nil
}

// writeTools returns the names missing from the read-only tool set, sorted
func writeTools(all, readOnly []mcp.Tool) []string {
	kept := make(map[string]bool, len(readOnly))
	for _, tool := range readOnly {
		kept[tool.Name] = true
	}
	var names []string
	for _, tool := range all {
		if !kept[tool.Name] {
			names = append(names, tool.Name)
		}
	}
	sort.Strings(names)
	return names
}

func generateToolsMarkdown(tools []mcp.Tool, write []string, catalog []mcp.Resource) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running agentic as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	// Group tools by category
	toolsByCategory := groupToolsByCategory(tools)

	// Table of contents
	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	if len(catalog) > 0 {
		sb.WriteString("- [Resources](#resources)\n")
	}
	sb.WriteString("\n")

	if len(write) > 0 {
		quoted := make([]string, len(write))
		for i, name := range write {
			quoted[i] = "`" + name + "`"
		}
		sb.WriteString("## Read-Only Mode\n\n")
		sb.WriteString("`agentic serve --read-only` leaves out the tools that can create calendar events or tasks: ")
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString(".\n\n")
	}

	// Generate documentation for each category
	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	if len(catalog) > 0 {
		sb.WriteString("## Resources\n\n")
		for _, resource := range catalog {
			sb.WriteString(fmt.Sprintf("### %s\n\n", resource.URI))
			sb.WriteString(fmt.Sprintf("%s (`%s`): %s\n\n", resource.Name, resource.MIMEType, resource.Description))
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)

	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	return categories
}

func getCategoryFromToolName(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) == 0 {
		return "Other"
	}

	prefix := parts[0]
	switch prefix {
	case "assistant":
		return "Assistant Tools"
	case "calendar":
		return "Google Calendar Tools"
	case "google":
		return "Google Auth Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	// Tool name
	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	// Description
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	// Input schema
	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			prop := tool.InputSchema.Properties[name]
			isRequired := slices.Contains(tool.InputSchema.Required, name)

			requiredStr := "optional"
			if isRequired {
				requiredStr = "required"
			}

			// Get property type and description from the property map
			propMap, ok := prop.(map[string]interface{})
			if !ok {
				continue
			}

			propType := getPropertyType(propMap)

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, propType, requiredStr))

			// Get description
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", propType))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
