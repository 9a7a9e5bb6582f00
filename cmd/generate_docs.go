package cmd

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/jsoncodec"
	"github.com/teemow/smsbridge/internal/prompts"
	"github.com/teemow/smsbridge/internal/server"
	"github.com/teemow/smsbridge/internal/twilio"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool and prompt documentation",
		Long: `Generate markdown documentation for the MCP tools and prompts.
This command introspects the registered tools and prompts and outputs their
documentation in markdown format, so it stays in sync with the implementation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	mcpSrv, cleanup, err := newDocsServer()
	if err != nil {
		return err
	}
	defer cleanup()

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	promptList, err := listPrompts(mcpSrv)
	if err != nil {
		return err
	}

	markdown := generateDocsMarkdown(tools, promptList)

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

// newDocsServer builds an MCP server with everything registered. The
// credentials are placeholders; nothing is sent while generating docs.
func newDocsServer() (*mcpserver.MCPServer, func(), error) {
	cfg := &config.Config{
		AccountSID:  "docs",
		AuthToken:   "docs",
		PhoneNumber: "+10000000000",
		Port:        config.DefaultPort,
		APIBaseURL:  config.DefaultAPIBaseURL,
	}
	serverContext, err := server.NewServerContext(context.Background(), cfg, twilio.NewClient(cfg, nil))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server context: %w", err)
	}
	cleanup := func() { _ = serverContext.Shutdown() }

	mcpSrv := newMCPServer()
	if err := registerAll(mcpSrv, serverContext); err != nil {
		cleanup()
		return nil, nil, err
	}
	return mcpSrv, cleanup, nil
}

// listPrompts asks the server for its prompt catalogue the way a client would.
func listPrompts(mcpSrv *mcpserver.MCPServer) ([]mcp.Prompt, error) {
	resp := mcpSrv.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"prompts/list"}`))
	raw, err := jsoncodec.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompt list: %w", err)
	}

	var envelope struct {
		Result mcp.ListPromptsResult `json:"result"`
	}
	if err := jsoncodec.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode prompt list: %w", err)
	}

	list := envelope.Result.Prompts
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func generateDocsMarkdown(tools []mcp.Tool, promptList []mcp.Prompt) string {
	var sb strings.Builder

	sb.WriteString("# MCP Reference\n\n")
	sb.WriteString("This document lists the tools and prompts available when running smsbridge as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool and prompt definitions.\n\n")

	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	sb.WriteString("## Tools\n\n")
	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	sb.WriteString("## Prompts\n\n")
	for _, p := range promptList {
		sb.WriteString(generatePromptMarkdown(p))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generatePromptMarkdown(p mcp.Prompt) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", p.Name))
	if p.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", p.Description))
	}

	placeholders := make(map[string]string, len(p.Arguments))
	if len(p.Arguments) > 0 {
		sb.WriteString("**Arguments:**\n")
		for _, arg := range p.Arguments {
			requiredStr := "optional"
			if arg.Required {
				requiredStr = "required"
			}
			sb.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", arg.Name, requiredStr, arg.Description))
			placeholders[arg.Name] = "<" + arg.Name + ">"
		}
		sb.WriteString("\n")
	}

	if text, ok := prompts.Render(p.Name, placeholders); ok {
		sb.WriteString(fmt.Sprintf("**Renders as:**\n\n> %s\n\n", text))
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) == 0 {
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	for _, name := range slices.Sorted(maps.Keys(tool.InputSchema.Properties)) {
		propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
		if !ok {
			continue
		}

		requiredStr := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			requiredStr = "required"
		}

		desc, ok := propMap["description"].(string)
		if !ok {
			desc = propertyType(propMap) + " parameter"
		}
		sb.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", name, requiredStr, desc))
	}
	sb.WriteString("\n")

	return sb.String()
}

func propertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
