package messaging_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/smsbridge/internal/server"
)

// RegisterMessagingTools registers all messaging tools with the MCP server.
func RegisterMessagingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterSendTools(s, sc); err != nil {
		return fmt.Errorf("failed to register send tools: %w", err)
	}
	return nil
}
