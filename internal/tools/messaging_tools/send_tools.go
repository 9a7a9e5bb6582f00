package messaging_tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/smsbridge/internal/instrumentation"
	"github.com/teemow/smsbridge/internal/logging"
	"github.com/teemow/smsbridge/internal/server"
	"github.com/teemow/smsbridge/internal/tools/common"
	"github.com/teemow/smsbridge/internal/twilio"
)

// SendMessageToolName is the MCP name of the SMS send tool.
const SendMessageToolName = "send-message"

const (
	invalidPhoneText = "Invalid phone number format. Phone number must be in E.164 format (e.g., +1234567890)"
	sendFailedText   = "Failed to send message"
	sentTextFormat   = "Message sent successfully. SID: %s"
)

// RegisterSendTools registers the send-message tool.
func RegisterSendTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return errors.New("server and server context are required")
	}

	sendMessageTool := mcp.NewTool(SendMessageToolName,
		mcp.WithDescription("Send an SMS message via Twilio"),
		mcp.WithString(common.RecipientArg,
			mcp.Required(),
			mcp.Description("Destination phone number in E.164 format"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message content to send"),
		),
	)

	s.AddTool(sendMessageTool, common.InstrumentedSendHandler(SendMessageToolName, instrumentation.ProviderTwilio, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendMessage(ctx, request, sc)
		}))

	return nil
}

// handleSendMessage handles the send-message tool. Every failure is
// reported as an error result; it never returns a Go error.
func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to, _ := args[common.RecipientArg].(string)
	if !strings.HasPrefix(to, "+") {
		return mcp.NewToolResultError(invalidPhoneText), nil
	}
	message, _ := args["message"].(string)

	from := sc.Config().PhoneNumber
	result, err := sc.Sender().SendMessage(ctx, from, to, message)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send message",
			logging.Tool(SendMessageToolName),
			logging.Recipient(to),
			logging.Err(err))

		return mcp.NewToolResultError(errorText(err)), nil
	}

	if ti := common.InvocationFromContext(ctx); ti != nil {
		ti.WithMessageID(result.SID)
	}
	slog.DebugContext(ctx, "message sent",
		logging.Tool(SendMessageToolName),
		logging.Recipient(to),
		slog.String("sid", result.SID))

	return mcp.NewToolResultText(fmt.Sprintf(sentTextFormat, result.SID)), nil
}

// errorText is the text shown to the assistant for a failed send: the
// vendor's own message when it sent one, otherwise the error text.
func errorText(err error) string {
	var apiErr *twilio.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if text := err.Error(); text != "" {
		return text
	}
	return sendFailedText
}
