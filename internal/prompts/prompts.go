package prompts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/smsbridge/internal/logging"
	"github.com/teemow/smsbridge/internal/server"
)

// Prompt names.
const (
	SendGreetingPrompt = "send-greeting"
	SendHaikuPrompt    = "send-haiku"
)

const (
	greetingTemplate = "Please compose a short, friendly greeting for the occasion: %s. " +
		"Keep it under 160 characters so it fits in a single SMS. " +
		"Then use the send-message tool to send it to %s."
	haikuTemplate = "Please write a haiku about %s, following the 5-7-5 syllable pattern. " +
		"Then use the send-message tool to send it to %s."
)

// template describes one prompt: its arguments and how the text is built
// from them.
type template struct {
	name        string
	description string
	args        []argument
	render      func(args map[string]string) string
}

type argument struct {
	name        string
	description string
}

var templates = []template{
	{
		name:        SendGreetingPrompt,
		description: "Compose and send a greeting message for an occasion",
		args: []argument{
			{name: "to", description: "Destination phone number in E.164 format"},
			{name: "occasion", description: "Occasion for the greeting (e.g., birthday, holiday)"},
		},
		render: func(args map[string]string) string {
			return fmt.Sprintf(greetingTemplate, args["occasion"], args["to"])
		},
	},
	{
		name:        SendHaikuPrompt,
		description: "Write a haiku on a theme and send it as a message",
		args: []argument{
			{name: "to", description: "Destination phone number in E.164 format"},
			{name: "theme", description: "Theme of the haiku"},
		},
		render: func(args map[string]string) string {
			return fmt.Sprintf(haikuTemplate, args["theme"], args["to"])
		},
	},
}

// RegisterPrompts registers the message prompt templates with the MCP server.
func RegisterPrompts(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, tpl := range templates {
		opts := []mcp.PromptOption{mcp.WithPromptDescription(tpl.description)}
		for _, arg := range tpl.args {
			opts = append(opts, mcp.WithArgument(arg.name,
				mcp.ArgumentDescription(arg.description),
				mcp.RequiredArgument(),
			))
		}

		s.AddPrompt(mcp.NewPrompt(tpl.name, opts...), handler(tpl, sc))
	}
	return nil
}

func handler(tpl template, sc *server.ServerContext) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		sc.Metrics().RecordPromptRequest(ctx, tpl.name)
		slog.DebugContext(ctx, "rendering prompt", logging.Prompt(tpl.name))

		text := tpl.render(request.Params.Arguments)
		return mcp.NewGetPromptResult(tpl.description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}

// Render returns the text of the named prompt, or false if no such prompt
// exists.
func Render(name string, args map[string]string) (string, bool) {
	for _, tpl := range templates {
		if tpl.name == name {
			return tpl.render(args), true
		}
	}
	return "", false
}
