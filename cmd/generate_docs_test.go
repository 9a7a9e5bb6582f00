package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGenerateDocs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "MCP.md")

	require.NoError(t, runGenerateDocs(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, "## Tools")
	assert.Contains(t, doc, "### send-message")
	assert.Contains(t, doc, "- `to` (required): Destination phone number in E.164 format")
	assert.Contains(t, doc, "- `message` (required)")
	assert.Contains(t, doc, "## Prompts")
	assert.Contains(t, doc, "### send-greeting")
	assert.Contains(t, doc, "- `occasion` (required)")
	assert.Contains(t, doc, "### send-haiku")
	assert.Contains(t, doc, "- `theme` (required)")
	assert.Contains(t, doc, "**Renders as:**")
	assert.Contains(t, doc, "greeting for the occasion: <occasion>")
	assert.Contains(t, doc, "haiku about <theme>")
}

func TestListPrompts(t *testing.T) {
	mcpSrv, cleanup, err := newDocsServer()
	require.NoError(t, err)
	defer cleanup()

	list, err := listPrompts(mcpSrv)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "send-greeting", list[0].Name)
	assert.Equal(t, "send-haiku", list[1].Name)
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("example",
		mcp.WithDescription("An example tool"),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second")),
		mcp.WithNumber("a"),
	)

	md := generateToolMarkdown(tool)

	assert.Equal(t, "### example\n\nAn example tool\n\n"+
		"**Arguments:**\n"+
		"- `a` (optional): number parameter\n"+
		"- `b` (required): Second\n\n", md)
}

func TestGeneratePromptMarkdown(t *testing.T) {
	p := mcp.NewPrompt("greet",
		mcp.WithPromptDescription("Say hello"),
		mcp.WithArgument("name", mcp.ArgumentDescription("Who to greet"), mcp.RequiredArgument()),
	)

	assert.Equal(t, "### greet\n\nSay hello\n\n**Arguments:**\n- `name` (required): Who to greet\n\n", generatePromptMarkdown(p))
}
