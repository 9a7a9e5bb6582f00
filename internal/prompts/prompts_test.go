package prompts

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/jsoncodec"
	"github.com/teemow/smsbridge/internal/server"
	"github.com/teemow/smsbridge/internal/twilio"
)

type nopSender struct{}

func (nopSender) SendMessage(context.Context, string, string, string) (*twilio.SendResult, error) {
	return &twilio.SendResult{}, nil
}

func newServer(t *testing.T) *mcpserver.MCPServer {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), &config.Config{PhoneNumber: "+15550000000"}, nopSender{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("smsbridge-test", "0.0.0", mcpserver.WithPromptCapabilities(true))
	require.NoError(t, RegisterPrompts(s, sc))
	return s
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		args     map[string]string
		contains []string
	}{
		{
			name:     "greeting",
			prompt:   SendGreetingPrompt,
			args:     map[string]string{"to": "+15551234567", "occasion": "birthday"},
			contains: []string{"birthday", "+15551234567", "send-message"},
		},
		{
			name:     "haiku",
			prompt:   SendHaikuPrompt,
			args:     map[string]string{"to": "+15551234567", "theme": "autumn rain"},
			contains: []string{"haiku", "autumn rain", "+15551234567", "send-message"},
		},
		{
			name:     "missing arguments render empty",
			prompt:   SendHaikuPrompt,
			args:     nil,
			contains: []string{"haiku about ,", "send it to ."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := Render(tt.prompt, tt.args)
			require.True(t, ok)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
		})
	}
}

func TestRender_Unknown(t *testing.T) {
	_, ok := Render("send-limerick", nil)
	assert.False(t, ok)
}

func TestRender_Deterministic(t *testing.T) {
	args := map[string]string{"to": "+447700900123", "occasion": "new year"}
	first, _ := Render(SendGreetingPrompt, args)
	second, _ := Render(SendGreetingPrompt, args)
	assert.Equal(t, first, second)
}

func TestPrompts_ListedByServer(t *testing.T) {
	s := newServer(t)

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"prompts/list"}`))
	out, err := jsoncodec.Marshal(resp)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"send-greeting"`)
	assert.Contains(t, string(out), `"send-haiku"`)
	assert.Contains(t, string(out), `"occasion"`)
	assert.Contains(t, string(out), `"theme"`)
}

func TestPrompts_GetThroughServer(t *testing.T) {
	s := newServer(t)

	msg := []byte(`{"jsonrpc":"2.0","id":2,"method":"prompts/get","params":{"name":"send-greeting","arguments":{"to":"+15551234567","occasion":"graduation"}}}`)
	resp := s.HandleMessage(context.Background(), msg)

	out, err := jsoncodec.Marshal(resp)
	require.NoError(t, err)
	var envelope struct {
		Result struct {
			Messages []struct {
				Role    string `json:"role"`
				Content struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		} `json:"result"`
	}
	require.NoError(t, jsoncodec.Unmarshal(out, &envelope))
	result := envelope.Result
	require.Len(t, result.Messages, 1, "response: %s", out)

	want, _ := Render(SendGreetingPrompt, map[string]string{"to": "+15551234567", "occasion": "graduation"})
	assert.Equal(t, "user", result.Messages[0].Role)
	assert.Equal(t, "text", result.Messages[0].Content.Type)
	assert.Equal(t, want, result.Messages[0].Content.Text)
}
