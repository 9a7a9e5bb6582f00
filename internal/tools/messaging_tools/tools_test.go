package messaging_tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/jsoncodec"
	"github.com/teemow/smsbridge/internal/server"
	"github.com/teemow/smsbridge/internal/twilio"
)

const testFromNumber = "+15550000000"

type sentMessage struct {
	from, to, body string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	result *twilio.SendResult
	err    error
}

func (f *fakeSender) SendMessage(_ context.Context, from, to, body string) (*twilio.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{from: from, to: to, body: body})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &twilio.SendResult{SID: "SM123", Status: "queued"}, nil
}

func (f *fakeSender) calls() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func setup(t *testing.T, sender *fakeSender) (*mcpserver.MCPServer, *server.ServerContext) {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), &config.Config{
		AccountSID:  "AC123",
		AuthToken:   "token",
		PhoneNumber: testFromNumber,
		Port:        config.DefaultPort,
	}, sender)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("smsbridge-test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterMessagingTools(s, sc))
	return s, sc
}

func callSend(t *testing.T, sc *server.ServerContext, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = SendMessageToolName
	req.Params.Arguments = args

	result, err := handleSendMessage(context.Background(), req, sc)
	require.NoError(t, err, "the handler never returns a Go error")
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestRegisterMessagingTools(t *testing.T) {
	s, _ := setup(t, &fakeSender{})

	tools := s.ListTools()
	require.Len(t, tools, 1)
	tool, ok := tools[SendMessageToolName]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"to", "message"}, tool.Tool.InputSchema.Required)
}

func TestRegisterSendTools_RequiresArguments(t *testing.T) {
	assert.Error(t, RegisterSendTools(nil, nil))
}

func TestSendMessage_Validation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing plus prefix", args: map[string]any{"to": "1234567890", "message": "hi"}},
		{name: "missing destination", args: map[string]any{"message": "hi"}},
		{name: "empty destination", args: map[string]any{"to": "", "message": "hi"}},
		{name: "non-string destination", args: map[string]any{"to": 15551234567, "message": "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			_, sc := setup(t, sender)

			result := callSend(t, sc, tt.args)

			assert.True(t, result.IsError)
			assert.Equal(t, invalidPhoneText, resultText(t, result))
			assert.Empty(t, sender.calls(), "vendor must not be called")
		})
	}
}

func TestSendMessage_Success(t *testing.T) {
	sender := &fakeSender{}
	_, sc := setup(t, sender)

	result := callSend(t, sc, map[string]any{"to": "+15551234567", "message": "Hello there"})

	assert.False(t, result.IsError)
	assert.Equal(t, "Message sent successfully. SID: SM123", resultText(t, result))
	assert.Equal(t, []sentMessage{{from: testFromNumber, to: "+15551234567", body: "Hello there"}}, sender.calls())
}

func TestSendMessage_EmptyBodyIsSent(t *testing.T) {
	sender := &fakeSender{}
	_, sc := setup(t, sender)

	result := callSend(t, sc, map[string]any{"to": "+15551234567", "message": ""})

	assert.False(t, result.IsError)
	require.Len(t, sender.calls(), 1)
	assert.Empty(t, sender.calls()[0].body)
}

func TestSendMessage_VendorError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
	}{
		{
			name:     "vendor message",
			err:      &twilio.Error{Op: "send", StatusCode: 400, Code: 21211, Message: "The 'To' number is not a valid phone number."},
			wantText: "The 'To' number is not a valid phone number.",
		},
		{
			name:     "vendor error without message",
			err:      &twilio.Error{Op: "send", StatusCode: 503},
			wantText: "twilio send: unexpected HTTP status 503",
		},
		{
			name:     "wrapped vendor message",
			err:      fmt.Errorf("dispatch: %w", &twilio.Error{Op: "send", Message: "Account suspended"}),
			wantText: "Account suspended",
		},
		{
			name:     "plain error",
			err:      errors.New("connection refused"),
			wantText: "connection refused",
		},
		{
			name:     "empty message falls back",
			err:      errors.New(""),
			wantText: "Failed to send message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.err}
			_, sc := setup(t, sender)

			result := callSend(t, sc, map[string]any{"to": "+15551234567", "message": "hi"})

			assert.True(t, result.IsError)
			assert.Equal(t, tt.wantText, resultText(t, result))
			assert.Len(t, sender.calls(), 1)
		})
	}
}

func TestSendMessage_ThroughMCPServer(t *testing.T) {
	sender := &fakeSender{result: &twilio.SendResult{SID: "SMabc"}}
	s, _ := setup(t, sender)

	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"send-message","arguments":{"to":"+15551234567","message":"hi"}}}`)
	resp := s.HandleMessage(context.Background(), msg)
	require.NotNil(t, resp)

	out, err := jsoncodec.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Message sent successfully. SID: SMabc")
	assert.NotContains(t, string(out), `"isError":true`)
	assert.Len(t, sender.calls(), 1)
}

func TestSendMessage_ThroughMCPServerInvalidNumber(t *testing.T) {
	sender := &fakeSender{}
	s, _ := setup(t, sender)

	msg := []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"send-message","arguments":{"to":"1234567890","message":"hi"}}}`)
	out, err := jsoncodec.Marshal(s.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	assert.Contains(t, string(out), `"isError":true`)
	assert.Contains(t, string(out), "E.164")
	assert.Empty(t, sender.calls())
}
