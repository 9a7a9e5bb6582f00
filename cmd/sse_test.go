package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/server"
	"github.com/teemow/smsbridge/internal/twilio"
)

type failingSender struct {
	calls atomic.Int32
}

func (f *failingSender) SendMessage(context.Context, string, string, string) (*twilio.SendResult, error) {
	f.calls.Add(1)
	return nil, errors.New("vendor exploded")
}

// nextEvent reads one server-sent event and returns its type and data.
func nextEvent(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if event != "" || data != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestSSE_VendorFailureIsReportedOnStream(t *testing.T) {
	sender := &failingSender{}
	sc, err := server.NewServerContext(context.Background(), &config.Config{
		AccountSID:  "AC123",
		AuthToken:   "token",
		PhoneNumber: "+15550000000",
		Port:        config.DefaultPort,
	}, sender)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	mcpSrv := newMCPServer()
	require.NoError(t, registerAll(mcpSrv, sc))

	ts := httptest.NewServer(server.NewHTTPServer(sc, mcpSrv).Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+server.MCPPath, nil)
	require.NoError(t, err)
	stream, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	require.Equal(t, http.StatusOK, stream.StatusCode)

	events := bufio.NewReader(stream.Body)
	event, endpoint := nextEvent(t, events)
	require.Equal(t, "endpoint", event)
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = ts.URL + endpoint
	}

	call := `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"send-message","arguments":{"to":"+15551234567","message":"hello"}}}`
	post, err := http.Post(endpoint, "application/json", strings.NewReader(call))
	require.NoError(t, err)
	body, err := io.ReadAll(post.Body)
	post.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, post.StatusCode)
	assert.JSONEq(t, `{"status":"received"}`, string(body))

	var data string
	for !strings.Contains(data, `"id":9`) {
		event, data = nextEvent(t, events)
	}
	assert.Equal(t, "message", event)
	assert.Contains(t, data, `"isError":true`)
	assert.Contains(t, data, "vendor exploded")
	assert.Equal(t, int32(1), sender.calls.Load())
}
