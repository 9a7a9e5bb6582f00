package server

import (
	"context"
	"sync"
	"testing"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/twilio"
)

type stubSender struct {
	mu    sync.Mutex
	calls int
}

func (s *stubSender) SendMessage(_ context.Context, _, _, _ string) (*twilio.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &twilio.SendResult{SID: "SM-test"}, nil
}

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), &config.Config{
		AccountSID:  "AC123",
		AuthToken:   "token",
		PhoneNumber: "+15550000000",
		Port:        config.DefaultPort,
		APIBaseURL:  config.DefaultAPIBaseURL,
	}, &stubSender{})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
