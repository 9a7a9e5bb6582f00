package ids

import (
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestNewRequestIDOrdering(t *testing.T) {
	const total = 50
	prev := ""
	for i := 0; i < total; i++ {
		id := NewRequestID()
		if len(id) != 26 {
			t.Fatalf("expected ULID length 26, got %d", len(id))
		}
		if _, err := ulid.Parse(id); err != nil {
			t.Fatalf("expected valid ULID, got %v", err)
		}
		if prev != "" && prev >= id {
			t.Fatalf("expected increasing IDs, %s >= %s", prev, id)
		}
		prev = id
	}
}

func TestNewRequestIDConcurrent(t *testing.T) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				id := NewRequestID()
				mu.Lock()
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate request id %s", id)
				}
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 200 {
		t.Fatalf("expected 200 unique IDs, got %d", len(seen))
	}
}
