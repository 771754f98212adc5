package realtime

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	a := &Client{UserID: 1, Send: make(chan []byte, 4)}
	b := &Client{UserID: 1, Send: make(chan []byte, 4)}
	other := &Client{UserID: 2, Send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.Broadcast(1, map[string]any{"type": "chat.analysis"})

	for _, client := range []*Client{a, b} {
		select {
		case raw := <-client.Send:
			var payload map[string]any
			if err := json.Unmarshal(raw, &payload); err != nil {
				t.Fatal(err)
			}
			if payload["type"] != "chat.analysis" {
				t.Fatalf("payload = %v", payload)
			}
		default:
			t.Fatal("expected message for user 1 client")
		}
	}
	select {
	case <-other.Send:
		t.Fatal("user 2 should not receive user 1 broadcast")
	default:
	}
}

func TestHubUnregisterIdempotent(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 5, Send: make(chan []byte, 1)}
	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)

	if n := hub.ConnectedClients(5); n != 0 {
		t.Fatalf("connected = %d", n)
	}
}

// Broadcast runs against a client set that connect and disconnect pumps
// mutate concurrently. The race detector flags any unsynchronized access.
func TestHubBroadcastDuringChurn(t *testing.T) {
	hub := NewHub()
	stable := &Client{UserID: 9, Send: make(chan []byte, 64)}
	hub.Register(stable)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			client := &Client{UserID: 9, Send: make(chan []byte, 1)}
			hub.Register(client)
			hub.Unregister(client)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.Broadcast(9, map[string]any{"seq": i})
		}
	}()
	wg.Wait()

	select {
	case <-stable.Send:
	default:
		t.Fatal("stable client received no broadcasts")
	}
	if n := hub.ConnectedClients(9); n != 1 {
		t.Fatalf("connected = %d", n)
	}
}
