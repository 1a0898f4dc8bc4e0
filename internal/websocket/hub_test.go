package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, familyID int64) *Client {
	return &Client{
		hub:      hub,
		conn:     nil,
		familyID: familyID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := testHub()

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(1); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(1); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(1); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := testHub()
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(1); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastReachesOwnFamily(t *testing.T) {
	hub := testHub()

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)
	hub.Register(c1)
	hub.Register(c2)

	msg := NewMessage("recipe", "created", 42, map[string]any{"title": "Tacos"})
	hub.Broadcast(1, msg)

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "recipe_created" {
				t.Errorf("expected type recipe_created, got %s", got.Type)
			}
			if got.ID != 42 {
				t.Errorf("expected id 42, got %d", got.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastDoesNotCrossFamilies(t *testing.T) {
	hub := testHub()

	ours := mockClient(hub, 1)
	theirs := mockClient(hub, 2)
	hub.Register(ours)
	hub.Register(theirs)

	hub.Broadcast(1, NewMessage("meal_plan", "updated", 7, nil))

	select {
	case <-ours.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("own family should receive the broadcast")
	}

	select {
	case <-theirs.send:
		t.Fatal("other family must not receive the broadcast")
	default:
	}

	hub.Unregister(ours)
	hub.Unregister(theirs)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := testHub()
	// Should not panic
	hub.Broadcast(1, NewMessage("recipe", "trashed", 1, nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := testHub()

	c := mockClient(hub, 1)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(1, NewMessage("test", "fill", int64(i), nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(1, NewMessage("test", "dropped", 999, nil))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("shopping_list", "generated", 5, nil)
	if msg.Type != "shopping_list_generated" {
		t.Errorf("expected type shopping_list_generated, got %s", msg.Type)
	}
	if msg.Entity != "shopping_list" {
		t.Errorf("expected entity shopping_list, got %s", msg.Entity)
	}
	if msg.Action != "generated" {
		t.Errorf("expected action generated, got %s", msg.Action)
	}
	if msg.ID != 5 {
		t.Errorf("expected id 5, got %d", msg.ID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := testHub()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		familyID := int64(i%3 + 1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, familyID)
			hub.Register(c)
			hub.Broadcast(familyID, NewMessage("test", "concurrent", 0, nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	for f := int64(1); f <= 3; f++ {
		if got := hub.ClientCount(f); got != 0 {
			t.Errorf("family %d: expected 0 clients after concurrent test, got %d", f, got)
		}
	}
}
