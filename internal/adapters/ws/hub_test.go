package ws

import (
	"errors"
	"sync"
	"testing"
)

// fakeSubscriber records writes and can be told to fail them
type fakeSubscriber struct {
	mu       sync.Mutex
	messages []interface{}
	failSend bool
	closed   bool
}

func (f *fakeSubscriber) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("connection gone")
	}
	f.messages = append(f.messages, v)
	return nil
}

func (f *fakeSubscriber) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSubscriber) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeSubscriber) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}

	hub.Register(sub)
	if hub.Count() != 1 {
		t.Fatalf("count = %d, want 1", hub.Count())
	}

	hub.Broadcast("hello")
	if sub.received() != 1 {
		t.Fatalf("received = %d, want 1", sub.received())
	}

	hub.Unregister(sub)
	if hub.Count() != 0 {
		t.Fatalf("count = %d, want 0", hub.Count())
	}
	if !sub.isClosed() {
		t.Fatal("unregister must close the connection")
	}

	// no delivery after removal
	hub.Broadcast("again")
	if sub.received() != 1 {
		t.Fatalf("received = %d after unregister, want 1", sub.received())
	}
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}

	hub.Register(sub)
	hub.Unregister(sub)
	hub.Unregister(sub)

	if hub.Count() != 0 {
		t.Fatalf("count = %d, want 0", hub.Count())
	}
}

// TestHub_BroadcastDropsFailedSubscribers registers N subscribers of which
// K fail their send, and checks exactly the failed ones are removed while
// the rest keep receiving.
func TestHub_BroadcastDropsFailedSubscribers(t *testing.T) {
	const n, k = 10, 3

	hub := NewHub()
	subs := make([]*fakeSubscriber, n)
	for i := range subs {
		subs[i] = &fakeSubscriber{failSend: i < k}
		hub.Register(subs[i])
	}

	hub.Broadcast("reading")

	if hub.Count() != n-k {
		t.Fatalf("count = %d, want %d", hub.Count(), n-k)
	}

	for i, sub := range subs {
		if i < k {
			if !sub.isClosed() {
				t.Errorf("failed subscriber %d not closed", i)
			}
			continue
		}
		if sub.received() != 1 {
			t.Errorf("healthy subscriber %d received %d messages", i, sub.received())
		}
	}

	// healthy subscribers keep receiving after the purge
	hub.Broadcast("reading 2")
	for i := k; i < n; i++ {
		if subs[i].received() != 2 {
			t.Errorf("subscriber %d received %d messages, want 2", i, subs[i].received())
		}
	}
}

// TestHub_ConcurrentAccess exercises register, unregister and broadcast
// racing each other. Run with -race.
func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := &fakeSubscriber{}
			hub.Register(sub)
			hub.Broadcast("tick")
			hub.Unregister(sub)
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast("tock")
			hub.Count()
		}()
	}
	wg.Wait()

	if hub.Count() != 0 {
		t.Fatalf("count = %d after all goroutines finished, want 0", hub.Count())
	}
}
