package realtime

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func drain(t *testing.T, c *Client) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case ev := <-c.Send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(discardLogger())
	a := NewClient("a", "u1", 4)
	b := NewClient("b", "u2", 4)
	hub.Register(a)
	hub.Register(b)

	hub.Route(Event{Type: EventNewGroup})

	for _, c := range []*Client{a, b} {
		evs := drain(t, c)
		if len(evs) != 1 || evs[0].Type != EventNewGroup {
			t.Fatalf("client %s: got %v", c.ID, evs)
		}
	}
}

func TestHubChannelRoutingIsScoped(t *testing.T) {
	hub := NewHub(discardLogger())
	member := NewClient("a", "u1", 4)
	outsider := NewClient("b", "u2", 4)
	hub.Register(member)
	hub.Register(outsider)
	hub.Subscribe(member, GroupChannel(7))

	hub.Route(Event{Type: EventNewPost, Channel: GroupChannel(7)})

	if evs := drain(t, member); len(evs) != 1 {
		t.Fatalf("subscriber: got %v", evs)
	}
	if evs := drain(t, outsider); len(evs) != 0 {
		t.Fatalf("non-subscriber must not receive channel events: %v", evs)
	}
}

func TestHubUnsubscribeAndDrop(t *testing.T) {
	hub := NewHub(discardLogger())
	c := NewClient("a", "u1", 4)
	hub.Register(c)
	hub.Subscribe(c, GroupChannel(7))

	hub.Unsubscribe(c, GroupChannel(7))
	hub.Route(Event{Type: EventNewPost, Channel: GroupChannel(7)})
	if evs := drain(t, c); len(evs) != 0 {
		t.Fatalf("after unsubscribe: got %v", evs)
	}

	hub.Drop(c)
	hub.Route(Event{Type: EventNewGroup})
	if evs := drain(t, c); len(evs) != 0 {
		t.Fatalf("after drop: got %v", evs)
	}
}

func TestHubDropsEventWhenQueueFull(t *testing.T) {
	hub := NewHub(discardLogger())
	c := NewClient("a", "u1", 1)
	hub.Register(c)

	hub.Route(Event{Type: EventNewGroup})
	// Queue is full now; this must not block.
	hub.Route(Event{Type: EventNewGroup})

	if evs := drain(t, c); len(evs) != 1 {
		t.Fatalf("expected exactly one delivered event, got %d", len(evs))
	}
}

func TestSubscribeUnknownClientIsNoop(t *testing.T) {
	hub := NewHub(discardLogger())
	c := NewClient("a", "u1", 4)
	// Not registered.
	hub.Subscribe(c, GroupChannel(1))

	hub.Route(Event{Type: EventNewPost, Channel: GroupChannel(1)})
	if evs := drain(t, c); len(evs) != 0 {
		t.Fatalf("unregistered client must not be subscribed: %v", evs)
	}
}
