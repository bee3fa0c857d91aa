package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/karkasai/karkasai-backend/internal/service"
)

func newRedisClientForTest(t *testing.T) *redis.Client {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return client
}

func TestPublisherBridgeDeliversToSubscribedClient(t *testing.T) {
	rdb := newRedisClientForTest(t)
	log := discardLogger()
	hub := NewHub(log)

	client := NewClient("a", "u1", 8)
	hub.Register(client)
	hub.Subscribe(client, GroupChannel(7))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewBridge(rdb, hub, "", log)
	bridgeDone := make(chan error, 1)
	go func() { bridgeDone <- bridge.Run(ctx) }()

	publisher := NewPublisher(rdb, "", log)
	post := service.PostView{ID: 1, Title: "hello", GroupID: 7}

	// The bridge subscribes asynchronously; republish until delivery.
	deadline := time.After(5 * time.Second)
	for {
		publisher.NotifyNewPost(ctx, 7, "my group", post)
		select {
		case ev := <-client.Send:
			if ev.Type != EventNewPost || ev.Channel != GroupChannel(7) {
				t.Fatalf("unexpected event %+v", ev)
			}
			var payload struct {
				GroupTitle string           `json:"groupTitle"`
				Post       service.PostView `json:"post"`
			}
			if err := json.Unmarshal(ev.Payload, &payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if payload.GroupTitle != "my group" || payload.Post.Title != "hello" {
				t.Fatalf("unexpected payload %+v", payload)
			}
			cancel()
			<-bridgeDone
			return
		case <-deadline:
			t.Fatal("event never delivered through the bridge")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestBridgeSkipsMalformedMessages(t *testing.T) {
	rdb := newRedisClientForTest(t)
	log := discardLogger()
	hub := NewHub(log)

	client := NewClient("a", "u1", 8)
	hub.Register(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewBridge(rdb, hub, "", log)
	go func() { _ = bridge.Run(ctx) }()

	publisher := NewPublisher(rdb, "", log)
	group := service.GroupView{ID: 1, Title: "g"}

	deadline := time.After(5 * time.Second)
	for {
		// Garbage first; the loop must survive it and keep delivering.
		rdb.Publish(ctx, DefaultPubSubChannel, "not json")
		publisher.NotifyNewGroup(ctx, group)
		select {
		case ev := <-client.Send:
			if ev.Type != EventNewGroup {
				t.Fatalf("unexpected event %+v", ev)
			}
			return
		case <-deadline:
			t.Fatal("event never delivered")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
