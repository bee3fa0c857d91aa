package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/karkasai/karkasai-backend/internal/observability"
	"github.com/karkasai/karkasai-backend/internal/service"
)

// DefaultPubSubChannel is the redis channel all instances share.
const DefaultPubSubChannel = "karkasai:events"

type newPostPayload struct {
	GroupTitle string           `json:"groupTitle"`
	Post       service.PostView `json:"post"`
}

type postDeletedPayload struct {
	PostID uint `json:"postId"`
}

type newCommentPayload struct {
	PostID  uint                `json:"postId"`
	Comment service.CommentView `json:"comment"`
}

func newEvent(log *slog.Logger, eventType, channel string, payload any) (Event, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshal realtime payload", "event", eventType, "error", err)
		return Event{}, false
	}
	return Event{Type: eventType, Channel: channel, Payload: raw}, true
}

// Publisher implements service.Notifier by publishing events to redis so
// every instance's bridge can fan them out to its local websocket clients.
type Publisher struct {
	rdb     redis.UniversalClient
	channel string
	log     *slog.Logger
}

func NewPublisher(rdb redis.UniversalClient, channel string, log *slog.Logger) *Publisher {
	if channel == "" {
		channel = DefaultPubSubChannel
	}
	return &Publisher{rdb: rdb, channel: channel, log: log}
}

func (p *Publisher) publish(ctx context.Context, ev Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal realtime event", "event", ev.Type, "error", err)
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		p.log.Error("publish realtime event", "event", ev.Type, "error", err)
		return
	}
	observability.RecordRealtimeEvent(ctx, ev.Type)
}

func (p *Publisher) NotifyNewGroup(ctx context.Context, group service.GroupView) {
	if ev, ok := newEvent(p.log, EventNewGroup, "", group); ok {
		p.publish(ctx, ev)
	}
}

func (p *Publisher) NotifyNewPost(ctx context.Context, groupID uint, groupTitle string, post service.PostView) {
	if ev, ok := newEvent(p.log, EventNewPost, GroupChannel(groupID), newPostPayload{GroupTitle: groupTitle, Post: post}); ok {
		p.publish(ctx, ev)
	}
}

func (p *Publisher) NotifyPostUpdated(ctx context.Context, groupID uint, post service.PostView) {
	if ev, ok := newEvent(p.log, EventPostUpdated, GroupChannel(groupID), post); ok {
		p.publish(ctx, ev)
	}
}

func (p *Publisher) NotifyPostDeleted(ctx context.Context, groupID, postID uint) {
	if ev, ok := newEvent(p.log, EventPostDeleted, GroupChannel(groupID), postDeletedPayload{PostID: postID}); ok {
		p.publish(ctx, ev)
	}
}

func (p *Publisher) NotifyNewComment(ctx context.Context, groupID, postID uint, comment service.CommentView) {
	if ev, ok := newEvent(p.log, EventNewComment, GroupChannel(groupID), newCommentPayload{PostID: postID, Comment: comment}); ok {
		p.publish(ctx, ev)
	}
}

// LocalNotifier implements service.Notifier by routing straight into the
// local hub. Used when no redis broker is configured; events then only reach
// clients connected to this instance.
type LocalNotifier struct {
	hub *Hub
	log *slog.Logger
}

func NewLocalNotifier(hub *Hub, log *slog.Logger) *LocalNotifier {
	return &LocalNotifier{hub: hub, log: log}
}

func (n *LocalNotifier) route(ctx context.Context, ev Event) {
	n.hub.Route(ev)
	observability.RecordRealtimeEvent(ctx, ev.Type)
}

func (n *LocalNotifier) NotifyNewGroup(ctx context.Context, group service.GroupView) {
	if ev, ok := newEvent(n.log, EventNewGroup, "", group); ok {
		n.route(ctx, ev)
	}
}

func (n *LocalNotifier) NotifyNewPost(ctx context.Context, groupID uint, groupTitle string, post service.PostView) {
	if ev, ok := newEvent(n.log, EventNewPost, GroupChannel(groupID), newPostPayload{GroupTitle: groupTitle, Post: post}); ok {
		n.route(ctx, ev)
	}
}

func (n *LocalNotifier) NotifyPostUpdated(ctx context.Context, groupID uint, post service.PostView) {
	if ev, ok := newEvent(n.log, EventPostUpdated, GroupChannel(groupID), post); ok {
		n.route(ctx, ev)
	}
}

func (n *LocalNotifier) NotifyPostDeleted(ctx context.Context, groupID, postID uint) {
	if ev, ok := newEvent(n.log, EventPostDeleted, GroupChannel(groupID), postDeletedPayload{PostID: postID}); ok {
		n.route(ctx, ev)
	}
}

func (n *LocalNotifier) NotifyNewComment(ctx context.Context, groupID, postID uint, comment service.CommentView) {
	if ev, ok := newEvent(n.log, EventNewComment, GroupChannel(groupID), newCommentPayload{PostID: postID, Comment: comment}); ok {
		n.route(ctx, ev)
	}
}
