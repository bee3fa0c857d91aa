package service

import "context"

// Notifier fans group activity out to connected clients. The realtime package
// provides the redis-backed implementation; NoopNotifier serves deployments
// that run without a broker.
type Notifier interface {
	NotifyNewGroup(ctx context.Context, group GroupView)
	NotifyNewPost(ctx context.Context, groupID uint, groupTitle string, post PostView)
	NotifyPostUpdated(ctx context.Context, groupID uint, post PostView)
	NotifyPostDeleted(ctx context.Context, groupID, postID uint)
	NotifyNewComment(ctx context.Context, groupID, postID uint, comment CommentView)
}

type NoopNotifier struct{}

func (NoopNotifier) NotifyNewGroup(context.Context, GroupView)                 {}
func (NoopNotifier) NotifyNewPost(context.Context, uint, string, PostView)     {}
func (NoopNotifier) NotifyPostUpdated(context.Context, uint, PostView)         {}
func (NoopNotifier) NotifyPostDeleted(context.Context, uint, uint)             {}
func (NoopNotifier) NotifyNewComment(context.Context, uint, uint, CommentView) {}
