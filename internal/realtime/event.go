package realtime

import (
	"encoding/json"
	"fmt"
)

// Event names mirror the client-side handlers.
const (
	EventNewGroup    = "NewGroup"
	EventNewPost     = "NewPost"
	EventPostUpdated = "PostUpdated"
	EventPostDeleted = "PostDeleted"
	EventNewComment  = "NewComment"
)

// Event is the wire shape delivered to websocket clients. An empty Channel
// means broadcast to every connected client.
type Event struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// GroupChannel names the per-group fanout channel.
func GroupChannel(groupID uint) string {
	return fmt.Sprintf("group-%d", groupID)
}
