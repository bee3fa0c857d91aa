package realtime

import "sync"

const defaultSendQueueSize = 64

// Client is one connected websocket session.
//
// Send is never closed by the hub; broadcasters may be writing concurrently.
// done signals the connection goroutines to stop and Close is idempotent.
type Client struct {
	ID     string
	UserID string
	Send   chan Event

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id, userID string, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	return &Client{
		ID:     id,
		UserID: userID,
		Send:   make(chan Event, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Done is closed when the client is shutting down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close signals the client goroutines to stop. It does not close Send.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
