package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/karkasai/karkasai-backend/internal/security"
)

const (
	gatewayWriteTimeout  = 5 * time.Second
	gatewayReadIdle      = 2 * time.Minute
	gatewayPingInterval  = 25 * time.Second
	gatewayPingTimeout   = 5 * time.Second
	gatewayMaxFrameBytes = 16 << 10
)

// clientCommand is the only frame clients send: channel membership changes.
type clientCommand struct {
	Action  string `json:"action"`
	GroupID uint   `json:"groupId"`
}

// Gateway upgrades HTTP requests to websocket sessions. A valid access token
// is required; the connection then receives broadcast events plus whatever
// group channels it joins.
type Gateway struct {
	log            *slog.Logger
	hub            *Hub
	codec          *security.TokenCodec
	originPatterns []string
}

func NewGateway(log *slog.Logger, hub *Hub, codec *security.TokenCodec, originPatterns []string) *Gateway {
	return &Gateway{log: log, hub: hub, codec: codec, originPatterns: originPatterns}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := g.codec.ParseAccessToken(bearerToken(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		g.log.Warn("websocket accept failed", "error", err)
		return
	}
	conn.SetReadLimit(gatewayMaxFrameBytes)

	client := NewClient(uuid.NewString(), claims.Subject, 0)
	g.hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var closeOnce sync.Once
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			g.hub.Drop(client)
			client.Close()
			_ = conn.Close(code, reason)
			cancel()
		})
	}
	defer shutdown(websocket.StatusNormalClosure, "bye")

	g.log.Info("websocket connected", "client_id", client.ID, "user_id", client.UserID)

	go g.writeLoop(ctx, conn, client, shutdown)
	go g.pingLoop(ctx, conn, client, shutdown)
	g.readLoop(ctx, conn, client, shutdown)
}

func (g *Gateway) writeLoop(ctx context.Context, conn *websocket.Conn, client *Client, shutdown func(websocket.StatusCode, string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			return
		case ev := <-client.Send:
			raw, err := json.Marshal(ev)
			if err != nil {
				g.log.Error("marshal outbound event", "error", err)
				continue
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, gatewayWriteTimeout)
			err = conn.Write(writeCtx, websocket.MessageText, raw)
			writeCancel()
			if err != nil {
				shutdown(websocket.StatusAbnormalClosure, "write failed")
				return
			}
		}
	}
}

func (g *Gateway) pingLoop(ctx context.Context, conn *websocket.Conn, client *Client, shutdown func(websocket.StatusCode, string)) {
	t := time.NewTicker(gatewayPingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			return
		case <-t.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, gatewayPingTimeout)
			err := conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				shutdown(websocket.StatusGoingAway, "heartbeat failed")
				return
			}
		}
	}
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn, client *Client, shutdown func(websocket.StatusCode, string)) {
	for {
		readCtx, readCancel := context.WithTimeout(ctx, gatewayReadIdle)
		_, raw, err := conn.Read(readCtx)
		readCancel()
		if err != nil {
			shutdown(websocket.StatusNormalClosure, "peer closed")
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			g.log.Warn("skip malformed client command", "client_id", client.ID, "error", err)
			continue
		}
		switch cmd.Action {
		case "join":
			g.hub.Subscribe(client, GroupChannel(cmd.GroupID))
		case "leave":
			g.hub.Unsubscribe(client, GroupChannel(cmd.GroupID))
		default:
			g.log.Warn("unknown client command", "client_id", client.ID, "action", cmd.Action)
		}
	}
}

// bearerToken pulls the access token from the Authorization header or, for
// browser websocket clients that cannot set headers, the access_token query
// parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return token
		}
	}
	return r.URL.Query().Get("access_token")
}
