package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"football-pulse/internal/scoreboard"
	"football-pulse/internal/scores"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 512
)

// ClientMessage selects a tab: {"tab":"live"}.
type ClientMessage struct {
	Tab string `json:"tab"`
}

// Frame is pushed to the viewer on every scoreboard change.
type Frame struct {
	Type string `json:"type"`
	scoreboard.Snapshot
}

// wsClient is one websocket viewer with its own scoreboard.
type wsClient struct {
	conn    *websocket.Conn
	board   *scoreboard.Board
	changed chan struct{}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("web: websocket upgrade failed", "error", err)
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &wsClient{conn: conn, changed: make(chan struct{}, 1)}
	c.board = scoreboard.New(s.scores, s.opts.PollInterval, func(scoreboard.Snapshot) {
		select {
		case c.changed <- struct{}{}:
		default:
		}
	})
	slog.Info("web: websocket connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump(ctx)
		// unblocks readPump when the writer gives up first
		conn.Close()
	}()

	// an initial frame shows the idle board, or the requested tab
	if kind, ok := scores.ParseKind(r.URL.Query().Get("tab")); ok {
		c.board.Select(ctx, kind)
	} else {
		c.notify()
	}

	c.readPump(ctx)
	cancel()
	c.board.Close()
	<-done
	slog.Info("web: websocket disconnected", "remote", r.RemoteAddr)
}

func (c *wsClient) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

func (c *wsClient) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("web: websocket read error", "error", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("web: ignore malformed client message", "error", err)
			continue
		}
		kind, ok := scores.ParseKind(msg.Tab)
		if !ok {
			slog.Debug("web: ignore unknown tab", "tab", msg.Tab)
			continue
		}
		c.board.Select(ctx, kind)
	}
}

// writePump sends the latest snapshot after each change; intermediate states may be coalesced.
func (c *wsClient) writePump(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case <-c.changed:
			snap := c.board.Snapshot()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(Frame{Type: "scores", Snapshot: snap}); err != nil {
				slog.Warn("web: websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
