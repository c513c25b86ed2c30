package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// Scene documents may inline data URIs, so frames run large.
	maxMsgSize = 32 << 20

	// PNG frames are heavy; a deep queue would just buffer stale previews.
	sendBuffer = 16
)

// Session is one connected preview client. Renders for a session run
// sequentially in its read pump, so a later request never overtakes an
// earlier one on the same connection.
type Session struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan frame
	SessionID string
}

// frame is one outbound websocket frame: envelopes are text, PNGs binary.
type frame struct {
	typ  websocket.MessageType
	data []byte
}

func NewSession(hub *Hub, conn *websocket.Conn, sessionID string) *Session {
	return &Session{
		hub:       hub,
		conn:      conn,
		send:      make(chan frame, sendBuffer),
		SessionID: sessionID,
	}
}

func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.hub.unregister(s)
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "session", s.SessionID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "session", s.SessionID)
			continue
		}

		s.hub.handleMessage(ctx, s, &msg)
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case f, ok := <-s.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, f.typ, f.data)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", s.SessionID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}
	s.enqueue(frame{typ: websocket.MessageText, data: data})
}

func (s *Session) SendBinary(data []byte) {
	s.enqueue(frame{typ: websocket.MessageBinary, data: data})
}

func (s *Session) sendError(seq int64, reason string) {
	payload, _ := json.Marshal(RenderErrorPayload{Reason: reason})
	s.Send(&Message{Type: TypeRenderError, Seq: seq, Payload: payload})
}

func (s *Session) enqueue(f frame) {
	select {
	case s.send <- f:
	default:
		slog.Warn("session send buffer full, dropping frame", "session", s.SessionID)
	}
}
