package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/scenepix/scenepix/internal/render"
	"github.com/scenepix/scenepix/internal/scene"
)

// Hub tracks live preview sessions and renders the scenes they post. Each
// session renders sequentially in its own read pump; the hub run loop only
// handles membership, so a slow render never blocks other sessions.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	registerCh   chan *Session
	unregisterCh chan *Session
	stop         chan struct{}
	stopped      chan struct{}
	renderer     *render.Renderer
}

func NewHub(renderer *render.Renderer) *Hub {
	return &Hub{
		sessions:     make(map[string]*Session),
		registerCh:   make(chan *Session),
		unregisterCh: make(chan *Session),
		stop:         make(chan struct{}),
		stopped:      make(chan struct{}),
		renderer:     renderer,
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case s := <-h.registerCh:
			h.addSession(s)
		case s := <-h.unregisterCh:
			h.removeSession(s)
		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

// Stop closes every session and waits for the run loop to exit. Called
// during graceful shutdown.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

func (h *Hub) Register(s *Session) {
	select {
	case h.registerCh <- s:
	case <-h.stopped:
		s.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// unregister is called from a session's read pump as it exits. After Stop
// the run loop is gone, so fall through rather than block forever.
func (h *Hub) unregister(s *Session) {
	select {
	case h.unregisterCh <- s:
	case <-h.stopped:
	}
}

// SessionCount reports the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	h.sessions[s.SessionID] = s
	h.mu.Unlock()

	payload, _ := json.Marshal(WelcomePayload{SessionID: s.SessionID})
	s.Send(&Message{Type: TypeWelcome, Payload: payload})

	slog.Info("preview session opened", "session", s.SessionID)
}

func (h *Hub) removeSession(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.SessionID]
	if ok {
		delete(h.sessions, s.SessionID)
		close(s.send)
	}
	h.mu.Unlock()

	if ok {
		slog.Info("preview session closed", "session", s.SessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.sessions {
		delete(h.sessions, id)
		close(s.send)
		s.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (h *Hub) handleMessage(ctx context.Context, s *Session, msg *Message) {
	switch msg.Type {
	case TypeRenderRequest:
		h.handleRenderRequest(ctx, s, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", s.SessionID)
	}
}

// handleRenderRequest parses and renders the scene carried in the request
// payload, then sends the PNG as a binary frame followed by a render.done
// envelope echoing the request seq.
func (h *Hub) handleRenderRequest(ctx context.Context, s *Session, msg *Message) {
	doc, err := scene.Parse(msg.Payload)
	if err != nil {
		s.sendError(msg.Seq, err.Error())
		return
	}

	started := time.Now()
	result, err := h.renderer.Render(ctx, doc)
	if err != nil {
		slog.Error("preview render failed", "error", err, "session", s.SessionID)
		s.sendError(msg.Seq, "render failed")
		return
	}

	s.SendBinary(result.PNG)

	payload, _ := json.Marshal(RenderDonePayload{
		Width:     result.Width,
		Height:    result.Height,
		ElapsedMs: time.Since(started).Milliseconds(),
	})
	s.Send(&Message{Type: TypeRenderDone, Seq: msg.Seq, Payload: payload})
}
