package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenepix/scenepix/internal/asset"
	"github.com/scenepix/scenepix/internal/fonts"
	"github.com/scenepix/scenepix/internal/render"
	"github.com/scenepix/scenepix/internal/typeid"
)

func newPreviewServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	reg, err := fonts.NewRegistry()
	require.NoError(t, err)
	renderer := render.NewRenderer(reg, asset.NewLoader(t.TempDir()))

	hub := NewHub(renderer)
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		s := NewSession(hub, conn, typeid.NewSessionID())
		hub.Register(s)
		go s.WritePump(r.Context())
		s.ReadPump(r.Context())
	}))
	t.Cleanup(srv.Close)

	return hub, srv
}

func dialPreview(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	conn.SetReadLimit(1 << 24)
	return conn
}

// readFrame reads the next frame: text frames come back decoded as the
// first value, binary frames raw as the second.
func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) (*Message, []byte) {
	t.Helper()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)

	if typ == websocket.MessageBinary {
		return nil, data
	}
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return &msg, nil
}

func TestHubWelcome(t *testing.T) {
	_, srv := newPreviewServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialPreview(t, ctx, srv)
	defer conn.Close(websocket.StatusNormalClosure, "")

	msg, _ := readFrame(t, ctx, conn)
	require.NotNil(t, msg)
	require.Equal(t, TypeWelcome, msg.Type)

	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &welcome))
	assert.True(t, strings.HasPrefix(welcome.SessionID, "sess_"), "got %q", welcome.SessionID)
}

func TestHubRenderRoundTrip(t *testing.T) {
	_, srv := newPreviewServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialPreview(t, ctx, srv)
	defer conn.Close(websocket.StatusNormalClosure, "")

	msg, _ := readFrame(t, ctx, conn)
	require.Equal(t, TypeWelcome, msg.Type)

	req := Message{
		Type:    TypeRenderRequest,
		Seq:     7,
		Payload: json.RawMessage(`{"width":40,"height":30,"objects":[]}`),
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))

	// The PNG arrives as a binary frame, then the done envelope echoes
	// the request seq.
	msg, bin := readFrame(t, ctx, conn)
	require.Nil(t, msg, "expected a binary PNG frame first")
	img, err := png.Decode(bytes.NewReader(bin))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	msg, _ = readFrame(t, ctx, conn)
	require.NotNil(t, msg)
	assert.Equal(t, TypeRenderDone, msg.Type)
	assert.Equal(t, int64(7), msg.Seq)

	var done RenderDonePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &done))
	assert.Equal(t, 40, done.Width)
	assert.Equal(t, 30, done.Height)
}

func TestHubRenderErrorForBadScene(t *testing.T) {
	_, srv := newPreviewServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialPreview(t, ctx, srv)
	defer conn.Close(websocket.StatusNormalClosure, "")

	msg, _ := readFrame(t, ctx, conn)
	require.Equal(t, TypeWelcome, msg.Type)

	req := Message{
		Type:    TypeRenderRequest,
		Seq:     3,
		Payload: json.RawMessage(`{"width":100}`),
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))

	msg, _ = readFrame(t, ctx, conn)
	require.NotNil(t, msg)
	assert.Equal(t, TypeRenderError, msg.Type)
	assert.Equal(t, int64(3), msg.Seq)

	var perr RenderErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &perr))
	assert.Contains(t, perr.Reason, "objects")
}

func TestHubSessionLifecycle(t *testing.T) {
	hub, srv := newPreviewServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialPreview(t, ctx, srv)
	msg, _ := readFrame(t, ctx, conn)
	require.Equal(t, TypeWelcome, msg.Type)
	assert.Equal(t, 1, hub.SessionCount())

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool {
		return hub.SessionCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
