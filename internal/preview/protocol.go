package preview

import "encoding/json"

// Message types. The client drives with render.request; the server answers
// each request with a binary PNG frame followed by render.done, or with
// render.error when the scene cannot be rendered.
const (
	TypeWelcome       = "welcome"
	TypeRenderRequest = "render.request"
	TypeRenderDone    = "render.done"
	TypeRenderError   = "render.error"
)

// Message is the JSON envelope for preview text frames. Seq is chosen by
// the client and echoed on the response so overlapping requests can be
// told apart.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
}

// RenderDonePayload describes the binary PNG frame sent immediately before
// the render.done envelope.
type RenderDonePayload struct {
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	ElapsedMs int64 `json:"elapsedMs"`
}

type RenderErrorPayload struct {
	Reason string `json:"reason"`
}
