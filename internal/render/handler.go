package render

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/scenepix/scenepix/internal/history"
	"github.com/scenepix/scenepix/internal/output"
	"github.com/scenepix/scenepix/internal/scene"
	"github.com/scenepix/scenepix/internal/typeid"
)

// maxSceneBytes caps a scene document; inline data URIs make scenes big.
const maxSceneBytes = 32 << 20

// RenderResponse is returned from the render endpoint.
type RenderResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Handler serves the render endpoint: parse the posted scene, rasterize it,
// persist the PNG, and record the render in history.
type Handler struct {
	renderer *Renderer
	outputs  *output.Store
	store    history.Store
}

func NewHandler(renderer *Renderer, outputs *output.Store, store history.Store) *Handler {
	return &Handler{renderer: renderer, outputs: outputs, store: store}
}

// Render handles POST /api/render. Scene parse failures are the caller's
// fault and come back as 400 before any pixel is painted; render and
// storage failures are 500s.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSceneBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scene too large"})
		return
	}

	doc, err := scene.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	started := time.Now()
	result, err := h.renderer.Render(r.Context(), doc)
	if err != nil {
		slog.Error("render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	elapsed := time.Since(started)

	renderID := typeid.NewRenderID()
	url, err := h.outputs.Save(renderID, result.PNG)
	if err != nil {
		slog.Error("save render output", "error", err, "render", renderID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store output"})
		return
	}

	rec := history.Record{
		ID:          renderID,
		Width:       result.Width,
		Height:      result.Height,
		ObjectCount: len(doc.Objects),
		OutputURL:   url,
		ElapsedMs:   elapsed.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}
	// The PNG is already stored; losing the history row is not worth a 500.
	if err := h.store.Insert(r.Context(), rec); err != nil {
		slog.Error("record render history", "error", err, "render", renderID)
	}

	slog.Info("rendered scene",
		"render", renderID,
		"width", result.Width,
		"height", result.Height,
		"objects", len(doc.Objects),
		"elapsed", elapsed,
	)

	writeJSON(w, http.StatusOK, RenderResponse{
		ID:        renderID,
		URL:       url,
		Width:     result.Width,
		Height:    result.Height,
		ElapsedMs: elapsed.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
