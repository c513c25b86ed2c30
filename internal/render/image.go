package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/scenepix/scenepix/internal/scene"
)

const (
	placeholderSize     = 100.0
	placeholderLabel    = "Image Error"
	placeholderFontSize = 12.0
	placeholderInset    = 8.0
)

var (
	placeholderFill = gg.Hex("#CCCCCC")
	placeholderInk  = gg.Hex("#333333")
)

// renderImage paints a bitmap node. Declared width/height set both the
// anchor box and the painted size; either left unset falls back to the
// decoded intrinsic size. A failed load paints the placeholder instead and
// is never fatal, except when the failure is the context being canceled.
func (r *Renderer) renderImage(ctx context.Context, s *surface, n *scene.Image, parent gg.Point) error {
	if n.Src == "" {
		return nil
	}

	img, err := r.assets.Load(ctx, n.Src)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("load image %q: %w", n.Src, ctx.Err())
		}
		slog.Warn("image load failed, painting placeholder", "src", truncateSrc(n.Src), "error", err)
		return r.drawPlaceholder(s, n, parent)
	}

	bounds := img.Bounds()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	if iw <= 0 || ih <= 0 {
		slog.Warn("image decoded to zero pixels, painting placeholder", "src", truncateSrc(n.Src))
		return r.drawPlaceholder(s, n, parent)
	}

	w, h := n.Width, n.Height
	if w == 0 {
		w = iw
	}
	if h == 0 {
		h = ih
	}

	x, y := ResolveOrigin(parent.X+n.Left, parent.Y+n.Top, w, h, n.OriginX, n.OriginY)
	m := nodeMatrix(x, y, &n.Base).Multiply(gg.Scale(w/iw, h/ih))
	s.composite(img, m)
	return nil
}

// drawPlaceholder paints the substitute for an unloadable image: a gray
// rectangle filling the node's box with a small fixed-size label inset from
// its top-left corner. The node's transform applies to both.
func (r *Renderer) drawPlaceholder(s *surface, n *scene.Image, parent gg.Point) error {
	w, h := n.Width, n.Height
	if w == 0 {
		w = placeholderSize
	}
	if h == 0 {
		h = placeholderSize
	}

	x, y := ResolveOrigin(parent.X+n.Left, parent.Y+n.Top, w, h, n.OriginX, n.OriginY)
	m := nodeMatrix(x, y, &n.Base)

	if err := s.fillRect(m, w, h, placeholderFill); err != nil {
		return fmt.Errorf("fill placeholder: %w", err)
	}

	face := r.fonts.Face(scene.DefaultFontFamily, scene.DefaultFontWeight, placeholderFontSize)
	s.drawText(placeholderLabel, face, placeholderInk.Color(), m.Multiply(gg.Translate(placeholderInset, placeholderInset)))
	return nil
}

// truncateSrc keeps log lines readable when src is a multi-kilobyte data URI.
func truncateSrc(src string) string {
	if len(src) > 96 {
		return src[:96] + "..."
	}
	return src
}
