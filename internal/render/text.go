package render

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/scenepix/scenepix/internal/scene"
)

// renderText paints a single-line text node. The measured extent doubles as
// the anchor box for any dimension the node leaves unset, so centered text
// stays centered regardless of string length.
func (r *Renderer) renderText(s *surface, n *scene.Text, parent gg.Point) error {
	if n.Text == "" {
		return nil
	}

	face := r.fonts.Face(n.FontFamily, n.FontWeight, n.FontSize)
	advance, lineHeight := text.Measure(n.Text, face)
	if advance <= 0 || lineHeight <= 0 {
		return nil
	}

	w, h := n.Width, n.Height
	if w == 0 {
		w = advance
	}
	if h == 0 {
		h = lineHeight
	}

	x, y := ResolveOrigin(parent.X+n.Left, parent.Y+n.Top, w, h, n.OriginX, n.OriginY)
	s.drawText(n.Text, face, n.Fill, nodeMatrix(x, y, &n.Base))
	return nil
}

// drawText rasterizes one line of glyphs into a transparent scratch buffer
// with the baseline at the face ascent, then composites the buffer under m.
// Glyph drawing itself is untransformed, so rotation and scale come entirely
// from the affine composite. The buffer is padded past the measured advance
// because hinted glyph positioning can run fractionally wide; the padding is
// transparent and never paints.
func (s *surface) drawText(str string, face text.Face, fill color.Color, m gg.Matrix) {
	advance, lineHeight := text.Measure(str, face)
	if advance <= 0 || lineHeight <= 0 {
		return
	}
	w := int(math.Ceil(advance)) + 2
	h := int(math.Ceil(lineHeight)) + 1

	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	text.Draw(scratch, str, face, 0, face.Metrics().Ascent, fill)
	s.composite(scratch, m)
}
