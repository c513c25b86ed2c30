package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/scenepix/scenepix/internal/asset"
	"github.com/scenepix/scenepix/internal/fonts"
	"github.com/scenepix/scenepix/internal/scene"
)

// Renderer rasterizes scene documents to PNG. It holds only shared,
// concurrency-safe collaborators; all per-render state lives on a surface
// allocated inside Render, so one Renderer may serve many renders at once.
type Renderer struct {
	fonts  *fonts.Registry
	assets *asset.Loader
}

func NewRenderer(fonts *fonts.Registry, assets *asset.Loader) *Renderer {
	return &Renderer{fonts: fonts, assets: assets}
}

// Result is one finished render.
type Result struct {
	PNG    []byte
	Width  int
	Height int
}

// Render walks doc.Objects in document order, painting each node onto a
// fresh surface, and returns the PNG encoding. Image fetches are the only
// suspension points; a failed fetch paints a placeholder and rendering
// continues. Context cancellation and surface errors abort with no result.
func (r *Renderer) Render(ctx context.Context, doc *scene.Document) (*Result, error) {
	s := newSurface(doc.Width, doc.Height)
	s.dc.ClearWithColor(gg.FromColor(doc.Background))

	for _, node := range doc.Objects {
		if err := r.renderNode(ctx, s, node, gg.Point{}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &Result{PNG: buf.Bytes(), Width: doc.Width, Height: doc.Height}, nil
}

// renderNode paints one node. parent is the absolute top-left of the
// enclosing group's box, (0,0) at the document root. Groups establish a new
// parent point for their children and paint nothing themselves; their own
// angle and scale are not applied to children.
func (r *Renderer) renderNode(ctx context.Context, s *surface, node scene.Node, parent gg.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch n := node.(type) {
	case *scene.Group:
		x, y := ResolveOrigin(parent.X+n.Left, parent.Y+n.Top, n.Width, n.Height, n.OriginX, n.OriginY)
		for _, child := range n.Objects {
			if err := r.renderNode(ctx, s, child, gg.Pt(x, y)); err != nil {
				return err
			}
		}
		return nil

	case *scene.Text:
		return r.renderText(s, n, parent)

	case *scene.Image:
		return r.renderImage(ctx, s, n, parent)

	default:
		// Unrecognized node types paint nothing.
		return nil
	}
}

// nodeMatrix composes the transform placing a node's local box on the
// canvas: scale in the local frame, rotate about the local origin, then
// translate to the resolved absolute top-left. The resolved point is both
// the rotation pivot and the scale origin.
func nodeMatrix(x, y float64, b *scene.Base) gg.Matrix {
	m := gg.Translate(x, y)
	if b.Angle != 0 {
		m = m.Multiply(gg.Rotate(b.Angle * math.Pi / 180))
	}
	if b.ScaleX != 1 || b.ScaleY != 1 {
		m = m.Multiply(gg.Scale(b.ScaleX, b.ScaleY))
	}
	return m
}

// surface is the drawing target for a single render: a gg context for path
// fills plus a live image.RGBA view onto the same pixel buffer for affine
// compositing of glyph and bitmap sources. Owned by exactly one render.
type surface struct {
	dc  *gg.Context
	rgb *image.RGBA
}

func newSurface(w, h int) *surface {
	dc := gg.NewContext(w, h)
	pm := dc.ResizeTarget()
	return &surface{
		dc: dc,
		rgb: &image.RGBA{
			Pix:    pm.Data(),
			Stride: pm.Width() * 4,
			Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
		},
	}
}

// fillRect fills the w by h rectangle at the local origin of m. The context
// matrix is scoped with Push/Pop so nothing leaks to later nodes.
func (s *surface) fillRect(m gg.Matrix, w, h float64, col gg.RGBA) error {
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.SetTransform(m)
	s.dc.SetColor(col.Color())
	s.dc.DrawRectangle(0, 0, w, h)
	return s.dc.Fill()
}

// composite draws src onto the canvas under the affine transform m,
// bilinearly resampled and alpha blended over existing pixels. Degenerate
// transforms (zero scale) map the source to nothing and are skipped.
func (s *surface) composite(src image.Image, m gg.Matrix) {
	if math.Abs(m.A*m.E-m.B*m.D) < 1e-12 {
		return
	}
	xdraw.BiLinear.Transform(s.rgb, f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}, src, src.Bounds(), xdraw.Over, nil)
}
