package scene

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
)

// NewSampleDocument returns the built-in demo scene. It exercises every node
// variant: anchored text, a rotated caption, a center-anchored group with
// children, and an embedded data: URI image, so a render of it touches each
// drawing path without any external resources.
func NewSampleDocument() *Document {
	return &Document{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff},
		Objects: []Node{
			&Text{
				Base: Base{
					Left: 400, Top: 120,
					OriginX: OriginCenterX, OriginY: OriginCenterY,
					ScaleX: 1, ScaleY: 1,
				},
				Text:       "scenepix",
				FontSize:   48,
				FontFamily: DefaultFontFamily,
				FontWeight: "bold",
				Fill:       color.RGBA{R: 0xe9, G: 0x45, B: 0x60, A: 0xff},
			},
			&Text{
				Base: Base{
					Left: 400, Top: 170,
					OriginX: OriginCenterX,
					ScaleX:  1, ScaleY: 1,
					Angle: -4,
				},
				Text:       "origin-aware scene rendering",
				FontSize:   DefaultFontSize,
				FontFamily: DefaultFontFamily,
				FontWeight: DefaultFontWeight,
				Fill:       color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff},
			},
			&Group{
				Base: Base{
					Left: 400, Top: 420,
					Width: 320, Height: 200,
					OriginX: OriginCenterX, OriginY: OriginCenterY,
					ScaleX: 1, ScaleY: 1,
				},
				Objects: []Node{
					&Image{
						Base: Base{
							Left: 160, Top: 70,
							Width: 96, Height: 96,
							OriginX: OriginCenterX, OriginY: OriginCenterY,
							ScaleX: 1, ScaleY: 1,
							Angle:  12,
						},
						Src: sampleSwatchURI(),
					},
					&Text{
						Base: Base{
							Left: 160, Top: 160,
							OriginX: OriginCenterX,
							ScaleX:  1, ScaleY: 1,
						},
						Text:       "group-anchored swatch",
						FontSize:   14,
						FontFamily: DefaultFontFamily,
						FontWeight: DefaultFontWeight,
						Fill:       color.RGBA{R: 0x0f, G: 0x34, B: 0x60, A: 0xff},
					},
				},
			},
		},
	}
}

// sampleSwatchURI encodes a small two-tone checker as a PNG data: URI so the
// sample renders without network or filesystem access.
func sampleSwatchURI() string {
	const side = 48
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	light := color.NRGBA{R: 0xe9, G: 0x45, B: 0x60, A: 0xff}
	dark := color.NRGBA{R: 0x0f, G: 0x34, B: 0x60, A: 0xff}
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if (x/12+y/12)%2 == 0 {
				img.SetNRGBA(x, y, light)
			} else {
				img.SetNRGBA(x, y, dark)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory NRGBA to a buffer cannot fail.
		panic(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
