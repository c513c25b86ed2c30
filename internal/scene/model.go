package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
)

// Canvas defaults and bounds. Dimensions outside 1..MaxDimension are
// rejected at parse time so surface allocation can never fail mid-render.
const (
	DefaultWidth  = 800
	DefaultHeight = 700
	MaxDimension  = 8192
)

// Text defaults.
const (
	DefaultFontSize   = 16.0
	DefaultFontFamily = "Arial"
	DefaultFontWeight = "normal"
)

var ErrMissingObjects = errors.New("document has no objects array")

// OriginX names the horizontal anchor point within a node's box that the
// node's left coordinate designates.
type OriginX int

const (
	OriginLeft OriginX = iota
	OriginCenterX
	OriginRight
)

// OriginY names the vertical anchor point within a node's box that the
// node's top coordinate designates.
type OriginY int

const (
	OriginTop OriginY = iota
	OriginCenterY
	OriginBottom
)

// Document is a fully parsed scene: canvas size, background, and the
// ordered node tree. Later nodes paint over earlier ones. A Document is
// read-only once parsed; rendering never mutates it.
type Document struct {
	Width      int
	Height     int
	Background color.RGBA
	Objects    []Node
}

// Node is one element of the scene tree. The set of implementations is
// closed: Group, Text, Image, and Unknown. Unknown preserves nodes with
// unrecognized type tags so the format can evolve without breaking older
// renderers; they draw nothing. Consumers branch on the concrete type.
type Node interface {
	node()
}

// Base holds the positioning fields shared by every node variant. All
// defaults are applied at parse time: absent scale factors become 1, but an
// explicit zero stays zero (a degenerate node that draws nothing).
type Base struct {
	Left    float64
	Top     float64
	Width   float64
	Height  float64
	OriginX OriginX
	OriginY OriginY
	ScaleX  float64
	ScaleY  float64
	Angle   float64 // degrees, clockwise, about the resolved origin point
}

func (b *Base) node() {}

// Group positions its children relative to its own resolved top-left.
// A group's scale and angle are not inherited by children; only its
// resolved translation is.
type Group struct {
	Base
	Objects []Node
}

// Text is a single-line text node. Both "text" and "i-text" scene types
// parse to Text.
type Text struct {
	Base
	Text       string
	FontSize   float64
	FontFamily string
	FontWeight string
	Fill       color.RGBA
}

// Image references a bitmap by src: a data: URI, an http(s) URL, or a path
// under the configured asset directory.
type Image struct {
	Base
	Src string
}

// Unknown carries an unrecognized node opaquely.
type Unknown struct {
	Base
	Type string
	Raw  json.RawMessage
}

type rawDocument struct {
	Width           *float64        `json:"width"`
	Height          *float64        `json:"height"`
	BackgroundColor *string         `json:"backgroundColor"`
	Objects         json.RawMessage `json:"objects"`
}

type rawNode struct {
	Type    string   `json:"type"`
	Left    float64  `json:"left"`
	Top     float64  `json:"top"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	OriginX string   `json:"originX"`
	OriginY string   `json:"originY"`
	ScaleX  *float64 `json:"scaleX"`
	ScaleY  *float64 `json:"scaleY"`
	Angle   float64  `json:"angle"`

	// group
	Objects []json.RawMessage `json:"objects"`

	// text / i-text
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	FontWeight string  `json:"fontWeight"`
	Fill       string  `json:"fill"`

	// image
	Src string `json:"src"`
}

// Parse decodes a scene document, applying every field default exactly once.
// A missing or non-array objects field is an input validation error; no
// partial document is returned.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if len(raw.Objects) == 0 || string(raw.Objects) == "null" {
		return nil, ErrMissingObjects
	}
	var rawNodes []json.RawMessage
	if err := json.Unmarshal(raw.Objects, &rawNodes); err != nil {
		return nil, fmt.Errorf("objects must be an array: %w", err)
	}

	doc := &Document{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
	if raw.Width != nil {
		doc.Width = int(math.Round(*raw.Width))
	}
	if raw.Height != nil {
		doc.Height = int(math.Round(*raw.Height))
	}
	if doc.Width < 1 || doc.Width > MaxDimension {
		return nil, fmt.Errorf("width %d out of range 1..%d", doc.Width, MaxDimension)
	}
	if doc.Height < 1 || doc.Height > MaxDimension {
		return nil, fmt.Errorf("height %d out of range 1..%d", doc.Height, MaxDimension)
	}
	if raw.BackgroundColor != nil {
		if c, ok := ParseColor(*raw.BackgroundColor); ok {
			doc.Background = c
		}
	}

	doc.Objects = make([]Node, 0, len(rawNodes))
	for i, rn := range rawNodes {
		node, err := parseNode(rn)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		doc.Objects = append(doc.Objects, node)
	}

	return doc, nil
}

func parseNode(data json.RawMessage) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}

	base := Base{
		Left:    raw.Left,
		Top:     raw.Top,
		Width:   raw.Width,
		Height:  raw.Height,
		OriginX: parseOriginX(raw.OriginX),
		OriginY: parseOriginY(raw.OriginY),
		ScaleX:  1,
		ScaleY:  1,
		Angle:   raw.Angle,
	}
	if raw.ScaleX != nil {
		base.ScaleX = *raw.ScaleX
	}
	if raw.ScaleY != nil {
		base.ScaleY = *raw.ScaleY
	}

	switch raw.Type {
	case "group":
		children := make([]Node, 0, len(raw.Objects))
		for i, rc := range raw.Objects {
			child, err := parseNode(rc)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			children = append(children, child)
		}
		return &Group{Base: base, Objects: children}, nil

	case "text", "i-text":
		t := &Text{
			Base:       base,
			Text:       raw.Text,
			FontSize:   raw.FontSize,
			FontFamily: raw.FontFamily,
			FontWeight: raw.FontWeight,
			Fill:       color.RGBA{A: 0xff},
		}
		if t.FontSize <= 0 {
			t.FontSize = DefaultFontSize
		}
		if t.FontFamily == "" {
			t.FontFamily = DefaultFontFamily
		}
		if t.FontWeight == "" {
			t.FontWeight = DefaultFontWeight
		}
		if raw.Fill != "" {
			if c, ok := ParseColor(raw.Fill); ok {
				t.Fill = c
			}
		}
		return t, nil

	case "image":
		return &Image{Base: base, Src: raw.Src}, nil

	default:
		return &Unknown{
			Base: base,
			Type: raw.Type,
			Raw:  append(json.RawMessage(nil), data...),
		}, nil
	}
}

func parseOriginX(s string) OriginX {
	switch s {
	case "center":
		return OriginCenterX
	case "right":
		return OriginRight
	default:
		return OriginLeft
	}
}

func parseOriginY(s string) OriginY {
	switch s {
	case "center":
		return OriginCenterY
	case "bottom":
		return OriginBottom
	default:
		return OriginTop
	}
}
