package scene

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor interprets a CSS-style color string: #RGB, #RGBA, #RRGGBB, and
// #RRGGBBAA hex forms, rgb()/rgba() functional forms, and SVG 1.1 named
// colors. Returns false for anything it cannot parse; callers fall back to
// the field's default.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, false
	}

	lower := strings.ToLower(s)
	switch {
	case s[0] == '#':
		return parseHex(s[1:])
	case strings.HasPrefix(lower, "rgba("):
		return parseRGBFunc(lower[5:], true)
	case strings.HasPrefix(lower, "rgb("):
		return parseRGBFunc(lower[4:], false)
	default:
		c, ok := colornames.Map[lower]
		return c, ok
	}
}

func parseHex(hex string) (color.RGBA, bool) {
	var r, g, b uint32
	a := uint32(255)

	switch len(hex) {
	case 3:
		if !hexByte(hex[0:1], &r) || !hexByte(hex[1:2], &g) || !hexByte(hex[2:3], &b) {
			return color.RGBA{}, false
		}
		r, g, b = r*17, g*17, b*17
	case 4:
		if !hexByte(hex[0:1], &r) || !hexByte(hex[1:2], &g) || !hexByte(hex[2:3], &b) || !hexByte(hex[3:4], &a) {
			return color.RGBA{}, false
		}
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		if !hexByte(hex[0:2], &r) || !hexByte(hex[2:4], &g) || !hexByte(hex[4:6], &b) {
			return color.RGBA{}, false
		}
	case 8:
		if !hexByte(hex[0:2], &r) || !hexByte(hex[2:4], &g) || !hexByte(hex[4:6], &b) || !hexByte(hex[6:8], &a) {
			return color.RGBA{}, false
		}
	default:
		return color.RGBA{}, false
	}

	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, true
}

func hexByte(s string, val *uint32) bool {
	n, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return false
	}
	*val = uint32(n)
	return true
}

// parseRGBFunc parses the comma-separated body of rgb(...) or rgba(...).
// The rgba alpha component is a CSS fraction in 0..1.
func parseRGBFunc(s string, hasAlpha bool) (color.RGBA, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ")")
	parts := strings.Split(s, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return color.RGBA{}, false
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return color.RGBA{}, false
		}
		rgb[i] = uint8(n)
	}

	a := uint8(255)
	if hasAlpha {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return color.RGBA{}, false
		}
		a = uint8(math.Round(f * 255))
	}

	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: a}, true
}
