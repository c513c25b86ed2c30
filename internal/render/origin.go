package render

import "github.com/scenepix/scenepix/internal/scene"

// ResolveOrigin converts an anchor-relative position into the absolute
// top-left corner of a w by h box. Left/top anchors pass coordinates
// through unchanged; center and right/bottom anchors shift the box so the
// named point of the box lands on (left, top).
func ResolveOrigin(left, top, w, h float64, ox scene.OriginX, oy scene.OriginY) (x, y float64) {
	x = left
	switch ox {
	case scene.OriginCenterX:
		x = left - w/2
	case scene.OriginRight:
		x = left - w
	}

	y = top
	switch oy {
	case scene.OriginCenterY:
		y = top - h/2
	case scene.OriginBottom:
		y = top - h
	}
	return x, y
}
