// Package pano models the orientation state of a street-level panorama view
// and the projection between its spherical coordinate frame and the flat
// overlay canvas drawn on top of it.
package pano

import "math"

// PointOfView is a spherical view direction inside a panorama.
// Heading is degrees clockwise from north in [0, 360); pitch is degrees
// above the horizon in [-90, 90].
type PointOfView struct {
	HeadingDeg float64 `json:"heading"`
	PitchDeg   float64 `json:"pitch"`
	Zoom       float64 `json:"zoom"`
}

// Pixel is a position on the overlay canvas in pixels. The origin is the
// top-left corner, Y grows downward.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Anchor is the viewport-independent stored position of a label: the
// spherical coordinate the label was placed at, together with the canvas
// size and zoom recorded at placement time. The placement-time fields are
// kept because the projection is zoom dependent and the original placement
// pixel must be recoverable under the same view. Anchors are immutable;
// re-projection derives a pixel from an anchor but never changes it.
type Anchor struct {
	PanoID     string  `json:"pano_id"`
	HeadingDeg float64 `json:"heading"`
	PitchDeg   float64 `json:"pitch"`

	// View recorded at placement time.
	Zoom         float64 `json:"zoom"`
	CanvasWidth  int     `json:"canvas_width"`
	CanvasHeight int     `json:"canvas_height"`
}

// normalizeHeading maps a heading in degrees onto [0, 360).
func normalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// clampPitch limits a pitch to the poles.
func clampPitch(deg float64) float64 {
	if deg > 90 {
		return 90
	}
	if deg < -90 {
		return -90
	}
	return deg
}
