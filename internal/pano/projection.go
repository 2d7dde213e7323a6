package pano

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ProjectionState classifies the outcome of projecting an anchor.
type ProjectionState string

const (
	// Projected means the anchor maps to a pixel under the current view.
	Projected ProjectionState = "projected"
	// NotVisible means the anchor belongs to a different panorama or lies
	// outside the viewable hemisphere of the current orientation.
	NotVisible ProjectionState = "not_visible"
	// Unprojectable means the viewport geometry is malformed (non-finite
	// orientation or a zero-sized canvas) and no pixel can be derived.
	Unprojectable ProjectionState = "unprojectable"
)

// Projection is the result of mapping an anchor onto the overlay canvas.
// X and Y are meaningful only when State is Projected.
type Projection struct {
	X     float64
	Y     float64
	State ProjectionState
}

const (
	// DefaultFieldOfViewDeg is the provider's horizontal field of view at
	// zoom level 0.
	DefaultFieldOfViewDeg = 90.0

	// headingPitchLimitDeg bounds the pitch used for heading computation.
	// At the poles heading is degenerate, so pitch is clamped just short of
	// them before the azimuthal angle is derived.
	headingPitchLimitDeg = 89.9

	// minForwardCosine rejects directions at or behind the image plane.
	minForwardCosine = 1e-9
)

// FieldOfViewDeg returns the horizontal field of view for a zoom level,
// derived from the provider default at zoom 0. Each whole zoom level halves
// the field of view, so FOV decreases monotonically as zoom grows.
func FieldOfViewDeg(zoom float64) float64 {
	if zoom < 0 {
		zoom = 0
	}
	return DefaultFieldOfViewDeg / math.Exp2(zoom)
}

// direction converts a spherical view direction into a unit vector.
// Convention matches the rest of the codebase: X=east, Y=north, Z=up, with
// heading measured clockwise from north and pitch above the horizon.
func direction(headingDeg, pitchDeg float64) r3.Vec {
	h := headingDeg * math.Pi / 180
	p := pitchDeg * math.Pi / 180
	cosPitch := math.Cos(p)
	return r3.Vec{
		X: cosPitch * math.Sin(h),
		Y: cosPitch * math.Cos(h),
		Z: math.Sin(p),
	}
}

// cameraBasis builds the orthonormal forward/right/up frame for a view
// orientation.
func cameraBasis(headingDeg, pitchDeg float64) (forward, right, up r3.Vec) {
	forward = direction(headingDeg, pitchDeg)
	h := headingDeg * math.Pi / 180
	right = r3.Vec{X: math.Cos(h), Y: -math.Sin(h), Z: 0}
	up = r3.Cross(right, forward)
	return forward, right, up
}

// focalLengthPx returns the focal length in pixels for the given zoom and
// canvas width.
func focalLengthPx(zoom float64, canvasWidth int) float64 {
	halfFOV := FieldOfViewDeg(zoom) * math.Pi / 360
	return float64(canvasWidth) / 2 / math.Tan(halfFOV)
}

// validView reports whether the viewport geometry is usable for projection.
func validView(v *Viewport) bool {
	if v == nil {
		return false
	}
	pov := v.POV()
	if !isFinite(pov.HeadingDeg) || !isFinite(pov.PitchDeg) || !isFinite(pov.Zoom) {
		return false
	}
	w, h := v.CanvasSize()
	return w > 0 && h > 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// AnchorToScreen computes the pixel at which an anchor currently projects
// under the given viewport. It returns NotVisible when the anchor belongs to
// a different panorama or falls behind the image plane, and Unprojectable
// when the viewport geometry is malformed. When the viewport matches the
// view recorded in the anchor at placement time, the result reproduces the
// original placement pixel.
func AnchorToScreen(a Anchor, v *Viewport) Projection {
	if !validView(v) {
		return Projection{State: Unprojectable}
	}
	if a.PanoID != v.PanoID() {
		return Projection{State: NotVisible}
	}
	if !isFinite(a.HeadingDeg) || !isFinite(a.PitchDeg) {
		return Projection{State: Unprojectable}
	}

	pov := v.POV()
	forward, right, up := cameraBasis(pov.HeadingDeg, pov.PitchDeg)
	d := direction(a.HeadingDeg, a.PitchDeg)

	depth := r3.Dot(d, forward)
	if depth <= minForwardCosine {
		// Behind the camera or on the image plane's horizon.
		return Projection{State: NotVisible}
	}

	w, h := v.CanvasSize()
	focal := focalLengthPx(pov.Zoom, w)
	xn := r3.Dot(d, right) / depth
	yn := r3.Dot(d, up) / depth

	return Projection{
		X:     float64(w)/2 + xn*focal,
		Y:     float64(h)/2 - yn*focal,
		State: Projected,
	}
}

// ScreenToAnchor converts a canvas pixel into a stable spherical anchor
// under the given viewport. It is the inverse of AnchorToScreen for the same
// viewport. The second return value is false when the viewport geometry is
// malformed or the pixel is not finite.
func ScreenToAnchor(p Pixel, v *Viewport) (Anchor, bool) {
	if !validView(v) || !isFinite(p.X) || !isFinite(p.Y) {
		return Anchor{}, false
	}

	pov := v.POV()
	w, h := v.CanvasSize()
	forward, right, up := cameraBasis(pov.HeadingDeg, pov.PitchDeg)
	focal := focalLengthPx(pov.Zoom, w)

	xn := (p.X - float64(w)/2) / focal
	yn := (float64(h)/2 - p.Y) / focal

	d := r3.Unit(r3.Add(r3.Add(forward, r3.Scale(xn, right)), r3.Scale(yn, up)))

	pitchDeg := clampPitch(math.Asin(math.Max(-1, math.Min(1, d.Z))) * 180 / math.Pi)

	// Heading is degenerate at the poles. Clamp pitch away from them for
	// the azimuthal computation; directly at a pole, fall back to the
	// viewport heading.
	var headingDeg float64
	if math.Abs(pitchDeg) > headingPitchLimitDeg && math.Hypot(d.X, d.Y) == 0 {
		headingDeg = normalizeHeading(pov.HeadingDeg)
	} else {
		headingDeg = normalizeHeading(math.Atan2(d.X, d.Y) * 180 / math.Pi)
	}

	return Anchor{
		PanoID:       v.PanoID(),
		HeadingDeg:   headingDeg,
		PitchDeg:     pitchDeg,
		Zoom:         pov.Zoom,
		CanvasWidth:  w,
		CanvasHeight: h,
	}, true
}
