package pano

// ChangeKind identifies what mutated on a viewport.
type ChangeKind string

const (
	// PanoChanged means the viewport switched to a different panorama.
	PanoChanged ChangeKind = "pano_changed"
	// POVChanged means the orientation (heading, pitch or zoom) moved.
	POVChanged ChangeKind = "pov_changed"
	// CanvasResized means the overlay canvas dimensions changed.
	CanvasResized ChangeKind = "canvas_resized"
)

// Change describes a single viewport mutation.
type Change struct {
	Kind   ChangeKind
	PanoID string
	POV    PointOfView
}

// Viewport holds the live orientation state of one view session: the current
// panorama, the point of view and the overlay canvas size. A viewport is
// owned by a single session; all mutation happens on the session's event
// thread, so no locking is done here. Mutations are atomic in the sense that
// listeners only ever observe a fully updated viewport.
type Viewport struct {
	panoID       string
	pov          PointOfView
	canvasWidth  int
	canvasHeight int

	listeners []func(Change)
}

// NewViewport creates a viewport for the given panorama and canvas size.
func NewViewport(panoID string, width, height int) *Viewport {
	return &Viewport{
		panoID:       panoID,
		canvasWidth:  width,
		canvasHeight: height,
	}
}

// OnChange registers a listener invoked after every committed mutation.
// Listeners run synchronously on the mutating thread, in registration order.
func (v *Viewport) OnChange(fn func(Change)) {
	v.listeners = append(v.listeners, fn)
}

// PanoID returns the identifier of the current panorama.
func (v *Viewport) PanoID() string { return v.panoID }

// POV returns the current point of view.
func (v *Viewport) POV() PointOfView { return v.pov }

// CanvasSize returns the overlay canvas dimensions in pixels.
func (v *Viewport) CanvasSize() (width, height int) {
	return v.canvasWidth, v.canvasHeight
}

// SetPano switches the viewport to a different panorama. Switching to the
// already-current panorama is a no-op. A switch clears any meaning the prior
// pixel positions had, which the emitted change signals to renderers.
func (v *Viewport) SetPano(id string) {
	if id == v.panoID {
		return
	}
	v.panoID = id
	v.emit(PanoChanged)
}

// SetPOV updates the orientation. If heading, pitch and zoom are all exactly
// equal to the stored values the call is a no-op and no change is emitted;
// hosts drive this every animation frame, and suppressing redundant events
// avoids needless redraws and provider refresh calls. Pitch is clamped to
// [-90, 90] and heading normalized to [0, 360) before comparison.
func (v *Viewport) SetPOV(headingDeg, pitchDeg, zoom float64) {
	next := PointOfView{
		HeadingDeg: normalizeHeading(headingDeg),
		PitchDeg:   clampPitch(pitchDeg),
		Zoom:       zoom,
	}
	if next == v.pov {
		return
	}
	v.pov = next
	v.emit(POVChanged)
}

// Resize updates the canvas dimensions. A resize always invalidates prior
// pixel positions, so the change is emitted unconditionally.
func (v *Viewport) Resize(width, height int) {
	v.canvasWidth = width
	v.canvasHeight = height
	v.emit(CanvasResized)
}

func (v *Viewport) emit(kind ChangeKind) {
	c := Change{Kind: kind, PanoID: v.panoID, POV: v.pov}
	for _, fn := range v.listeners {
		fn(c)
	}
}
