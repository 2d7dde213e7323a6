package pano

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportPOVNoOpGuard(t *testing.T) {
	v := NewViewport("pano-a", 800, 600)

	var changes []Change
	v.OnChange(func(c Change) { changes = append(changes, c) })

	v.SetPOV(10, 5, 1)
	assert.Len(t, changes, 1, "first orientation update should emit")

	// Same orientation again, as a host would on every animation frame.
	v.SetPOV(10, 5, 1)
	v.SetPOV(10, 5, 1)
	assert.Len(t, changes, 1, "redundant orientation updates must not emit")

	v.SetPOV(10, 5.0001, 1)
	assert.Len(t, changes, 2, "any field moving should emit")
	assert.Equal(t, POVChanged, changes[1].Kind)
}

func TestViewportPOVAtomic(t *testing.T) {
	v := NewViewport("pano-a", 800, 600)
	v.OnChange(func(c Change) {
		// The listener must never observe a partially applied orientation.
		assert.Equal(t, v.POV(), c.POV)
	})
	v.SetPOV(45, -10, 2)
	v.SetPOV(90, 10, 0)
}

func TestViewportSetPano(t *testing.T) {
	v := NewViewport("pano-a", 800, 600)

	var changes []Change
	v.OnChange(func(c Change) { changes = append(changes, c) })

	v.SetPano("pano-a")
	assert.Empty(t, changes, "switching to the current panorama is a no-op")

	v.SetPano("pano-b")
	if assert.Len(t, changes, 1) {
		assert.Equal(t, PanoChanged, changes[0].Kind)
		assert.Equal(t, "pano-b", changes[0].PanoID)
	}
	assert.Equal(t, "pano-b", v.PanoID())
}

func TestViewportResizeAlwaysEmits(t *testing.T) {
	v := NewViewport("pano-a", 800, 600)

	var changes []Change
	v.OnChange(func(c Change) { changes = append(changes, c) })

	v.Resize(800, 600) // unchanged dimensions still invalidate pixels
	v.Resize(1024, 768)
	assert.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, CanvasResized, c.Kind)
	}

	w, h := v.CanvasSize()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
}

func TestViewportNormalizesOrientation(t *testing.T) {
	v := NewViewport("pano-a", 800, 600)
	v.SetPOV(-90, 120, 1)

	pov := v.POV()
	assert.Equal(t, 270.0, pov.HeadingDeg)
	assert.Equal(t, 90.0, pov.PitchDeg)
}
