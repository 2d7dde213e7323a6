package pano

import (
	"math"
	"testing"
)

const roundTripTolerance = 1e-6

func testViewport(panoID string, heading, pitch, zoom float64, w, h int) *Viewport {
	v := NewViewport(panoID, w, h)
	v.SetPOV(heading, pitch, zoom)
	return v
}

func TestFieldOfViewMonotonic(t *testing.T) {
	if got := FieldOfViewDeg(0); got != DefaultFieldOfViewDeg {
		t.Errorf("FieldOfViewDeg(0) = %v, want provider default %v", got, DefaultFieldOfViewDeg)
	}

	prev := FieldOfViewDeg(0)
	for zoom := 0.5; zoom <= 5; zoom += 0.5 {
		fov := FieldOfViewDeg(zoom)
		if fov >= prev {
			t.Errorf("FieldOfViewDeg(%v) = %v, want < %v (FOV must shrink as zoom grows)", zoom, fov, prev)
		}
		prev = fov
	}

	// Negative zoom behaves like zoom 0 rather than widening past the default.
	if got := FieldOfViewDeg(-2); got != DefaultFieldOfViewDeg {
		t.Errorf("FieldOfViewDeg(-2) = %v, want %v", got, DefaultFieldOfViewDeg)
	}
}

func TestRoundTripIdentity(t *testing.T) {
	viewports := []struct {
		name           string
		heading, pitch float64
		zoom           float64
		w, h           int
	}{
		{"centered", 0, 0, 1, 800, 600},
		{"rotated", 137.2, -12.5, 0, 800, 600},
		{"zoomed", 270, 30, 3, 1024, 768},
		{"high pitch", 45, 75, 1, 640, 480},
		{"odd canvas", 359.9, -45, 2, 333, 777},
	}
	pixels := []Pixel{
		{400, 300},
		{0, 0},
		{799, 599},
		{123.456, 456.789},
		{10, 590},
	}

	for _, vc := range viewports {
		t.Run(vc.name, func(t *testing.T) {
			v := testViewport("pano-a", vc.heading, vc.pitch, vc.zoom, vc.w, vc.h)
			for _, px := range pixels {
				if px.X >= float64(vc.w) || px.Y >= float64(vc.h) {
					continue
				}
				anchor, ok := ScreenToAnchor(px, v)
				if !ok {
					t.Fatalf("ScreenToAnchor(%v) failed", px)
				}
				got := AnchorToScreen(anchor, v)
				if got.State != Projected {
					t.Fatalf("AnchorToScreen state = %q, want %q", got.State, Projected)
				}
				if math.Abs(got.X-px.X) > roundTripTolerance || math.Abs(got.Y-px.Y) > roundTripTolerance {
					t.Errorf("round trip of %v = (%v, %v), want within %v", px, got.X, got.Y, roundTripTolerance)
				}
			}
		})
	}
}

func TestCenterPixelMatchesViewDirection(t *testing.T) {
	v := testViewport("pano-a", 123.4, -8.7, 1, 800, 600)
	anchor, ok := ScreenToAnchor(Pixel{400, 300}, v)
	if !ok {
		t.Fatal("ScreenToAnchor failed for canvas centre")
	}
	if math.Abs(anchor.HeadingDeg-123.4) > roundTripTolerance {
		t.Errorf("centre anchor heading = %v, want 123.4", anchor.HeadingDeg)
	}
	if math.Abs(anchor.PitchDeg-(-8.7)) > roundTripTolerance {
		t.Errorf("centre anchor pitch = %v, want -8.7", anchor.PitchDeg)
	}
}

func TestWrongPanoramaNotVisible(t *testing.T) {
	v := testViewport("pano-a", 0, 0, 1, 800, 600)
	anchor, ok := ScreenToAnchor(Pixel{400, 300}, v)
	if !ok {
		t.Fatal("ScreenToAnchor failed")
	}

	v.SetPano("pano-b")
	if got := AnchorToScreen(anchor, v); got.State != NotVisible {
		t.Errorf("projection onto wrong panorama: state = %q, want %q", got.State, NotVisible)
	}

	// Switching back restores visibility at the original pixel.
	v.SetPano("pano-a")
	got := AnchorToScreen(anchor, v)
	if got.State != Projected {
		t.Fatalf("projection after switching back: state = %q, want %q", got.State, Projected)
	}
	if math.Abs(got.X-400) > roundTripTolerance || math.Abs(got.Y-300) > roundTripTolerance {
		t.Errorf("projection after switching back = (%v, %v), want (400, 300)", got.X, got.Y)
	}
}

func TestBehindCameraNotVisible(t *testing.T) {
	v := testViewport("pano-a", 0, 0, 1, 800, 600)
	anchor := Anchor{PanoID: "pano-a", HeadingDeg: 180, PitchDeg: 0}
	if got := AnchorToScreen(anchor, v); got.State != NotVisible {
		t.Errorf("anchor behind camera: state = %q, want %q", got.State, NotVisible)
	}
}

func TestMalformedViewportUnprojectable(t *testing.T) {
	cases := []struct {
		name string
		v    *Viewport
	}{
		{"nan heading", testViewport("pano-a", math.NaN(), 0, 1, 800, 600)},
		{"inf zoom", testViewport("pano-a", 0, 0, math.Inf(1), 800, 600)},
		{"zero canvas", testViewport("pano-a", 0, 0, 1, 0, 0)},
		{"nil viewport", nil},
	}
	anchor := Anchor{PanoID: "pano-a"}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.v != nil {
				anchor.PanoID = tc.v.PanoID()
			}
			if got := AnchorToScreen(anchor, tc.v); got.State != Unprojectable {
				t.Errorf("state = %q, want %q", got.State, Unprojectable)
			}
			if _, ok := ScreenToAnchor(Pixel{1, 1}, tc.v); ok {
				t.Error("ScreenToAnchor succeeded on malformed viewport")
			}
		})
	}
}

func TestPoleDoesNotProduceNaN(t *testing.T) {
	v := testViewport("pano-a", 0, 89.99, 0, 800, 600)
	for _, px := range []Pixel{{400, 0}, {400, 300}, {0, 0}} {
		anchor, ok := ScreenToAnchor(px, v)
		if !ok {
			t.Fatalf("ScreenToAnchor(%v) failed near pole", px)
		}
		if math.IsNaN(anchor.HeadingDeg) || math.IsNaN(anchor.PitchDeg) {
			t.Errorf("anchor near pole has NaN components: %+v", anchor)
		}
		if anchor.PitchDeg > 90 || anchor.PitchDeg < -90 {
			t.Errorf("anchor pitch out of range: %v", anchor.PitchDeg)
		}
		if anchor.HeadingDeg < 0 || anchor.HeadingDeg >= 360 {
			t.Errorf("anchor heading out of range: %v", anchor.HeadingDeg)
		}
	}
}

func TestAnchorRecordsPlacementView(t *testing.T) {
	v := testViewport("pano-a", 30, 10, 2, 1024, 768)
	anchor, ok := ScreenToAnchor(Pixel{512, 384}, v)
	if !ok {
		t.Fatal("ScreenToAnchor failed")
	}
	if anchor.Zoom != 2 {
		t.Errorf("anchor zoom = %v, want 2", anchor.Zoom)
	}
	if anchor.CanvasWidth != 1024 || anchor.CanvasHeight != 768 {
		t.Errorf("anchor canvas = %dx%d, want 1024x768", anchor.CanvasWidth, anchor.CanvasHeight)
	}
	if anchor.PanoID != "pano-a" {
		t.Errorf("anchor pano = %q, want pano-a", anchor.PanoID)
	}
}
