package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/monitoring"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/pano"
)

// Marker geometry, shared with the original overlay styling.
const (
	markerRadiusPx      = 6
	markerStrokeWidthPx = 3
)

var markerStroke = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// RefreshHint nudges the imagery provider to recompute its layout after a
// redraw. It is a workaround for a provider rendering glitch, not a
// correctness dependency: failures are logged and otherwise ignored.
type RefreshHint func() error

// Renderer draws the visible labels of a session onto an RGBA overlay
// surface. Rendering is a pure function of the viewport and store passed to
// Render: the surface is cleared and redrawn in full on every call, so
// calling it twice with unchanged inputs produces byte-identical pixels.
type Renderer struct {
	img  *image.RGBA
	hint RefreshHint
}

// NewRenderer creates a renderer with an overlay surface of the given size.
func NewRenderer(width, height int) *Renderer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Renderer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// SetRefreshHint installs the optional post-render provider nudge.
func (r *Renderer) SetRefreshHint(hint RefreshHint) { r.hint = hint }

// Image returns the overlay surface. The returned image is owned by the
// renderer and rewritten on every Render call.
func (r *Renderer) Image() *image.RGBA { return r.img }

// Resize replaces the overlay surface with one of the given size.
func (r *Renderer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Render clears the overlay and draws a marker for every label of the
// current panorama at its projected position. Labels that are not visible
// under the current view, or that cannot be projected this frame, are
// skipped. After the redraw the provider refresh hint runs if installed.
func (r *Renderer) Render(v *pano.Viewport, store *Store) {
	draw.Draw(r.img, r.img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	if v != nil && store != nil {
		// vgimg draws onto its own internal image, so the markers go onto
		// a transparent canvas that is composited back afterwards.
		w := r.img.Bounds().Dx()
		h := r.img.Bounds().Dy()
		c := vgimg.NewWith(
			vgimg.UseWH(vg.Length(w), vg.Length(h)),
			vgimg.UseBackgroundColor(color.Transparent),
			vgimg.UseDPI(72),
		)
		for _, l := range store.LabelsFor(v.PanoID()) {
			p := pano.AnchorToScreen(l.Anchor, v)
			if p.State != pano.Projected {
				continue
			}
			drawMarker(c, p.X, float64(h)-p.Y, l.Type.Color())
		}
		draw.Draw(r.img, r.img.Bounds(), c.Image(), image.Point{}, draw.Src)
	}

	if r.hint != nil {
		if err := r.hint(); err != nil {
			monitoring.Logf("provider refresh hint failed: %v", err)
		}
	}
}

// drawMarker paints one label marker: a filled circle with a white outline.
// Coordinates are in the canvas frame (origin bottom-left).
func drawMarker(c *vgimg.Canvas, x, y float64, fill color.Color) {
	center := vg.Point{X: vg.Length(x), Y: vg.Length(y)}

	var path vg.Path
	path.Move(vg.Point{X: center.X + markerRadiusPx, Y: center.Y})
	path.Arc(center, markerRadiusPx, 0, 2*math.Pi)
	path.Close()

	c.SetColor(fill)
	c.Fill(path)

	c.SetColor(markerStroke)
	c.SetLineWidth(markerStrokeWidthPx)
	c.Stroke(path)
}
