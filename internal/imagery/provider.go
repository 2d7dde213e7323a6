// Package imagery abstracts the street-level imagery provider that hosts the
// annotation overlay. The session drives the provider; the provider never
// calls back into the session.
package imagery

import (
	"github.com/ProjectSidewalk/sidewalk-audit/internal/monitoring"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/pano"
)

// Provider is the surface the session needs from an imagery host: move the
// view to a panorama, orient it, and nudge the host to repaint its layout
// after the overlay changed. Use LogProvider in development; production hosts
// wrap their own viewer SDK.
type Provider interface {
	// SetPano points the host at a panorama.
	SetPano(panoID string) error
	// SetPOV orients the host's camera.
	SetPOV(pov pano.PointOfView) error
	// RefreshLayout asks the host to repaint around the overlay. Callers
	// treat it as best effort.
	RefreshLayout() error
}

// LogProvider is a Provider that only logs the calls it receives. It stands
// in for a real imagery host in development and tests.
type LogProvider struct{}

// SetPano logs the panorama switch.
func (LogProvider) SetPano(panoID string) error {
	monitoring.Logf("imagery: set pano %s", panoID)
	return nil
}

// SetPOV logs the orientation change.
func (LogProvider) SetPOV(pov pano.PointOfView) error {
	monitoring.Logf("imagery: set pov heading=%.1f pitch=%.1f zoom=%.1f", pov.HeadingDeg, pov.PitchDeg, pov.Zoom)
	return nil
}

// RefreshLayout logs the refresh request.
func (LogProvider) RefreshLayout() error {
	monitoring.Logf("imagery: refresh layout")
	return nil
}
