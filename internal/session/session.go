// Package session runs one user's audit session. A session owns the
// viewport, the label store, the overlay renderer and the active mission and
// task, and serializes every mutation through a single event loop so the
// host can call in from any goroutine.
package session

import (
	"context"
	"image"
	"image/draw"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/annotate"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/geodata"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/imagery"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/monitoring"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/pano"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/progress"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/units"
)

// eventQueueSize bounds the FIFO. Synchronous calls block until accepted;
// fire-and-forget posts are dropped with a log line when the queue is full.
const eventQueueSize = 128

// Options configures a new session.
type Options struct {
	PanoID       string
	CanvasWidth  int
	CanvasHeight int

	// Provider is the imagery host to keep in sync. Optional; nil means
	// headless operation.
	Provider imagery.Provider

	// Geodata is the client used to refresh region completion. Optional.
	Geodata *geodata.Client

	// Registry receives mission completions and region progress. Optional;
	// a fresh registry is created when nil.
	Registry *progress.Registry
}

// Session is the single-threaded core of one audit. All state below events
// is owned by the event loop and touched only from there.
type Session struct {
	events chan func()

	viewport *pano.Viewport
	store    *annotate.Store
	renderer *annotate.Renderer
	provider imagery.Provider
	geo      *geodata.Client
	registry *progress.Registry

	currentRegionID string
	regionEpoch     uint64

	mission *progress.Mission
	task    *progress.Task
}

// New creates a session positioned at the given panorama.
func New(opts Options) *Session {
	registry := opts.Registry
	if registry == nil {
		registry = progress.NewRegistry()
	}

	s := &Session{
		events:   make(chan func(), eventQueueSize),
		viewport: pano.NewViewport(opts.PanoID, opts.CanvasWidth, opts.CanvasHeight),
		store:    annotate.NewStore(),
		renderer: annotate.NewRenderer(opts.CanvasWidth, opts.CanvasHeight),
		provider: opts.Provider,
		geo:      opts.Geodata,
		registry: registry,
	}

	if s.provider != nil {
		s.renderer.SetRefreshHint(s.provider.RefreshLayout)
	}
	s.viewport.OnChange(func(c pano.Change) {
		s.renderer.Render(s.viewport, s.store)
	})
	s.store.OnMutate(func(m annotate.Mutation) {
		s.renderer.Render(s.viewport, s.store)
	})

	return s
}

// Run processes events in arrival order until the context is cancelled.
// Exactly one Run must be active for the session's lifetime.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.events:
			fn()
		}
	}
}

// call runs fn on the event loop and waits for it to finish.
func (s *Session) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		fn()
		close(done)
	}
	select {
	case s.events <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post enqueues fn without waiting. Posts are dropped when the queue is
// full; only fire-and-forget work goes through here.
func (s *Session) post(fn func()) {
	select {
	case s.events <- fn:
	default:
		monitoring.Logf("session: event queue full, dropping event")
	}
}

// SetPOV orients the view. Redundant calls with an unchanged orientation do
// not redraw or touch the provider.
func (s *Session) SetPOV(ctx context.Context, headingDeg, pitchDeg, zoom float64) error {
	return s.call(ctx, func() {
		before := s.viewport.POV()
		s.viewport.SetPOV(headingDeg, pitchDeg, zoom)
		after := s.viewport.POV()
		if after == before {
			return
		}
		if s.provider != nil {
			if err := s.provider.SetPOV(after); err != nil {
				monitoring.Logf("session: provider SetPOV failed: %v", err)
			}
		}
	})
}

// SetPano moves the session to a different panorama. The overlay is redrawn,
// which clears markers of the previous panorama, and the provider is pointed
// at the new imagery. Switching to the current panorama is a no-op.
func (s *Session) SetPano(ctx context.Context, panoID string) error {
	return s.call(ctx, func() {
		if panoID == s.viewport.PanoID() {
			return
		}
		s.viewport.SetPano(panoID)
		if s.provider != nil {
			if err := s.provider.SetPano(panoID); err != nil {
				monitoring.Logf("session: provider SetPano failed: %v", err)
			}
		}
	})
}

// Resize changes the overlay canvas size and redraws.
func (s *Session) Resize(ctx context.Context, width, height int) error {
	return s.call(ctx, func() {
		s.renderer.Resize(width, height)
		s.viewport.Resize(width, height)
	})
}

// PlaceLabel places a label of the given type at a canvas pixel under the
// current view, attributes it to the active mission and task, and redraws.
func (s *Session) PlaceLabel(ctx context.Context, px pano.Pixel, t annotate.LabelType) (*annotate.Label, error) {
	var (
		label *annotate.Label
		err   error
	)
	callErr := s.call(ctx, func() {
		missionID := ""
		if s.mission != nil {
			missionID = s.mission.MissionID
		}
		label, err = s.store.PlaceForMission(px, t, s.viewport, missionID)
		if err != nil {
			return
		}
		if s.task != nil {
			s.task.RecordLabel(label.ID)
		}
	})
	if callErr != nil {
		return nil, callErr
	}
	return label, err
}

// RemoveLabel deletes a label. The store's mutation event drives the redraw;
// unknown ids mutate nothing and trigger none.
func (s *Session) RemoveLabel(ctx context.Context, id int64) error {
	return s.call(ctx, func() {
		s.store.Remove(id)
	})
}

// Labels returns the labels pinned to the current panorama.
func (s *Session) Labels(ctx context.Context) ([]*annotate.Label, error) {
	var out []*annotate.Label
	err := s.call(ctx, func() {
		out = s.store.LabelsFor(s.viewport.PanoID())
	})
	return out, err
}

// Overlay returns a copy of the current overlay surface.
func (s *Session) Overlay(ctx context.Context) (*image.RGBA, error) {
	var out *image.RGBA
	err := s.call(ctx, func() {
		src := s.renderer.Image()
		out = image.NewRGBA(src.Bounds())
		draw.Draw(out, src.Bounds(), src, src.Bounds().Min, draw.Src)
	})
	return out, err
}

// View returns the current panorama id and point of view.
func (s *Session) View(ctx context.Context) (panoID string, pov pano.PointOfView, err error) {
	err = s.call(ctx, func() {
		panoID = s.viewport.PanoID()
		pov = s.viewport.POV()
	})
	return panoID, pov, err
}

// StartMission makes the mission the active one and moves it into progress.
func (s *Session) StartMission(ctx context.Context, m *progress.Mission) error {
	return s.call(ctx, func() {
		m.Start()
		s.mission = m
	})
}

// CompleteActiveMission completes the active mission, records it in the
// registry and credits its distance to the mission's region. Completing with
// no active mission is a no-op.
func (s *Session) CompleteActiveMission(ctx context.Context) error {
	return s.call(ctx, func() {
		if s.mission == nil {
			return
		}
		m := s.mission
		s.mission = nil
		s.registry.CompleteMission(m)
		if m.RegionID != progress.NoRegionID {
			s.registry.RecordAuditedDistance(m.RegionID, m.DistanceMi/units.MetersToMiles)
		}
	})
}

// StartTask begins a street audit task in the current region.
func (s *Session) StartTask(ctx context.Context, streetID string) (*progress.Task, error) {
	var task *progress.Task
	err := s.call(ctx, func() {
		task = progress.NewTask(s.currentRegionID, streetID)
		s.task = task
	})
	return task, err
}

// EndTask closes the active task. Ending with no active task is a no-op.
func (s *Session) EndTask(ctx context.Context) (*progress.Task, error) {
	var task *progress.Task
	err := s.call(ctx, func() {
		if s.task == nil {
			return
		}
		task = s.task
		task.End()
		s.task = nil
	})
	return task, err
}

// EnterRegion makes regionID the session's current region and kicks off a
// background refresh of its completion figure. A response that arrives after
// the session has moved on to another region is discarded: only data for the
// region the user is still in may be applied.
func (s *Session) EnterRegion(ctx context.Context, regionID string) error {
	return s.call(ctx, func() {
		s.currentRegionID = regionID
		s.regionEpoch++
		if s.geo == nil {
			return
		}
		epoch := s.regionEpoch
		go s.fetchRegionCompletion(regionID, epoch)
	})
}

// CurrentRegionID returns the session's current region.
func (s *Session) CurrentRegionID(ctx context.Context) (string, error) {
	var id string
	err := s.call(ctx, func() { id = s.currentRegionID })
	return id, err
}

// fetchRegionCompletion runs off the event loop and posts the result back.
func (s *Session) fetchRegionCompletion(regionID string, epoch uint64) {
	rc, err := s.geo.FetchRegionCompletion(regionID)
	if err != nil {
		monitoring.Logf("session: region completion fetch for %s failed: %v", regionID, err)
		return
	}
	s.post(func() {
		if epoch != s.regionEpoch || regionID != s.currentRegionID {
			monitoring.Logf("session: discarding stale completion for region %s", regionID)
			return
		}
		s.applyRegionCompletion(rc)
	})
}

// applyRegionCompletion folds a fetched completion figure into the registry.
// Runs on the event loop.
func (s *Session) applyRegionCompletion(rc *geodata.RegionCompletion) {
	name := ""
	difficult := false
	if existing, ok := s.registry.Region(rc.RegionID); ok {
		name = existing.Name
		difficult = existing.Difficult
	}
	s.registry.AddRegion(&progress.Region{
		ID:                 rc.RegionID,
		Name:               name,
		TotalDistanceM:     rc.TotalDistanceM,
		CompletedDistanceM: rc.CompletedDistanceM,
		Difficult:          difficult,
	})
}

// Registry returns the registry the session reports into.
func (s *Session) Registry() *progress.Registry { return s.registry }
