package annotate

import (
	"fmt"
	"time"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/pano"
)

// Label is a single point annotation pinned to a spherical position inside a
// panorama. Labels are immutable once created; a correction is modelled as a
// delete followed by a new placement.
type Label struct {
	ID        int64       `json:"label_id"`
	Anchor    pano.Anchor `json:"anchor"`
	Type      LabelType   `json:"label_type"`
	MissionID string      `json:"mission_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// PanoID returns the panorama the label belongs to.
func (l *Label) PanoID() string { return l.Anchor.PanoID }

// MutationKind identifies a store mutation.
type MutationKind string

const (
	LabelPlaced  MutationKind = "label_placed"
	LabelRemoved MutationKind = "label_removed"
)

// Mutation describes a single store change.
type Mutation struct {
	Kind    MutationKind
	LabelID int64
	PanoID  string
}

// Store holds the labels of one view session. Ids are assigned by the store,
// monotonically increasing and never reused even after deletion, so external
// references (per-task grouping, persistence) stay stable. The store is
// owned by a single session and mutated only on its event thread.
type Store struct {
	nextID int64
	labels map[int64]*Label
	order  []int64

	listeners []func(Mutation)
}

// NewStore creates an empty label store.
func NewStore() *Store {
	return &Store{
		nextID: 1,
		labels: make(map[int64]*Label),
	}
}

// OnMutate registers a listener invoked after every committed mutation.
func (s *Store) OnMutate(fn func(Mutation)) {
	s.listeners = append(s.listeners, fn)
}

// Place converts a canvas pixel into a stable anchor under the given
// viewport and stores a new label there. It fails when the viewport geometry
// is malformed and no anchor can be derived.
func (s *Store) Place(px pano.Pixel, t LabelType, v *pano.Viewport) (*Label, error) {
	anchor, ok := pano.ScreenToAnchor(px, v)
	if !ok {
		return nil, fmt.Errorf("place label at (%v, %v): viewport is unprojectable", px.X, px.Y)
	}

	l := &Label{
		ID:        s.nextID,
		Anchor:    anchor,
		Type:      t,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.labels[l.ID] = l
	s.order = append(s.order, l.ID)

	s.emit(Mutation{Kind: LabelPlaced, LabelID: l.ID, PanoID: l.PanoID()})
	return l, nil
}

// PlaceForMission is Place with the owning mission recorded on the label.
func (s *Store) PlaceForMission(px pano.Pixel, t LabelType, v *pano.Viewport, missionID string) (*Label, error) {
	l, err := s.Place(px, t, v)
	if err != nil {
		return nil, err
	}
	l.MissionID = missionID
	return l, nil
}

// Remove deletes a label if present. Removing an absent id is a no-op, so
// retraction is idempotent.
func (s *Store) Remove(id int64) {
	l, ok := s.labels[id]
	if !ok {
		return
	}
	delete(s.labels, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.emit(Mutation{Kind: LabelRemoved, LabelID: id, PanoID: l.PanoID()})
}

// Get returns the label with the given id, or nil.
func (s *Store) Get(id int64) *Label {
	return s.labels[id]
}

// LabelsFor returns all labels belonging to the given panorama, in insertion
// order.
func (s *Store) LabelsFor(panoID string) []*Label {
	var out []*Label
	for _, id := range s.order {
		if l := s.labels[id]; l.PanoID() == panoID {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of stored labels.
func (s *Store) Len() int { return len(s.order) }

func (s *Store) emit(m Mutation) {
	for _, fn := range s.listeners {
		fn(m)
	}
}
