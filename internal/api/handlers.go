package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/annotate"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/httputil"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/monitoring"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/pano"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/progress"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/security"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/units"
)

// handleLabels lists the labels of the current panorama or places a new one.
func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		labels, err := s.session.Labels(r.Context())
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to list labels: %v", err))
			return
		}
		if labels == nil {
			labels = []*annotate.Label{}
		}
		httputil.WriteJSONOK(w, labels)

	case http.MethodPost:
		var req struct {
			X         float64 `json:"x"`
			Y         float64 `json:"y"`
			LabelType string  `json:"label_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "invalid JSON body")
			return
		}
		lt, ok := annotate.ParseLabelType(req.LabelType)
		if !ok {
			httputil.BadRequest(w, fmt.Sprintf("unknown label type %q", req.LabelType))
			return
		}

		label, err := s.session.PlaceLabel(r.Context(), pano.Pixel{X: req.X, Y: req.Y}, lt)
		if err != nil {
			httputil.BadRequest(w, fmt.Sprintf("failed to place label: %v", err))
			return
		}
		if s.db != nil {
			if _, err := s.db.SaveLabel(label); err != nil {
				monitoring.Logf("api: failed to persist label %d: %v", label.ID, err)
			}
		}
		httputil.WriteJSON(w, http.StatusCreated, label)

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleLabelByID deletes a single label.
func (s *Server) handleLabelByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httputil.MethodNotAllowed(w)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/labels/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid label id %q", idStr))
		return
	}

	if err := s.session.RemoveLabel(r.Context(), id); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to remove label: %v", err))
		return
	}
	if s.db != nil {
		if err := s.db.DeleteLabel(id); err != nil {
			monitoring.Logf("api: failed to delete persisted label %d: %v", id, err)
		}
	}
	httputil.WriteJSONOK(w, map[string]int64{"deleted": id})
}

// showOverlay returns the current overlay surface as a PNG.
func (s *Server) showOverlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	img, err := s.session.Overlay(r.Context())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to snapshot overlay: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		monitoring.Logf("api: failed to encode overlay: %v", err)
	}
}

// exportOverlay writes the current overlay surface to a PNG file on disk.
// The filename is sanitized and must land inside the working directory or
// the system temp directory.
func (s *Server) exportOverlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}

	name := security.SanitizeFilename(req.Filename)
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	if err := security.ValidateExportPath(name); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid export path: %v", err))
		return
	}

	img, err := s.session.Overlay(r.Context())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to snapshot overlay: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to encode overlay: %v", err))
		return
	}
	if err := s.fs.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to write overlay: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"filename": name})
}

// setPOV points the session's view.
func (s *Server) setPOV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		HeadingDeg float64 `json:"heading_deg"`
		PitchDeg   float64 `json:"pitch_deg"`
		Zoom       float64 `json:"zoom"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}

	if err := s.session.SetPOV(r.Context(), req.HeadingDeg, req.PitchDeg, req.Zoom); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to set pov: %v", err))
		return
	}
	_, pov, err := s.session.View(r.Context())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to read view: %v", err))
		return
	}
	httputil.WriteJSONOK(w, pov)
}

// setPano moves the session to another panorama.
func (s *Server) setPano(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		PanoID string `json:"pano_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}
	if req.PanoID == "" {
		httputil.BadRequest(w, "pano_id is required")
		return
	}

	if err := s.session.SetPano(r.Context(), req.PanoID); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to set pano: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"pano_id": req.PanoID})
}

// listMissions returns the completed-mission ledger.
func (s *Server) listMissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	missions := s.session.Registry().CompletedMissions()
	if missions == nil {
		missions = []*progress.Mission{}
	}
	httputil.WriteJSONOK(w, missions)
}

// startMission creates a mission and makes it the session's active one.
func (s *Server) startMission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		RegionID   string  `json:"region_id"`
		LabelType  string  `json:"label_type"`
		Level      int     `json:"level"`
		DistanceMi float64 `json:"distance_mi"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}

	lt := annotate.LabelType(req.LabelType)
	if req.LabelType != "" {
		parsed, ok := annotate.ParseLabelType(req.LabelType)
		if !ok {
			httputil.BadRequest(w, fmt.Sprintf("unknown label type %q", req.LabelType))
			return
		}
		lt = parsed
	}

	m := progress.Factory{}.Create(req.RegionID, lt, req.Level, req.DistanceMi)
	if err := s.session.StartMission(r.Context(), m); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to start mission: %v", err))
		return
	}
	if s.db != nil {
		if err := s.db.SaveMission(m); err != nil {
			monitoring.Logf("api: failed to persist mission %s: %v", m.MissionID, err)
		}
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

// completeMission completes the session's active mission.
func (s *Server) completeMission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	if err := s.session.CompleteActiveMission(r.Context()); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to complete mission: %v", err))
		return
	}
	missions := s.session.Registry().CompletedMissions()
	if s.db != nil {
		for _, m := range missions {
			if err := s.db.SaveMission(m); err != nil {
				monitoring.Logf("api: failed to persist mission %s: %v", m.MissionID, err)
			}
		}
	}
	httputil.WriteJSONOK(w, map[string]int{"completed": len(missions)})
}

// startTask begins an audit task for a street segment.
func (s *Server) startTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		StreetID string `json:"street_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}

	task, err := s.session.StartTask(r.Context(), req.StreetID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to start task: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, task)
}

// endTask closes the active audit task.
func (s *Server) endTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	task, err := s.session.EndTask(r.Context())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to end task: %v", err))
		return
	}
	if task == nil {
		httputil.NotFound(w, "no active task")
		return
	}
	if s.db != nil {
		if err := s.db.SaveTask(task); err != nil {
			monitoring.Logf("api: failed to persist task %s: %v", task.TaskID, err)
		}
	}
	httputil.WriteJSONOK(w, task)
}

// regionView is the region payload with distances converted to the server's
// configured units.
type regionView struct {
	RegionID          string  `json:"region_id"`
	Name              string  `json:"region_name"`
	TotalDistance     float64 `json:"total_distance"`
	CompletedDistance float64 `json:"completed_distance"`
	Units             string  `json:"units"`
	Difficult         bool    `json:"difficult"`
}

// listRegions returns all known regions.
func (s *Server) listRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	regions := s.session.Registry().Regions()
	out := make([]regionView, 0, len(regions))
	for _, region := range regions {
		out = append(out, regionView{
			RegionID:          region.ID,
			Name:              region.Name,
			TotalDistance:     units.ConvertDistance(region.TotalDistanceM, s.units),
			CompletedDistance: units.ConvertDistance(region.CompletedDistanceM, s.units),
			Units:             s.units,
			Difficult:         region.Difficult || s.cfg.IsDifficultRegion(region.ID),
		})
	}
	httputil.WriteJSONOK(w, out)
}

// showRegionCompletion returns completion stats for all regions, or for one
// region when the region_id query parameter is set.
func (s *Server) showRegionCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	if regionID := r.URL.Query().Get("region_id"); regionID != "" {
		stats, ok := s.session.Registry().RegionProgress(regionID)
		if !ok {
			httputil.NotFound(w, fmt.Sprintf("unknown region %q", regionID))
			return
		}
		httputil.WriteJSONOK(w, stats)
		return
	}
	httputil.WriteJSONOK(w, s.session.Registry().AllProgress())
}

// enterRegion moves the session into a region.
func (s *Server) enterRegion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req struct {
		RegionID string `json:"region_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}
	if req.RegionID == "" {
		httputil.BadRequest(w, "region_id is required")
		return
	}

	if err := s.session.EnterRegion(r.Context(), req.RegionID); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to enter region: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"region_id": req.RegionID})
}

// showReward returns the reward owed for the completed missions.
func (s *Server) showReward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	missions := s.session.Registry().CompletedMissions()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"user_class":           s.cfg.GetUserClass(),
		"credited_distance_mi": progress.CreditedDistanceMi(missions),
		"reward":               s.reward.TotalReward(missions),
		"reward_per_mile":      s.cfg.GetRewardPerMile(),
	})
}

// showConfig returns the client-visible configuration.
func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"units":                     s.units,
		"user_class":                s.cfg.GetUserClass(),
		"default_field_of_view_deg": s.cfg.GetDefaultFieldOfViewDeg(),
	})
}
