package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/annotate"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/config"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/db"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/fsutil"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/progress"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/session"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/units"
)

func newTestServer(t *testing.T, database *db.DB, cfg *config.Config) *Server {
	t.Helper()
	sess := session.New(session.Options{
		PanoID:       "pano-1",
		CanvasWidth:  800,
		CanvasHeight: 600,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = sess.Run(ctx) }()
	require.NoError(t, sess.SetPOV(ctx, 0, 0, 1))
	return NewServer(sess, database, cfg, units.Miles)
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestLabelLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/labels", `{"x": 400, "y": 300, "label_type": "CurbRamp"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var placed annotate.Label
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, annotate.CurbRamp, placed.Type)
	assert.Equal(t, "pano-1", placed.Anchor.PanoID)

	rec = doJSON(t, mux, http.MethodGet, "/api/labels", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var labels []annotate.Label
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &labels))
	require.Len(t, labels, 1)

	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/api/labels/%d", placed.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/labels", "")
	require.Equal(t, http.StatusOK, rec.Code)
	labels = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &labels))
	assert.Empty(t, labels)
}

func TestPlaceLabelValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/labels", `{"x": 1, "y": 1, "label_type": "Pothole"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/labels", `{"x": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/api/labels/notanumber", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPut, "/api/labels", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPlaceLabelPersists(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.MigrateUp())

	s := newTestServer(t, database, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/labels", `{"x": 400, "y": 300, "label_type": "Obstacle"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	persisted, err := database.LabelsForPano("pano-1")
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, annotate.Obstacle, persisted[0].Type)
}

func TestSetPOVNormalizes(t *testing.T) {
	s := newTestServer(t, nil, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/pov", `{"heading_deg": -90, "pitch_deg": 120, "zoom": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var pov struct {
		HeadingDeg float64 `json:"heading"`
		PitchDeg   float64 `json:"pitch"`
		Zoom       float64 `json:"zoom"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pov))
	assert.Equal(t, 270.0, pov.HeadingDeg)
	assert.Equal(t, 90.0, pov.PitchDeg)
	assert.Equal(t, 2.0, pov.Zoom)
}

func TestSetPanoValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/pano", `{"pano_id": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/pano", `{"pano_id": "pano-2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOverlayIsPNG(t *testing.T) {
	s := newTestServer(t, nil, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/labels", `{"x": 400, "y": 300, "label_type": "NoSidewalk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/overlay", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestExportOverlay(t *testing.T) {
	s := newTestServer(t, nil, nil)
	memfs := fsutil.NewMemoryFileSystem()
	s.fs = memfs
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/overlay/export", `{"filename": "../escape/over lay"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	name := resp["filename"]
	assert.NotContains(t, name, "/")
	assert.True(t, strings.HasSuffix(name, ".png"))

	data, err := memfs.ReadFile(name)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestMissionFlowAndReward(t *testing.T) {
	turker := config.UserClassTurker
	rate := 4.17
	cfg := &config.Config{UserClass: &turker, RewardPerMile: &rate}

	s := newTestServer(t, nil, cfg)
	s.session.Registry().AddRegion(&progress.Region{ID: "r-1", Name: "Downtown", TotalDistanceM: 5000})
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/missions/start",
		`{"region_id": "r-1", "label_type": "CurbRamp", "level": 1, "distance_mi": 2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodPost, "/api/missions/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/missions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var missions []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &missions))
	assert.Len(t, missions, 1)

	rec = doJSON(t, mux, http.MethodGet, "/api/reward", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reward struct {
		UserClass          string  `json:"user_class"`
		CreditedDistanceMi float64 `json:"credited_distance_mi"`
		Reward             float64 `json:"reward"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reward))
	assert.Equal(t, "turker", reward.UserClass)
	assert.InDelta(t, 2.0, reward.CreditedDistanceMi, 1e-9)
	assert.InDelta(t, 8.34, reward.Reward, 1e-9)
}

func TestRegionEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.session.Registry().AddRegion(&progress.Region{
		ID: "r-1", Name: "Downtown", TotalDistanceM: 1609.34, CompletedDistanceM: 804.67,
	})
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodGet, "/api/regions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var regions []regionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	require.Len(t, regions, 1)
	assert.Equal(t, "mi", regions[0].Units)
	assert.InDelta(t, 1.0, regions[0].TotalDistance, 0.001)
	assert.InDelta(t, 0.5, regions[0].CompletedDistance, 0.001)

	rec = doJSON(t, mux, http.MethodGet, "/api/regions/completion?region_id=r-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats progress.CompletionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.InDelta(t, 0.5, stats.Rate, 1e-6)

	rec = doJSON(t, mux, http.MethodGet, "/api/regions/completion?region_id=nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/regions/enter", `{"region_id": "r-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/regions/enter", `{"region_id": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowConfig(t *testing.T) {
	s := newTestServer(t, nil, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "mi", cfg["units"])
	assert.Equal(t, "registered", cfg["user_class"])
	assert.Equal(t, 90.0, cfg["default_field_of_view_deg"])
}

func TestEndTaskWithoutActiveTask(t *testing.T) {
	s := newTestServer(t, nil, nil)
	mux := s.ServeMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/tasks/end", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/tasks/start", `{"street_id": "street-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/tasks/end", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
