// Package api exposes the audit session and progress state over HTTP.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/config"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/db"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/fsutil"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/progress"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/session"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the audit API for one session.
type Server struct {
	session *session.Session
	db      *db.DB
	cfg     *config.Config
	reward  *progress.RewardCalculator
	units   string
	fs      fsutil.FileSystem
}

// NewServer creates a server over the given session. The database is
// optional; without it labels and missions live only in memory.
func NewServer(sess *session.Session, database *db.DB, cfg *config.Config, units string) *Server {
	if cfg == nil {
		cfg = config.Empty()
	}
	return &Server{
		session: sess,
		db:      database,
		cfg:     cfg,
		reward:  progress.NewRewardCalculator(cfg),
		units:   units,
		fs:      fsutil.OSFileSystem{},
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux builds the API route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/labels", s.handleLabels)
	mux.HandleFunc("/api/labels/", s.handleLabelByID)
	mux.HandleFunc("/api/overlay", s.showOverlay)
	mux.HandleFunc("/api/overlay/export", s.exportOverlay)
	mux.HandleFunc("/api/pov", s.setPOV)
	mux.HandleFunc("/api/pano", s.setPano)
	mux.HandleFunc("/api/missions", s.listMissions)
	mux.HandleFunc("/api/missions/start", s.startMission)
	mux.HandleFunc("/api/missions/complete", s.completeMission)
	mux.HandleFunc("/api/tasks/start", s.startTask)
	mux.HandleFunc("/api/tasks/end", s.endTask)
	mux.HandleFunc("/api/regions", s.listRegions)
	mux.HandleFunc("/api/regions/completion", s.showRegionCompletion)
	mux.HandleFunc("/api/regions/enter", s.enterRegion)
	mux.HandleFunc("/api/reward", s.showReward)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}
