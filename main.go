package main

import (
	"context"
	"embed"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/api"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/config"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/db"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/geodata"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/imagery"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/session"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/units"
)

//go:embed static/*
var staticFiles embed.FS

// Main
func main() {
	flags := parseFlags()

	if flags.listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(flags.units) {
		log.Fatalf("invalid units %q (valid: %s)", flags.units, units.GetValidUnitsString())
	}

	// Subcommands run and exit before the server comes up.
	if runSubcommand(flags) {
		return
	}

	var cfg *config.Config
	if flags.configFile != "" {
		var err error
		cfg, err = config.Load(flags.configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	} else {
		cfg = config.Empty()
	}

	database, err := db.Open(flags.dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	registry, err := database.LoadRegistry()
	if err != nil {
		log.Fatalf("failed to load progress registry: %v", err)
	}

	var geo *geodata.Client
	if flags.geodataURL != "" {
		geo = geodata.NewClient(nil, flags.geodataURL)
	}

	sess := session.New(session.Options{
		PanoID:       flags.panoID,
		CanvasWidth:  flags.canvasWidth,
		CanvasHeight: flags.canvasHeight,
		Provider:     imagery.LogProvider{},
		Geodata:      geo,
		Registry:     registry,
	})

	// Create a wait group for the session event loop and the HTTP server
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the session event loop; every API handler funnels through it
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("session loop error: %v", err)
		}
		log.Print("session routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or over Tailscale)
		database.AttachAdminRoutes(mux)

		// mount the audit API behind the logging middleware
		apiServer := api.NewServer(sess, database, cfg, flags.units)
		mux.Handle("/api/", api.LoggingMiddleware(apiServer.ServeMux()))

		// read static files from the embedded filesystem in production or from
		// the local ./static in dev for easier iteration without restarting the
		// server
		var staticHandler http.Handler
		if flags.devMode {
			staticHandler = http.FileServer(http.Dir("./static"))
		} else {
			staticHandler = http.FileServer(http.FS(staticFiles))
		}
		mux.Handle("/", staticHandler)

		server := &http.Server{
			Addr:    flags.listen,
			Handler: mux,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", flags.listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
