package main

import (
	"flag"
	"fmt"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/db"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/version"
)

type appFlags struct {
	devMode      bool
	listen       string
	dbFile       string
	configFile   string
	units        string
	panoID       string
	canvasWidth  int
	canvasHeight int
	geodataURL   string
	args         []string
}

func parseFlags() appFlags {
	var f appFlags
	flag.BoolVar(&f.devMode, "dev", false, "Run in dev mode")
	flag.StringVar(&f.listen, "listen", ":8080", "Listen address")
	flag.StringVar(&f.dbFile, "db", "audit.db", "Path to database file")
	flag.StringVar(&f.configFile, "config", "", "Path to JSON config file")
	flag.StringVar(&f.units, "units", "mi", "Distance units for API responses")
	flag.StringVar(&f.panoID, "pano", "pano-start", "Initial panorama id")
	flag.IntVar(&f.canvasWidth, "width", 1024, "Overlay canvas width in pixels")
	flag.IntVar(&f.canvasHeight, "height", 768, "Overlay canvas height in pixels")
	flag.StringVar(&f.geodataURL, "geodata", "", "Base URL of the geodata service (empty disables fetches)")
	flag.Parse()
	f.args = flag.Args()
	return f
}

// runSubcommand dispatches non-server subcommands. It returns true when a
// subcommand ran and the process should exit.
func runSubcommand(f appFlags) bool {
	if len(f.args) == 0 {
		return false
	}
	switch f.args[0] {
	case "migrate":
		db.RunMigrateCommand(f.args[1:], f.dbFile)
	case "version":
		fmt.Printf("sidewalk-audit %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	default:
		fmt.Printf("Unknown command: %s\n\n", f.args[0])
		fmt.Println("Commands:")
		fmt.Println("  migrate    Manage database schema migrations")
		fmt.Println("  version    Print build information")
	}
	return true
}
