// Package main provides a CLI tool for inspecting, converting and re-saving
// the mod-overlay sidecar stored beside a world file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/twld/internal/config"
	"github.com/cory-johannsen/twld/internal/modcolor"
	"github.com/cory-johannsen/twld/internal/observability"
	"github.com/cory-johannsen/twld/internal/twld"
	"github.com/cory-johannsen/twld/internal/world"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and environment")
	worldPath := flag.String("world", "", "path to the world file the sidecar belongs to (required)")
	wide := flag.Int("wide", 0, "world width in tiles (required)")
	high := flag.Int("high", 0, "world height in tiles (required)")
	colorsPath := flag.String("colors", "", "mod colour override file; overrides colors.path from config")
	convert := flag.String("convert", "", "re-encode the grid as: legacy, dense")
	write := flag.Bool("write", false, "write the sidecar back after applying it to the grid")
	flag.Parse()

	if *worldPath == "" || *wide <= 0 || *high <= 0 {
		fmt.Fprintln(os.Stderr, "usage: twldtool -world <file> -wide N -high N [-config f] [-colors f] [-convert legacy|dense] [-write]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *colorsPath != "" {
		cfg.Colors.Path = *colorsPath
	}

	logger, err := observability.NewLogger(cfg.Logging, "twldtool")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	colors, err := modcolor.Load(cfg.Colors.Path)
	if err != nil {
		log.Fatalf("loading colour overrides: %v", err)
	}

	store := twld.NewStore(cfg.Sidecar, logger)
	d, err := store.LoadDecoded(*worldPath, *wide, *high)
	if err != nil {
		log.Fatalf("loading sidecar: %v", err)
	}
	if d == nil {
		fmt.Printf("no sidecar at %s\n", store.Path(*worldPath))
		return
	}

	grid, err := world.NewGrid(*wide, *high)
	if err != nil {
		log.Fatalf("allocating grid: %v", err)
	}
	twld.ApplyToWorld(d, grid)

	printSummary(os.Stdout, d, grid, colors)

	if *convert != "" {
		f, err := twld.ParseFormat(*convert)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := d.Convert(f); err != nil {
			log.Fatalf("converting sidecar: %v", err)
		}
		logger.Info("sidecar converted", zap.Stringer("format", f))
	}

	if *write {
		twld.HarvestFromWorld(d, grid)
		if err := store.Save(*worldPath, d); err != nil {
			log.Fatalf("writing sidecar: %v", err)
		}
		fmt.Printf("wrote %s (%s)\n", store.Path(*worldPath), d.Format)
	}

	fmt.Printf("done in %s\n", time.Since(start).Round(time.Millisecond))
}
