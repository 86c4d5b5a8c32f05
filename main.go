package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"panoscraper/config"
	"panoscraper/discover"
	"panoscraper/download"
	"panoscraper/logging"
	"panoscraper/lookup"
	"panoscraper/panoids"
	"panoscraper/points"
	"panoscraper/project"
	"panoscraper/signalhandler"
	"panoscraper/store"
	"panoscraper/types"
	"panoscraper/utils"
)

func main() {
	args := utils.ParseArguments(os.Args[1:])

	command, ok := args["command"]
	if !ok {
		utils.PrintUsage()
		os.Exit(1)
	}

	logger, err := logging.Setup(utils.GetBool(args, "debug"), utils.GetString(args, "logfile", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	ctx, cancel := signalhandler.WithInterrupt(context.Background())
	defer cancel()

	switch command {
	case "discover":
		err = runDiscover(ctx, args, logger)
	case "filter":
		err = runFilter(args)
	case "download":
		err = runDownload(ctx, args, logger)
	case "project":
		err = runProject(ctx, args, logger)
	case "prune":
		err = runPrune(args)
	default:
		utils.PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Configuration error: %s\n", cfgErr.Reason)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func loadConfig(args map[string]string) (*config.Config, error) {
	return config.Load(utils.GetString(args, "config", "config.yaml"))
}

func runDiscover(ctx context.Context, args map[string]string, logger *zap.Logger) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	// A configured CSV only replaces grid generation when the file exists.
	var pts []types.GeoPoint
	useCSV := false
	if cfg.CSVPoints != "" {
		if _, statErr := os.Stat(cfg.CSVPoints); statErr == nil {
			useCSV = true
		}
	}
	if useCSV {
		pts, err = points.FromCSV(cfg.CSVPoints)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d query points from %s\n", len(pts), cfg.CSVPoints)
	} else {
		pts = points.FromGrid(cfg.Center, cfg.RadiusKm, cfg.Resolution)
		fmt.Printf("Generated %d grid points around (%v, %v), radius %v km\n",
			len(pts), cfg.Center.Lat, cfg.Center.Lon, cfg.RadiusKm)
	}

	fmt.Printf("Points to query: %d\n", len(pts))
	fmt.Printf("Search radius: %d m\n", cfg.SearchRadiusM)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)

	client := lookup.NewClient(lookup.Options{
		SearchRadiusM: cfg.SearchRadiusM,
		Concurrency:   cfg.Concurrency,
		Logger:        logger,
	})

	engine := &discover.Engine{
		Lookup:      client.FetchBestPanorama,
		Concurrency: cfg.Concurrency,
		PrintEvery:  cfg.PrintEvery,
		Logger:      logger,
	}

	result, err := engine.Run(ctx, pts)
	if err != nil {
		return err
	}

	outPath := utils.GetString(args, "out", panoids.DiscoveryOutputPath(len(pts)))
	if err := panoids.Save(outPath, result.Panoramas); err != nil {
		return err
	}
	fmt.Printf("Wrote %d unique panoramas to %s\n", result.Unique, outPath)
	return nil
}

func runFilter(args map[string]string) error {
	inPath := utils.GetString(args, "in", "")
	outPath := utils.GetString(args, "out", "")
	if inPath == "" || outPath == "" {
		utils.PrintUsage()
		return errors.New("filter requires --in and --out")
	}

	recs, err := panoids.Load(inPath)
	if err != nil {
		return err
	}

	kept, stats := panoids.FilterDated(recs)
	fmt.Printf("Loaded %d records: kept %d with year+month, %d with year only\n",
		len(recs), stats.KeptYearMonth, stats.KeptYearOnly)
	fmt.Printf("Skipped: %d missing fields, %d without year; cleared %d bad months\n",
		stats.SkippedMissingFields, stats.SkippedNoYear, stats.DroppedBadMonth)

	if year := utils.GetInt(args, "year", 0); year > 0 {
		var dropped int
		kept, dropped = panoids.FilterYear(kept, year)
		fmt.Printf("Year filter %d: kept %d, dropped %d\n", year, len(kept), dropped)
	}

	if err := panoids.Save(outPath, kept); err != nil {
		return err
	}
	fmt.Printf("Wrote %d records to %s\n", len(kept), outPath)
	return nil
}

func runDownload(ctx context.Context, args map[string]string, logger *zap.Logger) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	panoidsPath := utils.GetString(args, "panoids", "")
	if panoidsPath == "" {
		utils.PrintUsage()
		return errors.New("download requires --panoids")
	}
	recs, err := panoids.Load(panoidsPath)
	if err != nil {
		return err
	}

	if utils.GetBool(args, "require-year") {
		dated := recs[:0]
		for _, r := range recs {
			if r.Year != nil {
				dated = append(dated, r)
			}
		}
		if skipped := len(recs) - len(dated); skipped > 0 {
			fmt.Printf("Skipping %d undated panoramas\n", skipped)
		}
		recs = dated
	}
	if max := utils.GetInt(args, "max", 0); max > 0 && max < len(recs) {
		recs = recs[:max]
	}

	registry, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer registry.Close()

	dl := download.New(download.Options{
		TileDir:        cfg.TileDir,
		PanoDir:        cfg.PanoDir,
		ConnLimit:      cfg.Concurrency,
		RequestsPerSec: cfg.RequestsPerSec,
		Registry:       registry,
		Logger:         logger,
	})

	fmt.Printf("Downloading %d panoramas into %s\n", len(recs), cfg.PanoDir)
	summary, err := dl.Run(ctx, recs, utils.GetInt(args, "batch-size", 50), utils.GetBool(args, "force"))
	if err != nil {
		return err
	}
	fmt.Printf("Done: %d downloaded, %d skipped, %d failed\n",
		summary.Downloaded, summary.Skipped, summary.Failed)

	if stats, err := registry.GetStats(); err == nil {
		fmt.Printf("Registry: %d panoramas (%d dated, %d projected)\n",
			stats.Total, stats.Dated, stats.Projected)
	}
	return nil
}

func runProject(ctx context.Context, args map[string]string, logger *zap.Logger) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	panoidsPath := utils.GetString(args, "panoids", "")
	if panoidsPath == "" {
		utils.PrintUsage()
		return errors.New("project requires --panoids")
	}
	recs, err := panoids.Load(panoidsPath)
	if err != nil {
		return err
	}

	if !cfg.ProjectionSides.Any() {
		return &config.ConfigurationError{Reason: "all projection sides are disabled"}
	}

	registry, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer registry.Close()

	pr := &project.Projector{
		FaceW:   cfg.ProjectedResolution,
		Sides:   cfg.ProjectionSides.Enabled(),
		CubeDir: utils.GetString(args, "out-dir", cfg.CubeDir),
		Logger:  logger,
	}

	panoDir := utils.GetString(args, "pano-dir", cfg.PanoDir)
	sum, err := pr.Run(ctx, panoDir, recs, registry, utils.GetBool(args, "delete"))
	if err != nil {
		return err
	}
	fmt.Printf("Projection done: %d projected, %d skipped, %d failed, %d without a dated record\n",
		sum.Projected, sum.Skipped, sum.Failed, sum.NoRecord)
	return nil
}

func runPrune(args map[string]string) error {
	panoidsPath := utils.GetString(args, "panoids", "")
	if panoidsPath == "" {
		utils.PrintUsage()
		return errors.New("prune requires --panoids")
	}
	recs, err := panoids.Load(panoidsPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	panoDir := utils.GetString(args, "pano-dir", cfg.PanoDir)

	registry, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer registry.Close()

	stats, err := panoids.Prune(panoDir, recs, registry, utils.GetBool(args, "dry-run"))
	if err != nil {
		return err
	}
	fmt.Printf("Prune done: %d scanned, %d kept, %d deleted, %d unparseable\n",
		stats.Scanned, stats.Kept, stats.Deleted, stats.Unparseable)
	return nil
}
