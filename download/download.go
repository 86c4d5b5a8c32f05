// Package download fetches panorama tiles and stitches them into full
// equirectangular JPEGs, tracking finished work in the registry.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"panoscraper/panoids"
	"panoscraper/store"
	"panoscraper/types"
)

// Options configures a Downloader.
type Options struct {
	TileDir        string
	PanoDir        string
	ConnLimit      int     // bound on concurrent tile connections (default 100)
	RequestsPerSec float64 // tile request rate cap; 0 disables the limiter
	TileRetries    int     // attempts per tile (default 3)
	TileBaseURL    string  // endpoint override, used by tests
	Registry       *store.Store
	Logger         *zap.Logger
}

// Downloader downloads and stitches panoramas in concurrent batches.
type Downloader struct {
	http        *http.Client
	limiter     *rate.Limiter
	registry    *store.Store
	tileDir     string
	panoDir     string
	tileRetries int
	tileBaseURL string
	logger      *zap.Logger
}

// Summary reports what one download run did.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// New builds a Downloader. The connection pool is capped at ConnLimit, and
// an optional token-bucket limiter keeps the tile request rate polite.
func New(opts Options) *Downloader {
	if opts.ConnLimit <= 0 {
		opts.ConnLimit = 100
	}
	if opts.TileRetries <= 0 {
		opts.TileRetries = 3
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1)
	}

	return &Downloader{
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxConnsPerHost:     opts.ConnLimit,
				MaxIdleConnsPerHost: opts.ConnLimit,
			},
		},
		limiter:     limiter,
		registry:    opts.Registry,
		tileDir:     opts.TileDir,
		panoDir:     opts.PanoDir,
		tileRetries: opts.TileRetries,
		tileBaseURL: opts.TileBaseURL,
		logger:      opts.Logger,
	}
}

// Run downloads every record in concurrent batches of batchSize. Panoramas
// already in the registry are skipped unless force is set. Per-panorama
// failures are logged and counted, never fatal for the batch.
func (d *Downloader) Run(ctx context.Context, recs []types.Panorama, batchSize int, force bool) (*Summary, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	for _, dir := range []string{d.tileDir, d.panoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}

	summary := &Summary{}
	var mu sync.Mutex

	for start := 0; start < len(recs); start += batchSize {
		end := start + batchSize
		if end > len(recs) {
			end = len(recs)
		}

		var wg sync.WaitGroup
		for _, rec := range recs[start:end] {
			wg.Add(1)
			go func(p types.Panorama) {
				defer wg.Done()
				outcome := d.downloadOne(ctx, p, force)

				mu.Lock()
				switch outcome {
				case outcomeDownloaded:
					summary.Downloaded++
				case outcomeSkipped:
					summary.Skipped++
				default:
					summary.Failed++
				}
				mu.Unlock()
			}(rec)
		}
		wg.Wait()

		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		fmt.Printf("Completed batch %d -> %d / %d\n", start+1, end, len(recs))
	}

	return summary, nil
}

type outcome int

const (
	outcomeDownloaded outcome = iota
	outcomeSkipped
	outcomeFailed
)

// downloadOne fetches all tiles for one panorama, stitches them, removes the
// tile files, and records the result.
func (d *Downloader) downloadOne(ctx context.Context, p types.Panorama, force bool) outcome {
	panoPath := filepath.Join(d.panoDir, panoids.PanoFileName(p))

	if !force && d.registry != nil {
		exists, _, err := d.registry.Exists(p.Panoid)
		if err != nil {
			d.logger.Warn("registry lookup failed", zap.String("panoid", p.Panoid), zap.Error(err))
		} else if exists {
			return outcomeSkipped
		}
	}

	tiles := TilesInfo(p.Panoid, d.tileBaseURL)
	defer deleteTiles(tiles, d.tileDir)

	for _, t := range tiles {
		if err := d.fetchTile(ctx, t); err != nil {
			d.logger.Error("tile download failed",
				zap.String("panoid", p.Panoid),
				zap.Int("x", t.X),
				zap.Int("y", t.Y),
				zap.Error(err),
			)
			return outcomeFailed
		}
	}

	if err := stitchTiles(tiles, d.tileDir, panoPath); err != nil {
		d.logger.Error("stitch failed", zap.String("panoid", p.Panoid), zap.Error(err))
		return outcomeFailed
	}

	if d.registry != nil {
		if err := d.registry.Record(p, panoPath); err != nil {
			d.logger.Warn("cannot record panorama", zap.String("panoid", p.Panoid), zap.Error(err))
		}
	}

	return outcomeDownloaded
}

// fetchTile downloads one tile to the tile directory, retrying transient
// failures a few times.
func (d *Downloader) fetchTile(ctx context.Context, t Tile) error {
	var lastErr error
	for attempt := 0; attempt < d.tileRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = d.fetchTileOnce(ctx, t)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (d *Downloader) fetchTileOnce(ctx context.Context, t Tile) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return err
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(filepath.Join(d.tileDir, t.Fname))
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}
