// Package discover drives a bounded worker pool over a set of query points,
// deduplicating the panoramas the lookups resolve to.
package discover

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"panoscraper/config"
	"panoscraper/types"
)

// ErrNoPoints is returned when a run is started with an empty point set.
// It is a configuration problem: the run refuses to start, nothing
// network-facing happens first.
var ErrNoPoints = &config.ConfigurationError{Reason: "no query points to process"}

// LookupFunc resolves one point to its nearest panorama. A (nil, nil) return
// means no panorama exists near the point; an error means the lookup failed
// after retries. The engine treats both the same way.
type LookupFunc func(ctx context.Context, point types.GeoPoint) (*types.Panorama, error)

// Engine runs one discovery pass over a point set.
type Engine struct {
	Lookup      LookupFunc
	Concurrency int           // number of workers, also the in-flight request bound
	PrintEvery  int           // progress line cadence in processed points
	Interval    time.Duration // progress sampling interval (default 1s)
	Out         io.Writer     // progress destination (default os.Stdout)
	Logger      *zap.Logger
}

// Result is the outcome of a completed discovery run.
type Result struct {
	Panoramas []types.Panorama // unique panoramas in discovery order
	Processed int              // points processed, equals the input size
	Unique    int              // always equals len(Panoramas)
}

// job is the shared state of one run. One mutex guards every mutation; it is
// only ever held for map/slice/counter operations, never across a lookup.
type job struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	panoramas []types.Panorama
	processed int
	unique    int
}

// Run processes every point with Concurrency workers and returns the
// deduplicated panoramas. Per-point failures are absorbed: a failed lookup
// counts as processed with no panorama found. The run ends only when all
// points are done.
func (e *Engine) Run(ctx context.Context, pts []types.GeoPoint) (*Result, error) {
	if len(pts) == 0 {
		return nil, ErrNoPoints
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = 50
	}
	if concurrency > len(pts) {
		concurrency = len(pts)
	}

	queue := make(chan types.GeoPoint, len(pts))
	for _, p := range pts {
		queue <- p
	}
	close(queue)

	j := &job{seen: make(map[string]struct{})}

	reporter := newReporter(j, len(pts), e.PrintEvery, e.Interval, e.Out)
	reporter.start()
	defer reporter.stop()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for point := range queue {
				e.processPoint(ctx, j, point, logger)
			}
		}()
	}
	wg.Wait()

	j.mu.Lock()
	defer j.mu.Unlock()
	logger.Info("discovery run complete",
		zap.Int("processed", j.processed),
		zap.Int("unique", j.unique),
	)
	return &Result{
		Panoramas: j.panoramas,
		Processed: j.processed,
		Unique:    j.unique,
	}, nil
}

// processPoint performs one lookup and folds its outcome into the shared
// state. The seen-check and insert happen under the same lock acquisition so
// two workers can never both admit the same panoid.
func (e *Engine) processPoint(ctx context.Context, j *job, point types.GeoPoint, logger *zap.Logger) {
	pan, err := e.Lookup(ctx, point)
	if err != nil {
		// Indistinguishable from "nothing near this point" downstream.
		logger.Debug("lookup failed, treating point as empty",
			zap.Float64("lat", point.Lat),
			zap.Float64("lon", point.Lon),
			zap.Error(err),
		)
		pan = nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.processed++
	if pan == nil || pan.Panoid == "" {
		return
	}
	if _, dup := j.seen[pan.Panoid]; dup {
		return
	}
	j.seen[pan.Panoid] = struct{}{}
	j.panoramas = append(j.panoramas, *pan)
	j.unique++
}

// snapshot reads the counters under the job lock.
func (j *job) snapshot() (processed, unique int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.processed, j.unique
}
