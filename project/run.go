package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"panoscraper/panoids"
	"panoscraper/store"
	"panoscraper/types"
)

// Summary counts the outcomes of a projection run.
type Summary struct {
	Projected int
	Skipped   int
	Failed    int
	NoRecord  int
}

// Run projects every panorama JPEG found under panoDir. Records provide
// the capture date for each panoid; files without a dated record are
// skipped. When deleteSource is set the source JPEG is removed after its
// faces are written.
func (pr *Projector) Run(ctx context.Context, panoDir string, records []types.Panorama, registry *store.Store, deleteSource bool) (Summary, error) {
	byID := make(map[string]types.Panorama, len(records))
	for _, rec := range records {
		byID[rec.Panoid] = rec
	}

	entries, err := os.ReadDir(panoDir)
	if err != nil {
		return Summary{}, fmt.Errorf("cannot read panorama directory %s: %w", panoDir, err)
	}

	var sum Summary
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}

		id := panoids.PanoidFromFileName(entry.Name())
		if id == "" {
			sum.NoRecord++
			continue
		}
		rec, ok := byID[id]
		if !ok || rec.Year == nil {
			pr.logger().Debug("no dated record for panorama", zap.String("file", entry.Name()))
			sum.NoRecord++
			continue
		}

		path := filepath.Join(panoDir, entry.Name())
		if pr.OutputsExist(rec) {
			sum.Skipped++
			if deleteSource {
				os.Remove(path)
			}
			continue
		}

		if err := pr.ProjectFile(path, rec); err != nil {
			pr.logger().Warn("projection failed",
				zap.String("panoid", id),
				zap.Error(err),
			)
			sum.Failed++
			continue
		}
		sum.Projected++

		if registry != nil {
			if err := registry.MarkProjected(id); err != nil {
				pr.logger().Warn("cannot mark projected", zap.String("panoid", id), zap.Error(err))
			}
		}
		if deleteSource {
			if err := os.Remove(path); err != nil {
				pr.logger().Warn("cannot remove source panorama", zap.String("path", path), zap.Error(err))
			}
		}

		if (i+1)%50 == 0 {
			fmt.Printf("Projected %d panoramas\n", sum.Projected)
		}
	}
	return sum, nil
}
