package panoids

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"panoscraper/store"
	"panoscraper/types"
)

// PruneStats counts the outcomes of a prune pass over a panorama directory.
type PruneStats struct {
	Scanned     int
	Kept        int
	Deleted     int
	Unparseable int
}

// Prune removes panorama JPEGs whose panoid does not appear in records,
// along with their registry rows so a later download re-fetches them.
// With dryRun set nothing is deleted; doomed files are printed instead.
// Files whose name does not follow the <lat>_<lon>_<panoid>.jpg layout are
// counted but left alone. registry may be nil.
func Prune(panoDir string, records []types.Panorama, registry *store.Store, dryRun bool) (PruneStats, error) {
	keep := make(map[string]struct{}, len(records))
	for _, rec := range records {
		keep[rec.Panoid] = struct{}{}
	}

	entries, err := os.ReadDir(panoDir)
	if err != nil {
		return PruneStats{}, fmt.Errorf("cannot read panorama directory %s: %w", panoDir, err)
	}

	var stats PruneStats
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}
		stats.Scanned++

		id := PanoidFromFileName(entry.Name())
		if id == "" {
			stats.Unparseable++
			continue
		}
		if _, ok := keep[id]; ok {
			stats.Kept++
			continue
		}

		path := filepath.Join(panoDir, entry.Name())
		if dryRun {
			fmt.Printf("Would delete %s\n", path)
			stats.Deleted++
			continue
		}
		if err := os.Remove(path); err != nil {
			return stats, fmt.Errorf("cannot delete %s: %w", path, err)
		}
		if registry != nil {
			if err := registry.Delete(id); err != nil {
				return stats, fmt.Errorf("cannot delete registry row for %s: %w", id, err)
			}
		}
		stats.Deleted++
	}
	return stats, nil
}
