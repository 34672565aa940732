package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/pkg/logger"
	"github.com/okian/maidx/pkg/metrics"
)

// Fetcher supplies parsed songs.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Song, error)
}

// Importer persists a catalog snapshot.
type Importer interface {
	Import(ctx context.Context, snap model.CatalogSnapshot) error
}

// SyncReport summarises one sync.
type SyncReport struct {
	Region   string        `json:"region"`
	Songs    int           `json:"songs"`
	Charts   int           `json:"charts"`
	Versions int           `json:"versions"`
	Latest   model.Version `json:"latest"`
}

// Syncer pulls the music list and writes it to the catalog store.
type Syncer struct {
	fetcher  Fetcher
	importer Importer
}

// NewSyncer creates a Syncer.
func NewSyncer(f Fetcher, i Importer) *Syncer {
	return &Syncer{fetcher: f, importer: i}
}

// Sync fetches the list and imports it for region.
func (s *Syncer) Sync(ctx context.Context, region string) (SyncReport, error) {
	log := logger.Get().Named("catalog")
	start := time.Now()

	songs, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.RecordCatalogSync(region, "error")
		return SyncReport{}, err
	}
	snap := Snapshot(region, songs)
	if err := s.importer.Import(ctx, snap); err != nil {
		metrics.RecordCatalogSync(region, "error")
		return SyncReport{}, fmt.Errorf("import catalog: %w", err)
	}

	rep := SyncReport{Region: region, Songs: len(songs), Charts: len(snap.Charts), Versions: len(snap.Versions)}
	rep.Latest, _ = snap.LatestVersion()
	metrics.RecordCatalogSync(region, "ok")
	log.Info(ctx, "catalog synced",
		logger.String("region", region),
		logger.Int("charts", rep.Charts),
		logger.String("latest_version", rep.Latest.Name),
		logger.Duration("took", time.Since(start)))
	return rep, nil
}
