package loadtest

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/okian/maidx/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// submitUploads posts every upload with at most cfg.Workers in flight.
// Individual failures are counted, not returned.
func submitUploads(ctx context.Context, c *apiClient, cfg *Config, uploads []Upload, stats *Stats) error {
	log := logger.Get().Named("loadtest")
	log.Info(ctx, "submitting uploads", logger.Int("uploads", len(uploads)), logger.Int("workers", cfg.Workers))

	var submitted, successful, duplicate, failed, stored atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, u := range uploads {
		g.Go(func() error {
			rep, err := c.upload(gctx, u)
			submitted.Add(1)
			var se *statusError
			switch {
			case errors.As(err, &se) && se.Code == http.StatusConflict:
				duplicate.Add(1)
			case err != nil:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "upload failed", logger.String("player", u.Player), logger.Error(err))
				}
			default:
				successful.Add(1)
				stored.Add(int64(rep.Success))
			}
			return gctx.Err()
		})
	}
	err := g.Wait()

	stats.UploadsSubmitted = int(submitted.Load())
	stats.UploadsSuccessful = int(successful.Load())
	stats.UploadsDuplicate = int(duplicate.Load())
	stats.UploadsFailed = int(failed.Load())
	stats.ScoresStored = int(stored.Load())
	log.Info(ctx, "upload submission completed",
		logger.Int("successful", stats.UploadsSuccessful),
		logger.Int("duplicate", stats.UploadsDuplicate),
		logger.Int("failed", stats.UploadsFailed))
	return err
}
