package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/internal/domain/types"
	"github.com/okian/maidx/internal/loadtest"
)

// Default configuration constants.
const (
	defaultPlayers         = 500
	defaultScoresPerPlayer = 60
	defaultTopN            = 50
	defaultWorkers         = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultTestTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		musicData = flag.String("music-data", catalog.DefaultMusicDataURL, "music_data URL charts are drawn from")
		region    = flag.String("region", types.RegionJP, "Region uploads are rated for (jp, ex, cn)")
		players   = flag.Int("players", defaultPlayers, "Number of players to generate")
		scores    = flag.Int("scores", defaultScoresPerPlayer, "Scores uploaded per player")
		topN      = flag.Int("top", defaultTopN, "Number of leaderboard entries to fetch")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Uint64("seed", 0, "Generator seed (0 picks one)")
		output    = flag.String("output", "", "Write generated uploads to this file")
		logFile   = flag.String("log", "", "Log file (default: loadtest_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Log every failed request")
	)
	flag.Parse()

	closer, err := loadtest.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &loadtest.Config{
		BaseURL:         *baseURL,
		MusicDataURL:    *musicData,
		Region:          *region,
		Players:         *players,
		ScoresPerPlayer: *scores,
		TopN:            *topN,
		Workers:         *workers,
		Timeout:         *timeout,
		Seed:            *seed,
		OutputFile:      *output,
		Verbose:         *verbose,
	}
	if _, err := loadtest.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // deferred close is best effort
	}
}
