// Package loadtest drives a running maidx server with generated players and
// checks that its leaderboard agrees with their Best 50 totals.
package loadtest

import (
	"time"

	"github.com/okian/maidx/internal/adapters/scoresource"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL         string        // Base URL of the service
	MusicDataURL    string        // music_data list the charts are drawn from
	Region          string        // region uploads are rated for
	Players         int           // number of players to generate
	ScoresPerPlayer int           // scores uploaded per player
	TopN            int           // leaderboard entries to fetch
	Workers         int           // concurrent HTTP workers
	Timeout         time.Duration // HTTP request timeout
	DrainTimeout    time.Duration // how long to wait for the recompute queue
	Seed            uint64        // generator seed; 0 picks one
	OutputFile      string        // where generated uploads are saved; empty skips
	Verbose         bool
}

// Upload is one generated player's batch.
type Upload struct {
	Player   string                    `json:"player"`
	UploadID string                    `json:"upload_id"`
	Scores   []scoresource.UploadScore `json:"scores"`
}

// Entry mirrors a leaderboard row.
type Entry struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Rating int    `json:"rating"`
}

// uploadReport mirrors the upload response.
type uploadReport struct {
	UploadID string `json:"upload_id"`
	Success  int    `json:"success"`
	Failed   int    `json:"failed"`
	Queued   bool   `json:"queued"`
}

// Stats holds run statistics.
type Stats struct {
	PlayersGenerated   int
	UploadsSubmitted   int
	UploadsSuccessful  int
	UploadsDuplicate   int
	UploadsFailed      int
	ScoresStored       int
	RanksRetrieved     int
	LeaderboardEntries int
	Mismatches         int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
