package model

import "time"

// RecomputeJob asks the worker pool to rebuild one player's B50 for a region.
type RecomputeJob struct {
	JobID    string    // unique id, used for log correlation
	PlayerID int64     // player whose rating is stale
	Region   string    // jp, ex or cn
	Reason   string    // e.g. "upload", "catalog_sync"
	TS       time.Time // enqueue time
}
