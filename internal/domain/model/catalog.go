package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Version is a game content release in one region.
type Version struct {
	ID          int64     `json:"id"`
	Region      string    `json:"region"`
	Name        string    `json:"name"`
	ReleaseDate time.Time `json:"release_date"`
}

// CatalogChart is a chart as known to the catalog: its identity, its level
// label, its difficulty constant and the versions it belongs to.
type CatalogChart struct {
	ID       int64           `json:"id"`
	Chart    ChartIdentity   `json:"chart"`
	Level    string          `json:"level"`
	DS       decimal.Decimal `json:"ds"`
	Versions []string        `json:"versions,omitempty"`
}

// CatalogSnapshot is everything a catalog sync writes for one region.
type CatalogSnapshot struct {
	Region   string
	Versions []Version
	Charts   []CatalogChart
}

// LatestVersion returns the version with the newest release date. Ties keep
// the first one listed. ok is false when there are no versions.
func (s CatalogSnapshot) LatestVersion() (v Version, ok bool) {
	for i, c := range s.Versions {
		if i == 0 || c.ReleaseDate.After(v.ReleaseDate) {
			v = c
			ok = true
		}
	}
	return v, ok
}
