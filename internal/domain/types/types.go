// Package types contains small value types shared by the leaderboard store,
// the service and the HTTP layer.
package types

// Entry is one row of a regional leaderboard.
type Entry struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Rating int    `json:"rating"`
}

// Regions a leaderboard and a latest version are tracked for.
const (
	RegionJP = "jp"
	RegionEX = "ex"
	RegionCN = "cn"
)

// ValidRegion reports whether r is one of the known regions.
func ValidRegion(r string) bool {
	switch r {
	case RegionJP, RegionEX, RegionCN:
		return true
	}
	return false
}
