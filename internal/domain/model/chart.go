// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// ChartType is the notes layout a chart belongs to.
type ChartType string

// Chart types as stored and exchanged on the wire.
const (
	ChartStandard ChartType = "std"
	ChartDeluxe   ChartType = "dx"
	ChartUtage    ChartType = "utage"
)

// ParseChartType accepts the spellings used by the score sources ("SD", "sd",
// "std", "DX", "dx", "utage").
func ParseChartType(s string) (ChartType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sd", "std", "standard":
		return ChartStandard, nil
	case "dx", "deluxe":
		return ChartDeluxe, nil
	case "utage":
		return ChartUtage, nil
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// Difficulty is the chart tier within a song.
type Difficulty string

// Difficulty tiers, ordered by index (see DifficultyFromIndex).
const (
	Basic    Difficulty = "basic"
	Advanced Difficulty = "advanced"
	Expert   Difficulty = "expert"
	Master   Difficulty = "master"
	ReMaster Difficulty = "remaster"
	Utage    Difficulty = "utage"
)

var difficultyOrder = []Difficulty{Basic, Advanced, Expert, Master, ReMaster}

// DifficultyFromIndex maps a level_index (0 = basic .. 4 = re:master).
func DifficultyFromIndex(i int) (Difficulty, error) {
	if i < 0 || i >= len(difficultyOrder) {
		return "", fmt.Errorf("difficulty index %d out of range", i)
	}
	return difficultyOrder[i], nil
}

// ParseDifficulty accepts lowercase names and the display labels ("Re:Master").
func ParseDifficulty(s string) (Difficulty, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, ":", "")
	v = strings.ReplaceAll(v, " ", "")
	for _, d := range append(difficultyOrder, Utage) {
		if string(d) == v {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Index returns the position of d in the basic..re:master order, or -1.
func (d Difficulty) Index() int {
	for i, v := range difficultyOrder {
		if v == d {
			return i
		}
	}
	return -1
}

// ChartIdentity uniquely identifies a chart: song, layout and tier.
// SongID is optional; some sources only know the title.
type ChartIdentity struct {
	SongID     int        `json:"song_id,omitempty"`
	Title      string     `json:"title"`
	Type       ChartType  `json:"type"`
	Difficulty Difficulty `json:"difficulty"`
}

// Key is a stable string form usable as a map key.
func (c ChartIdentity) Key() string {
	return c.Title + "\x1f" + string(c.Type) + "\x1f" + string(c.Difficulty)
}

// String implements fmt.Stringer in the "<title> [<type>] <difficulty>" form
// used in upload reports.
func (c ChartIdentity) String() string {
	return fmt.Sprintf("%s [%s] %s", c.Title, c.Type, c.Difficulty)
}

// Less orders identities by title, type, then difficulty index.
func (c ChartIdentity) Less(o ChartIdentity) bool {
	if c.Title != o.Title {
		return c.Title < o.Title
	}
	if c.Type != o.Type {
		return c.Type < o.Type
	}
	return c.Difficulty.Index() < o.Difficulty.Index()
}
