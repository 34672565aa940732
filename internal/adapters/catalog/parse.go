// Package catalog fetches the public music data list and turns it into the
// charts, difficulty constants and versions the rating service needs.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
)

// BasicInfo is the music_data basic_info block.
type BasicInfo struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Genre       string `json:"genre"`
	BPM         int    `json:"bpm"`
	ReleaseDate string `json:"release_date"`
	From        string `json:"from"`
	IsNew       bool   `json:"is_new"`
}

// MusicInfo is one song of the music_data list.
type MusicInfo struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Type      string            `json:"type"`
	DS        []decimal.Decimal `json:"ds"`
	Level     []string          `json:"level"`
	CIDs      []int             `json:"cids"`
	BasicInfo BasicInfo         `json:"basic_info"`
}

// Song is a parsed MusicInfo.
type Song struct {
	ID          int
	Title       string
	Type        model.ChartType
	Version     string
	ReleaseDate time.Time
	IsNew       bool
	Charts      []model.CatalogChart
}

// Parse decodes a music_data document.
func Parse(r io.Reader) ([]Song, error) {
	var raw []MusicInfo
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]Song, 0, len(raw))
	for _, m := range raw {
		s, err := parseSong(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func parseSong(m MusicInfo) (Song, error) {
	id, err := strconv.Atoi(m.ID)
	if err != nil {
		return Song{}, fmt.Errorf("%w: song id %q", ErrMalformed, m.ID)
	}
	ct, err := model.ParseChartType(m.Type)
	if err != nil {
		return Song{}, fmt.Errorf("%w: song %d: %v", ErrMalformed, id, err)
	}
	if id >= 100000 {
		ct = model.ChartUtage
	}
	var released time.Time
	if m.BasicInfo.ReleaseDate != "" {
		if released, err = dateparse.ParseAny(m.BasicInfo.ReleaseDate); err != nil {
			return Song{}, fmt.Errorf("%w: song %d release date %q", ErrMalformed, id, m.BasicInfo.ReleaseDate)
		}
	}
	title := m.Title
	if title == "" {
		title = m.BasicInfo.Title
	}

	s := Song{
		ID:          id,
		Title:       title,
		Type:        ct,
		Version:     m.BasicInfo.From,
		ReleaseDate: released,
		IsNew:       m.BasicInfo.IsNew,
	}
	for i, ds := range m.DS {
		var diff model.Difficulty
		if ct == model.ChartUtage {
			if i > 0 {
				break
			}
			diff = model.Utage
		} else if diff, err = model.DifficultyFromIndex(i); err != nil {
			return Song{}, fmt.Errorf("%w: song %d: %v", ErrMalformed, id, err)
		}
		level := ""
		if i < len(m.Level) {
			level = m.Level[i]
		}
		c := model.CatalogChart{
			Chart: model.ChartIdentity{SongID: id, Title: title, Type: ct, Difficulty: diff},
			Level: level,
			DS:    model.NormalizeDS(ds),
		}
		if s.Version != "" {
			c.Versions = []string{s.Version}
		}
		s.Charts = append(s.Charts, c)
	}
	return s, nil
}

// Snapshot groups songs into versions for region. A version's release date
// is the earliest release date of its songs; songs without a date do not
// contribute. Versions are ordered by release date, then name.
func Snapshot(region string, songs []Song) model.CatalogSnapshot {
	versions := map[string]*model.Version{}
	snap := model.CatalogSnapshot{Region: region}
	for _, s := range songs {
		snap.Charts = append(snap.Charts, s.Charts...)
		if s.Version == "" {
			continue
		}
		v, ok := versions[s.Version]
		if !ok {
			v = &model.Version{Region: region, Name: s.Version}
			versions[s.Version] = v
		}
		if !s.ReleaseDate.IsZero() && (v.ReleaseDate.IsZero() || s.ReleaseDate.Before(v.ReleaseDate)) {
			v.ReleaseDate = s.ReleaseDate
		}
	}
	for _, v := range versions {
		snap.Versions = append(snap.Versions, *v)
	}
	sort.Slice(snap.Versions, func(i, j int) bool {
		a, b := snap.Versions[i], snap.Versions[j]
		if !a.ReleaseDate.Equal(b.ReleaseDate) {
			return a.ReleaseDate.Before(b.ReleaseDate)
		}
		return a.Name < b.Name
	})
	return snap
}
