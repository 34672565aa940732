package scoresource

import (
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
)

// InGameSong is one entry of an in-game user music dump.
type InGameSong struct {
	MusicID       int `json:"musicId"`
	Level         int `json:"level"`
	PlayCount     int `json:"playCount"`
	Achievement   int `json:"achievement"` // percentage x 10000
	ComboStatus   int `json:"comboStatus"`
	SyncStatus    int `json:"syncStatus"`
	DeluxscoreMax int `json:"deluxscoreMax"`
	ScoreRank     int `json:"scoreRank"`
}

// MusicAllResponse is the in-game paged user music response.
type MusicAllResponse struct {
	UserID        int64 `json:"userId"`
	Length        int   `json:"length"`
	NextIndex     int   `json:"nextIndex"`
	UserMusicList []struct {
		UserMusicDetailList []InGameSong `json:"userMusicDetailList"`
		Length              int          `json:"length"`
	} `json:"userMusicList"`
}

// Songs flattens the response's pages.
func (r MusicAllResponse) Songs() []InGameSong {
	var out []InGameSong
	for _, m := range r.UserMusicList {
		out = append(out, m.UserMusicDetailList...)
	}
	return out
}

// FromInGame maps in-game entries. The dump identifies charts by music id
// only, so titles are left empty and resolved through the catalog.
func FromInGame(songs []InGameSong) ([]model.ChartResult, error) {
	out := make([]model.ChartResult, 0, len(songs))
	for i, s := range songs {
		if s.MusicID <= 0 {
			return nil, invalid(i, "music id %d", s.MusicID)
		}
		ct := chartTypeForSongID(s.MusicID)
		diff, err := model.DifficultyFromIndex(s.Level)
		if err != nil && ct != model.ChartUtage {
			return nil, invalid(i, "%v", err)
		}
		if ct == model.ChartUtage {
			diff = model.Utage
		}
		combo, err := model.ComboFromIndex(s.ComboStatus)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		sync, err := model.SyncFromIndex(s.SyncStatus)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		ach, _, err := checkNumbers(i, decimal.New(int64(s.Achievement), -4), decimal.Zero)
		if err != nil {
			return nil, err
		}
		pc := s.PlayCount
		out = append(out, model.ChartResult{
			Chart:       model.ChartIdentity{SongID: s.MusicID, Type: ct, Difficulty: diff},
			Achievement: ach,
			DXScore:     s.DeluxscoreMax,
			Combo:       combo,
			Sync:        sync,
			PlayCount:   &pc,
		})
	}
	return out, nil
}
