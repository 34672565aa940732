// Package scoresource maps the score export formats players bring (prober
// records, LXNS scores, in-game dumps and the plain upload body) into
// model.ChartResult.
//
// Each format has its own adapter; nothing here guesses a format from the
// shape of the payload. Records from sources that do not carry a difficulty
// constant have a zero DS and are completed from the catalog.
package scoresource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Sentinel error kinds for this package.
var (
	ErrUnknownFormat = errors.New("unknown score format")
	ErrInvalidRecord = errors.New("invalid score record")
)

// Format names accepted by Decode.
const (
	FormatDivingFish = "divingfish"
	FormatLXNS       = "lxns"
	FormatInGame     = "ingame"
	FormatUpload     = "upload"
)

// Formats lists every accepted format name.
func Formats() []string {
	return []string{FormatDivingFish, FormatLXNS, FormatInGame, FormatUpload}
}

var maxAchievement = decimal.NewFromInt(101)

// Decode reads a payload of the named format and returns normalized results.
func Decode(format string, r io.Reader) ([]model.ChartResult, error) {
	dec := json.NewDecoder(r)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatDivingFish:
		var resp DivingFishResponse
		if err := dec.Decode(&resp); err != nil {
			return nil, fmt.Errorf("decode divingfish payload: %w", err)
		}
		return FromDivingFish(resp.Records)
	case FormatLXNS:
		var resp LXNSResponse
		if err := dec.Decode(&resp); err != nil {
			return nil, fmt.Errorf("decode lxns payload: %w", err)
		}
		return FromLXNS(resp.Data)
	case FormatInGame:
		var resp MusicAllResponse
		if err := dec.Decode(&resp); err != nil {
			return nil, fmt.Errorf("decode in-game payload: %w", err)
		}
		return FromInGame(resp.Songs())
	case FormatUpload:
		var scores []UploadScore
		if err := dec.Decode(&scores); err != nil {
			return nil, fmt.Errorf("decode upload payload: %w", err)
		}
		return FromUpload(scores)
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
}

func invalid(i int, format string, args ...any) error {
	return fmt.Errorf("record %d: %w: %s", i, ErrInvalidRecord, fmt.Sprintf(format, args...))
}

// checkNumbers validates achievement and ds at the boundary and rounds them
// to persisted precision.
func checkNumbers(i int, ach, ds decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if ach.IsNegative() || ach.GreaterThan(maxAchievement) {
		return ach, ds, invalid(i, "achievement %s out of range", ach)
	}
	if ds.IsNegative() {
		return ach, ds, invalid(i, "difficulty constant %s is negative", ds)
	}
	return model.NormalizeAchievement(ach), model.NormalizeDS(ds), nil
}

// chartTypeForSongID follows the prober id scheme: 10000+ is the DX layout of
// a song, 100000+ is a utage chart.
func chartTypeForSongID(id int) model.ChartType {
	switch {
	case id >= 100000:
		return model.ChartUtage
	case id >= 10000:
		return model.ChartDeluxe
	default:
		return model.ChartStandard
	}
}
