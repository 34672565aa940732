package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/maidx/internal/domain/b50"
	"github.com/smartystreets/goconvey/convey"
)

const musicData = `[
  {"id": "834", "title": "Old Song", "type": "SD", "ds": [5.0, 7.8, 10.5, 12.7, 13.2],
   "level": ["5", "7+", "10", "12+", "13"], "cids": [1,2,3,4,5],
   "basic_info": {"title": "Old Song", "artist": "a", "genre": "g", "bpm": 150, "release_date": "", "from": "maimai", "is_new": false}},
  {"id": "11451", "title": "New Song", "type": "DX", "ds": [6.0, 8.5, 11.8, 14.0],
   "level": ["6", "8+", "11+", "14"], "cids": [6,7,8,9],
   "basic_info": {"title": "New Song", "artist": "b", "genre": "g", "bpm": 180, "release_date": "2024-07-12", "from": "maimai でらっくす BUDDiES PLUS", "is_new": true}}
]`

const export = `{"username": "alice", "rating": 0, "records": [
  {"achievements": 100.5, "ds": 14.0, "dxScore": 2500, "fc": "app", "fs": "fsdp", "level": "14", "level_index": 3,
   "level_label": "Master", "ra": 0, "rate": "sssp", "song_id": 11451, "title": "New Song", "type": "DX"},
  {"achievements": 100.0, "ds": 12.7, "dxScore": 2000, "fc": "", "fs": "", "level": "12+", "level_index": 3,
   "level_label": "Master", "ra": 0, "rate": "sss", "song_id": 834, "title": "Old Song", "type": "SD"}
]}`

const exportWithUnknown = `{"records": [
  {"achievements": 100.5, "ds": 14.0, "level_index": 3, "song_id": 11451, "title": "New Song", "type": "DX"},
  {"achievements": 99.0, "ds": 13.0, "level_index": 3, "song_id": 999, "title": "Missing", "type": "SD"}
]}`

func writeFile(dir, name, body string) string {
	p := filepath.Join(dir, name)
	convey.So(os.WriteFile(p, []byte(body), 0o600), convey.ShouldBeNil)
	return p
}

func TestRun(t *testing.T) {
	convey.Convey("Given an export and a music list on disk", t, func() {
		dir := t.TempDir()
		music := writeFile(dir, "music_data.json", musicData)
		scores := writeFile(dir, "records.json", export)
		ctx := context.Background()

		convey.Convey("When printed as a table", func() {
			var out bytes.Buffer
			err := run(ctx, []string{"-file", scores, "-music-data", music}, &out)

			convey.Convey("Then both buckets and the total are shown", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "Old Song")
				convey.So(out.String(), convey.ShouldContainSubstring, "100.5000%")
				convey.So(out.String(), convey.ShouldContainSubstring, "SSS+")
				convey.So(out.String(), convey.ShouldContainSubstring, "589")
			})
		})

		convey.Convey("When printed as JSON", func() {
			var out bytes.Buffer
			convey.So(run(ctx, []string{"-file", scores, "-music-data", music, "-json"}, &out), convey.ShouldBeNil)

			var sum struct {
				Past  []struct{ Rating int } `json:"past"`
				New   []struct{ Rating int } `json:"new"`
				Total int                    `json:"total"`
			}
			convey.So(json.Unmarshal(out.Bytes(), &sum), convey.ShouldBeNil)
			convey.So(sum.Past, convey.ShouldHaveLength, 1)
			convey.So(sum.Past[0].Rating, convey.ShouldEqual, 274)
			convey.So(sum.New, convey.ShouldHaveLength, 1)
			convey.So(sum.New[0].Rating, convey.ShouldEqual, 315)
			convey.So(sum.Total, convey.ShouldEqual, 589)
		})

		convey.Convey("When the export names a chart the list lacks", func() {
			unknown := writeFile(dir, "unknown.json", exportWithUnknown)

			convey.Convey("Then the default policy fails", func() {
				err := run(ctx, []string{"-file", unknown, "-music-data", music}, &bytes.Buffer{})
				convey.So(errors.Is(err, b50.ErrMissingEra), convey.ShouldBeTrue)
			})

			convey.Convey("And exclude drops it", func() {
				var out bytes.Buffer
				err := run(ctx, []string{"-file", unknown, "-music-data", music, "-unknown-era", "exclude", "-json"}, &out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, `"total": 315`)
			})
		})

		convey.Convey("When flags are wrong", func() {
			convey.So(run(ctx, nil, &bytes.Buffer{}), convey.ShouldNotBeNil)
			convey.So(run(ctx, []string{"-file", scores, "-region", "mars"}, &bytes.Buffer{}), convey.ShouldNotBeNil)
			convey.So(run(ctx, []string{"-file", scores, "-music-data", music, "-tie-break", "coin"}, &bytes.Buffer{}), convey.ShouldNotBeNil)
			convey.So(run(ctx, []string{"-file", scores, "-music-data", music, "-format", "csv"}, &bytes.Buffer{}), convey.ShouldNotBeNil)
		})
	})
}
