// Command b50 prints a Best 50 from a score export without a server: the
// export is classified against a music_data list and aggregated locally.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/internal/adapters/scoresource"
	"github.com/okian/maidx/internal/domain/b50"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/internal/domain/rating"
	"github.com/okian/maidx/internal/domain/types"
	"github.com/okian/maidx/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type options struct {
	export    string
	format    string
	musicData string
	region    string
	policy    string
	tieBreak  string
	asJSON    bool
}

func main() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Get().Error(ctx, "b50 failed", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("b50", flag.ContinueOnError)
	fs.StringVar(&o.export, "file", "", "score export to read (- for stdin)")
	fs.StringVar(&o.format, "format", scoresource.FormatDivingFish,
		"export format: "+strings.Join(scoresource.Formats(), ", "))
	fs.StringVar(&o.musicData, "music-data", catalog.DefaultMusicDataURL, "music_data file or URL")
	fs.StringVar(&o.region, "region", types.RegionJP, "region whose latest version defines the current era")
	fs.StringVar(&o.policy, "unknown-era", "fail", "charts without an era: fail, prior or exclude")
	fs.StringVar(&o.tieBreak, "tie-break", "stable", "equal ratings: stable or chart")
	fs.BoolVar(&o.asJSON, "json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.export == "" {
		return o, fmt.Errorf("-file is required")
	}
	if !types.ValidRegion(o.region) {
		return o, fmt.Errorf("unknown region %q", o.region)
	}
	return o, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	policy, err := b50.ParseUnknownEraPolicy(o.policy)
	if err != nil {
		return err
	}
	tie, err := b50.ParseTieBreak(o.tieBreak)
	if err != nil {
		return err
	}

	// The export and the music list are independent; load both at once.
	var (
		results []model.ChartResult
		songs   []catalog.Song
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		results, err = readExport(o.export, o.format)
		return err
	})
	g.Go(func() (err error) {
		songs, err = loadMusicData(gctx, o.musicData)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	idx := catalog.NewIndex(catalog.Snapshot(o.region, songs))
	classified := b50.Dedupe(idx.Classify(results))
	sum, err := b50.New(b50.WithUnknownEraPolicy(policy), b50.WithTieBreak(tie)).Aggregate(classified)
	if err != nil {
		return err
	}

	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	return printTable(out, sum)
}

func readExport(path, format string) ([]model.ChartResult, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return scoresource.Decode(format, r)
}

func loadMusicData(ctx context.Context, src string) ([]catalog.Song, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return catalog.NewClient(catalog.WithURL(src)).Fetch(ctx)
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return catalog.Parse(f)
}

func printTable(out io.Writer, sum model.B50Summary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	section := func(name string, rs []model.RatedResult, total int) {
		fmt.Fprintf(tw, "%s\t(%d)\t\t\t\t%d\n", name, len(rs), total)
		fmt.Fprintln(tw, "#\tTITLE\tTYPE\tDIFF\tDS\tACHIEVEMENT\tRANK\tRATING")
		for i, r := range rs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s%%\t%s\t%d\n",
				i+1, r.Chart.Title, r.Chart.Type, r.Chart.Difficulty,
				r.DS.StringFixed(1), r.Achievement.StringFixed(4), rating.Rank(r.Rank).Display(), r.Rating)
		}
		fmt.Fprintln(tw)
	}
	section("PAST", sum.Past, sum.PastTotal())
	section("NEW", sum.New, sum.NewTotal())
	fmt.Fprintf(tw, "TOTAL\t\t\t\t\t%d\n", sum.Total)
	return tw.Flush()
}
