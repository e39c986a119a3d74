package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/backfill"
	"github.com/fortuna/hoops/internal/publisher"
)

var (
	backfillTeam   string
	backfillStart  string
	backfillEnd    string
	backfillGames  []string
	backfillDryRun bool
)

func init() {
	f := backfillCmd.Flags()
	f.StringVar(&backfillTeam, "team", "", "Only this team's games.")
	f.StringVar(&backfillStart, "start", "", "First date to include (YYYY-MM-DD).")
	f.StringVar(&backfillEnd, "end", "", "Last date to include (YYYY-MM-DD).")
	f.StringSliceVar(&backfillGames, "game", nil, "Specific box score links; repeatable.")
	f.BoolVar(&backfillDryRun, "dry-run", false, "List the games without fetching box scores or publishing.")
	rootCmd.AddCommand(backfillCmd)
}

var backfillCmd = &cobra.Command{
	Use:   "backfill [season]",
	Short: "Publishes a season's schedule and every completed box score to Redis streams.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := backfill.Request{Team: backfillTeam, GameLinks: backfillGames, DryRun: backfillDryRun}
		if len(args) == 1 {
			season, err := parseSeason(args[0])
			if err != nil {
				return err
			}
			req.Season = season
		}
		if backfillStart != "" || backfillEnd != "" {
			start, err := time.Parse("2006-01-02", backfillStart)
			if err != nil {
				return errors.Wrap(err, "--start")
			}
			end, err := time.Parse("2006-01-02", backfillEnd)
			if err != nil {
				return errors.Wrap(err, "--end")
			}
			req.StartDate, req.EndDate = &start, &end
		}

		jobType, err := req.DeriveType()
		if err != nil {
			return err
		}
		spec := backfill.JobSpec{
			Type:      jobType,
			Season:    req.Season,
			Team:      req.Team,
			GameLinks: req.GameLinks,
			DryRun:    req.DryRun,
		}
		if req.StartDate != nil {
			spec.Start, spec.End = *req.StartDate, *req.EndDate
		}

		var sink backfill.Sink
		if !spec.DryRun {
			client, err := publisher.Connect(cmd.Context(), app.cfg.Redis.URL)
			if err != nil {
				return err
			}
			pub := publisher.NewStreamPublisher(client, app.cfg.Redis.StreamPrefix)
			defer pub.Close()
			sink = pub
		}

		out := cmd.OutOrStdout()
		res, err := backfill.NewRunner(app.scraper, sink).Run(cmd.Context(), spec, &consoleReporter{out: out, logger: app.logger})
		if err != nil {
			return err
		}

		if spec.DryRun {
			for _, link := range res.Planned {
				fmt.Fprintln(out, link)
			}
			return nil
		}
		fmt.Fprintf(out, "published %d games, %d player lines, %d team pages\n", res.Games, res.Entries, res.Teams)
		return nil
	},
}

// consoleReporter prints progress lines for interactive runs.
type consoleReporter struct {
	out    io.Writer
	logger *zap.Logger
}

func (r *consoleReporter) OnJobStart(spec backfill.JobSpec) {
	r.logger.Info("backfill starting", zap.String("type", string(spec.Type)), zap.Int("season", spec.Season))
}

func (r *consoleReporter) OnDateStart(date time.Time, index int, total int) {
	fmt.Fprintf(r.out, "[%d/%d] %s\n", index+1, total, date.Format("Jan 2, 2006"))
}

func (r *consoleReporter) OnGameProcessed(gameLink string, entries int) {
	fmt.Fprintf(r.out, "  %s (%d players)\n", gameLink, entries)
}

func (r *consoleReporter) OnProgress(message string, current int, total int) {
	r.logger.Debug(message, zap.Int("current", current), zap.Int("total", total))
}

func (r *consoleReporter) OnJobComplete() {}

func (r *consoleReporter) OnJobError(err error) {
	r.logger.Error("backfill failed", zap.Error(err))
}
