package backfill

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/models"
	"github.com/fortuna/hoops/internal/schema"
)

// Source is the read side of a backfill; *service.Scraper satisfies it.
type Source interface {
	GetAllSchedule(ctx context.Context, season int) ([]models.ScheduleEntry, error)
	GetTeamSchedule(ctx context.Context, team string, season int) ([]models.ScheduleEntry, error)
	GetGameSummary(ctx context.Context, gameLink string) (models.GameSummary, error)
	GetBoxscore(ctx context.Context, gameLink string) ([]models.BoxscoreEntry, error)
	GetRoster(ctx context.Context, team string, season int) ([]models.Player, error)
	GetInjuryReport(ctx context.Context, team string, season int) ([]models.InjuryReport, error)
}

// Sink receives mapped records; *publisher.StreamPublisher satisfies it.
type Sink interface {
	PublishSchedule(ctx context.Context, season int, entries []models.ScheduleEntry) error
	PublishBoxscore(ctx context.Context, summary models.GameSummary, entries []models.BoxscoreEntry) error
	PublishRoster(ctx context.Context, season int, players []models.Player) error
	PublishInjuries(ctx context.Context, season int, reports []models.InjuryReport) error
}

// Runner executes backfill specs: it walks a schedule, reads every completed
// game's box score and hands the records to the sink. Season and team jobs
// also publish the roster and injury list of every team they cover.
type Runner struct {
	source Source
	sink   Sink
}

// NewRunner constructs a runner. sink may be nil only for dry runs.
func NewRunner(source Source, sink Sink) *Runner {
	return &Runner{source: source, sink: sink}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnJobStart(spec)

	res, err := r.run(ctx, spec, reporter)
	if err != nil {
		reporter.OnJobError(err)
		return res, err
	}
	reporter.OnJobComplete()
	return res, nil
}

func (r *Runner) run(ctx context.Context, spec JobSpec, reporter Reporter) (Result, error) {
	var res Result
	if !spec.DryRun && r.sink == nil {
		return res, errors.New("backfill needs a sink unless it is a dry run")
	}

	schedule, games, err := r.plan(ctx, spec)
	if err != nil {
		return res, err
	}

	if spec.DryRun {
		for _, g := range games {
			res.Planned = append(res.Planned, g.GameLink)
		}
		reporter.OnProgress(fmt.Sprintf("Dry-run mode: %d games would be published", len(games)), 0, len(games))
		return res, nil
	}

	if len(schedule) > 0 {
		if err := r.sink.PublishSchedule(ctx, spec.Season, schedule); err != nil {
			return res, err
		}
	}

	for _, team := range teamsOf(spec, schedule) {
		if err := r.publishTeam(ctx, team, spec.Season, &res); err != nil {
			return res, err
		}
	}

	days := groupByDate(games)
	if len(days) == 0 {
		reporter.OnProgress("No games to process", 0, 0)
		return res, nil
	}

	total := len(games)
	for idx, day := range days {
		reporter.OnDateStart(day.date, idx, len(days))
		for _, g := range day.games {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			summary, err := r.source.GetGameSummary(ctx, g.GameLink)
			if err != nil {
				return res, errors.Wrapf(err, "game %s", g.GameLink)
			}
			entries, err := r.source.GetBoxscore(ctx, g.GameLink)
			if err != nil {
				return res, errors.Wrapf(err, "game %s", g.GameLink)
			}
			if err := r.sink.PublishBoxscore(ctx, summary, entries); err != nil {
				return res, err
			}

			res.Games++
			res.Entries += len(entries)
			reporter.OnGameProcessed(g.GameLink, len(entries))
			reporter.OnProgress(fmt.Sprintf("Game %s complete", g.GameLink), res.Games, total)
		}
	}
	return res, nil
}

func (r *Runner) publishTeam(ctx context.Context, team string, season int, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	players, err := r.source.GetRoster(ctx, team, season)
	if err != nil {
		return errors.Wrapf(err, "roster %s", team)
	}
	if err := r.sink.PublishRoster(ctx, season, players); err != nil {
		return err
	}
	reports, err := r.source.GetInjuryReport(ctx, team, season)
	if err != nil {
		return errors.Wrapf(err, "injuries %s", team)
	}
	if err := r.sink.PublishInjuries(ctx, season, reports); err != nil {
		return err
	}
	res.Teams++
	return nil
}

// teamsOf lists the teams whose rosters a job publishes: the job's team, or
// every team on a season schedule.
func teamsOf(spec JobSpec, schedule []models.ScheduleEntry) []string {
	switch spec.Type {
	case JobTypeTeam:
		return []string{spec.Team}
	case JobTypeSeason:
		seen := make(map[string]struct{})
		var teams []string
		for _, g := range schedule {
			for _, code := range []string{g.Home.Code, g.Away.Code} {
				if _, ok := seen[code]; ok || code == "" {
					continue
				}
				seen[code] = struct{}{}
				teams = append(teams, code)
			}
		}
		sort.Strings(teams)
		return teams
	}
	return nil
}

// plan returns the schedule to publish (if any) and the games whose box
// scores the job covers.
func (r *Runner) plan(ctx context.Context, spec JobSpec) ([]models.ScheduleEntry, []models.ScheduleEntry, error) {
	switch spec.Type {
	case JobTypeGame:
		if len(spec.GameLinks) == 0 {
			return nil, nil, errors.New("no game links provided for job type 'game'")
		}
		games := make([]models.ScheduleEntry, 0, len(spec.GameLinks))
		for _, link := range spec.GameLinks {
			path, err := schema.NormalizeGameLink(link)
			if err != nil {
				return nil, nil, err
			}
			date, err := schema.GameDateFromLink(path)
			if err != nil {
				return nil, nil, err
			}
			games = append(games, models.ScheduleEntry{Date: date, GameLink: path, Status: models.StatusCompleted})
		}
		return nil, games, nil

	case JobTypeSeason:
		schedule, err := r.source.GetAllSchedule(ctx, spec.Season)
		if err != nil {
			return nil, nil, err
		}
		return schedule, completed(schedule, time.Time{}, time.Time{}), nil

	case JobTypeTeam:
		schedule, err := r.source.GetTeamSchedule(ctx, spec.Team, spec.Season)
		if err != nil {
			return nil, nil, err
		}
		return schedule, completed(schedule, time.Time{}, time.Time{}), nil

	case JobTypeDateRange:
		season := spec.Season
		if season == 0 {
			season = schema.SeasonForDate(spec.Start)
		}
		schedule, err := r.source.GetAllSchedule(ctx, season)
		if err != nil {
			return nil, nil, err
		}
		return nil, completed(schedule, spec.Start, spec.End), nil

	default:
		return nil, nil, errors.Newf("unsupported job type %s", spec.Type)
	}
}

// completed keeps finished games, optionally inside [start, end] by day.
func completed(schedule []models.ScheduleEntry, start, end time.Time) []models.ScheduleEntry {
	from, to := truncateDate(start), truncateDate(end)
	if !start.IsZero() && !end.IsZero() && to.Before(from) {
		from, to = to, from
	}

	var out []models.ScheduleEntry
	for _, g := range schedule {
		if g.Status != models.StatusCompleted {
			continue
		}
		day := truncateDate(g.Date)
		if !start.IsZero() && day.Before(from) {
			continue
		}
		if !end.IsZero() && day.After(to) {
			continue
		}
		out = append(out, g)
	}
	return out
}

type gameDay struct {
	date  time.Time
	games []models.ScheduleEntry
}

func groupByDate(games []models.ScheduleEntry) []gameDay {
	index := make(map[time.Time]int)
	var days []gameDay
	for _, g := range games {
		d := truncateDate(g.Date)
		i, ok := index[d]
		if !ok {
			i = len(days)
			index[d] = i
			days = append(days, gameDay{date: d})
		}
		days[i].games = append(days[i].games, g)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
	return days
}

func truncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec) {}
func (nopReporter) OnDateStart(time.Time, int, int) {}
func (nopReporter) OnGameProcessed(string, int) {}
func (nopReporter) OnProgress(string, int, int) {}
func (nopReporter) OnJobComplete() {}
func (nopReporter) OnJobError(error) {}
