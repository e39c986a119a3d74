package backfill

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hoops/internal/models"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2004, m, d, 0, 0, 0, 0, time.UTC)
}

func game(date time.Time, link string, done bool) models.ScheduleEntry {
	e := models.ScheduleEntry{Season: 2005, Date: date, GameLink: link, Status: models.StatusScheduled}
	if done {
		e.Status = models.StatusCompleted
		e.HomePoints = sql.NullInt32{Int32: 100, Valid: true}
		e.AwayPoints = sql.NullInt32{Int32: 90, Valid: true}
	}
	return e
}

type fakeSource struct {
	schedule []models.ScheduleEntry
	failGame string

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeSource) GetAllSchedule(_ context.Context, season int) ([]models.ScheduleEntry, error) {
	f.record("all")
	return f.schedule, nil
}

func (f *fakeSource) GetTeamSchedule(_ context.Context, team string, season int) ([]models.ScheduleEntry, error) {
	f.record("team " + team)
	return f.schedule[:2], nil
}

func (f *fakeSource) GetGameSummary(_ context.Context, link string) (models.GameSummary, error) {
	if link == f.failGame {
		return models.GameSummary{}, errors.New("box score unavailable")
	}
	return models.GameSummary{GameLink: link}, nil
}

func (f *fakeSource) GetBoxscore(_ context.Context, link string) ([]models.BoxscoreEntry, error) {
	f.record("box " + link)
	return []models.BoxscoreEntry{{GameLink: link, PlayerID: "a"}, {GameLink: link, PlayerID: "b"}}, nil
}

func (f *fakeSource) GetRoster(_ context.Context, team string, season int) ([]models.Player, error) {
	f.record("roster " + team)
	return []models.Player{{ID: "p1", Season: season, Team: models.Team{Code: team}}}, nil
}

func (f *fakeSource) GetInjuryReport(_ context.Context, team string, season int) ([]models.InjuryReport, error) {
	f.record("injuries " + team)
	return []models.InjuryReport{{PlayerID: "p1", Season: season, Team: models.Team{Code: team}}}, nil
}

type fakeSink struct {
	mu        sync.Mutex
	schedules int
	games     []string
	entries   int
	rosters   []string
	injuries  []string
}

func (f *fakeSink) PublishRoster(_ context.Context, _ int, players []models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range players {
		f.rosters = append(f.rosters, p.Team.Code)
	}
	return nil
}

func (f *fakeSink) PublishInjuries(_ context.Context, _ int, reports []models.InjuryReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range reports {
		f.injuries = append(f.injuries, r.Team.Code)
	}
	return nil
}

func (f *fakeSink) PublishSchedule(_ context.Context, _ int, entries []models.ScheduleEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules += len(entries)
	return nil
}

func (f *fakeSink) PublishBoxscore(_ context.Context, s models.GameSummary, entries []models.BoxscoreEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = append(f.games, s.GameLink)
	f.entries += len(entries)
	return nil
}

type recordingReporter struct {
	dates    []time.Time
	games    []string
	complete bool
	errs     []error
}

func (r *recordingReporter) OnJobStart(JobSpec) {}
func (r *recordingReporter) OnDateStart(d time.Time, _, _ int) { r.dates = append(r.dates, d) }
func (r *recordingReporter) OnGameProcessed(link string, _ int) { r.games = append(r.games, link) }
func (r *recordingReporter) OnProgress(string, int, int) {}
func (r *recordingReporter) OnJobComplete() { r.complete = true }
func (r *recordingReporter) OnJobError(err error) { r.errs = append(r.errs, err) }

func season() []models.ScheduleEntry {
	return []models.ScheduleEntry{
		game(day(time.November, 3), "/boxscores/200411030SAS.html", true),
		game(day(time.November, 2), "/boxscores/200411020DEN.html", true),
		game(day(time.November, 2), "/boxscores/200411020SEA.html", true),
		game(day(time.November, 9), "/boxscores/200411090SAS.html", false),
	}
}

func TestRun_SeasonPublishesCompletedGamesByDate(t *testing.T) {
	src := &fakeSource{schedule: season()}
	sink := &fakeSink{}
	rep := &recordingReporter{}

	res, err := NewRunner(src, sink).Run(context.Background(), JobSpec{Type: JobTypeSeason, Season: 2005}, rep)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Games)
	assert.Equal(t, 6, res.Entries)
	assert.Equal(t, 4, sink.schedules, "whole schedule is published")
	assert.Equal(t, []string{
		"/boxscores/200411020DEN.html",
		"/boxscores/200411020SEA.html",
		"/boxscores/200411030SAS.html",
	}, sink.games)
	assert.Equal(t, []time.Time{day(time.November, 2), day(time.November, 3)}, rep.dates)
	assert.Equal(t, sink.games, rep.games)
	assert.True(t, rep.complete)
	assert.Empty(t, rep.errs)
}

func TestRun_TeamUsesTeamSchedule(t *testing.T) {
	src := &fakeSource{schedule: season()}
	sink := &fakeSink{}

	res, err := NewRunner(src, sink).Run(context.Background(), JobSpec{Type: JobTypeTeam, Team: "SAS", Season: 2005}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Games)
	assert.Contains(t, src.calls, "team SAS")
	assert.Equal(t, 1, res.Teams)
	assert.Equal(t, []string{"SAS"}, sink.rosters)
	assert.Equal(t, []string{"SAS"}, sink.injuries)
}

func TestRun_SeasonPublishesEveryTeamOnce(t *testing.T) {
	schedule := season()
	schedule[0].Home, schedule[0].Away = models.Team{Code: "SAS"}, models.Team{Code: "BRK"}
	schedule[1].Home, schedule[1].Away = models.Team{Code: "DEN"}, models.Team{Code: "SAS"}
	schedule[2].Home, schedule[2].Away = models.Team{Code: "SEA"}, models.Team{Code: "BRK"}

	sink := &fakeSink{}
	res, err := NewRunner(&fakeSource{schedule: schedule}, sink).Run(context.Background(), JobSpec{Type: JobTypeSeason, Season: 2005}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Teams)
	assert.Equal(t, []string{"BRK", "DEN", "SAS", "SEA"}, sink.rosters)
	assert.Equal(t, sink.rosters, sink.injuries)
}

func TestRun_DateRangeFilters(t *testing.T) {
	src := &fakeSource{schedule: season()}
	sink := &fakeSink{}

	spec := JobSpec{Type: JobTypeDateRange, Start: day(time.November, 3), End: day(time.November, 30)}
	res, err := NewRunner(src, sink).Run(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Games)
	assert.Equal(t, []string{"/boxscores/200411030SAS.html"}, sink.games)
	assert.Zero(t, sink.schedules)
	assert.Empty(t, sink.rosters)
}

func TestRun_GameLinks(t *testing.T) {
	src := &fakeSource{}
	sink := &fakeSink{}

	spec := JobSpec{Type: JobTypeGame, GameLinks: []string{"https://www.basketball-reference.com/boxscores/200411020DEN.html"}}
	res, err := NewRunner(src, sink).Run(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Games)
	assert.Equal(t, []string{"/boxscores/200411020DEN.html"}, sink.games)

	_, err = NewRunner(src, sink).Run(context.Background(), JobSpec{Type: JobTypeGame, GameLinks: []string{"/players/d/duncati01.html"}}, nil)
	assert.Error(t, err)
}

func TestRun_DryRunPublishesNothing(t *testing.T) {
	src := &fakeSource{schedule: season()}

	res, err := NewRunner(src, nil).Run(context.Background(), JobSpec{Type: JobTypeSeason, Season: 2005, DryRun: true}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Planned, 3)
	assert.Zero(t, res.Games)
	for _, c := range src.calls {
		assert.NotContains(t, c, "box ")
	}
}

func TestRun_ErrorsAreReported(t *testing.T) {
	src := &fakeSource{schedule: season(), failGame: "/boxscores/200411020SEA.html"}
	sink := &fakeSink{}
	rep := &recordingReporter{}

	res, err := NewRunner(src, sink).Run(context.Background(), JobSpec{Type: JobTypeSeason, Season: 2005}, rep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "200411020SEA")
	assert.Equal(t, 1, res.Games)
	assert.False(t, rep.complete)
	assert.Len(t, rep.errs, 1)

	_, err = NewRunner(src, nil).Run(context.Background(), JobSpec{Type: JobTypeSeason, Season: 2005}, nil)
	assert.Error(t, err, "sink required")

	_, err = NewRunner(src, sink).Run(context.Background(), JobSpec{Type: "weekly"}, nil)
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	src := &fakeSource{schedule: season()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(src, &fakeSink{}).Run(ctx, JobSpec{Type: JobTypeSeason, Season: 2005}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
