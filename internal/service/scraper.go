package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/cache"
	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/fetch"
	"github.com/fortuna/hoops/internal/logging"
	"github.com/fortuna/hoops/internal/models"
	"github.com/fortuna/hoops/internal/schema"
)

const (
	DefaultBaseURL     = "https://www.basketball-reference.com"
	defaultConcurrency = 4
)

// Table selectors, newest layout first.
var (
	scheduleSelectors = []string{"#schedule"}
	rosterSelectors   = []string{"#roster"}
	perGameSelectors  = []string{"#per_game_stats", "#per_game"}
	injurySelectors   = []string{"#injuries"}
)

// PageFetcher returns the raw body of a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Options configures a Scraper.
type Options struct {
	BaseURL string
	// Cache is optional; without one every lookup goes to the fetcher.
	Cache  *cache.PageCache
	Logger *zap.Logger
	// Concurrency bounds parallel month-page fetches. They still share
	// the fetcher's pacing gate.
	Concurrency int
}

// Scraper answers schedule, roster, injury and box score queries. It is
// safe for concurrent use.
type Scraper struct {
	baseURL     string
	fetcher     PageFetcher
	cache       *cache.PageCache
	logger      *zap.Logger
	concurrency int
}

// New creates a Scraper reading pages through fetcher.
func New(fetcher PageFetcher, opts Options) *Scraper {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Scraper{
		baseURL:     base,
		fetcher:     fetcher,
		cache:       opts.Cache,
		logger:      logging.OrNop(opts.Logger).Named("scraper"),
		concurrency: opts.Concurrency,
	}
}

// SchedulePath is the season schedule page for season.
func SchedulePath(season int) string {
	return fmt.Sprintf("/leagues/NBA_%d_games.html", season)
}

// TeamPath is a team's season page, keyed by the site's code for that season.
func TeamPath(siteCode string, season int) string {
	return fmt.Sprintf("/teams/%s/%d.html", siteCode, season)
}

// CacheStats reports page cache counters, or zero values without a cache.
func (s *Scraper) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// GetAllSchedule returns every game of season: the season page plus each
// month page linked from it, deduplicated and ordered by date.
func (s *Scraper) GetAllSchedule(ctx context.Context, season int) ([]models.ScheduleEntry, error) {
	first, err := s.document(ctx, SchedulePath(season))
	if err != nil {
		return nil, errors.Wrapf(err, "get schedule %d", season)
	}

	// The first month link points at the season page itself.
	links := first.Links("div.filter")
	if len(links) > 0 {
		links = links[1:]
	}

	months, err := s.documents(ctx, links)
	if err != nil {
		return nil, errors.Wrapf(err, "get schedule %d", season)
	}
	pages := append([]*extract.Document{first}, months...)

	var (
		out        []models.ScheduleEntry
		seen       = make(map[string]struct{})
		inPlayoffs bool
	)
	for i, doc := range pages {
		rows, err := doc.Table(scheduleSelectors...)
		if err != nil {
			return nil, errors.Wrapf(missingTable("schedule", err), "get schedule %d page %d", season, i)
		}
		entries, err := schema.MapSchedule(rows, season, inPlayoffs)
		if err != nil {
			return nil, errors.Wrapf(err, "get schedule %d page %d", season, i)
		}
		for _, e := range entries {
			inPlayoffs = inPlayoffs || e.Playoff
			key := schema.ScheduleKey(e)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}

	slices.SortStableFunc(out, func(a, b models.ScheduleEntry) int {
		return a.Date.Compare(b.Date)
	})

	s.logger.Debug("mapped schedule",
		zap.Int("season", season),
		zap.Int("pages", len(pages)),
		zap.Int("games", len(out)),
	)
	return nonNil(out), nil
}

// GetTeamSchedule returns the games of season involving team. Historical
// and alias codes select the same franchise.
func (s *Scraper) GetTeamSchedule(ctx context.Context, team string, season int) ([]models.ScheduleEntry, error) {
	t, err := schema.ResolveTeam(team, season)
	if err != nil {
		return nil, errors.Wrapf(err, "get team schedule %s %d", team, season)
	}

	all, err := s.GetAllSchedule(ctx, season)
	if err != nil {
		return nil, err
	}

	out := make([]models.ScheduleEntry, 0)
	for _, e := range all {
		if e.Home.Code == t.Code || e.Away.Code == t.Code {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetRoster returns a team's roster for season with per-game averages.
func (s *Scraper) GetRoster(ctx context.Context, team string, season int) ([]models.Player, error) {
	t, err := schema.ResolveTeam(team, season)
	if err != nil {
		return nil, errors.Wrapf(err, "get roster %s %d", team, season)
	}

	doc, err := s.document(ctx, TeamPath(t.SiteCode, season))
	if err != nil {
		return nil, errors.Wrapf(err, "get roster %s %d", team, season)
	}

	roster, err := doc.Table(rosterSelectors...)
	if err != nil {
		return nil, errors.Wrapf(missingTable("roster", err), "get roster %s %d", team, season)
	}
	perGame, err := doc.Table(perGameSelectors...)
	if err != nil {
		if !errors.Is(err, extract.ErrTableNotFound) {
			return nil, errors.Wrapf(err, "get roster %s %d", team, season)
		}
		s.logger.Debug("no per-game table", zap.String("team", t.SiteCode), zap.Int("season", season))
		perGame = nil
	}

	players, err := schema.MapRoster(roster, perGame, t)
	if err != nil {
		return nil, errors.Wrapf(err, "get roster %s %d", team, season)
	}
	return nonNil(players), nil
}

// GetInjuryReport returns a team's injury list. Seasons without a
// published report yield an empty slice.
func (s *Scraper) GetInjuryReport(ctx context.Context, team string, season int) ([]models.InjuryReport, error) {
	t, err := schema.ResolveTeam(team, season)
	if err != nil {
		return nil, errors.Wrapf(err, "get injuries %s %d", team, season)
	}

	doc, err := s.document(ctx, TeamPath(t.SiteCode, season))
	if err != nil {
		if fetch.IsNotFound(err) {
			return []models.InjuryReport{}, nil
		}
		return nil, errors.Wrapf(err, "get injuries %s %d", team, season)
	}

	rows, err := doc.Table(injurySelectors...)
	if errors.Is(err, extract.ErrTableNotFound) {
		return []models.InjuryReport{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get injuries %s %d", team, season)
	}

	reports, err := schema.MapInjuries(rows, t)
	if err != nil {
		return nil, errors.Wrapf(err, "get injuries %s %d", team, season)
	}
	return nonNil(reports), nil
}

// GetBoxscore returns every player line of a game. gameLink is the link
// from a schedule entry, as a path or absolute URL.
func (s *Scraper) GetBoxscore(ctx context.Context, gameLink string) ([]models.BoxscoreEntry, error) {
	_, entries, err := s.boxscore(ctx, gameLink)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetGameSummary returns the teams, final score and playoff markers of a game.
func (s *Scraper) GetGameSummary(ctx context.Context, gameLink string) (models.GameSummary, error) {
	path, err := schema.NormalizeGameLink(gameLink)
	if err != nil {
		return models.GameSummary{}, errors.Wrapf(err, "get game summary %s", gameLink)
	}
	doc, err := s.document(ctx, path)
	if err != nil {
		return models.GameSummary{}, errors.Wrapf(err, "get game summary %s", path)
	}
	summary, err := schema.MapGameSummary(doc, path)
	if err != nil {
		return models.GameSummary{}, errors.Wrapf(err, "get game summary %s", path)
	}
	return summary, nil
}

func (s *Scraper) boxscore(ctx context.Context, gameLink string) (models.GameSummary, []models.BoxscoreEntry, error) {
	path, err := schema.NormalizeGameLink(gameLink)
	if err != nil {
		return models.GameSummary{}, nil, errors.Wrapf(err, "get boxscore %s", gameLink)
	}

	doc, err := s.document(ctx, path)
	if err != nil {
		return models.GameSummary{}, nil, errors.Wrapf(err, "get boxscore %s", path)
	}

	summary, err := schema.MapGameSummary(doc, path)
	if err != nil {
		return models.GameSummary{}, nil, errors.Wrapf(err, "get boxscore %s", path)
	}

	var tables []schema.TeamTable
	for _, team := range []models.Team{summary.Visitor, summary.Home} {
		rows, err := doc.Table(boxscoreSelectors(team.SiteCode)...)
		if err != nil {
			return models.GameSummary{}, nil, errors.Wrapf(missingTable("boxscore "+team.SiteCode, err), "get boxscore %s", path)
		}
		tables = append(tables, schema.TeamTable{Team: team, Rows: rows})
	}

	entries, err := schema.MapBoxscore(path, tables...)
	if err != nil {
		return models.GameSummary{}, nil, errors.Wrapf(err, "get boxscore %s", path)
	}
	return summary, nonNil(entries), nil
}

func boxscoreSelectors(siteCode string) []string {
	return []string{
		"#box-" + siteCode + "-game-basic",
		"#box_" + strings.ToLower(siteCode) + "_basic",
	}
}

// document loads and parses one page, going through the cache when set.
func (s *Scraper) document(ctx context.Context, pathOrURL string) (*extract.Document, error) {
	url := s.resolve(pathOrURL)

	var (
		body string
		err  error
	)
	if s.cache != nil {
		body, err = s.cache.GetOrFetch(ctx, url, s.fetcher.Fetch)
	} else {
		body, err = s.fetcher.Fetch(ctx, url)
	}
	if err != nil {
		return nil, err
	}
	return extract.Parse(body)
}

// documents loads links concurrently and returns them in link order.
func (s *Scraper) documents(ctx context.Context, links []string) ([]*extract.Document, error) {
	type page struct {
		index int
		doc   *extract.Document
	}

	p := pool.NewWithResults[page]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(s.concurrency)
	for i, link := range links {
		p.Go(func(ctx context.Context) (page, error) {
			doc, err := s.document(ctx, link)
			if err != nil {
				return page{}, err
			}
			return page{index: i, doc: doc}, nil
		})
	}
	pages, err := p.Wait()
	if err != nil {
		return nil, err
	}

	docs := make([]*extract.Document, len(links))
	for _, pg := range pages {
		docs[pg.index] = pg.doc
	}
	return docs, nil
}

func (s *Scraper) resolve(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return s.baseURL + pathOrURL
}

func missingTable(doc string, cause error) error {
	return &schema.Error{Kind: schema.KindMissingTable, Document: doc, Row: -1, Err: cause}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
