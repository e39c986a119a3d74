package schema

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/models"
)

const scheduleDateLayout = "Mon, Jan 2, 2006"

var (
	gameLinkPattern  = regexp.MustCompile(`^/boxscores/(\d{8})\d([A-Z]{3})\.html$`)
	overtimesPattern = regexp.MustCompile(`^(\d*)OT$`)
)

// MapSchedule maps the rows of one schedule page. Rows after a "Playoffs"
// separator, or every row when inPlayoffs is set, are marked as playoff
// games.
func MapSchedule(rows *extract.Rows, season int, inPlayoffs bool) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	seen := make(map[string]int)

	for row := range rows.All() {
		entry, err := mapScheduleRow(row, season)
		if err != nil {
			return nil, err
		}
		entry.Playoff = inPlayoffs || row.Section > 0

		key := ScheduleKey(entry)
		if first, dup := seen[key]; dup {
			return nil, rowError(KindDuplicateRow, "schedule", row.Index, "", key,
				errors.Newf("same game as row %d", first))
		}
		seen[key] = row.Index
		entries = append(entries, entry)
	}
	return entries, nil
}

// ScheduleKey identifies a game: one entry per (date, home, away) in a season.
func ScheduleKey(e models.ScheduleEntry) string {
	return fmt.Sprintf("%d|%s|%s|%s", e.Season, e.Date.Format("20060102"), e.Home.Code, e.Away.Code)
}

func mapScheduleRow(row extract.Row, season int) (models.ScheduleEntry, error) {
	r := newReader("schedule", row)
	r.require(ScheduleKeys...)

	entry := models.ScheduleEntry{
		Season:     season,
		Date:       r.date("date_game", scheduleDateLayout),
		StartTime:  r.text("game_start_time"),
		Away:       r.team("visitor_team_name", season),
		Home:       r.team("home_team_name", season),
		AwayPoints: r.nullInt("visitor_pts"),
		HomePoints: r.nullInt("home_pts"),
		Attendance: r.nullInt("attendance"),
		Notes:      r.text("game_remarks"),
	}
	entry.Overtimes = r.overtimes("overtimes")
	entry.GameLink = r.gameLink("box_score_text", entry)
	if r.err != nil {
		return models.ScheduleEntry{}, r.err
	}

	switch {
	case entry.HomePoints.Valid && entry.AwayPoints.Valid:
		entry.Status = models.StatusCompleted
	case strings.Contains(strings.ToLower(entry.Notes), "postpon"):
		entry.Status = models.StatusPostponed
	default:
		entry.Status = models.StatusScheduled
	}

	if err := check("schedule", row.Index, entry); err != nil {
		return models.ScheduleEntry{}, err
	}
	return entry, nil
}

func (r *reader) team(key string, season int) models.Team {
	if r.err != nil {
		return models.Team{}
	}
	c := r.cell(key)
	var (
		team models.Team
		err  error
	)
	if c.Link != "" {
		team, err = TeamFromLink(c.Link, season)
	} else {
		team, err = TeamFromName(c.Text, season)
	}
	if err != nil {
		r.fail(KindUnknownTeam, key, c.Text, err)
	}
	return team
}

func (r *reader) overtimes(key string) int {
	if r.err != nil {
		return 0
	}
	raw := strings.ToUpper(strings.TrimSpace(r.text(key)))
	if raw == "" {
		return 0
	}
	m := overtimesPattern.FindStringSubmatch(raw)
	if m == nil {
		r.fail(KindBadNumber, key, raw, nil)
		return 0
	}
	if m[1] == "" {
		return 1
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// gameLink takes the box score link from the row, or builds the site's
// conventional one for games that have none yet.
func (r *reader) gameLink(key string, e models.ScheduleEntry) string {
	if r.err != nil {
		return ""
	}
	if link := r.cell(key).Link; link != "" {
		path, err := NormalizeGameLink(link)
		if err != nil {
			r.fail(KindBadValue, key, link, err)
		}
		return path
	}
	return BuildGameLink(e.Date, e.Home.SiteCode)
}

// BuildGameLink returns /boxscores/{yyyymmdd}0{HOME}.html.
func BuildGameLink(date time.Time, homeSiteCode string) string {
	return "/boxscores/" + date.Format("20060102") + "0" + homeSiteCode + ".html"
}

// NormalizeGameLink accepts a box score path or absolute URL and returns
// the site-relative path.
func NormalizeGameLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		link = u.Path
	}
	if !gameLinkPattern.MatchString(link) {
		return "", &Error{Kind: KindBadValue, Document: "boxscore", Row: -1, Key: "game_link", Value: link}
	}
	return link, nil
}

// GameDateFromLink reads the game date embedded in a box score path.
func GameDateFromLink(link string) (time.Time, error) {
	path, err := NormalizeGameLink(link)
	if err != nil {
		return time.Time{}, err
	}
	m := gameLinkPattern.FindStringSubmatch(path)
	t, err := time.Parse("20060102", m[1])
	if err != nil {
		return time.Time{}, &Error{Kind: KindBadDate, Document: "boxscore", Row: -1, Key: "game_link", Value: path, Err: err}
	}
	return t, nil
}
