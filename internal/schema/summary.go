package schema

import (
	"regexp"
	"strconv"
	"time"

	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/models"
)

const seriesSelector = `span[data-label="All Games in Series"]`

var playoffGamePattern = regexp.MustCompile(`Game (\d)\b`)

// MapGameSummary reads the box score header: the two teams from the
// scorebox (visitor first), their final scores and the playoff markers.
func MapGameSummary(doc *extract.Document, gameLink string) (models.GameSummary, error) {
	path, err := NormalizeGameLink(gameLink)
	if err != nil {
		return models.GameSummary{}, err
	}
	date, err := GameDateFromLink(path)
	if err != nil {
		return models.GameSummary{}, err
	}

	box := doc.Scorebox()
	if len(box) < 2 {
		return models.GameSummary{}, &Error{Kind: KindMissingTable, Document: "boxscore", Row: -1, Key: "scorebox"}
	}

	season := SeasonForDate(date)
	sides := make([]models.Team, 2)
	points := make([]int, 2)
	for i, side := range box[:2] {
		team, err := TeamFromLink(side.Link, season)
		if err != nil {
			return models.GameSummary{}, &Error{Kind: KindUnknownTeam, Document: "boxscore", Row: i, Key: "scorebox", Value: side.Link, Err: err}
		}
		score, err := ParseInt(side.Score)
		if err != nil || !score.Valid {
			return models.GameSummary{}, &Error{Kind: KindBadNumber, Document: "boxscore", Row: i, Key: "score", Value: side.Score, Err: err}
		}
		sides[i] = team
		points[i] = int(score.Int32)
	}

	s := models.GameSummary{
		GameLink:      path,
		Date:          date,
		Visitor:       sides[0],
		Home:          sides[1],
		VisitorPoints: points[0],
		HomePoints:    points[1],
	}
	switch {
	case s.HomePoints > s.VisitorPoints:
		s.Winner = s.Home.Code
	case s.VisitorPoints > s.HomePoints:
		s.Winner = s.Visitor.Code
	}

	if m := playoffGamePattern.FindStringSubmatch(doc.Heading()); m != nil {
		s.PlayoffGame, _ = strconv.Atoi(m[1])
	}
	s.Playoff = doc.Exists(seriesSelector) || s.PlayoffGame > 0

	if err := check("boxscore", -1, s); err != nil {
		return models.GameSummary{}, err
	}
	return s, nil
}

// SeasonForDate returns the season (ending year) a game date belongs to.
// Seasons open in the autumn; the 2020 season ran into October.
func SeasonForDate(d time.Time) int {
	switch {
	case d.Year() == 2020 && d.Month() <= time.October:
		return 2020
	case d.Month() >= time.September:
		return d.Year() + 1
	default:
		return d.Year()
	}
}
