package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/models"
)

func rowsOf(t *testing.T, html, selector string) *extract.Rows {
	t.Helper()
	rows, err := extract.Extract(html, selector)
	require.NoError(t, err)
	return rows
}

const scheduleHTML = `<table id="schedule">
<thead><tr>
  <th data-stat="date_game">Date</th><th data-stat="game_start_time">Start (ET)</th>
  <th data-stat="visitor_team_name">Visitor/Neutral</th><th data-stat="visitor_pts">PTS</th>
  <th data-stat="home_team_name">Home/Neutral</th><th data-stat="home_pts">PTS</th>
  <th data-stat="box_score_text"></th><th data-stat="overtimes"></th>
  <th data-stat="attendance">Attend.</th><th data-stat="game_remarks">Notes</th>
</tr></thead>
<tbody>
<tr>
  <th data-stat="date_game" csk="200411020"><a href="/boxscores/index.fcgi?month=11&day=2&year=2004">Tue, Nov 2, 2004</a></th>
  <td data-stat="game_start_time">8:30p</td>
  <td data-stat="visitor_team_name" csk="SAS.200411020"><a href="/teams/SAS/2005.html">San Antonio Spurs</a></td>
  <td data-stat="visitor_pts">88</td>
  <td data-stat="home_team_name" csk="DEN.200411020"><a href="/teams/DEN/2005.html">Denver Nuggets</a></td>
  <td data-stat="home_pts">83</td>
  <td data-stat="box_score_text"><a href="/boxscores/200411020DEN.html">Box Score</a></td>
  <td data-stat="overtimes"></td>
  <td data-stat="attendance">19,099</td>
  <td data-stat="game_remarks"></td>
</tr>
<tr>
  <th data-stat="date_game" csk="200411030"><a href="#">Wed, Nov 3, 2004</a></th>
  <td data-stat="game_start_time">7:30p</td>
  <td data-stat="visitor_team_name"><a href="/teams/NJN/2005.html">New Jersey Nets</a></td>
  <td data-stat="visitor_pts">101</td>
  <td data-stat="home_team_name"><a href="/teams/SEA/2005.html">Seattle SuperSonics</a></td>
  <td data-stat="home_pts">98</td>
  <td data-stat="box_score_text"><a href="https://www.basketball-reference.com/boxscores/200411030SEA.html">Box Score</a></td>
  <td data-stat="overtimes">2OT</td>
  <td data-stat="attendance"></td>
  <td data-stat="game_remarks"></td>
</tr>
<tr class="thead"><th colspan="10">Playoffs</th></tr>
<tr>
  <th data-stat="date_game" csk="200504230">Sat, Apr 23, 2005</th>
  <td data-stat="game_start_time"></td>
  <td data-stat="visitor_team_name"><a href="/teams/DEN/2005.html">Denver Nuggets</a></td>
  <td data-stat="visitor_pts"></td>
  <td data-stat="home_team_name">San Antonio Spurs</td>
  <td data-stat="home_pts"></td>
  <td data-stat="box_score_text"></td>
  <td data-stat="overtimes"></td>
  <td data-stat="attendance"></td>
  <td data-stat="game_remarks"></td>
</tr>
</tbody></table>`

func TestMapSchedule(t *testing.T) {
	entries, err := MapSchedule(rowsOf(t, scheduleHTML, "#schedule"), 2005, false)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, time.Date(2004, time.November, 2, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "SAS", first.Away.Code)
	assert.Equal(t, "DEN", first.Home.Code)
	assert.Equal(t, int32(88), first.AwayPoints.Int32)
	assert.Equal(t, int32(83), first.HomePoints.Int32)
	assert.Equal(t, "/boxscores/200411020DEN.html", first.GameLink)
	assert.Equal(t, models.StatusCompleted, first.Status)
	assert.Equal(t, int32(19099), first.Attendance.Int32)
	assert.Equal(t, "8:30p", first.StartTime)
	assert.False(t, first.Playoff)

	second := entries[1]
	assert.Equal(t, "BRK", second.Away.Code)
	assert.Equal(t, "NJN", second.Away.SiteCode)
	assert.Equal(t, "OKC", second.Home.Code)
	assert.Equal(t, "/boxscores/200411030SEA.html", second.GameLink, "absolute links are reduced to a path")
	assert.Equal(t, 2, second.Overtimes)
	assert.False(t, second.Attendance.Valid)

	playoff := entries[2]
	assert.True(t, playoff.Playoff)
	assert.Equal(t, models.StatusScheduled, playoff.Status)
	assert.False(t, playoff.HomePoints.Valid, "unplayed game has null points, not zero")
	assert.Equal(t, "SAS", playoff.Home.Code, "team resolved from display name")
	assert.Equal(t, "/boxscores/200504230SAS.html", playoff.GameLink, "missing link is built from date and home team")
}

func TestMapSchedule_InPlayoffsMarksEveryRow(t *testing.T) {
	entries, err := MapSchedule(rowsOf(t, scheduleHTML, "#schedule"), 2005, true)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.Playoff)
	}
}

func TestMapSchedule_Postponed(t *testing.T) {
	html := `<table id="schedule"><tbody><tr>
  <th data-stat="date_game" csk="202103100">Wed, Mar 10, 2021</th>
  <td data-stat="visitor_team_name"><a href="/teams/SAS/2021.html">San Antonio Spurs</a></td>
  <td data-stat="home_team_name"><a href="/teams/DAL/2021.html">Dallas Mavericks</a></td>
  <td data-stat="game_remarks">Game postponed</td>
</tr></tbody></table>`

	entries, err := MapSchedule(rowsOf(t, html, "#schedule"), 2021, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusPostponed, entries[0].Status)
}

func TestMapSchedule_Errors(t *testing.T) {
	row := func(date, visitor, home, ot string) string {
		return `<tr><th data-stat="date_game">` + date + `</th>
<td data-stat="visitor_team_name"><a href="/teams/` + visitor + `/2005.html">v</a></td>
<td data-stat="home_team_name"><a href="/teams/` + home + `/2005.html">h</a></td>
<td data-stat="overtimes">` + ot + `</td></tr>`
	}
	table := func(rows ...string) string {
		html := `<table id="schedule"><tbody>`
		for _, r := range rows {
			html += r
		}
		return html + `</tbody></table>`
	}

	tests := []struct {
		name string
		html string
		kind Kind
		key  string
	}{
		{
			name: "duplicate game",
			html: table(row("Tue, Nov 2, 2004", "SAS", "DEN", ""), row("Tue, Nov 2, 2004", "SAS", "DEN", "")),
			kind: KindDuplicateRow,
		},
		{
			name: "bad date",
			html: table(row("sometime in November", "SAS", "DEN", "")),
			kind: KindBadDate,
			key:  "date_game",
		},
		{
			name: "unknown team",
			html: table(row("Tue, Nov 2, 2004", "XXX", "DEN", "")),
			kind: KindUnknownTeam,
			key:  "visitor_team_name",
		},
		{
			name: "bad overtime marker",
			html: table(row("Tue, Nov 2, 2004", "SAS", "DEN", "extra")),
			kind: KindBadNumber,
			key:  "overtimes",
		},
		{
			name: "missing home column",
			html: `<table id="schedule"><tbody><tr><th data-stat="date_game">Tue, Nov 2, 2004</th>
<td data-stat="visitor_team_name">San Antonio Spurs</td></tr></tbody></table>`,
			kind: KindMissingKey,
			key:  "home_team_name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := MapSchedule(rowsOf(t, tt.html, "#schedule"), 2005, false)
			require.Error(t, err)
			assert.Nil(t, entries, "one bad row fails the whole page")

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.kind, se.Kind)
			if tt.key != "" {
				assert.Equal(t, tt.key, se.Key)
			}
		})
	}
}

func TestGameLinks(t *testing.T) {
	path, err := NormalizeGameLink("https://www.basketball-reference.com/boxscores/200411020DEN.html")
	require.NoError(t, err)
	assert.Equal(t, "/boxscores/200411020DEN.html", path)

	_, err = NormalizeGameLink("/teams/SAS/2005.html")
	assert.True(t, IsKind(err, KindBadValue))

	date, err := GameDateFromLink(path)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2004, time.November, 2, 0, 0, 0, 0, time.UTC), date)

	assert.Equal(t, path, BuildGameLink(date, "DEN"))
}
