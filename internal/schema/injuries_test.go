package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/models"
)

func TestParseInjuryStatus(t *testing.T) {
	tests := map[string]models.InjuryStatus{
		"Out (Knee) - The Spurs announced":      models.InjuryOut,
		"Out For Season (Achilles)":             models.InjuryOut,
		"Day To Day (Ankle) - Duncan is listed": models.InjuryDayToDay,
		"day-to-day":                            models.InjuryDayToDay,
		"Questionable (Illness)":                models.InjuryQuestionable,
		"Doubtful (Back)":                       models.InjuryDoubtful,
		"  Probable (Rest) - expected to play":  models.InjuryProbable,
	}
	for note, want := range tests {
		got, ok := ParseInjuryStatus(note)
		assert.True(t, ok, note)
		assert.Equal(t, want, got, note)
	}

	for _, bad := range []string{"", "Outstanding effort", "Suspended (league)"} {
		_, ok := ParseInjuryStatus(bad)
		assert.False(t, ok, bad)
	}
}

func TestMapInjuries(t *testing.T) {
	html := `<table id="injuries"><tbody>
<tr>
  <th data-stat="player" csk="Duncan,Tim"><a href="/players/d/duncati01.html">Tim Duncan</a></th>
  <td data-stat="team_name"><a href="/teams/SAS/2005.html">San Antonio Spurs</a></td>
  <td data-stat="date_update" csk="20050301">Tue, Mar 1, 2005</td>
  <td data-stat="note">Day To Day (Ankle) - Duncan sprained his right ankle.</td>
</tr>
<tr>
  <th data-stat="player"><a href="/players/b/barryb01.html">Brent Barry</a></th>
  <td data-stat="team_name">San Antonio Spurs</td>
  <td data-stat="date_update">Wed, Mar 2, 2005</td>
  <td data-stat="note">Out (Shoulder)</td>
</tr>
</tbody></table>`

	reports, err := MapInjuries(rowsOf(t, html, "#injuries"), spurs(t))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "duncati01", reports[0].PlayerID)
	assert.Equal(t, models.InjuryDayToDay, reports[0].Status)
	assert.Equal(t, time.Date(2005, time.March, 1, 0, 0, 0, 0, time.UTC), reports[0].AsOf)
	assert.Equal(t, 2005, reports[0].Season)
	assert.Equal(t, "SAS", reports[0].Team.Code)

	assert.Equal(t, "barryb01", reports[1].PlayerID)
	assert.Equal(t, models.InjuryOut, reports[1].Status)
	assert.Equal(t, time.Date(2005, time.March, 2, 0, 0, 0, 0, time.UTC), reports[1].AsOf)
}

func TestMapInjuries_Errors(t *testing.T) {
	row := func(note, date string) string {
		return `<table id="injuries"><tbody><tr>
<th data-stat="player" data-append-csv="duncati01">Tim Duncan</th>
<td data-stat="date_update">` + date + `</td>
<td data-stat="note">` + note + `</td></tr></tbody></table>`
	}

	_, err := MapInjuries(rowsOf(t, row("Suspended", "Tue, Mar 1, 2005"), "#injuries"), spurs(t))
	assert.True(t, IsKind(err, KindBadValue))

	_, err = MapInjuries(rowsOf(t, row("Out (Knee)", "March the first"), "#injuries"), spurs(t))
	assert.True(t, IsKind(err, KindBadDate))

	rows, err := extract.Extract(`<table id="injuries"><tbody><tr><th data-stat="player">x</th></tr></tbody></table>`, "#injuries")
	require.NoError(t, err)
	reports, err := MapInjuries(rows, spurs(t))
	assert.NoError(t, err, "a row with no td cells is a separator")
	assert.Empty(t, reports)
}
