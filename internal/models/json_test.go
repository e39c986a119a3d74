package models

import (
	"database/sql"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxscoreEntryJSON_AbsentStatsAreNull(t *testing.T) {
	entry := BoxscoreEntry{
		GameLink:   "/boxscores/200411020DEN.html",
		GameDate:   time.Date(2004, time.November, 2, 0, 0, 0, 0, time.UTC),
		PlayerID:   "duncati01",
		PlayerName: "Tim Duncan",
		Minutes:    sql.NullFloat64{Float64: 38.5, Valid: true},
		Points:     sql.NullInt32{Int32: 24, Valid: true},
		PlusMinus:  sql.NullInt32{Int32: 0, Valid: true},
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(24), raw["points"])
	assert.Equal(t, 38.5, raw["minutes"])
	assert.Equal(t, float64(0), raw["plus_minus"], "zero is a value, not absent")
	assert.Contains(t, raw, "fg")
	assert.Nil(t, raw["fg"])
	assert.NotContains(t, string(data), "Valid")

	var back BoxscoreEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, entry, back)
}

func TestScheduleEntryJSON_UnplayedGame(t *testing.T) {
	entry := ScheduleEntry{
		Season:   2005,
		Date:     time.Date(2005, time.April, 20, 0, 0, 0, 0, time.UTC),
		GameLink: "/boxscores/200504200SAS.html",
		Status:   StatusScheduled,
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"home_points":null`)
	assert.Contains(t, string(data), `"attendance":null`)

	var back ScheduleEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, entry, back)
}

func TestPlayerJSON(t *testing.T) {
	born := time.Date(1976, time.April, 25, 0, 0, 0, 0, time.UTC)
	p := Player{
		ID:           "duncati01",
		Name:         "Tim Duncan",
		Season:       2005,
		HeightInches: sql.NullInt32{Int32: 83, Valid: true},
		BirthDate:    sql.NullTime{Time: born, Valid: true},
		Points:       sql.NullFloat64{Float64: 20.3, Valid: true},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"height_inches":83`)
	assert.Contains(t, string(data), `"weight":null`)
	assert.Contains(t, string(data), `"fg_pct":null`)

	var back Player
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}
