package schema

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in    string
		want  int32
		valid bool
		err   bool
	}{
		{"", 0, false, false},
		{"   ", 0, false, false},
		{"0", 0, true, false},
		{"18,797", 18797, true, false},
		{"+12", 12, true, false},
		{"-7", -7, true, false},
		{"12a", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInt(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.want, got.Int32)
		})
	}
}

func TestParseFloat(t *testing.T) {
	got, err := ParseFloat(".456")
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.InDelta(t, 0.456, got.Float64, 1e-9)

	got, err = ParseFloat("")
	require.NoError(t, err)
	assert.False(t, got.Valid, "empty cell is null, not zero")

	_, err = ParseFloat("NaN")
	assert.Error(t, err)
	_, err = ParseFloat("n/a")
	assert.Error(t, err)
}

func TestParseMinutes(t *testing.T) {
	got, err := ParseMinutes("34:30")
	require.NoError(t, err)
	assert.InDelta(t, 34.5, got.Float64, 1e-9)

	got, err = ParseMinutes("40")
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.Float64)

	got, err = ParseMinutes("")
	require.NoError(t, err)
	assert.False(t, got.Valid)

	for _, bad := range []string{"12:75", "ab:10", "-3:00", "12:x"} {
		_, err := ParseMinutes(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseMinutes_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("MM:SS converts to fractional minutes", prop.ForAll(
		func(m, s int) bool {
			got, err := ParseMinutes(fmt.Sprintf("%d:%02d", m, s))
			if err != nil || !got.Valid {
				return false
			}
			return math.Abs(got.Float64-(float64(m)+float64(s)/60)) < 1e-9
		},
		gen.IntRange(0, 65),
		gen.IntRange(0, 59),
	))

	properties.TestingRun(t)
}

func TestParseSiteDate(t *testing.T) {
	want := time.Date(2004, time.November, 2, 0, 0, 0, 0, time.UTC)

	got, err := ParseSiteDate("200411020", "", scheduleDateLayout)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseSiteDate("", "Tue, Nov 2, 2004", scheduleDateLayout)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseSiteDate("", "2nd of November", scheduleDateLayout)
	assert.Error(t, err)
	_, err = ParseSiteDate("", "", scheduleDateLayout)
	assert.Error(t, err)
}
