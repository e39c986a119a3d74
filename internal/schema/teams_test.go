package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTeam_AliasesShareCanonicalCode(t *testing.T) {
	tests := []struct {
		old, current string
		season       int
		want         string
		site         string
	}{
		{"NJN", "BRK", 2005, "BRK", "NJN"},
		{"SEA", "OKC", 2008, "OKC", "SEA"},
		{"VAN", "MEM", 2000, "MEM", "VAN"},
		{"NOK", "NOP", 2006, "NOP", "NOK"},
		{"CHA", "CHO", 2010, "CHO", "CHA"},
		{"CHH", "CHO", 1995, "CHO", "CHH"},
		{"WSB", "WAS", 1990, "WAS", "WSB"},
		{"KCK", "SAC", 1980, "SAC", "KCK"},
		{"SDC", "LAC", 1982, "LAC", "SDC"},
		{"NOJ", "UTA", 1978, "UTA", "NOJ"},
	}
	for _, tt := range tests {
		t.Run(tt.old, func(t *testing.T) {
			a, err := ResolveTeam(tt.old, tt.season)
			require.NoError(t, err)
			b, err := ResolveTeam(tt.current, tt.season)
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.Code)
			assert.Equal(t, a, b)
			assert.Equal(t, tt.site, a.SiteCode)
		})
	}
}

func TestResolveTeam_SiteCodeFollowsSeason(t *testing.T) {
	old, err := ResolveTeam("brk", 2005)
	require.NoError(t, err)
	assert.Equal(t, "NJN", old.SiteCode)
	assert.Equal(t, "New Jersey Nets", old.Name)

	cur, err := ResolveTeam("NJN", 2020)
	require.NoError(t, err)
	assert.Equal(t, "BRK", cur.SiteCode)
	assert.Equal(t, "Brooklyn Nets", cur.Name)

	hornets, err := ResolveTeam("NOH", 2010)
	require.NoError(t, err)
	assert.Equal(t, "NOP", hornets.Code)
	assert.Equal(t, "NOH", hornets.SiteCode)
}

func TestResolveTeam_EveryEraResolvesToItsSiteCode(t *testing.T) {
	for _, f := range Teams {
		for _, e := range f.Eras {
			for _, season := range []int{e.First, e.Last} {
				if season == 0 {
					continue
				}
				team, err := ResolveTeam(e.Site, season)
				require.NoError(t, err, "%s %d", e.Site, season)
				assert.Equal(t, f.Code, team.Code)
				assert.Equal(t, e.Site, team.SiteCode)
			}
		}
	}
}

func TestResolveTeam_Unknown(t *testing.T) {
	_, err := ResolveTeam("XYZ", 2005)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnknownTeam))

	_, err = ResolveTeam("TOR", 1990)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnknownTeam))
	assert.Contains(t, err.Error(), "did not play in 1990")
}

func TestTeamFromLinkAndName(t *testing.T) {
	team, err := TeamFromLink("/teams/NJN/2005.html", 0)
	require.NoError(t, err)
	assert.Equal(t, "BRK", team.Code)
	assert.Equal(t, 2005, team.Season)

	team, err = TeamFromName("san antonio spurs", 2005)
	require.NoError(t, err)
	assert.Equal(t, "SAS", team.Code)

	_, err = TeamFromLink("/players/d/duncati01.html", 2005)
	assert.True(t, IsKind(err, KindUnknownTeam))

	code, ok := CanonicalCode("phx")
	assert.True(t, ok)
	assert.Equal(t, "PHO", code)
}
