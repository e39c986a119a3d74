package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/models"
)

// Era is a span of seasons in which a franchise used one site code.
// Last is zero for the current era.
type Era struct {
	Site  string
	First int
	Last  int
	Name  string
}

// Franchise groups every code a team has gone by under its canonical code.
type Franchise struct {
	Code    string
	Eras    []Era
	Aliases []string // common non-site spellings, e.g. BKN, PHX
}

// Teams is the versioned alias table. Seasons are ending calendar years.
// Updating it is how relocations and renames are handled.
var Teams = []Franchise{
	{Code: "ATL", Eras: []Era{
		{"TRI", 1950, 1951, "Tri-Cities Blackhawks"},
		{"MLH", 1952, 1955, "Milwaukee Hawks"},
		{"STL", 1956, 1968, "St. Louis Hawks"},
		{"ATL", 1969, 0, "Atlanta Hawks"},
	}},
	{Code: "BOS", Eras: []Era{{"BOS", 1947, 0, "Boston Celtics"}}},
	{Code: "BRK", Aliases: []string{"BKN"}, Eras: []Era{
		{"NYN", 1977, 1977, "New York Nets"},
		{"NJN", 1978, 2012, "New Jersey Nets"},
		{"BRK", 2013, 0, "Brooklyn Nets"},
	}},
	{Code: "CHO", Eras: []Era{
		{"CHH", 1989, 2002, "Charlotte Hornets"},
		{"CHA", 2005, 2014, "Charlotte Bobcats"},
		{"CHO", 2015, 0, "Charlotte Hornets"},
	}},
	{Code: "CHI", Eras: []Era{{"CHI", 1967, 0, "Chicago Bulls"}}},
	{Code: "CLE", Eras: []Era{{"CLE", 1971, 0, "Cleveland Cavaliers"}}},
	{Code: "DAL", Eras: []Era{{"DAL", 1981, 0, "Dallas Mavericks"}}},
	{Code: "DEN", Eras: []Era{{"DEN", 1977, 0, "Denver Nuggets"}}},
	{Code: "DET", Eras: []Era{
		{"FTW", 1949, 1957, "Fort Wayne Pistons"},
		{"DET", 1958, 0, "Detroit Pistons"},
	}},
	{Code: "GSW", Aliases: []string{"GS"}, Eras: []Era{
		{"PHW", 1947, 1962, "Philadelphia Warriors"},
		{"SFW", 1963, 1971, "San Francisco Warriors"},
		{"GSW", 1972, 0, "Golden State Warriors"},
	}},
	{Code: "HOU", Eras: []Era{
		{"SDR", 1968, 1971, "San Diego Rockets"},
		{"HOU", 1972, 0, "Houston Rockets"},
	}},
	{Code: "IND", Eras: []Era{{"IND", 1977, 0, "Indiana Pacers"}}},
	{Code: "LAC", Eras: []Era{
		{"BUF", 1971, 1978, "Buffalo Braves"},
		{"SDC", 1979, 1984, "San Diego Clippers"},
		{"LAC", 1985, 0, "Los Angeles Clippers"},
	}},
	{Code: "LAL", Eras: []Era{
		{"MNL", 1949, 1960, "Minneapolis Lakers"},
		{"LAL", 1961, 0, "Los Angeles Lakers"},
	}},
	{Code: "MEM", Eras: []Era{
		{"VAN", 1996, 2001, "Vancouver Grizzlies"},
		{"MEM", 2002, 0, "Memphis Grizzlies"},
	}},
	{Code: "MIA", Eras: []Era{{"MIA", 1989, 0, "Miami Heat"}}},
	{Code: "MIL", Eras: []Era{{"MIL", 1969, 0, "Milwaukee Bucks"}}},
	{Code: "MIN", Eras: []Era{{"MIN", 1990, 0, "Minnesota Timberwolves"}}},
	{Code: "NOP", Aliases: []string{"NO"}, Eras: []Era{
		{"NOH", 2003, 2005, "New Orleans Hornets"},
		{"NOK", 2006, 2007, "New Orleans/Oklahoma City Hornets"},
		{"NOH", 2008, 2013, "New Orleans Hornets"},
		{"NOP", 2014, 0, "New Orleans Pelicans"},
	}},
	{Code: "NYK", Aliases: []string{"NY"}, Eras: []Era{{"NYK", 1947, 0, "New York Knicks"}}},
	{Code: "OKC", Eras: []Era{
		{"SEA", 1968, 2008, "Seattle SuperSonics"},
		{"OKC", 2009, 0, "Oklahoma City Thunder"},
	}},
	{Code: "ORL", Eras: []Era{{"ORL", 1990, 0, "Orlando Magic"}}},
	{Code: "PHI", Eras: []Era{
		{"SYR", 1950, 1963, "Syracuse Nationals"},
		{"PHI", 1964, 0, "Philadelphia 76ers"},
	}},
	{Code: "PHO", Aliases: []string{"PHX"}, Eras: []Era{{"PHO", 1969, 0, "Phoenix Suns"}}},
	{Code: "POR", Eras: []Era{{"POR", 1971, 0, "Portland Trail Blazers"}}},
	{Code: "SAC", Eras: []Era{
		{"ROC", 1949, 1957, "Rochester Royals"},
		{"CIN", 1958, 1972, "Cincinnati Royals"},
		{"KCO", 1973, 1975, "Kansas City-Omaha Kings"},
		{"KCK", 1976, 1985, "Kansas City Kings"},
		{"SAC", 1986, 0, "Sacramento Kings"},
	}},
	{Code: "SAS", Aliases: []string{"SA"}, Eras: []Era{{"SAS", 1977, 0, "San Antonio Spurs"}}},
	{Code: "TOR", Eras: []Era{{"TOR", 1996, 0, "Toronto Raptors"}}},
	{Code: "UTA", Eras: []Era{
		{"NOJ", 1975, 1979, "New Orleans Jazz"},
		{"UTA", 1980, 0, "Utah Jazz"},
	}},
	{Code: "WAS", Aliases: []string{"WSH"}, Eras: []Era{
		{"CHP", 1962, 1962, "Chicago Packers"},
		{"CHZ", 1963, 1963, "Chicago Zephyrs"},
		{"BAL", 1964, 1973, "Baltimore Bullets"},
		{"CAP", 1974, 1974, "Capital Bullets"},
		{"WSB", 1975, 1997, "Washington Bullets"},
		{"WAS", 1998, 0, "Washington Wizards"},
	}},
}

var (
	byCode = indexTeams()

	teamLinkPattern = regexp.MustCompile(`/teams/([A-Z]{3})/(\d{4})\.html`)
)

func indexTeams() map[string]*Franchise {
	idx := make(map[string]*Franchise)
	for i := range Teams {
		f := &Teams[i]
		idx[f.Code] = f
		for _, e := range f.Eras {
			idx[e.Site] = f
		}
		for _, a := range f.Aliases {
			idx[a] = f
		}
	}
	return idx
}

func (e Era) covers(season int) bool {
	return season >= e.First && (e.Last == 0 || season <= e.Last)
}

// ResolveTeam maps any historical or alias code to the canonical Team for
// season, carrying the code the site used that season.
func ResolveTeam(code string, season int) (models.Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	f, ok := byCode[code]
	if !ok {
		return models.Team{}, &Error{Kind: KindUnknownTeam, Document: "team", Row: -1, Value: code}
	}
	for _, e := range f.Eras {
		if e.covers(season) {
			return models.Team{Code: f.Code, SiteCode: e.Site, Season: season, Name: e.Name}, nil
		}
	}
	return models.Team{}, &Error{
		Kind: KindUnknownTeam, Document: "team", Row: -1, Value: code,
		Err: errors.Newf("franchise %s did not play in %d", f.Code, season),
	}
}

// CanonicalCode returns the canonical code for any known code without
// checking the season.
func CanonicalCode(code string) (string, bool) {
	f, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", false
	}
	return f.Code, true
}

// TeamFromLink resolves a team page href such as /teams/NJN/2005.html. The
// season in the link wins over fallbackSeason when present.
func TeamFromLink(href string, fallbackSeason int) (models.Team, error) {
	m := teamLinkPattern.FindStringSubmatch(href)
	if m == nil {
		return models.Team{}, &Error{Kind: KindUnknownTeam, Document: "team", Row: -1, Value: href}
	}
	season := fallbackSeason
	if s, err := strconv.Atoi(m[2]); err == nil {
		season = s
	}
	return ResolveTeam(m[1], season)
}

// TeamFromName resolves a franchise display name as printed for season.
func TeamFromName(name string, season int) (models.Team, error) {
	name = strings.TrimSpace(name)
	for _, f := range Teams {
		for _, e := range f.Eras {
			if e.covers(season) && strings.EqualFold(e.Name, name) {
				return models.Team{Code: f.Code, SiteCode: e.Site, Season: season, Name: e.Name}, nil
			}
		}
	}
	return models.Team{}, &Error{Kind: KindUnknownTeam, Document: "team", Row: -1, Value: name}
}
