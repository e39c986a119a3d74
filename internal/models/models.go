package models

import (
	"database/sql"
	"time"
)

// GameStatus is the state of a scheduled game.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusCompleted GameStatus = "completed"
	StatusPostponed GameStatus = "postponed"
)

// InjuryStatus is the availability designation of an injured player.
type InjuryStatus string

const (
	InjuryOut          InjuryStatus = "out"
	InjuryDoubtful     InjuryStatus = "doubtful"
	InjuryQuestionable InjuryStatus = "questionable"
	InjuryProbable     InjuryStatus = "probable"
	InjuryDayToDay     InjuryStatus = "day-to-day"
)

// Team identifies a franchise in one season.
type Team struct {
	Code     string `json:"code" validate:"required,len=3,uppercase"`
	SiteCode string `json:"site_code" validate:"required,len=3,uppercase"`
	Season   int    `json:"season" validate:"gte=1947"`
	Name     string `json:"name,omitempty"`
}

// ScheduleEntry is one game on a season schedule.
type ScheduleEntry struct {
	Season     int           `json:"season" validate:"gte=1947"`
	Date       time.Time     `json:"date" validate:"required"`
	StartTime  string        `json:"start_time,omitempty"`
	Home       Team          `json:"home"`
	Away       Team          `json:"away"`
	HomePoints sql.NullInt32 `json:"home_points"`
	AwayPoints sql.NullInt32 `json:"away_points"`
	GameLink   string        `json:"game_link" validate:"required,startswith=/boxscores/"`
	Status     GameStatus    `json:"status" validate:"oneof=scheduled completed postponed"`
	Overtimes  int           `json:"overtimes" validate:"gte=0"`
	Attendance sql.NullInt32 `json:"attendance"`
	Playoff    bool          `json:"playoff"`
	Notes      string        `json:"notes,omitempty"`
}

// Player is a roster entry enriched with season per-game averages.
type Player struct {
	ID           string          `json:"id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Season       int             `json:"season" validate:"gte=1947"`
	Team         Team            `json:"team"`
	Number       string          `json:"number,omitempty"`
	Position     string          `json:"position,omitempty"`
	HeightInches sql.NullInt32   `json:"height_inches" validate:"omitempty,gte=48,lte=100"`
	Weight       sql.NullInt32   `json:"weight" validate:"omitempty,gte=100,lte=400"`
	BirthDate    sql.NullTime    `json:"birth_date"`
	BirthCountry string          `json:"birth_country,omitempty"`
	Experience   sql.NullInt32   `json:"experience" validate:"omitempty,gte=0"`
	College      string          `json:"college,omitempty"`
	Age          sql.NullInt32   `json:"age"`
	Games        sql.NullInt32   `json:"games" validate:"omitempty,gte=0"`
	GamesStarted sql.NullInt32   `json:"games_started" validate:"omitempty,gte=0"`
	Minutes      sql.NullFloat64 `json:"minutes" validate:"omitempty,gte=0"`
	Points       sql.NullFloat64 `json:"points" validate:"omitempty,gte=0"`
	Rebounds     sql.NullFloat64 `json:"rebounds" validate:"omitempty,gte=0"`
	Assists      sql.NullFloat64 `json:"assists" validate:"omitempty,gte=0"`
	Steals       sql.NullFloat64 `json:"steals" validate:"omitempty,gte=0"`
	Blocks       sql.NullFloat64 `json:"blocks" validate:"omitempty,gte=0"`
	Turnovers    sql.NullFloat64 `json:"turnovers" validate:"omitempty,gte=0"`
	FGPct        sql.NullFloat64 `json:"fg_pct" validate:"omitempty,gte=0,lte=1"`
	FG3Pct       sql.NullFloat64 `json:"fg3_pct" validate:"omitempty,gte=0,lte=1"`
	FTPct        sql.NullFloat64 `json:"ft_pct" validate:"omitempty,gte=0,lte=1"`
}

// BoxscoreEntry is one player's line in one game.
type BoxscoreEntry struct {
	GameLink   string          `json:"game_link" validate:"required"`
	GameDate   time.Time       `json:"game_date" validate:"required"`
	PlayerID   string          `json:"player_id" validate:"required"`
	PlayerName string          `json:"player_name" validate:"required"`
	Team       Team            `json:"team"`
	Starter    bool            `json:"starter"`
	DidNotPlay string          `json:"did_not_play,omitempty"`
	Minutes    sql.NullFloat64 `json:"minutes" validate:"omitempty,gte=0"`
	Points     sql.NullInt32   `json:"points" validate:"omitempty,gte=0"`
	FG         sql.NullInt32   `json:"fg" validate:"omitempty,gte=0"`
	FGA        sql.NullInt32   `json:"fga" validate:"omitempty,gte=0"`
	FG3        sql.NullInt32   `json:"fg3" validate:"omitempty,gte=0"`
	FG3A       sql.NullInt32   `json:"fg3a" validate:"omitempty,gte=0"`
	FT         sql.NullInt32   `json:"ft" validate:"omitempty,gte=0"`
	FTA        sql.NullInt32   `json:"fta" validate:"omitempty,gte=0"`
	ORB        sql.NullInt32   `json:"orb" validate:"omitempty,gte=0"`
	DRB        sql.NullInt32   `json:"drb" validate:"omitempty,gte=0"`
	TRB        sql.NullInt32   `json:"trb" validate:"omitempty,gte=0"`
	AST        sql.NullInt32   `json:"ast" validate:"omitempty,gte=0"`
	STL        sql.NullInt32   `json:"stl" validate:"omitempty,gte=0"`
	BLK        sql.NullInt32   `json:"blk" validate:"omitempty,gte=0"`
	TOV        sql.NullInt32   `json:"tov" validate:"omitempty,gte=0"`
	PF         sql.NullInt32   `json:"pf" validate:"omitempty,gte=0"`
	PlusMinus  sql.NullInt32   `json:"plus_minus"`
}

// Played reports whether the player logged minutes in the game.
func (b BoxscoreEntry) Played() bool {
	return b.DidNotPlay == ""
}

// InjuryReport is one entry of a team's injury list.
type InjuryReport struct {
	PlayerID    string       `json:"player_id" validate:"required"`
	PlayerName  string       `json:"player_name" validate:"required"`
	Team        Team         `json:"team"`
	Season      int          `json:"season" validate:"gte=1947"`
	Status      InjuryStatus `json:"status" validate:"oneof=out doubtful questionable probable day-to-day"`
	Description string       `json:"description"`
	AsOf        time.Time    `json:"as_of" validate:"required"`
}

// GameSummary is the header of a box score page.
type GameSummary struct {
	GameLink      string    `json:"game_link" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	Visitor       Team      `json:"visitor"`
	Home          Team      `json:"home"`
	VisitorPoints int       `json:"visitor_points" validate:"gte=0"`
	HomePoints    int       `json:"home_points" validate:"gte=0"`
	Winner        string    `json:"winner,omitempty"`
	Playoff       bool      `json:"playoff"`
	PlayoffGame   int       `json:"playoff_game,omitempty" validate:"gte=0,lte=7"`
}
