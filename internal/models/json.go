package models

import (
	"database/sql"
	"time"

	json "github.com/goccy/go-json"
)

// The sql.Null* fields are encoded as their value or null. The wire structs
// below mirror the models field for field with pointers in their place.

type scheduleEntryJSON struct {
	Season     int        `json:"season"`
	Date       time.Time  `json:"date"`
	StartTime  string     `json:"start_time,omitempty"`
	Home       Team       `json:"home"`
	Away       Team       `json:"away"`
	HomePoints *int32     `json:"home_points"`
	AwayPoints *int32     `json:"away_points"`
	GameLink   string     `json:"game_link"`
	Status     GameStatus `json:"status"`
	Overtimes  int        `json:"overtimes"`
	Attendance *int32     `json:"attendance"`
	Playoff    bool       `json:"playoff"`
	Notes      string     `json:"notes,omitempty"`
}

func (e ScheduleEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(scheduleEntryJSON{
		Season:     e.Season,
		Date:       e.Date,
		StartTime:  e.StartTime,
		Home:       e.Home,
		Away:       e.Away,
		HomePoints: int32Ptr(e.HomePoints),
		AwayPoints: int32Ptr(e.AwayPoints),
		GameLink:   e.GameLink,
		Status:     e.Status,
		Overtimes:  e.Overtimes,
		Attendance: int32Ptr(e.Attendance),
		Playoff:    e.Playoff,
		Notes:      e.Notes,
	})
}

func (e *ScheduleEntry) UnmarshalJSON(data []byte) error {
	var w scheduleEntryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = ScheduleEntry{
		Season:     w.Season,
		Date:       w.Date,
		StartTime:  w.StartTime,
		Home:       w.Home,
		Away:       w.Away,
		HomePoints: nullInt32(w.HomePoints),
		AwayPoints: nullInt32(w.AwayPoints),
		GameLink:   w.GameLink,
		Status:     w.Status,
		Overtimes:  w.Overtimes,
		Attendance: nullInt32(w.Attendance),
		Playoff:    w.Playoff,
		Notes:      w.Notes,
	}
	return nil
}

type playerJSON struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Season       int        `json:"season"`
	Team         Team       `json:"team"`
	Number       string     `json:"number,omitempty"`
	Position     string     `json:"position,omitempty"`
	HeightInches *int32     `json:"height_inches"`
	Weight       *int32     `json:"weight"`
	BirthDate    *time.Time `json:"birth_date"`
	BirthCountry string     `json:"birth_country,omitempty"`
	Experience   *int32     `json:"experience"`
	College      string     `json:"college,omitempty"`
	Age          *int32     `json:"age"`
	Games        *int32     `json:"games"`
	GamesStarted *int32     `json:"games_started"`
	Minutes      *float64   `json:"minutes"`
	Points       *float64   `json:"points"`
	Rebounds     *float64   `json:"rebounds"`
	Assists      *float64   `json:"assists"`
	Steals       *float64   `json:"steals"`
	Blocks       *float64   `json:"blocks"`
	Turnovers    *float64   `json:"turnovers"`
	FGPct        *float64   `json:"fg_pct"`
	FG3Pct       *float64   `json:"fg3_pct"`
	FTPct        *float64   `json:"ft_pct"`
}

func (p Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(playerJSON{
		ID:           p.ID,
		Name:         p.Name,
		Season:       p.Season,
		Team:         p.Team,
		Number:       p.Number,
		Position:     p.Position,
		HeightInches: int32Ptr(p.HeightInches),
		Weight:       int32Ptr(p.Weight),
		BirthDate:    timePtr(p.BirthDate),
		BirthCountry: p.BirthCountry,
		Experience:   int32Ptr(p.Experience),
		College:      p.College,
		Age:          int32Ptr(p.Age),
		Games:        int32Ptr(p.Games),
		GamesStarted: int32Ptr(p.GamesStarted),
		Minutes:      float64Ptr(p.Minutes),
		Points:       float64Ptr(p.Points),
		Rebounds:     float64Ptr(p.Rebounds),
		Assists:      float64Ptr(p.Assists),
		Steals:       float64Ptr(p.Steals),
		Blocks:       float64Ptr(p.Blocks),
		Turnovers:    float64Ptr(p.Turnovers),
		FGPct:        float64Ptr(p.FGPct),
		FG3Pct:       float64Ptr(p.FG3Pct),
		FTPct:        float64Ptr(p.FTPct),
	})
}

func (p *Player) UnmarshalJSON(data []byte) error {
	var w playerJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Player{
		ID:           w.ID,
		Name:         w.Name,
		Season:       w.Season,
		Team:         w.Team,
		Number:       w.Number,
		Position:     w.Position,
		HeightInches: nullInt32(w.HeightInches),
		Weight:       nullInt32(w.Weight),
		BirthDate:    nullTime(w.BirthDate),
		BirthCountry: w.BirthCountry,
		Experience:   nullInt32(w.Experience),
		College:      w.College,
		Age:          nullInt32(w.Age),
		Games:        nullInt32(w.Games),
		GamesStarted: nullInt32(w.GamesStarted),
		Minutes:      nullFloat64(w.Minutes),
		Points:       nullFloat64(w.Points),
		Rebounds:     nullFloat64(w.Rebounds),
		Assists:      nullFloat64(w.Assists),
		Steals:       nullFloat64(w.Steals),
		Blocks:       nullFloat64(w.Blocks),
		Turnovers:    nullFloat64(w.Turnovers),
		FGPct:        nullFloat64(w.FGPct),
		FG3Pct:       nullFloat64(w.FG3Pct),
		FTPct:        nullFloat64(w.FTPct),
	}
	return nil
}

type boxscoreEntryJSON struct {
	GameLink   string    `json:"game_link"`
	GameDate   time.Time `json:"game_date"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Team       Team      `json:"team"`
	Starter    bool      `json:"starter"`
	DidNotPlay string    `json:"did_not_play,omitempty"`
	Minutes    *float64  `json:"minutes"`
	Points     *int32    `json:"points"`
	FG         *int32    `json:"fg"`
	FGA        *int32    `json:"fga"`
	FG3        *int32    `json:"fg3"`
	FG3A       *int32    `json:"fg3a"`
	FT         *int32    `json:"ft"`
	FTA        *int32    `json:"fta"`
	ORB        *int32    `json:"orb"`
	DRB        *int32    `json:"drb"`
	TRB        *int32    `json:"trb"`
	AST        *int32    `json:"ast"`
	STL        *int32    `json:"stl"`
	BLK        *int32    `json:"blk"`
	TOV        *int32    `json:"tov"`
	PF         *int32    `json:"pf"`
	PlusMinus  *int32    `json:"plus_minus"`
}

func (b BoxscoreEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(boxscoreEntryJSON{
		GameLink:   b.GameLink,
		GameDate:   b.GameDate,
		PlayerID:   b.PlayerID,
		PlayerName: b.PlayerName,
		Team:       b.Team,
		Starter:    b.Starter,
		DidNotPlay: b.DidNotPlay,
		Minutes:    float64Ptr(b.Minutes),
		Points:     int32Ptr(b.Points),
		FG:         int32Ptr(b.FG),
		FGA:        int32Ptr(b.FGA),
		FG3:        int32Ptr(b.FG3),
		FG3A:       int32Ptr(b.FG3A),
		FT:         int32Ptr(b.FT),
		FTA:        int32Ptr(b.FTA),
		ORB:        int32Ptr(b.ORB),
		DRB:        int32Ptr(b.DRB),
		TRB:        int32Ptr(b.TRB),
		AST:        int32Ptr(b.AST),
		STL:        int32Ptr(b.STL),
		BLK:        int32Ptr(b.BLK),
		TOV:        int32Ptr(b.TOV),
		PF:         int32Ptr(b.PF),
		PlusMinus:  int32Ptr(b.PlusMinus),
	})
}

func (b *BoxscoreEntry) UnmarshalJSON(data []byte) error {
	var w boxscoreEntryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = BoxscoreEntry{
		GameLink:   w.GameLink,
		GameDate:   w.GameDate,
		PlayerID:   w.PlayerID,
		PlayerName: w.PlayerName,
		Team:       w.Team,
		Starter:    w.Starter,
		DidNotPlay: w.DidNotPlay,
		Minutes:    nullFloat64(w.Minutes),
		Points:     nullInt32(w.Points),
		FG:         nullInt32(w.FG),
		FGA:        nullInt32(w.FGA),
		FG3:        nullInt32(w.FG3),
		FG3A:       nullInt32(w.FG3A),
		FT:         nullInt32(w.FT),
		FTA:        nullInt32(w.FTA),
		ORB:        nullInt32(w.ORB),
		DRB:        nullInt32(w.DRB),
		TRB:        nullInt32(w.TRB),
		AST:        nullInt32(w.AST),
		STL:        nullInt32(w.STL),
		BLK:        nullInt32(w.BLK),
		TOV:        nullInt32(w.TOV),
		PF:         nullInt32(w.PF),
		PlusMinus:  nullInt32(w.PlusMinus),
	}
	return nil
}

func int32Ptr(n sql.NullInt32) *int32 {
	if !n.Valid {
		return nil
	}
	v := n.Int32
	return &v
}

func float64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func nullInt32(p *int32) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *p, Valid: true}
}

func nullFloat64(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}
