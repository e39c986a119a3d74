package schema

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/models"
)

const birthDateLayout = "January 2, 2006"

// MapRoster maps a team page roster table and joins in the per-game table
// by player slug. perGame may be nil; players without a per-game row keep
// null stats.
func MapRoster(roster *extract.Rows, perGame *extract.Rows, team models.Team) ([]models.Player, error) {
	stats, err := indexPerGame(perGame)
	if err != nil {
		return nil, err
	}

	var players []models.Player
	seen := make(map[string]int)

	for row := range roster.All() {
		p, err := mapRosterRow(row, team)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[p.ID]; dup {
			return nil, rowError(KindDuplicateRow, "roster", row.Index, "player", p.ID,
				errors.Newf("already listed at row %d", first))
		}
		seen[p.ID] = row.Index

		if pg, ok := stats[p.ID]; ok {
			if err := applyPerGame(&p, pg); err != nil {
				return nil, err
			}
		}
		if err := check("roster", row.Index, p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func mapRosterRow(row extract.Row, team models.Team) (models.Player, error) {
	r := newReader("roster", row)
	r.require(RosterKeys...)

	p := models.Player{
		ID:           r.playerID("player"),
		Name:         r.text("player"),
		Season:       team.Season,
		Team:         team,
		Number:       r.text("number"),
		Position:     r.text("pos"),
		HeightInches: r.height("height"),
		Weight:       r.nullInt("weight"),
		BirthDate:    r.birthDate("birth_date"),
		BirthCountry: strings.ToUpper(r.text("birth_country")),
		Experience:   r.experience("years_experience"),
		College:      r.text("college"),
	}
	if r.err != nil {
		return models.Player{}, r.err
	}
	return p, nil
}

func indexPerGame(rows *extract.Rows) (map[string]extract.Row, error) {
	idx := make(map[string]extract.Row)
	if rows == nil {
		return idx, nil
	}
	for row := range rows.All() {
		r := newReader("per_game", row)
		r.require(PerGameKeys...)
		id := r.playerID("player")
		if r.err != nil {
			return nil, r.err
		}
		if first, dup := idx[id]; dup {
			return nil, rowError(KindDuplicateRow, "per_game", row.Index, "player", id,
				errors.Newf("already listed at row %d", first.Index))
		}
		idx[id] = row
	}
	return idx, nil
}

func applyPerGame(p *models.Player, row extract.Row) error {
	r := newReader("per_game", row)
	p.Age = r.nullInt("age")
	p.Games = r.nullInt("g")
	p.GamesStarted = r.nullInt("gs")
	p.Minutes = r.nullFloat("mp_per_g")
	p.Points = r.nullFloat("pts_per_g")
	p.Rebounds = r.nullFloat("trb_per_g")
	p.Assists = r.nullFloat("ast_per_g")
	p.Steals = r.nullFloat("stl_per_g")
	p.Blocks = r.nullFloat("blk_per_g")
	p.Turnovers = r.nullFloat("tov_per_g")
	p.FGPct = r.nullFloat("fg_pct")
	p.FG3Pct = r.nullFloat("fg3_pct")
	p.FTPct = r.nullFloat("ft_pct")
	return r.err
}

// height reads inches from csk, falling back to feet-inches text ("6-11").
func (r *reader) height(key string) sql.NullInt32 {
	if r.err != nil {
		return sql.NullInt32{}
	}
	c := r.cell(key)
	if c.SortKey != "" {
		return r.sortInt(key)
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return sql.NullInt32{}
	}
	ft, in, ok := strings.Cut(text, "-")
	f, err1 := strconv.Atoi(ft)
	i, err2 := strconv.Atoi(in)
	if !ok || err1 != nil || err2 != nil {
		r.fail(KindBadNumber, key, text, nil)
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(f*12 + i), Valid: true}
}

// experience reads seasons of experience, where "R" marks a rookie.
func (r *reader) experience(key string) sql.NullInt32 {
	if r.err != nil {
		return sql.NullInt32{}
	}
	if strings.EqualFold(strings.TrimSpace(r.text(key)), "R") {
		return sql.NullInt32{Int32: 0, Valid: true}
	}
	return r.nullInt(key)
}

func (r *reader) birthDate(key string) sql.NullTime {
	if r.err != nil {
		return sql.NullTime{}
	}
	c := r.cell(key)
	if c.SortKey == "" && strings.TrimSpace(c.Text) == "" {
		return sql.NullTime{}
	}
	t := r.date(key, birthDateLayout)
	return sql.NullTime{Time: t, Valid: r.err == nil}
}
