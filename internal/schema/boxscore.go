package schema

import (
	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/models"
)

// TeamTable is one team's basic box score table.
type TeamTable struct {
	Team models.Team
	Rows *extract.Rows
}

// MapBoxscore maps every team table of one game. Rows before the first
// separator are starters. A player may appear once per team.
func MapBoxscore(gameLink string, tables ...TeamTable) ([]models.BoxscoreEntry, error) {
	path, err := NormalizeGameLink(gameLink)
	if err != nil {
		return nil, err
	}
	date, err := GameDateFromLink(path)
	if err != nil {
		return nil, err
	}

	var entries []models.BoxscoreEntry
	seen := make(map[string]int)

	for _, tt := range tables {
		for row := range tt.Rows.All() {
			e, err := mapBoxscoreRow(row, tt.Team)
			if err != nil {
				return nil, err
			}
			e.GameLink = path
			e.GameDate = date

			key := e.PlayerID + "|" + e.Team.Code
			if first, dup := seen[key]; dup {
				return nil, rowError(KindDuplicateRow, "boxscore", row.Index, "player", key,
					errors.Newf("already listed at row %d", first))
			}
			seen[key] = row.Index

			if err := check("boxscore", row.Index, e); err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func mapBoxscoreRow(row extract.Row, team models.Team) (models.BoxscoreEntry, error) {
	r := newReader("boxscore", row)
	r.require(BoxscoreKeys...)

	e := models.BoxscoreEntry{
		PlayerID:   r.playerID("player"),
		PlayerName: r.text("player"),
		Team:       team,
		Starter:    row.Section == 0,
	}
	if r.has("reason") {
		e.DidNotPlay = r.text("reason")
		if e.DidNotPlay == "" {
			e.DidNotPlay = "Did Not Play"
		}
		return e, r.err
	}

	r.require(BoxscorePlayedKeys...)
	e.Minutes = r.minutes("mp")
	e.Points = r.nullInt("pts")
	e.FG = r.nullInt("fg")
	e.FGA = r.nullInt("fga")
	e.FG3 = r.nullInt("fg3")
	e.FG3A = r.nullInt("fg3a")
	e.FT = r.nullInt("ft")
	e.FTA = r.nullInt("fta")
	e.ORB = r.nullInt("orb")
	e.DRB = r.nullInt("drb")
	e.TRB = r.nullInt("trb")
	e.AST = r.nullInt("ast")
	e.STL = r.nullInt("stl")
	e.BLK = r.nullInt("blk")
	e.TOV = r.nullInt("tov")
	e.PF = r.nullInt("pf")
	e.PlusMinus = r.nullInt("plus_minus")
	if r.err != nil {
		return models.BoxscoreEntry{}, r.err
	}
	return e, nil
}
