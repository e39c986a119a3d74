package commands

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/fortuna/hoops/internal/models"
)

// render writes v as indented JSON, or through the table builder.
func render(w io.Writer, format string, v any, build func(t table.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	build(t)
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func scheduleTable(games []models.ScheduleEntry) func(table.Writer) {
	return func(t table.Writer) {
		t.AppendHeader(table.Row{"Date", "Away", "Pts", "Home", "Pts", "Status", "OT", "Playoff", "Game"})
		for _, g := range games {
			t.AppendRow(table.Row{
				g.Date.Format("2006-01-02"),
				g.Away.Code, nullInt(g.AwayPoints),
				g.Home.Code, nullInt(g.HomePoints),
				g.Status, overtime(g.Overtimes), yesNo(g.Playoff), g.GameLink,
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "", "", "Games", len(games)})
	}
}

func rosterTable(players []models.Player) func(table.Writer) {
	return func(t table.Writer) {
		t.AppendHeader(table.Row{"No.", "Player", "Pos", "Ht", "Wt", "Exp", "G", "MP", "PTS", "TRB", "AST"})
		for _, p := range players {
			t.AppendRow(table.Row{
				p.Number, p.Name, p.Position,
				height(p.HeightInches), nullInt(p.Weight), nullInt(p.Experience),
				nullInt(p.Games), nullFloat(p.Minutes), nullFloat(p.Points),
				nullFloat(p.Rebounds), nullFloat(p.Assists),
			})
		}
	}
}

func injuryTable(reports []models.InjuryReport) func(table.Writer) {
	return func(t table.Writer) {
		t.AppendHeader(table.Row{"Player", "Status", "Updated", "Description"})
		for _, r := range reports {
			t.AppendRow(table.Row{r.PlayerName, r.Status, r.AsOf.Format("2006-01-02"), r.Description})
		}
	}
}

func boxscoreTable(summary models.GameSummary, entries []models.BoxscoreEntry) func(table.Writer) {
	return func(t table.Writer) {
		t.SetTitle(fmt.Sprintf("%s %d @ %s %d", summary.Visitor.Code, summary.VisitorPoints, summary.Home.Code, summary.HomePoints))
		t.AppendHeader(table.Row{"Team", "Player", "GS", "MP", "PTS", "FG", "3P", "FT", "TRB", "AST", "+/-"})
		for _, e := range entries {
			if !e.Played() {
				t.AppendRow(table.Row{e.Team.Code, e.PlayerName, "", e.DidNotPlay})
				continue
			}
			t.AppendRow(table.Row{
				e.Team.Code, e.PlayerName, yesNo(e.Starter), nullFloat(e.Minutes), nullInt(e.Points),
				made(e.FG, e.FGA), made(e.FG3, e.FG3A), made(e.FT, e.FTA),
				nullInt(e.TRB), nullInt(e.AST), nullInt(e.PlusMinus),
			})
		}
	}
}

func nullInt(n sql.NullInt32) string {
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(int(n.Int32))
}

func nullFloat(n sql.NullFloat64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', 1, 64)
}

func height(inches sql.NullInt32) string {
	if !inches.Valid {
		return ""
	}
	return fmt.Sprintf("%d-%d", inches.Int32/12, inches.Int32%12)
}

func made(m, a sql.NullInt32) string {
	if !m.Valid || !a.Valid {
		return ""
	}
	return fmt.Sprintf("%d-%d", m.Int32, a.Int32)
}

func overtime(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "OT"
	default:
		return fmt.Sprintf("%dOT", n)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
