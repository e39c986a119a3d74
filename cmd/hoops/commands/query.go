package commands

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/fortuna/hoops/internal/models"
)

var scheduleTeam string

func init() {
	scheduleCmd.Flags().StringVar(&scheduleTeam, "team", "", "Only this team's games (e.g. SAS, BRK).")
	rootCmd.AddCommand(scheduleCmd, rosterCmd, injuriesCmd, boxscoreCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <season> [--team <code>]",
	Short: "Prints every game of a season, optionally filtered to one team.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := parseSeason(args[0])
		if err != nil {
			return err
		}

		var games []models.ScheduleEntry
		if scheduleTeam != "" {
			games, err = app.scraper.GetTeamSchedule(cmd.Context(), scheduleTeam, season)
		} else {
			games, err = app.scraper.GetAllSchedule(cmd.Context(), season)
		}
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), format, games, scheduleTable(games))
	},
}

var rosterCmd = &cobra.Command{
	Use:   "roster <team> <season>",
	Short: "Prints a team's roster with per-game averages.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := parseSeason(args[1])
		if err != nil {
			return err
		}
		players, err := app.scraper.GetRoster(cmd.Context(), args[0], season)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), format, players, rosterTable(players))
	},
}

var injuriesCmd = &cobra.Command{
	Use:   "injuries <team> <season>",
	Short: "Prints a team's injury report.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := parseSeason(args[1])
		if err != nil {
			return err
		}
		reports, err := app.scraper.GetInjuryReport(cmd.Context(), args[0], season)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), format, reports, injuryTable(reports))
	},
}

var boxscoreCmd = &cobra.Command{
	Use:   "boxscore <game-link>",
	Short: "Prints the basic box score of a game, e.g. /boxscores/200411020DEN.html.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		link := args[0]
		if !strings.Contains(link, "/") {
			link = "/boxscores/" + strings.TrimSuffix(link, ".html") + ".html"
		}

		summary, err := app.scraper.GetGameSummary(cmd.Context(), link)
		if err != nil {
			return err
		}
		entries, err := app.scraper.GetBoxscore(cmd.Context(), link)
		if err != nil {
			return err
		}

		out := struct {
			Summary any `json:"summary"`
			Players any `json:"players"`
		}{summary, entries}
		return render(cmd.OutOrStdout(), format, out, boxscoreTable(summary, entries))
	},
}

// parseSeason accepts the ending year of a season (2005 for 2004-05).
func parseSeason(s string) (int, error) {
	season, err := strconv.Atoi(s)
	if err != nil || season < 1947 {
		return 0, errors.Newf("season must be a year such as 2005, got %q", s)
	}
	return season, nil
}
