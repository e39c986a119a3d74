package schema

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/extract"
	"github.com/fortuna/hoops/internal/models"
)

const injuryDateLayout = "Mon, Jan 2, 2006"

// injuryStatuses maps the leading words of an injury note to a status.
// Longer prefixes come first.
var injuryStatuses = []struct {
	prefix string
	status models.InjuryStatus
}{
	{"day to day", models.InjuryDayToDay},
	{"day-to-day", models.InjuryDayToDay},
	{"questionable", models.InjuryQuestionable},
	{"doubtful", models.InjuryDoubtful},
	{"probable", models.InjuryProbable},
	{"out", models.InjuryOut},
}

// MapInjuries maps a team page injuries table.
func MapInjuries(rows *extract.Rows, team models.Team) ([]models.InjuryReport, error) {
	var reports []models.InjuryReport
	seen := make(map[string]int)

	for row := range rows.All() {
		r := newReader("injuries", row)
		r.require(InjuryKeys...)

		rep := models.InjuryReport{
			PlayerID:    r.playerID("player"),
			PlayerName:  r.text("player"),
			Team:        team,
			Season:      team.Season,
			Description: r.text("note"),
			AsOf:        r.date("date_update", injuryDateLayout),
		}
		if r.err != nil {
			return nil, r.err
		}

		status, ok := ParseInjuryStatus(rep.Description)
		if !ok {
			return nil, rowError(KindBadValue, "injuries", row.Index, "note", rep.Description, nil)
		}
		rep.Status = status

		if first, dup := seen[rep.PlayerID]; dup {
			return nil, rowError(KindDuplicateRow, "injuries", row.Index, "player", rep.PlayerID,
				errors.Newf("already listed at row %d", first))
		}
		seen[rep.PlayerID] = row.Index

		if err := check("injuries", row.Index, rep); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// ParseInjuryStatus reads the status from the start of a note such as
// "Day To Day (Ankle) - Duncan is listed...".
func ParseInjuryStatus(note string) (models.InjuryStatus, bool) {
	lower := strings.ToLower(strings.TrimSpace(note))
	for _, s := range injuryStatuses {
		if !strings.HasPrefix(lower, s.prefix) {
			continue
		}
		rest := lower[len(s.prefix):]
		if rest == "" || !isLetter(rest[0]) {
			return s.status, true
		}
	}
	return "", false
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
