package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// ScoreboxTeam is one side of a box score header, as printed.
type ScoreboxTeam struct {
	Name  string
	Link  string
	Score string
}

// Scorebox returns the team blocks of a box score header in page order,
// visitor first. Blocks without a team link (the meta column) are skipped.
func (d *Document) Scorebox() []ScoreboxTeam {
	var teams []ScoreboxTeam
	d.doc.Find("div.scorebox").First().ChildrenFiltered("div").Each(func(_ int, s *goquery.Selection) {
		a := s.Find("strong a").First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		teams = append(teams, ScoreboxTeam{
			Name:  cellText(a),
			Link:  href,
			Score: cellText(s.Find("div.score").First()),
		})
	})
	return teams
}
