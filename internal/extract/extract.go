// Package extract turns basketball-reference HTML into generic rows keyed by
// the site's data-stat column identifiers.
//
// The site ships many secondary tables inside HTML comments so they are
// rendered client-side; lookups fall back to parsing comment nodes when a
// table is not present in the live DOM.
package extract

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
)

// ErrTableNotFound is returned when none of the selectors match a table,
// neither in the document nor inside its comments.
var ErrTableNotFound = errors.New("table not found")

// Document is a parsed page.
type Document struct {
	doc *goquery.Document

	commentsOnce sync.Once
	comments     []*goquery.Document
}

// Parse parses raw HTML.
func Parse(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	return &Document{doc: doc}, nil
}

// Extract parses raw and returns the rows of the table matched by selector.
func Extract(raw string, selector string) (*Rows, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return doc.Table(selector)
}

// Table returns rows of the first table matched by any of selectors, tried
// in order. Direct table nodes win over comment-embedded ones. A selector
// that matches a wrapper element resolves to the first table inside it.
func (d *Document) Table(selectors ...string) (*Rows, error) {
	for _, sel := range selectors {
		if t := findTable(d.doc.Selection, sel); t != nil {
			return newRows(t, sel, false), nil
		}
	}
	for _, sel := range selectors {
		for _, c := range d.commentDocs() {
			if t := findTable(c.Selection, sel); t != nil {
				return newRows(t, sel, true), nil
			}
		}
	}
	return nil, errors.Wrapf(ErrTableNotFound, "selectors %s", strings.Join(selectors, ", "))
}

// Links returns the href of every anchor under the elements matched by
// selector, in document order.
func (d *Document) Links(selector string) []string {
	var links []string
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		anchors := s
		if goquery.NodeName(s) != "a" {
			anchors = s.Find("a")
		}
		anchors.Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok && href != "" {
				links = append(links, href)
			}
		})
	})
	return links
}

// Exists reports whether selector matches anything in the live document.
func (d *Document) Exists(selector string) bool {
	return d.doc.Find(selector).Length() > 0
}

// Heading returns the trimmed text of the page's first <h1>.
func (d *Document) Heading() string {
	return cellText(d.doc.Find("h1").First())
}

func findTable(root *goquery.Selection, selector string) *goquery.Selection {
	matched := root.Find(selector)
	if matched.Length() == 0 {
		return nil
	}
	if t := matched.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "table"
	}).First(); t.Length() > 0 {
		return t
	}
	if t := matched.Find("table").First(); t.Length() > 0 {
		return t
	}
	return nil
}

// commentDocs parses, once, every comment that contains table markup.
func (d *Document) commentDocs() []*goquery.Document {
	d.commentsOnce.Do(func() {
		for _, n := range d.doc.Nodes {
			walkComments(n, func(data string) {
				if !strings.Contains(data, "<table") {
					return
				}
				doc, err := goquery.NewDocumentFromReader(strings.NewReader(data))
				if err != nil {
					return
				}
				d.comments = append(d.comments, doc)
			})
		}
	})
	return d.comments
}

func walkComments(n *html.Node, visit func(string)) {
	if n.Type == html.CommentNode {
		visit(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkComments(c, visit)
	}
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
