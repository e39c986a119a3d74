package extract

import (
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// separatorClasses mark rows the site uses for visual grouping only
// ("Reserves", repeated headers, "Playoffs").
var separatorClasses = []string{"thead", "over_header", "spacer"}

// Cell is the raw content of one table cell.
type Cell struct {
	Text    string
	Link    string // href of the first anchor in the cell
	SortKey string // csk attribute
	Append  string // data-append-csv attribute, usually a player slug
}

// Row is a generic table row keyed by column identifier.
type Row struct {
	Index   int // position among emitted data rows
	Section int // number of separator rows seen before this row
	Cells   map[string]Cell
}

// Text returns the text of key, or "" when the row has no such cell.
func (r Row) Text(key string) string {
	return r.Cells[key].Text
}

// Cell returns the cell for key.
func (r Row) Cell(key string) (Cell, bool) {
	c, ok := r.Cells[key]
	return c, ok
}

// Has reports whether the row carries a cell for key.
func (r Row) Has(key string) bool {
	_, ok := r.Cells[key]
	return ok
}

// Keys returns the row's column keys, sorted.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r.Cells))
	for k := range r.Cells {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Rows lazily walks the body rows of one table. It is single-use: once
// drained, extracting again means calling Document.Table again.
type Rows struct {
	selector    string
	fromComment bool
	columns     []string
	nodes       []*html.Node

	pos     int
	index   int
	section int
}

func newRows(table *goquery.Selection, selector string, fromComment bool) *Rows {
	return &Rows{
		selector:    selector,
		fromComment: fromComment,
		columns:     headerKeys(table),
		nodes:       table.ChildrenFiltered("tbody").ChildrenFiltered("tr").Nodes,
	}
}

// Selector is the selector that located the table.
func (r *Rows) Selector() string { return r.selector }

// FromComment reports whether the table was found inside an HTML comment.
func (r *Rows) FromComment() bool { return r.fromComment }

// Columns returns the header keys in column order.
func (r *Rows) Columns() []string { return slices.Clone(r.columns) }

// Next returns the next data row, skipping separator rows.
func (r *Rows) Next() (Row, bool) {
	for r.pos < len(r.nodes) {
		tr := goquery.NewDocumentFromNode(r.nodes[r.pos]).Selection
		r.pos++

		if isSeparator(tr) {
			r.section++
			continue
		}

		row := Row{Index: r.index, Section: r.section, Cells: r.cells(tr)}
		r.index++
		return row, true
	}
	return Row{}, false
}

// All yields the remaining rows.
func (r *Rows) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for {
			row, ok := r.Next()
			if !ok || !yield(row) {
				return
			}
		}
	}
}

// Collect drains the remaining rows into a slice.
func (r *Rows) Collect() []Row {
	return slices.Collect(r.All())
}

func (r *Rows) cells(tr *goquery.Selection) map[string]Cell {
	cells := make(map[string]Cell)
	pos := 0
	tr.Children().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if name != "td" && name != "th" {
			return
		}

		key := strings.TrimSpace(s.AttrOr("data-stat", ""))
		if key == "" && pos < len(r.columns) {
			key = r.columns[pos]
		}
		pos += colspan(s)
		if key == "" {
			return
		}

		cell := Cell{
			Text:    cellText(s),
			SortKey: s.AttrOr("csk", ""),
			Append:  s.AttrOr("data-append-csv", ""),
		}
		if href, ok := s.Find("a").First().Attr("href"); ok {
			cell.Link = href
		}
		cells[key] = cell
	})
	return cells
}

// headerKeys reads column keys from the last header row, preferring the
// stable data-stat identifiers over display text.
func headerKeys(table *goquery.Selection) []string {
	header := table.ChildrenFiltered("thead").ChildrenFiltered("tr").Not(".over_header").Last()
	if header.Length() == 0 {
		return nil
	}

	var keys []string
	header.Children().Each(func(_ int, s *goquery.Selection) {
		key := strings.TrimSpace(s.AttrOr("data-stat", ""))
		if key == "" {
			key = strings.ToLower(cellText(s))
		}
		for i := 0; i < colspan(s); i++ {
			keys = append(keys, key)
		}
	})
	return keys
}

func isSeparator(tr *goquery.Selection) bool {
	for _, class := range separatorClasses {
		if tr.HasClass(class) {
			return true
		}
	}
	return tr.ChildrenFiltered("td").Length() == 0
}

func colspan(s *goquery.Selection) int {
	n, err := strconv.Atoi(s.AttrOr("colspan", "1"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
