package schema

import (
	"database/sql"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/extract"
)

var playerLinkPattern = regexp.MustCompile(`/players/[a-z]/([a-z0-9]+)\.html`)

// reader pulls typed fields out of one row. The first failure is kept and
// later calls become no-ops, so mappers read every field and check err once.
type reader struct {
	doc string
	row extract.Row
	err error
}

func newReader(doc string, row extract.Row) *reader {
	return &reader{doc: doc, row: row}
}

func (r *reader) fail(kind Kind, key, value string, cause error) {
	if r.err == nil {
		r.err = rowError(kind, r.doc, r.row.Index, key, value, cause)
	}
}

// lookup resolves key through KeyAliases.
func (r *reader) lookup(key string) (extract.Cell, bool) {
	if c, ok := r.row.Cell(key); ok {
		return c, true
	}
	for _, alt := range KeyAliases[key] {
		if c, ok := r.row.Cell(alt); ok {
			return c, true
		}
	}
	return extract.Cell{}, false
}

func (r *reader) has(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

func (r *reader) require(keys ...string) {
	for _, k := range keys {
		if !r.has(k) {
			r.fail(KindMissingKey, k, "", nil)
			return
		}
	}
}

func (r *reader) cell(key string) extract.Cell {
	c, _ := r.lookup(key)
	return c
}

func (r *reader) text(key string) string {
	return r.cell(key).Text
}

func (r *reader) nullInt(key string) sql.NullInt32 {
	if r.err != nil {
		return sql.NullInt32{}
	}
	v, err := ParseInt(r.text(key))
	if err != nil {
		r.fail(KindBadNumber, key, r.text(key), err)
	}
	return v
}

func (r *reader) nullFloat(key string) sql.NullFloat64 {
	if r.err != nil {
		return sql.NullFloat64{}
	}
	v, err := ParseFloat(r.text(key))
	if err != nil {
		r.fail(KindBadNumber, key, r.text(key), err)
	}
	return v
}

func (r *reader) minutes(key string) sql.NullFloat64 {
	if r.err != nil {
		return sql.NullFloat64{}
	}
	v, err := ParseMinutes(r.text(key))
	if err != nil {
		r.fail(KindBadNumber, key, r.text(key), err)
	}
	return v
}

// sortInt prefers the csk sort key over the display text.
func (r *reader) sortInt(key string) sql.NullInt32 {
	if r.err != nil {
		return sql.NullInt32{}
	}
	c := r.cell(key)
	raw := c.SortKey
	if raw == "" {
		raw = c.Text
	}
	v, err := ParseInt(raw)
	if err != nil {
		r.fail(KindBadNumber, key, raw, err)
	}
	return v
}

// date parses the csk (yyyymmdd...) when present, else the text with layout.
func (r *reader) date(key, layout string) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	c := r.cell(key)
	t, err := ParseSiteDate(c.SortKey, c.Text, layout)
	if err != nil {
		r.fail(KindBadDate, key, c.Text, err)
	}
	return t
}

func (r *reader) playerID(key string) string {
	if r.err != nil {
		return ""
	}
	c := r.cell(key)
	if id := PlayerIDFromCell(c); id != "" {
		return id
	}
	r.fail(KindBadValue, key, c.Text, errors.New("no player slug"))
	return ""
}

// PlayerIDFromCell returns the site slug of a player cell, from
// data-append-csv or the player link.
func PlayerIDFromCell(c extract.Cell) string {
	if c.Append != "" {
		return c.Append
	}
	if m := playerLinkPattern.FindStringSubmatch(c.Link); m != nil {
		return m[1]
	}
	return ""
}

// ParseInt parses an integer cell. Empty text is null. Thousands
// separators and a leading plus sign are accepted.
func ParseInt(s string) (sql.NullInt32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullInt32{}, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	s = strings.Replace(s, "−", "-", 1)
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return sql.NullInt32{}, errors.Wrapf(err, "parse int %q", s)
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}, nil
}

// ParseFloat parses a decimal cell such as "20.3" or ".456". Empty text is null.
func ParseFloat(s string) (sql.NullFloat64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		if err == nil {
			err = errors.Newf("non-finite value")
		}
		return sql.NullFloat64{}, errors.Wrapf(err, "parse float %q", s)
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

// ParseMinutes converts "MM:SS" to fractional minutes. A bare number is
// taken as whole minutes. Empty text is null.
func ParseMinutes(s string) (sql.NullFloat64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	mm, ss, found := strings.Cut(s, ":")
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 {
		return sql.NullFloat64{}, errors.Newf("parse minutes %q", s)
	}
	if !found {
		return sql.NullFloat64{Float64: float64(m), Valid: true}, nil
	}
	sec, err := strconv.Atoi(ss)
	if err != nil || sec < 0 || sec >= 60 {
		return sql.NullFloat64{}, errors.Newf("parse minutes %q", s)
	}
	return sql.NullFloat64{Float64: float64(m) + float64(sec)/60, Valid: true}, nil
}

// ParseSiteDate parses a date from a csk sort key (yyyymmdd followed by
// anything) or, failing that, from text in layout.
func ParseSiteDate(sortKey, text, layout string) (time.Time, error) {
	if len(sortKey) >= 8 {
		if t, err := time.Parse("20060102", sortKey[:8]); err == nil {
			return t, nil
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, errors.New("empty date")
	}
	t, err := time.Parse(layout, text)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", text)
	}
	return t, nil
}
