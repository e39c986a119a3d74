package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind classifies a mapping failure.
type Kind int

const (
	KindMissingKey Kind = iota + 1
	KindDuplicateRow
	KindBadDate
	KindBadNumber
	KindBadValue
	KindUnknownTeam
	KindMissingTable
)

func (k Kind) String() string {
	switch k {
	case KindMissingKey:
		return "missing key"
	case KindDuplicateRow:
		return "duplicate row"
	case KindBadDate:
		return "bad date"
	case KindBadNumber:
		return "bad number"
	case KindBadValue:
		return "bad value"
	case KindUnknownTeam:
		return "unknown team"
	case KindMissingTable:
		return "missing table"
	default:
		return "unknown"
	}
}

// Error reports a row or page that does not fit the expected schema. It
// signals a malformed page or a layout change on the site and is never
// retried.
type Error struct {
	Kind     Kind
	Document string // roster, schedule, boxscore, ...
	Row      int    // -1 when the failure is not tied to a row
	Key      string
	Value    string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Document, e.Kind)
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Row >= 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a mapping error of kind k.
func IsKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}

func rowError(kind Kind, doc string, row int, key, value string, cause error) *Error {
	return &Error{Kind: kind, Document: doc, Row: row, Key: key, Value: value, Err: cause}
}
