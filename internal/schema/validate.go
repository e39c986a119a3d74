package schema

import (
	"database/sql"
	"database/sql/driver"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Null columns validate as their underlying value, or are skipped by
	// omitempty when not valid.
	v.RegisterCustomTypeFunc(nullValue, sql.NullInt32{}, sql.NullFloat64{}, sql.NullTime{})
	return v
}

func nullValue(field reflect.Value) any {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		val, err := valuer.Value()
		if err == nil {
			return val
		}
	}
	return nil
}

func check(doc string, row int, record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	key := ""
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		key = verrs[0].Namespace()
	}
	return rowError(KindBadValue, doc, row, key, "", err)
}
