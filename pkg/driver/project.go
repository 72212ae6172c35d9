package driver

import (
	"reflect"
	"strings"
)

// ScanStruct projects a Row into an arbitrary struct, matching exported
// fields to result columns by name. A field's column is its `ora` tag
// when present, otherwise the upper-cased field name, matching the case
// the engine reports for unquoted identifiers. Fields tagged `ora:"-"`
// and fields without a matching column are left untouched.
func ScanStruct(r *Row, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return newError(ErrKindDataTypeNotSupported,
			"scan destination must be a non-nil pointer to struct, got %T", dest)
	}
	sv := rv.Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.IsExported() {
			continue
		}
		column := field.Tag.Get("ora")
		if column == "-" {
			continue
		}
		if column == "" {
			column = strings.ToUpper(field.Name)
		}
		idx, err := r.columnIndex(column)
		if err != nil {
			if field.Tag.Get("ora") != "" {
				// An explicit tag that matches nothing is a caller bug.
				return err
			}
			continue
		}
		if err := r.values[idx].Scan(sv.Field(i).Addr().Interface()); err != nil {
			return withColumn(err, column)
		}
	}
	return nil
}
