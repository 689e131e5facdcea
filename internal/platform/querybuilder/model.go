package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// ModelColumns returns the db-tagged columns of a struct value in field order.
func ModelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}

// InsertModels builds a multi-row insert from structs sharing one type.
func InsertModels[T any](table string, models []T) (*InsertBuilder, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("insert models are required")
	}

	builder := InsertInto(table)
	for idx, model := range models {
		cols, vals, err := ModelColumns(model)
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", idx, err)
		}
		if idx == 0 {
			builder.Columns(cols...)
		}
		builder.Values(vals...)
	}
	return builder, nil
}
