package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"github.com/mesh-intelligence/almanac/pkg/lunar"
)

// AdapterFunc turns an application value into a value the driver stores.
type AdapterFunc func(v any) (driver.Value, error)

// ConverterFunc rebuilds an application value from a stored column value.
type ConverterFunc func(src any) (any, error)

// TypeMap holds the outbound adapters and inbound converters one backend
// applies. It is built by the caller and handed to NewBackend; there is no
// process-wide registry. A TypeMap must not be modified once the backend
// using it is attached.
type TypeMap struct {
	adapters   map[reflect.Type]AdapterFunc
	converters map[string]ConverterFunc
}

// NewTypeMap returns an empty TypeMap.
func NewTypeMap() *TypeMap {
	return &TypeMap{
		adapters:   make(map[reflect.Type]AdapterFunc),
		converters: make(map[string]ConverterFunc),
	}
}

// Adapt registers fn as the adapter for query arguments of type T.
func Adapt[T any](tm *TypeMap, fn func(T) (driver.Value, error)) {
	tm.adapters[reflect.TypeFor[T]()] = func(v any) (driver.Value, error) {
		return fn(v.(T))
	}
}

// Convert registers fn as the converter for result columns whose declared
// type is declType. Names are matched case-insensitively.
func (tm *TypeMap) Convert(declType string, fn ConverterFunc) {
	tm.converters[strings.ToLower(strings.TrimSpace(declType))] = fn
}

// converter returns the converter registered for declType, if any.
func (tm *TypeMap) converter(declType string) (ConverterFunc, bool) {
	if tm == nil || declType == "" {
		return nil, false
	}
	fn, ok := tm.converters[strings.ToLower(declType)]
	return fn, ok
}

// bind applies the registered adapters to args. Arguments without an
// adapter are passed through for the driver to handle.
func (tm *TypeMap) bind(args []any) ([]any, error) {
	if tm == nil || len(tm.adapters) == 0 {
		return args, nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = arg
		if arg == nil {
			continue
		}
		fn, ok := tm.adapters[reflect.TypeOf(arg)]
		if !ok {
			continue
		}
		v, err := fn(arg)
		if err != nil {
			return nil, fmt.Errorf("adapting argument %d (%T): %w", i+1, arg, err)
		}
		out[i] = v
	}
	return out, nil
}

// scanRows reads every row into a slice of column values. When parse is
// set, columns whose declared type has a converter are passed through it;
// a converter error fails the whole read.
func (tm *TypeMap) scanRows(rows *sql.Rows, parse bool) ([][]any, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column types: %w", err)
	}
	convs := make([]ConverterFunc, len(cols))
	if parse {
		for i, c := range cols {
			convs[i], _ = tm.converter(c.DatabaseTypeName())
		}
	}

	results := [][]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, fn := range convs {
			if fn == nil {
				continue
			}
			v, err := fn(vals[i])
			if err != nil {
				return nil, fmt.Errorf("converting column %q: %w", cols[i].Name(), err)
			}
			vals[i] = v
		}
		results = append(results, vals)
	}
	return results, rows.Err()
}

// LunarTypeMap returns a TypeMap that adapts lunar.Date arguments and
// converts LUNARDATE columns back to lunar.Date.
func LunarTypeMap() *TypeMap {
	tm := NewTypeMap()
	Adapt(tm, lunar.Adapter)
	tm.Convert(DeclTypeLunarDate, lunar.Converter)
	return tm
}
