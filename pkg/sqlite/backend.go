// Package sqlite provides the public API for the SQLite almanac backend.
// It exposes the backend factory and the type map used to inject adapters
// and converters, while keeping implementation details internal.
package sqlite

import (
	"database/sql/driver"
	"log/slog"

	"github.com/mesh-intelligence/almanac/internal/sqlite"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// Backend is the SQLite implementation of types.Store.
type Backend = sqlite.Backend

// Option configures a Backend.
type Option = sqlite.Option

// TypeMap holds the adapters and converters one backend applies.
type TypeMap = sqlite.TypeMap

// AdapterFunc turns an application value into a value the driver stores.
type AdapterFunc = sqlite.AdapterFunc

// ConverterFunc rebuilds an application value from a stored column value.
type ConverterFunc = sqlite.ConverterFunc

// DeclTypeLunarDate is the declared column type of stored lunar dates.
const DeclTypeLunarDate = sqlite.DeclTypeLunarDate

// NewTypeMap returns an empty TypeMap.
func NewTypeMap() *TypeMap { return sqlite.NewTypeMap() }

// Adapt registers fn as the adapter for query arguments of type T.
func Adapt[T any](tm *TypeMap, fn func(T) (driver.Value, error)) {
	sqlite.Adapt(tm, fn)
}

// LunarTypeMap returns a TypeMap with the default lunar.Date adapter and
// LUNARDATE converter.
func LunarTypeMap() *TypeMap { return sqlite.LunarTypeMap() }

// WithTypeMap sets the adapters and converters the backend applies.
func WithTypeMap(tm *TypeMap) Option { return sqlite.WithTypeMap(tm) }

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option { return sqlite.WithLogger(l) }

// LunarDateBackend creates a SQLite backend that stores lunar.Date values
// in LUNARDATE columns and, when the Config enables ParseDeclTypes,
// returns them from queries as lunar.Date. Options are applied after the
// default type map, so WithTypeMap replaces it.
//
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.LunarDateBackend()
//	err := backend.Attach(types.Config{
//	    Backend:        types.BackendSQLite,
//	    DataDir:        ".almanac-db",
//	    ParseDeclTypes: true,
//	})
//	defer backend.Detach()
func LunarDateBackend(opts ...Option) *Backend {
	return sqlite.NewBackend(append([]Option{WithTypeMap(LunarTypeMap())}, opts...)...)
}

// NewBackend creates a SQLite backend with the lunar date type map.
func NewBackend() types.Store {
	return LunarDateBackend()
}
