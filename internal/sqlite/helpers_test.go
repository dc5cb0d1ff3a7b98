package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/almanac/pkg/lunar"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// attachMemory returns an attached in-memory backend, detached on cleanup.
func attachMemory(t *testing.T, parseDeclTypes bool) *Backend {
	t.Helper()
	b := NewBackend(WithTypeMap(LunarTypeMap()))
	require.NoError(t, b.Attach(types.Config{
		Backend:        types.BackendSQLite,
		DataDir:        types.MemoryDataDir,
		ParseDeclTypes: parseDeclTypes,
	}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func mustDate(t *testing.T, year, month, day int, leap bool) lunar.Date {
	t.Helper()
	d, err := lunar.New(year, month, day, leap)
	require.NoError(t, err)
	return d
}
