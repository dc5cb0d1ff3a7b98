package sqlite

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/almanac/pkg/lunar"
)

const createMemberTable = `CREATE TABLE member (pid INTEGER PRIMARY KEY AUTOINCREMENT, birthday lunardate);`

func TestLunarDateColumnRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := attachMemory(t, true)

	_, err := b.Exec(ctx, createMemberTable)
	require.NoError(t, err)

	ld := mustDate(t, 2018, 5, 3, false)
	_, err = b.Exec(ctx, "INSERT INTO member(birthday) VALUES (?)", ld)
	require.NoError(t, err)

	rows, err := b.Query(ctx, "SELECT pid, birthday FROM member;")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	birthday, ok := rows[0][1].(lunar.Date)
	require.True(t, ok, "birthday scanned as %T", rows[0][1])
	assert.Equal(t, 2018, birthday.Year())
	assert.Equal(t, 5, birthday.Month())
	assert.Equal(t, 3, birthday.Day())
	assert.False(t, birthday.Leap())
	assert.Equal(t, ld, birthday)
}

func TestLunarDateColumnLeapMonth(t *testing.T) {
	ctx := context.Background()
	b := attachMemory(t, true)

	_, err := b.Exec(ctx, createMemberTable)
	require.NoError(t, err)

	want := []lunar.Date{
		mustDate(t, 2020, 4, 29, true),
		mustDate(t, 2017, 6, 30, true),
		mustDate(t, 1900, 1, 1, false),
	}
	for _, d := range want {
		_, err := b.Exec(ctx, "INSERT INTO member(birthday) VALUES (?)", d)
		require.NoError(t, err)
	}

	rows, err := b.Query(ctx, "SELECT birthday FROM member ORDER BY pid")
	require.NoError(t, err)
	require.Len(t, rows, len(want))
	for i, d := range want {
		assert.Equal(t, d, rows[i][0])
	}
}

func TestLunarDateColumnWithoutDeclTypes(t *testing.T) {
	ctx := context.Background()
	b := attachMemory(t, false)

	_, err := b.Exec(ctx, createMemberTable)
	require.NoError(t, err)
	_, err = b.Exec(ctx, "INSERT INTO member(birthday) VALUES (?)", mustDate(t, 2018, 5, 3, false))
	require.NoError(t, err)

	rows, err := b.Query(ctx, "SELECT birthday FROM member")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// LUNARDATE has numeric affinity; the raw primitive is the encoded digits.
	assert.Equal(t, int64(201805030), rows[0][0])
}

func TestLunarDateColumnNull(t *testing.T) {
	ctx := context.Background()
	b := attachMemory(t, true)

	_, err := b.Exec(ctx, createMemberTable)
	require.NoError(t, err)
	_, err = b.Exec(ctx, "INSERT INTO member(birthday) VALUES (NULL)")
	require.NoError(t, err)

	rows, err := b.Query(ctx, "SELECT birthday FROM member")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0][0])
}

func TestLunarDateColumnMalformed(t *testing.T) {
	ctx := context.Background()
	b := attachMemory(t, true)

	_, err := b.Exec(ctx, createMemberTable)
	require.NoError(t, err)
	_, err = b.Exec(ctx, "INSERT INTO member(birthday) VALUES (?)", "garbage")
	require.NoError(t, err)

	_, err = b.Query(ctx, "SELECT pid, birthday FROM member")
	assert.ErrorIs(t, err, lunar.ErrDecode)
}

func TestAdapterError(t *testing.T) {
	ctx := context.Background()
	b := attachMemory(t, true)

	_, err := b.Exec(ctx, createMemberTable)
	require.NoError(t, err)

	_, err = b.Exec(ctx, "INSERT INTO member(birthday) VALUES (?)", lunar.Date{})
	assert.ErrorIs(t, err, lunar.ErrInvalidDate)
}

type celsius float64

func TestTypeMapBind(t *testing.T) {
	errFreezing := errors.New("below freezing")
	tm := NewTypeMap()
	Adapt(tm, func(c celsius) (driver.Value, error) {
		if c < 0 {
			return nil, errFreezing
		}
		return int64(c * 10), nil
	})

	got, err := tm.bind([]any{"x", celsius(21.5), nil, 7})
	require.NoError(t, err)
	assert.Equal(t, []any{"x", int64(215), nil, 7}, got)

	_, err = tm.bind([]any{celsius(-1)})
	assert.ErrorIs(t, err, errFreezing)

	var nilMap *TypeMap
	args := []any{celsius(1)}
	got, err = nilMap.bind(args)
	require.NoError(t, err)
	assert.Equal(t, args, got)
}

func TestTypeMapConverterLookup(t *testing.T) {
	tm := NewTypeMap()
	tm.Convert(" LunarDate ", lunar.Converter)

	for _, name := range []string{"lunardate", "LUNARDATE", "LunarDate"} {
		_, ok := tm.converter(name)
		assert.True(t, ok, name)
	}
	_, ok := tm.converter("TEXT")
	assert.False(t, ok)
	_, ok = tm.converter("")
	assert.False(t, ok)
}
