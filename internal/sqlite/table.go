package sqlite

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/almanac/pkg/lunar"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// table implements types.Table for a single entity type.
type table struct {
	name    string   // Table name (e.g. "members").
	backend *Backend // Parent backend for DB access.
}

func newTable(b *Backend, name string) *table {
	return &table{name: name, backend: b}
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// Get retrieves an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *table) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrDetached
	}

	switch t.name {
	case types.MembersTable:
		return t.getMember(id)
	default:
		return nil, types.ErrTableNotFound
	}
}

// Set creates or updates an entity. If id is empty, generates a UUID v7.
// Returns the entity ID and any error.
func (t *table) Set(id string, data any) (string, error) {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrDetached
	}

	switch t.name {
	case types.MembersTable:
		return t.setMember(id, data)
	default:
		return "", types.ErrTableNotFound
	}
}

// Delete removes an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *table) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrDetached
	}

	switch t.name {
	case types.MembersTable:
		return t.deleteMember(id)
	default:
		return types.ErrTableNotFound
	}
}

// Fetch returns entities matching the filter. Empty filter matches all.
func (t *table) Fetch(filter map[string]any) ([]any, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrDetached
	}

	switch t.name {
	case types.MembersTable:
		return t.fetchMembers(filter)
	default:
		return nil, types.ErrTableNotFound
	}
}

// Member CRUD operations.

const selectMember = "SELECT member_id, name, birthday, created_at FROM members"

// queryMembers runs a members query and decodes the rows. Column values
// pass through the backend's TypeMap, so the birthday is rebuilt by the
// same converter pair that adapted it on the way in.
func (t *table) queryMembers(query string, args ...any) ([]*types.Member, error) {
	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vals, err := t.backend.typeMap.scanRows(rows, t.backend.config.ParseDeclTypes)
	if err != nil {
		return nil, err
	}
	members := make([]*types.Member, 0, len(vals))
	for _, row := range vals {
		m, err := memberFromRow(row)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// memberFromRow builds a Member from the columns of selectMember.
func memberFromRow(row []any) (*types.Member, error) {
	id, ok1 := textValue(row[0])
	name, ok2 := textValue(row[1])
	createdAt, ok3 := textValue(row[3])
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%w: unexpected member column types %T, %T, %T", types.ErrInvalidData, row[0], row[1], row[3])
	}
	birthday, ok := row[2].(lunar.Date)
	if !ok {
		return nil, fmt.Errorf("%w: birthday read as %T", types.ErrUnconverted, row[2])
	}
	m := &types.Member{MemberID: id, Name: name, Birthday: birthday}
	var err error
	m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing member created_at: %w", err)
	}
	return m, nil
}

func textValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

func (t *table) getMember(id string) (any, error) {
	members, err := t.queryMembers(selectMember+" WHERE member_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("reading member: %w", err)
	}
	if len(members) == 0 {
		return nil, types.ErrNotFound
	}
	return members[0], nil
}

func (t *table) setMember(id string, data any) (string, error) {
	m, ok := data.(*types.Member)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := m.Validate(); err != nil {
		return "", err
	}

	if id != "" {
		m.MemberID = id
	}
	if m.MemberID == "" {
		m.MemberID = newUUID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	args, err := t.backend.typeMap.bind([]any{
		m.MemberID, m.Name, m.Birthday, m.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", err
	}
	_, err = t.backend.db.Exec(`
		INSERT INTO members (member_id, name, birthday, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(member_id) DO UPDATE SET
			name = excluded.name,
			birthday = excluded.birthday`,
		args...)
	if err != nil {
		return "", fmt.Errorf("upserting member: %w", err)
	}
	return m.MemberID, nil
}

func (t *table) deleteMember(id string) error {
	res, err := t.backend.db.Exec("DELETE FROM members WHERE member_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// fetchMembers filters by name in SQL and by birthday fields in Go, since
// the stored birthday form belongs to whichever adapter the TypeMap holds.
func (t *table) fetchMembers(filter map[string]any) ([]any, error) {
	query := selectMember
	var args []any
	var keep []func(lunar.Date) bool

	if v, ok := filter[types.FilterName]; ok {
		name, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE name = ?"
		args = append(args, name)
	}
	if v, ok := filter[types.FilterYear]; ok {
		year, ok := toInt(v)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		keep = append(keep, func(d lunar.Date) bool { return d.Year() == year })
	}
	if v, ok := filter[types.FilterMonth]; ok {
		month, ok := toInt(v)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		keep = append(keep, func(d lunar.Date) bool { return d.Month() == month })
	}
	if v, ok := filter[types.FilterLeap]; ok {
		leap, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		keep = append(keep, func(d lunar.Date) bool { return d.Leap() == leap })
	}
	query += " ORDER BY pid"

	members, err := t.queryMembers(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching members: %w", err)
	}
	members = slices.DeleteFunc(members, func(m *types.Member) bool {
		for _, fn := range keep {
			if !fn(m.Birthday) {
				return true
			}
		}
		return false
	})

	// Calendar order; a leap month follows its regular month.
	slices.SortStableFunc(members, func(a, b *types.Member) int {
		return a.Birthday.Compare(b.Birthday)
	})
	results := make([]any, len(members))
	for i, m := range members {
		results[i] = m
	}
	return results, nil
}

// toInt converts various numeric types to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
