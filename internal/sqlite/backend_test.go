// Tests for the SQLite backend lifecycle.
package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	// Verify database file created
	dbPath := filepath.Join(tmpDir, dbFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", dbFileName)
	}

	// Verify double attach fails
	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	b.Detach()
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")

	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	if _, err := os.Stat(filepath.Join(dataDir, dbFileName)); err != nil {
		t.Errorf("database not created in nested data dir: %v", err)
	}
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{}); err != types.ErrBackendEmpty {
		t.Errorf("expected ErrBackendEmpty, got %v", err)
	}
	if err := b.Attach(types.Config{Backend: "postgres"}); err != types.ErrBackendUnknown {
		t.Errorf("expected ErrBackendUnknown, got %v", err)
	}
}

func TestBackend_Detach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	b.Attach(config)

	err := b.Detach()
	if err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	// Verify idempotent
	err = b.Detach()
	if err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	// Verify operations fail after detach
	_, err = b.GetTable(types.MembersTable)
	if err != types.ErrDetached {
		t.Errorf("expected ErrDetached, got %v", err)
	}
	_, err = b.Query(context.Background(), "SELECT 1")
	if err != types.ErrDetached {
		t.Errorf("expected ErrDetached from Query, got %v", err)
	}
	_, err = b.Exec(context.Background(), "SELECT 1")
	if err != types.ErrDetached {
		t.Errorf("expected ErrDetached from Exec, got %v", err)
	}
}

func TestBackend_GetTable(t *testing.T) {
	b := attachMemory(t, true)

	for _, name := range types.StandardTableNames {
		tbl, err := b.GetTable(name)
		if err != nil {
			t.Errorf("GetTable(%q) failed: %v", name, err)
		}
		if tbl == nil {
			t.Errorf("GetTable(%q) returned nil", name)
		}
	}

	// Unknown table
	_, err := b.GetTable("unknown")
	if err != types.ErrTableNotFound {
		t.Errorf("expected ErrTableNotFound for unknown table, got %v", err)
	}
}

func TestBackend_ReattachKeepsData(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir, ParseDeclTypes: true}

	b := NewBackend(WithTypeMap(LunarTypeMap()))
	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	tbl, _ := b.GetTable(types.MembersTable)
	id, err := tbl.Set("", &types.Member{Name: "Li", Birthday: mustDate(t, 2018, 5, 3, false)})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	b2 := NewBackend(WithTypeMap(LunarTypeMap()))
	if err := b2.Attach(config); err != nil {
		t.Fatalf("second Attach failed: %v", err)
	}
	defer b2.Detach()

	tbl, _ = b2.GetTable(types.MembersTable)
	got, err := tbl.Get(id)
	if err != nil {
		t.Fatalf("Get after reattach failed: %v", err)
	}
	m := got.(*types.Member)
	if m.Birthday != mustDate(t, 2018, 5, 3, false) {
		t.Errorf("birthday not preserved across attach, got %s", m.Birthday)
	}
	if m.CreatedAt.IsZero() || m.CreatedAt.After(time.Now()) {
		t.Errorf("unexpected created_at %v", m.CreatedAt)
	}
}

func TestBackend_MemoryDatabasesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := attachMemory(t, true)
	b := attachMemory(t, true)

	if _, err := a.Exec(ctx, createMemberTable); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := b.Query(ctx, "SELECT * FROM member"); err == nil {
		t.Error("expected the second in-memory database not to see the first one's table")
	}
}
