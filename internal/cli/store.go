package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloudeng.io/logging/ctxlog"

	"github.com/mesh-intelligence/almanac/internal/paths"
	"github.com/mesh-intelligence/almanac/internal/sqlite"
	almanacdb "github.com/mesh-intelligence/almanac/pkg/sqlite"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// storeConfig builds the backend configuration from flags and config.yaml.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	// The members table reads birthdays through the lunardate converter.
	return types.Config{
		Backend:        a.cfg.GetString(cfgKeyBackend),
		DataDir:        dataDir,
		ParseDeclTypes: true,
	}, nil
}

// openStore attaches a lunar date backend. The caller must Detach it.
func (a *app) openStore(ctx context.Context) (*sqlite.Backend, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, sysError("%w", err)
	}
	b := almanacdb.LunarDateBackend(sqlite.WithLogger(ctxlog.Logger(ctx)))
	if err := b.Attach(cfg); err != nil {
		if errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrBackendUnknown) {
			return nil, userError("config: %w", err)
		}
		return nil, sysError("attach backend: %w", err)
	}
	return b, nil
}

// withMembers runs fn against the members table of a freshly attached store.
func (a *app) withMembers(ctx context.Context, fn func(types.Table) error) (err error) {
	b, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if derr := b.Detach(); derr != nil && err == nil {
			err = sysError("detach backend: %w", derr)
		}
	}()
	tbl, err := b.GetTable(types.MembersTable)
	if err != nil {
		return sysError("get members table: %w", err)
	}
	return fn(tbl)
}

// tableError maps table errors to exit codes.
func tableError(op string, err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidName),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidFilter):
		return userError("%s: %w", op, err)
	default:
		return sysError("%s: %w", op, err)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
