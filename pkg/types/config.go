package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ParseDeclTypes enables conversion of result columns by their declared
	// type name using the converters registered with the backend.
	ParseDeclTypes bool `json:"parse_decl_types" yaml:"parse_decl_types"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// MemoryDataDir as DataDir selects a private in-memory database.
const MemoryDataDir = ":memory:"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// InMemory reports whether c selects an in-memory database.
func (c Config) InMemory() bool {
	return c.DataDir == MemoryDataDir
}
