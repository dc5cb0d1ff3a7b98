// Package paths resolves the configuration and data directories used by
// the almanac CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// appDir is the directory name created under each platform root.
const appDir = "almanac"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "ALMANAC_CONFIG_DIR"
	EnvDataDir   = "ALMANAC_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $env/almanac when env is set and otherwise
// ~/<fallback...>/almanac. Non-Linux platforms use os.UserConfigDir for
// both config and data.
func xdgDir(env string, fallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDir), nil
	}
	if v := os.Getenv(env); v != "" {
		return filepath.Join(v, appDir), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), appDir)...), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/almanac (fallback ~/.config/almanac)
// macOS:   ~/Library/Application Support/almanac
// Windows: %APPDATA%/almanac
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/almanac (fallback ~/.local/share/almanac)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > ALMANAC_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > ALMANAC_DATA_DIR env > DefaultDataDir().
// The in-memory marker types.MemoryDataDir is returned unchanged.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	for _, v := range []string{flag, configYAMLValue, os.Getenv(EnvDataDir)} {
		switch v {
		case "":
			continue
		case types.MemoryDataDir:
			return v, nil
		default:
			return filepath.Abs(v)
		}
	}
	return DefaultDataDir()
}
