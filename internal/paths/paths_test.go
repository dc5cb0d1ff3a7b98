package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// stubPlatform points the platform lookups at fixed directories for the
// duration of the test.
func stubPlatform(t *testing.T, home, userConfig string, err error) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.homeDir = func() (string, error) { return home, err }
	platformDir.userConfigDir = func() (string, error) { return userConfig, err }
}

// onPlatform returns linux on Linux and other elsewhere.
func onPlatform(linux, other string) string {
	if runtime.GOOS == "linux" {
		return linux
	}
	return other
}

func TestXDGDir(t *testing.T) {
	stubPlatform(t, "/home/li", "/Users/li/Library/Application Support", nil)

	tests := []struct {
		name     string
		env      string
		envVal   string
		fallback []string
		want     string
	}{
		{
			name:     "env set",
			env:      "XDG_CONFIG_HOME",
			envVal:   "/xdg/config",
			fallback: []string{".config"},
			want:     onPlatform("/xdg/config/almanac", "/Users/li/Library/Application Support/almanac"),
		},
		{
			name:     "env empty uses home fallback",
			env:      "XDG_CONFIG_HOME",
			fallback: []string{".config"},
			want:     onPlatform("/home/li/.config/almanac", "/Users/li/Library/Application Support/almanac"),
		},
		{
			name:     "nested fallback",
			env:      "XDG_DATA_HOME",
			fallback: []string{".local", "share"},
			want:     onPlatform("/home/li/.local/share/almanac", "/Users/li/Library/Application Support/almanac"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.envVal)
			got, err := xdgDir(tt.env, tt.fallback...)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestXDGDir_PlatformError(t *testing.T) {
	boom := errors.New("no home")
	stubPlatform(t, "", "", boom)
	t.Setenv("XDG_DATA_HOME", "")

	_, err := DefaultDataDir()
	assert.ErrorIs(t, err, boom)
}

func TestDefaultDirs(t *testing.T) {
	stubPlatform(t, "/home/li", "/cfg", nil)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	cfg, err := DefaultConfigDir()
	require.NoError(t, err)
	data, err := DefaultDataDir()
	require.NoError(t, err)

	if runtime.GOOS == "linux" {
		assert.Equal(t, "/home/li/.config/almanac", cfg)
		assert.Equal(t, "/home/li/.local/share/almanac", data)
	} else {
		// Config and data share one directory off Linux.
		assert.Equal(t, cfg, data)
	}
}

func TestResolveConfigDir(t *testing.T) {
	stubPlatform(t, "/home/li", "/cfg", nil)
	t.Setenv("XDG_CONFIG_HOME", "")
	def, err := DefaultConfigDir()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{name: "flag", flag: "/flag/cfg", envVal: "/env/cfg", want: "/flag/cfg"},
		{name: "env", envVal: "/env/cfg", want: "/env/cfg"},
		{name: "default", want: def},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	stubPlatform(t, "/home/li", "/cfg", nil)
	t.Setenv("XDG_DATA_HOME", "")
	def, err := DefaultDataDir()
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		config string
		envVal string
		want   string
	}{
		{name: "flag over config and env", flag: "/flag", config: "/config", envVal: "/env", want: "/flag"},
		{name: "config over env", config: "/config", envVal: "/env", want: "/config"},
		{name: "env", envVal: "/env", want: "/env"},
		{name: "default", want: def},
		{name: "relative config is made absolute", config: "db", want: filepath.Join(cwd, "db")},
		{name: "memory flag", flag: types.MemoryDataDir, config: "/config", want: types.MemoryDataDir},
		{name: "memory in config", config: types.MemoryDataDir, envVal: "/env", want: types.MemoryDataDir},
		{name: "memory in env", envVal: types.MemoryDataDir, want: types.MemoryDataDir},
		{name: "flag outranks memory config", flag: "/flag", config: types.MemoryDataDir, want: "/flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
