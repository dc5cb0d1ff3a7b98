package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/almanac/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize almanac storage",
		Long: "Create the configuration and data directories and the members table.\n" +
			"A --data-dir given here is recorded in config.yaml.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	configPath := filepath.Join(a.configDir, configFileExt)
	if a.flags.dataDir != "" {
		dataDir, err := paths.ResolveDataDir(a.flags.dataDir, "")
		if err != nil {
			return sysError("resolve data dir: %w", err)
		}
		if err := recordDataDir(configPath, dataDir); err != nil {
			return sysError("write config: %w", err)
		}
	}

	b, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	if err := b.Detach(); err != nil {
		return sysError("finalize storage: %w", err)
	}

	cfg, err := a.storeConfig()
	if err != nil {
		return sysError("%w", err)
	}
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return writeJSON(out, map[string]string{"config": a.configDir, "data": cfg.DataDir})
	}
	fmt.Fprintln(out, "Almanac initialized successfully")
	fmt.Fprintln(out, "  config:", a.configDir)
	fmt.Fprintln(out, "  data:  ", cfg.DataDir)
	return nil
}

// recordDataDir stores dataDir in the config.yaml at path, keeping the
// other settings.
func recordDataDir(path, dataDir string) error {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.DataDir = dataDir
	data, err = yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
