package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/datanorth/gestiondrive/internal/paths"
	"github.com/datanorth/gestiondrive/internal/sqlite"
	"github.com/datanorth/gestiondrive/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize drive storage",
		Long:  "Create configuration and data directories, then initialize the storage backend.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("resolve config directory: %s", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("create config directory: %s", err))
	}

	cfg, err := loadConfig()
	if err != nil {
		return exitError(cmd, exitUserError, fmt.Sprintf("load config: %s", err))
	}

	// Write config.yaml if missing; an existing file is left untouched.
	configPath := filepath.Join(configDir, "config.yaml")
	if err := writeConfigIfMissing(configPath, cfg); err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("write config: %s", err))
	}

	// Initialize the data directory and schema via Attach then Detach.
	drive := sqlite.NewBackend()
	drive.SetLogger(newLogger())
	if err := drive.Attach(cfg); err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("initialize storage: %s", err))
	}
	if err := drive.Detach(); err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("finalize storage: %s", err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Drive initialized successfully")
	return nil
}

// writeConfigIfMissing creates config.yaml with the effective values if the
// file does not exist. Idempotent.
func writeConfigIfMissing(path string, cfg types.Config) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
