// Config loading and backend session helpers shared by all subcommands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/datanorth/gestiondrive/internal/paths"
	"github.com/datanorth/gestiondrive/internal/sqlite"
	"github.com/datanorth/gestiondrive/pkg/types"
)

// loadConfig resolves the config directory, reads config.yaml if present,
// applies DRIVE_* environment overrides, and returns the effective Config.
// A missing config file is not an error; defaults apply.
func loadConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolving config directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("DRIVE")
	v.AutomaticEnv()
	v.SetDefault("backend", types.BackendSQLite)
	v.SetDefault("blob_kind", types.BlobFilesystem)

	// A missing config.yaml means defaults; a malformed one is an error.
	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString("data_dir"))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolving data directory: %w", err)
	}

	cfg := types.Config{
		Backend:  v.GetString("backend"),
		DataDir:  dataDir,
		BlobKind: v.GetString("blob_kind"),
		BlobDir:  v.GetString("blob_dir"),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// openDrive attaches a backend using the effective config. The caller must
// Detach when done.
func openDrive() (*sqlite.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	b := sqlite.NewBackend()
	b.SetLogger(newLogger())
	if err := b.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attaching drive: %w", err)
	}
	return b, nil
}

// currentPrincipal resolves the acting principal: --as flag, then the
// DRIVE_USER environment variable, then anonymous.
func currentPrincipal() types.Principal {
	if flags.principal != "" {
		return types.Principal{ID: flags.principal, Authenticated: true}
	}
	if user := os.Getenv("DRIVE_USER"); user != "" {
		return types.Principal{ID: user, Authenticated: true}
	}
	return types.Anonymous
}
