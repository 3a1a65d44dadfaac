package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables consulted by GetDefaults.
const (
	EnvConfigPath = "CAMORG_CONFIG_PATH"
	EnvHome       = "CAMORG_HOME"
)

// Defaults holds the locations camorg uses when the config does not say
// otherwise.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment
// variables first:
//   - CAMORG_CONFIG_PATH: config file location (default: ~/.config/camorg.toml)
//   - CAMORG_HOME: base directory for camorg data (default: ~/.local/share/camorg)
func GetDefaults() (*Defaults, error) {
	configPath := os.Getenv(EnvConfigPath)
	baseDir := os.Getenv(EnvHome)

	if configPath == "" || baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(homeDir, ".config", "camorg.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(homeDir, ".local", "share", "camorg")
		}
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}
