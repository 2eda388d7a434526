package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the paths used when no config says otherwise.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths. Lookup order:
//   - config file: SBS_CONFIG_PATH, $XDG_CONFIG_HOME/sbs.toml, ~/.config/sbs.toml
//   - data: SBS_HOME, $XDG_DATA_HOME/sbs, ~/.local/share/sbs
func GetDefaults() (Defaults, error) {
	configPath, err := lookupPath("SBS_CONFIG_PATH", "XDG_CONFIG_HOME", "sbs.toml", ".config")
	if err != nil {
		return Defaults{}, err
	}
	baseDir, err := lookupPath("SBS_HOME", "XDG_DATA_HOME", "sbs", ".local", "share")
	if err != nil {
		return Defaults{}, err
	}
	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// lookupPath returns the value of envVar, else name under the xdgVar
// directory, else name under the home subdirectory homeRel.
func lookupPath(envVar, xdgVar, name string, homeRel ...string) (string, error) {
	if p := os.Getenv(envVar); p != "" {
		return p, nil
	}
	if dir := os.Getenv(xdgVar); dir != "" {
		return filepath.Join(dir, name), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append(append([]string{homeDir}, homeRel...), name)...), nil
}
