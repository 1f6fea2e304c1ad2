package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"
)

// ConfigFileName is the name of the configuration file at the store root.
const ConfigFileName = "config.toml"

// Configuration is the content of <store>/config.toml.
type Configuration struct {
	Identifier string `toml:"identifier"`
	Recipient  string `toml:"recipient"`
}

// ConfigPath returns the path of the configuration file for a store root.
func ConfigPath(rootPath string) string {
	return filepath.Join(rootPath, ConfigFileName)
}

// LoadConfiguration loads and validates the configuration of the store at rootPath.
// Every failure wraps ErrConfigLoad.
func LoadConfiguration(rootPath string) (*Configuration, error) {
	configPath := ConfigPath(rootPath)

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no configuration found at %s", kerrors.ErrConfigLoad, configPath)
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrConfigLoad, err)
	}

	config := &Configuration{}
	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrConfigLoad, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfiguration writes the configuration of the store at rootPath.
func SaveConfiguration(rootPath string, config *Configuration) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if err := SaveTOML(ConfigPath(rootPath), config); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	return nil
}

// Validate checks that both fields are present.
func (c *Configuration) Validate() error {
	if strings.TrimSpace(c.Recipient) == "" {
		return fmt.Errorf("%w: invalid recipient field", kerrors.ErrConfigLoad)
	}
	if strings.TrimSpace(c.Identifier) == "" {
		return fmt.Errorf("%w: invalid identity field", kerrors.ErrConfigLoad)
	}
	return nil
}

// IdentityPath returns Identifier with a leading "~/" expanded to the home
// directory.
func (c *Configuration) IdentityPath() (string, error) {
	path := strings.TrimSpace(c.Identifier)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: cannot expand %s: %v", kerrors.ErrConfigLoad, path, err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
