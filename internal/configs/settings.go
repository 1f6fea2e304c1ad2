package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"
)

const (
	// StoreDirEnvVar overrides the store root directory.
	StoreDirEnvVar = "KEYAGE_STORE"

	// DefaultStoreDirName is the store directory created under the local data dir.
	DefaultStoreDirName = "keyage-store"

	// IdentityFileName is the name of an identity generated by `keyage init`.
	IdentityFileName = "identity.txt"
)

type UserSettings struct {
	UserKeysPath string
}

// ResolveStoreRoot returns the store root from KEYAGE_STORE or the platform
// local data directory. The result is absolute but need not exist yet.
func ResolveStoreRoot() (string, error) {
	if dir := os.Getenv(StoreDirEnvVar); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("%w: %v", kerrors.ErrStoreNotFound, err)
		}
		return abs, nil
	}

	dataDir, err := LocalDataDir()
	if err != nil {
		return "", fmt.Errorf("%w: the path to the local data dir could not be found: %v", kerrors.ErrStoreNotFound, err)
	}

	return filepath.Join(dataDir, DefaultStoreDirName), nil
}

// LocalDataDir returns the per-user local data directory:
// $XDG_DATA_HOME or ~/.local/share on Unix, ~/Library/Application Support
// on macOS and %LOCALAPPDATA% on Windows.
func LocalDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("%%LOCALAPPDATA%% is not defined")
	case "darwin", "ios":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, "Library", "Application Support"), nil
	}

	if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share"), nil
}

// LoadUserSettings computes the per-user paths.
func LoadUserSettings() (*UserSettings, error) {
	dataDir, err := LocalDataDir()
	if err != nil {
		return nil, fmt.Errorf("error getting local data directory: %w", err)
	}

	return &UserSettings{
		UserKeysPath: filepath.Join(dataDir, "keyage", "keys"),
	}, nil
}

// DefaultIdentityPath is where `keyage init` writes a generated identity.
func (s *UserSettings) DefaultIdentityPath() string {
	return filepath.Join(s.UserKeysPath, IdentityFileName)
}
