package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/block-manager/internal/constants"
)

// XDGConfig handles XDG Base Directory Specification compliant paths
type XDGConfig struct {
	BaseDir string
	DataDir string
}

// NewXDGConfig creates a new XDG path resolver
func NewXDGConfig() *XDGConfig {
	return &XDGConfig{
		BaseDir: filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), constants.BinaryName),
		DataDir: filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), constants.BinaryName),
	}
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home directory cannot be determined
		return fallback
	}
	return filepath.Join(homeDir, fallback)
}

// GetConfigDir returns the XDG configuration directory for block-manager
func (x *XDGConfig) GetConfigDir() string {
	return x.BaseDir
}

// GetConfigPath returns the path to the configuration file
func (x *XDGConfig) GetConfigPath() string {
	return filepath.Join(x.BaseDir, constants.ConfigFileName)
}

// GetCatalogPath returns the default location of a block catalog file
func (x *XDGConfig) GetCatalogPath() string {
	return filepath.Join(x.BaseDir, constants.CatalogFileName)
}

// GetDataDir returns the directory holding option databases and logs
func (x *XDGConfig) GetDataDir() string {
	return x.DataDir
}

// GetLogPath returns the default log file path
func (x *XDGConfig) GetLogPath() string {
	return filepath.Join(x.DataDir, "logs", constants.DefaultLogFile)
}

// DefaultStoreDSN returns the SQLite options database under the data directory
func (x *XDGConfig) DefaultStoreDSN() string {
	return "sqlite://" + filepath.Join(x.DataDir, "options.db")
}

// EnsureDirectories creates the necessary XDG directories
func (x *XDGConfig) EnsureDirectories() error {
	for _, dir := range []string{x.BaseDir, x.DataDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil { // #nosec G301 - XDG directories should be user-only accessible
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
