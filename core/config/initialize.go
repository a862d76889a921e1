package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir, creating the
// directory if needed. An existing config.yaml is left alone.
func Initialize(configFs afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	logger.Printf("Initializing configuration in %q\n", dir)
	if err := configFs.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(configFs, configPath)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("- %s already exists, skipping\n", ConfigurationName)
	default:
		logger.Printf("- Writing %s\n", ConfigurationName)
		if err := afero.WriteFile(configFs, configPath, defaultConfigData, os.FileMode(0644)); err != nil {
			return nil, err
		}
	}

	return Load(configFs, dir)
}
