// Package activate turns an aiida environment description into an ordered
// set of environment changes, and undoes them again.
package activate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/chrisjsewell/activate-aiida/internal/utils"
)

// DefaultConfigFile is used when no path is given and
// ACTIVATE_AIIDA_CONFIG_FILE is unset
const DefaultConfigFile = "aiida.yaml"

// ConfigFileEnv names the variable holding a default config path
const ConfigFileEnv = "ACTIVATE_AIIDA_CONFIG_FILE"

// ResolveConfigPath picks the config path from an argument, the
// environment or the default
func ResolveConfigPath(arg string, env Environ) string {
	if arg != "" {
		return arg
	}
	if p, ok := env[ConfigFileEnv]; ok && p != "" {
		return p
	}
	return DefaultConfigFile
}

// LoadConfig reads and decodes an activation config
func LoadConfig(path string) (*models.EnvConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, path, fmt.Errorf("read config: %w", err))
	}

	var cfg models.EnvConfig
	if err := utils.DecodeStrict(data, &cfg); err != nil {
		// An empty file activates nothing but bookkeeping
		if !errors.Is(err, utils.ErrEmptyDocument) {
			return nil, models.NewError(models.ErrConfigParse, path, err)
		}
	}

	cfg.Path = abs
	cfg.Dir = filepath.Dir(abs)
	return &cfg, nil
}
