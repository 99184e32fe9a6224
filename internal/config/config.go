// Package config resolves defaults for the command-line flags from a config
// file and FLASKGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jakoblorz/flaskgen/internal/models"
	"github.com/jakoblorz/flaskgen/internal/venv"
	"github.com/spf13/viper"
)

const (
	envPrefix = "FLASKGEN"
	fileName  = ".flaskgen"
	fileType  = "yaml"
)

// Keys understood in the config file and environment.
const (
	KeyHost   = "host"
	KeyPort   = "port"
	KeyMode   = "mode"
	KeyPython = "python"
)

// Defaults applied when neither file nor environment set a key.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 5000
)

// Config holds resolved settings.
type Config struct {
	Host   string
	Port   int
	Mode   models.EnvironmentMode
	Python string

	// File is the config file that was read, if any
	File string
}

// Load reads configuration. When file is empty, ~/.flaskgen.yaml and
// ./.flaskgen.yaml are searched; a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	return load(v, file)
}

func load(v *viper.Viper, file string) (*Config, error) {
	v.SetDefault(KeyHost, DefaultHost)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyMode, string(models.ModeDevelopment))
	v.SetDefault(KeyPython, venv.DefaultPython)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	mode, err := models.ParseEnvironmentMode(v.GetString(KeyMode))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyMode, err)
	}

	cfg := &Config{
		Host:   v.GetString(KeyHost),
		Port:   v.GetInt(KeyPort),
		Mode:   mode,
		Python: v.GetString(KeyPython),
	}
	if used := v.ConfigFileUsed(); used != "" {
		if abs, err := filepath.Abs(used); err == nil {
			cfg.File = abs
		} else {
			cfg.File = used
		}
	}

	return cfg, nil
}
