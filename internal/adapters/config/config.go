package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "TABBRIDGE"
	configPathKey  = "config.path"
	configDirMode  = 0o700
	configFileMode = 0o600
)

// Settings is the parsed runtime configuration.
type Settings struct {
	Listen         string
	RequestTimeout time.Duration
	Model          string
	Peer           PeerSettings
}

type PeerSettings struct {
	PingInterval    time.Duration
	PongWait        time.Duration
	MaxMessageBytes int64
}

// DefaultPath returns the config file location used when nothing
// overrides it.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".config", "tabbridge", "config.toml"), nil
}

// Load resolves the config path through viper, decodes the TOML file and
// applies TABBRIDGE_* environment overrides. A missing file yields the
// defaults.
func Load(v *viper.Viper) (Settings, error) {
	if v == nil {
		v = viper.New()
	}

	defaultPath, err := DefaultPath()
	if err != nil {
		return Settings{}, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault(configPathKey, defaultPath)

	path := v.GetString(configPathKey)
	if strings.TrimSpace(path) == "" {
		return Settings{}, errors.New("config path is empty")
	}

	file, err := readSchema(path)
	if err != nil {
		return Settings{}, err
	}
	file.applyDefaults()
	if err := file.validateVersion(); err != nil {
		return Settings{}, err
	}

	settings, err := file.toSettings()
	if err != nil {
		return Settings{}, err
	}
	if err := applyEnvOverrides(v, &settings); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func applyEnvOverrides(v *viper.Viper, settings *Settings) error {
	if listen := v.GetString("listen"); listen != "" {
		settings.Listen = listen
	}
	if model := v.GetString("model"); model != "" {
		settings.Model = model
	}
	if raw := v.GetString("request_timeout"); raw != "" {
		d, err := parseDuration("request_timeout override", raw)
		if err != nil {
			return err
		}
		settings.RequestTimeout = d
	}

	return nil
}

func readSchema(path string) (fileSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read config file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("parse config file: %w", err)
	}

	return file, nil
}

// WriteDefault writes the default config to path. It refuses to overwrite
// an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var file fileSchema
	file.applyDefaults()
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if err := os.WriteFile(path, data, configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
