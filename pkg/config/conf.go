package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/rfm/pkg/rfm"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	FormatJSON = "json"
	FormatYAML = "yaml"

	TopCustomersDefault = 100
)

// Config represents app config object.
type Config struct {
	// DB is a SQLite file path or a mysql:// / mariadb:// DSN.
	DB                   string `yaml:"db"`
	Format               string `yaml:"format"`
	TopCustomers         int    `yaml:"top_customers"`
	PredictionWindowDays int    `yaml:"prediction_window_days"`
}

func getDefaultConfig() *Config {
	return &Config{
		Format:               FormatJSON,
		TopCustomers:         TopCustomersDefault,
		PredictionWindowDays: rfm.PredictionWindowDaysDefault,
	}
}

// applyDefaults fills zero values left out of a hand-edited file.
func (c *Config) applyDefaults() {
	d := getDefaultConfig()
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.TopCustomers <= 0 {
		c.TopCustomers = d.TopCustomers
	}
	if c.PredictionWindowDays <= 0 {
		c.PredictionWindowDays = d.PredictionWindowDays
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatJSON, FormatYAML:
	default:
		return errors.Errorf("unsupported format: %s", c.Format)
	}
	return nil
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file: %s", path)
	}
	return &c, nil
}

// GetOrCreateHomeDir returns the app directory under the user home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
