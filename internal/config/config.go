package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
)

const (
	AppName    = "timetracker"
	ConfigFile = "config.yaml"
	EnvPrefix  = "TIMETRACKER_"
)

type Config struct {
	DB      DB      `koanf:"db"`
	Log     Log     `koanf:"log"`
	Export  Export  `koanf:"export"`
	Heatmap Heatmap `koanf:"heatmap"`
}

type DB struct {
	Path string `koanf:"path"`
}

type Log struct {
	Level string `koanf:"level"`
	// File receives log output. Empty means stderr for commands and
	// DefaultLogPath for the TUI.
	File string `koanf:"file"`
}

type Export struct {
	Dir string `koanf:"dir"`
}

type Heatmap struct {
	Thresholds []Threshold `koanf:"thresholds"`
}

type Threshold struct {
	Min   float64 `koanf:"min"`
	Color string  `koanf:"color"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = "timetracker.db"
	}
	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	defaults := stats.DefaultThresholds()
	thresholds := make([]Threshold, len(defaults))
	for i, t := range defaults {
		thresholds[i] = Threshold{Min: t.Min, Color: t.Color}
	}

	return Config{
		DB:      DB{Path: dbPath},
		Log:     Log{Level: "info"},
		Export:  Export{Dir: exportDir},
		Heatmap: Heatmap{Thresholds: thresholds},
	}
}

// DefaultPath returns ~/.config/timetracker/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, ConfigFile), nil
}

// DefaultLogPath returns ~/.config/timetracker/timetracker.log.
func DefaultLogPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, AppName+".log"), nil
}

// LoadDotEnv loads path into the process environment if it exists.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Debugf("loaded environment from %s", path)
	return nil
}

// Load layers defaults, the YAML file at path (optional) and TIMETRACKER_
// environment variables, in that order.
func Load(path string) (Config, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Debugf("config file not found at %s, using defaults and environment", path)
			} else {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
		} else {
			log.Debugf("loaded configuration from %s", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the log level and the heatmap thresholds.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if c.DB.Path == "" {
		return errors.New("db.path must not be empty")
	}
	if _, err := c.Thresholds(); err != nil {
		return fmt.Errorf("invalid heatmap.thresholds: %w", err)
	}
	return nil
}

// Thresholds converts the configured breakpoints into a sorted color scale.
func (c Config) Thresholds() (stats.Thresholds, error) {
	ts := make([]stats.Threshold, len(c.Heatmap.Thresholds))
	for i, t := range c.Heatmap.Thresholds {
		ts[i] = stats.Threshold{Min: t.Min, Color: t.Color}
	}
	return stats.NewThresholds(ts)
}
