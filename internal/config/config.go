package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// DataPath is the metadata file used when no file argument is given.
	DataPath    string `mapstructure:"data_path" yaml:"data_path"`
	TopJournals int    `mapstructure:"top_journals" yaml:"top_journals"`
	TopWords    int    `mapstructure:"top_words" yaml:"top_words"`
	WordField   string `mapstructure:"word_field" yaml:"word_field"`
	SampleRows  int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Initial year range of the filtered view
	DefaultYearFrom int `mapstructure:"default_year_from" yaml:"default_year_from"`
	DefaultYearTo   int `mapstructure:"default_year_to" yaml:"default_year_to"`

	// Dashboard
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns ~/.metascope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".metascope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.metascope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("METASCOPE")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_path", "metadata.csv")
	v.SetDefault("top_journals", 10)
	v.SetDefault("top_words", 50)
	v.SetDefault("word_field", "title")
	v.SetDefault("sample_rows", 5)
	v.SetDefault("default_year_from", 2020)
	v.SetDefault("default_year_to", 2021)
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a missing file falls back to defaults
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate rejects values the analysis cannot use.
func (c *Global) Validate() error {
	switch c.WordField {
	case "title", "abstract":
	default:
		return fmt.Errorf("invalid word_field: %s (use title or abstract)", c.WordField)
	}
	if c.TopJournals < 0 || c.TopWords < 0 || c.SampleRows < 0 {
		return errors.New("top_journals, top_words and sample_rows must not be negative")
	}
	if c.DefaultYearFrom > c.DefaultYearTo {
		return fmt.Errorf("default_year_from (%d) is after default_year_to (%d)", c.DefaultYearFrom, c.DefaultYearTo)
	}
	return nil
}
