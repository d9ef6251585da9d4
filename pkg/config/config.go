package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. YPBANK_LOGGING_LEVEL.
const EnvPrefix = "YPBANK"

// Config represents the ypbank tool configuration
type Config struct {
	Logging Logging `yaml:"logging" mapstructure:"logging"`
	Codec   Codec   `yaml:"codec" mapstructure:"codec"`
	Compare Compare `yaml:"compare" mapstructure:"compare"`
	Report  Report  `yaml:"report" mapstructure:"report"`
	Metrics Metrics `yaml:"metrics" mapstructure:"metrics"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Codec contains limits applied while decoding
type Codec struct {
	MaxDescriptionBytes int `yaml:"max_description_bytes" mapstructure:"max_description_bytes"`
}

// Compare holds comparator defaults; comparer flags override them
type Compare struct {
	IgnoreDescription bool     `yaml:"ignore_description" mapstructure:"ignore_description"`
	IgnoreStatus      bool     `yaml:"ignore_status" mapstructure:"ignore_status"`
	IgnoreFields      []string `yaml:"ignore_fields,omitempty" mapstructure:"ignore_fields"`
}

// Report contains report rendering configuration
type Report struct {
	Format string `yaml:"format" mapstructure:"format"`
}

// Metrics contains metrics export configuration. An empty Textfile
// disables the export.
type Metrics struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: Logging{
			Level: "warn",
		},
		Codec: Codec{
			MaxDescriptionBytes: 65535,
		},
		Report: Report{
			Format: "table",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("codec.max_description_bytes", d.Codec.MaxDescriptionBytes)
	v.SetDefault("compare.ignore_description", d.Compare.IgnoreDescription)
	v.SetDefault("compare.ignore_status", d.Compare.IgnoreStatus)
	v.SetDefault("compare.ignore_fields", []string{})
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

// LoadConfig layers defaults, the YAML file at configPath and YPBANK_*
// environment variables, in that order. An empty configPath skips the file.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		if !ConfigExists(configPath) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}

		v.SetConfigFile(absPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks values that the loader cannot type-check.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}

	if c.Codec.MaxDescriptionBytes < 1 || c.Codec.MaxDescriptionBytes > 65535 {
		errs = append(errs, fmt.Errorf("codec.max_description_bytes: %d outside 1..65535", c.Codec.MaxDescriptionBytes))
	}

	switch strings.ToLower(c.Report.Format) {
	case "table", "json":
	default:
		errs = append(errs, fmt.Errorf("report.format: unknown format %q", c.Report.Format))
	}

	return errors.Join(errs...)
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./ypbank.yaml"
	}

	return filepath.Join(homeDir, ".config", "ypbank", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// ResolvePath returns explicit when set, otherwise the default path if a
// file exists there, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := GetDefaultConfigPath(); ConfigExists(p) {
		return p
	}
	return ""
}
