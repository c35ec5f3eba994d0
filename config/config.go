// Package config holds the service settings and loads them from YAML and
// dotenv files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jz-wilson/sql-backup-pricing/pricing/azure"
)

// Config is the complete service configuration.
type Config struct {
	ListenAddress string        `yaml:"listen_address"`
	MetricsPath   string        `yaml:"metrics_path"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	MaxPages      int           `yaml:"max_pages"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ListenAddress: ":8080",
		MetricsPath:   "/metrics",
		LogLevel:      "info",
		LogFormat:     "text",
		BaseURL:       azure.RetailPricesBaseURL,
		Timeout:       azure.DefaultTimeout,
		RetryDelay:    azure.DefaultRetryDelay,
		MaxPages:      azure.DefaultMaxPages,
	}
}

// LoadFile overlays the settings present in the YAML file at path onto c.
// Keys missing from the file keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute URL", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.RetryDelay < 0 {
		return errors.New("retry_delay must not be negative")
	}
	if c.MaxPages < 1 {
		return errors.New("max_pages must be at least 1")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not recognized. Available formats: text, json", c.LogFormat)
	}
	return nil
}

// ClientOptions returns the Retail Prices client settings.
func (c Config) ClientOptions() azure.ClientOptions {
	return azure.ClientOptions{
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		RetryDelay: c.RetryDelay,
		MaxPages:   c.MaxPages,
	}
}

// LoadDotEnv exports the variables of the given dotenv files into the process
// environment without overriding variables that are already set. Missing files
// are skipped; the names of the files that were loaded are returned.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
