package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const defaultInfluxTimeoutInMilliseconds = 10000

// ErrMissingKey signals that a required configuration key was not provided
var ErrMissingKey = errors.New("missing configuration key")

// ErrInvalidValue signals that a configuration key holds an unusable value
var ErrInvalidValue = errors.New("invalid configuration value")

// SpeakerConfig defines the monitored device
type SpeakerConfig struct {
	IP     string `toml:"ip"`
	Host   string `toml:"host"`
	Region string `toml:"region"`
}

// Influx2Config defines the InfluxDB 2 destination
type Influx2Config struct {
	URL                   string `toml:"url"`
	Org                   string `toml:"org"`
	Token                 string `toml:"token"`
	Bucket                string `toml:"bucket"`
	Measurement           string `toml:"measurement"`
	TimeoutInMilliseconds uint32 `toml:"timeout"`
}

// Config maps to the config.toml file for the collector
type Config struct {
	Speaker SpeakerConfig `toml:"speaker"`
	Influx2 Influx2Config `toml:"influx2"`
}

// LoadConfig parses a TOML file into the Config struct. The returned config is not yet validated because
// environment overrides may still fill in the connection section.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if cfg.Influx2.TimeoutInMilliseconds == 0 {
		cfg.Influx2.TimeoutInMilliseconds = defaultInfluxTimeoutInMilliseconds
	}

	return &cfg, nil
}

// Validate checks that every key consumed by the collector is present and usable
func (cfg *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"speaker.ip", cfg.Speaker.IP},
		{"speaker.host", cfg.Speaker.Host},
		{"speaker.region", cfg.Speaker.Region},
		{"influx2.url", cfg.Influx2.URL},
		{"influx2.org", cfg.Influx2.Org},
		{"influx2.token", cfg.Influx2.Token},
		{"influx2.bucket", cfg.Influx2.Bucket},
		{"influx2.measurement", cfg.Influx2.Measurement},
	}

	missing := make([]string, 0, len(required))
	for _, r := range required {
		if len(strings.TrimSpace(r.value)) == 0 {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}

	if net.ParseIP(cfg.Speaker.IP) == nil && strings.ContainsAny(cfg.Speaker.IP, ":/ ") {
		return fmt.Errorf("%w: speaker.ip %q is neither an IP address nor a host name", ErrInvalidValue, cfg.Speaker.IP)
	}

	u, err := url.Parse(cfg.Influx2.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || len(u.Host) == 0 {
		return fmt.Errorf("%w: influx2.url %q is not an http(s) URL", ErrInvalidValue, cfg.Influx2.URL)
	}

	return nil
}
