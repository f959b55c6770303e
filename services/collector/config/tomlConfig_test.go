package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigString = `
[speaker]
ip = "192.168.1.20"
host = "living-room-sonos"
region = "home"

[influx2]
url = "http://127.0.0.1:8086"
org = "my-org"
token = "my-token"
bucket = "network"
measurement = "net"
timeout = 5000
`

func createValidConfig() Config {
	return Config{
		Speaker: SpeakerConfig{
			IP:     "192.168.1.20",
			Host:   "living-room-sonos",
			Region: "home",
		},
		Influx2: Influx2Config{
			URL:                   "http://127.0.0.1:8086",
			Org:                   "my-org",
			Token:                 "my-token",
			Bucket:                "network",
			Measurement:           "net",
			TimeoutInMilliseconds: 5000,
		},
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()

	expectedCfg := createValidConfig()

	cfg := Config{}

	err := toml.Unmarshal([]byte(testConfigString), &cfg)
	assert.Nil(t, err)
	assert.Equal(t, expectedCfg, cfg)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing file should error", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "failed to read config file")
	})
	t.Run("malformed file should error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.Nil(t, os.WriteFile(path, []byte("[speaker\nip = "), 0600))

		cfg, err := LoadConfig(path)
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "failed to decode config file")
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.Nil(t, os.WriteFile(path, []byte(testConfigString), 0600))

		cfg, err := LoadConfig(path)
		require.Nil(t, err)

		expectedCfg := createValidConfig()
		assert.Equal(t, &expectedCfg, cfg)
		assert.Nil(t, cfg.Validate())
	})
	t.Run("missing timeout should use the default", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.Nil(t, os.WriteFile(path, []byte("[speaker]\nip = \"10.0.0.1\"\n"), 0600))

		cfg, err := LoadConfig(path)
		require.Nil(t, err)
		assert.Equal(t, uint32(defaultInfluxTimeoutInMilliseconds), cfg.Influx2.TimeoutInMilliseconds)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid config should work", func(t *testing.T) {
		t.Parallel()

		cfg := createValidConfig()
		assert.Nil(t, cfg.Validate())
	})
	t.Run("host name as speaker address should work", func(t *testing.T) {
		t.Parallel()

		cfg := createValidConfig()
		cfg.Speaker.IP = "sonos-kitchen.lan"
		assert.Nil(t, cfg.Validate())
	})
	t.Run("missing keys should be reported by name", func(t *testing.T) {
		t.Parallel()

		cfg := createValidConfig()
		cfg.Speaker.Region = ""
		cfg.Influx2.Bucket = "  "

		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrMissingKey)
		assert.Contains(t, err.Error(), "speaker.region")
		assert.Contains(t, err.Error(), "influx2.bucket")
		assert.NotContains(t, err.Error(), "speaker.ip")
	})
	t.Run("empty config should report every key", func(t *testing.T) {
		t.Parallel()

		cfg := Config{}
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrMissingKey)
		for _, key := range []string{"speaker.ip", "speaker.host", "influx2.url", "influx2.org", "influx2.token", "influx2.measurement"} {
			assert.Contains(t, err.Error(), key)
		}
	})
	t.Run("speaker address with a port should error", func(t *testing.T) {
		t.Parallel()

		cfg := createValidConfig()
		cfg.Speaker.IP = "192.168.1.20:1400"
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
	})
	t.Run("non http influx url should error", func(t *testing.T) {
		t.Parallel()

		cfg := createValidConfig()
		cfg.Influx2.URL = "udp://127.0.0.1:8089"
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
	})
}
