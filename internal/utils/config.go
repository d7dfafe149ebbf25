package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/benmeehan/sentinel/internal/constants"
	"github.com/benmeehan/sentinel/pkg/file"
	"github.com/benmeehan/sentinel/pkg/identity"
)

// Config represents the structure of the configuration file. The two
// credential fields sit at the top level so the relay's exported
// sentinel_config.json works unchanged.
type Config struct {
	DeviceID    string `json:"device_id" yaml:"device_id" toml:"device_id"`          // Relay device identifier
	AccessToken string `json:"access_token" yaml:"access_token" toml:"access_token"` // Relay access token

	Relay RelayConfig `json:"relay" yaml:"relay" toml:"relay"`
	Log   LogConfig   `json:"log" yaml:"log" toml:"log"`
	Watch WatchConfig `json:"watch" yaml:"watch" toml:"watch"`
}

// RelayConfig configures the cloud relay endpoint.
type RelayConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"` // Relay API root, without /v1
	Timeout string `json:"timeout" yaml:"timeout" toml:"timeout"`    // Per request timeout, e.g. "30s"
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`    // trace, debug, info, warn, error, fatal, panic, disabled
	Format string `json:"format" yaml:"format" toml:"format"` // console or json
}

// WatchConfig configures the status watch service.
type WatchConfig struct {
	Interval string     `json:"interval" yaml:"interval" toml:"interval"` // Poll period, e.g. "2m"
	MQTT     MQTTConfig `json:"mqtt" yaml:"mqtt" toml:"mqtt"`
}

// MQTTConfig configures where status reports are published.
type MQTTConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled" toml:"enabled"`                      // Publish status reports
	Broker        string `json:"broker" yaml:"broker" toml:"broker"`                         // MQTT broker address
	ClientID      string `json:"client_id" yaml:"client_id" toml:"client_id"`                // MQTT client ID prefix
	Topic         string `json:"topic" yaml:"topic" toml:"topic"`                            // Status report topic
	QOS           int    `json:"qos" yaml:"qos" toml:"qos"`                                  // MQTT QoS level
	CACertificate string `json:"ca_certificate" yaml:"ca_certificate" toml:"ca_certificate"` // Optional CA certificate, enables TLS
}

// LoadConfig loads the configuration from the specified file. The format is
// picked from the extension: .json, .toml, anything else is read as YAML.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config

	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		err = fileClient.ReadJsonFile(filename, &config)
	case ".toml":
		err = fileClient.ReadTomlFile(filename, &config)
	default:
		err = fileClient.ReadYamlFile(filename, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", filename, err)
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}

	return &config, nil
}

func (c *Config) setDefaults() {
	if c.Relay.BaseURL == "" {
		c.Relay.BaseURL = constants.DefaultRelayURL
	}
	if c.Relay.Timeout == "" {
		c.Relay.Timeout = constants.DefaultRelayTimeout.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Watch.Interval == "" {
		c.Watch.Interval = constants.DefaultWatchInterval.String()
	}
	if c.Watch.MQTT.ClientID == "" {
		c.Watch.MQTT.ClientID = "sentinel"
	}
	if c.Watch.MQTT.Topic == "" {
		c.Watch.MQTT.Topic = "sentinel/status"
	}
}

// Validate checks the fields the client cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Identity(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RelayTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.WatchInterval(); err != nil {
		errs = append(errs, err)
	}
	if c.Watch.MQTT.Enabled {
		if strings.TrimSpace(c.Watch.MQTT.Broker) == "" {
			errs = append(errs, errors.New("watch.mqtt.broker is required when mqtt is enabled"))
		}
		if c.Watch.MQTT.QOS < 0 || c.Watch.MQTT.QOS > 2 {
			errs = append(errs, fmt.Errorf("watch.mqtt.qos must be 0, 1 or 2, got %d", c.Watch.MQTT.QOS))
		}
	}

	return errors.Join(errs...)
}

// Identity returns the device credentials.
func (c *Config) Identity() (identity.Identity, error) {
	return identity.New(c.DeviceID, c.AccessToken)
}

// RelayTimeout parses relay.timeout.
func (c *Config) RelayTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Relay.Timeout)
	if err != nil {
		return 0, fmt.Errorf("relay.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("relay.timeout must be positive, got %s", d)
	}
	return d, nil
}

// WatchInterval parses watch.interval.
func (c *Config) WatchInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Interval)
	if err != nil {
		return 0, fmt.Errorf("watch.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("watch.interval must be positive, got %s", d)
	}
	return d, nil
}
