package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mkrutov/heattrack/internal/notify"
)

const (
	ProviderNMEA      = "nmea"
	ProviderGoogle    = "google"
	ProviderSimulated = "simulated"

	PermissionGrant  = "grant"
	PermissionDeny   = "deny"
	PermissionPrompt = "prompt"
)

// Config is the main application configuration.
type Config struct {
	Settings   Settings         `yaml:"settings"`
	Location   LocationConfig   `yaml:"location" validate:"required"`
	Permission PermissionConfig `yaml:"permission"`
	Tracking   TrackingConfig   `yaml:"tracking"`
	Storage    StorageConfig    `yaml:"storage"`
	Notify     NotifyConfig     `yaml:"notify"`
	Server     ServerConfig     `yaml:"server"`

	// Seed is set from the command line, not the file: insert this many
	// synthetic samples and exit.
	Seed int `yaml:"-"`
}

// Settings holds global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
}

// Level converts the configured log level name to a slog level.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LocationConfig selects and configures the location provider.
type LocationConfig struct {
	Provider  string          `yaml:"provider" validate:"required,oneof=nmea google simulated"`
	NMEA      NMEAConfig      `yaml:"nmea"`
	Google    GoogleConfig    `yaml:"google"`
	Simulated SimulatedConfig `yaml:"simulated"`
}

// NMEAConfig configures the serial GPS provider.
type NMEAConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baudRate" validate:"omitempty,gt=0"`
}

// GoogleConfig configures the Geolocation API provider.
type GoogleConfig struct {
	APIKey string `yaml:"apiKey"`
}

// SimulatedConfig configures the simulated walk provider.
type SimulatedConfig struct {
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	RandSeed  int64   `yaml:"randSeed"`
}

// PermissionConfig selects the consent policy.
type PermissionConfig struct {
	Mode string `yaml:"mode" validate:"omitempty,oneof=grant deny prompt"`
}

// TimeDuration is a time.Duration that unmarshals from the YAML string
// form, e.g. "5s" or "1m30s".
type TimeDuration time.Duration

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d *TimeDuration) MarshalYAML() (interface{}, error) {
	return time.Duration(*d).String(), nil
}

// TrackingConfig holds poll loop settings.
type TrackingConfig struct {
	Interval  TimeDuration `yaml:"interval"`
	Timeout   TimeDuration `yaml:"timeout"`
	Autostart bool         `yaml:"autostart"`
}

// StorageConfig holds storage settings. Path wins over DataDirectory.
type StorageConfig struct {
	Path          string `yaml:"path"`
	DataDirectory string `yaml:"dataDirectory"`
}

// NotifyConfig configures optional sample sinks.
type NotifyConfig struct {
	MQTT struct {
		Enabled           bool `yaml:"enabled"`
		notify.MQTTConfig `yaml:",inline"`
	} `yaml:"mqtt"`
}

// ServerConfig configures the HTTP control surface.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoadConfig reads, parses and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Config{
		Permission: PermissionConfig{Mode: PermissionPrompt},
		Tracking: TrackingConfig{
			Interval: TimeDuration(5 * time.Second),
			Timeout:  TimeDuration(10 * time.Second),
		},
		Server: ServerConfig{Addr: "localhost:8420"},
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if config.Tracking.Interval <= 0 {
		config.Tracking.Interval = TimeDuration(5 * time.Second)
	}
	if config.Tracking.Timeout <= 0 {
		config.Tracking.Timeout = TimeDuration(10 * time.Second)
	}

	if err = validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	switch config.Location.Provider {
	case ProviderNMEA:
		if config.Location.NMEA.Port == "" {
			return nil, fmt.Errorf("location.nmea.port is required for the %s provider", ProviderNMEA)
		}
		if config.Location.NMEA.BaudRate == 0 {
			config.Location.NMEA.BaudRate = 9600
		}
	case ProviderGoogle:
		if config.Location.Google.APIKey == "" {
			return nil, fmt.Errorf("location.google.apiKey is required for the %s provider", ProviderGoogle)
		}
	}

	if config.Notify.MQTT.Enabled {
		if config.Notify.MQTT.Broker == "" || config.Notify.MQTT.Topic == "" {
			return nil, fmt.Errorf("notify.mqtt.broker and notify.mqtt.topic are required when MQTT is enabled")
		}
	}

	return &config, nil
}
