// Package config loads dashboard settings from defaults, an optional YAML or
// TOML file, and MIRODASH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sosodev/duration"
	"gopkg.in/yaml.v3"
)

// Duration accepts Go syntax ("100ms") or ISO 8601 ("PT15S").
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}
	v, err := duration.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(v.ToTimeDuration())
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) D() time.Duration { return time.Duration(d) }

type MQTT struct {
	Broker      string   `yaml:"broker" toml:"broker"`
	ClientID    string   `yaml:"client_id" toml:"client_id"`
	Username    string   `yaml:"username" toml:"username"`
	Password    string   `yaml:"password" toml:"password"`
	TopicPrefix string   `yaml:"topic_prefix" toml:"topic_prefix"`
	KeepAlive   Duration `yaml:"keep_alive" toml:"keep_alive"`
}

type Intervals struct {
	Fast   Duration `yaml:"fast" toml:"fast"`
	Medium Duration `yaml:"medium" toml:"medium"`
	Slow   Duration `yaml:"slow" toml:"slow"`
	Record Duration `yaml:"record" toml:"record"`
}

type Config struct {
	Listen      string `yaml:"listen" toml:"listen"`
	DBPath      string `yaml:"db_path" toml:"db_path"`
	AssetPrefix string `yaml:"asset_prefix" toml:"asset_prefix"`
	AssetDir    string `yaml:"asset_dir" toml:"asset_dir"`
	LogLevel    string `yaml:"log_level" toml:"log_level"`
	// Source is "mqtt" or "sim".
	Source string `yaml:"source" toml:"source"`
	MQTT   MQTT   `yaml:"mqtt" toml:"mqtt"`

	Intervals      Intervals `yaml:"intervals" toml:"intervals"`
	WindowCapacity int       `yaml:"window_capacity" toml:"window_capacity"`
	Drives         []string  `yaml:"drives" toml:"drives"`
	Actions        []string  `yaml:"actions" toml:"actions"`
	CamScale       int       `yaml:"cam_scale" toml:"cam_scale"`
	CamScaleLarge  int       `yaml:"cam_scale_large" toml:"cam_scale_large"`

	// TelemetryTTL marks cached values older than this as unknown. 0 keeps them forever.
	TelemetryTTL Duration `yaml:"telemetry_ttl" toml:"telemetry_ttl"`
	// HistoryRetention prunes recorded samples older than this. 0 keeps them forever.
	HistoryRetention Duration `yaml:"history_retention" toml:"history_retention"`
}

func Default() Config {
	return Config{
		Listen:      ":8050",
		DBPath:      "data/mirodash.sqlite",
		AssetPrefix: "assets/",
		AssetDir:    "assets",
		LogLevel:    "info",
		Source:      "sim",
		MQTT: MQTT{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "miro",
			KeepAlive:   Duration(30 * time.Second),
		},
		Intervals: Intervals{
			Fast:   Duration(100 * time.Millisecond),
			Medium: Duration(200 * time.Millisecond),
			Slow:   Duration(time.Minute),
			Record: Duration(time.Second),
		},
		WindowCapacity:   30,
		Drives:           []string{"social", "ball"},
		Actions:          []string{"Mull", "Orient", "Approach", "Flee", "Avert", "Halt", "Retreat", "Special"},
		CamScale:         4,
		CamScaleLarge:    2,
		HistoryRetention: Duration(24 * time.Hour),
	}
}

// Load reads path (if non-empty) over the defaults, applies the environment,
// and validates the result.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, c)
	case ".toml":
		_, err = toml.Decode(string(b), c)
	default:
		return fmt.Errorf("config %s: unsupported extension", path)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(k string, dst *string) {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			*dst = v
		}
	}
	str("MIRODASH_LISTEN", &c.Listen)
	str("MIRODASH_DB", &c.DBPath)
	str("MIRODASH_ASSET_DIR", &c.AssetDir)
	str("MIRODASH_LOG_LEVEL", &c.LogLevel)
	str("MIRODASH_SOURCE", &c.Source)
	str("MIRODASH_MQTT_BROKER", &c.MQTT.Broker)
	str("MIRODASH_MQTT_CLIENT_ID", &c.MQTT.ClientID)
	str("MIRODASH_MQTT_USERNAME", &c.MQTT.Username)
	str("MIRODASH_MQTT_PASSWORD", &c.MQTT.Password)
	str("MIRODASH_TOPIC_PREFIX", &c.MQTT.TopicPrefix)

	if v := strings.TrimSpace(getenv("MIRODASH_FAST_INTERVAL")); v != "" {
		if err := c.Intervals.Fast.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("MIRODASH_FAST_INTERVAL: %w", err)
		}
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Intervals.Fast <= 0 || c.Intervals.Medium <= 0 || c.Intervals.Slow <= 0 || c.Intervals.Record <= 0 {
		errs = append(errs, errors.New("intervals must be positive"))
	}
	if c.WindowCapacity < 1 {
		errs = append(errs, errors.New("window_capacity must be at least 1"))
	}
	if c.CamScale < 1 || c.CamScaleLarge < 1 {
		errs = append(errs, errors.New("cam_scale and cam_scale_large must be at least 1"))
	}
	if len(c.Drives) == 0 {
		errs = append(errs, errors.New("at least one drive is required"))
	}
	if len(c.Actions) == 0 {
		errs = append(errs, errors.New("at least one action is required"))
	}
	switch c.Source {
	case "sim":
	case "mqtt":
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required for the mqtt source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
