package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Stream is the TCP surface consumers connect to for frame payloads.
	Stream struct {
		Address string `yaml:"address"`
		// WriteTimeout bounds a single sink write. Zero (the default)
		// keeps writes unbounded: a hung consumer stalls the broadcast
		// pass, which is the documented behavior of the fanout.
		WriteTimeout         time.Duration `yaml:"write_timeout"`
		ConnectionsPerMinute int           `yaml:"connections_per_minute"`
		Burst                int           `yaml:"burst"`
	} `yaml:"stream"`

	// Server is the HTTP status API (health, ready, stats, metrics, ws).
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Capture struct {
		Source    string  `yaml:"source"` // synthetic or file
		InputDir  string  `yaml:"input_dir"`
		Pattern   string  `yaml:"pattern"`
		Width     uint32  `yaml:"width"`
		Height    uint32  `yaml:"height"`
		FPS       float64 `yaml:"fps"`
		Loop      bool    `yaml:"loop"`
		MaxFrames int     `yaml:"max_frames"`
	} `yaml:"capture"`

	Filter struct {
		Kind string `yaml:"kind"` // red, blue or green

		// Chroma classification tunables. The defaults are the
		// production values; leave them alone unless you know the
		// lighting setup you are keying against.
		KeyMin            uint8  `yaml:"key_min"`
		KeyMax            uint8  `yaml:"key_max"`
		ReferenceLevel    uint8  `yaml:"reference_level"`
		VarianceThreshold uint32 `yaml:"variance_threshold"`
	} `yaml:"filter"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Stream.Address == "" {
		return fmt.Errorf("stream.address must not be empty")
	}
	if c.Stream.WriteTimeout < 0 {
		return fmt.Errorf("stream.write_timeout must be >= 0")
	}
	if c.Stream.ConnectionsPerMinute < 0 {
		return fmt.Errorf("stream.connections_per_minute must be >= 0")
	}

	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	switch c.Capture.Source {
	case "synthetic", "file":
	default:
		return fmt.Errorf("capture.source must be synthetic or file, got %q", c.Capture.Source)
	}
	if c.Capture.Source == "file" && c.Capture.InputDir == "" {
		return fmt.Errorf("capture.input_dir must not be empty when capture.source=file")
	}
	if c.Capture.Width == 0 || c.Capture.Height == 0 {
		return fmt.Errorf("capture.width and capture.height must be > 0")
	}
	if c.Capture.FPS <= 0 {
		return fmt.Errorf("capture.fps must be > 0")
	}
	if c.Capture.MaxFrames < 0 {
		return fmt.Errorf("capture.max_frames must be >= 0")
	}

	switch c.Filter.Kind {
	case "red", "blue", "green":
	default:
		return fmt.Errorf("filter.kind must be red, blue or green, got %q", c.Filter.Kind)
	}
	if c.Filter.KeyMin >= c.Filter.KeyMax {
		return fmt.Errorf("filter.key_min must be < filter.key_max")
	}
	if c.Filter.VarianceThreshold == 0 {
		return fmt.Errorf("filter.variance_threshold must be > 0")
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Stream.Address = "127.0.0.1:8080"
	cfg.Stream.WriteTimeout = 0
	cfg.Stream.ConnectionsPerMinute = 0
	cfg.Stream.Burst = 10

	cfg.Server.Address = ":8081"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Capture.Source = "synthetic"
	cfg.Capture.Pattern = "*.raw"
	cfg.Capture.Width = 320
	cfg.Capture.Height = 240
	cfg.Capture.FPS = 10
	cfg.Capture.Loop = true
	cfg.Capture.MaxFrames = 0

	cfg.Filter.Kind = "red"
	cfg.Filter.KeyMin = 150
	cfg.Filter.KeyMax = 255
	cfg.Filter.ReferenceLevel = 20
	cfg.Filter.VarianceThreshold = 120

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("CHROMACAST_STREAM_ADDRESS"); addr != "" {
		c.Stream.Address = addr
	}
	if addr := os.Getenv("CHROMACAST_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("CHROMACAST_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if kind := os.Getenv("CHROMACAST_FILTER_KIND"); kind != "" {
		c.Filter.Kind = kind
	}
}
