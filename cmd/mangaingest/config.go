package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/fwojciec/mangaingest/s3"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration file. Values may reference environment
// variables as $VAR or ${VAR}.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Redis   RedisConfig   `yaml:"redis"`
	S3      S3Config      `yaml:"s3"`
	Browser BrowserConfig `yaml:"browser"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Ingest  IngestConfig  `yaml:"ingest"`

	// Sites overrides the base URL of a platform's site.
	Sites map[string]string `yaml:"sites"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Profile       string `yaml:"profile"`
	Endpoint      string `yaml:"endpoint"`
	UsePathStyle  bool   `yaml:"use_path_style"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type BrowserConfig struct {
	Enabled  bool          `yaml:"enabled"`
	PoolSize int           `yaml:"pool_size"`
	MaxPages int64         `yaml:"max_pages"`
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
	UserAgent string        `yaml:"user_agent"`

	// HostRates overrides RateLimit for individual hosts.
	HostRates map[string]float64 `yaml:"host_rates"`
}

type IngestConfig struct {
	PageConcurrency int `yaml:"page_concurrency"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		HTTP:  HTTPConfig{Addr: ":8080"},
		Kafka: KafkaConfig{GroupID: "mangaingest"},
		Browser: BrowserConfig{
			Enabled:  true,
			PoolSize: 2,
			MaxPages: 50,
			Attempts: 6,
			Interval: 5 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			RateLimit: 1,
			Burst:     1,
		},
		Ingest: IngestConfig{PageConcurrency: 4},
	}
}

// LoadConfig reads the configuration at path over the defaults. A missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	normalizeConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func normalizeConfig(c *Config) {
	d := DefaultConfig()
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = d.HTTP.Addr
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = d.Kafka.GroupID
	}
	if c.Browser.PoolSize <= 0 {
		c.Browser.PoolSize = d.Browser.PoolSize
	}
	if c.Browser.MaxPages <= 0 {
		c.Browser.MaxPages = d.Browser.MaxPages
	}
	if c.Browser.Attempts <= 0 {
		c.Browser.Attempts = d.Browser.Attempts
	}
	if c.Browser.Interval <= 0 {
		c.Browser.Interval = d.Browser.Interval
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = d.Fetch.Timeout
	}
	if c.Fetch.RateLimit <= 0 {
		c.Fetch.RateLimit = d.Fetch.RateLimit
	}
	if c.Ingest.PageConcurrency <= 0 {
		c.Ingest.PageConcurrency = d.Ingest.PageConcurrency
	}
}

// Validate returns an error if the configuration names unknown platforms.
func (c *Config) Validate() error {
	for name := range c.Sites {
		if _, err := mangaingest.ParsePlatform(name); err != nil || name == "" {
			return fmt.Errorf("sites: unknown platform %q", name)
		}
	}
	return nil
}

// SiteOverrides returns the base-URL overrides keyed by platform.
func (c *Config) SiteOverrides() map[mangaingest.Platform]string {
	out := make(map[mangaingest.Platform]string, len(c.Sites))
	for name, baseURL := range c.Sites {
		p, err := mangaingest.ParsePlatform(name)
		if err != nil || baseURL == "" {
			continue
		}
		out[p] = baseURL
	}
	return out
}

// Config converts the bucket section to the uploader's configuration.
func (c S3Config) Config() s3.Config {
	return s3.Config{
		Bucket:        c.Bucket,
		Region:        c.Region,
		Profile:       c.Profile,
		Endpoint:      c.Endpoint,
		UsePathStyle:  c.UsePathStyle,
		PublicBaseURL: c.PublicBaseURL,
	}
}
