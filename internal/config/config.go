package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultReportCacheTTL    = 10 * time.Minute
	defaultReportCacheSizeMB = 32
	defaultReportYear        = 2023
	defaultTopN              = 5
	defaultUploadRateLimit   = 30
)

type Config struct {
	Environment string `toml:"-"`

	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// report cache: local | redis | none
	ReportCache       string        `toml:"report_cache"`
	ReportCacheTTL    time.Duration `toml:"report_cache_ttl"`
	ReportCacheSizeMB int           `toml:"report_cache_size_mb"`

	// workouts
	ReportYear            int    `toml:"report_year"`
	DefaultTimeZone       string `toml:"default_time_zone"`
	TopN                  int    `toml:"top_n"`
	UploadRateLimitPerMin int    `toml:"upload_rate_limit_per_min"`
	GeoIPEnabled          bool   `toml:"geoip_enabled"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
		env = "development"
	case "prod", "production":
		cfg = t.Production
		env = "production"
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the TOML file at path and returns the config for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return fromToml(&t, env)
}

// Parse is Load for in-memory TOML.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", cfg.Environment, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.ReportCache == "" {
		c.ReportCache = "local"
	}
	if c.ReportCacheTTL == 0 {
		c.ReportCacheTTL = defaultReportCacheTTL
	}
	if c.ReportCacheSizeMB == 0 {
		c.ReportCacheSizeMB = defaultReportCacheSizeMB
	}
	if c.ReportYear == 0 {
		c.ReportYear = defaultReportYear
	}
	if c.TopN == 0 {
		c.TopN = defaultTopN
	}
	if c.UploadRateLimitPerMin == 0 {
		c.UploadRateLimitPerMin = defaultUploadRateLimit
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	switch c.ReportCache {
	case "local", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown report_cache: %s", c.ReportCache))
	}
	if c.ReportCache == "redis" && c.RedisHost == "" {
		errs = append(errs, errors.New("report_cache is redis but redis_host is empty"))
	}
	if c.TopN < 0 {
		errs = append(errs, fmt.Errorf("top_n must not be negative: %d", c.TopN))
	}
	if c.DefaultTimeZone != "" {
		if _, err := time.LoadLocation(c.DefaultTimeZone); err != nil {
			errs = append(errs, fmt.Errorf("default_time_zone: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ViewerLocation is the configured default zone, or UTC when unset.
func (c *Config) ViewerLocation() *time.Location {
	if c.DefaultTimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
