package kitapp

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Stage is the deployment environment tier. It controls how much error detail leaves the
// process: dev and staging responses and logs carry the full error chain, prod stays
// opaque.
type Stage string

const (
	StageDev     Stage = "dev"
	StageStaging Stage = "staging"
	StageProd    Stage = "prod"
)

// UnmarshalText implements encoding.TextUnmarshaler so stages parse from env vars.
func (s *Stage) UnmarshalText(text []byte) error {
	switch Stage(text) {
	case StageDev, StageStaging, StageProd:
		*s = Stage(text)
		return nil
	default:
		return errors.Newf("unknown stage %q (supported: dev, staging, prod)", text)
	}
}

// ExposeErrorDetail reports whether error responses and logs may include detail and stack
// information.
func (s Stage) ExposeErrorDetail() bool {
	return s != StageProd
}

// Config holds the application configuration. It is constructed once during assembly and
// immutable afterwards.
//
// Values come from three layers, weakest first: the defaults below, an optional YAML file
// named by APP_CONFIG_FILE, and the environment.
type Config struct {
	Port            int           `env:"APP_PORT"`
	Title           string        `env:"APP_TITLE"`
	Version         string        `env:"APP_VERSION"`
	ServiceName     string        `env:"APP_SERVICE_NAME"`
	PrefixURL       string        `env:"APP_PREFIX_URL"`
	Stage           Stage         `env:"APP_STAGE"`
	GracefulTimeout time.Duration `env:"APP_GRACEFUL_TIMEOUT"`
	HealthCheckPath string        `env:"APP_HEALTH_CHECK_PATH"`
	MetricsPath     string        `env:"APP_METRICS_PATH"`
	DocsEnable      bool          `env:"APP_DOCS_ENABLE"`
	LogLevel        zapcore.Level `env:"APP_LOG_LEVEL"`
	LogJSON         bool          `env:"APP_LOG_JSON"`
	LogMaxLength    int           `env:"APP_LOG_MAX_LENGTH"`
	TraceExporter   string        `env:"APP_TRACE_EXPORTER"`
}

// DefaultConfig returns the baseline configuration before file and environment layering.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		ServiceName:     "appkit",
		Stage:           StageDev,
		GracefulTimeout: 10 * time.Second,
		HealthCheckPath: "/healthz",
		MetricsPath:     "/metrics",
		DocsEnable:      true,
		LogLevel:        zapcore.InfoLevel,
		LogJSON:         true,
		LogMaxLength:    1000,
		TraceExporter:   "none",
	}
}

// ParseConfig builds the configuration from defaults, the optional APP_CONFIG_FILE YAML
// file, and the environment, in that order.
func ParseConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, errors.Wrapf(err, "failed to load config file %q", path)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse environment")
	}

	if cfg.GracefulTimeout < 0 {
		return cfg, errors.New("graceful timeout cannot be negative")
	}

	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so a YAML file only overrides what it
// actually sets. Durations, levels and stages come in as strings and are parsed.
type fileConfig struct {
	Port            *int    `yaml:"port"`
	Title           *string `yaml:"title"`
	Version         *string `yaml:"version"`
	ServiceName     *string `yaml:"service_name"`
	PrefixURL       *string `yaml:"prefix_url"`
	Stage           *string `yaml:"stage"`
	GracefulTimeout *string `yaml:"graceful_timeout"`
	HealthCheckPath *string `yaml:"health_check_path"`
	MetricsPath     *string `yaml:"metrics_path"`
	DocsEnable      *bool   `yaml:"docs_enable"`
	LogLevel        *string `yaml:"log_level"`
	LogJSON         *bool   `yaml:"log_json"`
	LogMaxLength    *int    `yaml:"log_max_length"`
	TraceExporter   *string `yaml:"trace_exporter"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrap(err, "failed to parse yaml")
	}

	setIf(&c.Port, fc.Port)
	setIf(&c.Title, fc.Title)
	setIf(&c.Version, fc.Version)
	setIf(&c.ServiceName, fc.ServiceName)
	setIf(&c.PrefixURL, fc.PrefixURL)
	setIf(&c.HealthCheckPath, fc.HealthCheckPath)
	setIf(&c.MetricsPath, fc.MetricsPath)
	setIf(&c.DocsEnable, fc.DocsEnable)
	setIf(&c.LogJSON, fc.LogJSON)
	setIf(&c.LogMaxLength, fc.LogMaxLength)
	setIf(&c.TraceExporter, fc.TraceExporter)

	if fc.Stage != nil {
		if err := c.Stage.UnmarshalText([]byte(*fc.Stage)); err != nil {
			return err
		}
	}

	if fc.GracefulTimeout != nil {
		d, err := time.ParseDuration(*fc.GracefulTimeout)
		if err != nil {
			return errors.Wrap(err, "failed to parse graceful_timeout")
		}

		c.GracefulTimeout = d
	}

	if fc.LogLevel != nil {
		if err := c.LogLevel.UnmarshalText([]byte(*fc.LogLevel)); err != nil {
			return errors.Wrap(err, "failed to parse log_level")
		}
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
