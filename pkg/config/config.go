// Package config provides configuration loading and validation for gitsig.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/gitsig/pkg/gogit"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

// Sentinel validation errors.
var (
	ErrInvalidBackend  = errors.New("invalid backend")
	ErrInvalidOutput   = errors.New("invalid output format")
	ErrInvalidEncoding = errors.New("invalid encoding")
	ErrInvalidScope    = errors.New("invalid identity scope")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// configName is the config file name without extension.
const configName = ".gitsig"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for gitsig settings.
const envPrefix = "GITSIG"

// Config is the top-level configuration for the gitsig CLI.
type Config struct {
	Backend   string          `mapstructure:"backend"`
	Encoding  string          `mapstructure:"encoding"`
	Output    string          `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Identity  IdentityConfig  `mapstructure:"identity"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	MetricsFile  string `mapstructure:"metrics_file"`
}

// IdentityConfig controls where the default identity is read from.
type IdentityConfig struct {
	// Scopes lists the git config scopes searched by the go-git backend,
	// highest priority first.
	Scopes []string `mapstructure:"scopes"`
}

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise .gitsig.yaml is searched in CWD and $HOME.
// A missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Validate checks enumerated values and the encoding name.
func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Backend) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidBackend, c.Backend, strings.Join(Backends, ", "))
	}

	if !slices.Contains(Outputs, c.Output) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidOutput, c.Output, strings.Join(Outputs, ", "))
	}

	if !signature.ValidEncoding(c.Encoding) {
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, c.Encoding)
	}

	if len(c.Identity.Scopes) == 0 {
		return fmt.Errorf("%w: no scopes configured", ErrInvalidScope)
	}

	_, err := gogit.ParseScopes(c.Identity.Scopes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScope, err)
	}

	_, err = c.LogLevel()
	if err != nil {
		return err
	}

	return nil
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("backend", DefaultBackend)
	viperCfg.SetDefault("encoding", DefaultEncoding)
	viperCfg.SetDefault("output", DefaultOutput)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.metrics_file", "")

	viperCfg.SetDefault("identity.scopes", DefaultIdentityScopes)
}
