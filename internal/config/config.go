// Package config loads mockschema settings from mockschema.yaml, .env files
// and MOCKSCHEMA_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "MOCKSCHEMA"

type Config struct {
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Server     ServerConfig     `mapstructure:"server"`
	Generate   GenerateConfig   `mapstructure:"generate"`
	Introspect IntrospectConfig `mapstructure:"introspect"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

// GeneratorConfig describes the external generator script.
type GeneratorConfig struct {
	Interpreter string `mapstructure:"interpreter"`
	Script      string `mapstructure:"script"`
	MinVersion  string `mapstructure:"min_version"`
	Dialect     string `mapstructure:"dialect"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
	// File is the schema file edited by the HTTP API.
	File string `mapstructure:"file"`
}

// GenerateConfig holds native generation settings.
type GenerateConfig struct {
	// Seed 0 seeds from the clock.
	Seed   int64  `mapstructure:"seed"`
	OutDir string `mapstructure:"out_dir"`
}

type IntrospectConfig struct {
	DefaultRows int `mapstructure:"default_rows"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generator.interpreter", "python3")
	v.SetDefault("generator.script", "mockDbGenerator.py")
	v.SetDefault("generator.min_version", "3.10.8")
	v.SetDefault("generator.dialect", "postgres")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.file", "schema.json")

	v.SetDefault("generate.seed", 0)
	v.SetDefault("generate.out_dir", "")

	v.SetDefault("introspect.default_rows", 100)

	v.SetDefault("database.url", "")
}

// Load reads configuration. An empty path searches ./mockschema.yaml and
// ./configs/mockschema.yaml; a missing file there is not an error, while an
// explicit path must exist. Variables from .env are loaded first and never
// override the real environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mockschema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would fail later in a less obvious way.
func (c *Config) Validate() error {
	if c.Generator.Interpreter == "" {
		return fmt.Errorf("generator.interpreter must not be empty")
	}
	if c.Introspect.DefaultRows < 0 {
		return fmt.Errorf("introspect.default_rows must not be negative, got %d", c.Introspect.DefaultRows)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	return nil
}
