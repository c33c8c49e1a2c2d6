// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/summit-housing/waitlist-cli/internal/arcgis"
	"github.com/summit-housing/waitlist-cli/internal/normalize"
	"github.com/summit-housing/waitlist-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	ArcGIS    ArcGISConfig    `yaml:"arcgis" mapstructure:"arcgis"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ToStoreConfig converts to the store package's config shape.
func (c StoreConfig) ToStoreConfig() store.Config {
	cfg := store.Config{Driver: c.Driver, DSN: c.DSN}
	if c.MaxConns > 0 || c.MinConns > 0 {
		cfg.Pool = &store.PoolConfig{MaxConns: c.MaxConns, MinConns: c.MinConns}
	}
	return cfg
}

// ArcGISConfig configures the county parcel layer and town rosters.
type ArcGISConfig struct {
	LayerURL  string                `yaml:"layer_url" mapstructure:"layer_url"`
	Referer   string                `yaml:"referer" mapstructure:"referer"`
	APIKey    string                `yaml:"api_key" mapstructure:"api_key"`
	RateLimit float64               `yaml:"rate_limit" mapstructure:"rate_limit"`
	Rosters   []arcgis.RosterSource `yaml:"rosters" mapstructure:"rosters"`
}

// RosterSources returns the configured rosters, or the built-in town
// defaults when none are configured.
func (c ArcGISConfig) RosterSources() []arcgis.RosterSource {
	if len(c.Rosters) > 0 {
		return c.Rosters
	}
	return arcgis.DefaultRosterSources()
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// NormalizeConfig points at an optional typo-override file merged into
// the built-in correction table at startup.
type NormalizeConfig struct {
	TypoOverridesPath string `yaml:"typo_overrides" mapstructure:"typo_overrides"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WAITLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "waitlist.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("arcgis.layer_url",
		"https://services6.arcgis.com/dmNYNuTJZDtkcRJq/arcgis/rest/services/STR_Licenses_October_2025_public_view_layer/FeatureServer/0")
	v.SetDefault("arcgis.referer",
		"https://experience.arcgis.com/experience/706a6886322445479abadb904db00bc0/")
	v.SetDefault("arcgis.rate_limit", 4.0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ApplyNormalizeOverrides merges a yaml typo-override file into the
// normalizer's correction table. Missing path is a no-op.
func ApplyNormalizeOverrides(cfg NormalizeConfig) error {
	if cfg.TypoOverridesPath == "" {
		return nil
	}
	data, err := os.ReadFile(cfg.TypoOverridesPath)
	if err != nil {
		return eris.Wrapf(err, "config: read typo overrides %s", cfg.TypoOverridesPath)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return eris.Wrapf(err, "config: parse typo overrides %s", cfg.TypoOverridesPath)
	}
	normalize.ApplyTypoOverrides(overrides)
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
