// Package config provides configuration management for the analytics engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Every engine knob lives
// here so that scoring and replication never reach into ambient state.
type Config struct {
	Trading     TradingConfig     `mapstructure:"trading"`
	Discipline  DisciplineConfig  `mapstructure:"discipline"`
	Replication ReplicationConfig `mapstructure:"replication"`
	Log         LogConfig         `mapstructure:"log"`
}

// TradingConfig holds phantom trading configuration.
type TradingConfig struct {
	StartingBalance float64 `mapstructure:"starting_balance"`
}

// DisciplineConfig holds discipline scoring parameters.
type DisciplineConfig struct {
	RevengeWindowMS      int64   `mapstructure:"revenge_window_ms"`
	OverLeverageFraction float64 `mapstructure:"over_leverage_fraction"`
	AdherenceTolerance   float64 `mapstructure:"adherence_tolerance"`
	NoPlanPenalty        int     `mapstructure:"no_plan_penalty"`
	NoPlanAdherence      float64 `mapstructure:"no_plan_adherence"`
	PlanMissMax          int     `mapstructure:"plan_miss_max"`
	RevengePenaltyPer    int     `mapstructure:"revenge_penalty_per"`
	RevengePenaltyMax    int     `mapstructure:"revenge_penalty_max"`
	LeveragePenaltyPer   int     `mapstructure:"leverage_penalty_per"`
	LeveragePenaltyMax   int     `mapstructure:"leverage_penalty_max"`
}

// ReplicationConfig holds phantom portfolio replication parameters.
type ReplicationConfig struct {
	HoldingsCount int    `mapstructure:"holdings_count"`
	BasketVersion string `mapstructure:"basket_version"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-coach"
	}
	return filepath.Join(home, ".config", "trade-coach")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is not an error; defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setViperDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("trading.starting_balance", 10000.0)

	v.SetDefault("discipline.revenge_window_ms", 60000)
	v.SetDefault("discipline.over_leverage_fraction", 0.5)
	v.SetDefault("discipline.adherence_tolerance", 0.005)
	v.SetDefault("discipline.no_plan_penalty", 10)
	v.SetDefault("discipline.no_plan_adherence", 0.7)
	v.SetDefault("discipline.plan_miss_max", 30)
	v.SetDefault("discipline.revenge_penalty_per", 12)
	v.SetDefault("discipline.revenge_penalty_max", 30)
	v.SetDefault("discipline.leverage_penalty_per", 8)
	v.SetDefault("discipline.leverage_penalty_max", 20)

	v.SetDefault("replication.holdings_count", 8)
	v.SetDefault("replication.basket_version", "v1")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)
}

func applyDefaults(cfg *Config) {
	v := viper.New()
	setViperDefaults(v)
	_ = v.Unmarshal(cfg)
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("COACH_STARTING_BALANCE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Trading.StartingBalance = f
		}
	}
	if val := os.Getenv("COACH_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("COACH_HOLDINGS_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Replication.HoldingsCount = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trading.StartingBalance < 0 {
		return fmt.Errorf("starting_balance must be non-negative")
	}
	if c.Discipline.RevengeWindowMS <= 0 {
		return fmt.Errorf("revenge_window_ms must be positive")
	}
	if c.Discipline.OverLeverageFraction <= 0 || c.Discipline.OverLeverageFraction > 1 {
		return fmt.Errorf("over_leverage_fraction must be in (0, 1]")
	}
	if c.Discipline.AdherenceTolerance < 0 || c.Discipline.AdherenceTolerance >= 1 {
		return fmt.Errorf("adherence_tolerance must be in [0, 1)")
	}
	if c.Discipline.NoPlanAdherence < 0 || c.Discipline.NoPlanAdherence > 1 {
		return fmt.Errorf("no_plan_adherence must be in [0, 1]")
	}
	if c.Replication.HoldingsCount <= 0 {
		return fmt.Errorf("holdings_count must be positive")
	}
	if c.Replication.BasketVersion == "" {
		return fmt.Errorf("basket_version must be set")
	}
	return nil
}
