// Package config loads TickBot settings from the environment and an
// optional config file, environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds everything the bot needs to start.
type Config struct {
	BotToken   string `mapstructure:"bot-token"`
	AppToken   string `mapstructure:"app-token"`
	StorePath  string `mapstructure:"store"`
	HealthPort int    `mapstructure:"health-port"`
	Debug      bool   `mapstructure:"debug"`
}

// DefaultDir is the directory searched for config.yaml and used for the
// default store location.
const DefaultDir = ".tickbot"

// Load reads configuration from config.yaml in dir (if present) and from
// the environment. A missing config file is fine; a malformed one is not.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultDir
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.BindEnv("bot-token", "SLACK_BOT_TOKEN")
	v.BindEnv("app-token", "SLACK_APP_TOKEN")
	v.BindEnv("health-port", "TICKBOT_HEALTH_PORT")
	v.BindEnv("debug", "TICKBOT_DEBUG")

	v.SetDefault("health-port", 8080)
	v.SetDefault("store", filepath.Join(dir, "checklists.json"))
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate reports missing required settings. Tokens are the only
// settings without a usable default.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("bot token not set: use --bot-token, SLACK_BOT_TOKEN, or bot-token in config.yaml")
	}
	if c.AppToken == "" {
		return errors.New("app token not set: use --app-token, SLACK_APP_TOKEN, or app-token in config.yaml")
	}
	return nil
}
