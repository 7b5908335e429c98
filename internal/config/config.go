// Package config loads the JSON settings file shared by all commands.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/petasbytes/mlbchat/internal/provider"
)

// Claude holds credentials and request parameters for the Anthropic API.
type Claude struct {
	APIKey  string `mapstructure:"api_key"`
	Version string `mapstructure:"version"`
	Model   string `mapstructure:"model"`
	// MaxTokens and Temperature apply to every Messages request.
	MaxTokens   int64   `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// MLBStats locates the remote baseball statistics MCP server.
type MLBStats struct {
	Server string `mapstructure:"server"`
}

// Agent tunes the tool-using conversation loop.
type Agent struct {
	// MaxAssistantMessages is the ceiling on assistant-originated messages
	// before the loop is forced to terminate.
	MaxAssistantMessages int `mapstructure:"max_assistant_messages"`
}

type Config struct {
	Claude   Claude   `mapstructure:"claude"`
	MLBStats MLBStats `mapstructure:"mlbstats"`
	Agent    Agent    `mapstructure:"agent"`
}

// Load reads and validates the settings file at path.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("claude.model", string(provider.DefaultModel))
	v.SetDefault("claude.max_tokens", 1000)
	v.SetDefault("claude.temperature", 0.15)
	v.SetDefault("agent.max_assistant_messages", 10)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode settings %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Claude.APIKey == "" {
		return fmt.Errorf("settings: claude.api_key is required")
	}
	if c.MLBStats.Server == "" {
		return fmt.Errorf("settings: mlbstats.server is required")
	}
	if c.Agent.MaxAssistantMessages <= 0 {
		return fmt.Errorf("settings: agent.max_assistant_messages must be positive")
	}
	return nil
}
