package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all keepsake configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Signal   SignalConfig   `yaml:"signal"`
	Game     GameConfig     `yaml:"game"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type OpenAIConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`      // e.g. "gpt-4o"
	MaxTokens int    `yaml:"max_tokens"` // cap per completion
}

// SignalConfig controls the simulated biosignal feed.
type SignalConfig struct {
	TickMillis  int     `yaml:"tick_millis"`  // feed update period
	Magnitude   float64 `yaml:"magnitude"`    // max per-tick drift per field
	HistorySize int     `yaml:"history_size"` // snapshots kept for scoring
}

// GameConfig controls the bandit trainer. The optimal arm is always the arm
// with the highest configured reward probability, never inferred from
// observed rewards.
type GameConfig struct {
	RewardProbabilities []float64 `yaml:"reward_probabilities"`
	MaxTrials           int       `yaml:"max_trials"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38080,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		OpenAI: OpenAIConfig{
			Model:     "gpt-4o",
			MaxTokens: 200,
		},
		Signal: SignalConfig{
			TickMillis:  1000,
			Magnitude:   5,
			HistorySize: 20,
		},
		Game: GameConfig{
			RewardProbabilities: []float64{0.3, 0.5, 0.7},
			MaxTrials:           20,
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Game.RewardProbabilities) != 3 {
		return fmt.Errorf("game.reward_probabilities must list exactly 3 arms, got %d", len(c.Game.RewardProbabilities))
	}
	for i, p := range c.Game.RewardProbabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("game.reward_probabilities[%d] = %v out of [0,1]", i, p)
		}
	}
	if c.Signal.TickMillis <= 0 {
		return fmt.Errorf("signal.tick_millis must be positive")
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
