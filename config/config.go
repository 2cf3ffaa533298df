// Package config loads the agent's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/ringfall/rules"
	"github.com/nstehr/ringfall/search"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Agent configures the process around the planner.
type Agent struct {
	Socket     string        `yaml:"socket"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
	TickBudget time.Duration `yaml:"tick_budget"`
	// Seed drives random candidate generation; 0 picks one from the clock.
	Seed int64 `yaml:"seed"`
}

// Config is the whole configuration file.
type Config struct {
	Agent    Agent          `yaml:"agent"`
	Search   search.Params  `yaml:"search"`
	Doctrine rules.Doctrine `yaml:"doctrine"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Agent: Agent{
			Socket:     "/tmp/ringfall.sock",
			LogLevel:   "info",
			LogFormat:  "console",
			TickBudget: 30 * time.Millisecond,
		},
		Search:   search.DefaultParams(),
		Doctrine: rules.DefaultDoctrine(),
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unusable values and clamps the doctrine. It also copies
// the agent's tick budget into the search parameters.
func (c *Config) Validate() error {
	switch c.Agent.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalid, c.Agent.LogFormat)
	}
	if c.Agent.Socket == "" {
		return fmt.Errorf("%w: empty socket path", ErrInvalid)
	}
	if c.Agent.TickBudget <= 0 {
		return fmt.Errorf("%w: tick_budget must be positive, got %v", ErrInvalid, c.Agent.TickBudget)
	}
	s := c.Search
	if s.ActionSeconds <= 0 || s.Actions <= 0 || s.Strategies < 0 || s.Mutations < 0 || s.BudgetCarryLimit < 0 {
		return fmt.Errorf("%w: search %+v", ErrInvalid, s)
	}
	c.Search.TickBudget = c.Agent.TickBudget
	c.Doctrine.Validate()
	return nil
}
