package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nstehr/ringfall/config"
	"github.com/nstehr/ringfall/rules"
)

// Strategist swaps the doctrine of the shared rules engine whenever the
// configuration file is reloaded.
type Strategist struct {
	engine *rules.Engine
	path   string
}

func NewStrategist(engine *rules.Engine, path string) *Strategist {
	return &Strategist{engine: engine, path: path}
}

// Reload reads the configuration file and swaps in its doctrine. The old
// rule set stays active on any error.
func (s *Strategist) Reload() error {
	cfg, err := config.Load(s.path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", s.path, err)
	}
	if err := s.engine.Swap(cfg.Doctrine); err != nil {
		return fmt.Errorf("swap doctrine %s: %w", cfg.Doctrine.Name, err)
	}
	return nil
}

// Start reloads on every signal received from reload. It blocks until ctx
// is cancelled.
func (s *Strategist) Start(ctx context.Context, reload <-chan os.Signal) error {
	log.Info().Str("path", s.path).Msg("strategist started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("strategist stopped")
			return nil
		case sig := <-reload:
			if err := s.Reload(); err != nil {
				log.Error().Err(err).Str("signal", sig.String()).Msg("doctrine reload failed")
				continue
			}
			log.Info().Str("doctrine", s.engine.Doctrine().Name).Msg("doctrine reloaded")
		}
	}
}
