package tactics

import (
	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/rules"
)

// UpdateState advances the per-unit state after unit id executed o: the
// automaton transition, the spiral angle and the scan rotation clock.
func UpdateState(w *emulator.World, engine *rules.Engine, id int, o emulator.Order) {
	c := w.Consts
	s := w.State(id)
	s.Automaton = engine.Next(rules.NewUnitEnv(w.Unit(id), s.Automaton, c))
	if r := spiralFraction * w.Zone.NextRadius; r > 0 {
		s.SpiralAngle += c.MaxUnitForwardSpeed * c.Dt() / r
	}
	if o.IsRotationStart {
		s.LastRotationTick = w.CurrentTick
	}
	w.SetState(id, s)
}
