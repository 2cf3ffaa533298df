package evaluation

import (
	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/rules"
	"github.com/nstehr/ringfall/strategy"
	"github.com/nstehr/ringfall/tactics"
)

// Evaluator scores worlds for one doctrine and advances automaton state
// with the rules engine during rollouts.
type Evaluator struct {
	Doctrine rules.Doctrine
	Engine   *rules.Engine
}

// NewEvaluator snapshots the engine's current doctrine.
func NewEvaluator(engine *rules.Engine) *Evaluator {
	return &Evaluator{Doctrine: engine.Doctrine(), Engine: engine}
}

// EvaluateWorld scores unit id's situation. Gathering units ignore combat
// danger; fighting units include the negated combat safety of their spot.
// Standing on the target earns a bonus so arriving beats circling.
func (e *Evaluator) EvaluateWorld(w *emulator.World, id int) Score {
	c := w.Consts
	u := w.Unit(id)

	var s Score
	s.HealthLoss = c.UnitHealth + c.MaxShield - u.Health - u.Shield
	if w.State(id).Automaton == emulator.Fight {
		s.Danger = Safety(-tactics.CombatSafety(w, id, u.Position))
	}
	s.Distance = u.Position.Dist(tactics.Target(w, e.Doctrine, id))
	if s.Distance < c.UnitRadius/2 {
		s.Distance -= e.Doctrine.PickupBonus
	}
	return s
}

// EvaluateStrategy rolls st out for unit id on a copy of w until untilTick
// and returns the summed per-tick score.
func (e *Evaluator) EvaluateStrategy(st strategy.Strategy, w *emulator.World, id, untilTick int) Score {
	var total Score
	e.rollout(st, w, id, untilTick, func(s Score) { total = total.Add(s) })
	return total
}

// Trace is EvaluateStrategy returning each tick's score separately.
func (e *Evaluator) Trace(st strategy.Strategy, w *emulator.World, id, untilTick int) []Score {
	var scores []Score
	e.rollout(st, w, id, untilTick, func(s Score) { scores = append(scores, s) })
	return scores
}

func (e *Evaluator) rollout(st strategy.Strategy, w *emulator.World, id, untilTick int, emit func(Score)) {
	cur := w.Copy()
	for cur.CurrentTick < untilTick {
		cur.PrepareEmulation()
		o := st.GetOrder(cur, e.Doctrine, id, true)
		cur.EmulateOrder(o)
		tactics.UpdateState(cur, e.Engine, id, o)
		cur.Tick()
		emit(e.EvaluateWorld(cur, id))
	}
}
