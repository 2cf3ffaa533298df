// Package search picks each controlled unit's order by rolling candidate
// strategies through the emulator until the tick's time budget runs out.
package search

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/evaluation"
	"github.com/nstehr/ringfall/memory"
	"github.com/nstehr/ringfall/rules"
	"github.com/nstehr/ringfall/strategy"
	"github.com/nstehr/ringfall/tactics"
)

// Params tunes the search.
type Params struct {
	ActionSeconds float64 `yaml:"action_seconds"`
	Actions       int     `yaml:"actions"`
	Strategies    int     `yaml:"strategies"`
	Mutations     int     `yaml:"mutations"`
	// BudgetCarryLimit caps how much unused time accumulates across units
	// and ticks.
	BudgetCarryLimit time.Duration `yaml:"budget_carry_limit"`
	// TickBudget is the time for the whole team in one tick.
	TickBudget time.Duration `yaml:"-"`
}

// DefaultParams returns the standard search shape: five half-second
// actions, up to a hundred random candidates, five mutations carried over.
func DefaultParams() Params {
	return Params{
		ActionSeconds:    0.5,
		Actions:          5,
		Strategies:       100,
		Mutations:        5,
		BudgetCarryLimit: 100 * time.Millisecond,
		TickBudget:       30 * time.Millisecond,
	}
}

// State is everything the search carries from one tick to the next for
// one game. It is owned by the caller and not safe for concurrent use.
type State struct {
	Memory *memory.Memory

	pools map[int][]strategy.Strategy
	carry time.Duration
	rng   *rand.Rand
}

// NewState returns a fresh state. Random candidates are drawn from seed.
func NewState(d rules.Doctrine, seed int64) *State {
	return &State{
		Memory: memory.New(d),
		pools:  make(map[int][]strategy.Strategy),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Pool returns the strategies carried over for unit id.
func (st *State) Pool(id int) []strategy.Strategy { return st.pools[id] }

// UnitReport describes how one unit's order was chosen.
type UnitReport struct {
	UnitID     int
	Forced     int
	Candidates int
	Best       evaluation.Score
	Strategy   string
	Elapsed    time.Duration
}

// Decision is the outcome of one tick.
type Decision struct {
	Orders  []emulator.Order
	Reports []UnitReport
}

// Searcher runs the per-tick search.
type Searcher struct {
	params Params
	engine *rules.Engine
	clock  Clock
}

// NewSearcher returns a searcher. A nil clock uses the system clock.
func NewSearcher(p Params, engine *rules.Engine, clock Clock) *Searcher {
	if clock == nil {
		clock = SystemClock
	}
	return &Searcher{params: p, engine: engine, clock: clock}
}

// Decide folds w into st's memory, enriches w with what is remembered, and
// returns one order per controlled unit. w is modified.
func (s *Searcher) Decide(st *State, w *emulator.World) Decision {
	d := s.engine.Doctrine()
	st.Memory.SetDoctrine(d)
	st.Memory.Update(w)
	for _, snd := range w.Sounds {
		st.Memory.UpdateSoundKnowledge(w, snd)
	}
	st.Memory.InjectKnowledge(w)

	w.ZoneDamageMargin = d.ZoneDamageMarginRadii * w.Consts.UnitRadius
	tactics.AssignTargets(w, d)

	ev := evaluation.NewEvaluator(s.engine)
	ids := w.MyUnits()
	pools := make(map[int][]strategy.Strategy, len(ids))
	var dec Decision
	for _, id := range ids {
		o, pool, r := s.decideUnit(st, ev, w, id, len(ids))
		pools[id] = pool
		dec.Orders = append(dec.Orders, o)
		dec.Reports = append(dec.Reports, r)
	}
	st.pools = pools
	return dec
}

func (s *Searcher) perUnitBudget(c *emulator.Constants, units int) time.Duration {
	team := c.TeamSize
	if team <= 0 {
		team = max(1, units)
	}
	return s.params.TickBudget / time.Duration(team)
}

func (s *Searcher) decideUnit(st *State, ev *evaluation.Evaluator, w *emulator.World, id, units int) (emulator.Order, []strategy.Strategy, UnitReport) {
	c := w.Consts
	p := s.params
	u := w.Unit(id)
	tick := w.CurrentTick
	n := max(1, p.Actions)
	dur := max(1, int(math.Round(p.ActionSeconds*c.TicksPerSecond)))
	until := tick + n*dur

	forced := append([]strategy.Strategy(nil), st.pools[id]...)
	for _, proj := range tactics.ThreateningProjectiles(w, id) {
		dir := proj.Velocity.Rot90()
		forced = append(forced,
			strategy.GenerateRunaway(c, dir, tick, n, dur),
			strategy.GenerateRunaway(c, dir.Neg(), tick, n, dur))
	}
	forced = append(forced, strategy.NewGoTo(tactics.Target(w, ev.Doctrine, id), tick))
	relaxed := tactics.SpiralPoint(w, id)
	if lootID, ok := tactics.TargetLoot(w, ev.Doctrine, id, true); ok {
		relaxed = w.LootItem(lootID).Position
	}
	forced = append(forced, strategy.NewGoTo(relaxed, tick))

	limit := max(p.BudgetCarryLimit, s.perUnitBudget(c, units))
	st.carry = min(st.carry+s.perUnitBudget(c, units), limit)

	start := s.clock.Now()
	var (
		best      strategy.Strategy
		bestScore evaluation.Score
		evaluated int
	)
	for i := 0; i < p.Strategies+len(forced); i++ {
		if i >= len(forced) && s.clock.Now().Sub(start) > st.carry {
			break
		}
		var cand strategy.Strategy
		if i < len(forced) {
			cand = forced[i]
		} else {
			cand = strategy.GenerateRandom(st.rng, c, tick, n, dur)
		}
		score := ev.EvaluateStrategy(cand, w, id, until)
		if evaluated == 0 || score.Less(bestScore) {
			best, bestScore = cand, score
		}
		evaluated++
	}

	// A plan that still bleeds beyond the current damage may be beaten by
	// a forced plan followed more literally.
	baseline := (c.UnitHealth + c.MaxShield - u.Health - u.Shield) * float64(until-tick)
	if bestScore.HealthLoss > baseline+1e-6 {
		for _, ob := range []strategy.Obedience{strategy.VerySoft, strategy.Soft, strategy.Hard} {
			for _, f := range forced {
				cand := f.WithObedience(ob)
				score := ev.EvaluateStrategy(cand, w, id, until)
				evaluated++
				if score.HealthLoss >= bestScore.HealthLoss-1e-6 {
					continue
				}
				if score.Less(bestScore) {
					best, bestScore = cand, score
				}
			}
		}
	}

	o := best.GetOrder(w, ev.Doctrine, id, false)
	tactics.UpdateState(w, s.engine, id, o)
	st.Memory.RememberState(id, w.State(id))
	if o.Action == emulator.ActionPickup && u.Aim < 1e-4 {
		st.Memory.ForgetLoot(o.LootID)
	}

	pool := []strategy.Strategy{best}
	for range p.Mutations {
		if m, i := best.Mutate(st.rng, c); i >= 0 {
			pool = append(pool, m)
		}
	}

	elapsed := s.clock.Now().Sub(start)
	st.carry = max(st.carry-elapsed, -limit)

	r := UnitReport{
		UnitID:     id,
		Forced:     len(forced),
		Candidates: evaluated,
		Best:       bestScore,
		Strategy:   best.String(),
		Elapsed:    elapsed,
	}
	log.Debug().
		Int("tick", tick).
		Int("unit", id).
		Int("forced", r.Forced).
		Int("candidates", r.Candidates).
		Stringer("score", bestScore).
		Str("strategy", r.Strategy).
		Str("state", w.State(id).Automaton.String()).
		Dur("elapsed", elapsed).
		Msg("unit planned")
	return o, pool, r
}
