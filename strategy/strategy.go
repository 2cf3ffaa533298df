// Package strategy defines the short movement plans the planner searches
// over and the order layer that turns a plan into a per-tick order.
package strategy

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
)

// Obedience controls how much reactive behaviour may override the plan.
type Obedience int

const (
	Default Obedience = iota
	VerySoft
	Soft
	// Hard executes the raw plan with no reactive layers.
	Hard
)

func (o Obedience) String() string {
	switch o {
	case Default:
		return "default"
	case VerySoft:
		return "very_soft"
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("Obedience(%d)", int(o))
}

const (
	mutationScale = 0.2
	randomScale   = 2
	// standStillOdds is the 1-in-N chance a random action asks for zero velocity.
	standStillOdds = 20
)

// Action is one leg of a plan.
type Action struct {
	Velocity geom.Vec2
	Duration int // ticks
}

// Strategy is a timed sequence of velocity intentions. Strategies are values:
// Mutate and WithObedience return new strategies and never touch the receiver.
type Strategy struct {
	Actions   []Action
	StartTick int
	Obedience Obedience
	// GoTo, when set, replaces the actions with a straight run at a point.
	GoTo *geom.Vec2
}

// GetAction returns the action active at tick. Ticks past the end of the
// plan keep the last action.
func (s Strategy) GetAction(tick int) Action {
	if len(s.Actions) == 0 {
		return Action{}
	}
	elapsed := tick - s.StartTick
	for _, a := range s.Actions {
		if elapsed < a.Duration {
			return a
		}
		elapsed -= a.Duration
	}
	return s.Actions[len(s.Actions)-1]
}

// Window returns the tick range [from, to) covered by action i.
func (s Strategy) Window(i int) (from, to int) {
	from = s.StartTick
	for _, a := range s.Actions[:i] {
		from += a.Duration
	}
	return from, from + s.Actions[i].Duration
}

// Mutate perturbs the velocity of one random action. It returns the new
// strategy and the index of the changed action, or -1 if the plan has no
// actions to change.
func (s Strategy) Mutate(rng *rand.Rand, c *emulator.Constants) (Strategy, int) {
	out := s
	if len(s.Actions) == 0 {
		return out, -1
	}
	out.Actions = slices.Clone(s.Actions)
	i := rng.Intn(len(out.Actions))
	out.Actions[i].Velocity = out.Actions[i].Velocity.Add(geom.RandomUniform(rng).Scale(c.MaxUnitForwardSpeed * mutationScale))
	return out, i
}

// WithObedience returns a copy of s with a different obedience level.
func (s Strategy) WithObedience(o Obedience) Strategy {
	s.Obedience = o
	return s
}

// GenerateRandom builds a plan of n actions of the given duration with
// random velocities, occasionally standing still.
func GenerateRandom(rng *rand.Rand, c *emulator.Constants, startTick, n, duration int) Strategy {
	s := Strategy{StartTick: startTick, Actions: make([]Action, n)}
	for i := range s.Actions {
		s.Actions[i].Duration = duration
		if rng.Intn(standStillOdds) == 0 {
			continue
		}
		s.Actions[i].Velocity = geom.RandomUniform(rng).Scale(c.MaxUnitForwardSpeed * randomScale)
	}
	return s
}

// GenerateRunaway builds a plan that runs at full speed along dir.
func GenerateRunaway(c *emulator.Constants, dir geom.Vec2, startTick, n, duration int) Strategy {
	v := dir.Norm().Scale(c.MaxUnitForwardSpeed)
	s := Strategy{StartTick: startTick, Actions: make([]Action, n)}
	for i := range s.Actions {
		s.Actions[i] = Action{Velocity: v, Duration: duration}
	}
	return s
}

// NewGoTo builds a plan that heads straight for point.
func NewGoTo(point geom.Vec2, startTick int) Strategy {
	return Strategy{StartTick: startTick, GoTo: &point}
}

// PlannedVelocity is the velocity the plan asks unit u for at the world's
// current tick.
func (s Strategy) PlannedVelocity(w *emulator.World, u *emulator.Unit) geom.Vec2 {
	if s.GoTo == nil {
		return s.GetAction(w.CurrentTick).Velocity
	}
	c := w.Consts
	d := s.GoTo.Sub(u.Position)
	if step := c.MaxUnitForwardSpeed * c.Dt(); d.Len() < step {
		return d.Scale(c.TicksPerSecond)
	}
	return d.Norm().Scale(c.MaxUnitForwardSpeed)
}

func (s Strategy) String() string {
	if s.GoTo != nil {
		return fmt.Sprintf("goto(%.1f,%.1f)@%d/%s", s.GoTo.X, s.GoTo.Y, s.StartTick, s.Obedience)
	}
	return fmt.Sprintf("plan[%d]@%d/%s", len(s.Actions), s.StartTick, s.Obedience)
}
