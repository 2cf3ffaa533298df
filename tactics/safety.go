// Package tactics holds the situational judgements shared by the planner,
// its evaluator and its order layer: how dangerous a spot is, which loot
// is worth walking to and where an idle unit should drift.
package tactics

import (
	"math"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
)

// CombatRadius is how far the unit's equipped weapon reaches, 0 if unarmed.
func CombatRadius(c *emulator.Constants, u *emulator.Unit) float64 {
	wt, ok := u.Weapon.Get()
	if !ok {
		return 0
	}
	return c.Weapon(wt).CombatRadius()
}

// Power is the share of a target's effective hit points a weapon removes
// per second.
func Power(c *emulator.Constants, weapon int, targetEHP float64) float64 {
	wp := c.Weapon(weapon)
	return wp.RoundsPerSecond * wp.ProjectileDamage / math.Max(targetEHP, 1)
}

// canThreaten reports whether u could shoot right now.
func canThreaten(u *emulator.Unit) (int, bool) {
	wt, ok := u.Weapon.Get()
	if !ok || u.AmmoFor(wt) == 0 || u.Spawning() {
		return 0, false
	}
	return wt, true
}

// CombatSafety estimates the damage race for unit id if it stood at pos.
// Every armed opponent whose reach covers pos subtracts its power against
// us with quadratic falloff; outside resource gathering we add our own
// power against the nearest of them. Positive means we win the exchange.
func CombatSafety(w *emulator.World, id int, pos geom.Vec2) float64 {
	c := w.Consts
	me := w.Unit(id)
	myEHP := me.Health + me.Shield

	safety := 0.0
	var nearest *emulator.Unit
	nearestDist := math.Inf(1)
	for i := range w.Units {
		o := &w.Units[i]
		if o.PlayerID == me.PlayerID {
			continue
		}
		wt, ok := canThreaten(o)
		if !ok {
			continue
		}
		r := c.Weapon(wt).CombatRadius()
		d := o.Position.Dist(pos)
		if d >= r {
			continue
		}
		f := (r - d) / r
		safety -= Power(c, wt, myEHP) * f * f
		if d < nearestDist {
			nearest, nearestDist = o, d
		}
	}

	if nearest == nil || w.State(id).Automaton == emulator.ResourceGathering {
		return safety
	}
	if wt, ok := canThreaten(me); ok {
		if r := c.Weapon(wt).CombatRadius(); nearestDist < r {
			f := (r - nearestDist) / r
			safety += Power(c, wt, nearest.Health+nearest.Shield) * f * f
		}
	}
	return safety
}

// ThreateningProjectiles returns the projectiles whose remaining flight
// passes through unit id.
func ThreateningProjectiles(w *emulator.World, id int) []emulator.Projectile {
	c := w.Consts
	me := w.Unit(id)
	var out []emulator.Projectile
	for _, p := range w.Projectiles {
		if p.ShooterID == me.ID || (!c.FriendlyFire && p.ShooterPlayerID == me.PlayerID) {
			continue
		}
		end := p.Position.Add(p.Velocity.Scale(p.LifeTime))
		if geom.SegmentIntersectsCircle(p.Position, end, me.Position, c.UnitRadius) {
			out = append(out, p)
		}
	}
	return out
}
