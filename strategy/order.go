package strategy

import (
	"math"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
	"github.com/nstehr/ringfall/rules"
	"github.com/nstehr/ringfall/tactics"
)

const fullAim = 1 - 1e-9

// GetOrder derives the order unit id issues this tick when following s.
// Layers, first match wins: a Hard plan runs verbatim; gathering units only
// loot and move; fighting units engage the nearest visible enemy; then
// pickup; then plain movement with scan rotation. Simulated orders skip the
// line-of-sight raycast and never relax the loot filter.
func (s Strategy) GetOrder(w *emulator.World, d rules.Doctrine, id int, forSimulation bool) emulator.Order {
	u := w.Unit(id)
	plan := s.PlannedVelocity(w, u)
	o := emulator.Order{UnitID: id, TargetVelocity: plan, TargetDirection: facing(plan, u.Direction)}

	if s.Obedience == Hard {
		return o
	}
	if w.State(id).Automaton == emulator.Fight {
		if fight, ok := s.fightOrder(w, d, u, o, forSimulation); ok {
			return fight
		}
	}
	if pickup, ok := pickupOrder(w, d, u, o, forSimulation); ok {
		return pickup
	}
	return moveOrder(w, d, u, o)
}

// facing looks along the movement, or keeps the current heading when standing.
func facing(plan, current geom.Vec2) geom.Vec2 {
	if plan.IsZero() {
		return current
	}
	return plan.Norm()
}

// nearestEnemy returns the closest opponent actually seen this tick.
func nearestEnemy(w *emulator.World, u *emulator.Unit) *emulator.Unit {
	var best *emulator.Unit
	bestDist := math.Inf(1)
	for i := range w.Units {
		o := &w.Units[i]
		if o.PlayerID == u.PlayerID || o.Imaginable {
			continue
		}
		if d := o.Position.Dist2(u.Position); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

func (s Strategy) fightOrder(w *emulator.World, d rules.Doctrine, u *emulator.Unit, o emulator.Order, forSimulation bool) (emulator.Order, bool) {
	c := w.Consts
	wt, armed := u.Weapon.Get()
	if !armed || u.AmmoFor(wt) == 0 {
		return o, false
	}
	enemy := nearestEnemy(w, u)
	if enemy == nil || enemy.Spawning() {
		return o, false
	}
	dist := enemy.Position.Dist(u.Position)
	if dist > math.Max(tactics.CombatRadius(c, u), tactics.CombatRadius(c, enemy)) {
		return o, false
	}

	wp := c.Weapon(wt)
	aim := geom.InterceptDirection(u.Position, enemy.Position, enemy.Velocity, wp.ProjectileSpeed)
	if frac := s.cropFraction(d); frac > 0 && !o.TargetVelocity.IsZero() {
		aim = geom.CropDirection(aim, o.TargetVelocity, frac*wp.AimFieldOfView/2*math.Pi/180)
	}
	o.TargetDirection = aim

	ticksToShot := u.NextShotTick - w.CurrentTick
	if float64(ticksToShot) > wp.AimTime*c.TicksPerSecond {
		return o, true
	}
	o.Action = emulator.ActionAim
	o.Shoot = u.Aim >= fullAim &&
		ticksToShot <= 0 &&
		dist <= wp.CombatRadius() &&
		geom.Angle(u.Direction, aim) <= wp.AimFieldOfView/2*math.Pi/180 &&
		!friendlyInLine(w, u, u.Direction, dist) &&
		(forSimulation || !c.Index().SegmentIntersectsObstacle(u.Position, enemy.Position))
	return o, true
}

// cropFraction is the share of the aim field of view a soft plan allows
// the aim to deviate from its movement, or 0 for no cropping.
func (s Strategy) cropFraction(d rules.Doctrine) float64 {
	switch s.Obedience {
	case Soft:
		return d.SoftCropFraction
	case VerySoft:
		return d.VerySoftCropFraction
	}
	return 0
}

// friendlyInLine reports whether a teammate's body is on the firing line.
func friendlyInLine(w *emulator.World, u *emulator.Unit, dir geom.Vec2, length float64) bool {
	end := u.Position.Add(dir.Norm().Scale(length))
	for i := range w.Units {
		m := &w.Units[i]
		if m.ID == u.ID || m.PlayerID != u.PlayerID {
			continue
		}
		if geom.SegmentIntersectsCircle(u.Position, end, m.Position, w.Consts.UnitRadius) {
			return true
		}
	}
	return false
}

func pickupOrder(w *emulator.World, d rules.Doctrine, u *emulator.Unit, o emulator.Order, forSimulation bool) (emulator.Order, bool) {
	lootID, ok := tactics.TargetLootCached(w, d, u.ID)
	if !ok && !forSimulation {
		lootID, ok = tactics.TargetLoot(w, d, u.ID, true)
	}
	if !ok {
		return o, false
	}
	if w.LootItem(lootID).Position.Dist(u.Position) > w.Consts.UnitRadius {
		return o, false
	}
	o.Action = emulator.ActionPickup
	o.LootID = lootID
	return o, true
}

func moveOrder(w *emulator.World, d rules.Doctrine, u *emulator.Unit, o emulator.Order) emulator.Order {
	c := w.Consts
	period := int(math.Round(d.ScanPeriodSeconds * c.TicksPerSecond))
	hold := int(math.Round(d.ScanHoldSeconds * c.TicksPerSecond))
	since := w.CurrentTick - w.State(u.ID).LastRotationTick
	switch {
	case since >= period:
		o.IsRotationStart = true
		o.TargetDirection = u.Direction.Rot90()
	case since < hold:
		o.TargetDirection = u.Direction.Rot90()
	}

	if u.ShieldPotions > 0 && u.Shield+c.ShieldPerPotion <= c.MaxShield {
		o.Action = emulator.ActionUseShieldPotion
	}
	return o
}
