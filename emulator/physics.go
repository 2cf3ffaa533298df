// Package emulator is a tick-exact model of the game physics used to roll
// out candidate plans. It never talks to the server; worlds are built by the
// agent from snapshots and copied freely by the planner.
package emulator

import (
	"math"

	"github.com/nstehr/ringfall/geom"
)

// minDirection is the shortest requested facing vector that still rotates a unit.
const minDirection = 1e-6

// PrepareEmulation advances everything that does not depend on this tick's
// order: projectiles and their impacts, extrapolated motion of units we do
// not control, zone damage, spawn timers and regeneration. It runs before
// EmulateOrder so impacts resolve against pre-order positions.
func (w *World) PrepareEmulation() {
	c := w.Consts
	dt := c.Dt()
	idx := c.Index()

	kept := w.Projectiles[:0]
	for _, p := range w.Projectiles {
		p.LifeTime -= dt
		if p.LifeTime <= 0 {
			continue
		}
		if id, ok := idx.ObstacleAt(p.Position); ok && !idx.Obstacle(id).CanShootThrough {
			continue
		}
		if w.projectileHit(&p) {
			continue
		}
		next := p.Position.Add(p.Velocity.Scale(dt))
		if idx.SegmentIntersectsObstacle(p.Position, next) {
			continue
		}
		p.Position = next
		kept = append(kept, p)
	}
	w.Projectiles = kept

	for i := range w.Units {
		u := &w.Units[i]
		if u.Spawning() {
			u.RemainingSpawnTime = math.Max(0, u.RemainingSpawnTime-dt)
			if u.PlayerID == w.MyID && w.spawnBlocked(u) {
				w.damage(u, c.SpawnCollisionDamagePerSecond*dt)
			}
			continue
		}
		if u.PlayerID != w.MyID {
			u.Position = u.Position.Add(u.Velocity.Scale(dt))
			continue
		}
		if u.Position.Dist(w.Zone.CurrentCenter) > w.Zone.CurrentRadius-w.ZoneDamageMargin {
			w.damage(u, c.ZoneDamagePerSecond*dt)
		}
		if w.CurrentTick >= u.HealthRegenStartTick && u.Health < c.UnitHealth {
			u.Health = math.Min(c.UnitHealth, u.Health+c.HealthRegenerationPerSecond*dt)
		}
	}
}

// projectileHit applies p's damage to the first unit its relative path
// crosses this tick.
func (w *World) projectileHit(p *Projectile) bool {
	c := w.Consts
	dt := c.Dt()
	for i := range w.Units {
		u := &w.Units[i]
		if u.ID == p.ShooterID || u.Spawning() {
			continue
		}
		if !c.FriendlyFire && u.PlayerID == p.ShooterPlayerID {
			continue
		}
		rel := p.Velocity.Sub(u.Velocity).Scale(dt)
		if geom.SegmentIntersectsCircle(p.Position, p.Position.Add(rel), u.Position, c.UnitRadius) {
			w.damage(u, c.Weapon(p.WeaponType).ProjectileDamage)
			return true
		}
	}
	return false
}

// spawnBlocked reports whether a spawning unit overlaps an obstacle it
// would collide with once it materialises.
func (w *World) spawnBlocked(u *Unit) bool {
	c := w.Consts
	idx := c.Index()
	for _, id := range idx.IntersectingIDs(u.Position) {
		o := idx.Obstacle(id)
		r := o.Radius + c.UnitRadius
		if o.Center.Dist2(u.Position) < r*r {
			return true
		}
	}
	return false
}

// damage drains shield first, then health, and restarts the regeneration delay.
func (w *World) damage(u *Unit, amount float64) {
	if amount <= 0 {
		return
	}
	absorbed := math.Min(u.Shield, amount)
	u.Shield = math.Max(0, u.Shield-absorbed)
	u.Health = math.Max(0, u.Health-(amount-absorbed))
	u.HealthRegenStartTick = w.CurrentTick + int(math.Ceil(w.Consts.HealthRegenerationDelay*w.Consts.TicksPerSecond))
}

// EmulateOrder applies one order to its unit for one tick.
func (w *World) EmulateOrder(o Order) {
	u := w.Unit(o.UnitID)
	w.updateAim(u, o.Action == ActionAim)
	target := w.ClipVelocity(o.TargetVelocity, u)
	w.MoveCollidingUnit(u, w.ApplyAcceleration(u.Velocity, target))
	w.RotateUnit(u, o.TargetDirection)
}

func (w *World) updateAim(u *Unit, aiming bool) {
	wt, ok := u.Weapon.Get()
	if !ok {
		u.Aim = 0
		return
	}
	aimTime := w.Consts.Weapon(wt).AimTime
	if aimTime <= 0 {
		if aiming {
			u.Aim = 1
		} else {
			u.Aim = 0
		}
		return
	}
	step := 1 / (aimTime * w.Consts.TicksPerSecond)
	if aiming {
		u.Aim = math.Min(1, u.Aim+step)
	} else {
		u.Aim = math.Max(0, u.Aim-step)
	}
}

// SpeedLimit returns the fastest the unit may move in direction v. Facing
// forward allows the full forward speed, facing away the backward speed,
// with the curve in between given by
//
//	limit = sqrt(proj² + fwd·back) + proj,  proj = cos(θ)·(fwd-back)/2
//
// and scaled down by the weapon's movement penalty while aiming.
func (w *World) SpeedLimit(u *Unit, v geom.Vec2) float64 {
	c := w.Consts
	if u.Spawning() {
		return c.SpawnMovementSpeed
	}
	fwd, back := c.MaxUnitForwardSpeed, c.MaxUnitBackwardSpeed
	proj := u.Direction.Norm().Dot(v.Norm()) * (fwd - back) / 2
	limit := math.Sqrt(proj*proj+fwd*back) + proj
	if wt, ok := u.Weapon.Get(); ok {
		limit *= 1 - (1-c.Weapon(wt).AimMovementSpeedModifier)*u.Aim
	}
	return math.Max(0, limit)
}

// ClipVelocity scales v down to the unit's speed envelope.
func (w *World) ClipVelocity(v geom.Vec2, u *Unit) geom.Vec2 {
	limit := w.SpeedLimit(u, v)
	if v.Len() <= limit {
		return v
	}
	return v.Norm().Scale(limit)
}

// ApplyAcceleration moves current toward target by at most one tick of acceleration.
func (w *World) ApplyAcceleration(current, target geom.Vec2) geom.Vec2 {
	maxStep := w.Consts.UnitAcceleration * w.Consts.Dt()
	diff := target.Sub(current)
	if diff.Len() <= maxStep {
		return target
	}
	return current.Add(diff.Norm().Scale(maxStep))
}

// MoveCollidingUnit sets the unit's velocity, resolves obstacle contacts and
// integrates its position. Spawning units pass through obstacles.
func (w *World) MoveCollidingUnit(u *Unit, velocity geom.Vec2) {
	u.Velocity = velocity
	if !u.Spawning() {
		w.resolveCollisions(u)
	}
	u.Position = u.Position.Add(u.Velocity.Scale(w.Consts.Dt()))
	if !u.Spawning() {
		w.resolveCollisions(u)
	}
}

// resolveCollisions pushes the unit out of every obstacle listed in its cell
// and removes the velocity component pointing into it.
func (w *World) resolveCollisions(u *Unit) {
	c := w.Consts
	idx := c.Index()
	for _, id := range idx.IntersectingIDs(u.Position) {
		o := idx.Obstacle(id)
		minDist := o.Radius + c.UnitRadius
		n := u.Position.Sub(o.Center)
		if n.Len2() >= minDist*minDist {
			continue
		}
		out := n.Norm()
		if out.IsZero() {
			out = geom.V(1, 0)
		}
		u.Position = o.Center.Add(out.Scale(minDist))
		if vn := u.Velocity.Dot(out); vn < 0 {
			u.Velocity = u.Velocity.Sub(out.Scale(vn))
		}
	}
}

// RotateUnit turns the unit toward target by at most one tick of rotation.
// Near-zero targets are ignored.
func (w *World) RotateUnit(u *Unit, target geom.Vec2) {
	if target.Len() <= minDirection {
		return
	}
	c := w.Consts
	want := target.Norm()
	cur := u.Direction.Norm()
	if cur.IsZero() {
		u.Direction = want
		return
	}

	speed := c.RotationSpeed
	if wt, ok := u.Weapon.Get(); ok {
		speed += (c.Weapon(wt).AimRotationSpeed - speed) * u.Aim
	}
	maxAngle := speed * math.Pi / 180 * c.Dt()

	angle := geom.Angle(cur, want)
	if angle <= maxAngle {
		u.Direction = want
		return
	}
	if cur.Cross(want) < 0 {
		maxAngle = -maxAngle
	}
	u.Direction = cur.Rotate(maxAngle)
}

// Tick advances the clock and shrinks the zone.
func (w *World) Tick() {
	w.CurrentTick++
	w.Zone.CurrentRadius = math.Max(0, w.Zone.CurrentRadius-w.Consts.ZoneSpeed*w.Consts.Dt())
}
