// Package memory fuses what the agent sees each tick with what it saw
// before: loot, enemy units and projectiles that left the field of view,
// enemies heard but never seen, and the automaton state of controlled units.
package memory

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
	"github.com/nstehr/ringfall/rules"
)

const (
	// soundMatchFraction of a sound's travel distance is how close a
	// remembered unit must be to be taken as the sound's source.
	soundMatchFraction = 0.25
	// phantomMergeRadii is how close, in unit radii, a seen enemy must be
	// to a phantom to replace it.
	phantomMergeRadii = 5
)

type rememberedUnit struct {
	unit     emulator.Unit
	seenTick int
}

// Memory is the only perception state kept between decision cycles. It is
// not safe for concurrent use.
type Memory struct {
	doctrine rules.Doctrine

	lastTick int
	updated  bool

	projectiles map[int]emulator.Projectile
	// Two loot caches cleared half a period apart, so an item seen just
	// before a clear survives in the other cache.
	loot       [2]map[int]emulator.Loot
	lootEpochs [2]int
	forgotten  map[int]int

	units       map[int]rememberedUnit
	nextPhantom int

	states map[int]emulator.UnitState
}

// New returns an empty memory tuned by d.
func New(d rules.Doctrine) *Memory {
	return &Memory{
		doctrine:    d,
		projectiles: make(map[int]emulator.Projectile),
		loot:        [2]map[int]emulator.Loot{make(map[int]emulator.Loot), make(map[int]emulator.Loot)},
		lootEpochs:  [2]int{-1, -1},
		forgotten:   make(map[int]int),
		units:       make(map[int]rememberedUnit),
		nextPhantom: -1,
		states:      make(map[int]emulator.UnitState),
	}
}

// SetDoctrine replaces the tuning used from the next Update on.
func (m *Memory) SetDoctrine(d rules.Doctrine) { m.doctrine = d }

func (m *Memory) lootPeriod(c *emulator.Constants) int {
	return max(2, int(math.Round(m.doctrine.LootMemorySeconds*c.TicksPerSecond)))
}

func (m *Memory) unitHorizon(c *emulator.Constants) int {
	return int(math.Round(m.doctrine.MemoryUnitSeconds * c.TicksPerSecond))
}

// Update folds snapshot w into memory. Calling it again for the same tick
// does nothing.
func (m *Memory) Update(w *emulator.World) {
	if m.updated && w.CurrentTick == m.lastTick {
		return
	}
	elapsed := 0
	if m.updated {
		elapsed = max(0, w.CurrentTick-m.lastTick)
	}
	m.updateProjectiles(w, elapsed)
	m.updateLoot(w)
	m.updateUnits(w, elapsed)
	for _, id := range w.MyUnits() {
		if _, ok := m.states[id]; !ok {
			m.states[id] = emulator.UnitState{Automaton: emulator.ResourceGathering, LastRotationTick: w.CurrentTick}
		}
	}
	m.lastTick = w.CurrentTick
	m.updated = true
}

func (m *Memory) updateProjectiles(w *emulator.World, elapsed int) {
	c := w.Consts
	dt := c.Dt() * float64(elapsed)
	for id, p := range m.projectiles {
		if _, ok := w.FindProjectile(id); ok {
			continue
		}
		next := p.Position.Add(p.Velocity.Scale(dt))
		p.LifeTime -= dt
		if p.LifeTime <= 0 || c.Index().SegmentIntersectsObstacle(p.Position, next) || visible(w, next) {
			delete(m.projectiles, id)
			continue
		}
		p.Position = next
		m.projectiles[id] = p
	}
	for _, p := range w.Projectiles {
		m.projectiles[p.ID] = p
	}
}

func (m *Memory) updateLoot(w *emulator.World) {
	period := m.lootPeriod(w.Consts)
	epochs := [2]int{w.CurrentTick / period, (w.CurrentTick + period/2) / period}
	for k := range m.loot {
		if epochs[k] != m.lootEpochs[k] {
			clear(m.loot[k])
			m.lootEpochs[k] = epochs[k]
		}
	}
	for id, t := range m.forgotten {
		if w.CurrentTick-t >= period {
			delete(m.forgotten, id)
		}
	}

	for k := range m.loot {
		for id, l := range m.loot[k] {
			if _, ok := w.FindLoot(id); !ok && visible(w, l.Position) {
				delete(m.loot[k], id)
			}
		}
	}
	for _, l := range w.Loot {
		if _, ok := m.forgotten[l.ID]; ok {
			continue
		}
		m.loot[0][l.ID] = l
		m.loot[1][l.ID] = l
	}
}

func (m *Memory) updateUnits(w *emulator.World, elapsed int) {
	c := w.Consts
	horizon := m.unitHorizon(c)
	dt := c.Dt() * float64(elapsed)

	for _, u := range w.Units {
		if u.PlayerID == w.MyID {
			continue
		}
		m.units[u.ID] = rememberedUnit{unit: u, seenTick: w.CurrentTick}
		for id, r := range m.units {
			if id < 0 && r.unit.Position.Dist(u.Position) < phantomMergeRadii*c.UnitRadius {
				delete(m.units, id)
			}
		}
	}

	for id, r := range m.units {
		if _, ok := w.FindUnit(id); ok {
			continue
		}
		if w.CurrentTick-r.seenTick > horizon || visible(w, r.unit.Position) {
			delete(m.units, id)
			continue
		}
		next := r.unit.Position.Add(r.unit.Velocity.Scale(dt))
		if _, blocked := c.Index().ObstacleAt(next); blocked {
			r.unit.Velocity = geom.Vec2{}
		} else {
			r.unit.Position = next
		}
		r.unit.RemainingSpawnTime = math.Max(0, r.unit.RemainingSpawnTime-dt)
		m.units[id] = r
	}
}

// visible reports whether p is inside the field of view of a controlled
// unit. The view cone narrows from the base field of view toward the
// weapon's aiming field of view as aim progresses.
func visible(w *emulator.World, p geom.Vec2) bool {
	c := w.Consts
	for i := range w.Units {
		u := &w.Units[i]
		if u.PlayerID != w.MyID {
			continue
		}
		d := p.Sub(u.Position)
		if d.Len() > c.ViewDistance {
			continue
		}
		fov := c.FieldOfView
		if wt, ok := u.Weapon.Get(); ok {
			fov += (c.Weapon(wt).AimFieldOfView - fov) * u.Aim
		}
		if !d.IsZero() && geom.Angle(u.Direction, d) > fov/2*math.Pi/180 {
			continue
		}
		if c.ViewBlocking && c.Index().SightBlocked(u.Position, p) {
			continue
		}
		return true
	}
	return false
}

// InjectKnowledge adds remembered loot, projectiles and units missing from
// w, marking the units as imaginable, and restores the automaton state of
// controlled units.
func (m *Memory) InjectKnowledge(w *emulator.World) {
	for k := range m.loot {
		for id, l := range m.loot[k] {
			if _, ok := w.FindLoot(id); !ok {
				w.PutLoot(l)
			}
		}
	}
	for id, p := range m.projectiles {
		if _, ok := w.FindProjectile(id); !ok {
			w.PutProjectile(p)
		}
	}
	for id, r := range m.units {
		if _, ok := w.FindUnit(id); ok {
			continue
		}
		u := r.unit
		u.Imaginable = true
		w.PutUnit(u)
	}
	for _, id := range w.MyUnits() {
		if s, ok := m.states[id]; ok {
			w.SetState(id, s)
		}
	}
}

// UpdateSoundKnowledge uses a sound heard by a controlled unit to place an
// enemy that is not in view. A remembered unit near the sound is moved to
// it; otherwise a phantom enemy with full stats and the strongest weapon is
// assumed there. Sounds next to controlled units are ignored.
func (m *Memory) UpdateSoundKnowledge(w *emulator.World, s emulator.Sound) {
	c := w.Consts
	if s.TypeIndex < 0 || s.TypeIndex >= len(c.Sounds) {
		log.Warn().Int("type", s.TypeIndex).Int("tick", w.CurrentTick).Msg("unknown sound type")
		return
	}
	props := c.Sounds[s.TypeIndex]
	for i := range w.Units {
		u := &w.Units[i]
		if u.PlayerID == w.MyID && u.Position.Dist(s.Position) <= props.Offset+2*c.UnitRadius {
			return
		}
		if u.PlayerID != w.MyID && u.Position.Dist(s.Position) <= props.Offset+c.UnitRadius {
			return
		}
	}

	threshold := soundMatchFraction * props.Distance
	bestID, bestDist := 0, math.Inf(1)
	for id, r := range m.units {
		if d := r.unit.Position.Dist(s.Position); d < bestDist {
			bestID, bestDist = id, d
		}
	}
	if bestDist <= threshold {
		r := m.units[bestID]
		r.unit.Position = s.Position
		r.unit.Velocity = geom.Vec2{}
		r.seenTick = w.CurrentTick
		m.units[bestID] = r
		return
	}

	u := emulator.Unit{
		ID:       m.nextPhantom,
		PlayerID: -1,
		Position: s.Position,
		Health:   c.UnitHealth,
		Shield:   c.MaxShield,
		Ammo:     make([]int, len(c.Weapons)),
	}
	if listener, ok := w.FindUnit(s.UnitID); ok {
		u.Direction = listener.Position.Sub(s.Position).Norm()
	}
	if wt, ok := c.StrongestWeapon(); ok {
		u.Weapon = emulator.Armed(wt)
		u.Ammo[wt] = c.Weapon(wt).MaxInventoryAmmo
	}
	m.units[u.ID] = rememberedUnit{unit: u, seenTick: w.CurrentTick}
	m.nextPhantom--
	log.Debug().Int("id", u.ID).Int("sound", s.TypeIndex).Int("tick", w.CurrentTick).Msg("phantom enemy from sound")
}

// ForgetLoot drops a picked-up item from both caches and keeps it out for
// one full memory period even if it is still seen.
func (m *Memory) ForgetLoot(id int) {
	delete(m.loot[0], id)
	delete(m.loot[1], id)
	m.forgotten[id] = m.lastTick
}

// RememberState records the automaton state committed for unit id.
func (m *Memory) RememberState(id int, s emulator.UnitState) {
	m.states[id] = s
}

// State returns the remembered automaton state of unit id.
func (m *Memory) State(id int) (emulator.UnitState, bool) {
	s, ok := m.states[id]
	return s, ok
}
