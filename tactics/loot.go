package tactics

import (
	"math"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
	"github.com/nstehr/ringfall/rules"
)

// spiralFraction places the fallback point inside the next zone.
const spiralFraction = 0.75

type bucket struct {
	kind   emulator.LootKind
	accept func(emulator.Item) bool
}

// buckets lists the item kinds unit u still has room for.
func buckets(c *emulator.Constants, d rules.Doctrine, u *emulator.Unit) []bucket {
	var out []bucket
	if u.ShieldPotions < c.MaxShieldPotionsInInventory {
		out = append(out, bucket{kind: emulator.LootShieldPotions, accept: func(emulator.Item) bool { return true }})
	}
	pref := d.PreferredWeapon
	if pref < 0 || pref >= len(c.Weapons) {
		return out
	}
	if !u.Weapon.Is(pref) {
		out = append(out, bucket{kind: emulator.LootWeapon, accept: func(it emulator.Item) bool { return it.WeaponType == pref }})
	}
	if u.AmmoFor(pref) < c.Weapon(pref).MaxInventoryAmmo {
		out = append(out, bucket{kind: emulator.LootAmmo, accept: func(it emulator.Item) bool { return it.WeaponType == pref }})
	}
	return out
}

func (b bucket) ids(w *emulator.World) []int {
	if w.LootByKind != nil {
		return w.LootByKind[b.kind]
	}
	var ids []int
	for _, l := range w.Loot {
		if l.Item.Kind == b.kind {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// TargetLoot picks the nearest useful loot for unit id. Loot must lie well
// inside the current zone. Unless relaxed, it must also sit where the unit
// would not lose the exchange with nearby enemies and be reachable without
// crossing an aiming teammate's line of fire.
func TargetLoot(w *emulator.World, d rules.Doctrine, id int, relaxed bool) (int, bool) {
	u := w.Unit(id)
	zone := w.Zone
	bestID, bestDist := 0, math.Inf(1)
	for _, b := range buckets(w.Consts, d, u) {
		for _, lootID := range b.ids(w) {
			l := w.LootItem(lootID)
			if !b.accept(l.Item) {
				continue
			}
			if l.Position.Dist(zone.CurrentCenter) >= zone.CurrentRadius-d.LootZoneMargin {
				continue
			}
			dist := l.Position.Dist(u.Position)
			if dist >= bestDist {
				continue
			}
			if !relaxed && (CombatSafety(w, id, l.Position) < 0 || crossesFriendlyFire(w, u, l.Position)) {
				continue
			}
			bestID, bestDist = lootID, dist
		}
	}
	return bestID, !math.IsInf(bestDist, 1)
}

// crossesFriendlyFire reports whether walking straight from u to p cuts
// through the firing line of a teammate that is aiming.
func crossesFriendlyFire(w *emulator.World, u *emulator.Unit, p geom.Vec2) bool {
	for i := range w.Units {
		m := &w.Units[i]
		if m.ID == u.ID || m.PlayerID != u.PlayerID || m.Aim <= 0 {
			continue
		}
		if _, ok := canThreaten(m); !ok {
			continue
		}
		end := m.Position.Add(m.Direction.Norm().Scale(CombatRadius(w.Consts, m)))
		if geom.SegmentsCross(u.Position, p, m.Position, end) {
			return true
		}
	}
	return false
}

// AssignTargets indexes loot by kind and caches the strict loot choice of
// every controlled unit for this decision cycle.
func AssignTargets(w *emulator.World, d rules.Doctrine) {
	w.IndexLoot()
	w.LootTargets = make(map[int]emulator.LootChoice)
	for _, id := range w.MyUnits() {
		lootID, ok := TargetLoot(w, d, id, false)
		w.LootTargets[id] = emulator.LootChoice{ID: lootID, OK: ok}
	}
}

// TargetLootCached returns the cached choice for unit id, computing it if
// the unit was not assigned this cycle.
func TargetLootCached(w *emulator.World, d rules.Doctrine, id int) (int, bool) {
	if ch, ok := w.LootTargets[id]; ok {
		return ch.ID, ch.OK
	}
	return TargetLoot(w, d, id, false)
}

// Target is where unit id should head: its loot, or the spiral point.
func Target(w *emulator.World, d rules.Doctrine, id int) geom.Vec2 {
	if lootID, ok := TargetLootCached(w, d, id); ok {
		return w.LootItem(lootID).Position
	}
	return SpiralPoint(w, id)
}

// SpiralPoint is the fallback destination circling the next zone center.
func SpiralPoint(w *emulator.World, id int) geom.Vec2 {
	z := w.Zone
	return z.NextCenter.Add(geom.FromAngle(w.State(id).SpiralAngle).Scale(spiralFraction * z.NextRadius))
}
