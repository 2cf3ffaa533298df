package emulator

import (
	"fmt"
	"slices"
	"sort"

	"github.com/nstehr/ringfall/geom"
)

// WeaponRef is an optional weapon type index. The zero value means unarmed.
type WeaponRef struct {
	index int
	ok    bool
}

// Armed returns a reference to weapon type i.
func Armed(i int) WeaponRef { return WeaponRef{index: i, ok: true} }

// Get returns the weapon type and whether one is equipped.
func (w WeaponRef) Get() (int, bool) { return w.index, w.ok }

// Is reports whether the reference names weapon type i.
func (w WeaponRef) Is(i int) bool { return w.ok && w.index == i }

func (w WeaponRef) String() string {
	if !w.ok {
		return "none"
	}
	return fmt.Sprintf("%d", w.index)
}

// Unit is a single soldier on the field.
type Unit struct {
	ID                   int
	PlayerID             int
	Position             geom.Vec2
	Direction            geom.Vec2
	Velocity             geom.Vec2
	Health               float64
	Shield               float64
	ExtraLives           int
	RemainingSpawnTime   float64
	Aim                  float64
	Weapon               WeaponRef
	NextShotTick         int
	HealthRegenStartTick int
	// Ammo is indexed by weapon type. The slice is shared between world
	// copies and must be replaced, never written in place.
	Ammo          []int
	ShieldPotions int
	// Imaginable marks units reconstructed from memory or sound.
	Imaginable bool
}

// Spawning reports whether the unit is still spawn-protected.
func (u *Unit) Spawning() bool { return u.RemainingSpawnTime > 0 }

// AmmoFor returns the rounds held for weapon type i.
func (u *Unit) AmmoFor(i int) int {
	if i < 0 || i >= len(u.Ammo) {
		return 0
	}
	return u.Ammo[i]
}

// Projectile is a bullet or arrow in flight.
type Projectile struct {
	ID              int
	WeaponType      int
	ShooterID       int
	ShooterPlayerID int
	Position        geom.Vec2
	Velocity        geom.Vec2
	LifeTime        float64
}

// LootKind discriminates the loot payload.
type LootKind int

const (
	LootWeapon LootKind = iota
	LootAmmo
	LootShieldPotions
)

func (k LootKind) String() string {
	switch k {
	case LootWeapon:
		return "weapon"
	case LootAmmo:
		return "ammo"
	case LootShieldPotions:
		return "shield_potions"
	}
	return fmt.Sprintf("LootKind(%d)", int(k))
}

// Item is the loot payload. WeaponType is meaningful for weapons and ammo,
// Amount for ammo and shield potions.
type Item struct {
	Kind       LootKind
	WeaponType int
	Amount     int
}

// Loot is an item lying on the ground.
type Loot struct {
	ID       int
	Position geom.Vec2
	Item     Item
}

// Zone is the shrinking safe area.
type Zone struct {
	CurrentCenter geom.Vec2
	CurrentRadius float64
	NextCenter    geom.Vec2
	NextRadius    float64
}

// Sound is a non-visual detection reported by the server.
type Sound struct {
	TypeIndex int
	UnitID    int
	Position  geom.Vec2
}

// LootChoice is a cached loot target for one unit. OK is false when no loot
// qualified and the unit should navigate to its fallback point.
type LootChoice struct {
	ID int
	OK bool
}

// World is one snapshot of the game as the planner sees it. Entity slices
// are kept sorted by ID so iteration order, and with it every rollout, is
// deterministic.
type World struct {
	Consts      *Constants
	CurrentTick int
	MyID        int

	Units       []Unit
	Projectiles []Projectile
	Loot        []Loot
	Sounds      []Sound
	Zone        Zone

	// States holds the automaton state of controlled units.
	States map[int]UnitState

	// ZoneDamageMargin is subtracted from the zone radius when deciding
	// whether a controlled unit takes zone damage.
	ZoneDamageMargin float64

	// LootByKind and LootTargets are per-decision caches filled by the
	// planner and shared read-only by copies.
	LootByKind  map[LootKind][]int
	LootTargets map[int]LootChoice
}

// NewWorld returns an empty world for the given ruleset.
func NewWorld(c *Constants, myID int) *World {
	return &World{
		Consts: c,
		MyID:   myID,
		States: make(map[int]UnitState),
	}
}

// Copy returns a world that can be advanced without affecting w.
func (w *World) Copy() *World {
	c := *w
	c.Units = slices.Clone(w.Units)
	c.Projectiles = slices.Clone(w.Projectiles)
	c.Loot = slices.Clone(w.Loot)
	c.States = make(map[int]UnitState, len(w.States))
	for id, s := range w.States {
		c.States[id] = s
	}
	return &c
}

// Sort restores ID order after entities were appended in bulk.
func (w *World) Sort() {
	sort.Slice(w.Units, func(i, j int) bool { return w.Units[i].ID < w.Units[j].ID })
	sort.Slice(w.Projectiles, func(i, j int) bool { return w.Projectiles[i].ID < w.Projectiles[j].ID })
	sort.Slice(w.Loot, func(i, j int) bool { return w.Loot[i].ID < w.Loot[j].ID })
}

// FindUnit returns the unit with the given id.
func (w *World) FindUnit(id int) (*Unit, bool) {
	i, ok := slices.BinarySearchFunc(w.Units, id, func(u Unit, id int) int { return u.ID - id })
	if !ok {
		return nil, false
	}
	return &w.Units[i], true
}

// Unit returns the unit with the given id and panics if it does not exist.
// A missing id means the caller passed an inconsistent snapshot.
func (w *World) Unit(id int) *Unit {
	u, ok := w.FindUnit(id)
	if !ok {
		panic(fmt.Sprintf("emulator: unit %d not in world at tick %d", id, w.CurrentTick))
	}
	return u
}

// PutUnit inserts or replaces a unit, keeping ID order.
func (w *World) PutUnit(u Unit) {
	i, ok := slices.BinarySearchFunc(w.Units, u.ID, func(u Unit, id int) int { return u.ID - id })
	if ok {
		w.Units[i] = u
		return
	}
	w.Units = slices.Insert(w.Units, i, u)
}

// FindLoot returns the loot item with the given id.
func (w *World) FindLoot(id int) (*Loot, bool) {
	i, ok := slices.BinarySearchFunc(w.Loot, id, func(l Loot, id int) int { return l.ID - id })
	if !ok {
		return nil, false
	}
	return &w.Loot[i], true
}

// LootItem returns the loot with the given id and panics if it does not exist.
func (w *World) LootItem(id int) *Loot {
	l, ok := w.FindLoot(id)
	if !ok {
		panic(fmt.Sprintf("emulator: loot %d not in world at tick %d", id, w.CurrentTick))
	}
	return l
}

// PutLoot inserts or replaces a loot item, keeping ID order.
func (w *World) PutLoot(l Loot) {
	i, ok := slices.BinarySearchFunc(w.Loot, l.ID, func(l Loot, id int) int { return l.ID - id })
	if ok {
		w.Loot[i] = l
		return
	}
	w.Loot = slices.Insert(w.Loot, i, l)
}

// FindProjectile returns the projectile with the given id.
func (w *World) FindProjectile(id int) (*Projectile, bool) {
	i, ok := slices.BinarySearchFunc(w.Projectiles, id, func(p Projectile, id int) int { return p.ID - id })
	if !ok {
		return nil, false
	}
	return &w.Projectiles[i], true
}

// PutProjectile inserts or replaces a projectile, keeping ID order.
func (w *World) PutProjectile(p Projectile) {
	i, ok := slices.BinarySearchFunc(w.Projectiles, p.ID, func(p Projectile, id int) int { return p.ID - id })
	if ok {
		w.Projectiles[i] = p
		return
	}
	w.Projectiles = slices.Insert(w.Projectiles, i, p)
}

// MyUnits returns the ids of controlled units in ID order.
func (w *World) MyUnits() []int {
	var ids []int
	for i := range w.Units {
		if w.Units[i].PlayerID == w.MyID {
			ids = append(ids, w.Units[i].ID)
		}
	}
	return ids
}

// State returns the automaton state of unit id. Units without a recorded
// state start out gathering resources.
func (w *World) State(id int) UnitState {
	if s, ok := w.States[id]; ok {
		return s
	}
	return UnitState{Automaton: ResourceGathering}
}

// SetState records the automaton state of unit id.
func (w *World) SetState(id int, s UnitState) {
	if w.States == nil {
		w.States = make(map[int]UnitState)
	}
	w.States[id] = s
}

// IndexLoot rebuilds LootByKind from the current loot slice.
func (w *World) IndexLoot() {
	w.LootByKind = make(map[LootKind][]int, 3)
	for _, l := range w.Loot {
		w.LootByKind[l.Item.Kind] = append(w.LootByKind[l.Item.Kind], l.ID)
	}
}
