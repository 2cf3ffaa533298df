package model

import (
	"encoding/json"
	"fmt"
)

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Game is the per-tick snapshot sent by the game server. It only holds
// what player MyID can currently see.
type Game struct {
	MyID        int          `json:"myId"`
	Players     []Player     `json:"players"`
	CurrentTick int          `json:"currentTick"`
	Units       []Unit       `json:"units"`
	Loot        []Loot       `json:"loot"`
	Projectiles []Projectile `json:"projectiles"`
	Zone        Zone         `json:"zone"`
	Sounds      []Sound      `json:"sounds"`
}

type Player struct {
	ID     int     `json:"id"`
	Kills  int     `json:"kills"`
	Damage float64 `json:"damage"`
	Place  *int    `json:"place,omitempty"`
	Score  float64 `json:"score"`
}

type Unit struct {
	ID                   int      `json:"id"`
	PlayerID             int      `json:"playerId"`
	Health               float64  `json:"health"`
	Shield               float64  `json:"shield"`
	ExtraLives           int      `json:"extraLives"`
	Position             Vec2     `json:"position"`
	RemainingSpawnTime   *float64 `json:"remainingSpawnTime,omitempty"`
	Velocity             Vec2     `json:"velocity"`
	Direction            Vec2     `json:"direction"`
	Aim                  float64  `json:"aim"`
	Action               *Action  `json:"action,omitempty"`
	HealthRegenStartTick int      `json:"healthRegenerationStartTick"`
	Weapon               *int     `json:"weapon,omitempty"`
	NextShotTick         int      `json:"nextShotTick"`
	Ammo                 []int    `json:"ammo"`
	ShieldPotions        int      `json:"shieldPotions"`
}

// Action is a timed action a unit is performing, such as looting.
type Action struct {
	FinishTick int    `json:"finishTick"`
	ActionType string `json:"actionType"`
}

type Projectile struct {
	ID              int     `json:"id"`
	WeaponTypeIndex int     `json:"weaponTypeIndex"`
	ShooterID       int     `json:"shooterId"`
	ShooterPlayerID int     `json:"shooterPlayerId"`
	Position        Vec2    `json:"position"`
	Velocity        Vec2    `json:"velocity"`
	LifeTime        float64 `json:"lifeTime"`
}

type Zone struct {
	CurrentCenter Vec2    `json:"currentCenter"`
	CurrentRadius float64 `json:"currentRadius"`
	NextCenter    Vec2    `json:"nextCenter"`
	NextRadius    float64 `json:"nextRadius"`
}

type Sound struct {
	TypeIndex int  `json:"typeIndex"`
	UnitID    int  `json:"unitId"`
	Position  Vec2 `json:"position"`
}

type Loot struct {
	ID       int  `json:"id"`
	Position Vec2 `json:"position"`
	Item     Item `json:"item"`
}

// ItemKind names the variant of a loot item.
type ItemKind string

const (
	ItemWeapon        ItemKind = "weapon"
	ItemAmmo          ItemKind = "ammo"
	ItemShieldPotions ItemKind = "shield_potions"
)

// Item is a closed union over the loot variants. WeaponTypeIndex is set for
// weapons and ammo, Amount for ammo and shield potions.
type Item struct {
	Kind            ItemKind `json:"kind"`
	WeaponTypeIndex int      `json:"weaponTypeIndex,omitempty"`
	Amount          int      `json:"amount,omitempty"`
}

func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Kind {
	case ItemWeapon, ItemAmmo, ItemShieldPotions:
	default:
		return fmt.Errorf("unknown item kind %q", p.Kind)
	}
	*it = Item(p)
	return nil
}
