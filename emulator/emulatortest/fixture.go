// Package emulatortest provides rulesets and worlds for tests of packages
// built on the emulator.
package emulatortest

import (
	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
)

// Weapon type indices in Constants.
const (
	Wand  = 0
	Staff = 1
	Bow   = 2
)

// Constants returns a ruleset shaped like the one the game server sends,
// with the given obstacles.
func Constants(obstacles ...emulator.Obstacle) *emulator.Constants {
	return &emulator.Constants{
		TicksPerSecond:                30,
		TeamSize:                      1,
		InitialZoneRadius:             300,
		ZoneSpeed:                     1,
		ZoneDamagePerSecond:           5,
		SpawnTime:                     5,
		SpawnCollisionDamagePerSecond: 100,
		LootingTime:                   0.5,
		UnitRadius:                    1,
		UnitHealth:                    100,
		HealthRegenerationPerSecond:   2,
		HealthRegenerationDelay:       5,
		MaxShield:                     100,
		SpawnShield:                   0,
		ExtraLives:                    2,
		FieldOfView:                   90,
		ViewDistance:                  60,
		ViewBlocking:                  false,
		RotationSpeed:                 90,
		SpawnMovementSpeed:            5,
		MaxUnitForwardSpeed:           10,
		MaxUnitBackwardSpeed:          5,
		UnitAcceleration:              30,
		FriendlyFire:                  false,
		StartingWeaponAmmo:            50,
		MaxShieldPotionsInInventory:   2,
		ShieldPerPotion:               50,
		ShieldPotionUseTime:           1,
		StepsSoundTravelDistance:      10,
		Obstacles:                     obstacles,
		Weapons: []emulator.WeaponProperties{
			{Name: "Magic wand", RoundsPerSecond: 2, ProjectileSpeed: 30, ProjectileDamage: 20,
				ProjectileLifeTime: 1, MaxInventoryAmmo: 100, AimFieldOfView: 30,
				AimRotationSpeed: 60, AimTime: 0.3, AimMovementSpeedModifier: 0.8},
			{Name: "Staff", RoundsPerSecond: 4, ProjectileSpeed: 40, ProjectileDamage: 10,
				ProjectileLifeTime: 0.5, MaxInventoryAmmo: 200, AimFieldOfView: 40,
				AimRotationSpeed: 60, AimTime: 0.2, AimMovementSpeedModifier: 0.9},
			{Name: "Bow", RoundsPerSecond: 1, ProjectileSpeed: 60, ProjectileDamage: 50,
				ProjectileLifeTime: 1, MaxInventoryAmmo: 40, AimFieldOfView: 10,
				AimRotationSpeed: 30, AimTime: 1, AimMovementSpeedModifier: 0.5},
		},
		Sounds: []emulator.SoundProperties{
			{Name: "Steps", Distance: 10, Offset: 2},
			{Name: "Wand", Distance: 30, Offset: 3},
			{Name: "Staff", Distance: 30, Offset: 3},
			{Name: "Bow", Distance: 40, Offset: 4},
		},
	}
}

// Unit returns a unit owned by player, standing at pos and facing +X, with
// full health and no weapon.
func Unit(c *emulator.Constants, id, player int, pos geom.Vec2) emulator.Unit {
	return emulator.Unit{
		ID:        id,
		PlayerID:  player,
		Position:  pos,
		Direction: geom.V(1, 0),
		Health:    c.UnitHealth,
		Ammo:      make([]int, len(c.Weapons)),
	}
}

// ArmedUnit is Unit with weapon equipped and ammo rounds for it.
func ArmedUnit(c *emulator.Constants, id, player int, pos geom.Vec2, weapon, ammo int) emulator.Unit {
	u := Unit(c, id, player, pos)
	u.Weapon = emulator.Armed(weapon)
	u.Ammo[weapon] = ammo
	return u
}

// World returns a world for player myID with a zone centered at the origin
// and the given units.
func World(c *emulator.Constants, myID int, units ...emulator.Unit) *emulator.World {
	w := emulator.NewWorld(c, myID)
	w.Zone = emulator.Zone{
		CurrentRadius: c.InitialZoneRadius,
		NextRadius:    c.InitialZoneRadius / 2,
	}
	for _, u := range units {
		w.PutUnit(u)
	}
	return w
}
