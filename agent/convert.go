package agent

import (
	"fmt"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
	"github.com/nstehr/ringfall/model"
)

func vec(v model.Vec2) geom.Vec2 { return geom.V(v.X, v.Y) }

func wire(v geom.Vec2) model.Vec2 { return model.Vec2{X: v.X, Y: v.Y} }

// ConstantsFromModel converts and validates the ruleset from the hello
// message.
func ConstantsFromModel(m model.Constants) (*emulator.Constants, error) {
	c := &emulator.Constants{
		TicksPerSecond:                m.TicksPerSecond,
		TeamSize:                      m.TeamSize,
		InitialZoneRadius:             m.InitialZoneRadius,
		ZoneSpeed:                     m.ZoneSpeed,
		ZoneDamagePerSecond:           m.ZoneDamagePerSecond,
		SpawnTime:                     m.SpawnTime,
		SpawnCollisionDamagePerSecond: m.SpawnCollisionDamagePerSecond,
		LootingTime:                   m.LootingTime,
		UnitRadius:                    m.UnitRadius,
		UnitHealth:                    m.UnitHealth,
		HealthRegenerationPerSecond:   m.HealthRegenerationPerSecond,
		HealthRegenerationDelay:       m.HealthRegenerationDelay,
		MaxShield:                     m.MaxShield,
		SpawnShield:                   m.SpawnShield,
		ExtraLives:                    m.ExtraLives,
		FieldOfView:                   m.FieldOfView,
		ViewDistance:                  m.ViewDistance,
		ViewBlocking:                  m.ViewBlocking,
		RotationSpeed:                 m.RotationSpeed,
		SpawnMovementSpeed:            m.SpawnMovementSpeed,
		MaxUnitForwardSpeed:           m.MaxUnitForwardSpeed,
		MaxUnitBackwardSpeed:          m.MaxUnitBackwardSpeed,
		UnitAcceleration:              m.UnitAcceleration,
		FriendlyFire:                  m.FriendlyFire,
		StartingWeaponAmmo:            m.StartingWeaponAmmo,
		MaxShieldPotionsInInventory:   m.MaxShieldPotionsInInventory,
		ShieldPerPotion:               m.ShieldPerPotion,
		ShieldPotionUseTime:           m.ShieldPotionUseTime,
		StepsSoundTravelDistance:      m.StepsSoundTravelDistance,
	}
	for _, o := range m.Obstacles {
		c.Obstacles = append(c.Obstacles, emulator.Obstacle{
			Center:          vec(o.Position),
			Radius:          o.Radius,
			CanSeeThrough:   o.CanSeeThrough,
			CanShootThrough: o.CanShootThrough,
		})
	}
	for _, w := range m.Weapons {
		c.Weapons = append(c.Weapons, emulator.WeaponProperties{
			Name:                     w.Name,
			RoundsPerSecond:          w.RoundsPerSecond,
			SpreadDegrees:            w.SpreadDegrees,
			ProjectileSpeed:          w.ProjectileSpeed,
			ProjectileDamage:         w.ProjectileDamage,
			ProjectileLifeTime:       w.ProjectileLifeTime,
			MaxInventoryAmmo:         w.MaxInventoryAmmo,
			AimFieldOfView:           w.AimFieldOfView,
			AimRotationSpeed:         w.AimRotationSpeed,
			AimTime:                  w.AimTime,
			AimMovementSpeedModifier: w.AimMovementSpeedModifier,
		})
	}
	for _, s := range m.Sounds {
		c.Sounds = append(c.Sounds, emulator.SoundProperties{Name: s.Name, Distance: s.Distance, Offset: s.Offset})
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constants: %w", err)
	}
	return c, nil
}

func lootKind(k model.ItemKind) emulator.LootKind {
	switch k {
	case model.ItemWeapon:
		return emulator.LootWeapon
	case model.ItemAmmo:
		return emulator.LootAmmo
	}
	return emulator.LootShieldPotions
}

// WorldFromGame builds the planner's world from one snapshot.
func WorldFromGame(c *emulator.Constants, g model.Game) *emulator.World {
	w := emulator.NewWorld(c, g.MyID)
	w.CurrentTick = g.CurrentTick
	w.Zone = emulator.Zone{
		CurrentCenter: vec(g.Zone.CurrentCenter),
		CurrentRadius: g.Zone.CurrentRadius,
		NextCenter:    vec(g.Zone.NextCenter),
		NextRadius:    g.Zone.NextRadius,
	}
	for _, u := range g.Units {
		eu := emulator.Unit{
			ID:                   u.ID,
			PlayerID:             u.PlayerID,
			Position:             vec(u.Position),
			Direction:            vec(u.Direction),
			Velocity:             vec(u.Velocity),
			Health:               u.Health,
			Shield:               u.Shield,
			ExtraLives:           u.ExtraLives,
			Aim:                  u.Aim,
			NextShotTick:         u.NextShotTick,
			HealthRegenStartTick: u.HealthRegenStartTick,
			Ammo:                 append([]int(nil), u.Ammo...),
			ShieldPotions:        u.ShieldPotions,
		}
		if u.RemainingSpawnTime != nil {
			eu.RemainingSpawnTime = *u.RemainingSpawnTime
		}
		if u.Weapon != nil {
			eu.Weapon = emulator.Armed(*u.Weapon)
		}
		w.Units = append(w.Units, eu)
	}
	for _, p := range g.Projectiles {
		w.Projectiles = append(w.Projectiles, emulator.Projectile{
			ID:              p.ID,
			WeaponType:      p.WeaponTypeIndex,
			ShooterID:       p.ShooterID,
			ShooterPlayerID: p.ShooterPlayerID,
			Position:        vec(p.Position),
			Velocity:        vec(p.Velocity),
			LifeTime:        p.LifeTime,
		})
	}
	for _, l := range g.Loot {
		w.Loot = append(w.Loot, emulator.Loot{
			ID:       l.ID,
			Position: vec(l.Position),
			Item: emulator.Item{
				Kind:       lootKind(l.Item.Kind),
				WeaponType: l.Item.WeaponTypeIndex,
				Amount:     l.Item.Amount,
			},
		})
	}
	for _, s := range g.Sounds {
		w.Sounds = append(w.Sounds, emulator.Sound{TypeIndex: s.TypeIndex, UnitID: s.UnitID, Position: vec(s.Position)})
	}
	w.Sort()
	return w
}

// OrderToModel converts the planner's orders to the reply format.
func OrderToModel(orders []emulator.Order) model.Order {
	out := model.Order{UnitOrders: make(map[int]model.UnitOrder, len(orders))}
	for _, o := range orders {
		uo := model.UnitOrder{
			TargetVelocity:  wire(o.TargetVelocity),
			TargetDirection: wire(o.TargetDirection),
		}
		switch o.Action {
		case emulator.ActionAim:
			uo.Action = model.Aim(o.Shoot)
		case emulator.ActionPickup:
			uo.Action = model.Pickup(o.LootID)
		case emulator.ActionUseShieldPotion:
			uo.Action = model.UseShieldPotion()
		}
		out.UnitOrders[o.UnitID] = uo
	}
	return out
}
