package rules

import "github.com/nstehr/ringfall/emulator"

// UnitEnv exposes one controlled unit to expr conditions.
type UnitEnv struct {
	Unit   emulator.Unit
	State  emulator.AutomatonState
	Consts *emulator.Constants
}

// NewUnitEnv builds the environment for unit u in state s.
func NewUnitEnv(u *emulator.Unit, s emulator.AutomatonState, c *emulator.Constants) UnitEnv {
	return UnitEnv{Unit: *u, State: s, Consts: c}
}

func (e UnitEnv) Spawning() bool { return e.Unit.Spawning() }

func (e UnitEnv) InFight() bool { return e.State == emulator.Fight }

func (e UnitEnv) HasWeapon(w int) bool { return e.Unit.Weapon.Is(w) }

func (e UnitEnv) Ammo(w int) int { return e.Unit.AmmoFor(w) }

func (e UnitEnv) Shield() float64 { return e.Unit.Shield }

// HealthFraction is current health plus shield over the maximum of both.
func (e UnitEnv) HealthFraction() float64 {
	if e.Consts == nil {
		return 1
	}
	max := e.Consts.UnitHealth + e.Consts.MaxShield
	if max <= 0 {
		return 1
	}
	return (e.Unit.Health + e.Unit.Shield) / max
}
