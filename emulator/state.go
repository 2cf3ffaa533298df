package emulator

import (
	"fmt"

	"github.com/nstehr/ringfall/geom"
)

// AutomatonState is the high-level mode of a controlled unit.
type AutomatonState int

const (
	ResourceGathering AutomatonState = iota
	Fight
)

func (s AutomatonState) String() string {
	switch s {
	case ResourceGathering:
		return "resource_gathering"
	case Fight:
		return "fight"
	}
	return fmt.Sprintf("AutomatonState(%d)", int(s))
}

// UnitState is the per-unit state that survives between decision cycles.
type UnitState struct {
	Automaton AutomatonState
	// SpiralAngle rotates the fallback navigation point around the next zone center.
	SpiralAngle float64
	// LastRotationTick is the tick of the last deliberate scan rotation.
	LastRotationTick int
}

// ActionKind is the discrete action attached to an order.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionAim
	ActionPickup
	ActionUseShieldPotion
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionAim:
		return "aim"
	case ActionPickup:
		return "pickup"
	case ActionUseShieldPotion:
		return "use_shield_potion"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Order is what one unit is told to do for one tick.
type Order struct {
	UnitID          int
	TargetVelocity  geom.Vec2
	TargetDirection geom.Vec2
	Action          ActionKind
	// Shoot is only meaningful with ActionAim.
	Shoot bool
	// LootID is only meaningful with ActionPickup.
	LootID int
	// IsRotationStart marks the first tick of a scan rotation.
	IsRotationStart bool
}
