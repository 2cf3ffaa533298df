package model

import (
	"encoding/json"
	"fmt"
)

// Order is the reply to a game state: one order per controlled unit.
type Order struct {
	UnitOrders map[int]UnitOrder `json:"unitOrders"`
}

type UnitOrder struct {
	TargetVelocity  Vec2         `json:"targetVelocity"`
	TargetDirection Vec2         `json:"targetDirection"`
	Action          *ActionOrder `json:"action,omitempty"`
}

// ActionKind names the variant of an action order.
type ActionKind string

const (
	ActionAim             ActionKind = "aim"
	ActionPickup          ActionKind = "pickup"
	ActionUseShieldPotion ActionKind = "use_shield_potion"
)

// ActionOrder is a closed union. Shoot is only meaningful for aim, Loot
// only for pickup.
type ActionOrder struct {
	Kind  ActionKind `json:"kind"`
	Shoot bool       `json:"shoot,omitempty"`
	Loot  int        `json:"loot,omitempty"`
}

func Aim(shoot bool) *ActionOrder   { return &ActionOrder{Kind: ActionAim, Shoot: shoot} }
func Pickup(loot int) *ActionOrder  { return &ActionOrder{Kind: ActionPickup, Loot: loot} }
func UseShieldPotion() *ActionOrder { return &ActionOrder{Kind: ActionUseShieldPotion} }

func (a *ActionOrder) UnmarshalJSON(data []byte) error {
	type plain ActionOrder
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Kind {
	case ActionAim, ActionPickup, ActionUseShieldPotion:
	default:
		return fmt.Errorf("unknown action kind %q", p.Kind)
	}
	*a = ActionOrder(p)
	return nil
}
