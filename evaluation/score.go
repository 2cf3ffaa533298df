// Package evaluation scores worlds and rolls strategies out through the
// emulator to rank them.
package evaluation

import "fmt"

// CombatSafety is an optional danger value. Undefined means no threat was
// considered, which compares like 0 but is kept distinct from a measured 0.
type CombatSafety struct {
	value   float64
	defined bool
}

// Safety returns a defined value.
func Safety(v float64) CombatSafety { return CombatSafety{value: v, defined: true} }

// Value returns the danger and whether it was measured.
func (s CombatSafety) Value() (float64, bool) { return s.value, s.defined }

// Cmp is the value used for ordering.
func (s CombatSafety) Cmp() float64 {
	if !s.defined {
		return 0
	}
	return s.value
}

// Add sums two values; the result is undefined only if both are.
func (s CombatSafety) Add(o CombatSafety) CombatSafety {
	if !s.defined && !o.defined {
		return CombatSafety{}
	}
	return Safety(s.Cmp() + o.Cmp())
}

func (s CombatSafety) String() string {
	if !s.defined {
		return "-"
	}
	return fmt.Sprintf("%.3f", s.value)
}

// Score ranks a world or a rollout. Lower is better in every component:
// health lost, danger, distance to target.
type Score struct {
	HealthLoss float64
	Danger     CombatSafety
	Distance   float64
}

// Less compares lexicographically.
func (a Score) Less(b Score) bool {
	if a.HealthLoss != b.HealthLoss {
		return a.HealthLoss < b.HealthLoss
	}
	if da, db := a.Danger.Cmp(), b.Danger.Cmp(); da != db {
		return da < db
	}
	return a.Distance < b.Distance
}

// Add sums component-wise.
func (a Score) Add(b Score) Score {
	return Score{
		HealthLoss: a.HealthLoss + b.HealthLoss,
		Danger:     a.Danger.Add(b.Danger),
		Distance:   a.Distance + b.Distance,
	}
}

func (a Score) String() string {
	return fmt.Sprintf("{loss %.2f danger %s dist %.2f}", a.HealthLoss, a.Danger, a.Distance)
}
