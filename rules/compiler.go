package rules

import (
	"fmt"

	"github.com/nstehr/ringfall/emulator"
)

// CompileDoctrine generates the automaton rule set from a doctrine's thresholds.
// All conditions are built via fmt.Sprintf with interpolated values so the
// compiler never generates invalid expr.
func CompileDoctrine(d Doctrine) []*Rule {
	d.Validate()
	var rules []*Rule

	// A spawning unit cannot be hurt or fight; keep it looting.
	rules = append(rules, &Rule{
		Name:         "spawn-protection",
		Priority:     1000,
		ConditionSrc: `Spawning()`,
		Next:         emulator.ResourceGathering,
	})

	rules = append(rules, &Rule{
		Name:     "ready-to-fight",
		Priority: 500,
		ConditionSrc: fmt.Sprintf(`HasWeapon(%d) && Ammo(%d) >= %d && Shield() >= %g`,
			d.PreferredWeapon, d.PreferredWeapon, max(d.FightMinAmmo, 1), d.FightMinShield),
		Next: emulator.Fight,
	})

	// Once committed, stay in the fight while there is something to shoot
	// and enough health to survive a retreat later.
	rules = append(rules, &Rule{
		Name:     "hold-fight",
		Priority: 400,
		ConditionSrc: fmt.Sprintf(`InFight() && HasWeapon(%d) && Ammo(%d) > 0 && HealthFraction() >= %g`,
			d.PreferredWeapon, d.PreferredWeapon, d.HoldFightMinHealthFraction),
		Next: emulator.Fight,
	})

	rules = append(rules, &Rule{
		Name:         "gather",
		Priority:     0,
		ConditionSrc: `true`,
		Next:         emulator.ResourceGathering,
	})

	return rules
}
