package rules

// Doctrine holds the tunables of the planner. Thresholds feed the automaton
// rules built by CompileDoctrine; the rest are read directly by the loot,
// order and memory code.
type Doctrine struct {
	Name string `json:"name" yaml:"name"`

	PreferredWeapon            int     `json:"preferred_weapon" yaml:"preferred_weapon"`
	FightMinAmmo               int     `json:"fight_min_ammo" yaml:"fight_min_ammo"`
	FightMinShield             float64 `json:"fight_min_shield" yaml:"fight_min_shield"`
	HoldFightMinHealthFraction float64 `json:"hold_fight_min_health_fraction" yaml:"hold_fight_min_health_fraction"`

	LootZoneMargin float64 `json:"loot_zone_margin" yaml:"loot_zone_margin"`
	PickupBonus    float64 `json:"pickup_bonus" yaml:"pickup_bonus"`

	ScanPeriodSeconds    float64 `json:"scan_period_seconds" yaml:"scan_period_seconds"`
	ScanHoldSeconds      float64 `json:"scan_hold_seconds" yaml:"scan_hold_seconds"`
	SoftCropFraction     float64 `json:"soft_crop_fraction" yaml:"soft_crop_fraction"`
	VerySoftCropFraction float64 `json:"very_soft_crop_fraction" yaml:"very_soft_crop_fraction"`

	ZoneDamageMarginRadii float64 `json:"zone_damage_margin_radii" yaml:"zone_damage_margin_radii"`
	MemoryUnitSeconds     float64 `json:"memory_unit_seconds" yaml:"memory_unit_seconds"`
	LootMemorySeconds     float64 `json:"loot_memory_seconds" yaml:"loot_memory_seconds"`
}

// DefaultDoctrine returns the baseline tuning.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name:                       "Balanced",
		PreferredWeapon:            2,
		FightMinAmmo:               1,
		FightMinShield:             1,
		HoldFightMinHealthFraction: 0.35,
		LootZoneMargin:             30,
		PickupBonus:                10,
		ScanPeriodSeconds:          4,
		ScanHoldSeconds:            0.5,
		SoftCropFraction:           0.5,
		VerySoftCropFraction:       1,
		ZoneDamageMarginRadii:      3,
		MemoryUnitSeconds:          3,
		LootMemorySeconds:          2,
	}
}

// Validate clamps all values to their usable ranges.
func (d *Doctrine) Validate() {
	if d.Name == "" {
		d.Name = "Unnamed"
	}
	d.PreferredWeapon = clampInt(d.PreferredWeapon, 0, 16)
	d.FightMinAmmo = clampInt(d.FightMinAmmo, 0, 1000)
	d.FightMinShield = clamp(d.FightMinShield, 0, 1000)
	d.HoldFightMinHealthFraction = clamp(d.HoldFightMinHealthFraction, 0, 1)
	d.LootZoneMargin = clamp(d.LootZoneMargin, 0, 200)
	d.PickupBonus = clamp(d.PickupBonus, 0, 100)
	d.ScanPeriodSeconds = clamp(d.ScanPeriodSeconds, 0.5, 60)
	d.ScanHoldSeconds = clamp(d.ScanHoldSeconds, 0, d.ScanPeriodSeconds)
	d.SoftCropFraction = clamp(d.SoftCropFraction, 0, 1)
	d.VerySoftCropFraction = clamp(d.VerySoftCropFraction, 0, 1)
	d.ZoneDamageMarginRadii = clamp(d.ZoneDamageMarginRadii, 0, 10)
	d.MemoryUnitSeconds = clamp(d.MemoryUnitSeconds, 0, 30)
	d.LootMemorySeconds = clamp(d.LootMemorySeconds, 0.1, 30)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
