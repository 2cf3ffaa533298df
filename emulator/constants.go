package emulator

import (
	"fmt"
	"sync"

	"github.com/nstehr/ringfall/geom"
)

// Obstacle is a static circular map feature.
type Obstacle struct {
	Center          geom.Vec2
	Radius          float64
	CanSeeThrough   bool
	CanShootThrough bool
}

// WeaponProperties describes one weapon type. Rates are per second,
// angles are in degrees.
type WeaponProperties struct {
	Name                     string
	RoundsPerSecond          float64
	SpreadDegrees            float64
	ProjectileSpeed          float64
	ProjectileDamage         float64
	ProjectileLifeTime       float64
	MaxInventoryAmmo         int
	AimFieldOfView           float64
	AimRotationSpeed         float64
	AimTime                  float64
	AimMovementSpeedModifier float64
}

// CombatRadius is how far a projectile of this weapon travels before expiring.
func (w WeaponProperties) CombatRadius() float64 {
	return w.ProjectileSpeed * w.ProjectileLifeTime
}

// SoundProperties describes one sound type the server can report.
type SoundProperties struct {
	Name     string
	Distance float64
	Offset   float64
}

// Constants is the immutable per-match ruleset. The obstacle index is built
// lazily on first use and cached here.
type Constants struct {
	TicksPerSecond                float64
	TeamSize                      int
	InitialZoneRadius             float64
	ZoneSpeed                     float64
	ZoneDamagePerSecond           float64
	SpawnTime                     float64
	SpawnCollisionDamagePerSecond float64
	LootingTime                   float64
	UnitRadius                    float64
	UnitHealth                    float64
	HealthRegenerationPerSecond   float64
	HealthRegenerationDelay       float64
	MaxShield                     float64
	SpawnShield                   float64
	ExtraLives                    int
	FieldOfView                   float64
	ViewDistance                  float64
	ViewBlocking                  bool
	RotationSpeed                 float64
	SpawnMovementSpeed            float64
	MaxUnitForwardSpeed           float64
	MaxUnitBackwardSpeed          float64
	UnitAcceleration              float64
	FriendlyFire                  bool
	StartingWeaponAmmo            int
	MaxShieldPotionsInInventory   int
	ShieldPerPotion               float64
	ShieldPotionUseTime           float64
	StepsSoundTravelDistance      float64

	Obstacles []Obstacle
	Weapons   []WeaponProperties
	Sounds    []SoundProperties

	indexOnce sync.Once
	index     *ObstacleIndex
}

// Validate rejects rulesets the emulator cannot run on.
func (c *Constants) Validate() error {
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("ticks per second must be positive, got %v", c.TicksPerSecond)
	}
	if c.UnitRadius <= 0 {
		return fmt.Errorf("unit radius must be positive, got %v", c.UnitRadius)
	}
	if c.MaxUnitBackwardSpeed > c.MaxUnitForwardSpeed {
		return fmt.Errorf("backward speed %v exceeds forward speed %v", c.MaxUnitBackwardSpeed, c.MaxUnitForwardSpeed)
	}
	for i, w := range c.Weapons {
		if w.RoundsPerSecond <= 0 {
			return fmt.Errorf("weapon %d (%s): rounds per second must be positive", i, w.Name)
		}
	}
	return nil
}

// Index returns the obstacle index, building it on first call.
func (c *Constants) Index() *ObstacleIndex {
	c.indexOnce.Do(func() {
		c.index = NewObstacleIndex(c.Obstacles, c.UnitRadius)
	})
	return c.index
}

// Dt is the duration of one tick in seconds.
func (c *Constants) Dt() float64 { return 1 / c.TicksPerSecond }

// Weapon returns the properties of weapon type i. An unknown type is a
// programming error.
func (c *Constants) Weapon(i int) WeaponProperties {
	if i < 0 || i >= len(c.Weapons) {
		panic(fmt.Sprintf("emulator: unknown weapon type %d", i))
	}
	return c.Weapons[i]
}

// StrongestWeapon returns the weapon type with the highest damage output per
// second. It is the worst-case assumption for enemies we only heard.
func (c *Constants) StrongestWeapon() (int, bool) {
	best, bestDPS := -1, 0.0
	for i, w := range c.Weapons {
		if dps := w.ProjectileDamage * w.RoundsPerSecond; best < 0 || dps > bestDPS {
			best, bestDPS = i, dps
		}
	}
	return best, best >= 0
}
