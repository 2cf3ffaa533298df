package model

// Constants is the ruleset sent once with the hello message.
type Constants struct {
	TicksPerSecond                float64            `json:"ticksPerSecond"`
	TeamSize                      int                `json:"teamSize"`
	InitialZoneRadius             float64            `json:"initialZoneRadius"`
	ZoneSpeed                     float64            `json:"zoneSpeed"`
	ZoneDamagePerSecond           float64            `json:"zoneDamagePerSecond"`
	SpawnTime                     float64            `json:"spawnTime"`
	SpawnCollisionDamagePerSecond float64            `json:"spawnCollisionDamagePerSecond"`
	LootingTime                   float64            `json:"lootingTime"`
	UnitRadius                    float64            `json:"unitRadius"`
	UnitHealth                    float64            `json:"unitHealth"`
	HealthRegenerationPerSecond   float64            `json:"healthRegenerationPerSecond"`
	HealthRegenerationDelay       float64            `json:"healthRegenerationDelay"`
	MaxShield                     float64            `json:"maxShield"`
	SpawnShield                   float64            `json:"spawnShield"`
	ExtraLives                    int                `json:"extraLives"`
	FieldOfView                   float64            `json:"fieldOfView"`
	ViewDistance                  float64            `json:"viewDistance"`
	ViewBlocking                  bool               `json:"viewBlocking"`
	RotationSpeed                 float64            `json:"rotationSpeed"`
	SpawnMovementSpeed            float64            `json:"spawnMovementSpeed"`
	MaxUnitForwardSpeed           float64            `json:"maxUnitForwardSpeed"`
	MaxUnitBackwardSpeed          float64            `json:"maxUnitBackwardSpeed"`
	UnitAcceleration              float64            `json:"unitAcceleration"`
	FriendlyFire                  bool               `json:"friendlyFire"`
	StartingWeapon                *int               `json:"startingWeapon,omitempty"`
	StartingWeaponAmmo            int                `json:"startingWeaponAmmo"`
	MaxShieldPotionsInInventory   int                `json:"maxShieldPotionsInInventory"`
	ShieldPerPotion               float64            `json:"shieldPerPotion"`
	ShieldPotionUseTime           float64            `json:"shieldPotionUseTime"`
	StepsSoundTypeIndex           int                `json:"stepsSoundTypeIndex"`
	StepsSoundTravelDistance      float64            `json:"stepsSoundTravelDistance"`
	Weapons                       []WeaponProperties `json:"weapons"`
	Sounds                        []SoundProperties  `json:"sounds"`
	Obstacles                     []Obstacle         `json:"obstacles"`
}

type WeaponProperties struct {
	Name                     string  `json:"name"`
	RoundsPerSecond          float64 `json:"roundsPerSecond"`
	SpreadDegrees            float64 `json:"spread"`
	ProjectileSpeed          float64 `json:"projectileSpeed"`
	ProjectileDamage         float64 `json:"projectileDamage"`
	ProjectileLifeTime       float64 `json:"projectileLifeTime"`
	ShotSoundTypeIndex       *int    `json:"shotSoundTypeIndex,omitempty"`
	ProjectileHitSoundIndex  *int    `json:"projectileHitSoundTypeIndex,omitempty"`
	MaxInventoryAmmo         int     `json:"maxInventoryAmmo"`
	AimFieldOfView           float64 `json:"aimFieldOfView"`
	AimRotationSpeed         float64 `json:"aimRotationSpeed"`
	AimTime                  float64 `json:"aimTime"`
	AimMovementSpeedModifier float64 `json:"aimMovementSpeedModifier"`
}

type SoundProperties struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Offset   float64 `json:"offset"`
}

type Obstacle struct {
	ID              int     `json:"id"`
	Position        Vec2    `json:"position"`
	Radius          float64 `json:"radius"`
	CanSeeThrough   bool    `json:"canSeeThrough"`
	CanShootThrough bool    `json:"canShootThrough"`
}
