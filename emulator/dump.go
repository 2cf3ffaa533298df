package emulator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DumpVersion tags the text format written by Dump.
const DumpVersion = "6.0"

// ErrDumpVersion is returned by Load for dumps written by another version.
var ErrDumpVersion = errors.New("unsupported dump version")

// scalars lists the ruleset fields in dump order.
func (c *Constants) scalars() []any {
	return []any{
		&c.TicksPerSecond, &c.TeamSize, &c.InitialZoneRadius, &c.ZoneSpeed, &c.ZoneDamagePerSecond,
		&c.SpawnTime, &c.SpawnCollisionDamagePerSecond, &c.LootingTime, &c.UnitRadius, &c.UnitHealth,
		&c.HealthRegenerationPerSecond, &c.HealthRegenerationDelay, &c.MaxShield, &c.SpawnShield,
		&c.ExtraLives, &c.FieldOfView, &c.ViewDistance, &c.ViewBlocking, &c.RotationSpeed,
		&c.SpawnMovementSpeed, &c.MaxUnitForwardSpeed, &c.MaxUnitBackwardSpeed, &c.UnitAcceleration,
		&c.FriendlyFire, &c.StartingWeaponAmmo, &c.MaxShieldPotionsInInventory, &c.ShieldPerPotion,
		&c.ShieldPotionUseTime, &c.StepsSoundTravelDistance,
	}
}

func values(ptrs []any) []any {
	out := make([]any, len(ptrs))
	for i, p := range ptrs {
		switch v := p.(type) {
		case *float64:
			out[i] = *v
		case *int:
			out[i] = *v
		case *bool:
			out[i] = *v
		default:
			panic(fmt.Sprintf("emulator: unsupported dump field %T", p))
		}
	}
	return out
}

// Dump writes the ruleset and the unit kinematics of w as plain text that
// Load can replay.
func (w *World) Dump(out io.Writer) error {
	bw := bufio.NewWriter(out)
	c := w.Consts

	fmt.Fprintln(bw, DumpVersion)
	fmt.Fprintln(bw, values(c.scalars())...)

	fmt.Fprintln(bw, len(c.Obstacles))
	for _, o := range c.Obstacles {
		fmt.Fprintln(bw, o.Center.X, o.Center.Y, o.Radius, o.CanSeeThrough, o.CanShootThrough)
	}
	fmt.Fprintln(bw, len(c.Weapons))
	for _, wp := range c.Weapons {
		fmt.Fprintln(bw, strconv.Quote(wp.Name), wp.RoundsPerSecond, wp.SpreadDegrees, wp.ProjectileSpeed,
			wp.ProjectileDamage, wp.ProjectileLifeTime, wp.MaxInventoryAmmo, wp.AimFieldOfView,
			wp.AimRotationSpeed, wp.AimTime, wp.AimMovementSpeedModifier)
	}
	fmt.Fprintln(bw, len(c.Sounds))
	for _, s := range c.Sounds {
		fmt.Fprintln(bw, strconv.Quote(s.Name), s.Distance, s.Offset)
	}

	fmt.Fprintln(bw, w.CurrentTick, w.MyID)
	fmt.Fprintln(bw, len(w.Units))
	for _, u := range w.Units {
		fmt.Fprintln(bw, u.ID, u.PlayerID, u.Position.X, u.Position.Y, u.Direction.X, u.Direction.Y, u.Velocity.X, u.Velocity.Y)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	return nil
}

type dumpReader struct {
	sc   *bufio.Scanner
	line int
}

func (r *dumpReader) next() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", fmt.Errorf("line %d: %w", r.line+1, err)
		}
		return "", fmt.Errorf("line %d: %w", r.line+1, io.ErrUnexpectedEOF)
	}
	r.line++
	return r.sc.Text(), nil
}

func (r *dumpReader) scan(args ...any) error {
	line, err := r.next()
	if err != nil {
		return err
	}
	if _, err := fmt.Sscan(line, args...); err != nil {
		return fmt.Errorf("line %d: %w", r.line, err)
	}
	return nil
}

// count reads a line holding a non-negative element count.
func (r *dumpReader) count(what string) (int, error) {
	var n int
	if err := r.scan(&n); err != nil {
		return 0, fmt.Errorf("reading %s count: %w", what, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("line %d: negative %s count %d", r.line, what, n)
	}
	return n, nil
}

// scanNamed reads a line that starts with a quoted name.
func (r *dumpReader) scanNamed(name *string, args ...any) error {
	line, err := r.next()
	if err != nil {
		return err
	}
	quoted, err := strconv.QuotedPrefix(line)
	if err != nil {
		return fmt.Errorf("line %d: %w", r.line, err)
	}
	if *name, err = strconv.Unquote(quoted); err != nil {
		return fmt.Errorf("line %d: %w", r.line, err)
	}
	if _, err := fmt.Sscan(strings.TrimPrefix(line, quoted), args...); err != nil {
		return fmt.Errorf("line %d: %w", r.line, err)
	}
	return nil
}

// Load rebuilds a standalone world from a dump. Units keep the kinematics
// that were dumped and start with full health and no weapon.
func Load(in io.Reader) (*World, error) {
	r := &dumpReader{sc: bufio.NewScanner(in)}

	version, err := r.next()
	if err != nil {
		return nil, fmt.Errorf("reading dump version: %w", err)
	}
	if strings.TrimSpace(version) != DumpVersion {
		return nil, fmt.Errorf("%w: %q", ErrDumpVersion, version)
	}

	c := &Constants{}
	if err := r.scan(c.scalars()...); err != nil {
		return nil, fmt.Errorf("reading constants: %w", err)
	}

	n, err := r.count("obstacle")
	if err != nil {
		return nil, err
	}
	c.Obstacles = make([]Obstacle, n)
	for i := range c.Obstacles {
		o := &c.Obstacles[i]
		if err := r.scan(&o.Center.X, &o.Center.Y, &o.Radius, &o.CanSeeThrough, &o.CanShootThrough); err != nil {
			return nil, fmt.Errorf("reading obstacle %d: %w", i, err)
		}
	}

	if n, err = r.count("weapon"); err != nil {
		return nil, err
	}
	c.Weapons = make([]WeaponProperties, n)
	for i := range c.Weapons {
		wp := &c.Weapons[i]
		if err := r.scanNamed(&wp.Name, &wp.RoundsPerSecond, &wp.SpreadDegrees, &wp.ProjectileSpeed,
			&wp.ProjectileDamage, &wp.ProjectileLifeTime, &wp.MaxInventoryAmmo, &wp.AimFieldOfView,
			&wp.AimRotationSpeed, &wp.AimTime, &wp.AimMovementSpeedModifier); err != nil {
			return nil, fmt.Errorf("reading weapon %d: %w", i, err)
		}
	}

	if n, err = r.count("sound"); err != nil {
		return nil, err
	}
	c.Sounds = make([]SoundProperties, n)
	for i := range c.Sounds {
		s := &c.Sounds[i]
		if err := r.scanNamed(&s.Name, &s.Distance, &s.Offset); err != nil {
			return nil, fmt.Errorf("reading sound %d: %w", i, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("dumped ruleset: %w", err)
	}

	w := NewWorld(c, 0)
	if err := r.scan(&w.CurrentTick, &w.MyID); err != nil {
		return nil, fmt.Errorf("reading tick: %w", err)
	}
	if n, err = r.count("unit"); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		u := Unit{Health: c.UnitHealth, Ammo: make([]int, len(c.Weapons))}
		if err := r.scan(&u.ID, &u.PlayerID, &u.Position.X, &u.Position.Y,
			&u.Direction.X, &u.Direction.Y, &u.Velocity.X, &u.Velocity.Y); err != nil {
			return nil, fmt.Errorf("reading unit %d: %w", i, err)
		}
		w.PutUnit(u)
	}
	return w, nil
}
