package strategy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/emulator/emulatortest"
	"github.com/nstehr/ringfall/geom"
	"github.com/nstehr/ringfall/rules"
)

func TestGetAction(t *testing.T) {
	s := Strategy{
		StartTick: 100,
		Actions: []Action{
			{Velocity: geom.V(1, 0), Duration: 10},
			{Velocity: geom.V(2, 0), Duration: 5},
		},
	}
	tests := []struct {
		tick int
		want float64
	}{
		{100, 1},
		{109, 1},
		{110, 2},
		{114, 2},
		{500, 2},
	}
	for _, tc := range tests {
		if got := s.GetAction(tc.tick).Velocity.X; got != tc.want {
			t.Errorf("GetAction(%d).Velocity.X = %v, want %v", tc.tick, got, tc.want)
		}
	}
	if from, to := s.Window(1); from != 110 || to != 115 {
		t.Errorf("Window(1) = [%d, %d), want [110, 115)", from, to)
	}
}

func TestMutateChangesOneAction(t *testing.T) {
	c := emulatortest.Constants()
	rng := rand.New(rand.NewSource(7))
	s := GenerateRandom(rng, c, 0, 5, 15)
	orig := append([]Action(nil), s.Actions...)

	for range 20 {
		m, i := s.Mutate(rng, c)
		if i < 0 || i >= len(s.Actions) {
			t.Fatalf("Mutate index = %d", i)
		}
		for j := range m.Actions {
			changed := m.Actions[j] != orig[j]
			if j != i && changed {
				t.Errorf("action %d changed, only %d should", j, i)
			}
			if d := m.Actions[j].Velocity.Dist(orig[j].Velocity); d > c.MaxUnitForwardSpeed*mutationScale*math.Sqrt2+1e-9 {
				t.Errorf("action %d moved by %v, beyond the mutation scale", j, d)
			}
		}
		for j := range s.Actions {
			if s.Actions[j] != orig[j] {
				t.Fatalf("Mutate modified the receiver at action %d", j)
			}
		}
	}

	if _, i := NewGoTo(geom.V(1, 1), 0).Mutate(rng, c); i != -1 {
		t.Errorf("Mutate of a go-to plan = %d, want -1", i)
	}
}

func TestGenerateRandom(t *testing.T) {
	c := emulatortest.Constants()
	s := GenerateRandom(rand.New(rand.NewSource(1)), c, 30, 5, 15)
	if len(s.Actions) != 5 || s.StartTick != 30 {
		t.Fatalf("GenerateRandom = %d actions at %d, want 5 at 30", len(s.Actions), s.StartTick)
	}
	limit := c.MaxUnitForwardSpeed * randomScale * math.Sqrt2
	for i, a := range s.Actions {
		if a.Duration != 15 {
			t.Errorf("action %d duration = %d, want 15", i, a.Duration)
		}
		if a.Velocity.Len() > limit {
			t.Errorf("action %d speed = %v, above %v", i, a.Velocity.Len(), limit)
		}
	}
}

func TestGenerateRunaway(t *testing.T) {
	c := emulatortest.Constants()
	s := GenerateRunaway(c, geom.V(0, -3), 0, 3, 10)
	for _, a := range s.Actions {
		if a.Velocity != geom.V(0, -c.MaxUnitForwardSpeed) {
			t.Errorf("runaway velocity = %v, want (0, %v)", a.Velocity, -c.MaxUnitForwardSpeed)
		}
	}
}

func TestPlannedVelocityGoTo(t *testing.T) {
	c := emulatortest.Constants()
	w := emulatortest.World(c, 1, emulatortest.Unit(c, 1, 1, geom.V(0, 0)))
	u := w.Unit(1)

	far := NewGoTo(geom.V(0, 50), 0).PlannedVelocity(w, u)
	if far != geom.V(0, c.MaxUnitForwardSpeed) {
		t.Errorf("far go-to velocity = %v", far)
	}
	near := NewGoTo(geom.V(0.1, 0), 0).PlannedVelocity(w, u)
	if math.Abs(near.X-0.1*c.TicksPerSecond) > 1e-9 {
		t.Errorf("near go-to velocity = %v, want arrival in one tick", near)
	}
}

// duel returns a world where unit 1 (bow, fully aimed, facing +X) stands
// 20 units from enemy 2 and is in the fight state.
func duel(ammo int, extra ...emulator.Unit) *emulator.World {
	c := emulatortest.Constants()
	me := emulatortest.ArmedUnit(c, 1, 1, geom.V(0, 0), emulatortest.Bow, ammo)
	me.Aim = 1
	enemy := emulatortest.ArmedUnit(c, 2, 2, geom.V(20, 0), emulatortest.Wand, 10)
	w := emulatortest.World(c, 1, append([]emulator.Unit{me, enemy}, extra...)...)
	w.SetState(1, emulator.UnitState{Automaton: emulator.Fight})
	return w
}

func TestGetOrderShoots(t *testing.T) {
	o := Strategy{}.GetOrder(duel(10), rules.DefaultDoctrine(), 1, false)
	if o.Action != emulator.ActionAim || !o.Shoot {
		t.Errorf("order = %+v, want aim and shoot", o)
	}
	if geom.Angle(o.TargetDirection, geom.V(1, 0)) > 1e-9 {
		t.Errorf("aim direction = %v, want straight at the enemy", o.TargetDirection)
	}
}

func TestGetOrderNeverShootsWithoutAmmo(t *testing.T) {
	for _, state := range []emulator.AutomatonState{emulator.Fight, emulator.ResourceGathering} {
		for _, obedience := range []Obedience{Default, VerySoft, Soft, Hard} {
			w := duel(0)
			w.SetState(1, emulator.UnitState{Automaton: state})
			for _, sim := range []bool{true, false} {
				o := Strategy{Obedience: obedience}.GetOrder(w, rules.DefaultDoctrine(), 1, sim)
				if o.Shoot {
					t.Errorf("state %v obedience %v sim %v: unit without ammo shoots", state, obedience, sim)
				}
			}
		}
	}
}

func TestGetOrderVetoes(t *testing.T) {
	c := emulatortest.Constants()
	d := rules.DefaultDoctrine()

	t.Run("teammate in the line of fire", func(t *testing.T) {
		w := duel(10, emulatortest.Unit(c, 3, 1, geom.V(10, 0.5)))
		if o := (Strategy{}).GetOrder(w, d, 1, true); o.Shoot {
			t.Errorf("shot through a teammate: %+v", o)
		}
	})

	t.Run("spawn-protected enemy", func(t *testing.T) {
		w := duel(10)
		w.Unit(2).RemainingSpawnTime = 1
		if o := (Strategy{}).GetOrder(w, d, 1, false); o.Action == emulator.ActionAim {
			t.Errorf("engaged a spawning enemy: %+v", o)
		}
	})

	t.Run("imaginable enemy", func(t *testing.T) {
		w := duel(10)
		w.Unit(2).Imaginable = true
		if o := (Strategy{}).GetOrder(w, d, 1, false); o.Shoot {
			t.Errorf("shot at a remembered enemy: %+v", o)
		}
	})

	t.Run("reloading", func(t *testing.T) {
		w := duel(10)
		w.Unit(1).NextShotTick = 5
		o := (Strategy{}).GetOrder(w, d, 1, false)
		if o.Shoot || o.Action != emulator.ActionAim {
			t.Errorf("reloading order = %+v, want aim without shooting", o)
		}
	})
}

func TestGetOrderLineOfSightOnlyForRealOrders(t *testing.T) {
	c := emulatortest.Constants(emulator.Obstacle{Center: geom.V(10, 0), Radius: 2})
	me := emulatortest.ArmedUnit(c, 1, 1, geom.V(0, 0), emulatortest.Bow, 10)
	me.Aim = 1
	enemy := emulatortest.ArmedUnit(c, 2, 2, geom.V(20, 0), emulatortest.Wand, 10)
	w := emulatortest.World(c, 1, me, enemy)
	w.SetState(1, emulator.UnitState{Automaton: emulator.Fight})
	d := rules.DefaultDoctrine()

	if o := (Strategy{}).GetOrder(w, d, 1, false); o.Shoot {
		t.Errorf("real order shot through an obstacle")
	}
	if o := (Strategy{}).GetOrder(w, d, 1, true); !o.Shoot {
		t.Errorf("simulated order should assume clear sight")
	}
}

func TestGetOrderHardIgnoresReactions(t *testing.T) {
	w := duel(10)
	s := GenerateRunaway(w.Consts, geom.V(0, 1), 0, 3, 10)
	s.Obedience = Hard
	o := s.GetOrder(w, rules.DefaultDoctrine(), 1, false)
	if o.Action != emulator.ActionNone || o.Shoot {
		t.Errorf("hard order reacted: %+v", o)
	}
	if o.TargetVelocity != geom.V(0, w.Consts.MaxUnitForwardSpeed) {
		t.Errorf("hard order velocity = %v", o.TargetVelocity)
	}
}

func TestGetOrderSoftCropsAim(t *testing.T) {
	w := duel(10)
	d := rules.DefaultDoctrine()
	s := GenerateRunaway(w.Consts, geom.V(0, 1), 0, 3, 10)
	s.Obedience = Soft

	o := s.GetOrder(w, d, 1, true)
	fov := w.Consts.Weapons[emulatortest.Bow].AimFieldOfView * math.Pi / 180
	want := d.SoftCropFraction * fov / 2
	if got := geom.Angle(o.TargetDirection, geom.V(0, 1)); math.Abs(got-want) > 1e-9 {
		t.Errorf("cropped aim is %v rad off the movement, want %v", got, want)
	}
}

func TestGetOrderPickupAndPotion(t *testing.T) {
	c := emulatortest.Constants()
	d := rules.DefaultDoctrine()

	u := emulatortest.Unit(c, 1, 1, geom.V(0, 0))
	w := emulatortest.World(c, 1, u)
	w.PutLoot(emulator.Loot{ID: 9, Position: geom.V(0.5, 0), Item: emulator.Item{Kind: emulator.LootShieldPotions, Amount: 1}})
	if o := (Strategy{}).GetOrder(w, d, 1, true); o.Action != emulator.ActionPickup || o.LootID != 9 {
		t.Errorf("order next to loot = %+v, want pickup of 9", o)
	}

	u.ShieldPotions = 1
	w = emulatortest.World(c, 1, u)
	if o := (Strategy{}).GetOrder(w, d, 1, true); o.Action != emulator.ActionUseShieldPotion {
		t.Errorf("order with a potion and no shield = %+v, want use_shield_potion", o)
	}
}

func TestGetOrderScanRotation(t *testing.T) {
	c := emulatortest.Constants()
	d := rules.DefaultDoctrine()
	w := emulatortest.World(c, 1, emulatortest.Unit(c, 1, 1, geom.V(0, 0)))
	w.CurrentTick = int(d.ScanPeriodSeconds * c.TicksPerSecond)

	o := Strategy{}.GetOrder(w, d, 1, true)
	if !o.IsRotationStart {
		t.Errorf("order after a scan period = %+v, want rotation start", o)
	}
	w.SetState(1, emulator.UnitState{LastRotationTick: w.CurrentTick - 1})
	if o := (Strategy{}).GetOrder(w, d, 1, true); o.IsRotationStart || o.TargetDirection == w.Unit(1).Direction {
		t.Errorf("order during scan hold = %+v, want continued rotation", o)
	}
}
