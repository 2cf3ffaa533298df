package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/geom"
	"github.com/nstehr/ringfall/ipc"
	"github.com/nstehr/ringfall/model"
	"github.com/nstehr/ringfall/rules"
	"github.com/nstehr/ringfall/search"
)

func intPtr(v int) *int { return &v }

func testConstants() model.Constants {
	return model.Constants{
		TicksPerSecond:              30,
		TeamSize:                    1,
		InitialZoneRadius:           300,
		ZoneSpeed:                   1,
		ZoneDamagePerSecond:         5,
		UnitRadius:                  1,
		UnitHealth:                  100,
		MaxShield:                   100,
		FieldOfView:                 90,
		ViewDistance:                60,
		RotationSpeed:               90,
		SpawnMovementSpeed:          5,
		MaxUnitForwardSpeed:         10,
		MaxUnitBackwardSpeed:        5,
		UnitAcceleration:            30,
		MaxShieldPotionsInInventory: 2,
		ShieldPerPotion:             50,
		Weapons: []model.WeaponProperties{
			{Name: "Bow", RoundsPerSecond: 1, ProjectileSpeed: 60, ProjectileDamage: 50, ProjectileLifeTime: 1,
				MaxInventoryAmmo: 40, AimFieldOfView: 10, AimRotationSpeed: 30, AimTime: 1, AimMovementSpeedModifier: 0.5},
		},
		Sounds:    []model.SoundProperties{{Name: "Steps", Distance: 10, Offset: 2}},
		Obstacles: []model.Obstacle{{ID: 0, Position: model.Vec2{X: 50, Y: 50}, Radius: 3}},
	}
}

func testGame() model.Game {
	return model.Game{
		MyID:        1,
		CurrentTick: 7,
		Units: []model.Unit{
			{ID: 5, PlayerID: 2, Health: 100, Position: model.Vec2{X: 30}, Direction: model.Vec2{X: -1}, Weapon: intPtr(0), Ammo: []int{3}},
			{ID: 3, PlayerID: 1, Health: 80, Shield: 10, Direction: model.Vec2{X: 1}, Ammo: []int{0},
				RemainingSpawnTime: func() *float64 { v := 1.5; return &v }()},
		},
		Loot: []model.Loot{
			{ID: 9, Position: model.Vec2{X: 0.5}, Item: model.Item{Kind: model.ItemAmmo, WeaponTypeIndex: 0, Amount: 10}},
		},
		Projectiles: []model.Projectile{{ID: 2, ShooterID: 5, ShooterPlayerID: 2, Position: model.Vec2{X: 20}, Velocity: model.Vec2{X: -60}, LifeTime: 0.5}},
		Zone:        model.Zone{CurrentRadius: 300, NextRadius: 150},
		Sounds:      []model.Sound{{TypeIndex: 0, UnitID: 3, Position: model.Vec2{X: -40, Y: 5}}},
	}
}

func TestConstantsFromModel(t *testing.T) {
	c, err := ConstantsFromModel(testConstants())
	if err != nil {
		t.Fatalf("ConstantsFromModel failed: %v", err)
	}
	if len(c.Obstacles) != 1 || c.Obstacles[0].Center != geom.V(50, 50) {
		t.Errorf("obstacles = %+v", c.Obstacles)
	}
	if c.Weapon(0).Name != "Bow" || len(c.Sounds) != 1 {
		t.Errorf("weapons = %+v, sounds = %+v", c.Weapons, c.Sounds)
	}

	bad := testConstants()
	bad.TicksPerSecond = 0
	if _, err := ConstantsFromModel(bad); err == nil {
		t.Errorf("ConstantsFromModel accepted zero ticks per second")
	}
}

func TestWorldFromGame(t *testing.T) {
	c, err := ConstantsFromModel(testConstants())
	if err != nil {
		t.Fatalf("ConstantsFromModel failed: %v", err)
	}
	w := WorldFromGame(c, testGame())

	if w.CurrentTick != 7 || w.MyID != 1 {
		t.Errorf("tick/my id = %d/%d", w.CurrentTick, w.MyID)
	}
	if len(w.Units) != 2 || w.Units[0].ID != 3 {
		t.Fatalf("units not sorted by id: %+v", w.Units)
	}
	me := w.Unit(3)
	if !me.Spawning() || me.Weapon != (emulator.WeaponRef{}) {
		t.Errorf("own unit = %+v, want spawning and unarmed", me)
	}
	if enemy := w.Unit(5); !enemy.Weapon.Is(0) || enemy.AmmoFor(0) != 3 {
		t.Errorf("enemy weapon = %v with %d ammo", enemy.Weapon, enemy.AmmoFor(0))
	}
	if l := w.LootItem(9); l.Item.Kind != emulator.LootAmmo || l.Item.Amount != 10 {
		t.Errorf("loot = %+v", l)
	}
	if p, ok := w.FindProjectile(2); !ok || p.Velocity != geom.V(-60, 0) {
		t.Errorf("projectile = %+v, %v", p, ok)
	}
	if len(w.Sounds) != 1 || w.Zone.NextRadius != 150 {
		t.Errorf("sounds = %+v, zone = %+v", w.Sounds, w.Zone)
	}
}

func TestOrderToModel(t *testing.T) {
	m := OrderToModel([]emulator.Order{
		{UnitID: 1, TargetVelocity: geom.V(1, 2), Action: emulator.ActionAim, Shoot: true},
		{UnitID: 2, Action: emulator.ActionPickup, LootID: 9},
		{UnitID: 3, Action: emulator.ActionUseShieldPotion},
		{UnitID: 4},
	})
	tests := []struct {
		id   int
		want *model.ActionOrder
	}{
		{1, model.Aim(true)},
		{2, model.Pickup(9)},
		{3, model.UseShieldPotion()},
		{4, nil},
	}
	for _, tc := range tests {
		got := m.UnitOrders[tc.id].Action
		if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
			t.Errorf("unit %d action = %+v, want %+v", tc.id, got, tc.want)
		}
	}
	if v := m.UnitOrders[1].TargetVelocity; v != (model.Vec2{X: 1, Y: 2}) {
		t.Errorf("velocity = %+v", v)
	}
}

func TestItemRejectsUnknownKind(t *testing.T) {
	var it model.Item
	if err := json.Unmarshal([]byte(`{"kind":"sword"}`), &it); err == nil {
		t.Errorf("unknown item kind accepted")
	}
	if err := json.Unmarshal([]byte(`{"kind":"weapon","weaponTypeIndex":2}`), &it); err != nil || it.WeaponTypeIndex != 2 {
		t.Errorf("weapon item = %+v, %v", it, err)
	}
}

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	engine, err := rules.NewEngine(rules.DefaultDoctrine())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	params := search.DefaultParams()
	params.Strategies = 5
	return New(ipc.NewConnection(server, "test", nil), engine, params, 1, nil)
}

func TestHandleGameState(t *testing.T) {
	a := newTestAgent(t)
	state, err := ipc.NewEnvelope(ipc.TypeGameState, testGame())
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if _, err := a.HandleGameState(state); !errors.Is(err, ErrNoHello) {
		t.Fatalf("game state before hello: err = %v, want ErrNoHello", err)
	}

	hello, _ := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{Player: "p1", Constants: testConstants()})
	if resp, err := a.HandleHello(hello); err != nil || resp.Type != ipc.TypeAck {
		t.Fatalf("HandleHello = %v, %v", resp, err)
	}

	resp, err := a.HandleGameState(state)
	if err != nil {
		t.Fatalf("HandleGameState failed: %v", err)
	}
	if resp.Type != ipc.TypeOrder {
		t.Fatalf("reply type = %q, want order", resp.Type)
	}
	var msg ipc.OrderMessage
	if err := json.Unmarshal(resp.Data, &msg); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	if msg.Tick != 7 || len(msg.Order.UnitOrders) != 1 {
		t.Errorf("order = %+v, want one unit order for tick 7", msg)
	}
	if _, ok := msg.Order.UnitOrders[3]; !ok {
		t.Errorf("no order for own unit 3: %+v", msg.Order)
	}

	if resp, err := a.HandleFinish(ipc.Envelope{Type: ipc.TypeFinish}); resp != nil || err != nil {
		t.Errorf("HandleFinish = %v, %v", resp, err)
	}
	if _, err := a.HandleGameState(state); !errors.Is(err, ErrNoHello) {
		t.Errorf("game state after finish: err = %v, want ErrNoHello", err)
	}
}

func TestDetectEvents(t *testing.T) {
	c, _ := ConstantsFromModel(testConstants())
	w := WorldFromGame(c, testGame())
	first := takeSnapshot(w)
	events := detectEvents(first, nil)
	if len(events) != 1 || events[0].Kind != EventFirstContact {
		t.Fatalf("events = %+v, want first contact", events)
	}

	w2 := WorldFromGame(c, testGame())
	w2.CurrentTick = 8
	w2.Unit(3).Health = 20
	w2.SetState(3, emulator.UnitState{Automaton: emulator.Fight})
	w2.Unit(5).Imaginable = true
	events = detectEvents(takeSnapshot(w2), &first)
	want := map[EventKind]bool{EventContactLost: true, EventFightStarted: true, EventHeavyDamage: true}
	if len(events) != len(want) {
		t.Fatalf("events = %s", formatEvents(events))
	}
	for _, e := range events {
		if !want[e.Kind] {
			t.Errorf("unexpected event %s", e.Kind)
		}
	}

	w3 := WorldFromGame(c, testGame())
	w3.Units = w3.Units[1:]
	events = detectEvents(takeSnapshot(w3), &first)
	if len(events) != 1 || events[0].Kind != EventUnitLost || events[0].UnitID != 3 {
		t.Errorf("events = %s, want unit 3 lost", formatEvents(events))
	}
}

func TestStrategistReload(t *testing.T) {
	engine, err := rules.NewEngine(rules.DefaultDoctrine())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "ringfall.yaml")
	if err := os.WriteFile(path, []byte("doctrine:\n  name: Aggressive\n  fight_min_shield: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	s := NewStrategist(engine, path)

	ctx, cancel := context.WithCancel(context.Background())
	reload := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, reload) }()
	reload <- syscall.SIGHUP

	deadline := time.Now().Add(5 * time.Second)
	for engine.Doctrine().Name != "Aggressive" {
		if time.Now().After(deadline) {
			t.Fatalf("doctrine not reloaded, still %q", engine.Doctrine().Name)
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Start returned %v", err)
	}

	if err := os.WriteFile(path, []byte("agent: ["), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := s.Reload(); err == nil {
		t.Errorf("Reload of a broken file succeeded")
	}
	if engine.Doctrine().Name != "Aggressive" {
		t.Errorf("failed reload replaced the doctrine with %q", engine.Doctrine().Name)
	}
}
