package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nstehr/ringfall/emulator"
)

// EventKind identifies a notable change between two consecutive ticks.
type EventKind string

const (
	EventFirstContact EventKind = "first_contact"
	EventContactLost  EventKind = "contact_lost"
	EventUnitLost     EventKind = "unit_lost"
	EventHeavyDamage  EventKind = "heavy_damage"
	EventFightStarted EventKind = "fight_started"
	EventFightEnded   EventKind = "fight_ended"
)

// heavyDamage is the team health plus shield lost in one tick that is
// worth reporting.
const heavyDamage = 50

// Event is a notable change detected by diffing consecutive worlds.
type Event struct {
	Kind   EventKind
	Tick   int
	UnitID int
	Detail string
}

type unitSnapshot struct {
	lives     int
	ehp       float64
	automaton emulator.AutomatonState
}

// stateSnapshot captures the diffable fields of a planned world.
type stateSnapshot struct {
	tick        int
	units       map[int]unitSnapshot
	enemiesSeen bool
}

func takeSnapshot(w *emulator.World) stateSnapshot {
	s := stateSnapshot{tick: w.CurrentTick, units: make(map[int]unitSnapshot)}
	for i := range w.Units {
		u := &w.Units[i]
		if u.PlayerID != w.MyID {
			if !u.Imaginable {
				s.enemiesSeen = true
			}
			continue
		}
		s.units[u.ID] = unitSnapshot{
			lives:     u.ExtraLives,
			ehp:       u.Health + u.Shield,
			automaton: w.State(u.ID).Automaton,
		}
	}
	return s
}

// detectEvents compares the snapshot of a planned world with the previous
// one. With no previous snapshot only first contact can be reported.
func detectEvents(cur stateSnapshot, prev *stateSnapshot) []Event {
	var events []Event
	add := func(kind EventKind, id int, format string, args ...any) {
		events = append(events, Event{Kind: kind, Tick: cur.tick, UnitID: id, Detail: fmt.Sprintf(format, args...)})
	}

	if cur.enemiesSeen && (prev == nil || !prev.enemiesSeen) {
		add(EventFirstContact, 0, "enemy in sight")
	}
	if prev == nil {
		return events
	}
	if !cur.enemiesSeen && prev.enemiesSeen {
		add(EventContactLost, 0, "no enemy in sight")
	}

	ids := make([]int, 0, len(prev.units))
	for id := range prev.units {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lost := 0.0
	for _, id := range ids {
		before := prev.units[id]
		after, ok := cur.units[id]
		switch {
		case !ok:
			add(EventUnitLost, id, "unit %d gone", id)
			continue
		case after.lives < before.lives:
			add(EventUnitLost, id, "unit %d died, %d lives left", id, after.lives)
			continue
		}
		lost += max(0, before.ehp-after.ehp)
		if before.automaton != emulator.Fight && after.automaton == emulator.Fight {
			add(EventFightStarted, id, "unit %d engages", id)
		}
		if before.automaton == emulator.Fight && after.automaton != emulator.Fight {
			add(EventFightEnded, id, "unit %d disengages", id)
		}
	}
	if lost >= heavyDamage {
		add(EventHeavyDamage, 0, "team lost %.0f health and shield", lost)
	}
	return events
}

func formatEvents(events []Event) string {
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", e.Kind, e.Detail)
	}
	return b.String()
}
