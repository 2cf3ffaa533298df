package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nstehr/ringfall/emulator"
	"github.com/nstehr/ringfall/ipc"
	"github.com/nstehr/ringfall/model"
	"github.com/nstehr/ringfall/rules"
	"github.com/nstehr/ringfall/search"
)

// logEvery throttles the per-tick summary line.
const logEvery = 100

// ErrNoHello is returned for a game state that arrives before the ruleset.
var ErrNoHello = errors.New("game state before hello")

// Agent owns the decision-making for a single game session.
type Agent struct {
	Conn   *ipc.Connection
	Player string

	engine   *rules.Engine
	searcher *search.Searcher
	seed     int64
	tracer   trace.Tracer

	consts *emulator.Constants
	state  *search.State
	prev   *stateSnapshot
}

// New returns an agent for conn. The rules engine is shared between
// sessions so a doctrine reload reaches every game.
func New(conn *ipc.Connection, engine *rules.Engine, params search.Params, seed int64, clock search.Clock) *Agent {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Agent{
		Conn:     conn,
		engine:   engine,
		searcher: search.NewSearcher(params, engine, clock),
		seed:     seed,
		tracer:   otel.Tracer("ringfall/agent"),
	}
}

// Register installs the agent's handlers on its connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeGameState, a.HandleGameState)
	a.Conn.RegisterHandler(ipc.TypeFinish, a.HandleFinish)
}

// HandleHello stores the ruleset and starts a fresh game.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}
	c, err := ConstantsFromModel(hello.Constants)
	if err != nil {
		return nil, err
	}

	a.Player = hello.Player
	a.consts = c
	a.state = search.NewState(a.engine.Doctrine(), a.seed)
	a.prev = nil
	a.Conn.Log.Info().
		Str("player", a.Player).
		Int("team", c.TeamSize).
		Int("obstacles", len(c.Obstacles)).
		Int("weapons", len(c.Weapons)).
		Str("doctrine", a.engine.Doctrine().Name).
		Msg("game started")

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleGameState plans one tick and replies with the orders.
func (a *Agent) HandleGameState(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.consts == nil {
		return nil, ErrNoHello
	}
	var g model.Game
	if err := json.Unmarshal(env.Data, &g); err != nil {
		return nil, fmt.Errorf("unmarshal game: %w", err)
	}

	_, span := a.tracer.Start(context.Background(), "decide",
		trace.WithAttributes(
			attribute.String("session", a.Conn.Session),
			attribute.Int("tick", g.CurrentTick),
			attribute.Int("units", len(g.Units)),
		))
	defer span.End()

	w := WorldFromGame(a.consts, g)
	dec := a.searcher.Decide(a.state, w)

	candidates := 0
	for _, r := range dec.Reports {
		candidates += r.Candidates
	}
	span.SetAttributes(
		attribute.Int("orders", len(dec.Orders)),
		attribute.Int("candidates", candidates),
	)

	snap := takeSnapshot(w)
	if events := detectEvents(snap, a.prev); len(events) > 0 {
		for _, e := range events {
			span.AddEvent(string(e.Kind), trace.WithAttributes(attribute.Int("unit", e.UnitID)))
		}
		a.Conn.Log.Info().Int("tick", g.CurrentTick).Str("events", formatEvents(events)).Msg("game events")
	}
	a.prev = &snap

	if g.CurrentTick%logEvery == 0 {
		a.Conn.Log.Info().
			Int("tick", g.CurrentTick).
			Int("units", len(w.Units)).
			Int("loot", len(w.Loot)).
			Int("projectiles", len(w.Projectiles)).
			Int("candidates", candidates).
			Float64("zone", w.Zone.CurrentRadius).
			Msg("game state received")
	}

	resp, err := ipc.NewEnvelope(ipc.TypeOrder, ipc.OrderMessage{Tick: g.CurrentTick, Order: OrderToModel(dec.Orders)})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// HandleFinish ends the game. The connection stays open for the next one.
func (a *Agent) HandleFinish(env ipc.Envelope) (*ipc.Envelope, error) {
	a.Conn.Log.Info().Str("player", a.Player).Msg("game finished")
	a.consts = nil
	a.state = nil
	a.prev = nil
	return nil, nil
}
