package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/nstehr/ringfall/emulator"
)

// Engine decides automaton transitions from compiled rules. It is shared by
// every session; Swap replaces the rules while decisions are running.
type Engine struct {
	mu       sync.RWMutex
	rules    []*Rule
	doctrine Doctrine
}

// NewEngine compiles the doctrine's rules into expr bytecode.
func NewEngine(d Doctrine) (*Engine, error) {
	d.Validate()
	compiled, err := compileRules(CompileDoctrine(d))
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled, doctrine: d}, nil
}

// Next returns the automaton state the unit described by env should be in.
// Rules are tried by priority and the first match wins; with no match the
// unit keeps its current state.
func (e *Engine) Next(env UnitEnv) emulator.AutomatonState {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	for _, r := range rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			log.Warn().Str("rule", r.Name).Err(err).Msg("rule condition error")
			continue
		}
		if match, ok := result.(bool); ok && match {
			return r.Next
		}
	}
	return env.State
}

// Doctrine returns the doctrine the current rules were compiled from.
func (e *Engine) Doctrine() Doctrine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doctrine
}

// Swap atomically replaces the doctrine and its rule set. Compiles first;
// if compilation fails the old rules remain active.
func (e *Engine) Swap(d Doctrine) error {
	d.Validate()
	compiled, err := compileRules(CompileDoctrine(d))
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.doctrine = d
	e.mu.Unlock()
	log.Info().Str("doctrine", d.Name).Int("count", len(compiled)).Strs("rules", names).Msg("rule set swapped")
	return nil
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(UnitEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
