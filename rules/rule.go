package rules

import (
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/ringfall/emulator"
)

// Rule is one automaton transition: when the condition holds, the unit
// moves to Next. The engine tries rules by priority and the first match wins.
type Rule struct {
	Name         string                  // human-readable identifier
	Priority     int                     // higher = evaluated first
	ConditionSrc string                  // expr source (preserved for logging)
	program      *vm.Program             // compiled bytecode
	Next         emulator.AutomatonState // state entered when the condition holds
}
