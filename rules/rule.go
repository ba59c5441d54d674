package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/tundra/tundra-core/ipc"
)

// ActionFunc issues the intents for a rule whose condition held.
type ActionFunc func(env SpawnEnv, out ipc.Sender) error

// Rule is a condition → action pair evaluated against one open spawn.
// Category + Exclusive keep two rules from ordering the same spawn around.
type Rule struct {
	Name         string
	Priority     int // higher = evaluated first
	Category     string
	Exclusive    bool
	ConditionSrc string
	program      *vm.Program
	Action       ActionFunc
}
