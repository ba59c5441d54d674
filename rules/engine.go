// Package rules decides what each owned room spawns. Conditions are expr
// programs compiled once; actions issue spawn intents.
package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Engine runs compiled rules against every idle spawn each time spawning
// is due. Rules fire in priority order; exclusive rules block lower-priority
// rules in the same category for that spawn.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
}

// Report is the outcome of one Evaluate pass.
type Report struct {
	Spawns int // idle spawns considered
	Fired  map[string]int
	Errors []error
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Evaluate refreshes creep limits and runs the rules for every owned room
// with an idle spawn.
func (e *Engine) Evaluate(world *roles.Env, out ipc.Sender) *Report {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	rep := &Report{Fired: make(map[string]int)}
	for _, r := range world.Index.OwnedRooms() {
		rm := world.Store.InitRoom(r.Name, true)
		spawns := openSpawns(world.Cache.Structures(r.Name, model.StructureSpawn))
		if len(spawns) == 0 {
			continue
		}
		ComputeLimits(newSpawnEnv(world, r, rm, nil))

		for _, sp := range spawns {
			rep.Spawns++
			env := newSpawnEnv(world, r, rm, sp)
			e.evaluateSpawn(rules, env, out, rep)
		}
	}
	return rep
}

func (e *Engine) evaluateSpawn(rules []*Rule, env SpawnEnv, out ipc.Sender, rep *Report) {
	fired := make(map[string]bool) // category → exclusive rule already fired
	for _, r := range rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		rep.Fired[r.Name]++
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "room", env.Room.Name, "spawn", env.Spawn.ID)

		if err := r.Action(env, out); err != nil {
			rep.Errors = append(rep.Errors, fmt.Errorf("rule %s: %w", r.Name, err))
			usererr.Report(err, "rule", r.Name, "room", env.Room.Name)
		}

		if r.Exclusive {
			fired[r.Category] = true
		}
	}
}

// Swap atomically replaces the rule set. Compiles first; if compilation
// fails the old rules remain active.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// Rules returns the active rules in evaluation order.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Rule(nil), e.rules...)
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(SpawnEnv{}), expr.AsBool())
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
