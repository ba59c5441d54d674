package rules

import (
	"fmt"
	"os"

	"github.com/nstehr/tundra/tundra-core/roles"
	"gopkg.in/yaml.v3"
)

const CategorySpawn = "spawn"

// Action names a RuleSpec may use.
const (
	ActionNameSpawn    = "spawn"
	ActionNameRecover  = "recover"
	ActionNameMilitary = "military"
)

// RuleSpec is the serializable form of a spawn rule, as written in a rules
// file.
type RuleSpec struct {
	Name      string `yaml:"name"`
	Priority  int    `yaml:"priority"`
	Action    string `yaml:"action"`
	Role      string `yaml:"role,omitempty"`
	Condition string `yaml:"condition"`
}

// DefaultSpecs is the shipped spawn order: recovery harvester, then the
// military queue, then domestic roles, then remote roles.
func DefaultSpecs() []RuleSpec {
	specs := []RuleSpec{
		{
			Name:      "recover-harvester",
			Priority:  1100,
			Action:    ActionNameRecover,
			Role:      string(roles.Harvester),
			Condition: `RoomCount("harvester") == 0 && RoomCount("miner") == 0`,
		},
		{
			Name:      "spawn-military",
			Priority:  1000,
			Action:    ActionNameMilitary,
			Condition: `MilitaryQueued() > 0`,
		},
	}
	for i, r := range roles.Domestic() {
		cond := fmt.Sprintf(`Needs(%q)`, r)
		if r == roles.StorageManager {
			cond += ` && PrimarySpawn()`
		}
		specs = append(specs, RuleSpec{
			Name:      "spawn-" + string(r),
			Priority:  900 - 10*i,
			Action:    ActionNameSpawn,
			Role:      string(r),
			Condition: cond,
		})
	}
	for i, r := range roles.Remote() {
		specs = append(specs, RuleSpec{
			Name:      "spawn-" + string(r),
			Priority:  500 - 10*i,
			Action:    ActionNameSpawn,
			Role:      string(r),
			Condition: fmt.Sprintf(`Needs(%q)`, r),
		})
	}
	return specs
}

// Compile turns specs into rules. Every rule is an exclusive spawn rule:
// one spawn takes one order per evaluation.
func Compile(specs []RuleSpec) ([]*Rule, error) {
	out := make([]*Rule, 0, len(specs))
	for _, s := range specs {
		action, err := actionFor(s)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", s.Name, err)
		}
		out = append(out, &Rule{
			Name:         s.Name,
			Priority:     s.Priority,
			Category:     CategorySpawn,
			Exclusive:    true,
			ConditionSrc: s.Condition,
			Action:       action,
		})
	}
	return out, nil
}

func actionFor(s RuleSpec) (ActionFunc, error) {
	if s.Action == ActionNameMilitary {
		return ActionSpawnMilitary, nil
	}
	role, ok := roles.Parse(s.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", s.Role)
	}
	switch s.Action {
	case ActionNameSpawn:
		return ActionSpawn(role), nil
	case ActionNameRecover:
		return ActionRecover(role), nil
	}
	return nil, fmt.Errorf("unknown action %q", s.Action)
}

// DefaultRules compiles DefaultSpecs. The specs are fixed, so failure here
// is a programming error.
func DefaultRules() []*Rule {
	rules, err := Compile(DefaultSpecs())
	if err != nil {
		panic(err)
	}
	return rules
}

// LoadSpecs reads a YAML list of RuleSpec.
func LoadSpecs(path string) ([]RuleSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var specs []RuleSpec
	if err := yaml.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}
