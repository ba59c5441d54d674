package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/expr-lang/expr"
)

func TestDefaultSpecsCompile(t *testing.T) {
	for _, s := range DefaultSpecs() {
		if _, err := expr.Compile(s.Condition, expr.Env(SpawnEnv{}), expr.AsBool()); err != nil {
			t.Errorf("rule %q failed to compile: %v\ncondition: %s", s.Name, err, s.Condition)
		}
	}
}

func TestManagerOnlyOnPrimarySpawn(t *testing.T) {
	for _, s := range DefaultSpecs() {
		if s.Name == "spawn-manager" && !strings.Contains(s.Condition, "PrimarySpawn()") {
			t.Errorf("manager rule not gated on the primary spawn: %s", s.Condition)
		}
	}
}

func TestCompileRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name string
		spec RuleSpec
	}{
		{"role", RuleSpec{Name: "x", Action: ActionNameSpawn, Role: "bard", Condition: "true"}},
		{"action", RuleSpec{Name: "x", Action: "teleport", Role: "miner", Condition: "true"}},
	}
	for _, tc := range tests {
		if _, err := Compile([]RuleSpec{tc.spec}); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLoadSpecs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	src := `
- name: defenders-first
  priority: 2000
  action: spawn
  role: domesticDefender
  condition: HostileCount() > 0 && RoomCount("domesticDefender") < 2
- name: military
  priority: 1000
  action: military
  condition: MilitaryQueued() > 0
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	specs, err := LoadSpecs(path)
	if err != nil {
		t.Fatalf("LoadSpecs: %v", err)
	}
	if len(specs) != 2 || specs[0].Role != "domesticDefender" || specs[1].Action != ActionNameMilitary {
		t.Fatalf("unexpected specs: %+v", specs)
	}
	rules, err := Compile(specs)
	if err != nil {
		t.Fatal(err)
	}
	engine, err := NewEngine(rules)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if engine.rules[0].Name != "defenders-first" {
		t.Errorf("first rule = %s", engine.rules[0].Name)
	}
}
