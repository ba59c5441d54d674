package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nstehr/tundra/tundra-core/agent"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/journal"
	"github.com/nstehr/tundra/tundra-core/manager"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Scenario is a recorded or hand-written sequence of world states. Keys use
// the same names as the host's JSON tick messages.
type Scenario struct {
	Player string `yaml:"player"`
	States []any  `yaml:"states"`
}

// loadScenario reads a scenario file. States are decoded through JSON so the
// model's json tags apply.
func loadScenario(path string) (string, []model.GameState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(sc.States) == 0 {
		return "", nil, fmt.Errorf("%s: no states", path)
	}
	states := make([]model.GameState, len(sc.States))
	for i, s := range sc.States {
		b, err := json.Marshal(s)
		if err != nil {
			return "", nil, fmt.Errorf("%s: state %d: %w", path, i, err)
		}
		if err := json.Unmarshal(b, &states[i]); err != nil {
			return "", nil, fmt.Errorf("%s: state %d: %w", path, i, err)
		}
	}
	return sc.Player, states, nil
}

// stateAt returns the i-th tick to play. Past the end of the scenario the
// last state repeats with the tick counter advancing.
func stateAt(states []model.GameState, i int) (*model.GameState, error) {
	last := len(states) - 1
	src := states[min(i, last)]
	// deep copy so a tick never sees the previous tick's mutations
	b, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var gs model.GameState
	if err := json.Unmarshal(b, &gs); err != nil {
		return nil, err
	}
	if i > last {
		gs.Tick = states[last].Tick + i - last
	}
	return &gs, nil
}

func dryrunCommand() *cobra.Command {
	var (
		scenarioPath string
		ticks        int
		journalPath  string
	)
	cmd := &cobra.Command{
		Use:   "dryrun",
		Short: "Play a scenario file through the controller without a game host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenarioPath == "" {
				return fmt.Errorf("scenario file is required (use --scenario)")
			}
			return dryrun(cmd.Context(), scenarioPath, ticks, journalPath)
		},
	}
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario YAML file")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "ticks to play (defaults to the number of states)")
	cmd.Flags().StringVar(&journalPath, "journal", "", "SQLite file receiving one row per tick")
	return cmd
}

func dryrun(ctx context.Context, scenarioPath string, ticks int, journalPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tuning, err := loadTuning()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	engine, err := loadEngine()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	player, states, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}
	if ticks <= 0 {
		ticks = len(states)
	}

	out := &ipc.Batch{}
	a := agent.New(out, manager.New(memory.New(), tuning, roles.DefaultRegistry(), engine))
	a.Player = player

	var j *journal.Journal
	if journalPath != "" {
		j, err = journal.Open(journalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		a.Journal = j
	}

	slog.Info("dry run", "scenario", scenarioPath, "ticks", ticks, "player", player)
	for i := 0; i < ticks; i++ {
		gs, err := stateAt(states, i)
		if err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		rep := a.Tick(ctx, gs)
		for _, err := range rep.Errors {
			slog.Warn("tick error", "tick", rep.Tick, "error", err)
		}
		out.Envelopes = out.Envelopes[:0]
	}

	if j != nil {
		sum, err := j.Summary()
		if err != nil {
			return err
		}
		fmt.Printf("ticks %d (%d..%d): %d assigned, %d intents, %d errors\n",
			sum.Ticks, sum.First, sum.Last, sum.Assigned, sum.Intents, sum.Errors)
	}
	return nil
}
