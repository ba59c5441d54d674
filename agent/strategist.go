package agent

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/rules"
)

// Strategist runs in the background, periodically re-reading the spawn rule
// file and swapping the rule engine's rule set when it has changed. Notable
// events wake it early so the situation gets logged with them.
type Strategist struct {
	mu       sync.Mutex
	latest   *model.GameState
	events   []Event
	engine   *rules.Engine
	path     string // spawn rule YAML; empty keeps the built-in rules
	interval int    // re-evaluate every N ticks
	lastTick int    // tick of last evaluation
	digest   [sha256.Size]byte
	ready    chan struct{}
}

// NewStrategist creates a strategist watching path.
func NewStrategist(engine *rules.Engine, path string, interval int) *Strategist {
	if interval <= 0 {
		interval = 500
	}
	return &Strategist{
		engine:   engine,
		path:     path,
		interval: interval,
		ready:    make(chan struct{}, 1),
	}
}

// UpdateState stores the latest game state and any events detected on it.
// Signals readiness on the first call, on interval boundaries and whenever
// events arrive.
func (s *Strategist) UpdateState(gs model.GameState, events []Event) {
	s.mu.Lock()
	first := s.latest == nil
	s.latest = &gs
	s.events = append(s.events, events...)
	shouldSignal := first || len(events) > 0 || (gs.Tick-s.lastTick >= s.interval)
	s.mu.Unlock()

	if shouldSignal {
		select {
		case s.ready <- struct{}{}:
		default:
		}
	}
}

// Start launches the background strategist loop. It blocks until ctx is cancelled.
func (s *Strategist) Start(ctx context.Context) {
	slog.Info("strategist started", "rules", s.path, "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("strategist stopped")
			return
		case <-s.ready:
			s.evaluate()
		}
	}
}

func (s *Strategist) evaluate() {
	s.mu.Lock()
	gs := s.latest
	events := s.events
	s.events = nil
	s.mu.Unlock()

	if gs == nil {
		return
	}

	slog.Info("strategist evaluating", "tick", gs.Tick, "situation", summarize(*gs, events))

	if err := s.reload(); err != nil {
		slog.Error("strategist rule reload failed", "path", s.path, "error", err)
	}

	s.mu.Lock()
	s.lastTick = gs.Tick
	s.mu.Unlock()
}

// reload swaps in the rule file when its contents changed since the last
// successful load.
func (s *Strategist) reload() error {
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(raw)
	if sum == s.digest {
		return nil
	}
	specs, err := rules.LoadSpecs(s.path)
	if err != nil {
		return err
	}
	compiled, err := rules.Compile(specs)
	if err != nil {
		return err
	}
	if err := s.engine.Swap(compiled); err != nil {
		return err
	}
	s.digest = sum
	slog.Info("spawn rules reloaded", "path", s.path, "rules", len(compiled))
	return nil
}

// summarize produces a short text summary of the empire for the log.
func summarize(gs model.GameState, events []Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tick: %d | Bucket: %d | Creeps: %d\n", gs.Tick, gs.CPU.Bucket, len(gs.Creeps))

	for i := range gs.Rooms {
		r := &gs.Rooms[i]
		if !r.IsOwned() {
			continue
		}
		fmt.Fprintf(&b, "Room %s: RCL %d, energy %d/%d, hostiles %d\n",
			r.Name, r.Controller.Level, r.EnergyAvailable, r.EnergyCapacityAvailable, len(r.Hostiles))
	}
	b.WriteString(formatEvents(events))
	return b.String()
}
