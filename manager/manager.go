// Package manager is the per-tick scheduler. RunTick is the single entry
// point the host drives: it runs each component in a fixed order, skips the
// ones the CPU bucket cannot afford and keeps a failing component from
// taking the rest of the tick down with it.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/creeps"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/metrics"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/observer"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/rules"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Component names, in run order.
const (
	Memory  = "memory"
	Rooms   = "rooms"
	Spawn   = "spawn"
	Creeps  = "creeps"
	Visuals = "visuals"
	Empire  = "empire"
)

// Publisher receives the room overlays drawn by the visuals component.
type Publisher interface {
	Publish(o observer.RoomOverlay)
}

type Manager struct {
	Store    *memory.Store
	Tuning   config.Tuning
	Registry *roles.Registry
	Rules    *rules.Engine
	Visuals  Publisher
	Metrics  *metrics.Collector
}

func New(store *memory.Store, tuning config.Tuning, reg *roles.Registry, engine *rules.Engine) *Manager {
	return &Manager{Store: store, Tuning: tuning, Registry: reg, Rules: engine}
}

// TickReport summarizes one tick.
type TickReport struct {
	Tick     int
	Bucket   int
	Ran      []string
	Skipped  []string
	Failed   []string
	Errors   []error
	Assigned int
	Intents  map[string]int
	GC       memory.GCStats
	Duration time.Duration
}

// IntentTotal is the number of intents sent during the tick.
func (r *TickReport) IntentTotal() int {
	n := 0
	for _, v := range r.Intents {
		n += v
	}
	return n
}

type component struct {
	name   string
	bucket int
	every  int
	off    bool
	run    func(t *tick) error
}

func (m *Manager) components() []component {
	b, iv := m.Tuning.Buckets, m.Tuning.Intervals
	return []component{
		{name: Memory, bucket: b.Memory, run: (*tick).memory},
		{name: Rooms, bucket: b.Rooms, run: (*tick).rooms},
		{name: Spawn, bucket: b.Spawn, every: iv.Spawn, run: (*tick).spawn},
		{name: Creeps, bucket: b.Creeps, run: (*tick).creeps},
		{name: Visuals, bucket: b.Visuals, off: !m.Tuning.Options.VisualsOn, run: (*tick).visuals},
		{name: Empire, bucket: b.Empire, run: (*tick).empire},
	}
}

// tick is the state shared by the components of one RunTick call.
type tick struct {
	ctx context.Context
	m   *Manager
	env *roles.Env
	out ipc.Sender
	rep *TickReport
}

// countingSender tallies intents by type on their way out.
type countingSender struct {
	next   ipc.Sender
	counts map[string]int
}

func (c *countingSender) Send(msgType string, data any) error {
	if err := c.next.Send(msgType, data); err != nil {
		return err
	}
	c.counts[msgType]++
	return nil
}

// RunTick decides one tick. Intents go to out as they are produced. It
// never panics; anything that escapes a component lands in the report.
func (m *Manager) RunTick(ctx context.Context, gs *model.GameState, out ipc.Sender) (rep *TickReport) {
	start := time.Now()
	rep = &TickReport{Tick: gs.Tick, Bucket: gs.CPU.Bucket, Intents: make(map[string]int)}
	defer func() {
		if r := recover(); r != nil {
			err := usererr.FromPanic(fmt.Sprintf("tick %d", gs.Tick), r)
			rep.Errors = append(rep.Errors, err)
			usererr.Report(err, "tick", gs.Tick)
		}
		rep.Duration = time.Since(start)
		m.Metrics.RecordTick(rep.Duration.Seconds(), rep.Bucket)
		slog.Debug("tick done", "tick", rep.Tick, "bucket", rep.Bucket, "ran", rep.Ran,
			"skipped", rep.Skipped, "intents", rep.IntentTotal(), "took", rep.Duration)
	}()

	m.Store.Init()
	t := &tick{
		ctx: ctx,
		m:   m,
		env: roles.NewEnv(m.Store, model.NewIndex(gs), m.Tuning),
		out: &countingSender{next: out, counts: rep.Intents},
		rep: rep,
	}
	for _, c := range m.components() {
		t.runComponent(c)
	}
	return rep
}

// allowed applies the bucket gate and the interval throttle. A bucket of
// zero means the host did not report one, so every enabled component runs.
func (t *tick) allowed(c component) bool {
	if c.off {
		return false
	}
	b := t.rep.Bucket
	if b == 0 {
		return true
	}
	if b <= c.bucket {
		return false
	}
	return c.every <= 1 || t.rep.Tick%c.every == 0
}

func (t *tick) runComponent(c component) {
	if !t.allowed(c) {
		t.rep.Skipped = append(t.rep.Skipped, c.name)
		t.m.Metrics.RecordComponent(c.name, metrics.ResultSkipped)
		return
	}
	if err := t.isolate(c); err != nil {
		t.rep.Failed = append(t.rep.Failed, c.name)
		t.rep.Errors = append(t.rep.Errors, err)
		t.m.Metrics.RecordComponent(c.name, metrics.ResultFailed)
		usererr.Report(err, "component", c.name, "tick", t.rep.Tick)
		return
	}
	t.rep.Ran = append(t.rep.Ran, c.name)
	t.m.Metrics.RecordComponent(c.name, metrics.ResultRan)
}

func (t *tick) isolate(c component) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = usererr.FromPanic("component "+c.name, r)
		}
	}()
	return c.run(t)
}

// note records errors a component reported without failing.
func (t *tick) note(errs []error) {
	for _, err := range errs {
		t.rep.Errors = append(t.rep.Errors, err)
		t.m.Metrics.RecordUnitError(usererr.KindName(err))
	}
}

func (t *tick) memory() error {
	t.rep.GC = memory.GarbageCollect(t.m.Store, t.env.Index)
	if n := t.rep.GC.Total(); n > 0 {
		slog.Debug("memory collected", "creeps", t.rep.GC.Creeps, "rooms", t.rep.GC.Rooms,
			"flags", t.rep.GC.Flags, "operations", t.rep.GC.Operations)
	}
	return nil
}

func (t *tick) spawn() error {
	if t.m.Rules == nil {
		return nil
	}
	rep := t.m.Rules.Evaluate(t.env, t.out)
	t.note(rep.Errors)
	return nil
}

func (t *tick) creeps() error {
	rep := creeps.NewDispatcher(t.env, t.m.Registry, t.out).RunAll(t.ctx)
	t.rep.Assigned += rep.AssignedTotal()
	for role, n := range rep.Assigned {
		t.m.Metrics.RecordAssigned(string(role), n)
	}
	t.note(rep.Errors)
	return nil
}
