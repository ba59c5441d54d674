package manager

import (
	"context"
	"testing"

	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/observer"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/rules"
	"github.com/nstehr/tundra/tundra-core/usererr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(x, y int) model.Pos { return model.Pos{X: x, Y: y, Room: "W1N1"} }

// newState is an RCL 1 room with one source and one idle spawn, on a tick
// the spawn interval allows.
func newState() *model.GameState {
	return &model.GameState{
		Tick:     99,
		Username: "me",
		Rooms: []model.Room{{
			Name:                    "W1N1",
			Controller:              &model.Controller{ID: "ctrl", Pos: at(25, 25), My: true, Owner: "me", Level: 1},
			EnergyAvailable:         300,
			EnergyCapacityAvailable: 300,
			Sources:                 []model.Source{{ID: "src1", Pos: at(10, 10), EnergyCapacity: 3000}},
			Structures: []model.Structure{
				{ID: "spawn1", Type: model.StructureSpawn, Pos: at(20, 20), My: true, Hits: 5000, HitsMax: 5000},
			},
		}},
	}
}

func newManager(t *testing.T, tuning config.Tuning) *Manager {
	t.Helper()
	engine, err := rules.NewEngine(rules.DefaultRules())
	require.NoError(t, err)
	return New(memory.New(), tuning, roles.DefaultRegistry(), engine)
}

type recorder struct{ overlays []observer.RoomOverlay }

func (r *recorder) Publish(o observer.RoomOverlay) { r.overlays = append(r.overlays, o) }

type panicky struct{}

func (panicky) Publish(observer.RoomOverlay) { panic("draw failed") }

func TestFullTickSpawnsRecoveryHarvester(t *testing.T) {
	m := newManager(t, config.Default())
	out := &ipc.Batch{}

	rep := m.RunTick(context.Background(), newState(), out)
	require.Empty(t, rep.Errors)
	assert.Equal(t, []string{Memory, Rooms, Spawn, Creeps, Visuals, Empire}, rep.Ran)
	assert.Empty(t, rep.Skipped)
	assert.Equal(t, 1, rep.Intents[ipc.TypeSpawn])
	assert.Equal(t, 1, out.Count(ipc.TypeSpawn))

	rm := m.Store.Rooms["W1N1"]
	require.NotNil(t, rm)
	assert.True(t, rm.Owned)
	assert.Equal(t, memory.RoomStateIntro, rm.RoomState)
	assert.Equal(t, 0, rm.Defcon)
}

func TestLowBucketSkipsExpensiveComponents(t *testing.T) {
	tuning := config.Default()
	tuning.Buckets.Spawn = 100
	m := newManager(t, tuning)
	m.Store.Creeps["ghost"] = &memory.CreepMemory{Role: string(roles.Harvester), HomeRoom: "W1N1"}

	gs := newState()
	gs.CPU.Bucket = 50
	out := &ipc.Batch{}
	rep := m.RunTick(context.Background(), gs, out)

	assert.Contains(t, rep.Ran, Memory)
	assert.Contains(t, rep.Skipped, Spawn)
	assert.Contains(t, rep.Skipped, Rooms)
	assert.Contains(t, rep.Skipped, Creeps)
	assert.Contains(t, rep.Skipped, Empire)
	assert.Contains(t, rep.Skipped, Visuals)
	assert.Equal(t, 0, out.Len())

	_, ok := m.Store.Creep("ghost")
	assert.False(t, ok, "dead creep memory is collected")
	assert.Equal(t, 1, rep.GC.Creeps)
}

func TestSpawnRunsOnInterval(t *testing.T) {
	m := newManager(t, config.Default())
	gs := newState()
	gs.Tick = 100
	gs.CPU.Bucket = 10000

	rep := m.RunTick(context.Background(), gs, &ipc.Batch{})
	assert.Contains(t, rep.Skipped, Spawn)
	assert.Zero(t, rep.Intents[ipc.TypeSpawn])
}

func TestMissingBucketRunsEveryComponent(t *testing.T) {
	m := newManager(t, config.Default())
	gs := newState()
	gs.Tick = 100

	rep := m.RunTick(context.Background(), gs, &ipc.Batch{})
	assert.Empty(t, rep.Skipped)
	assert.Contains(t, rep.Ran, Spawn)
	assert.Equal(t, 1, rep.Intents[ipc.TypeSpawn])
}

func TestFailingComponentIsIsolated(t *testing.T) {
	m := newManager(t, config.Default())
	m.Visuals = panicky{}

	rep := m.RunTick(context.Background(), newState(), &ipc.Batch{})
	assert.Equal(t, []string{Visuals}, rep.Failed)
	assert.Contains(t, rep.Ran, Empire)
	require.Len(t, rep.Errors, 1)
	assert.ErrorIs(t, rep.Errors[0], usererr.ErrPanic)
}

func TestTowerShootsHostile(t *testing.T) {
	m := newManager(t, config.Default())
	gs := newState()
	gs.Tick = 100
	r := &gs.Rooms[0]
	r.Controller.Level = 3
	r.Structures = append(r.Structures, model.Structure{
		ID: "tower1", Type: model.StructureTower, Pos: at(25, 20), My: true, Hits: 3000, HitsMax: 3000,
		Store: model.Store{Energy: 500, Capacity: 1000},
	})
	r.Hostiles = []model.Creep{{ID: "bad", Name: "bad", Owner: "them", Pos: at(30, 30),
		Body: map[string]int{model.Attack: 2, model.Move: 2}, Hits: 400, HitsMax: 400}}

	out := &ipc.Batch{}
	rep := m.RunTick(context.Background(), gs, out)
	assert.Equal(t, 1, rep.Intents[ipc.TypeTowerAttack])
	assert.Equal(t, 2, m.Store.Rooms["W1N1"].Defcon)

	// a threatened room raises its own defenders
	var managers []string
	for _, op := range m.Store.Empire.MilitaryOperations {
		for _, sq := range op.Squads {
			managers = append(managers, sq.Manager)
		}
	}
	assert.Equal(t, []string{"domesticDefenderSquad"}, managers)
}

func TestVisualsNeedBucketAndSwitch(t *testing.T) {
	m := newManager(t, config.Default())
	rec := &recorder{}
	m.Visuals = rec

	m.RunTick(context.Background(), newState(), &ipc.Batch{})
	require.Len(t, rec.overlays, 1)
	assert.Equal(t, "W1N1", rec.overlays[0].Room)
	assert.Equal(t, 1, rec.overlays[0].RCL)
	assert.NotNil(t, rec.overlays[0].Limits)
	assert.NotNil(t, rec.overlays[0].Jobs)

	gs := newState()
	gs.CPU.Bucket = 6000
	rep := m.RunTick(context.Background(), gs, &ipc.Batch{})
	assert.Contains(t, rep.Skipped, Visuals)
	assert.Len(t, rec.overlays, 1)

	gs = newState()
	gs.CPU.Bucket = 8000
	rep = m.RunTick(context.Background(), gs, &ipc.Batch{})
	assert.Contains(t, rep.Ran, Visuals)
	assert.Len(t, rec.overlays, 2)

	m.Tuning.Options.VisualsOn = false
	rep = m.RunTick(context.Background(), newState(), &ipc.Batch{})
	assert.Contains(t, rep.Skipped, Visuals)
	assert.Len(t, rec.overlays, 2)
}
