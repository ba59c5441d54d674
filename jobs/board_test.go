package jobs

import (
	"testing"

	"github.com/nstehr/tundra/tundra-core/cache"
	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/usererr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(x, y int) model.Pos { return model.Pos{X: x, Y: y, Room: "W1N1"} }

func homeState(tick int) *model.GameState {
	return &model.GameState{
		Tick:     tick,
		Username: "me",
		Rooms: []model.Room{{
			Name:       "W1N1",
			Controller: &model.Controller{ID: "ctrl", Pos: at(25, 25), My: true, Level: 4},
			Sources: []model.Source{
				{ID: "src1", Pos: at(10, 10), EnergyCapacity: 3000},
				{ID: "src2", Pos: at(40, 40), EnergyCapacity: 3000},
			},
			Structures: []model.Structure{
				{ID: "spawn1", Type: model.StructureSpawn, Pos: at(20, 20), My: true, Hits: 5000, HitsMax: 5000,
					Store: model.Store{Energy: 100, Capacity: 300}},
				{ID: "ext1", Type: model.StructureExtension, Pos: at(21, 20), My: true, Hits: 1000, HitsMax: 1000,
					Store: model.Store{Energy: 50, Capacity: 50}},
				{ID: "tower1", Type: model.StructureTower, Pos: at(22, 22), My: true, Hits: 3000, HitsMax: 3000,
					Store: model.Store{Energy: 900, Capacity: 1000}},
				{ID: "cont1", Type: model.StructureContainer, Pos: at(11, 11), Hits: 100000, HitsMax: 250000,
					Store: model.Store{Energy: 500, Capacity: 2000}},
				{ID: "road1", Type: model.StructureRoad, Pos: at(15, 15), Hits: 4900, HitsMax: 5000},
			},
			ConstructionSites: []model.ConstructionSite{
				{ID: "site1", Pos: at(30, 30), StructureType: model.StructureExtension, My: true, ProgressTotal: 3000},
			},
		}},
	}
}

func newBoard(store *memory.Store, gs *model.GameState) *Board {
	tuning := config.Default()
	idx := model.NewIndex(gs)
	return NewBoard(store, cache.New(store, idx, tuning), tuning)
}

func addCreep(gs *model.GameState, store *memory.Store, name string, body map[string]int, st model.Store, job *memory.Job) *model.Creep {
	gs.Creeps = append(gs.Creeps, model.Creep{ID: "id-" + name, Name: name, Pos: at(25, 20), Body: body, Store: st})
	store.Creeps[name] = &memory.CreepMemory{HomeRoom: "W1N1", Job: job}
	return &gs.Creeps[len(gs.Creeps)-1]
}

func ids(list []*memory.Job) []string {
	out := make([]string, 0, len(list))
	for _, j := range list {
		out = append(out, j.TargetID)
	}
	return out
}

func TestFillJobs(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	b := newBoard(store, homeState(1))

	fills := b.Jobs("W1N1", Fill, nil)
	// ext1 is full, tower1 is above the tower threshold.
	assert.Equal(t, []string{"spawn1"}, ids(fills))
	assert.Equal(t, CarryPartJob, fills[0].JobType)
	assert.Equal(t, 200, fills[0].Resources)
}

func TestRegenerationRestoresTakenFromLiveUnits(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	addCreep(gs, store, "hauler", nil, model.Store{Energy: 50, Capacity: 50},
		&memory.Job{JobType: CarryPartJob, TargetID: "spawn1", ActionType: ActionTransfer})
	b := newBoard(store, gs)

	fills := b.Jobs("W1N1", Fill, nil)
	require.Len(t, fills, 1)
	assert.True(t, fills[0].IsTaken)
	assert.Empty(t, b.Jobs("W1N1", Fill, NotTaken))
}

func TestUpdateJobMemoryMarksExclusiveTaken(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	c := addCreep(gs, store, "w1", map[string]int{model.Work: 1}, model.Store{Energy: 50, Capacity: 50}, nil)
	b := newBoard(store, gs)

	build := b.Jobs("W1N1", Build, NotTaken)
	require.Len(t, build, 1)
	cm := store.Creeps["w1"]
	cm.Job = build[0].Clone()

	require.NoError(t, b.UpdateJobMemory(c, cm, "W1N1"))
	assert.True(t, build[0].IsTaken)
	assert.Empty(t, b.Jobs("W1N1", Build, NotTaken))
}

func TestUpdateJobMemoryStaleJob(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	stale := &memory.Job{JobType: WorkPartJob, TargetID: "gone", ActionType: ActionBuild}
	c := addCreep(gs, store, "w1", nil, model.Store{}, stale)
	cm := store.Creeps["w1"]
	cm.Working = true
	b := newBoard(store, gs)

	err := b.UpdateJobMemory(c, cm, "W1N1")

	require.Error(t, err)
	assert.ErrorIs(t, err, usererr.ErrInvalidJob)
	assert.Equal(t, usererr.Warn, usererr.SeverityOf(err))
	assert.Nil(t, cm.Job)
	assert.False(t, cm.Working)
}

func TestMoveJobsNeverTouchTheCatalog(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	c := addCreep(gs, store, "scout", nil, model.Store{}, NewMoveJob("W2N1"))
	b := newBoard(store, gs)

	require.NoError(t, b.UpdateJobMemory(c, store.Creeps["scout"], "W1N1"))
	assert.NotNil(t, store.Creeps["scout"].Job)
}

func TestSourceJobsAccountForMinerWorkParts(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	addCreep(gs, store, "m1", map[string]int{model.Work: 5}, model.Store{},
		&memory.Job{JobType: GetEnergyJob, TargetID: "src1", ActionType: ActionHarvest})
	addCreep(gs, store, "m2", map[string]int{model.Work: 2}, model.Store{},
		&memory.Job{JobType: GetEnergyJob, TargetID: "src2", ActionType: ActionHarvest})
	b := newBoard(store, gs)

	src := b.Jobs("W1N1", Source, nil)
	require.Len(t, src, 2)
	assert.True(t, src[0].IsTaken, "five work parts drain a 3000 source")
	assert.Equal(t, 0, src[0].Resources)
	assert.False(t, src[1].IsTaken)
	assert.Equal(t, 3000-2*2*300, src[1].Resources)
}

func TestCapacityJobShrinksOnTake(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	c1 := addCreep(gs, store, "h1", nil, model.Store{Capacity: 300}, nil)
	c2 := addCreep(gs, store, "h2", nil, model.Store{Capacity: 300}, nil)
	b := newBoard(store, gs)

	conts := b.Jobs("W1N1", Container, nil)
	require.Len(t, conts, 1)
	assert.Equal(t, 500, conts[0].Resources)

	store.Creeps["h1"].Job = conts[0].Clone()
	require.NoError(t, b.UpdateJobMemory(c1, store.Creeps["h1"], "W1N1"))
	assert.Equal(t, 200, conts[0].Resources)
	assert.True(t, conts[0].IsTaken)
	assert.Empty(t, b.Jobs("W1N1", Container, NotTaken))

	store.Creeps["h2"].Job = conts[0].Clone()
	require.NoError(t, b.UpdateJobMemory(c2, store.Creeps["h2"], "W1N1"))
	assert.Equal(t, 0, conts[0].Resources)
	assert.True(t, conts[0].IsTaken)
}

func TestSharedJobsStayOpenOnTake(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	c := addCreep(gs, store, "u1", map[string]int{model.Work: 1}, model.Store{Energy: 50, Capacity: 50}, nil)
	b := newBoard(store, gs)

	up := b.Jobs("W1N1", Upgrade, nil)
	require.NotEmpty(t, up)
	store.Creeps["u1"].Job = up[0].Clone()
	require.NoError(t, b.UpdateJobMemory(c, store.Creeps["u1"], "W1N1"))
	assert.False(t, up[0].IsTaken)
}

func TestSearchLooksAcrossListsOfJobType(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	b := newBoard(store, homeState(1))

	got := b.Search(&memory.Job{JobType: WorkPartJob, TargetID: "cont1", ActionType: ActionRepair}, "W1N1")
	require.NotNil(t, got)
	assert.Equal(t, model.StructureContainer, got.TargetType)

	assert.Nil(t, b.Search(&memory.Job{JobType: CarryPartJob, TargetID: "cont1", ActionType: ActionRepair}, "W1N1"))
	assert.Nil(t, b.Search(&memory.Job{JobType: WorkPartJob, TargetID: "road1", ActionType: ActionRepair}, "W1N1"),
		"road1 is healthy enough to have no job")
	assert.Nil(t, b.Search(nil, "W1N1"))
}

func TestRepairAndPriorityRepair(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	gs := homeState(1)
	gs.Rooms[0].Structures = append(gs.Rooms[0].Structures,
		model.Structure{ID: "rampart1", Type: model.StructureRampart, My: true, Hits: 1000, HitsMax: 3000000},
		model.Structure{ID: "wall1", Type: model.StructureWall, Hits: 9500, HitsMax: 300000000},
	)
	b := newBoard(store, gs)

	repairs := ids(b.Jobs("W1N1", Repair, nil))
	// cont1 is at 40%, road1 at 98%, rampart1 at 10% of the rampart cap, wall1 at 95%.
	assert.ElementsMatch(t, []string{"cont1", "rampart1"}, repairs)
	assert.Equal(t, []string{"rampart1"}, ids(b.PriorityRepairJobs("W1N1")))
}

func TestJobListTTL(t *testing.T) {
	store := memory.New()
	store.InitRoom("W1N1", true)
	tuning := config.Default()

	gs := homeState(100)
	require.Len(t, newBoard(store, gs).Jobs("W1N1", Build, nil), 1)

	gs = homeState(100 + tuning.JobTTL("build") - 1)
	gs.Rooms[0].ConstructionSites = nil
	b := newBoard(store, gs)
	assert.Len(t, b.Jobs("W1N1", Build, nil), 1, "within ttl the old list stands")
	assert.Empty(t, b.Fresh("W1N1", Build, nil), "Fresh ignores the ttl")
}

func TestClaimPartJobsOnlyForOwnedRooms(t *testing.T) {
	store := memory.New()
	home := store.InitRoom("W1N1", true)
	home.ClaimRooms = []*memory.DependentRoom{{RoomName: "W2N1"}}
	home.RemoteRooms = []*memory.DependentRoom{{RoomName: "W1N2"}}
	home.AttackRooms = []*memory.DependentRoom{{RoomName: "W3N3"}}
	b := newBoard(store, homeState(1))

	assert.Equal(t, []string{"W2N1"}, ids(b.Jobs("W1N1", Claim, nil)))
	assert.Equal(t, []string{"W1N2"}, ids(b.Jobs("W1N1", Reserve, nil)))
	assert.Equal(t, []string{"W3N3"}, ids(b.Jobs("W1N1", Attack, nil)))
	assert.Equal(t, []string{"ctrl"}, ids(b.Jobs("W1N1", Sign, nil)), "unsigned controller")
	assert.Equal(t, []string{"ctrl"}, ids(b.Jobs("W1N1", Upgrade, nil)))
}

func TestKindsOf(t *testing.T) {
	assert.Equal(t, []Kind{Repair, Build, Upgrade}, KindsOf(WorkPartJob))
	assert.Equal(t, []Kind{Fill, Store}, KindsOf(CarryPartJob))
	assert.Empty(t, KindsOf(MovePartJob))
}
