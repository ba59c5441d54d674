package military

import (
	"encoding/json"
	"testing"

	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/usererr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(room string, x, y int) model.Pos { return model.Pos{X: x, Y: y, Room: room} }

type fixture struct {
	gs    *model.GameState
	store *memory.Store
	out   *ipc.Batch
}

func newFixture() *fixture {
	f := &fixture{
		gs: &model.GameState{
			Tick:     500,
			Username: "me",
			Rooms: []model.Room{
				{Name: "W1N1", Controller: &model.Controller{ID: "ctrl", Pos: at("W1N1", 25, 25), My: true, Owner: "me", Level: 4}},
				{Name: "W2N1", Controller: &model.Controller{ID: "ctrl2", Pos: at("W2N1", 25, 25), Owner: "them", Level: 3}},
			},
		},
		store: memory.New(),
		out:   &ipc.Batch{},
	}
	f.store.InitRoom("W1N1", true)
	return f
}

func (f *fixture) creep(name string, role roles.Role, pos model.Pos, body map[string]int, sq *memory.Squad, caravan int) {
	f.gs.Creeps = append(f.gs.Creeps, model.Creep{ID: "id-" + name, Name: name, Pos: pos, Body: body, Hits: 100, HitsMax: 100})
	opts := roles.DefaultOptions(role, "")
	opts.CaravanPos = caravan
	f.store.Creeps[name] = &memory.CreepMemory{
		Role: string(role), HomeRoom: "W1N1", TargetRoom: sq.TargetRoom, Options: opts,
		OperationUUID: sq.OperationUUID, SquadUUID: sq.SquadUUID,
	}
}

func (f *fixture) run() *Report {
	env := roles.NewEnv(f.store, model.NewIndex(f.gs), config.Default())
	return Run(env, roles.DefaultRegistry(), f.out)
}

func (f *fixture) squad(t *testing.T, manager string) *memory.Squad {
	t.Helper()
	op := NewOperation(f.store, OpAttack)
	sq, err := CreateSquad(f.store, manager, "W2N1", op, "W1N1", f.gs.Tick)
	require.NoError(t, err)
	return sq
}

func TestCreateSquadQueuesRoster(t *testing.T) {
	f := newFixture()
	sq := f.squad(t, Standard)

	assert.Equal(t, memory.SquadStatusInit, sq.Status)
	assert.Equal(t, 2, sq.Queued)
	assert.Equal(t, "W1N1", sq.RallyRoom)
	assert.NotEmpty(t, sq.SquadUUID)

	q := f.store.Rooms["W1N1"].CreepLimit.MilitaryQueue
	require.Len(t, q, 2)
	assert.Equal(t, string(roles.Zealot), q[0].Role)
	assert.Equal(t, string(roles.Medic), q[1].Role)
	assert.Equal(t, 1, q[1].Options.CaravanPos)
	assert.True(t, q[1].Options.Squad)
	assert.Equal(t, PriorityLow, q[0].Priority)
	assert.Equal(t, "W2N1", q[0].TargetRoom)
}

func TestCreateSquadErrors(t *testing.T) {
	f := newFixture()
	op := NewOperation(f.store, OpAttack)

	_, err := CreateSquad(f.store, "pirateSquad", "W2N1", op, "W1N1", 1)
	assert.ErrorIs(t, err, usererr.ErrUnregisteredRole)

	_, err = CreateSquad(f.store, Standard, "W2N1", "no-such-op", "W1N1", 1)
	assert.ErrorIs(t, err, usererr.ErrNullData)

	_, err = CreateSquad(f.store, Standard, "W2N1", op, "W9N9", 1)
	assert.ErrorIs(t, err, usererr.ErrNullData)
}

func TestEnlist(t *testing.T) {
	f := newFixture()
	sq := f.squad(t, Standard)
	q := f.store.Rooms["W1N1"].CreepLimit.MilitaryQueue

	Enlist(f.store, q[0], "zealot_4_500")
	assert.Equal(t, []string{"zealot_4_500"}, sq.Creeps)
	assert.Equal(t, 1, sq.Queued)
}

func TestSquadRalliesThenMovesOut(t *testing.T) {
	f := newFixture()
	sq := f.squad(t, Standard)
	f.store.Rooms["W1N1"].CreepLimit.MilitaryQueue = nil
	sq.Queued = 0
	sq.Creeps = []string{"z1", "m1"}
	f.creep("z1", roles.Zealot, at("W1N1", 24, 25), map[string]int{model.Attack: 2, model.Move: 2}, sq, 0)
	f.creep("m1", roles.Medic, at("W1N1", 40, 40), map[string]int{model.Heal: 1, model.Move: 1}, sq, 1)

	f.run()
	assert.Equal(t, memory.SquadStatusRally, sq.Status)

	// the medic is still too far from the rally point
	f.run()
	assert.Equal(t, memory.SquadStatusRally, sq.Status)

	f.gs.Creeps[1].Pos = at("W1N1", 26, 27)
	f.out = &ipc.Batch{}
	f.run()
	assert.Equal(t, memory.SquadStatusEnRoute, sq.Status)
	assert.Equal(t, 2, f.out.Count(ipc.TypeMove))

	var mv ipc.MoveCommand
	require.NoError(t, json.Unmarshal(f.out.Envelopes[0].Data, &mv))
	assert.Equal(t, "W2N1", mv.Room)
	assert.Equal(t, "W2N1", f.store.Creeps["z1"].Job.TargetID)
}

func TestDeadSquadIsRemoved(t *testing.T) {
	f := newFixture()
	sq := f.squad(t, SoloZealot)
	sq.Queued = 0
	sq.Creeps = []string{"gone"}
	op := f.store.Empire.MilitaryOperations[sq.OperationUUID]

	rep := f.run()
	assert.Equal(t, 1, rep.Dead)
	assert.Empty(t, op.Squads)
	assert.Empty(t, f.store.Rooms["W1N1"].CreepLimit.MilitaryQueue)

	gc := memory.GarbageCollect(f.store, model.NewIndex(f.gs))
	assert.Equal(t, 1, gc.Operations)
}

func TestMembersFightWhatIsInReach(t *testing.T) {
	f := newFixture()
	sq := f.squad(t, SoloZealot)
	sq.Queued = 0
	sq.Status = memory.SquadStatusEngaging
	sq.Creeps = []string{"z1"}
	f.gs.Rooms[1].Hostiles = []model.Creep{{ID: "h1", Name: "h1", Owner: "them", Pos: at("W2N1", 11, 10),
		Body: map[string]int{model.Attack: 1}, Hits: 100, HitsMax: 100}}
	f.creep("z1", roles.Zealot, at("W2N1", 10, 10), map[string]int{model.Attack: 2, model.Move: 2}, sq, 0)

	rep := f.run()
	require.Empty(t, rep.Errors)
	require.Equal(t, 1, f.out.Count(ipc.TypeAttack))
	var cmd ipc.TargetCommand
	require.NoError(t, json.Unmarshal(f.out.Envelopes[0].Data, &cmd))
	assert.Equal(t, ipc.TargetCommand{Creep: "z1", TargetID: "h1"}, cmd)
	assert.Equal(t, memory.SquadStatusEngaging, sq.Status)
}

func TestDefcon(t *testing.T) {
	tests := []struct {
		name     string
		hostiles []model.Creep
		want     int
	}{
		{"empty", nil, 0},
		{"scout", []model.Creep{{Body: map[string]int{model.Move: 1}}}, 1},
		{"raider", []model.Creep{{Body: map[string]int{model.Attack: 3, model.Move: 3}}}, 2},
		{"party", []model.Creep{
			{Body: map[string]int{model.RangedAttack: 8}},
			{Body: map[string]int{model.Heal: 8}},
		}, 3},
		{"siege", []model.Creep{{Body: map[string]int{model.Work: 25, model.Attack: 10}}}, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Defcon(&model.Room{Hostiles: tc.hostiles}))
		})
	}
}

func TestDefendRaisesOneSquadPerThreat(t *testing.T) {
	f := newFixture()
	f.store.Rooms["W1N1"].Defcon = 3
	f.store.Rooms["W1N1"].RemoteRooms = []*memory.DependentRoom{{RoomName: "W1N2"}}
	f.store.InitRoom("W1N2", false).Defcon = 2

	created, err := Defend(f.store, 10)
	require.NoError(t, err)
	require.Len(t, created, 2)

	managers := map[string]string{}
	for _, sq := range created {
		managers[sq.Manager] = sq.TargetRoom
		assert.Equal(t, "W1N1", sq.DependentRoom)
	}
	assert.Equal(t, map[string]string{DomesticDefender: "W1N1", RemoteDefender: "W1N2"}, managers)
	for _, e := range f.store.Rooms["W1N1"].CreepLimit.MilitaryQueue {
		assert.Equal(t, PriorityHigh, e.Priority)
	}

	again, err := Defend(f.store, 11)
	require.NoError(t, err)
	assert.Empty(t, again)
}
