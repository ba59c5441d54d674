package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nstehr/tundra/tundra-core/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `
player: me
states:
  - tick: 99
    username: me
    cpu: {bucket: 10000, limit: 20}
    rooms:
      - name: W1N1
        energyAvailable: 300
        energyCapacityAvailable: 300
        controller: {id: ctrl, level: 1, my: true, owner: me, pos: {x: 25, y: 25, roomName: W1N1}}
        sources:
          - {id: src1, energyCapacity: 3000, pos: {x: 10, y: 10, roomName: W1N1}}
        structures:
          - {id: spawn1, structureType: spawn, my: true, hits: 5000, hitsMax: 5000, pos: {x: 20, y: 20, roomName: W1N1}}
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	player, states, err := loadScenario(writeScenario(t))
	require.NoError(t, err)
	assert.Equal(t, "me", player)
	require.Len(t, states, 1)
	gs := states[0]
	assert.Equal(t, 99, gs.Tick)
	assert.Equal(t, 10000, gs.CPU.Bucket)
	require.Len(t, gs.Rooms, 1)
	assert.True(t, gs.Rooms[0].IsOwned())
	assert.Equal(t, "spawn", gs.Rooms[0].Structures[0].Type)
}

func TestStateAtRepeatsLastState(t *testing.T) {
	_, states, err := loadScenario(writeScenario(t))
	require.NoError(t, err)

	gs, err := stateAt(states, 3)
	require.NoError(t, err)
	assert.Equal(t, 102, gs.Tick)

	gs.Rooms[0].Name = "changed"
	again, err := stateAt(states, 0)
	require.NoError(t, err)
	assert.Equal(t, "W1N1", again.Rooms[0].Name)
}

func TestDryrunWritesJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	require.NoError(t, dryrun(context.Background(), writeScenario(t), 4, db))

	j, err := journal.Open(db)
	require.NoError(t, err)
	defer j.Close()
	sum, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Ticks)
	assert.Equal(t, 99, sum.First)
	assert.Equal(t, 102, sum.Last)
	assert.GreaterOrEqual(t, sum.Intents, 1)
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("player: me\n"), 0o644))
	_, _, err := loadScenario(path)
	assert.Error(t, err)
}
