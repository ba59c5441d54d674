package journal

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nstehr/tundra/tundra-core/manager"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/usererr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, j.Record(&manager.TickReport{
		Tick:     10,
		Bucket:   9000,
		Ran:      []string{manager.Memory, manager.Spawn},
		Skipped:  []string{manager.Empire},
		Assigned: 3,
		Intents:  map[string]int{"move": 4, "spawn_creep": 1},
		Errors:   []error{usererr.Of(usererr.ErrNullData, usererr.Warn, "x", ""), errors.New("boom")},
		GC:       memory.GCStats{Creeps: 2},
		Duration: 1500 * time.Microsecond,
	}))
	require.NoError(t, j.Record(&manager.TickReport{Tick: 11, Intents: map[string]int{"move": 2}}))

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, Summary{Ticks: 2, First: 10, Last: 11, Assigned: 3, Intents: 7, Errors: 2}, s)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var ran, skipped, kinds string
	var gc, dur int64
	row := db.QueryRow(`SELECT ran, skipped, error_kinds, gc_removed, duration_us FROM ticks WHERE tick = 10`)
	require.NoError(t, row.Scan(&ran, &skipped, &kinds, &gc, &dur))
	assert.Equal(t, "memory,spawn", ran)
	assert.Equal(t, "empire", skipped)
	assert.Equal(t, "null data,other", kinds)
	assert.EqualValues(t, 2, gc)
	assert.EqualValues(t, 1500, dur)
}

func TestRecordReplacesSameTick(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "j.db"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Record(&manager.TickReport{Tick: 5, Assigned: 1}))
	require.NoError(t, j.Record(&manager.TickReport{Tick: 5, Assigned: 4}))

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Ticks)
	assert.Equal(t, 4, s.Assigned)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
