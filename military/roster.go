package military

import (
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

// pruneDead drops members that have died. A member spawned this tick is not
// visible yet but already has memory, so memory is the authority.
func pruneDead(sq *memory.Squad, store *memory.Store) {
	alive := sq.Creeps[:0]
	for _, name := range sq.Creeps {
		if _, ok := store.Creep(name); ok {
			alive = append(alive, name)
		}
	}
	sq.Creeps = alive
}

// members resolves the squad's roster to live, fully spawned creeps.
func members(sq *memory.Squad, idx *model.Index) []*model.Creep {
	out := make([]*model.Creep, 0, len(sq.Creeps))
	for _, name := range sq.Creeps {
		if c, ok := idx.Creep(name); ok && !c.Spawning {
			out = append(out, c)
		}
	}
	return out
}

// rallyRange is how far from the rally point a member may wait.
func rallyRange(cm *memory.CreepMemory) int {
	return 3 + cm.Options.CaravanPos
}

// isRallied reports whether every member has spawned and gathered in the
// squad's rally room.
func isRallied(sq *memory.Squad, store *memory.Store, live []*model.Creep) bool {
	if sq.Queued > 0 || len(live) < len(sq.Creeps) {
		return false
	}
	point := model.Pos{X: 25, Y: 25, Room: sq.RallyRoom}
	for _, c := range live {
		cm, ok := store.Creep(c.Name)
		if !ok || !c.Pos.InRangeTo(point, rallyRange(cm)) {
			return false
		}
	}
	return true
}
