package roles

import (
	"github.com/nstehr/tundra/tundra-core/jobs"
	"github.com/nstehr/tundra/tundra-core/memory"
)

// militaryManager only ever hands out movement. Combat is driven per squad
// by the military package.
type militaryManager struct {
	role Role
}

func (m militaryManager) Role() Role { return m.role }

func (m militaryManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	dest := u.Mem.TargetRoom
	if sq := e.SquadOf(u.Mem); sq != nil {
		switch sq.Status {
		case memory.SquadStatusRally:
			dest = sq.RallyRoom
		case memory.SquadStatusEnRoute, memory.SquadStatusEngaging:
			dest = sq.TargetRoom
		case memory.SquadStatusDone:
			dest = room
		default:
			return nil, nil
		}
	}
	if dest == "" || dest == u.Room() {
		return nil, nil
	}
	return jobs.NewMoveJob(dest), nil
}

func (militaryManager) HandleNewJob(e *Env, u Unit, room string) error { return nil }

// SquadOf resolves the squad a unit was spawned for, if it still exists.
func (e *Env) SquadOf(cm *memory.CreepMemory) *memory.Squad {
	if cm.OperationUUID == "" || cm.SquadUUID == "" {
		return nil
	}
	op, ok := e.Store.Empire.MilitaryOperations[cm.OperationUUID]
	if !ok || op == nil {
		return nil
	}
	return op.Squads[cm.SquadUUID]
}
