// Package military owns operations and their squads: creating them, queueing
// their members for spawn, and moving and fighting with them once alive.
package military

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Operation types.
const (
	OpAttack  = "attack"
	OpDefense = "defense"
)

// NewOperation records an empty operation and returns its UUID.
func NewOperation(store *memory.Store, opType string) string {
	id := uuid.NewString()
	store.Empire.MilitaryOperations[id] = &memory.Operation{
		OperationUUID: id,
		OperationType: opType,
		Squads:        make(map[string]*memory.Squad),
	}
	return id
}

// CreateSquad adds a squad of the named kind to an operation and queues its
// members on dependentRoom's military spawn queue.
func CreateSquad(store *memory.Store, manager, targetRoom, opUUID, dependentRoom string, tick int) (*memory.Squad, error) {
	m, ok := Lookup(manager)
	if !ok {
		return nil, usererr.Of(usererr.ErrUnregisteredRole, usererr.Error, "Unknown squad manager",
			fmt.Sprintf("manager: %q, target: %s", manager, targetRoom))
	}
	op, ok := store.Empire.MilitaryOperations[opUUID]
	if !ok || op == nil {
		return nil, usererr.Of(usererr.ErrNullData, usererr.Error, "No such operation",
			fmt.Sprintf("operation: %s, manager: %s", opUUID, manager))
	}
	home, ok := store.Room(dependentRoom)
	if !ok || !home.Owned {
		return nil, usererr.Of(usererr.ErrNullData, usererr.Error, "Squad needs an owned room to spawn from",
			fmt.Sprintf("room: %q, operation: %s", dependentRoom, opUUID))
	}
	if op.Squads == nil {
		op.Squads = make(map[string]*memory.Squad)
	}
	if home.CreepLimit == nil {
		home.CreepLimit = &memory.CreepLimit{Domestic: map[string]int{}, Remote: map[string]int{}}
	}

	sq := &memory.Squad{
		SquadUUID:     uuid.NewString(),
		OperationUUID: opUUID,
		Manager:       manager,
		DependentRoom: dependentRoom,
		TargetRoom:    targetRoom,
		Status:        memory.SquadStatusInit,
		Queued:        len(m.Members),
		CreatedAt:     tick,
	}
	if m.Rally {
		sq.RallyRoom = dependentRoom
	}
	op.Squads[sq.SquadUUID] = sq

	for _, mem := range m.Members {
		opts := roles.DefaultOptions(mem.Role, "")
		opts.Squad = true
		opts.CaravanPos = mem.CaravanPos
		home.CreepLimit.MilitaryQueue = append(home.CreepLimit.MilitaryQueue, &memory.MilitaryEntry{
			Role:          string(mem.Role),
			Options:       opts,
			TargetRoom:    targetRoom,
			OperationUUID: opUUID,
			SquadUUID:     sq.SquadUUID,
			Priority:      m.Priority,
		})
	}
	slog.Info("squad created", "manager", manager, "squad", sq.SquadUUID, "operation", opUUID,
		"target", targetRoom, "from", dependentRoom, "members", len(m.Members))
	return sq, nil
}

// Enlist records that the queue entry e was spawned as name.
func Enlist(store *memory.Store, e *memory.MilitaryEntry, name string) {
	op, ok := store.Empire.MilitaryOperations[e.OperationUUID]
	if !ok || op == nil {
		return
	}
	sq, ok := op.Squads[e.SquadUUID]
	if !ok || sq == nil {
		return
	}
	sq.Creeps = append(sq.Creeps, name)
	if sq.Queued > 0 {
		sq.Queued--
	}
}

// DropQueued removes every queue entry of the squad from all rooms.
func DropQueued(store *memory.Store, squadUUID string) {
	for _, rm := range store.Rooms {
		if rm == nil || rm.CreepLimit == nil {
			continue
		}
		q := rm.CreepLimit.MilitaryQueue[:0]
		for _, e := range rm.CreepLimit.MilitaryQueue {
			if e.SquadUUID != squadUUID {
				q = append(q, e)
			}
		}
		rm.CreepLimit.MilitaryQueue = q
	}
}

// squadsTargeting counts live squads of manager sent against room.
func squadsTargeting(store *memory.Store, manager, room string) int {
	n := 0
	for _, op := range store.Empire.MilitaryOperations {
		if op == nil {
			continue
		}
		for _, sq := range op.Squads {
			if sq != nil && sq.Manager == manager && sq.TargetRoom == room && sq.Status != memory.SquadStatusDead {
				n++
			}
		}
	}
	return n
}
