package roles

import (
	"fmt"
	"slices"

	"github.com/nstehr/tundra/tundra-core/jobs"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

func targetRoom(u Unit) (string, error) {
	if u.Mem.TargetRoom == "" {
		return "", usererr.Of(usererr.ErrNullData, usererr.Error,
			"Missing target room", fmt.Sprintf("creep: %s, role: %s", u.Name(), u.Mem.Role))
	}
	return u.Mem.TargetRoom, nil
}

func isMove(j *memory.Job) bool { return j != nil && j.JobType == jobs.MovePartJob }

type remoteMinerManager struct{}

func (remoteMinerManager) Role() Role { return RemoteMiner }

func (remoteMinerManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	target, err := targetRoom(u)
	if err != nil {
		return nil, err
	}
	if u.Room() != target {
		return jobs.NewMoveJob(target), nil
	}
	return e.newSourceJob(u, target, RemoteMiner), nil
}

func (remoteMinerManager) HandleNewJob(e *Env, u Unit, room string) error {
	if isMove(u.Mem.Job) {
		return nil
	}
	return e.commitMining(u, u.Mem.TargetRoom, RemoteMiner)
}

// remoteHarvesterManager ferries energy from a remote room back home,
// fixing up what it can on the way.
type remoteHarvesterManager struct{}

func (remoteHarvesterManager) Role() Role { return RemoteHarvester }

func (remoteHarvesterManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	target, err := targetRoom(u)
	if err != nil {
		return nil, err
	}
	if u.Creep.Store.Empty() {
		if u.Room() == target {
			return e.newGetEnergyJob(u, target), nil
		}
		return jobs.NewMoveJob(target), nil
	}
	if u.Room() == target {
		if j := e.newWorkPartJob(u, target); j != nil {
			return j, nil
		}
		return jobs.NewMoveJob(room), nil
	}
	if u.Room() != room {
		return jobs.NewMoveJob(room), nil
	}
	load := carryCapacity(u)
	links := e.Board.Fresh(room, jobs.Fill, jobs.All(jobs.NotTaken, jobs.TargetType(model.StructureLink), jobs.MinResources(load)))
	if j := e.closest(u.Creep.Pos, links); j != nil {
		return j, nil
	}
	stores := e.Board.Jobs(room, jobs.Store, jobs.All(jobs.TargetType(model.StructureStorage), jobs.MinResources(load)))
	if j := e.closest(u.Creep.Pos, stores); j != nil {
		return j, nil
	}
	return e.newWorkPartJob(u, room), nil
}

func (remoteHarvesterManager) HandleNewJob(e *Env, u Unit, room string) error {
	if isMove(u.Mem.Job) {
		return nil
	}
	return commit(e, u, u.Room())
}

// remoteReserverManager keeps the reservation of its target room topped up
// and signs the controller once the reservation is safe.
type remoteReserverManager struct{}

func (remoteReserverManager) Role() Role { return RemoteReserver }

func (remoteReserverManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	if !u.Mem.Options.Claim {
		return nil, nil
	}
	target, err := targetRoom(u)
	if err != nil {
		return nil, err
	}
	reserve := e.Board.Jobs(room, jobs.Reserve, func(j *memory.Job) bool {
		return !j.IsTaken && j.TargetID == target
	})
	if j := first(reserve); j != nil {
		return j, nil
	}
	if !u.Mem.Options.SignRoom {
		return nil, nil
	}
	return first(e.Board.Jobs(room, jobs.Sign, func(j *memory.Job) bool {
		o, ok := e.Index.Object(j.TargetID)
		return !j.IsTaken && ok && o.Position().Room == target
	})), nil
}

func (remoteReserverManager) HandleNewJob(e *Env, u Unit, room string) error {
	return commit(e, u, room)
}

// remoteColonizerManager walks to a freshly claimed room and builds it up
// until the room can run its own economy.
type remoteColonizerManager struct{}

func (remoteColonizerManager) Role() Role { return RemoteColonizer }

func (remoteColonizerManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	target, err := targetRoom(u)
	if err != nil {
		return nil, err
	}
	if u.Room() != target {
		return jobs.NewMoveJob(target), nil
	}
	if u.Creep.Store.Empty() {
		return e.newGetEnergyJob(u, target), nil
	}
	if j := e.newWorkPartJob(u, target); j != nil {
		return j, nil
	}
	return e.newCarryPartJob(u, target), nil
}

func (remoteColonizerManager) HandleNewJob(e *Env, u Unit, room string) error {
	if isMove(u.Mem.Job) {
		return nil
	}
	return commit(e, u, u.Room())
}

type claimerManager struct{}

func (claimerManager) Role() Role { return Claimer }

func (claimerManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	if !u.Mem.Options.Claim {
		return nil, nil
	}
	return first(e.Board.Jobs(room, jobs.Claim, jobs.NotTaken)), nil
}

func (claimerManager) HandleNewJob(e *Env, u Unit, room string) error {
	return commit(e, u, room)
}

// scoutManager wanders between rooms, preferring exits to rooms nobody has
// looked at recently so movement data stays fresh.
type scoutManager struct{}

func (scoutManager) Role() Role { return Scout }

func (scoutManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	r, ok := e.Index.Room(u.Room())
	if !ok || len(r.Exits) == 0 {
		return nil, usererr.Of(usererr.ErrNullData, usererr.Error,
			"No exits to scout", fmt.Sprintf("creep: %s, room: %s", u.Name(), u.Room()))
	}
	dirs := make([]string, 0, len(r.Exits))
	for d := range r.Exits {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)

	now := e.Index.Tick()
	ttl := e.Tuning.Cache.MovementTTL
	for _, d := range dirs {
		name := r.Exits[d]
		seen, ok := e.Store.Empire.MovementData[name]
		if !ok || now-seen.LastSeen > ttl {
			return jobs.NewMoveJob(name), nil
		}
	}
	return jobs.NewMoveJob(r.Exits[dirs[e.Rand.IntN(len(dirs))]]), nil
}

func (scoutManager) HandleNewJob(e *Env, u Unit, room string) error { return nil }
