package roles

import (
	"github.com/nstehr/tundra/tundra-core/jobs"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

// commit is the HandleNewJob shared by roles with no per-job setup.
func commit(e *Env, u Unit, room string) error {
	return e.Board.UpdateJobMemory(u.Creep, u.Mem, room)
}

type minerManager struct{}

func (minerManager) Role() Role { return Miner }

func (minerManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	return e.newSourceJob(u, room, Miner), nil
}

func (minerManager) HandleNewJob(e *Env, u Unit, room string) error {
	return e.commitMining(u, room, Miner)
}

type mineralMinerManager struct{}

func (mineralMinerManager) Role() Role { return MineralMiner }

func (mineralMinerManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	return e.newMineralJob(u, room), nil
}

func (mineralMinerManager) HandleNewJob(e *Env, u Unit, room string) error {
	return e.commitMining(u, room, MineralMiner)
}

// harvesterManager runs the early economy: it gathers energy, keeps spawns
// and towers full and spends any surplus on construction.
type harvesterManager struct{}

func (harvesterManager) Role() Role { return Harvester }

func (harvesterManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	if u.Creep.Store.Empty() {
		return e.newGetEnergyJob(u, room), nil
	}
	if j := e.newCarryPartJob(u, room); j != nil {
		return j, nil
	}
	if u.Creep.Parts(model.Work) == 0 {
		return nil, nil
	}
	o := u.Mem.Options
	if o.Build {
		if j := e.closest(u.Creep.Pos, e.Board.Jobs(room, jobs.Build, jobs.NotTaken)); j != nil {
			return j, nil
		}
	}
	if o.Repair || o.WallRepair {
		if j := e.closest(u.Creep.Pos, e.priorityRepairJobs(u, room)); j != nil {
			return j, nil
		}
	}
	return e.upgradeJob(u, room), nil
}

func (harvesterManager) HandleNewJob(e *Env, u Unit, room string) error {
	return commit(e, u, room)
}

type workerManager struct{}

func (workerManager) Role() Role { return Worker }

func (workerManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	if u.Creep.Store.Empty() {
		return e.workerEnergyJob(u, room), nil
	}
	if j := e.newWorkPartJob(u, room); j != nil {
		return j, nil
	}
	return e.newCarryPartJob(u, room), nil
}

// workerEnergyJob only takes loads that fill the whole carry.
func (e *Env) workerEnergyJob(u Unit, room string) *memory.Job {
	o := u.Mem.Options
	full := jobs.All(jobs.NotTaken, jobs.MinResources(carryCapacity(u)))
	if o.GetFromContainer {
		if j := first(e.Board.Jobs(room, jobs.Container, full)); j != nil {
			return j
		}
	}
	if o.GetDroppedEnergy {
		if j := first(e.Board.Jobs(room, jobs.Pickup, full)); j != nil {
			return j
		}
	}
	if o.GetFromStorage || o.GetFromTerminal {
		backup := e.Board.Jobs(room, jobs.Backup, jobs.All(full, backupAllowed(o)))
		if j := e.closest(u.Creep.Pos, backup); j != nil {
			return j
		}
	}
	if o.HarvestSources {
		return e.closest(u.Creep.Pos, e.Board.Jobs(room, jobs.Source, jobs.NotTaken))
	}
	return nil
}

func (workerManager) HandleNewJob(e *Env, u Unit, room string) error {
	return commit(e, u, room)
}

// powerUpgraderManager sits by the controller, fed from the upgrader link.
type powerUpgraderManager struct{}

func (powerUpgraderManager) Role() Role { return PowerUpgrader }

func (powerUpgraderManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	if u.Creep.Store.Empty() {
		if j := e.closest(u.Creep.Pos, e.Board.Fresh(room, jobs.Link, nil)); j != nil {
			return j, nil
		}
		return e.newGetEnergyJob(u, room), nil
	}
	return e.upgradeJob(u, room), nil
}

func (powerUpgraderManager) HandleNewJob(e *Env, u Unit, room string) error {
	return commit(e, u, room)
}

// lorryManager moves energy out of containers and off the floor into
// whatever needs it.
type lorryManager struct{}

func (lorryManager) Role() Role { return Lorry }

func (lorryManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	if !u.Creep.Store.Empty() {
		return e.newCarryPartJob(u, room), nil
	}
	load := carryCapacity(u)
	o := u.Mem.Options
	if o.GetFromContainer {
		list := e.Board.Jobs(room, jobs.Container, jobs.All(jobs.NotTaken, jobs.MinResources(load)))
		if j := e.closest(u.Creep.Pos, list); j != nil {
			return j, nil
		}
	}
	partial := jobs.All(jobs.NotTaken, jobs.MinResources(load*6/10))
	if o.GetDroppedEnergy {
		if j := e.closest(u.Creep.Pos, e.Board.Jobs(room, jobs.Pickup, partial)); j != nil {
			return j, nil
		}
	}
	if o.GetLootJobs {
		if j := e.closest(u.Creep.Pos, e.Board.Jobs(room, jobs.Loot, partial)); j != nil {
			return j, nil
		}
	}
	return nil, nil
}

func (lorryManager) HandleNewJob(e *Env, u Unit, room string) error {
	return commit(e, u, room)
}

// storageManager stands in the core next to storage, terminal, link, spawn
// and tower and shuffles energy between them without moving.
type storageManager struct{}

func (storageManager) Role() Role { return StorageManager }

func (storageManager) GetNewJob(e *Env, u Unit, room string) (*memory.Job, error) {
	near := func(j *memory.Job) bool {
		o, ok := e.Index.Object(j.TargetID)
		return ok && u.Creep.Pos.IsNearTo(o.Position())
	}
	if u.Creep.Store.Empty() {
		if j := first(e.Board.Jobs(room, jobs.Backup, jobs.All(near, jobs.TargetType(model.StructureTerminal)))); j != nil {
			return j, nil
		}
		storage := e.Board.Jobs(room, jobs.Backup, jobs.All(near, jobs.TargetType(model.StructureStorage)))
		deliveries := e.Board.Fresh(room, jobs.Fill, jobs.All(jobs.NotTaken, near))
		if len(storage) > 0 && len(deliveries) > 0 {
			return storage[0], nil
		}
		return nil, nil
	}
	for _, t := range []string{model.StructureSpawn, model.StructureTower, model.StructureLink} {
		list := e.Board.Fresh(room, jobs.Fill, jobs.All(jobs.NotTaken, near, jobs.TargetType(t)))
		if j := e.closest(u.Creep.Pos, list); j != nil {
			return j, nil
		}
	}
	list := e.Board.Jobs(room, jobs.Store, jobs.All(near, jobs.TargetType(model.StructureStorage)))
	return e.closest(u.Creep.Pos, list), nil
}

func (storageManager) HandleNewJob(e *Env, u Unit, room string) error {
	return commit(e, u, room)
}
