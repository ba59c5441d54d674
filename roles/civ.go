package roles

import (
	"github.com/nstehr/tundra/tundra-core/jobs"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

// closest returns the job whose target is nearest to from. Jobs whose target
// cannot be resolved (room-name targets, vanished objects) rank last; if none
// resolve the first job is returned.
func (e *Env) closest(from model.Pos, list []*memory.Job) *memory.Job {
	if len(list) == 0 {
		return nil
	}
	best := list[0]
	bestRange := model.Unreachable + 1
	for _, j := range list {
		o, ok := e.Index.Object(j.TargetID)
		if !ok {
			continue
		}
		if r := from.RangeTo(o.Position()); r < bestRange {
			best, bestRange = j, r
		}
	}
	return best
}

func first(list []*memory.Job) *memory.Job {
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func carryCapacity(u Unit) int { return u.Creep.Store.Capacity }

// unitsOf returns live units whose memory passes keep.
func (e *Env) unitsOf(keep func(*memory.CreepMemory) bool) []Unit {
	var out []Unit
	for _, c := range e.Index.Creeps() {
		cm, ok := e.Store.Creep(c.Name)
		if ok && keep(cm) {
			out = append(out, Unit{Creep: c, Mem: cm})
		}
	}
	return out
}

// countTargeting counts units of the given roles holding a job on target.
func (e *Env) countTargeting(target string, roles ...Role) int {
	return len(e.unitsOf(func(cm *memory.CreepMemory) bool {
		return cm.Job != nil && cm.Job.TargetID == target && hasRole(cm, roles)
	}))
}

// countHome counts live units of role homed in room.
func (e *Env) countHome(room string, role Role) int {
	return len(e.unitsOf(func(cm *memory.CreepMemory) bool {
		return cm.HomeRoom == room && Role(cm.Role) == role
	}))
}

func hasRole(cm *memory.CreepMemory, roles []Role) bool {
	for _, r := range roles {
		if Role(cm.Role) == r {
			return true
		}
	}
	return false
}

func miningCapacity(u Unit) int { return u.Creep.Parts(model.Work) * 2 * 300 }

// newSourceJob finds a source for a dedicated miner. With closest-source
// picking on, sources already worked from every open tile are skipped.
func (e *Env) newSourceJob(u Unit, room string, miners ...Role) *memory.Job {
	if !u.Mem.Options.HarvestSources {
		return nil
	}
	list := e.Board.Fresh(room, jobs.Source, jobs.NotTaken)
	if len(list) == 0 {
		return nil
	}
	suitable := filterJobs(list, jobs.MinResources(miningCapacity(u)))
	if !e.Tuning.Options.MinersGetClosestSource {
		if len(suitable) > 0 {
			return suitable[0]
		}
		return list[0]
	}
	if len(suitable) == 0 {
		suitable = list
	}
	terrain := e.Index.Terrain(room)
	var open []*memory.Job
	for _, j := range suitable {
		o, ok := e.Index.Object(j.TargetID)
		if !ok {
			continue
		}
		if e.countTargeting(j.TargetID, miners...) < terrain.AccessTiles(o.Position()) {
			open = append(open, j)
		}
	}
	if len(open) == 0 {
		return nil
	}
	return e.closest(u.Creep.Pos, open)
}

func (e *Env) newMineralJob(u Unit, room string) *memory.Job {
	if !u.Mem.Options.HarvestMinerals {
		return nil
	}
	return first(e.Board.Fresh(room, jobs.Mineral, jobs.NotTaken))
}

// miningContainer is the container next to target, if any.
func (e *Env) miningContainer(target model.Pos, room string) *model.Structure {
	var near []*model.Structure
	for _, s := range e.Cache.Structures(room, model.StructureContainer) {
		if s.Pos.IsNearTo(target) {
			near = append(near, s)
		}
	}
	c, ok := model.Closest(target, near)
	if !ok {
		return nil
	}
	return c
}

// occupied reports whether a unit of one of roles already stands on p.
func (e *Env) occupied(p model.Pos, roles ...Role) bool {
	for _, c := range e.Index.CreepsAt(p) {
		cm, ok := e.Store.Creep(c.Name)
		if ok && hasRole(cm, roles) {
			return true
		}
	}
	return false
}

// commitMining marks the job taken and parks the miner on the container next
// to its target unless another miner is already standing there.
func (e *Env) commitMining(u Unit, room string, miners ...Role) error {
	if err := e.Board.UpdateJobMemory(u.Creep, u.Mem, room); err != nil {
		return err
	}
	o, ok := e.Index.Object(u.Mem.Job.TargetID)
	if !ok {
		return nil
	}
	c := e.miningContainer(o.Position(), room)
	if c == nil || e.occupied(c.Pos, miners...) {
		return nil
	}
	u.Mem.Supplementary.MoveTargetID = c.ID
	return nil
}

func filterJobs(in []*memory.Job, pred jobs.Pred) []*memory.Job {
	var out []*memory.Job
	for _, j := range in {
		if pred(j) {
			out = append(out, j)
		}
	}
	return out
}

func notLink(j *memory.Job) bool { return j.TargetType != model.StructureLink }

// containerFilter lets harvesters drain any container while the room is
// short of miners; otherwise a container must fill the whole carry.
func (e *Env) containerFilter(u Unit, room string) jobs.Pred {
	if Role(u.Mem.Role) == Harvester {
		if rm, ok := e.Store.Room(room); ok && rm.CreepLimit != nil &&
			e.countHome(room, Miner) < rm.CreepLimit.Domestic[string(Miner)] {
			return jobs.NotTaken
		}
	}
	return jobs.All(jobs.NotTaken, jobs.MinResources(carryCapacity(u)))
}

// backupAllowed limits backup jobs to the structures the unit may draw from.
func backupAllowed(o memory.Options) jobs.Pred {
	return func(j *memory.Job) bool {
		switch j.TargetType {
		case model.StructureStorage:
			return o.GetFromStorage
		case model.StructureTerminal:
			return o.GetFromTerminal
		}
		return false
	}
}

// newGetEnergyJob finds energy for an empty unit: containers, then dropped
// energy and loot worth most of a load, then storage when there is somewhere
// useful to take it. Units able to harvest fall back to the nearest source.
func (e *Env) newGetEnergyJob(u Unit, room string) *memory.Job {
	o := u.Mem.Options
	load := carryCapacity(u)
	if o.GetFromContainer {
		if j := first(e.Board.Jobs(room, jobs.Container, e.containerFilter(u, room))); j != nil {
			return j
		}
	}
	partial := jobs.All(jobs.NotTaken, jobs.MinResources(load*6/10))
	if o.GetDroppedEnergy {
		if j := first(e.Board.Jobs(room, jobs.Pickup, partial)); j != nil {
			return j
		}
	}
	if o.GetLootJobs {
		if j := first(e.Board.Jobs(room, jobs.Loot, partial)); j != nil {
			return j
		}
	}
	if o.GetFromStorage || o.GetFromTerminal {
		backup := e.Board.Jobs(room, jobs.Backup, jobs.All(jobs.NotTaken, jobs.MinResources(load), backupAllowed(o)))
		fills := e.Board.Fresh(room, jobs.Fill, jobs.All(jobs.NotTaken, notLink))
		if len(backup) > 0 && len(fills) > 0 {
			return backup[0]
		}
	}
	if o.HarvestSources {
		return e.closest(u.Creep.Pos, e.Board.Jobs(room, jobs.Source, jobs.NotTaken))
	}
	return nil
}

// fillAllowed limits fill jobs to the structure types the unit may fill.
func fillAllowed(o memory.Options) jobs.Pred {
	return func(j *memory.Job) bool {
		switch j.TargetType {
		case model.StructureSpawn, model.StructureExtension:
			return o.FillSpawn
		case model.StructureTower:
			return o.FillTower
		case model.StructureLink:
			return o.FillLink
		}
		return false
	}
}

func storeAllowed(o memory.Options) jobs.Pred {
	return func(j *memory.Job) bool {
		switch j.TargetType {
		case model.StructureStorage:
			return o.FillStorage
		case model.StructureTerminal:
			return o.FillTerminal
		case model.StructureContainer:
			return o.FillContainer
		}
		return false
	}
}

// newCarryPartJob finds somewhere to deliver a load: the closest spawn,
// extension or tower, then storage, then the terminal.
func (e *Env) newCarryPartJob(u Unit, room string) *memory.Job {
	o := u.Mem.Options
	fills := e.Board.Fresh(room, jobs.Fill, jobs.All(jobs.NotTaken, notLink, fillAllowed(o)))
	if j := e.closest(u.Creep.Pos, fills); j != nil {
		return j
	}
	for _, t := range []string{model.StructureStorage, model.StructureTerminal, model.StructureContainer} {
		stores := e.Board.Jobs(room, jobs.Store, jobs.All(jobs.NotTaken, jobs.TargetType(t), storeAllowed(o)))
		if j := e.closest(u.Creep.Pos, stores); j != nil {
			return j
		}
	}
	return nil
}

// hasUpgrader reports whether room's controller is already being worked.
func (e *Env) hasUpgrader(room string) bool {
	return len(e.unitsOf(func(cm *memory.CreepMemory) bool {
		if cm.Job != nil && cm.Job.ActionType == jobs.ActionUpgrade {
			if o, ok := e.Index.Object(cm.Job.TargetID); ok && o.Position().Room == room {
				return true
			}
		}
		return Role(cm.Role) == PowerUpgrader && cm.HomeRoom == room
	})) > 0
}

func (e *Env) repairJobs(room string, defense bool) []*memory.Job {
	return e.Board.Jobs(room, jobs.Repair, jobs.All(jobs.NotTaken, func(j *memory.Job) bool {
		wall := j.TargetType == model.StructureWall || j.TargetType == model.StructureRampart
		return wall == defense
	}))
}

func (e *Env) priorityRepairJobs(u Unit, room string) []*memory.Job {
	o := u.Mem.Options
	return filterJobs(e.Board.PriorityRepairJobs(room), func(j *memory.Job) bool {
		if j.TargetType == model.StructureWall || j.TargetType == model.StructureRampart {
			return o.WallRepair
		}
		return o.Repair
	})
}

func (e *Env) upgradeJob(u Unit, room string) *memory.Job {
	if !u.Mem.Options.Upgrade {
		return nil
	}
	return first(e.Board.Jobs(room, jobs.Upgrade, nil))
}

// newWorkPartJob picks work for a loaded unit: keep the controller from
// idling, then critical repairs, construction, routine repairs, walls and
// finally upgrading.
func (e *Env) newWorkPartJob(u Unit, room string) *memory.Job {
	o := u.Mem.Options
	if !e.hasUpgrader(room) {
		if j := e.upgradeJob(u, room); j != nil {
			return j
		}
	}
	if o.Repair || o.WallRepair {
		if j := e.closest(u.Creep.Pos, e.priorityRepairJobs(u, room)); j != nil {
			return j
		}
	}
	if o.Build {
		if j := e.closest(u.Creep.Pos, e.Board.Jobs(room, jobs.Build, jobs.NotTaken)); j != nil {
			return j
		}
	}
	if o.Repair {
		if j := e.closest(u.Creep.Pos, e.repairJobs(room, false)); j != nil {
			return j
		}
	}
	if o.WallRepair {
		if j := e.closest(u.Creep.Pos, e.repairJobs(room, true)); j != nil {
			return j
		}
	}
	return e.upgradeJob(u, room)
}
