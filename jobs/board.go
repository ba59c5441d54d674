package jobs

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/tundra/tundra-core/cache"
	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Board serves job catalogs out of room memory, regenerating a list when its
// TTL has lapsed. Lists are regenerated at most once per tick so that
// assignments made earlier in the tick are never lost.
type Board struct {
	store  *memory.Store
	cache  *cache.Cache
	idx    *model.Index
	tuning config.Tuning
}

func NewBoard(store *memory.Store, c *cache.Cache, tuning config.Tuning) *Board {
	return &Board{store: store, cache: c, idx: c.Index(), tuning: tuning}
}

func (b *Board) Cache() *cache.Cache { return b.cache }

// Jobs returns the jobs of kind in room that satisfy pred. The returned
// pointers alias the catalog.
func (b *Board) Jobs(room string, kind Kind, pred Pred) []*memory.Job {
	return filter(b.list(room, kind, false), pred)
}

// Fresh is Jobs with the TTL ignored: the list is regenerated unless it was
// already built this tick.
func (b *Board) Fresh(room string, kind Kind, pred Pred) []*memory.Job {
	return filter(b.list(room, kind, true), pred)
}

func filter(in []*memory.Job, pred Pred) []*memory.Job {
	if pred == nil {
		return in
	}
	out := make([]*memory.Job, 0, len(in))
	for _, j := range in {
		if pred(j) {
			out = append(out, j)
		}
	}
	return out
}

func (b *Board) list(room string, kind Kind, force bool) []*memory.Job {
	rm, ok := b.store.Room(room)
	if !ok {
		return nil
	}
	if rm.Jobs == nil {
		rm.Jobs = make(map[string]*memory.JobList)
	}
	now := b.idx.Tick()
	jl := rm.Jobs[string(kind)]
	if jl != nil {
		if jl.Tick == now {
			return jl.Jobs
		}
		if !force && cache.Valid(jl.Tick, now, b.tuning.JobTTL(string(kind)), b.tuning.Options.NoCachingMemory) {
			return jl.Jobs
		}
	}
	r, visible := b.idx.Room(room)
	if !visible {
		if jl != nil {
			return jl.Jobs
		}
		return nil
	}

	list := b.scan(r, rm, kind)
	b.restoreTaken(kind, list)
	rm.Jobs[string(kind)] = &memory.JobList{Tick: now, Jobs: list}
	slog.Debug("job list regenerated", "room", room, "kind", kind, "count", len(list))
	return list
}

// Refresh regenerates every catalog list of room.
func (b *Board) Refresh(room string) {
	for _, k := range kindOrder {
		b.list(room, k, true)
	}
}

// Warm regenerates the lists of room whose TTL has lapsed, so they are
// rebuilt before any unit reads them.
func (b *Board) Warm(room string) {
	for _, k := range kindOrder {
		b.list(room, k, false)
	}
}

// Invalidate drops one list so the next read rebuilds it.
func (b *Board) Invalidate(room string, kind Kind) {
	if rm, ok := b.store.Room(room); ok && rm.Jobs != nil {
		delete(rm.Jobs, string(kind))
	}
}

// holders maps target+action to the live units whose persisted job points at
// it. The unit record is the authority on who holds what.
func (b *Board) holders() map[string][]*model.Creep {
	out := make(map[string][]*model.Creep)
	for _, c := range b.idx.Creeps() {
		cm, ok := b.store.Creep(c.Name)
		if !ok || cm.Job == nil {
			continue
		}
		k := holdKey(cm.Job.TargetID, cm.Job.ActionType)
		out[k] = append(out[k], c)
	}
	return out
}

func holdKey(target, action string) string { return target + "|" + action }

func (b *Board) restoreTaken(kind Kind, list []*memory.Job) {
	if kinds[kind].occ != exclusive {
		return
	}
	held := b.holders()
	for _, j := range list {
		if len(held[holdKey(j.TargetID, j.ActionType)]) > 0 {
			j.IsTaken = true
		}
	}
}

// Search finds the catalog entry for job in room, looking through every list
// of the job's type. It returns nil when the job is not (or no longer) there.
func (b *Board) Search(job *memory.Job, room string) *memory.Job {
	j, _ := b.search(job, room)
	return j
}

func (b *Board) search(job *memory.Job, room string) (*memory.Job, Kind) {
	if job == nil {
		return nil, ""
	}
	for _, k := range KindsOf(job.JobType) {
		for _, j := range b.list(room, k, false) {
			if j.TargetID == job.TargetID && j.ActionType == job.ActionType {
				return j, k
			}
		}
	}
	return nil, ""
}

// UpdateJobMemory records that c has taken its current job in room's catalog.
// When the job can no longer be found the unit's job is cleared and an
// ErrInvalidJob warning is returned.
func (b *Board) UpdateJobMemory(c *model.Creep, cm *memory.CreepMemory, room string) error {
	if cm.Job == nil {
		return usererr.Of(usererr.ErrNullData, usererr.Warn,
			"No job to record", fmt.Sprintf("creep: %s, room: %s", c.Name, room))
	}
	if cm.Job.JobType == MovePartJob {
		return nil
	}
	j, kind := b.search(cm.Job, room)
	if j == nil {
		desc := fmt.Sprintf("creep: %s, room: %s, job: %s %s -> %s",
			c.Name, room, cm.Job.JobType, cm.Job.ActionType, cm.Job.TargetID)
		cm.ClearJob()
		return usererr.Of(usererr.ErrInvalidJob, usererr.Warn, "Invalid job", desc)
	}
	take(j, kind, c)
	return nil
}

// take marks j as held for the rest of the tick. Capacity jobs also give up
// what the unit will consume so regeneration can reopen what is left over.
// Shared sinks are never marked.
func take(j *memory.Job, kind Kind, c *model.Creep) {
	switch kinds[kind].occ {
	case exclusive:
		j.IsTaken = true
	case capacity:
		j.Resources = max(j.Resources-consumption(kind, c), 0)
		j.IsTaken = true
	}
}

// consumption is how much of a capacity job one unit uses up.
func consumption(kind Kind, c *model.Creep) int {
	if kind == Source {
		return miningCapacity(c)
	}
	if free := c.Store.Free(); free > 0 {
		return free
	}
	return c.Store.Capacity
}

// miningCapacity is the energy a unit harvests over one source regeneration
// cycle: two energy per work part per tick, over 300 ticks.
func miningCapacity(c *model.Creep) int {
	return c.Parts(model.Work) * 2 * 300
}

// PriorityRepairJobs are untaken repair jobs whose target is critically low.
func (b *Board) PriorityRepairJobs(room string) []*memory.Job {
	return b.Jobs(room, Repair, func(j *memory.Job) bool {
		if j.IsTaken {
			return false
		}
		o, ok := b.idx.Object(j.TargetID)
		if !ok {
			return false
		}
		s, ok := o.(*model.Structure)
		if !ok {
			return false
		}
		return hitsRatio(s, b.tuning.Thresholds.RampartHits) < b.tuning.Thresholds.PriorityRepair
	})
}

// hitsRatio measures defenses against the rampart cap rather than their
// enormous hitsMax.
func hitsRatio(s *model.Structure, rampartHits int) float64 {
	limit := s.HitsMax
	if isDefense(s.Type) && rampartHits > 0 && rampartHits < limit {
		limit = rampartHits
	}
	if limit <= 0 {
		return 1
	}
	return float64(s.Hits) / float64(limit)
}

func isDefense(t string) bool {
	return t == model.StructureWall || t == model.StructureRampart
}
