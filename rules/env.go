package rules

import (
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
)

// SpawnEnv is what a spawn rule sees: one owned room and one of its idle
// spawns. Its methods are callable from rule conditions.
type SpawnEnv struct {
	Room  *model.Room
	Mem   *memory.RoomMemory
	Spawn *model.Structure
	world *roles.Env
}

func newSpawnEnv(world *roles.Env, r *model.Room, rm *memory.RoomMemory, spawn *model.Structure) SpawnEnv {
	return SpawnEnv{Room: r, Mem: rm, Spawn: spawn, world: world}
}

// RoomCount is the number of units of role that call this room home,
// including ones still spawning.
func (e SpawnEnv) RoomCount(role string) int {
	n := 0
	for _, cm := range e.world.Store.Creeps {
		if cm != nil && cm.Role == role && cm.HomeRoom == e.Room.Name {
			n++
		}
	}
	return n
}

// Limit is the current creep limit for role, domestic or remote.
func (e SpawnEnv) Limit(role string) int {
	cl := e.Mem.CreepLimit
	if cl == nil {
		return 0
	}
	if n, ok := cl.Domestic[role]; ok {
		return n
	}
	return cl.Remote[role]
}

func (e SpawnEnv) Needs(role string) bool {
	return e.RoomCount(role) < e.Limit(role)
}

func (e SpawnEnv) SourceCount() int { return len(e.world.Cache.Sources(e.Room.Name)) }

func (e SpawnEnv) Energy() int   { return e.Room.EnergyAvailable }
func (e SpawnEnv) Capacity() int { return e.Room.EnergyCapacityAvailable }

func (e SpawnEnv) RCL() int {
	if e.Room.Controller == nil {
		return 0
	}
	return e.Room.Controller.Level
}

func (e SpawnEnv) State() string { return e.Mem.RoomState }

func (e SpawnEnv) HasStorage() bool {
	return len(e.world.Cache.Structures(e.Room.Name, model.StructureStorage)) > 0
}

func (e SpawnEnv) StorageEnergy() int {
	n := 0
	for _, s := range e.world.Cache.Structures(e.Room.Name, model.StructureStorage) {
		n += s.Store.Energy
	}
	return n
}

func (e SpawnEnv) ConstructionSites() int {
	return len(e.world.Cache.ConstructionSites(e.Room.Name))
}

func (e SpawnEnv) RemoteRooms() int { return len(e.Mem.RemoteRooms) }
func (e SpawnEnv) ClaimRooms() int  { return len(e.Mem.ClaimRooms) }

func (e SpawnEnv) HostileCount() int { return len(e.world.Cache.Hostiles(e.Room.Name)) }

func (e SpawnEnv) MilitaryQueued() int {
	if e.Mem.CreepLimit == nil {
		return 0
	}
	return len(e.Mem.CreepLimit.MilitaryQueue)
}

// PrimarySpawn reports whether the evaluated spawn is the room's first one.
// Managers are only spawned there.
func (e SpawnEnv) PrimarySpawn() bool {
	spawns := e.world.Cache.Structures(e.Room.Name, model.StructureSpawn)
	return len(spawns) > 0 && e.Spawn != nil && spawns[0].ID == e.Spawn.ID
}

// targeting counts units of role sent to room.
func (e SpawnEnv) targeting(room string, role roles.Role) int {
	n := 0
	for _, cm := range e.world.Store.Creeps {
		if cm != nil && cm.Role == string(role) && cm.TargetRoom == room {
			n++
		}
	}
	return n
}

// remoteSources is the number of sources in a dependent room: counted when
// visible, otherwise the last scouted count, otherwise one.
func (e SpawnEnv) remoteSources(room string) int {
	if r, ok := e.world.Index.Room(room); ok {
		return len(r.Sources)
	}
	if md, ok := e.world.Store.Empire.MovementData[room]; ok && md.SourceCnt > 0 {
		return md.SourceCnt
	}
	return 1
}
