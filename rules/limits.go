package rules

import (
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
)

const (
	storageExtraWorker   = 100000
	storageExtraUpgrader = 300000
	sitesPerExtraWorker  = 10
	maxExtraWorkers      = 2
	colonizersPerClaim   = 2
)

// ComputeLimits rewrites the room's domestic and remote creep limits from
// what the room currently looks like.
func ComputeLimits(env SpawnEnv) {
	rm := env.Mem
	if rm.CreepLimit == nil {
		rm.CreepLimit = &memory.CreepLimit{}
	}
	rm.CreepLimit.Domestic = domesticLimits(env)
	rm.CreepLimit.Remote = remoteLimits(env)
}

func domesticLimits(env SpawnEnv) map[string]int {
	l := make(map[string]int, len(roles.Domestic()))
	for _, r := range roles.Domestic() {
		l[string(r)] = 0
	}
	sources := env.SourceCount()
	l[string(roles.Miner)] = sources
	l[string(roles.Harvester)] = 2

	switch env.State() {
	case memory.RoomStateAdvanced:
		workers, upgraders := 1, 1
		if env.StorageEnergy() > storageExtraWorker {
			workers++
		}
		if env.StorageEnergy() > storageExtraUpgrader && env.RCL() < 8 {
			upgraders++
		}
		l[string(roles.Worker)] = workers + extraWorkers(env)
		l[string(roles.PowerUpgrader)] = upgraders
		l[string(roles.StorageManager)] = 1
		l[string(roles.Lorry)] = lorryLimit(env)
		l[string(roles.Scout)] = 1
		if hasExtractor(env) {
			l[string(roles.MineralMiner)] = 1
		}
	case memory.RoomStateBeginner:
		l[string(roles.Worker)] = 2 + extraWorkers(env)
		l[string(roles.PowerUpgrader)] = 1
		l[string(roles.Lorry)] = lorryLimit(env)
		l[string(roles.Scout)] = 1
	default:
		l[string(roles.Harvester)] = 2 + sources
		l[string(roles.Worker)] = 2
	}
	return l
}

func extraWorkers(env SpawnEnv) int {
	return min(env.ConstructionSites()/sitesPerExtraWorker, maxExtraWorkers)
}

// lorryLimit: one lorry once there is both storage to empty containers into
// and containers to empty.
func lorryLimit(env SpawnEnv) int {
	if !env.HasStorage() {
		return 0
	}
	if len(env.world.Cache.Structures(env.Room.Name, model.StructureContainer)) == 0 {
		return 0
	}
	return 1
}

func hasExtractor(env SpawnEnv) bool {
	return env.RCL() >= 6 && len(env.world.Cache.Structures(env.Room.Name, model.StructureExtractor)) > 0
}

func remoteLimits(env SpawnEnv) map[string]int {
	l := make(map[string]int, len(roles.Remote()))
	for _, r := range roles.Remote() {
		l[string(r)] = 0
	}
	rm := env.Mem
	rm.CleanDependentRooms()
	if len(rm.RemoteRooms) == 0 && len(rm.ClaimRooms) == 0 {
		return l
	}

	minTTL := env.world.Tuning.Thresholds.ReserverMinTTL
	for _, d := range rm.RemoteRooms {
		n := env.remoteSources(d.RoomName)
		l[string(roles.RemoteMiner)] += n
		l[string(roles.RemoteHarvester)] += n
		observeReservation(env, d)
		if d.ReserveTTL < minTTL {
			l[string(roles.RemoteReserver)]++
		}
	}
	for _, d := range rm.ClaimRooms {
		l[string(roles.RemoteColonizer)] += colonizersPerClaim
		if r, ok := env.world.Index.Room(d.RoomName); !ok || !r.IsOwned() {
			l[string(roles.Claimer)]++
		}
	}
	return l
}

// observeReservation records how long our reservation of a visible remote
// room has left. Rooms out of sight keep the last value.
func observeReservation(env SpawnEnv, d *memory.DependentRoom) {
	r, ok := env.world.Index.Room(d.RoomName)
	if !ok || r.Controller == nil {
		return
	}
	res := r.Controller.Reservation
	if res == nil || res.Username != env.world.Index.State.Username {
		d.ReserveTTL = 0
		return
	}
	d.ReserveTTL = res.TicksToEnd
}
