// Package roles holds the job policy of every creep role. Each role tag maps
// to exactly one Manager; the mapping is built once at startup and checked
// for completeness before the first tick runs.
package roles

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/nstehr/tundra/tundra-core/cache"
	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/jobs"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Role is the tag persisted in CreepMemory.Role.
type Role string

const (
	Miner          Role = "miner"
	Harvester      Role = "harvester"
	Worker         Role = "worker"
	PowerUpgrader  Role = "powerUpgrader"
	Lorry          Role = "lorry"
	StorageManager Role = "manager"
	MineralMiner   Role = "mineralMiner"
	Scout          Role = "scout"

	RemoteMiner     Role = "remoteMiner"
	RemoteHarvester Role = "remoteHarvester"
	RemoteReserver  Role = "remoteReserver"
	RemoteColonizer Role = "remoteColonizer"
	Claimer         Role = "claimer"

	Zealot           Role = "zealot"
	Stalker          Role = "stalker"
	Medic            Role = "medic"
	DomesticDefender Role = "domesticDefender"
	RemoteDefender   Role = "remoteDefender"
)

// Domestic lists the home-room roles in spawn priority order.
func Domestic() []Role {
	return []Role{Miner, Harvester, StorageManager, Worker, PowerUpgrader, Lorry, MineralMiner, Scout}
}

// Remote lists the roles serving dependent rooms in spawn priority order.
func Remote() []Role {
	return []Role{RemoteReserver, RemoteMiner, RemoteHarvester, Claimer, RemoteColonizer}
}

func Military() []Role {
	return []Role{Zealot, Stalker, Medic, DomesticDefender, RemoteDefender}
}

// All returns every role tag.
func All() []Role {
	out := append(Domestic(), Remote()...)
	return append(out, Military()...)
}

func Parse(s string) (Role, bool) {
	for _, r := range All() {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) IsMilitary() bool {
	switch r {
	case Zealot, Stalker, Medic, DomesticDefender, RemoteDefender:
		return true
	}
	return false
}

// Flees reports whether units of this role retreat home when their target
// room is under threat.
func (r Role) Flees() bool {
	return r == RemoteHarvester || r == RemoteMiner || r == RemoteReserver
}

// Env is everything a policy may read or mutate during one tick.
type Env struct {
	Store  *memory.Store
	Index  *model.Index
	Cache  *cache.Cache
	Board  *jobs.Board
	Tuning config.Tuning
	Rand   *rand.Rand
}

// NewEnv wires a fresh cache and job board over the tick's world index. The
// random source is seeded from the tick so replays pick the same exits.
func NewEnv(store *memory.Store, idx *model.Index, tuning config.Tuning) *Env {
	c := cache.New(store, idx, tuning)
	return &Env{
		Store:  store,
		Index:  idx,
		Cache:  c,
		Board:  jobs.NewBoard(store, c, tuning),
		Tuning: tuning,
		Rand:   rand.New(rand.NewPCG(uint64(idx.Tick()), 0x74756e647261)),
	}
}

// Unit pairs a live creep with its persisted record.
type Unit struct {
	Creep *model.Creep
	Mem   *memory.CreepMemory
}

func (u Unit) Name() string { return u.Creep.Name }
func (u Unit) Room() string { return u.Creep.Pos.Room }

// Manager is the policy of one role.
//
// GetNewJob picks a job for an idle unit in room. A nil job with a nil error
// means there is nothing suitable; errors are reserved for units whose
// memory cannot be acted on. It must not mutate the catalog.
//
// HandleNewJob commits the job already stored in u.Mem.Job: it marks the
// catalog entry taken and sets up any per-job state. Room is the unit's home
// room; remote roles decide themselves which catalog holds the job.
type Manager interface {
	Role() Role
	GetNewJob(env *Env, u Unit, room string) (*memory.Job, error)
	HandleNewJob(env *Env, u Unit, room string) error
}

// Registry maps role tags to their managers.
type Registry struct {
	managers map[Role]Manager
}

func NewRegistry(ms ...Manager) *Registry {
	r := &Registry{managers: make(map[Role]Manager, len(ms))}
	for _, m := range ms {
		r.Register(m)
	}
	return r
}

// Register adds m, replacing any manager already registered for its role.
func (r *Registry) Register(m Manager) {
	r.managers[m.Role()] = m
}

func (r *Registry) Get(role Role) (Manager, bool) {
	m, ok := r.managers[role]
	return m, ok
}

// Validate fails when any role tag lacks a manager.
func (r *Registry) Validate() error {
	var errs []error
	for _, role := range All() {
		if _, ok := r.managers[role]; !ok {
			errs = append(errs, fmt.Errorf("role %q: %w", role, usererr.ErrUnregisteredRole))
		}
	}
	return errors.Join(errs...)
}

// DefaultRegistry holds a manager for every role.
func DefaultRegistry() *Registry {
	return NewRegistry(
		minerManager{},
		harvesterManager{},
		workerManager{},
		powerUpgraderManager{},
		lorryManager{},
		storageManager{},
		mineralMinerManager{},
		scoutManager{},
		remoteMinerManager{},
		remoteHarvesterManager{},
		remoteReserverManager{},
		remoteColonizerManager{},
		claimerManager{},
		militaryManager{role: Zealot},
		militaryManager{role: Stalker},
		militaryManager{role: Medic},
		militaryManager{role: DomesticDefender},
		militaryManager{role: RemoteDefender},
	)
}
