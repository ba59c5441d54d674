package rules

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/military"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// spawnOrder is everything needed to put one creep in the spawn queue.
type spawnOrder struct {
	role   roles.Role
	tier   int
	mem    memory.CreepMemory
	entry  *memory.MilitaryEntry
	budget int // energy the body is sized against
}

// ActionSpawn returns the action that spawns one unit of role, sized to the
// room's full energy capacity.
func ActionSpawn(role roles.Role) ActionFunc {
	return func(env SpawnEnv, out ipc.Sender) error {
		target, err := env.targetRoomFor(role)
		if err != nil {
			return err
		}
		return env.spawn(out, spawnOrder{
			role:   role,
			budget: env.Capacity(),
			mem: memory.CreepMemory{
				Role:       string(role),
				HomeRoom:   env.Room.Name,
				TargetRoom: target,
				Options:    roles.DefaultOptions(role, env.State()),
			},
		})
	}
}

// ActionRecover spawns a unit of role sized to the energy on hand, so a room
// that lost its economy can restart without waiting for a full refill.
func ActionRecover(role roles.Role) ActionFunc {
	return func(env SpawnEnv, out ipc.Sender) error {
		slog.Warn("spawning recovery creep", "room", env.Room.Name, "role", role)
		return env.spawn(out, spawnOrder{
			role:   role,
			budget: max(env.Energy(), 300),
			mem: memory.CreepMemory{
				Role:       string(role),
				HomeRoom:   env.Room.Name,
				TargetRoom: env.Room.Name,
				Options:    roles.DefaultOptions(role, env.State()),
			},
		})
	}
}

// ActionSpawnMilitary spawns the most urgent entry of the room's military
// queue and enlists it in its squad.
func ActionSpawnMilitary(env SpawnEnv, out ipc.Sender) error {
	q := env.Mem.CreepLimit.MilitaryQueue
	if len(q) == 0 {
		return nil
	}
	slices.SortStableFunc(q, func(a, b *memory.MilitaryEntry) int { return a.Priority - b.Priority })
	next := q[0]
	role, ok := roles.Parse(next.Role)
	if !ok || !role.IsMilitary() {
		env.Mem.CreepLimit.MilitaryQueue = q[1:]
		return usererr.Of(usererr.ErrUnregisteredRole, usererr.Error, "Bad military queue entry",
			fmt.Sprintf("room: %s, role: %q, squad: %s", env.Room.Name, next.Role, next.SquadUUID))
	}
	return env.spawn(out, spawnOrder{
		role:   role,
		budget: env.Capacity(),
		entry:  next,
		mem: memory.CreepMemory{
			Role:          string(role),
			HomeRoom:      env.Room.Name,
			TargetRoom:    next.TargetRoom,
			Options:       next.Options,
			OperationUUID: next.OperationUUID,
			SquadUUID:     next.SquadUUID,
		},
	})
}

// spawn sends the spawn intent once the room can pay for the body. Until
// then the order simply waits; the rule keeps firing and holds the spawn.
func (e SpawnEnv) spawn(out ipc.Sender, o spawnOrder) error {
	o.tier = roles.Tier(o.budget)
	if e.State() == memory.RoomStateIntro || o.tier == 0 {
		o.tier = 1
	}
	body := roles.Body(o.role, o.tier)
	if len(body) == 0 {
		return usererr.Of(usererr.ErrNullData, usererr.Warn, "No body for role",
			fmt.Sprintf("room: %s, role: %s, tier: %d", e.Room.Name, o.role, o.tier))
	}
	cost := roles.BodyCost(body)
	if cost > e.Capacity() {
		return usererr.Of(usererr.ErrNullData, usererr.Error, "Body costs more than the room can hold",
			fmt.Sprintf("room: %s, role: %s, cost: %d, capacity: %d", e.Room.Name, o.role, cost, e.Capacity()))
	}
	if e.Energy() < cost {
		slog.Debug("waiting for spawn energy", "room", e.Room.Name, "role", o.role, "cost", cost, "energy", e.Energy())
		return nil
	}
	if o.mem.HomeRoom == "" || o.mem.TargetRoom == "" {
		return usererr.Of(usererr.ErrNullData, usererr.Error, "Spawn order incomplete",
			fmt.Sprintf("room: %s, role: %s, home: %q, target: %q", e.Room.Name, o.role, o.mem.HomeRoom, o.mem.TargetRoom))
	}

	name := e.creepName(o.role, o.tier)
	err := out.Send(ipc.TypeSpawn, ipc.SpawnCommand{
		Spawn:  e.Spawn.ID,
		Name:   name,
		Body:   body,
		Memory: o.mem,
	})
	if err != nil {
		return fmt.Errorf("send spawn for %s: %w", name, err)
	}

	mem := o.mem
	e.world.Store.Creeps[name] = &mem
	e.Spawn.Spawning = true
	e.Room.EnergyAvailable -= cost
	if o.entry != nil {
		q := e.Mem.CreepLimit.MilitaryQueue
		e.Mem.CreepLimit.MilitaryQueue = slices.DeleteFunc(q, func(m *memory.MilitaryEntry) bool { return m == o.entry })
		military.Enlist(e.world.Store, o.entry, name)
	}
	slog.Info("spawning creep", "room", e.Room.Name, "spawn", e.Spawn.ID, "name", name, "role", o.role, "tier", o.tier, "cost", cost)
	return nil
}

// creepName follows role_tier_tick, suffixed when a name is already taken.
func (e SpawnEnv) creepName(role roles.Role, tier int) string {
	base := fmt.Sprintf("%s_%d_%d", role, tier, e.world.Index.Tick())
	name := base
	for i := 1; ; i++ {
		_, stored := e.world.Store.Creeps[name]
		_, alive := e.world.Index.Creep(name)
		if !stored && !alive {
			return name
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// targetRoomFor picks the room a new unit of role will work. Home roles
// target their own room.
func (e SpawnEnv) targetRoomFor(role roles.Role) (string, error) {
	var pick string
	switch role {
	case roles.RemoteMiner, roles.RemoteHarvester:
		pick = e.leastServed(e.Mem.RemoteRooms, role, func(room string) int { return e.remoteSources(room) })
	case roles.RemoteReserver:
		minTTL := e.world.Tuning.Thresholds.ReserverMinTTL
		for _, d := range e.Mem.RemoteRooms {
			if d.ReserveTTL < minTTL && e.targeting(d.RoomName, role) == 0 {
				pick = d.RoomName
				break
			}
		}
	case roles.Claimer:
		for _, d := range e.Mem.ClaimRooms {
			r, ok := e.world.Index.Room(d.RoomName)
			if (!ok || !r.IsOwned()) && e.targeting(d.RoomName, role) == 0 {
				pick = d.RoomName
				break
			}
		}
	case roles.RemoteColonizer:
		pick = e.leastServed(e.Mem.ClaimRooms, role, func(string) int { return colonizersPerClaim })
	default:
		return e.Room.Name, nil
	}
	if pick == "" {
		return "", usererr.Of(usererr.ErrNullData, usererr.Error, "No target room for remote creep",
			fmt.Sprintf("room: %s, role: %s", e.Room.Name, role))
	}
	return pick, nil
}

// leastServed returns the dependent room with the most open slots for role.
func (e SpawnEnv) leastServed(rooms []*memory.DependentRoom, role roles.Role, slots func(string) int) string {
	best, bestOpen := "", 0
	for _, d := range rooms {
		open := slots(d.RoomName) - e.targeting(d.RoomName, role)
		if open > bestOpen {
			best, bestOpen = d.RoomName, open
		}
	}
	return best
}

// openSpawns lists the room's spawns that are not busy.
func openSpawns(structures []*model.Structure) []*model.Structure {
	out := structures[:0:0]
	for _, s := range structures {
		if s.My && !s.Spawning {
			out = append(out, s)
		}
	}
	return out
}
