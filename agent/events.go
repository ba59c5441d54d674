package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
)

// EventKind identifies a change between two ticks worth telling the player
// about.
type EventKind string

const (
	EventSpawnLost       EventKind = "spawn_lost"
	EventRoomLost        EventKind = "room_lost"
	EventRoomGained      EventKind = "room_gained"
	EventLevelUp         EventKind = "level_up"
	EventArmyDevastated  EventKind = "army_devastated"
	EventEconomyCrisis   EventKind = "economy_crisis"
	EventFirstContact    EventKind = "first_contact"
	EventStorageDepleted EventKind = "storage_depleted"
)

// Event is one detected change. Detail is written for a human reading the
// alert log.
type Event struct {
	Kind   EventKind
	Tick   int
	Room   string
	Detail string
}

// stateSnapshot captures the diffable fields of one tick.
type stateSnapshot struct {
	spawns        map[string]string // id → room
	owned         map[string]int    // room → controller level
	military      int
	earners       map[string]int // room → harvesters and miners homed there
	storageEnergy map[string]int
	hostileRooms  map[string]bool
}

// devastationFloor is the smallest army whose losses are worth an event.
const devastationFloor = 6

// earnerRoles are the roles that bring energy into a room.
var earnerRoles = map[string]bool{
	string(roles.Harvester): true,
	string(roles.Miner):     true,
}

func takeSnapshot(gs *model.GameState, store *memory.Store) stateSnapshot {
	snap := stateSnapshot{
		spawns:        make(map[string]string),
		owned:         make(map[string]int),
		earners:       make(map[string]int),
		storageEnergy: make(map[string]int),
		hostileRooms:  make(map[string]bool),
	}
	for i := range gs.Rooms {
		r := &gs.Rooms[i]
		if len(r.Hostiles) > 0 {
			snap.hostileRooms[r.Name] = true
		}
		if !r.IsOwned() {
			continue
		}
		snap.owned[r.Name] = r.Controller.Level
		for _, s := range r.Structures {
			switch {
			case !s.My:
			case s.Type == model.StructureSpawn:
				snap.spawns[s.ID] = r.Name
			case s.Type == model.StructureStorage:
				snap.storageEnergy[r.Name] += s.Store.Energy
			}
		}
	}
	for _, c := range gs.Creeps {
		cm, ok := store.Creep(c.Name)
		if !ok {
			continue
		}
		if role, ok := roles.Parse(cm.Role); ok && role.IsMilitary() {
			snap.military++
		}
		if earnerRoles[cm.Role] {
			snap.earners[cm.HomeRoom]++
		}
	}
	return snap
}

// detectEvents compares the current tick against the previous snapshot.
// It returns nil on the first tick.
func detectEvents(gs *model.GameState, store *memory.Store, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	cur := takeSnapshot(gs, store)
	var events []Event
	add := func(kind EventKind, room, format string, args ...any) {
		events = append(events, Event{Kind: kind, Tick: gs.Tick, Room: room, Detail: fmt.Sprintf(format, args...)})
	}

	for _, room := range sortedKeys(prev.owned) {
		level := prev.owned[room]
		now, still := cur.owned[room]
		switch {
		case !still:
			add(EventRoomLost, room, "Lost room %s (was RCL %d)", room, level)
		case now > level:
			add(EventLevelUp, room, "Room %s reached RCL %d", room, now)
		}
	}
	for _, room := range sortedKeys(cur.owned) {
		if _, had := prev.owned[room]; !had {
			add(EventRoomGained, room, "Claimed room %s", room)
		}
	}

	for _, id := range sortedKeys(prev.spawns) {
		room := prev.spawns[id]
		if _, ok := cur.spawns[id]; !ok {
			if _, still := cur.owned[room]; still {
				add(EventSpawnLost, room, "Lost spawn %s in %s", id, room)
			}
		}
	}

	if prev.military >= devastationFloor {
		lost := prev.military - cur.military
		if lost > 0 && float64(lost)/float64(prev.military) > 0.5 {
			add(EventArmyDevastated, "", "Army devastated: %d→%d military creeps", prev.military, cur.military)
		}
	}

	for _, room := range sortedKeys(prev.earners) {
		if prev.earners[room] > 0 && cur.earners[room] == 0 {
			if _, still := cur.owned[room]; still {
				add(EventEconomyCrisis, room, "Economy crisis: every harvester and miner of %s is gone", room)
			}
		}
	}
	for _, room := range sortedKeys(prev.storageEnergy) {
		if prev.storageEnergy[room] > 10000 && cur.storageEnergy[room] < 1000 {
			if _, still := cur.storageEnergy[room]; still {
				add(EventStorageDepleted, room, "Storage in %s collapsed %d → %d", room,
					prev.storageEnergy[room], cur.storageEnergy[room])
			}
		}
	}

	if len(prev.hostileRooms) == 0 && len(cur.hostileRooms) > 0 {
		rooms := sortedKeys(cur.hostileRooms)
		add(EventFirstContact, rooms[0], "First contact: hostiles in %s", strings.Join(rooms, ", "))
	}
	return events
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatEvents renders events as a "Recent Events" block for the log.
func formatEvents(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent Events:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "- [tick %d] %s: %s\n", e.Tick, e.Kind, e.Detail)
	}
	return b.String()
}
