package agent

import (
	"strings"
	"testing"

	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

func pos(room string) model.Pos { return model.Pos{X: 25, Y: 25, Room: room} }

// baseGameState returns two owned rooms, one with storage, and a small
// economy plus an army of six.
func baseGameState(tick int) (*model.GameState, *memory.Store) {
	gs := &model.GameState{
		Tick:     tick,
		Username: "me",
		Rooms: []model.Room{
			{
				Name:       "W1N1",
				Controller: &model.Controller{ID: "c1", Pos: pos("W1N1"), My: true, Owner: "me", Level: 4},
				Structures: []model.Structure{
					{ID: "spawn1", Type: model.StructureSpawn, Pos: pos("W1N1"), My: true},
					{ID: "store1", Type: model.StructureStorage, Pos: pos("W1N1"), My: true,
						Store: model.Store{Energy: 50000, Capacity: 1000000}},
				},
			},
			{
				Name:       "W2N1",
				Controller: &model.Controller{ID: "c2", Pos: pos("W2N1"), My: true, Owner: "me", Level: 2},
				Structures: []model.Structure{
					{ID: "spawn2", Type: model.StructureSpawn, Pos: pos("W2N1"), My: true},
				},
			},
		},
	}
	store := memory.New()
	add := func(name, role, home string) {
		gs.Creeps = append(gs.Creeps, model.Creep{ID: name, Name: name, Owner: "me", Pos: pos(home)})
		store.Creeps[name] = &memory.CreepMemory{Role: role, HomeRoom: home}
	}
	add("h1", "harvester", "W1N1")
	add("m1", "miner", "W1N1")
	add("h2", "harvester", "W2N1")
	for _, n := range []string{"z1", "z2", "z3", "z4", "s1", "s2"} {
		add(n, "zealot", "W1N1")
	}
	return gs, store
}

func dropCreeps(gs *model.GameState, names ...string) {
	gone := make(map[string]bool, len(names))
	for _, n := range names {
		gone[n] = true
	}
	kept := gs.Creeps[:0]
	for _, c := range gs.Creeps {
		if !gone[c.Name] {
			kept = append(kept, c)
		}
	}
	gs.Creeps = kept
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestDetectEvents_NoEvents(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	// Same state next tick, no events
	gs.Tick = 101
	events := detectEvents(gs, store, &prev)
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d: %+v", len(events), events)
	}
}

func TestDetectEvents_NilPrev(t *testing.T) {
	gs, store := baseGameState(100)
	events := detectEvents(gs, store, nil)
	if events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestDetectEvents_SpawnLost(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	gs.Rooms[1].Structures = nil
	events := detectEvents(gs, store, &prev)
	if len(events) != 1 || events[0].Kind != EventSpawnLost {
		t.Fatalf("expected one spawn_lost, got %+v", events)
	}
	if events[0].Room != "W2N1" || !strings.Contains(events[0].Detail, "spawn2") {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestDetectEvents_RoomLostHidesSpawnLoss(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	gs.Rooms[1].Controller.My = false
	gs.Rooms[1].Controller.Owner = ""
	gs.Rooms[1].Structures = nil
	dropCreeps(gs, "h2")
	events := detectEvents(gs, store, &prev)
	if got := kinds(events); len(got) != 1 || got[0] != EventRoomLost {
		t.Errorf("expected only room_lost, got %v", got)
	}
}

func TestDetectEvents_RoomGainedAndLevelUp(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	gs.Rooms[1].Controller.Level = 3
	gs.Rooms = append(gs.Rooms, model.Room{
		Name:       "W3N1",
		Controller: &model.Controller{ID: "c3", Pos: pos("W3N1"), My: true, Owner: "me", Level: 1},
	})
	got := kinds(detectEvents(gs, store, &prev))
	want := []EventKind{EventLevelUp, EventRoomGained}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDetectEvents_ArmyDevastated(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	dropCreeps(gs, "z1", "z2", "z3", "z4")
	events := detectEvents(gs, store, &prev)
	if len(events) != 1 || events[0].Kind != EventArmyDevastated {
		t.Fatalf("expected army_devastated, got %+v", events)
	}
	if !strings.Contains(events[0].Detail, "6→2") {
		t.Errorf("detail should show the drop, got %q", events[0].Detail)
	}
}

func TestDetectEvents_HalfArmyLostIsNotDevastation(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	dropCreeps(gs, "z1", "z2", "z3")
	if events := detectEvents(gs, store, &prev); len(events) != 0 {
		t.Errorf("losing exactly half is not devastation, got %+v", events)
	}
}

func TestDetectEvents_SmallArmyIgnored(t *testing.T) {
	gs, store := baseGameState(100)
	dropCreeps(gs, "z1", "z2")
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	dropCreeps(gs, "z3", "z4", "s1", "s2")
	if events := detectEvents(gs, store, &prev); len(events) != 0 {
		t.Errorf("armies under the floor are ignored, got %+v", events)
	}
}

func TestDetectEvents_EconomyCrisis(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	dropCreeps(gs, "h1", "m1")
	events := detectEvents(gs, store, &prev)
	if len(events) != 1 || events[0].Kind != EventEconomyCrisis || events[0].Room != "W1N1" {
		t.Errorf("expected economy_crisis in W1N1, got %+v", events)
	}
}

func TestDetectEvents_StorageDepleted(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	gs.Rooms[0].Structures[1].Store.Energy = 500
	events := detectEvents(gs, store, &prev)
	if len(events) != 1 || events[0].Kind != EventStorageDepleted {
		t.Errorf("expected storage_depleted, got %+v", events)
	}
}

func TestDetectEvents_FirstContactOnce(t *testing.T) {
	gs, store := baseGameState(100)
	prev := takeSnapshot(gs, store)

	gs.Tick = 101
	gs.Rooms[1].Hostiles = []model.Creep{{ID: "bad", Name: "bad", Owner: "them", Pos: pos("W2N1")}}
	events := detectEvents(gs, store, &prev)
	if len(events) != 1 || events[0].Kind != EventFirstContact || events[0].Room != "W2N1" {
		t.Fatalf("expected first_contact in W2N1, got %+v", events)
	}

	prev = takeSnapshot(gs, store)
	gs.Tick = 102
	if events := detectEvents(gs, store, &prev); len(events) != 0 {
		t.Errorf("hostiles already seen, got %+v", events)
	}
}

func TestFormatEvents(t *testing.T) {
	if got := formatEvents(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	got := formatEvents([]Event{{Kind: EventLevelUp, Tick: 7, Room: "W1N1", Detail: "Room W1N1 reached RCL 5"}})
	if !strings.HasPrefix(got, "Recent Events:\n") || !strings.Contains(got, "[tick 7] level_up: Room W1N1 reached RCL 5") {
		t.Errorf("unexpected format:\n%s", got)
	}
}
