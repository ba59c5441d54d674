package rules

import (
	"testing"

	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
)

func TestDomesticLimits(t *testing.T) {
	tests := []struct {
		name    string
		state   string
		storage int
		sites   int
		rcl     int
		want    map[roles.Role]int
	}{
		{
			name:  "intro",
			state: memory.RoomStateIntro,
			rcl:   1,
			want:  map[roles.Role]int{roles.Miner: 1, roles.Harvester: 3, roles.Worker: 2, roles.Lorry: 0, roles.StorageManager: 0},
		},
		{
			name:  "beginner with construction",
			state: memory.RoomStateBeginner,
			sites: 12,
			rcl:   3,
			want:  map[roles.Role]int{roles.Harvester: 2, roles.Worker: 3, roles.PowerUpgrader: 1, roles.Scout: 1},
		},
		{
			name:    "advanced with full storage",
			state:   memory.RoomStateAdvanced,
			storage: 350000,
			rcl:     5,
			want:    map[roles.Role]int{roles.Worker: 2, roles.PowerUpgrader: 2, roles.StorageManager: 1, roles.Lorry: 0, roles.MineralMiner: 0},
		},
		{
			name:    "advanced at max level",
			state:   memory.RoomStateAdvanced,
			storage: 350000,
			sites:   40,
			rcl:     8,
			want:    map[roles.Role]int{roles.Worker: 4, roles.PowerUpgrader: 1},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorld()
			r := &w.gs.Rooms[0]
			r.Controller.Level = tc.rcl
			if tc.storage > 0 {
				r.Structures = append(r.Structures, model.Structure{
					ID: "storage", Type: model.StructureStorage, Pos: at(25, 30), My: true,
					Store: model.Store{Energy: tc.storage, Capacity: 1000000},
				})
			}
			for i := range tc.sites {
				r.ConstructionSites = append(r.ConstructionSites, model.ConstructionSite{
					ID: "site" + string(rune('a'+i%26)) + string(rune('a'+i/26)), Pos: at(5+i%40, 40), StructureType: model.StructureRoad, My: true,
				})
			}
			rm := w.store.Rooms["W1N1"]
			rm.RoomState = tc.state

			env := newSpawnEnv(roles.NewEnv(w.store, model.NewIndex(w.gs), config.Default()), r, rm, nil)
			ComputeLimits(env)
			for role, want := range tc.want {
				if got := rm.CreepLimit.Domestic[string(role)]; got != want {
					t.Errorf("%s limit = %d, want %d", role, got, want)
				}
			}
		})
	}
}

func TestRemoteLimits(t *testing.T) {
	w := newWorld()
	w.gs.Rooms = append(w.gs.Rooms, model.Room{
		Name: "W2N1",
		Controller: &model.Controller{ID: "ctrl2", Pos: model.Pos{X: 20, Y: 20, Room: "W2N1"},
			Reservation: &model.Reservation{Username: "me", TicksToEnd: 4000}},
		Sources: []model.Source{
			{ID: "rs1", Pos: model.Pos{X: 5, Y: 5, Room: "W2N1"}},
			{ID: "rs2", Pos: model.Pos{X: 40, Y: 40, Room: "W2N1"}},
		},
	})
	rm := w.store.Rooms["W1N1"]
	rm.RemoteRooms = []*memory.DependentRoom{{RoomName: "W2N1"}, {RoomName: "W0N1"}}
	rm.ClaimRooms = []*memory.DependentRoom{{RoomName: "W1N2"}}

	env := newSpawnEnv(roles.NewEnv(w.store, model.NewIndex(w.gs), config.Default()), &w.gs.Rooms[0], rm, nil)
	ComputeLimits(env)

	want := map[roles.Role]int{
		roles.RemoteMiner:     3, // two visible sources, one assumed
		roles.RemoteHarvester: 3,
		roles.RemoteReserver:  1, // W2N1 is reserved long enough
		roles.Claimer:         1,
		roles.RemoteColonizer: 2,
	}
	for role, n := range want {
		if got := rm.CreepLimit.Remote[string(role)]; got != n {
			t.Errorf("%s limit = %d, want %d", role, got, n)
		}
	}
	if rm.RemoteRooms[0].ReserveTTL != 4000 {
		t.Errorf("reservation not observed: %d", rm.RemoteRooms[0].ReserveTTL)
	}
}
