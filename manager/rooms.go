package manager

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/military"
	"github.com/nstehr/tundra/tundra-core/model"
)

const emergencyRampartHits = 1000

// rooms keeps room memory current for owned rooms and visible dependent
// rooms: ownership, room state, defcon and the job catalog. Owned rooms
// also run their towers.
func (t *tick) rooms() error {
	idx := t.env.Index
	iv := t.m.Tuning.Intervals
	for _, r := range idx.OwnedRooms() {
		rm := t.m.Store.InitRoom(r.Name, true)
		if state := roomState(t, r); state != rm.RoomState {
			slog.Info("room state changed", "room", r.Name, "from", rm.RoomState, "to", state)
			rm.RoomState = state
		}
		if every(idx.Tick(), iv.Defcon) || rm.Defcon < 0 {
			setDefcon(rm, r)
		}
		t.env.Board.Warm(r.Name)
		if every(idx.Tick(), iv.Towers) {
			if err := t.towers(r, rm); err != nil {
				return err
			}
		}
	}

	for name, rm := range t.m.Store.Rooms {
		if rm == nil || rm.Owned || !t.m.Store.IsDependentRoom(name) {
			continue
		}
		r, visible := idx.Room(name)
		if !visible {
			continue
		}
		t.m.Store.InitRoom(name, false)
		if every(idx.Tick(), iv.Defcon) || rm.Defcon < 0 {
			setDefcon(rm, r)
		}
		t.env.Board.Warm(name)
	}
	return nil
}

func every(tick, n int) bool { return n <= 1 || tick%n == 0 }

func setDefcon(rm *memory.RoomMemory, r *model.Room) {
	d := military.Defcon(r)
	if d != rm.Defcon && (d > 0 || rm.Defcon > 0) {
		slog.Info("defcon changed", "room", r.Name, "from", rm.Defcon, "to", d)
	}
	rm.Defcon = d
}

// roomState classifies an owned room by how developed it is. A room with
// fewer than three of our creeps is back to intro whatever its level.
func roomState(t *tick, r *model.Room) string {
	if len(t.env.Cache.MyCreeps(r.Name)) < 3 {
		return memory.RoomStateIntro
	}
	if r.Controller != nil && r.Controller.Level >= 4 &&
		len(t.env.Cache.Structures(r.Name, model.StructureStorage)) > 0 {
		return memory.RoomStateAdvanced
	}
	return memory.RoomStateBeginner
}

// towers gives each tower one action: shoot the closest hostile, else heal
// the most damaged creep of ours, else patch an almost broken rampart, else
// repair critically low structures while the tower has energy to spare.
func (t *tick) towers(r *model.Room, rm *memory.RoomMemory) error {
	towers := t.env.Cache.Structures(r.Name, model.StructureTower)
	if len(towers) == 0 {
		return nil
	}
	hostiles := t.env.Cache.Hostiles(r.Name)
	hurt := mostDamaged(t.env.Cache.MyCreeps(r.Name))
	rampart := weakestRampart(t.env.Cache.Structures(r.Name, model.StructureRampart))
	repairs := t.env.Board.PriorityRepairJobs(r.Name)

	for _, tw := range towers {
		if !tw.My || tw.Store.Energy == 0 {
			continue
		}
		var (
			kind   string
			target string
		)
		switch {
		case len(hostiles) > 0:
			h, _ := model.Closest(tw.Pos, hostiles)
			kind, target = ipc.TypeTowerAttack, h.ID
		case hurt != nil:
			kind, target = ipc.TypeTowerHeal, hurt.ID
		case rampart != nil:
			kind, target = ipc.TypeTowerRepair, rampart.ID
		case len(repairs) > 0 && energyRatio(tw) >= t.m.Tuning.Thresholds.Tower:
			kind, target = ipc.TypeTowerRepair, repairs[0].TargetID
		default:
			continue
		}
		if err := t.out.Send(kind, ipc.TowerCommand{Tower: tw.ID, TargetID: target}); err != nil {
			return fmt.Errorf("tower %s in %s: %w", tw.ID, r.Name, err)
		}
	}
	return nil
}

func mostDamaged(cs []*model.Creep) *model.Creep {
	var best *model.Creep
	for _, c := range cs {
		if c.Hits < c.HitsMax && (best == nil || c.HitsMax-c.Hits > best.HitsMax-best.Hits) {
			best = c
		}
	}
	return best
}

func weakestRampart(ss []*model.Structure) *model.Structure {
	var best *model.Structure
	for _, s := range ss {
		if s.My && s.Hits < emergencyRampartHits && (best == nil || s.Hits < best.Hits) {
			best = s
		}
	}
	return best
}

func energyRatio(s *model.Structure) float64 {
	if s.Store.Capacity <= 0 {
		return 0
	}
	return float64(s.Store.Energy) / float64(s.Store.Capacity)
}
