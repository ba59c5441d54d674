package military

import (
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

// Defcon rates the hostile presence in r from 0 (none) to 4 (a siege).
// Level 1 is hostiles with no combat parts, such as scouts.
func Defcon(r *model.Room) int {
	if len(r.Hostiles) == 0 {
		return 0
	}
	parts := 0
	for i := range r.Hostiles {
		h := &r.Hostiles[i]
		parts += h.Parts(model.Attack) + h.Parts(model.RangedAttack) + h.Parts(model.Heal) + h.Parts(model.Work)
	}
	switch {
	case parts == 0:
		return 1
	case parts < 10:
		return 2
	case parts < 30:
		return 3
	}
	return 4
}

// Defend raises a defender squad for every threatened owned room and remote
// room that does not already have one. It returns the squads created.
func Defend(store *memory.Store, tick int) ([]*memory.Squad, error) {
	var created []*memory.Squad
	for name, rm := range store.Rooms {
		if rm == nil || !rm.Owned {
			continue
		}
		if rm.Defcon >= 2 && squadsTargeting(store, DomesticDefender, name) == 0 {
			sq, err := CreateSquad(store, DomesticDefender, name, NewOperation(store, OpDefense), name, tick)
			if err != nil {
				return created, err
			}
			created = append(created, sq)
		}
		for _, d := range rm.RemoteRooms {
			remote, ok := store.Room(d.RoomName)
			if !ok || remote.Defcon < 2 || squadsTargeting(store, RemoteDefender, d.RoomName) > 0 {
				continue
			}
			sq, err := CreateSquad(store, RemoteDefender, d.RoomName, NewOperation(store, OpDefense), name, tick)
			if err != nil {
				return created, err
			}
			created = append(created, sq)
		}
	}
	return created, nil
}
