package memory

import "github.com/nstehr/tundra/tundra-core/model"

// GCStats counts the records one GarbageCollect pass removed.
type GCStats struct {
	Creeps     int
	Rooms      int
	Flags      int
	Operations int
}

func (g GCStats) Total() int { return g.Creeps + g.Rooms + g.Flags + g.Operations }

// GarbageCollect removes records whose subject no longer exists:
//   - creep memory of units that are not alive
//   - room memory of rooms that are not visible, not a dependent room of any
//     owned room, and not the target room of any live unit
//   - flag memory of flags that are gone
//   - operations left with no squads
//
// Running it twice in a row removes nothing the second time.
func GarbageCollect(s *Store, idx *model.Index) GCStats {
	s.Init()
	var st GCStats

	for name := range s.Creeps {
		if _, alive := idx.Creep(name); !alive {
			delete(s.Creeps, name)
			st.Creeps++
		}
	}

	targeted := make(map[string]bool)
	for _, c := range idx.Creeps() {
		if cm, ok := s.Creep(c.Name); ok && cm.TargetRoom != "" {
			targeted[cm.TargetRoom] = true
		}
	}
	for name := range s.Rooms {
		if _, visible := idx.Room(name); visible {
			continue
		}
		if s.IsDependentRoom(name) || targeted[name] {
			continue
		}
		delete(s.Rooms, name)
		st.Rooms++
	}

	for key, fm := range s.Flags {
		name := key
		if fm != nil && fm.FlagName != "" {
			name = fm.FlagName
		}
		if _, ok := idx.Flag(name); !ok {
			delete(s.Flags, key)
			st.Flags++
		}
	}

	for id, op := range s.Empire.MilitaryOperations {
		if op == nil || len(op.Squads) == 0 {
			delete(s.Empire.MilitaryOperations, id)
			st.Operations++
		}
	}
	return st
}
