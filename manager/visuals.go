package manager

import (
	"github.com/nstehr/tundra/tundra-core/empire"
	"github.com/nstehr/tundra/tundra-core/observer"
	"github.com/nstehr/tundra/tundra-core/roles"
)

// visuals publishes one overlay per owned room.
func (t *tick) visuals() error {
	if t.m.Visuals == nil {
		return nil
	}
	alerts := empire.ActiveAlerts(t.m.Store, t.rep.Tick)
	for _, r := range t.env.Index.OwnedRooms() {
		o := observer.RoomOverlay{
			Tick:     t.rep.Tick,
			Room:     r.Name,
			Energy:   r.EnergyAvailable,
			Capacity: r.EnergyCapacityAvailable,
			Creeps:   creepCounts(t, r.Name),
			Alerts:   alerts,
		}
		if r.Controller != nil {
			o.RCL = r.Controller.Level
		}
		if rm, ok := t.m.Store.Room(r.Name); ok {
			o.Defcon = rm.Defcon
			o.State = rm.RoomState
			o.Jobs = make(map[string]int)
			for kind, jl := range rm.Jobs {
				if jl != nil {
					o.Jobs[kind] = len(jl.Jobs)
				}
			}
			if rm.CreepLimit != nil {
				o.Limits = make(map[string]int)
				for role, n := range rm.CreepLimit.Domestic {
					o.Limits[role] = n
				}
				for role, n := range rm.CreepLimit.Remote {
					o.Limits[role] += n
				}
			}
		}
		t.m.Visuals.Publish(o)
	}
	return nil
}

// creepCounts counts live creeps by role among those whose home is room.
func creepCounts(t *tick, room string) map[string]int {
	out := make(map[string]int)
	for _, c := range t.env.Index.Creeps() {
		cm, ok := t.m.Store.Creep(c.Name)
		if !ok || cm.HomeRoom != room {
			continue
		}
		if _, known := roles.Parse(cm.Role); known {
			out[cm.Role]++
		}
	}
	return out
}
