package military

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/nstehr/tundra/tundra-core/creeps"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Report summarizes one military pass.
type Report struct {
	Squads int
	Dead   int
	Errors []error
}

type runner struct {
	env *roles.Env
	reg *roles.Registry
	out ipc.Sender
	rep *Report
}

// Run advances every squad of every operation: prunes the dead, moves the
// status machine along and issues movement and combat intents for members.
func Run(env *roles.Env, reg *roles.Registry, out ipc.Sender) *Report {
	r := &runner{env: env, reg: reg, out: out, rep: &Report{}}
	ops := env.Store.Empire.MilitaryOperations
	for _, opID := range sortedKeys(ops) {
		op := ops[opID]
		if op == nil {
			continue
		}
		for _, sqID := range sortedKeys(op.Squads) {
			sq := op.Squads[sqID]
			if sq == nil {
				delete(op.Squads, sqID)
				continue
			}
			r.rep.Squads++
			if r.runSquad(sq) == memory.SquadStatusDead {
				slog.Info("squad dead", "squad", sq.SquadUUID, "manager", sq.Manager, "operation", opID)
				DropQueued(env.Store, sq.SquadUUID)
				delete(op.Squads, sqID)
				r.rep.Dead++
			}
		}
	}
	return r.rep
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *runner) runSquad(sq *memory.Squad) string {
	pruneDead(sq, r.env.Store)
	live := members(sq, r.env.Index)
	next := r.nextStatus(sq, live)
	if next != sq.Status {
		slog.Debug("squad status", "squad", sq.SquadUUID, "from", sq.Status, "to", next)
		sq.Status = next
	}
	if next == memory.SquadStatusDead {
		return next
	}
	for _, c := range live {
		if err := r.drive(sq, c, live); err != nil {
			r.rep.Errors = append(r.rep.Errors, err)
			usererr.Report(err, "squad", sq.SquadUUID, "creep", c.Name)
		}
	}
	return next
}

func (r *runner) nextStatus(sq *memory.Squad, live []*model.Creep) string {
	if len(sq.Creeps) == 0 && sq.Queued == 0 {
		return memory.SquadStatusDead
	}
	switch sq.Status {
	case "", memory.SquadStatusInit:
		if sq.Queued > 0 || len(live) < len(sq.Creeps) {
			return memory.SquadStatusInit
		}
		if sq.RallyRoom != "" {
			return memory.SquadStatusRally
		}
		return memory.SquadStatusEnRoute
	case memory.SquadStatusRally:
		if isRallied(sq, r.env.Store, live) {
			return memory.SquadStatusEnRoute
		}
	case memory.SquadStatusEnRoute:
		for _, c := range live {
			if c.Pos.Room == sq.TargetRoom {
				return memory.SquadStatusEngaging
			}
		}
	case memory.SquadStatusEngaging:
		if t, ok := r.env.Index.Room(sq.TargetRoom); ok && cleared(t, r.env.Index.State.Username) {
			return memory.SquadStatusDone
		}
	case memory.SquadStatusDone:
		if t, ok := r.env.Index.Room(sq.TargetRoom); ok && Defcon(t) >= 2 {
			return memory.SquadStatusEnRoute
		}
	}
	return sq.Status
}

// cleared reports whether nothing in room is left to fight.
func cleared(room *model.Room, me string) bool {
	if len(room.Hostiles) > 0 {
		return false
	}
	c := room.Controller
	return c == nil || c.Owner == "" || c.Owner == me
}

// drive issues one member's intents for the tick: fight whatever is in
// reach, then move.
func (r *runner) drive(sq *memory.Squad, c *model.Creep, live []*model.Creep) error {
	cm, ok := r.env.Store.Creep(c.Name)
	if !ok {
		return nil
	}
	room, _ := r.env.Index.Room(c.Pos.Room)
	hostiles := hostilesIn(room)

	if err := r.fight(c, cm, hostiles, live); err != nil {
		return err
	}

	if sq.Status == memory.SquadStatusEngaging && c.Pos.Room == sq.TargetRoom && len(hostiles) > 0 {
		return r.engage(c, cm, hostiles, live)
	}

	role, _ := roles.Parse(cm.Role)
	m, ok := r.reg.Get(role)
	if !ok {
		return usererr.Of(usererr.ErrUnregisteredRole, usererr.Error, "No manager for role",
			fmt.Sprintf("creep: %s, role: %s", c.Name, cm.Role))
	}
	job, err := m.GetNewJob(r.env, roles.Unit{Creep: c, Mem: cm}, cm.HomeRoom)
	if err != nil {
		return err
	}
	cm.Job = job
	if job == nil {
		return nil
	}
	return creeps.Travel(r.out, c, model.Pos{X: 25, Y: 25, Room: job.TargetID}, 20, false)
}

func (r *runner) fight(c *model.Creep, cm *memory.CreepMemory, hostiles []*model.Creep, live []*model.Creep) error {
	o := cm.Options
	if o.Healer || c.Parts(model.Heal) > 0 {
		if hurt := mostDamaged(c, live); hurt != nil {
			return r.send(ipc.TypeHeal, c, hurt.ID)
		}
	}
	target, ok := model.Closest(c.Pos, hostiles)
	if !ok {
		return nil
	}
	switch {
	case c.Parts(model.Attack) > 0 && c.Pos.IsNearTo(target.Pos):
		return r.send(ipc.TypeAttack, c, target.ID)
	case c.Parts(model.RangedAttack) > 0 && c.Pos.InRangeTo(target.Pos, 3):
		return r.send(ipc.TypeRangedAttack, c, target.ID)
	}
	return nil
}

// engage moves a member into its fighting range. Healers keep to the squad
// leader instead of the enemy.
func (r *runner) engage(c *model.Creep, cm *memory.CreepMemory, hostiles []*model.Creep, live []*model.Creep) error {
	if cm.Options.Healer && c.Parts(model.Attack) == 0 && c.Parts(model.RangedAttack) == 0 {
		if lead := leader(c, live, r.env.Store); lead != nil && !c.Pos.IsNearTo(lead.Pos) {
			return creeps.Travel(r.out, c, lead.Pos, 1, false)
		}
		return nil
	}
	target, _ := model.Closest(c.Pos, hostiles)
	rng := 1
	if c.Parts(model.Attack) == 0 {
		rng = 3
	}
	if c.Pos.InRangeTo(target.Pos, rng) {
		return nil
	}
	return creeps.Travel(r.out, c, target.Pos, rng, false)
}

func (r *runner) send(t string, c *model.Creep, target string) error {
	if err := r.out.Send(t, ipc.TargetCommand{Creep: c.Name, TargetID: target}); err != nil {
		return fmt.Errorf("send %s for %s: %w", t, c.Name, err)
	}
	return nil
}

func hostilesIn(room *model.Room) []*model.Creep {
	if room == nil {
		return nil
	}
	out := make([]*model.Creep, 0, len(room.Hostiles))
	for i := range room.Hostiles {
		out = append(out, &room.Hostiles[i])
	}
	return out
}

// mostDamaged returns the squad member within heal range that is missing
// the most hits.
func mostDamaged(healer *model.Creep, live []*model.Creep) *model.Creep {
	var best *model.Creep
	missing := 0
	for _, m := range live {
		lost := m.HitsMax - m.Hits
		if lost > missing && healer.Pos.InRangeTo(m.Pos, 3) {
			best, missing = m, lost
		}
	}
	return best
}

// leader is the live member with the lowest caravan position other than c.
func leader(c *model.Creep, live []*model.Creep, store *memory.Store) *model.Creep {
	var best *model.Creep
	bestPos := 0
	for _, m := range live {
		if m == c {
			continue
		}
		cm, ok := store.Creep(m.Name)
		if !ok {
			continue
		}
		if best == nil || cm.Options.CaravanPos < bestPos {
			best, bestPos = m, cm.Options.CaravanPos
		}
	}
	return best
}
