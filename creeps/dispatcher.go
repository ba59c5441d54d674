// Package creeps drives every civilian unit once per tick: it keeps each
// unit's job valid, asks the role policy for a new one when idle, and turns
// the job into host intents.
package creeps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/jobs"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Report summarizes one dispatch pass.
type Report struct {
	Units    int
	Idle     int
	Assigned map[roles.Role]int
	Errors   []error
}

func (r *Report) AssignedTotal() int {
	n := 0
	for _, v := range r.Assigned {
		n += v
	}
	return n
}

type Dispatcher struct {
	env *roles.Env
	reg *roles.Registry
	out ipc.Sender
}

func NewDispatcher(env *roles.Env, reg *roles.Registry, out ipc.Sender) *Dispatcher {
	return &Dispatcher{env: env, reg: reg, out: out}
}

// RunAll runs every live unit in host order. A failing unit is reported and
// skipped; it never stops the pass.
func (d *Dispatcher) RunAll(ctx context.Context) *Report {
	rep := &Report{Assigned: make(map[roles.Role]int)}
	for _, c := range d.env.Index.Creeps() {
		if ctx.Err() != nil {
			slog.Warn("dispatch cut short", "error", ctx.Err())
			break
		}
		if c.Spawning {
			continue
		}
		rep.Units++
		if err := d.runOne(c, rep); err != nil {
			rep.Errors = append(rep.Errors, err)
			usererr.Report(err, "creep", c.Name)
		}
	}
	return rep
}

func (d *Dispatcher) runOne(c *model.Creep, rep *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = usererr.FromPanic("creep "+c.Name, r)
		}
	}()

	cm, ok := d.env.Store.Creep(c.Name)
	if !ok || cm.Role == "" {
		return usererr.Of(usererr.ErrMissingRole, usererr.Error,
			"Creep has no role", fmt.Sprintf("creep: %s", c.Name))
	}
	role, _ := roles.Parse(cm.Role)
	m, ok := d.reg.Get(role)
	if !ok {
		return usererr.Of(usererr.ErrUnregisteredRole, usererr.Error,
			"No manager for role", fmt.Sprintf("creep: %s, role: %s", c.Name, cm.Role))
	}
	d.recordMovement(c)
	if role.IsMilitary() {
		return nil
	}
	u := roles.Unit{Creep: c, Mem: cm}

	if role.Flees() && d.threatened(cm.TargetRoom) {
		return d.flee(u)
	}

	if cm.Job != nil {
		if err := d.validate(u); err != nil {
			rep.Errors = append(rep.Errors, err)
			usererr.Report(err, "creep", c.Name)
		}
	}
	if cm.Job == nil {
		job, err := m.GetNewJob(d.env, u, cm.HomeRoom)
		if err != nil {
			return err
		}
		if job == nil {
			rep.Idle++
			return nil
		}
		cm.Job = job.Clone()
		cm.Working = false
		if err := m.HandleNewJob(d.env, u, cm.HomeRoom); err != nil {
			return err
		}
		if cm.Job == nil {
			return nil
		}
		rep.Assigned[role]++
		slog.Debug("job assigned", "creep", c.Name, "role", role,
			"job", cm.Job.JobType, "action", cm.Job.ActionType, "target", cm.Job.TargetID)
	}
	return d.Act(u)
}

// threatened reports whether room is known to be under attack.
func (d *Dispatcher) threatened(room string) bool {
	rm, ok := d.env.Store.Room(room)
	return ok && rm.Defcon > 1
}

// flee sends a remote unit home and parks it there until the threat passes.
func (d *Dispatcher) flee(u roles.Unit) error {
	if u.Room() == u.Mem.HomeRoom {
		return nil
	}
	slog.Debug("fleeing target room", "creep", u.Name(), "target", u.Mem.TargetRoom)
	return d.moveToRoom(u, u.Mem.HomeRoom)
}

// validate clears a job that can no longer be worked so the unit picks a new
// one this tick. A job whose target has vanished is returned as an
// ErrInvalidJob warning; the other reasons are routine.
func (d *Dispatcher) validate(u roles.Unit) error {
	job := u.Mem.Job
	st := u.Creep.Store
	reason := ""
	switch job.JobType {
	case jobs.MovePartJob:
		if u.Room() == job.TargetID && !onEdge(u.Creep.Pos) {
			reason = "arrived"
		}
	case jobs.GetEnergyJob:
		if st.Full() {
			reason = "full"
		}
	case jobs.CarryPartJob:
		if st.Empty() {
			reason = "empty"
		}
	case jobs.WorkPartJob:
		if st.Empty() {
			reason = "empty"
		}
	case jobs.ClaimPartJob:
		if job.ActionType == jobs.ActionClaim {
			if r, ok := d.env.Index.Room(job.TargetID); ok && r.IsOwned() {
				reason = "claimed"
			}
		}
	}
	var err error
	if reason == "" && job.TargetType != jobs.TargetRoomName {
		o, ok := d.env.Index.Object(job.TargetID)
		switch {
		case !ok:
			err = usererr.Of(usererr.ErrInvalidJob, usererr.Warn, "Invalid job",
				fmt.Sprintf("creep: %s, job: %s %s -> %s", u.Name(), job.JobType, job.ActionType, job.TargetID))
			reason = "target gone"
		case job.ActionType == jobs.ActionRepair:
			if s, ok := o.(*model.Structure); ok && s.Hits >= s.HitsMax {
				reason = "repaired"
			}
		}
	}
	if reason != "" {
		slog.Debug("job cleared", "creep", u.Name(), "reason", reason, "target", job.TargetID)
		u.Mem.ClearJob()
	}
	return err
}

func onEdge(p model.Pos) bool {
	return p.X <= 0 || p.Y <= 0 || p.X >= model.RoomSize-1 || p.Y >= model.RoomSize-1
}

// recordMovement stamps what a unit can currently see of its room.
func (d *Dispatcher) recordMovement(c *model.Creep) {
	r, ok := d.env.Index.Room(c.Pos.Room)
	if !ok {
		return
	}
	md := d.env.Store.Empire.MovementData
	rec, ok := md[r.Name]
	if !ok {
		rec = &memory.RoomMovement{}
		md[r.Name] = rec
	}
	if rec.LastSeen == d.env.Index.Tick() {
		return
	}
	rec.LastSeen = d.env.Index.Tick()
	rec.Hostile = len(r.Hostiles) > 0
	rec.Owned = r.Controller != nil && r.Controller.Owner != "" && !r.Controller.My
	rec.SourceCnt = len(r.Sources)
}
