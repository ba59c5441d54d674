package creeps

import (
	"fmt"

	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/jobs"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// actionRange is how close a unit must stand to perform each action.
var actionRange = map[string]int{
	jobs.ActionHarvest:  1,
	jobs.ActionWithdraw: 1,
	jobs.ActionPickup:   1,
	jobs.ActionTransfer: 1,
	jobs.ActionClaim:    1,
	jobs.ActionReserve:  1,
	jobs.ActionSign:     1,
	jobs.ActionAttack:   1,
	jobs.ActionBuild:    3,
	jobs.ActionRepair:   3,
	jobs.ActionUpgrade:  3,
}

// intentType maps a job action to the host intent that performs it.
var intentType = map[string]string{
	jobs.ActionHarvest:  ipc.TypeHarvest,
	jobs.ActionWithdraw: ipc.TypeWithdraw,
	jobs.ActionPickup:   ipc.TypePickup,
	jobs.ActionTransfer: ipc.TypeTransfer,
	jobs.ActionClaim:    ipc.TypeClaim,
	jobs.ActionReserve:  ipc.TypeReserve,
	jobs.ActionAttack:   ipc.TypeAttackController,
	jobs.ActionBuild:    ipc.TypeBuild,
	jobs.ActionRepair:   ipc.TypeRepair,
	jobs.ActionUpgrade:  ipc.TypeUpgrade,
}

// oneShot actions finish the job as soon as the intent is issued.
var oneShot = map[string]bool{
	jobs.ActionWithdraw: true,
	jobs.ActionPickup:   true,
	jobs.ActionTransfer: true,
	jobs.ActionSign:     true,
}

// Act moves u toward its job target or, once in range, works it.
func (d *Dispatcher) Act(u roles.Unit) error {
	job := u.Mem.Job
	if job.JobType == jobs.MovePartJob {
		return d.moveToRoom(u, job.TargetID)
	}

	if id := u.Mem.Supplementary.MoveTargetID; id != "" {
		if o, ok := d.env.Index.Object(id); ok && u.Creep.Pos != o.Position() {
			return d.moveTo(u, o.Position(), 0)
		}
	}

	target, err := d.targetPos(u)
	if err != nil {
		return err
	}
	if target.Room != u.Room() {
		return d.moveToRoom(u, target.Room)
	}
	if !u.Creep.Pos.InRangeTo(target, actionRange[job.ActionType]) {
		u.Mem.Working = false
		return d.moveTo(u, target, actionRange[job.ActionType])
	}
	u.Mem.Working = true
	u.Mem.StuckCount = 0
	return d.work(u)
}

// targetPos resolves where the job is worked. Room-name targets resolve to
// the room's controller once it is visible.
func (d *Dispatcher) targetPos(u roles.Unit) (model.Pos, error) {
	job := u.Mem.Job
	if job.TargetType == jobs.TargetRoomName {
		r, ok := d.env.Index.Room(job.TargetID)
		if !ok || r.Controller == nil {
			return model.Pos{X: 25, Y: 25, Room: job.TargetID}, nil
		}
		return r.Controller.Pos, nil
	}
	o, ok := d.env.Index.Object(job.TargetID)
	if !ok {
		desc := fmt.Sprintf("creep: %s, job: %s %s -> %s", u.Name(), job.JobType, job.ActionType, job.TargetID)
		u.Mem.ClearJob()
		return model.Pos{}, usererr.Of(usererr.ErrInvalidJob, usererr.Warn, "Invalid job", desc)
	}
	return o.Position(), nil
}

func (d *Dispatcher) work(u roles.Unit) error {
	job := u.Mem.Job
	target := job.TargetID
	if job.TargetType == jobs.TargetRoomName {
		r, ok := d.env.Index.Room(job.TargetID)
		if !ok || r.Controller == nil {
			return nil
		}
		target = r.Controller.ID
	}

	var err error
	if job.ActionType == jobs.ActionSign {
		err = d.out.Send(ipc.TypeSign, ipc.SignCommand{
			Creep: u.Name(), TargetID: target, Text: d.env.Tuning.Options.SignText,
		})
	} else {
		t, ok := intentType[job.ActionType]
		if !ok {
			u.Mem.ClearJob()
			return usererr.Of(usererr.ErrInvalidJob, usererr.Warn, "Unknown job action",
				fmt.Sprintf("creep: %s, action: %s", u.Name(), job.ActionType))
		}
		err = d.out.Send(t, ipc.TargetCommand{Creep: u.Name(), TargetID: target})
	}
	if err != nil {
		return fmt.Errorf("send %s intent for %s: %w", job.ActionType, u.Name(), err)
	}
	if oneShot[job.ActionType] {
		u.Mem.ClearJob()
	}
	return nil
}

func (d *Dispatcher) moveToRoom(u roles.Unit, room string) error {
	if u.Room() == room && !onEdge(u.Creep.Pos) {
		return nil
	}
	return d.moveTo(u, model.Pos{X: 25, Y: 25, Room: room}, 20)
}

func (d *Dispatcher) moveTo(u roles.Unit, dest model.Pos, rng int) error {
	stuck := trackStuck(u.Mem, u.Creep.Pos)
	return Travel(d.out, u.Creep, dest, rng, stuck >= d.env.Tuning.Thresholds.StuckCount)
}

// trackStuck counts consecutive moving ticks spent on the same tile.
func trackStuck(cm *memory.CreepMemory, p model.Pos) int {
	here := p.String()
	if cm.LastPos == here {
		cm.StuckCount++
	} else {
		cm.StuckCount = 0
		cm.LastPos = here
	}
	return cm.StuckCount
}

// Travel issues a move intent toward dest.
func Travel(out ipc.Sender, c *model.Creep, dest model.Pos, rng int, repath bool) error {
	err := out.Send(ipc.TypeMove, ipc.MoveCommand{
		Creep: c.Name, X: dest.X, Y: dest.Y, Room: dest.Room, Range: rng, Repath: repath,
	})
	if err != nil {
		return fmt.Errorf("send move for %s: %w", c.Name, err)
	}
	return nil
}
