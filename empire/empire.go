// Package empire turns player-placed flags into standing orders: attack
// operations, rooms to claim and remote mining rooms. It also keeps the
// empire alert log.
package empire

import (
	"sort"

	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// Report summarizes one empire pass.
type Report struct {
	Processed int
	Removed   int
	Alerts    int
	Errors    []error
}

type pass struct {
	store *memory.Store
	idx   *model.Index
	out   ipc.Sender
	tick  int
	flags []*model.Flag
	rep   *Report
}

// Run records new flags, processes the unprocessed ones, completes the
// finished ones, forgets dependent rooms whose flags are gone and asks the
// host to remove complete flags. Expired alerts are pruned last.
func Run(store *memory.Store, idx *model.Index, out ipc.Sender) *Report {
	store.Init()
	p := &pass{
		store: store,
		idx:   idx,
		out:   out,
		tick:  idx.Tick(),
		rep:   &Report{},
	}
	for i := range idx.State.Flags {
		p.flags = append(p.flags, &idx.State.Flags[i])
	}
	sort.Slice(p.flags, func(i, j int) bool { return p.flags[i].Name < p.flags[j].Name })

	p.recordFlags()
	p.processNew()
	p.completeFinished()
	p.cleanDeadFlags()
	p.removeComplete()
	PruneAlerts(store, p.tick)
	return p.rep
}

func (p *pass) alert(msg string) {
	Alert(p.store, msg, defaultAlertTTL, p.tick)
	p.rep.Alerts++
}

func (p *pass) fail(err error, f *model.Flag) {
	p.rep.Errors = append(p.rep.Errors, err)
	usererr.Report(err, "flag", f.Name, "room", f.Pos.Room)
}
