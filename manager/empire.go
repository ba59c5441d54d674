package manager

import (
	"github.com/nstehr/tundra/tundra-core/empire"
	"github.com/nstehr/tundra/tundra-core/military"
)

// empire processes flags, raises defenders for threatened rooms and drives
// every squad.
func (t *tick) empire() error {
	frep := empire.Run(t.m.Store, t.env.Index, t.out)
	t.note(frep.Errors)
	t.m.Metrics.RecordFlagsRemoved(frep.Removed)

	if _, err := military.Defend(t.m.Store, t.rep.Tick); err != nil {
		return err
	}

	mrep := military.Run(t.env, t.m.Registry, t.out)
	t.note(mrep.Errors)
	t.m.Metrics.SetSquads(mrep.Squads - mrep.Dead)
	return nil
}
