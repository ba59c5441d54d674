package empire

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/military"
	"github.com/nstehr/tundra/tundra-core/model"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

// processor handles one kind of flag. A zero secondary matches any
// secondary color.
type processor struct {
	primary   int
	secondary int
	flagType  string
	process   func(p *pass, f *model.Flag, fm *memory.FlagMemory) error
}

var processors = []processor{
	{model.ColorGreen, model.ColorWhite, memory.FlagTypeOverride, processOverride},
	{model.ColorGreen, model.ColorYellow, memory.FlagTypeStimulate, processStimulate},
	{model.ColorRed, 0, memory.FlagTypeAttack, processAttack},
	{model.ColorWhite, 0, memory.FlagTypeClaim, processClaim},
	{model.ColorYellow, 0, memory.FlagTypeRemote, processRemote},
}

// attackSquads maps an attack flag's secondary color to the squad it raises.
var attackSquads = map[int]string{
	model.ColorRed:   military.Standard,
	model.ColorBlue:  military.SoloZealot,
	model.ColorBrown: military.SoloStalker,
	model.ColorWhite: military.TowerDrainer,
}

func processorFor(f *model.Flag) (processor, bool) {
	for _, p := range processors {
		if p.primary == f.Color && (p.secondary == 0 || p.secondary == f.SecondaryColor) {
			return p, true
		}
	}
	return processor{}, false
}

// FlagType classifies a flag by its colors.
func FlagType(f *model.Flag) string {
	if p, ok := processorFor(f); ok {
		return p.flagType
	}
	return memory.FlagTypeUnknown
}

// recordFlags creates memory for flags seen for the first time.
func (p *pass) recordFlags() {
	for _, f := range p.flags {
		if _, ok := p.store.Flags[f.Name]; ok {
			continue
		}
		p.store.Flags[f.Name] = &memory.FlagMemory{
			FlagName:   f.Name,
			FlagType:   FlagType(f),
			TimePlaced: p.tick,
		}
	}
}

// processNew runs the matching processor for every unprocessed flag.
// Dependent room overrides go first so attack and claim flags placed in the
// same tick see them.
func (p *pass) processNew() {
	pending := make([]*model.Flag, 0)
	for _, f := range p.flags {
		if fm := p.store.Flags[f.Name]; fm != nil && !fm.Processed {
			pending = append(pending, f)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return FlagType(pending[i]) == memory.FlagTypeOverride && FlagType(pending[j]) != memory.FlagTypeOverride
	})

	for _, f := range pending {
		fm := p.store.Flags[f.Name]
		proc, ok := processorFor(f)
		if !ok {
			p.alert("Attempted to process flag of an unhandled type.")
			fm.Processed, fm.Complete = true, true
		} else if err := proc.process(p, f, fm); err != nil {
			p.fail(err, f)
			fm.Processed, fm.Complete = true, true
		} else {
			fm.Processed = true
			p.rep.Processed++
			slog.Info("flag processed", "flag", f.Name, "type", fm.FlagType, "room", f.Pos.Room)
		}

		if _, ok := p.store.Room(f.Pos.Room); !ok {
			p.alert(fmt.Sprintf("Initializing Room Memory for Dependent Room [%s].", f.Pos.Room))
			p.store.InitRoom(f.Pos.Room, false)
		}
	}
}

func processOverride(p *pass, f *model.Flag, fm *memory.FlagMemory) error {
	return nil
}

func processStimulate(p *pass, f *model.Flag, fm *memory.FlagMemory) error {
	fm.Complete = true
	return nil
}

func processAttack(p *pass, f *model.Flag, fm *memory.FlagMemory) error {
	manager, ok := attackSquads[f.SecondaryColor]
	if !ok {
		return usererr.Of(usererr.ErrNullData, usererr.Error, "Invalid attack flag",
			fmt.Sprintf("flag: %s, secondary color %d is not handled", f.Name, f.SecondaryColor))
	}
	target := f.Pos.Room
	dep, err := p.dependentRoom(target)
	if err != nil {
		return err
	}
	opUUID := military.NewOperation(p.store, military.OpAttack)
	if _, err := military.CreateSquad(p.store, manager, target, opUUID, dep, p.tick); err != nil {
		delete(p.store.Empire.MilitaryOperations, opUUID)
		return err
	}
	fm.OperationUUID = opUUID
	rm := p.store.Rooms[dep]
	rm.AttackRooms = addDependent(rm.AttackRooms, target, f.Name)
	return nil
}

func processClaim(p *pass, f *model.Flag, fm *memory.FlagMemory) error {
	dep, err := p.dependentRoom(f.Pos.Room)
	if err != nil {
		return err
	}
	rm := p.store.Rooms[dep]
	rm.ClaimRooms = addDependent(rm.ClaimRooms, f.Pos.Room, f.Name)
	return nil
}

func processRemote(p *pass, f *model.Flag, fm *memory.FlagMemory) error {
	dep, err := p.dependentRoom(f.Pos.Room)
	if err != nil {
		return err
	}
	rm := p.store.Rooms[dep]
	rm.RemoteRooms = addDependent(rm.RemoteRooms, f.Pos.Room, f.Name)
	return nil
}

func addDependent(list []*memory.DependentRoom, room, flag string) []*memory.DependentRoom {
	for _, d := range list {
		if d != nil && d.RoomName == room {
			d.Flags = append(d.Flags, flag)
			return list
		}
	}
	return append(list, &memory.DependentRoom{RoomName: room, Flags: []string{flag}})
}

// dependentRoom picks the owned room that supports target. The most recently
// placed dependent room override wins and is consumed; otherwise the closest
// owned room is used.
func (p *pass) dependentRoom(target string) (string, error) {
	var override *memory.FlagMemory
	var overrideFlag *model.Flag
	for _, f := range p.flags {
		fm := p.store.Flags[f.Name]
		if fm == nil || fm.FlagType != memory.FlagTypeOverride || fm.Complete {
			continue
		}
		if override == nil || fm.TimePlaced > override.TimePlaced ||
			(fm.TimePlaced == override.TimePlaced && f.Name > overrideFlag.Name) {
			override, overrideFlag = fm, f
		}
	}
	if override != nil {
		override.Complete = true
		room := overrideFlag.Pos.Room
		if rm, ok := p.store.Room(room); !ok || !rm.Owned {
			return "", usererr.Of(usererr.ErrNullData, usererr.Error, "Manual Dependent Room Finding Error",
				fmt.Sprintf("flag [%s]: room %s is not one of ours", overrideFlag.Name, room))
		}
		return room, nil
	}

	best, bestDist := "", 0
	for name, rm := range p.store.Rooms {
		if rm == nil || !rm.Owned {
			continue
		}
		d := model.RoomDistance(name, target)
		if best == "" || d < bestDist || (d == bestDist && name < best) {
			best, bestDist = name, d
		}
	}
	if best == "" {
		return "", usererr.Of(usererr.ErrNullData, usererr.Warn, "Auto-Dependent Room Finder Error",
			fmt.Sprintf("no owned room to support %s", target))
	}
	return best, nil
}

// completeFinished marks claim flags complete once their room has a spawn
// of ours, and attack flags once their operation has ended.
func (p *pass) completeFinished() {
	for _, f := range p.flags {
		fm := p.store.Flags[f.Name]
		if fm == nil || fm.Complete || !fm.Processed {
			continue
		}
		switch fm.FlagType {
		case memory.FlagTypeClaim:
			if p.claimBuilt(f.Pos.Room) {
				p.alert(fmt.Sprintf("Completing flag for claim room [%s].", f.Pos.Room))
				fm.Complete = true
			}
		case memory.FlagTypeAttack:
			if _, ok := p.store.Empire.MilitaryOperations[fm.OperationUUID]; !ok {
				fm.Complete = true
			}
		}
	}
}

func (p *pass) claimBuilt(room string) bool {
	r, ok := p.idx.Room(room)
	if !ok {
		return false
	}
	for i := range r.Structures {
		if s := &r.Structures[i]; s.Type == model.StructureSpawn && s.My {
			return true
		}
	}
	return false
}

// cleanDeadFlags forgets flags that no longer exist from every dependent
// room, then drops dependent rooms left with no flags.
func (p *pass) cleanDeadFlags() {
	for _, owner := range sortedOwned(p.store) {
		rm := p.store.Rooms[owner]
		for _, list := range []*[]*memory.DependentRoom{&rm.RemoteRooms, &rm.ClaimRooms, &rm.AttackRooms} {
			for i, d := range *list {
				if d == nil {
					continue
				}
				live := d.Flags[:0]
				for _, name := range d.Flags {
					if _, ok := p.idx.Flag(name); ok {
						live = append(live, name)
						continue
					}
					p.alert(fmt.Sprintf("Removing [%s] from Dependent Room [%s]", name, d.RoomName))
				}
				d.Flags = live
				if len(d.Flags) == 0 {
					p.alert(fmt.Sprintf("Removing Dependent Room [%s] from [%s]", d.RoomName, owner))
					(*list)[i] = nil
				}
			}
		}
		rm.CleanDependentRooms()
	}
}

// removeComplete asks the host to remove every complete flag.
func (p *pass) removeComplete() {
	for _, f := range p.flags {
		fm := p.store.Flags[f.Name]
		if fm == nil || !fm.Complete {
			continue
		}
		if err := p.out.Send(ipc.TypeRemoveFlag, ipc.RemoveFlagCommand{Flag: f.Name}); err != nil {
			p.fail(fmt.Errorf("remove flag %s: %w", f.Name, err), f)
			continue
		}
		p.alert(fmt.Sprintf("Removing flag [%s]", f.Name))
		p.rep.Removed++
	}
}

func sortedOwned(store *memory.Store) []string {
	var out []string
	for name, rm := range store.Rooms {
		if rm != nil && rm.Owned {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
