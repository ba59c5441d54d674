package jobs

import (
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

// defaultSourceCapacity applies when the host does not report a source's
// capacity (unowned, unreserved rooms regenerate 1500; owned ones 3000).
const defaultSourceCapacity = 3000

func (b *Board) scan(r *model.Room, rm *memory.RoomMemory, kind Kind) []*memory.Job {
	switch kind {
	case Source:
		return b.sourceJobs(r)
	case Mineral:
		return b.mineralJobs(r)
	case Container:
		return b.containerJobs(r)
	case Link:
		return b.linkJobs(r, rm)
	case Backup:
		return b.backupJobs(r)
	case Pickup:
		return b.pickupJobs(r)
	case Loot:
		return b.lootJobs(r)
	case Fill:
		return b.fillJobs(r)
	case Store:
		return b.storeJobs(r)
	case Claim, Reserve, Attack:
		return b.dependentRoomJobs(r, rm, kind)
	case Sign:
		return b.signJobs(r, rm)
	case Repair:
		return b.repairJobs(r)
	case Build:
		return b.buildJobs(r)
	case Upgrade:
		return b.upgradeJobs(r)
	}
	return nil
}

func energyJob(target, targetType, action string, amount int) *memory.Job {
	return &memory.Job{
		JobType:    GetEnergyJob,
		TargetID:   target,
		TargetType: targetType,
		ActionType: action,
		Resources:  amount,
		IsTaken:    amount <= 0,
	}
}

// claimedFree sums the free capacity of the units already drawing from target.
func claimedFree(held map[string][]*model.Creep, target, action string) int {
	n := 0
	for _, c := range held[holdKey(target, action)] {
		n += c.Store.Free()
	}
	return n
}

func (b *Board) sourceJobs(r *model.Room) []*memory.Job {
	held := b.holders()
	out := []*memory.Job{}
	for _, src := range b.cache.Sources(r.Name) {
		work := 0
		for _, c := range held[holdKey(src.ID, ActionHarvest)] {
			work += c.Parts(model.Work)
		}
		regen := src.EnergyCapacity
		if regen == 0 {
			regen = defaultSourceCapacity
		}
		out = append(out, energyJob(src.ID, TargetSource, ActionHarvest, regen-work*2*300))
	}
	return out
}

func (b *Board) mineralJobs(r *model.Room) []*memory.Job {
	extractors := b.cache.Structures(r.Name, model.StructureExtractor)
	out := []*memory.Job{}
	for _, m := range b.cache.Minerals(r.Name) {
		if m.Amount <= 0 {
			continue
		}
		for _, e := range extractors {
			if e.Pos == m.Pos {
				out = append(out, energyJob(m.ID, TargetMineral, ActionHarvest, m.Amount))
				break
			}
		}
	}
	return out
}

func (b *Board) containerJobs(r *model.Room) []*memory.Job {
	held := b.holders()
	out := []*memory.Job{}
	for _, s := range b.cache.Structures(r.Name, model.StructureContainer) {
		if s.Store.Energy <= b.tuning.Thresholds.ContainerMinimumEnergy {
			continue
		}
		adjusted := s.Store.Energy - claimedFree(held, s.ID, ActionWithdraw)
		out = append(out, energyJob(s.ID, model.StructureContainer, ActionWithdraw, adjusted))
	}
	return out
}

// upgraderLink is the link within three tiles of the controller, once the
// room has at least two links.
func (b *Board) upgraderLink(r *model.Room) *model.Structure {
	if r.Controller == nil {
		return nil
	}
	links := b.cache.Structures(r.Name, model.StructureLink)
	if len(links) < 2 {
		return nil
	}
	closest, ok := model.Closest(r.Controller.Pos, links)
	if !ok || !r.Controller.Pos.InRangeTo(closest.Pos, 3) {
		return nil
	}
	return closest
}

func (b *Board) linkJobs(r *model.Room, rm *memory.RoomMemory) []*memory.Job {
	out := []*memory.Job{}
	link := b.upgraderLink(r)
	if link == nil {
		rm.UpgradeLink = ""
		return out
	}
	rm.UpgradeLink = link.ID
	if link.Store.Energy > b.tuning.Thresholds.LinkMinimumEnergy {
		j := energyJob(link.ID, model.StructureLink, ActionWithdraw, link.Store.Energy)
		j.IsTaken = false
		out = append(out, j)
	}
	return out
}

func (b *Board) backupJobs(r *model.Room) []*memory.Job {
	out := []*memory.Job{}
	for _, s := range b.cache.Structures(r.Name, model.StructureStorage, model.StructureTerminal) {
		if !s.My || s.Store.Energy <= 0 {
			continue
		}
		out = append(out, energyJob(s.ID, s.Type, ActionWithdraw, s.Store.Energy))
	}
	return out
}

func (b *Board) pickupJobs(r *model.Room) []*memory.Job {
	held := b.holders()
	out := []*memory.Job{}
	for _, d := range b.cache.Dropped(r.Name) {
		if d.ResourceType != "" && d.ResourceType != "energy" {
			continue
		}
		adjusted := d.Amount - claimedFree(held, d.ID, ActionPickup)
		out = append(out, energyJob(d.ID, TargetDropped, ActionPickup, adjusted))
	}
	return out
}

func (b *Board) lootJobs(r *model.Room) []*memory.Job {
	held := b.holders()
	minEnergy := b.tuning.Thresholds.LootMinimumEnergy
	out := []*memory.Job{}
	for _, t := range b.cache.Tombstones(r.Name) {
		if t.Store.Energy < minEnergy {
			continue
		}
		adjusted := t.Store.Energy - claimedFree(held, t.ID, ActionWithdraw)
		out = append(out, energyJob(t.ID, TargetTombstone, ActionWithdraw, adjusted))
	}
	for _, ru := range b.cache.Ruins(r.Name) {
		if ru.Store.Energy < minEnergy {
			continue
		}
		adjusted := ru.Store.Energy - claimedFree(held, ru.ID, ActionWithdraw)
		out = append(out, energyJob(ru.ID, TargetRuin, ActionWithdraw, adjusted))
	}
	return out
}

func carryJob(s *model.Structure) *memory.Job {
	return &memory.Job{
		JobType:    CarryPartJob,
		TargetID:   s.ID,
		TargetType: s.Type,
		ActionType: ActionTransfer,
		Resources:  s.Store.Free(),
	}
}

func (b *Board) fillJobs(r *model.Room) []*memory.Job {
	out := []*memory.Job{}
	upgradeLink := ""
	if l := b.upgraderLink(r); l != nil {
		upgradeLink = l.ID
	}
	for _, s := range b.cache.Structures(r.Name,
		model.StructureSpawn, model.StructureExtension, model.StructureTower, model.StructureLink) {
		if !s.My || s.Store.Free() <= 0 {
			continue
		}
		switch s.Type {
		case model.StructureTower:
			if float64(s.Store.Energy) >= b.tuning.Thresholds.Tower*float64(s.Store.Capacity) {
				continue
			}
		case model.StructureLink:
			if s.ID == upgradeLink {
				continue
			}
		}
		out = append(out, carryJob(s))
	}
	return out
}

func (b *Board) storeJobs(r *model.Room) []*memory.Job {
	out := []*memory.Job{}
	for _, s := range b.cache.Structures(r.Name, model.StructureStorage, model.StructureTerminal) {
		if s.My && s.Store.Free() > 0 {
			out = append(out, carryJob(s))
		}
	}
	if r.Controller == nil {
		return out
	}
	for _, s := range b.cache.Structures(r.Name, model.StructureContainer) {
		if s.Store.Free() > 0 && r.Controller.Pos.InRangeTo(s.Pos, 3) {
			out = append(out, carryJob(s))
		}
	}
	return out
}

func claimJob(target, targetType, action string) *memory.Job {
	return &memory.Job{
		JobType:    ClaimPartJob,
		TargetID:   target,
		TargetType: targetType,
		ActionType: action,
	}
}

// dependentRoomJobs lists claim, reserve and attack jobs. They are owned by
// the home room and target the dependent room by name.
func (b *Board) dependentRoomJobs(r *model.Room, rm *memory.RoomMemory, kind Kind) []*memory.Job {
	out := []*memory.Job{}
	if !r.IsOwned() {
		return out
	}
	switch kind {
	case Claim:
		for _, d := range rm.ClaimRooms {
			if d == nil {
				continue
			}
			if cr, ok := b.idx.Room(d.RoomName); ok && cr.IsOwned() {
				continue
			}
			out = append(out, claimJob(d.RoomName, TargetRoomName, ActionClaim))
		}
	case Reserve:
		for _, d := range rm.RemoteRooms {
			if d == nil {
				continue
			}
			if rr, ok := b.idx.Room(d.RoomName); ok && rr.Controller != nil && rr.Controller.Reservation != nil {
				res := rr.Controller.Reservation
				d.ReserveTTL = res.TicksToEnd
				if res.Username == b.idx.State.Username && res.TicksToEnd > b.tuning.Thresholds.ReserverMinTTL {
					continue
				}
			}
			out = append(out, claimJob(d.RoomName, TargetRoomName, ActionReserve))
		}
	case Attack:
		for _, d := range rm.AttackRooms {
			if d != nil {
				out = append(out, claimJob(d.RoomName, TargetRoomName, ActionAttack))
			}
		}
	}
	return out
}

func (b *Board) signJobs(r *model.Room, rm *memory.RoomMemory) []*memory.Job {
	out := []*memory.Job{}
	if !r.IsOwned() {
		return out
	}
	rooms := []*model.Room{r}
	for _, d := range rm.RemoteRooms {
		if d == nil {
			continue
		}
		if rr, ok := b.idx.Room(d.RoomName); ok {
			rooms = append(rooms, rr)
		}
	}
	for _, rr := range rooms {
		c := rr.Controller
		if c == nil {
			continue
		}
		if c.Sign != nil && c.Sign.Text == b.tuning.Options.SignText {
			continue
		}
		out = append(out, claimJob(c.ID, model.StructureController, ActionSign))
	}
	return out
}

func workJob(target, targetType, action string) *memory.Job {
	return &memory.Job{
		JobType:    WorkPartJob,
		TargetID:   target,
		TargetType: targetType,
		ActionType: action,
	}
}

func (b *Board) needsRepair(s *model.Structure) bool {
	switch s.Type {
	case model.StructureRoad, model.StructureContainer, model.StructureWall:
	case model.StructureController:
		return false
	default:
		if !s.My {
			return false
		}
	}
	return hitsRatio(s, b.tuning.Thresholds.RampartHits) < b.tuning.Thresholds.Repair
}

func (b *Board) repairJobs(r *model.Room) []*memory.Job {
	out := []*memory.Job{}
	if !r.IsOwned() {
		return out
	}
	for _, s := range b.cache.Structures(r.Name) {
		if s.HitsMax > 0 && b.needsRepair(s) {
			j := workJob(s.ID, s.Type, ActionRepair)
			j.Resources = s.HitsMax - s.Hits
			out = append(out, j)
		}
	}
	return out
}

func (b *Board) buildJobs(r *model.Room) []*memory.Job {
	out := []*memory.Job{}
	for _, cs := range b.cache.ConstructionSites(r.Name) {
		j := workJob(cs.ID, cs.StructureType, ActionBuild)
		j.Resources = cs.ProgressTotal - cs.Progress
		out = append(out, j)
	}
	return out
}

func (b *Board) upgradeJobs(r *model.Room) []*memory.Job {
	out := []*memory.Job{}
	if r.IsOwned() {
		out = append(out, workJob(r.Controller.ID, model.StructureController, ActionUpgrade))
	}
	return out
}
