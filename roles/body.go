package roles

import (
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

// Tiers are the room energy capacities body templates are designed for.
var tiers = []int{300, 550, 800, 1300, 1800, 2300, 5300, 12300}

// Tier returns the highest tier (1-8) a room with energyCapacity can afford,
// or 0 below the first tier.
func Tier(energyCapacity int) int {
	t := 0
	for i, c := range tiers {
		if energyCapacity >= c {
			t = i + 1
		}
	}
	return t
}

// parts is a grouped body: every part of one type together, in field order.
type parts struct {
	tough, work, carry, claim, attack, ranged, heal, move int
}

func (p parts) list() []string {
	var out []string
	add := func(part string, n int) {
		for range n {
			out = append(out, part)
		}
	}
	add(model.Tough, p.tough)
	add(model.Work, p.work)
	add(model.Carry, p.carry)
	add(model.Claim, p.claim)
	add(model.Attack, p.attack)
	add(model.RangedAttack, p.ranged)
	add(model.Heal, p.heal)
	add(model.Move, p.move)
	return out
}

// template maps a minimum tier to a body.
type template struct {
	tier int
	body parts
}

var bodies = map[Role][]template{
	Miner: {
		{1, parts{work: 2, move: 1}},
		{2, parts{work: 5, move: 1}},
		{3, parts{work: 5, move: 2}},
	},
	Harvester: {
		{1, parts{work: 1, carry: 2, move: 2}},
		{2, parts{work: 2, carry: 3, move: 3}},
		{3, parts{work: 2, carry: 6, move: 4}},
		{4, parts{work: 2, carry: 10, move: 6}},
	},
	Worker: {
		{1, parts{work: 1, carry: 2, move: 2}},
		{2, parts{work: 2, carry: 4, move: 3}},
		{3, parts{work: 4, carry: 4, move: 4}},
		{4, parts{work: 7, carry: 6, move: 6}},
		{5, parts{work: 8, carry: 6, move: 10}},
	},
	PowerUpgrader: {
		{1, parts{work: 2, carry: 1, move: 1}},
		{4, parts{work: 10, carry: 2, move: 3}},
		{6, parts{work: 15, carry: 3, move: 4}},
	},
	Lorry: {
		{1, parts{carry: 3, move: 3}},
		{2, parts{carry: 5, move: 5}},
		{3, parts{carry: 8, move: 8}},
		{5, parts{carry: 16, move: 16}},
	},
	StorageManager: {
		{1, parts{carry: 2, move: 1}},
		{4, parts{carry: 8, move: 1}},
	},
	MineralMiner: {
		{1, parts{work: 4, move: 2}},
		{6, parts{work: 10, move: 5}},
	},
	Scout: {
		{1, parts{move: 1}},
	},
	RemoteMiner: {
		{1, parts{work: 2, move: 1}},
		{2, parts{work: 4, move: 2}},
		{3, parts{work: 6, move: 3}},
	},
	RemoteHarvester: {
		{1, parts{work: 1, carry: 2, move: 2}},
		{2, parts{work: 1, carry: 4, move: 4}},
		{3, parts{work: 2, carry: 6, move: 6}},
		{4, parts{work: 2, carry: 10, move: 10}},
	},
	RemoteReserver: {
		{1, parts{claim: 1, move: 1}},
		{4, parts{claim: 2, move: 2}},
	},
	Claimer: {
		{1, parts{claim: 1, move: 1}},
	},
	RemoteColonizer: {
		{1, parts{work: 1, carry: 2, move: 2}},
		{2, parts{work: 2, carry: 4, move: 4}},
		{3, parts{work: 3, carry: 3, move: 6}},
		{4, parts{work: 5, carry: 5, move: 10}},
	},
	Zealot: {
		{1, parts{attack: 2, move: 2}},
		{3, parts{tough: 2, attack: 4, move: 6}},
		{4, parts{tough: 4, attack: 8, move: 12}},
	},
	Stalker: {
		{2, parts{ranged: 2, move: 2}},
		{4, parts{ranged: 5, move: 5}},
		{6, parts{ranged: 10, move: 10}},
	},
	Medic: {
		{2, parts{heal: 1, move: 1}},
		{4, parts{heal: 3, move: 3}},
		{6, parts{heal: 6, move: 6}},
	},
	DomesticDefender: {
		{1, parts{attack: 2, move: 2}},
		{3, parts{tough: 2, attack: 4, move: 6}},
		{5, parts{tough: 4, attack: 8, move: 12}},
	},
	RemoteDefender: {
		{2, parts{ranged: 2, move: 2}},
		{4, parts{ranged: 4, heal: 1, move: 5}},
		{6, parts{ranged: 8, heal: 2, move: 10}},
	},
}

// Body returns the body role spawns with at tier, or nil when the role has
// no template that low.
func Body(role Role, tier int) []string {
	var best []string
	for _, t := range bodies[role] {
		if t.tier <= tier {
			best = t.body.list()
		}
	}
	return best
}

// BodyCost is the spawn energy cost of body.
func BodyCost(body []string) int {
	n := 0
	for _, p := range body {
		n += model.BodyPartCost[p]
	}
	return n
}

// DefaultOptions are the capabilities a unit of role is spawned with while
// its home room is in state.
func DefaultOptions(role Role, state string) memory.Options {
	advanced := state == memory.RoomStateAdvanced
	intro := state == memory.RoomStateIntro || state == ""
	switch role {
	case Miner, RemoteMiner:
		return memory.Options{HarvestSources: true}
	case MineralMiner:
		return memory.Options{HarvestMinerals: true}
	case Harvester:
		return memory.Options{
			HarvestSources:   intro,
			GetFromContainer: !advanced,
			GetDroppedEnergy: true,
			GetFromStorage:   advanced,
			GetFromTerminal:  advanced,
			FillSpawn:        true,
			FillTower:        true,
			FillStorage:      true,
			Build:            true,
			Repair:           true,
			Upgrade:          true,
		}
	case Worker:
		return memory.Options{
			HarvestSources:   intro,
			GetFromContainer: !intro,
			GetDroppedEnergy: !advanced,
			GetFromStorage:   advanced,
			GetFromTerminal:  advanced,
			FillTower:        true,
			Build:            true,
			Repair:           true,
			WallRepair:       true,
			Upgrade:          true,
		}
	case PowerUpgrader:
		return memory.Options{Upgrade: true, GetFromStorage: true}
	case Lorry:
		return memory.Options{
			GetFromContainer: true,
			GetDroppedEnergy: true,
			GetLootJobs:      true,
			FillSpawn:        true,
			FillTower:        true,
			FillStorage:      true,
			FillTerminal:     true,
		}
	case StorageManager:
		return memory.Options{
			GetFromStorage:  true,
			GetFromTerminal: true,
			FillSpawn:       true,
			FillTower:       true,
			FillLink:        true,
			FillStorage:     true,
		}
	case RemoteHarvester:
		return memory.Options{
			GetFromContainer: true,
			GetDroppedEnergy: true,
			GetLootJobs:      true,
			FillStorage:      true,
			FillLink:         true,
			Build:            true,
			Repair:           true,
		}
	case RemoteReserver:
		return memory.Options{Claim: true, SignRoom: true}
	case Claimer:
		return memory.Options{Claim: true}
	case RemoteColonizer:
		return memory.Options{
			HarvestSources:   true,
			GetFromContainer: true,
			GetDroppedEnergy: true,
			FillSpawn:        true,
			FillTower:        true,
			Build:            true,
			Repair:           true,
			Upgrade:          true,
		}
	case Zealot:
		return memory.Options{Attack: true, Squad: true}
	case Stalker:
		return memory.Options{RangedAttack: true, Squad: true}
	case Medic:
		return memory.Options{Healer: true, Squad: true}
	case DomesticDefender:
		return memory.Options{Attack: true, RangedAttack: true}
	case RemoteDefender:
		return memory.Options{RangedAttack: true, Healer: true}
	}
	return memory.Options{}
}
