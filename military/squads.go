package military

import "github.com/nstehr/tundra/tundra-core/roles"

// Spawn priorities of military queue entries; lower spawns first.
const (
	PriorityHigh = 1
	PriorityMed  = 2
	PriorityLow  = 3
)

// Squad manager names, as persisted in Squad.Manager.
const (
	SoloZealot       = "soloZealotSquad"
	SoloStalker      = "soloStalkerSquad"
	Standard         = "standardSquad"
	TowerDrainer     = "towerDrainerSquad"
	DomesticDefender = "domesticDefenderSquad"
	RemoteDefender   = "remoteDefenderSquad"
)

// Member is one slot of a squad roster. CaravanPos is the member's place in
// marching order and how far from the rally point it may wait.
type Member struct {
	Role       roles.Role
	CaravanPos int
}

// SquadManager describes a kind of squad: who is in it, how urgently it is
// spawned and whether it gathers before moving out.
type SquadManager struct {
	Name     string
	Members  []Member
	Priority int
	Rally    bool
}

var managers = map[string]SquadManager{
	SoloZealot: {
		Name:     SoloZealot,
		Members:  []Member{{roles.Zealot, 0}},
		Priority: PriorityLow,
	},
	SoloStalker: {
		Name:     SoloStalker,
		Members:  []Member{{roles.Stalker, 0}},
		Priority: PriorityLow,
	},
	Standard: {
		Name:     Standard,
		Members:  []Member{{roles.Zealot, 0}, {roles.Medic, 1}},
		Priority: PriorityLow,
		Rally:    true,
	},
	TowerDrainer: {
		Name:     TowerDrainer,
		Members:  []Member{{roles.Zealot, 0}, {roles.Medic, 1}},
		Priority: PriorityLow,
		Rally:    true,
	},
	DomesticDefender: {
		Name:     DomesticDefender,
		Members:  []Member{{roles.DomesticDefender, 0}},
		Priority: PriorityHigh,
	},
	RemoteDefender: {
		Name:     RemoteDefender,
		Members:  []Member{{roles.RemoteDefender, 0}},
		Priority: PriorityHigh,
	},
}

func Lookup(name string) (SquadManager, bool) {
	m, ok := managers[name]
	return m, ok
}
