package ipc

import "github.com/nstehr/tundra/tundra-core/memory"

// Intent types. The host executes each one against its live objects.
const (
	TypeMove             = "move"
	TypeHarvest          = "harvest"
	TypeWithdraw         = "withdraw"
	TypePickup           = "pickup"
	TypeTransfer         = "transfer"
	TypeBuild            = "build"
	TypeRepair           = "repair"
	TypeUpgrade          = "upgrade_controller"
	TypeClaim            = "claim_controller"
	TypeReserve          = "reserve_controller"
	TypeAttackController = "attack_controller"
	TypeSign             = "sign_controller"
	TypeAttack           = "attack"
	TypeRangedAttack     = "ranged_attack"
	TypeHeal             = "heal"
	TypeSpawn            = "spawn_creep"
	TypeTowerAttack      = "tower_attack"
	TypeTowerHeal        = "tower_heal"
	TypeTowerRepair      = "tower_repair"
	TypeRemoveFlag       = "remove_flag"
)

// MoveCommand paths a creep to within Range of a position, which may be in
// another room.
type MoveCommand struct {
	Creep string `json:"creep"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Room  string `json:"room"`
	Range int    `json:"range"`
	// Repath asks the host to discard any cached path, set after the creep
	// has been stuck for a few ticks.
	Repath bool `json:"repath,omitempty"`
}

// TargetCommand is any creep action aimed at a single object.
type TargetCommand struct {
	Creep    string `json:"creep"`
	TargetID string `json:"target_id"`
}

type SignCommand struct {
	Creep    string `json:"creep"`
	TargetID string `json:"target_id"`
	Text     string `json:"text"`
}

type SpawnCommand struct {
	Spawn  string             `json:"spawn"`
	Name   string             `json:"name"`
	Body   []string           `json:"body"`
	Memory memory.CreepMemory `json:"memory"`
}

type TowerCommand struct {
	Tower    string `json:"tower"`
	TargetID string `json:"target_id"`
}

type RemoveFlagCommand struct {
	Flag string `json:"flag"`
}
