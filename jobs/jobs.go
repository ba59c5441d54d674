// Package jobs builds and serves the per-room job catalogs that units pick
// their work from.
package jobs

import "github.com/nstehr/tundra/tundra-core/memory"

// Job types. Every job carries exactly one.
const (
	GetEnergyJob = "getEnergyJob"
	CarryPartJob = "carryPartJob"
	ClaimPartJob = "claimPartJob"
	WorkPartJob  = "workPartJob"
	MovePartJob  = "movePartJob"
)

// Actions.
const (
	ActionHarvest  = "harvest"
	ActionWithdraw = "withdraw"
	ActionPickup   = "pickup"
	ActionTransfer = "transfer"
	ActionClaim    = "claim"
	ActionReserve  = "reserve"
	ActionSign     = "sign"
	ActionAttack   = "attack"
	ActionRepair   = "repair"
	ActionBuild    = "build"
	ActionUpgrade  = "upgrade"
	ActionMove     = "move"
)

// Target types that are not structure types.
const (
	TargetSource    = "source"
	TargetMineral   = "mineral"
	TargetDropped   = "droppedResource"
	TargetTombstone = "tombstone"
	TargetRuin      = "ruin"
	TargetRoomName  = "roomName"
)

// Kind names one catalog list of a room.
type Kind string

const (
	Source    Kind = "source"
	Mineral   Kind = "mineral"
	Container Kind = "container"
	Link      Kind = "link"
	Backup    Kind = "backup"
	Pickup    Kind = "pickup"
	Loot      Kind = "loot"
	Fill      Kind = "fill"
	Store     Kind = "store"
	Claim     Kind = "claim"
	Reserve   Kind = "reserve"
	Sign      Kind = "sign"
	Attack    Kind = "attack"
	Repair    Kind = "repair"
	Build     Kind = "build"
	Upgrade   Kind = "upgrade"
)

// occupancy says what taking a job does to the catalog entry.
type occupancy int

const (
	// exclusive jobs are marked taken by their first holder.
	exclusive occupancy = iota
	// capacity jobs shrink by what each holder consumes and are taken once empty.
	capacity
	// shared jobs are never marked taken.
	shared
)

type kindInfo struct {
	jobType string
	occ     occupancy
}

var kinds = map[Kind]kindInfo{
	Source:    {GetEnergyJob, capacity},
	Mineral:   {GetEnergyJob, exclusive},
	Container: {GetEnergyJob, capacity},
	Link:      {GetEnergyJob, shared},
	Backup:    {GetEnergyJob, shared},
	Pickup:    {GetEnergyJob, capacity},
	Loot:      {GetEnergyJob, capacity},
	Fill:      {CarryPartJob, exclusive},
	Store:     {CarryPartJob, shared},
	Claim:     {ClaimPartJob, exclusive},
	Reserve:   {ClaimPartJob, exclusive},
	Sign:      {ClaimPartJob, exclusive},
	Attack:    {ClaimPartJob, exclusive},
	Repair:    {WorkPartJob, exclusive},
	Build:     {WorkPartJob, exclusive},
	Upgrade:   {WorkPartJob, shared},
}

// kindOrder fixes the search order within a job type.
var kindOrder = []Kind{
	Source, Mineral, Container, Link, Backup, Pickup, Loot,
	Fill, Store,
	Claim, Reserve, Sign, Attack,
	Repair, Build, Upgrade,
}

// KindsOf returns the catalog lists holding jobs of jobType.
func KindsOf(jobType string) []Kind {
	var out []Kind
	for _, k := range kindOrder {
		if kinds[k].jobType == jobType {
			out = append(out, k)
		}
	}
	return out
}

func (k Kind) JobType() string { return kinds[k].jobType }

// NewMoveJob builds a job to travel to a room. Move jobs live only in the
// unit's own memory and never in a catalog.
func NewMoveJob(room string) *memory.Job {
	return &memory.Job{
		JobType:    MovePartJob,
		TargetID:   room,
		TargetType: TargetRoomName,
		ActionType: ActionMove,
	}
}

// Pred filters catalog jobs. A nil Pred matches everything.
type Pred func(*memory.Job) bool

func NotTaken(j *memory.Job) bool { return !j.IsTaken }

// All combines predicates.
func All(preds ...Pred) Pred {
	return func(j *memory.Job) bool {
		for _, p := range preds {
			if p != nil && !p(j) {
				return false
			}
		}
		return true
	}
}

func TargetType(types ...string) Pred {
	return func(j *memory.Job) bool {
		for _, t := range types {
			if j.TargetType == t {
				return true
			}
		}
		return false
	}
}

func MinResources(n int) Pred {
	return func(j *memory.Job) bool { return j.Resources >= n }
}
