// Package memory is the persisted store the controller threads through every
// call. Its JSON layout is what survives between ticks and restarts.
package memory

// Store is the root of persisted memory. It is created once per process (or
// restored from a snapshot) and mutated in place each tick.
type Store struct {
	Creeps map[string]*CreepMemory `json:"creeps"`
	Rooms  map[string]*RoomMemory  `json:"rooms"`
	Flags  map[string]*FlagMemory  `json:"flags"`
	Empire *EmpireMemory           `json:"empire"`
}

func New() *Store {
	s := &Store{}
	s.Init()
	return s
}

// Init creates any missing top-level subtree. Safe to call every tick.
func (s *Store) Init() {
	if s.Creeps == nil {
		s.Creeps = make(map[string]*CreepMemory)
	}
	if s.Rooms == nil {
		s.Rooms = make(map[string]*RoomMemory)
	}
	if s.Flags == nil {
		s.Flags = make(map[string]*FlagMemory)
	}
	if s.Empire == nil {
		s.Empire = &EmpireMemory{}
	}
	s.Empire.init()
}

func (s *Store) Creep(name string) (*CreepMemory, bool) {
	m, ok := s.Creeps[name]
	return m, ok && m != nil
}

func (s *Store) Room(name string) (*RoomMemory, bool) {
	m, ok := s.Rooms[name]
	return m, ok && m != nil
}

// CreepMemory is the per-unit record. Job is nil when the unit is idle.
type CreepMemory struct {
	Role          string        `json:"role"`
	HomeRoom      string        `json:"homeRoom"`
	TargetRoom    string        `json:"targetRoom"`
	Options       Options       `json:"options"`
	Job           *Job          `json:"job,omitempty"`
	Working       bool          `json:"working"`
	Supplementary Supplementary `json:"supplementary"`
	OperationUUID string        `json:"operationUUID,omitempty"`
	SquadUUID     string        `json:"squadUUID,omitempty"`
	LastRoom      string        `json:"lastRoom,omitempty"`
	StuckCount    int           `json:"stuckCount,omitempty"`
	LastPos       string        `json:"lastPos,omitempty"`
}

// ClearJob drops the unit's job and everything derived from it.
func (c *CreepMemory) ClearJob() {
	c.Job = nil
	c.Working = false
	c.Supplementary.MoveTargetID = ""
}

type Supplementary struct {
	MoveTargetID string `json:"moveTargetID,omitempty"`
}

// Options is the union of civilian and military capability flags.
type Options struct {
	HarvestSources   bool `json:"harvestSources,omitempty"`
	HarvestMinerals  bool `json:"harvestMinerals,omitempty"`
	GetFromContainer bool `json:"getFromContainer,omitempty"`
	GetFromStorage   bool `json:"getFromStorage,omitempty"`
	GetFromTerminal  bool `json:"getFromTerminal,omitempty"`
	GetDroppedEnergy bool `json:"getDroppedEnergy,omitempty"`
	GetLootJobs      bool `json:"getLootJobs,omitempty"`
	FillSpawn        bool `json:"fillSpawn,omitempty"`
	FillTower        bool `json:"fillTower,omitempty"`
	FillStorage      bool `json:"fillStorage,omitempty"`
	FillContainer    bool `json:"fillContainer,omitempty"`
	FillLink         bool `json:"fillLink,omitempty"`
	FillTerminal     bool `json:"fillTerminal,omitempty"`
	Upgrade          bool `json:"upgrade,omitempty"`
	Build            bool `json:"build,omitempty"`
	Repair           bool `json:"repair,omitempty"`
	WallRepair       bool `json:"wallRepair,omitempty"`
	Claim            bool `json:"claim,omitempty"`
	SignRoom         bool `json:"signRoom,omitempty"`

	Attack       bool `json:"attack,omitempty"`
	RangedAttack bool `json:"rangedAttack,omitempty"`
	Healer       bool `json:"healer,omitempty"`
	Squad        bool `json:"squad,omitempty"`
	CaravanPos   int  `json:"caravanPos,omitempty"`
}

// Job is a unit of work bound to a target. JobType discriminates the
// variants; Resources is energy available for get-energy jobs and free
// capacity for carry jobs.
type Job struct {
	JobType    string `json:"jobType"`
	TargetID   string `json:"targetID"`
	TargetType string `json:"targetType"`
	ActionType string `json:"actionType"`
	IsTaken    bool   `json:"isTaken"`
	Resources  int    `json:"resources,omitempty"`
}

func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	return &c
}

// JobList is one cached job catalog of a room, stamped with the tick it was
// generated on.
type JobList struct {
	Tick int    `json:"cache"`
	Jobs []*Job `json:"data"`
}

// CacheEntry is one cached room query: the object IDs found and when.
type CacheEntry struct {
	Tick int      `json:"cache"`
	IDs  []string `json:"data"`
}

const (
	RoomStateIntro    = "intro"
	RoomStateBeginner = "beginner"
	RoomStateAdvanced = "advanced"
)

type RoomMemory struct {
	Owned       bool                   `json:"owned"`
	RoomState   string                 `json:"roomState,omitempty"`
	Defcon      int                    `json:"defcon"`
	Jobs        map[string]*JobList    `json:"jobs"`
	Cache       map[string]*CacheEntry `json:"cache"`
	RemoteRooms []*DependentRoom       `json:"remoteRooms,omitempty"`
	ClaimRooms  []*DependentRoom       `json:"claimRooms,omitempty"`
	AttackRooms []*DependentRoom       `json:"attackRooms,omitempty"`
	CreepLimit  *CreepLimit            `json:"creepLimit,omitempty"`
	UpgradeLink string                 `json:"upgradeLink,omitempty"`
}

// DependentRoom is a room served from an owned room: a remote mining room,
// a room to claim or a room to attack.
type DependentRoom struct {
	RoomName string   `json:"roomName"`
	Flags    []string `json:"flags,omitempty"`
	// Reservation ticks left as last observed; remote rooms only.
	ReserveTTL int `json:"reserveTTL,omitempty"`
}

type CreepLimit struct {
	Domestic      map[string]int   `json:"domesticLimits"`
	Remote        map[string]int   `json:"remoteLimits"`
	MilitaryQueue []*MilitaryEntry `json:"militaryQueue"`
}

// MilitaryEntry is a squad member waiting to be spawned.
type MilitaryEntry struct {
	Role          string  `json:"role"`
	Options       Options `json:"options"`
	TargetRoom    string  `json:"targetRoom"`
	OperationUUID string  `json:"operationUUID"`
	SquadUUID     string  `json:"squadUUID"`
	Priority      int     `json:"priority"`
}

// InitRoom creates room memory if absent and repairs missing subtrees of an
// existing record. Ownership is refreshed every call.
func (s *Store) InitRoom(name string, owned bool) *RoomMemory {
	rm, ok := s.Room(name)
	if !ok {
		rm = &RoomMemory{Defcon: -1}
		if owned {
			rm.RoomState = RoomStateIntro
		}
		s.Rooms[name] = rm
	}
	rm.Owned = owned
	if rm.Jobs == nil {
		rm.Jobs = make(map[string]*JobList)
	}
	if rm.Cache == nil {
		rm.Cache = make(map[string]*CacheEntry)
	}
	if owned && rm.CreepLimit == nil {
		rm.CreepLimit = &CreepLimit{
			Domestic: make(map[string]int),
			Remote:   make(map[string]int),
		}
	}
	return rm
}

// CleanDependentRooms drops nil entries left behind by removals.
func (rm *RoomMemory) CleanDependentRooms() {
	rm.RemoteRooms = compact(rm.RemoteRooms)
	rm.ClaimRooms = compact(rm.ClaimRooms)
	rm.AttackRooms = compact(rm.AttackRooms)
}

func compact(in []*DependentRoom) []*DependentRoom {
	out := in[:0]
	for _, d := range in {
		if d != nil && d.RoomName != "" {
			out = append(out, d)
		}
	}
	return out
}

// DependentRoomNames lists every remote, claim and attack room of rm.
func (rm *RoomMemory) DependentRoomNames() []string {
	var out []string
	for _, list := range [][]*DependentRoom{rm.RemoteRooms, rm.ClaimRooms, rm.AttackRooms} {
		for _, d := range list {
			if d != nil {
				out = append(out, d.RoomName)
			}
		}
	}
	return out
}

// IsDependentRoom reports whether any owned room lists name as a remote,
// claim or attack room.
func (s *Store) IsDependentRoom(name string) bool {
	_, ok := s.DependentOwner(name)
	return ok
}

// DependentOwner returns the owned room that lists name as a dependent room.
func (s *Store) DependentOwner(name string) (string, bool) {
	for owner, rm := range s.Rooms {
		if rm == nil || !rm.Owned {
			continue
		}
		for _, d := range rm.DependentRoomNames() {
			if d == name {
				return owner, true
			}
		}
	}
	return "", false
}

const (
	FlagTypeAttack    = "attack"
	FlagTypeClaim     = "claim"
	FlagTypeRemote    = "remote"
	FlagTypeOverride  = "overrideDependentRoom"
	FlagTypeStimulate = "stimulate"
	FlagTypeUnknown   = "unknown"
)

type FlagMemory struct {
	FlagName   string `json:"flagName"`
	FlagType   string `json:"flagType"`
	Processed  bool   `json:"processed"`
	Complete   bool   `json:"complete"`
	TimePlaced int    `json:"timePlaced"`
	// Operation launched by an attack flag; the flag completes when it ends.
	OperationUUID string `json:"operationUUID,omitempty"`
}

type EmpireMemory struct {
	MilitaryOperations map[string]*Operation    `json:"militaryOperations"`
	AlertMessages      []*Alert                 `json:"alertMessages"`
	MovementData       map[string]*RoomMovement `json:"movementData"`
}

func (e *EmpireMemory) init() {
	if e.MilitaryOperations == nil {
		e.MilitaryOperations = make(map[string]*Operation)
	}
	if e.MovementData == nil {
		e.MovementData = make(map[string]*RoomMovement)
	}
}

type RoomMovement struct {
	LastSeen  int  `json:"lastSeen"`
	Hostile   bool `json:"hostile,omitempty"`
	Owned     bool `json:"owned,omitempty"`
	SourceCnt int  `json:"sources,omitempty"`
}

type Alert struct {
	Message     string `json:"message"`
	TickCreated int    `json:"tickCreated"`
	TTL         int    `json:"ttl"`
}

// Operation groups the squads launched against one objective.
type Operation struct {
	OperationUUID string            `json:"operationUUID"`
	OperationType string            `json:"operationType,omitempty"`
	Squads        map[string]*Squad `json:"squads"`
}

const (
	SquadStatusInit     = "init"
	SquadStatusRally    = "rally"
	SquadStatusEnRoute  = "enRoute"
	SquadStatusEngaging = "engaging"
	SquadStatusDone     = "done"
	SquadStatusDead     = "dead"
)

type Squad struct {
	SquadUUID     string   `json:"squadUUID"`
	OperationUUID string   `json:"operationUUID"`
	Manager       string   `json:"managerName"`
	DependentRoom string   `json:"dependentRoom"`
	TargetRoom    string   `json:"targetRoom"`
	Status        string   `json:"status"`
	RallyRoom     string   `json:"rallyRoom,omitempty"`
	Creeps        []string `json:"creeps"`
	Queued        int      `json:"queued"`
	CreatedAt     int      `json:"createdAt"`
}
