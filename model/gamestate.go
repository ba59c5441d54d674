package model

// GameState is the per-tick snapshot of the world the host exposes to us.
// Only our own creeps live in Creeps; enemies are listed per room in Hostiles.
type GameState struct {
	Tick     int     `json:"tick"`
	Username string  `json:"username"`
	CPU      CPU     `json:"cpu"`
	Rooms    []Room  `json:"rooms"`
	Creeps   []Creep `json:"creeps"`
	Flags    []Flag  `json:"flags"`
}

type CPU struct {
	Bucket int     `json:"bucket"`
	Limit  int     `json:"limit"`
	Used   float64 `json:"used"`
}

// Room is everything visible in a single room. Rooms without vision are
// simply absent from GameState.Rooms.
type Room struct {
	Name                    string             `json:"name"`
	Controller              *Controller        `json:"controller,omitempty"`
	EnergyAvailable         int                `json:"energyAvailable"`
	EnergyCapacityAvailable int                `json:"energyCapacityAvailable"`
	Sources                 []Source           `json:"sources"`
	Minerals                []Mineral          `json:"minerals"`
	Structures              []Structure        `json:"structures"`
	ConstructionSites       []ConstructionSite `json:"constructionSites"`
	Dropped                 []Resource         `json:"dropped"`
	Tombstones              []Tombstone        `json:"tombstones"`
	Ruins                   []Ruin             `json:"ruins"`
	Hostiles                []Creep            `json:"hostiles"`
	Exits                   map[string]string  `json:"exits,omitempty"` // "1","3","5","7" → room name
	Terrain                 []TerrainType      `json:"terrain,omitempty"`
}

// IsOwned reports whether we hold the controller of this room.
func (r *Room) IsOwned() bool {
	return r.Controller != nil && r.Controller.My
}

type Store struct {
	Energy   int `json:"energy"`
	Capacity int `json:"capacity"`
}

func (s Store) Free() int {
	if s.Capacity <= s.Energy {
		return 0
	}
	return s.Capacity - s.Energy
}

func (s Store) Full() bool  { return s.Capacity > 0 && s.Energy >= s.Capacity }
func (s Store) Empty() bool { return s.Energy == 0 }

type Creep struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Owner       string         `json:"owner"`
	Pos         Pos            `json:"pos"`
	Store       Store          `json:"store"`
	Body        map[string]int `json:"body"` // active part counts
	Hits        int            `json:"hits"`
	HitsMax     int            `json:"hitsMax"`
	TicksToLive int            `json:"ticksToLive"`
	Spawning    bool           `json:"spawning"`
}

func (c *Creep) ObjectID() string { return c.ID }
func (c *Creep) Position() Pos    { return c.Pos }

// Parts returns the number of active body parts of the given type.
func (c *Creep) Parts(part string) int { return c.Body[part] }

type Controller struct {
	ID               string       `json:"id"`
	Pos              Pos          `json:"pos"`
	Level            int          `json:"level"`
	My               bool         `json:"my"`
	Owner            string       `json:"owner,omitempty"`
	Reservation      *Reservation `json:"reservation,omitempty"`
	Sign             *Sign        `json:"sign,omitempty"`
	TicksToDowngrade int          `json:"ticksToDowngrade"`
}

func (c *Controller) ObjectID() string { return c.ID }
func (c *Controller) Position() Pos    { return c.Pos }

type Reservation struct {
	Username   string `json:"username"`
	TicksToEnd int    `json:"ticksToEnd"`
}

type Sign struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

type Source struct {
	ID             string `json:"id"`
	Pos            Pos    `json:"pos"`
	Energy         int    `json:"energy"`
	EnergyCapacity int    `json:"energyCapacity"`
}

func (s *Source) ObjectID() string { return s.ID }
func (s *Source) Position() Pos    { return s.Pos }

type Mineral struct {
	ID          string `json:"id"`
	Pos         Pos    `json:"pos"`
	MineralType string `json:"mineralType"`
	Amount      int    `json:"amount"`
}

func (m *Mineral) ObjectID() string { return m.ID }
func (m *Mineral) Position() Pos    { return m.Pos }

type Structure struct {
	ID       string `json:"id"`
	Type     string `json:"structureType"`
	Pos      Pos    `json:"pos"`
	Hits     int    `json:"hits"`
	HitsMax  int    `json:"hitsMax"`
	My       bool   `json:"my"`
	Store    Store  `json:"store"`
	Cooldown int    `json:"cooldown,omitempty"`
	Spawning bool   `json:"spawning,omitempty"` // spawns only
}

func (s *Structure) ObjectID() string { return s.ID }
func (s *Structure) Position() Pos    { return s.Pos }
func (s Structure) TypeName() string  { return s.Type }

type ConstructionSite struct {
	ID            string `json:"id"`
	Pos           Pos    `json:"pos"`
	StructureType string `json:"structureType"`
	Progress      int    `json:"progress"`
	ProgressTotal int    `json:"progressTotal"`
	My            bool   `json:"my"`
}

func (c *ConstructionSite) ObjectID() string { return c.ID }
func (c *ConstructionSite) Position() Pos    { return c.Pos }
func (c ConstructionSite) TypeName() string  { return c.StructureType }

// Resource is a pile of dropped resources on the ground.
type Resource struct {
	ID           string `json:"id"`
	Pos          Pos    `json:"pos"`
	ResourceType string `json:"resourceType"`
	Amount       int    `json:"amount"`
}

func (r *Resource) ObjectID() string { return r.ID }
func (r *Resource) Position() Pos    { return r.Pos }

type Tombstone struct {
	ID    string `json:"id"`
	Pos   Pos    `json:"pos"`
	Store Store  `json:"store"`
}

func (t *Tombstone) ObjectID() string { return t.ID }
func (t *Tombstone) Position() Pos    { return t.Pos }

type Ruin struct {
	ID    string `json:"id"`
	Pos   Pos    `json:"pos"`
	Store Store  `json:"store"`
}

func (r *Ruin) ObjectID() string { return r.ID }
func (r *Ruin) Position() Pos    { return r.Pos }

type Flag struct {
	Name           string `json:"name"`
	Color          int    `json:"color"`
	SecondaryColor int    `json:"secondaryColor"`
	Pos            Pos    `json:"pos"`
}

// Flag colors, numbered as the host numbers them.
const (
	ColorRed    = 1
	ColorPurple = 2
	ColorBlue   = 3
	ColorCyan   = 4
	ColorGreen  = 5
	ColorYellow = 6
	ColorOrange = 7
	ColorBrown  = 8
	ColorGrey   = 9
	ColorWhite  = 10
)

// Structure type constants.
const (
	StructureSpawn      = "spawn"
	StructureExtension  = "extension"
	StructureTower      = "tower"
	StructureContainer  = "container"
	StructureStorage    = "storage"
	StructureTerminal   = "terminal"
	StructureLink       = "link"
	StructureRoad       = "road"
	StructureWall       = "constructedWall"
	StructureRampart    = "rampart"
	StructureExtractor  = "extractor"
	StructureController = "controller"
)

// Body part constants.
const (
	Work         = "work"
	Carry        = "carry"
	Move         = "move"
	Claim        = "claim"
	Attack       = "attack"
	RangedAttack = "ranged_attack"
	Heal         = "heal"
	Tough        = "tough"
)

// BodyPartCost is the spawn energy cost of each part.
var BodyPartCost = map[string]int{
	Work:         100,
	Carry:        50,
	Move:         50,
	Claim:        600,
	Attack:       80,
	RangedAttack: 150,
	Heal:         250,
	Tough:        10,
}
