package model

// Object is anything in the world addressable by a stable ID.
type Object interface {
	ObjectID() string
	Position() Pos
}

// Index is built once per tick and answers the lookups the host's live-object
// API would answer: by ID, by name, by position.
type Index struct {
	State    *GameState
	rooms    map[string]*Room
	terrain  map[string]*RoomTerrain
	creeps   map[string]*Creep
	objects  map[string]Object
	creepsAt map[Pos][]*Creep
	flags    map[string]*Flag
}

func NewIndex(gs *GameState) *Index {
	idx := &Index{
		State:    gs,
		rooms:    make(map[string]*Room, len(gs.Rooms)),
		terrain:  make(map[string]*RoomTerrain, len(gs.Rooms)),
		creeps:   make(map[string]*Creep, len(gs.Creeps)),
		objects:  make(map[string]Object),
		creepsAt: make(map[Pos][]*Creep),
		flags:    make(map[string]*Flag, len(gs.Flags)),
	}
	for i := range gs.Rooms {
		r := &gs.Rooms[i]
		idx.rooms[r.Name] = r
		idx.terrain[r.Name] = NewRoomTerrain(r.Terrain)
		if r.Controller != nil {
			idx.add(r.Controller)
		}
		for j := range r.Sources {
			idx.add(&r.Sources[j])
		}
		for j := range r.Minerals {
			idx.add(&r.Minerals[j])
		}
		for j := range r.Structures {
			idx.add(&r.Structures[j])
		}
		for j := range r.ConstructionSites {
			idx.add(&r.ConstructionSites[j])
		}
		for j := range r.Dropped {
			idx.add(&r.Dropped[j])
		}
		for j := range r.Tombstones {
			idx.add(&r.Tombstones[j])
		}
		for j := range r.Ruins {
			idx.add(&r.Ruins[j])
		}
		for j := range r.Hostiles {
			h := &r.Hostiles[j]
			idx.add(h)
			idx.creepsAt[h.Pos] = append(idx.creepsAt[h.Pos], h)
		}
	}
	for i := range gs.Creeps {
		c := &gs.Creeps[i]
		idx.creeps[c.Name] = c
		if c.ID != "" {
			idx.add(c)
		}
		idx.creepsAt[c.Pos] = append(idx.creepsAt[c.Pos], c)
	}
	for i := range gs.Flags {
		idx.flags[gs.Flags[i].Name] = &gs.Flags[i]
	}
	return idx
}

func (idx *Index) add(o Object) {
	if id := o.ObjectID(); id != "" {
		idx.objects[id] = o
	}
}

func (idx *Index) Tick() int { return idx.State.Tick }

func (idx *Index) Room(name string) (*Room, bool) {
	r, ok := idx.rooms[name]
	return r, ok
}

// Terrain returns the terrain of a visible room, or an all-plain grid.
func (idx *Index) Terrain(room string) *RoomTerrain {
	if t, ok := idx.terrain[room]; ok {
		return t
	}
	return &RoomTerrain{}
}

// OwnedRooms returns the visible rooms whose controller we hold, in host order.
func (idx *Index) OwnedRooms() []*Room {
	var out []*Room
	for i := range idx.State.Rooms {
		if idx.State.Rooms[i].IsOwned() {
			out = append(out, &idx.State.Rooms[i])
		}
	}
	return out
}

// Creep looks up one of our live creeps by name.
func (idx *Index) Creep(name string) (*Creep, bool) {
	c, ok := idx.creeps[name]
	return c, ok
}

// Creeps returns our live creeps in host iteration order.
func (idx *Index) Creeps() []*Creep {
	out := make([]*Creep, 0, len(idx.State.Creeps))
	for i := range idx.State.Creeps {
		out = append(out, &idx.State.Creeps[i])
	}
	return out
}

func (idx *Index) Object(id string) (Object, bool) {
	o, ok := idx.objects[id]
	return o, ok
}

// ObjectsByID resolves ids, silently dropping those that no longer exist.
func ObjectsByID[T Object](idx *Index, ids []string) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		o, ok := idx.objects[id]
		if !ok {
			continue
		}
		if t, ok := o.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// CreepsAt returns every creep (ours and hostile) standing on p.
func (idx *Index) CreepsAt(p Pos) []*Creep {
	return idx.creepsAt[p]
}

func (idx *Index) Flag(name string) (*Flag, bool) {
	f, ok := idx.flags[name]
	return f, ok
}

// Closest returns the object nearest to from, or the zero value if objs is empty.
// Ties keep the earlier element.
func Closest[T Object](from Pos, objs []T) (T, bool) {
	var best T
	bestRange := Unreachable + 1
	found := false
	for _, o := range objs {
		r := from.RangeTo(o.Position())
		if r < bestRange {
			best, bestRange, found = o, r, true
		}
	}
	return best, found
}
