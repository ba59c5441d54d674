// Package cache memoizes per-room world queries in room memory. Results are
// object IDs; typed accessors resolve them against the current tick's index
// and drop anything that has since disappeared.
package cache

import (
	"log/slog"

	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/model"
)

type Kind string

const (
	Sources           Kind = "sources"
	Minerals          Kind = "minerals"
	Structures        Kind = "structures"
	ConstructionSites Kind = "constructionSites"
	Dropped           Kind = "dropped"
	Tombstones        Kind = "tombstones"
	Ruins             Kind = "ruins"
	MyCreeps          Kind = "myCreeps"
	Hostiles          Kind = "hostiles"
)

var AllKinds = []Kind{Sources, Minerals, Structures, ConstructionSites, Dropped, Tombstones, Ruins, MyCreeps, Hostiles}

type Cache struct {
	store  *memory.Store
	idx    *model.Index
	tuning config.Tuning
}

func New(store *memory.Store, idx *model.Index, tuning config.Tuning) *Cache {
	return &Cache{store: store, idx: idx, tuning: tuning}
}

func (c *Cache) Index() *model.Index { return c.idx }

// Valid reports whether a value stamped at cached is still usable at now.
// A negative ttl never expires once computed. With noCaching set, values
// only live for the tick they were computed on.
func Valid(cached, now, ttl int, noCaching bool) bool {
	if cached == now {
		return true
	}
	if noCaching {
		return false
	}
	if ttl < 0 {
		return true
	}
	return now-cached < ttl
}

// Get returns the IDs for kind in room, recomputing when the entry is stale.
// Rooms without memory yield nil; rooms out of vision yield whatever was last
// cached.
func (c *Cache) Get(room string, kind Kind) []string {
	rm, ok := c.store.Room(room)
	if !ok {
		return nil
	}
	if rm.Cache == nil {
		rm.Cache = make(map[string]*memory.CacheEntry)
	}
	now := c.idx.Tick()
	entry := rm.Cache[string(kind)]
	if entry != nil && Valid(entry.Tick, now, c.tuning.QueryTTL(string(kind)), c.tuning.Options.NoCachingMemory) {
		return entry.IDs
	}
	r, visible := c.idx.Room(room)
	if !visible {
		if entry != nil {
			return entry.IDs
		}
		return nil
	}
	ids := c.scan(r, kind)
	rm.Cache[string(kind)] = &memory.CacheEntry{Tick: now, IDs: ids}
	slog.Debug("cache refreshed", "room", room, "kind", kind, "count", len(ids))
	return ids
}

// Refresh forces kind to be recomputed on its next Get.
func (c *Cache) Refresh(room string, kind Kind) {
	if rm, ok := c.store.Room(room); ok && rm.Cache != nil {
		delete(rm.Cache, string(kind))
	}
}

func (c *Cache) scan(r *model.Room, kind Kind) []string {
	ids := []string{}
	switch kind {
	case Sources:
		for i := range r.Sources {
			ids = append(ids, r.Sources[i].ID)
		}
	case Minerals:
		for i := range r.Minerals {
			ids = append(ids, r.Minerals[i].ID)
		}
	case Structures:
		for i := range r.Structures {
			ids = append(ids, r.Structures[i].ID)
		}
	case ConstructionSites:
		for i := range r.ConstructionSites {
			if r.ConstructionSites[i].My {
				ids = append(ids, r.ConstructionSites[i].ID)
			}
		}
	case Dropped:
		for i := range r.Dropped {
			ids = append(ids, r.Dropped[i].ID)
		}
	case Tombstones:
		for i := range r.Tombstones {
			ids = append(ids, r.Tombstones[i].ID)
		}
	case Ruins:
		for i := range r.Ruins {
			ids = append(ids, r.Ruins[i].ID)
		}
	case MyCreeps:
		for _, cr := range c.idx.Creeps() {
			if cr.Pos.Room == r.Name && cr.ID != "" {
				ids = append(ids, cr.ID)
			}
		}
	case Hostiles:
		for i := range r.Hostiles {
			ids = append(ids, r.Hostiles[i].ID)
		}
	}
	return ids
}

func (c *Cache) Sources(room string) []*model.Source {
	return model.ObjectsByID[*model.Source](c.idx, c.Get(room, Sources))
}

func (c *Cache) Minerals(room string) []*model.Mineral {
	return model.ObjectsByID[*model.Mineral](c.idx, c.Get(room, Minerals))
}

// Structures returns the room's structures, optionally restricted to types.
func (c *Cache) Structures(room string, types ...string) []*model.Structure {
	all := model.ObjectsByID[*model.Structure](c.idx, c.Get(room, Structures))
	if len(types) == 0 {
		return all
	}
	out := all[:0:0]
	for _, s := range all {
		for _, t := range types {
			if s.Type == t {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func (c *Cache) ConstructionSites(room string) []*model.ConstructionSite {
	return model.ObjectsByID[*model.ConstructionSite](c.idx, c.Get(room, ConstructionSites))
}

func (c *Cache) Dropped(room string) []*model.Resource {
	return model.ObjectsByID[*model.Resource](c.idx, c.Get(room, Dropped))
}

func (c *Cache) Tombstones(room string) []*model.Tombstone {
	return model.ObjectsByID[*model.Tombstone](c.idx, c.Get(room, Tombstones))
}

func (c *Cache) Ruins(room string) []*model.Ruin {
	return model.ObjectsByID[*model.Ruin](c.idx, c.Get(room, Ruins))
}

func (c *Cache) MyCreeps(room string) []*model.Creep {
	return model.ObjectsByID[*model.Creep](c.idx, c.Get(room, MyCreeps))
}

func (c *Cache) Hostiles(room string) []*model.Creep {
	return model.ObjectsByID[*model.Creep](c.idx, c.Get(room, Hostiles))
}
