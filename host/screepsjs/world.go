//go:build js

package main

import (
	"github.com/gopherjs/gopherjs/js"
	"github.com/nstehr/tundra/tundra-core/model"
)

var (
	game   = js.Global.Get("Game")
	energy = js.Global.Get("RESOURCE_ENERGY")
)

func constant(name string) *js.Object { return js.Global.Get(name) }

// keys lists the own enumerable properties of a JS object.
func keys(o *js.Object) []string {
	if o == js.Undefined || o == nil {
		return nil
	}
	ks := js.Global.Get("Object").Call("keys", o)
	out := make([]string, ks.Length())
	for i := range out {
		out[i] = ks.Index(i).String()
	}
	return out
}

func str(o *js.Object) string {
	if o == js.Undefined || o == nil {
		return ""
	}
	return o.String()
}

func num(o *js.Object) int {
	if o == js.Undefined || o == nil {
		return 0
	}
	return o.Int()
}

func pos(o *js.Object) model.Pos {
	p := o.Get("pos")
	return model.Pos{X: p.Get("x").Int(), Y: p.Get("y").Int(), Room: p.Get("roomName").String()}
}

func energyStore(o *js.Object) model.Store {
	s := o.Get("store")
	if s == js.Undefined {
		return model.Store{}
	}
	return model.Store{
		Energy:   num(s.Call("getUsedCapacity", energy)),
		Capacity: num(s.Call("getCapacity", energy)),
	}
}

func find(room *js.Object, what string) []*js.Object {
	res := room.Call("find", constant(what))
	out := make([]*js.Object, res.Length())
	for i := range out {
		out[i] = res.Index(i)
	}
	return out
}

// readWorld converts the live Game object into a model.GameState.
func readWorld() model.GameState {
	cpu := game.Get("cpu")
	gs := model.GameState{
		Tick: game.Get("time").Int(),
		CPU: model.CPU{
			Bucket: num(cpu.Get("bucket")),
			Limit:  num(cpu.Get("limit")),
			Used:   cpu.Call("getUsed").Float(),
		},
	}

	rooms := game.Get("rooms")
	for _, name := range keys(rooms) {
		gs.Rooms = append(gs.Rooms, readRoom(name, rooms.Get(name)))
	}
	creeps := game.Get("creeps")
	for _, name := range keys(creeps) {
		c := readCreep(creeps.Get(name))
		if gs.Username == "" {
			gs.Username = c.Owner
		}
		gs.Creeps = append(gs.Creeps, c)
	}
	flags := game.Get("flags")
	for _, name := range keys(flags) {
		f := flags.Get(name)
		gs.Flags = append(gs.Flags, model.Flag{
			Name:           name,
			Color:          f.Get("color").Int(),
			SecondaryColor: f.Get("secondaryColor").Int(),
			Pos:            pos(f),
		})
	}
	if gs.Username == "" {
		spawns := game.Get("spawns")
		if ks := keys(spawns); len(ks) > 0 {
			gs.Username = str(spawns.Get(ks[0]).Get("owner").Get("username"))
		}
	}
	return gs
}

func readRoom(name string, r *js.Object) model.Room {
	room := model.Room{
		Name:                    name,
		EnergyAvailable:         num(r.Get("energyAvailable")),
		EnergyCapacityAvailable: num(r.Get("energyCapacityAvailable")),
		Exits:                   make(map[string]string),
	}
	if c := r.Get("controller"); c != js.Undefined {
		room.Controller = readController(c)
	}
	exits := game.Get("map").Call("describeExits", name)
	for _, dir := range keys(exits) {
		room.Exits[dir] = exits.Get(dir).String()
	}

	for _, s := range find(r, "FIND_SOURCES") {
		room.Sources = append(room.Sources, model.Source{
			ID: s.Get("id").String(), Pos: pos(s),
			Energy: num(s.Get("energy")), EnergyCapacity: num(s.Get("energyCapacity")),
		})
	}
	for _, m := range find(r, "FIND_MINERALS") {
		room.Minerals = append(room.Minerals, model.Mineral{
			ID: m.Get("id").String(), Pos: pos(m),
			MineralType: str(m.Get("mineralType")), Amount: num(m.Get("mineralAmount")),
		})
	}
	for _, s := range find(r, "FIND_STRUCTURES") {
		room.Structures = append(room.Structures, model.Structure{
			ID:       s.Get("id").String(),
			Type:     s.Get("structureType").String(),
			Pos:      pos(s),
			Hits:     num(s.Get("hits")),
			HitsMax:  num(s.Get("hitsMax")),
			My:       s.Get("my").Bool(),
			Store:    energyStore(s),
			Cooldown: num(s.Get("cooldown")),
			Spawning: s.Get("spawning") != js.Undefined && s.Get("spawning") != nil,
		})
	}
	for _, s := range find(r, "FIND_CONSTRUCTION_SITES") {
		room.ConstructionSites = append(room.ConstructionSites, model.ConstructionSite{
			ID: s.Get("id").String(), Pos: pos(s),
			StructureType: s.Get("structureType").String(),
			Progress:      num(s.Get("progress")), ProgressTotal: num(s.Get("progressTotal")),
			My: s.Get("my").Bool(),
		})
	}
	for _, d := range find(r, "FIND_DROPPED_RESOURCES") {
		room.Dropped = append(room.Dropped, model.Resource{
			ID: d.Get("id").String(), Pos: pos(d),
			ResourceType: d.Get("resourceType").String(), Amount: num(d.Get("amount")),
		})
	}
	for _, t := range find(r, "FIND_TOMBSTONES") {
		room.Tombstones = append(room.Tombstones, model.Tombstone{ID: t.Get("id").String(), Pos: pos(t), Store: energyStore(t)})
	}
	for _, t := range find(r, "FIND_RUINS") {
		room.Ruins = append(room.Ruins, model.Ruin{ID: t.Get("id").String(), Pos: pos(t), Store: energyStore(t)})
	}
	for _, h := range find(r, "FIND_HOSTILE_CREEPS") {
		room.Hostiles = append(room.Hostiles, readCreep(h))
	}
	return room
}

func readController(c *js.Object) *model.Controller {
	ctrl := &model.Controller{
		ID:               c.Get("id").String(),
		Pos:              pos(c),
		Level:            num(c.Get("level")),
		My:               c.Get("my").Bool(),
		TicksToDowngrade: num(c.Get("ticksToDowngrade")),
	}
	if o := c.Get("owner"); o != js.Undefined {
		ctrl.Owner = str(o.Get("username"))
	}
	if rv := c.Get("reservation"); rv != js.Undefined {
		ctrl.Reservation = &model.Reservation{Username: str(rv.Get("username")), TicksToEnd: num(rv.Get("ticksToEnd"))}
	}
	if sg := c.Get("sign"); sg != js.Undefined {
		ctrl.Sign = &model.Sign{Username: str(sg.Get("username")), Text: str(sg.Get("text"))}
	}
	return ctrl
}

func readCreep(c *js.Object) model.Creep {
	creep := model.Creep{
		ID:          c.Get("id").String(),
		Name:        c.Get("name").String(),
		Owner:       str(c.Get("owner").Get("username")),
		Pos:         pos(c),
		Store:       energyStore(c),
		Body:        make(map[string]int),
		Hits:        num(c.Get("hits")),
		HitsMax:     num(c.Get("hitsMax")),
		TicksToLive: num(c.Get("ticksToLive")),
		Spawning:    c.Get("spawning").Bool(),
	}
	body := c.Get("body")
	for i := 0; i < body.Length(); i++ {
		part := body.Index(i)
		if part.Get("hits").Int() > 0 {
			creep.Body[part.Get("type").String()]++
		}
	}
	return creep
}
