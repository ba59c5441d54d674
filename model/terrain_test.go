package model

import "testing"

func gridWith(walls ...[2]int) []TerrainType {
	g := make([]TerrainType, RoomSize*RoomSize)
	for _, w := range walls {
		g[w[1]*RoomSize+w[0]] = Wall
	}
	return g
}

func TestRoomTerrainAt(t *testing.T) {
	grid := gridWith([2]int{10, 10})
	grid[5*RoomSize+7] = Swamp
	terrain := NewRoomTerrain(grid)

	tests := []struct {
		x, y int
		want TerrainType
	}{
		{0, 0, Plain},
		{10, 10, Wall},
		{7, 5, Swamp},
		{49, 49, Plain},
	}
	for _, tc := range tests {
		got := terrain.At(tc.x, tc.y)
		if got != tc.want {
			t.Errorf("At(%d, %d) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestRoomTerrainAtOutOfBounds(t *testing.T) {
	terrain := NewRoomTerrain(gridWith())

	// Off the edge counts as wall so neighbour scans stay in the room.
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {50, 0}, {0, 50}} {
		if got := terrain.At(p[0], p[1]); got != Wall {
			t.Errorf("At(%d, %d) = %d, want Wall", p[0], p[1], got)
		}
	}
}

func TestRoomTerrainMissingGrid(t *testing.T) {
	var terrain *RoomTerrain
	if got := terrain.At(5, 5); got != Plain {
		t.Errorf("nil terrain At(5, 5) = %d, want Plain", got)
	}
	empty := &RoomTerrain{}
	if !empty.Walkable(20, 20) {
		t.Error("empty terrain should be walkable")
	}
}

func TestAccessTiles(t *testing.T) {
	// Source at (10,10) boxed in on three sides.
	terrain := NewRoomTerrain(gridWith(
		[2]int{9, 9}, [2]int{10, 9}, [2]int{11, 9},
		[2]int{9, 10}, [2]int{11, 10},
	))
	got := terrain.AccessTiles(Pos{X: 10, Y: 10, Room: "W1N1"})
	if got != 3 {
		t.Errorf("AccessTiles = %d, want 3", got)
	}

	// Corner tile: only 3 in-room neighbours exist.
	open := NewRoomTerrain(gridWith())
	if got := open.AccessTiles(Pos{X: 0, Y: 0}); got != 3 {
		t.Errorf("corner AccessTiles = %d, want 3", got)
	}
}

func TestRoomCoords(t *testing.T) {
	tests := []struct {
		name   string
		x, y   int
		wantOK bool
	}{
		{"E0S0", 0, 0, true},
		{"W0N0", -1, -1, true},
		{"W7N3", -8, -4, true},
		{"E12S5", 12, 5, true},
		{"sim", 0, 0, false},
		{"X1N1", 0, 0, false},
		{"W1", 0, 0, false},
	}
	for _, tc := range tests {
		x, y, ok := RoomCoords(tc.name)
		if ok != tc.wantOK {
			t.Errorf("RoomCoords(%q) ok = %v, want %v", tc.name, ok, tc.wantOK)
			continue
		}
		if ok && (x != tc.x || y != tc.y) {
			t.Errorf("RoomCoords(%q) = (%d, %d), want (%d, %d)", tc.name, x, y, tc.x, tc.y)
		}
	}
}

func TestRangeTo(t *testing.T) {
	a := Pos{X: 10, Y: 10, Room: "W1N1"}
	if got := a.RangeTo(Pos{X: 13, Y: 8, Room: "W1N1"}); got != 3 {
		t.Errorf("same room range = %d, want 3", got)
	}
	// W1N1 is west of W0N1 by exactly one room.
	if got := a.RangeTo(Pos{X: 10, Y: 10, Room: "W0N1"}); got != 50 {
		t.Errorf("cross room range = %d, want 50", got)
	}
	if got := a.RangeTo(Pos{X: 10, Y: 10, Room: "bogus"}); got != Unreachable {
		t.Errorf("unparseable room range = %d, want Unreachable", got)
	}
}

func TestIndexLookups(t *testing.T) {
	gs := &GameState{
		Tick: 7,
		Rooms: []Room{{
			Name:       "W1N1",
			Controller: &Controller{ID: "ctrl", My: true, Level: 3},
			Sources:    []Source{{ID: "s1", Pos: Pos{X: 5, Y: 5, Room: "W1N1"}}},
		}},
		Creeps: []Creep{
			{ID: "c1", Name: "miner-1", Pos: Pos{X: 6, Y: 5, Room: "W1N1"}},
			{ID: "c2", Name: "miner-2", Pos: Pos{X: 6, Y: 5, Room: "W1N1"}},
		},
	}
	idx := NewIndex(gs)

	if _, ok := idx.Object("s1"); !ok {
		t.Error("expected source s1 to be indexed")
	}
	if _, ok := idx.Object("missing"); ok {
		t.Error("unexpected object for missing id")
	}
	if c, ok := idx.Creep("miner-2"); !ok || c.ID != "c2" {
		t.Errorf("Creep(miner-2) = %v, %v", c, ok)
	}
	if got := len(idx.CreepsAt(Pos{X: 6, Y: 5, Room: "W1N1"})); got != 2 {
		t.Errorf("CreepsAt = %d creeps, want 2", got)
	}
	if got := len(idx.OwnedRooms()); got != 1 {
		t.Errorf("OwnedRooms = %d, want 1", got)
	}

	sources := ObjectsByID[*Source](idx, []string{"s1", "gone", "c1"})
	if len(sources) != 1 || sources[0].ID != "s1" {
		t.Errorf("ObjectsByID = %v, want only s1", sources)
	}
}

func TestClosest(t *testing.T) {
	from := Pos{X: 10, Y: 10, Room: "W1N1"}
	srcs := []*Source{
		{ID: "far", Pos: Pos{X: 17, Y: 10, Room: "W1N1"}},
		{ID: "near", Pos: Pos{X: 13, Y: 10, Room: "W1N1"}},
	}
	got, ok := Closest(from, srcs)
	if !ok || got.ID != "near" {
		t.Errorf("Closest = %v, want near", got)
	}
	if _, ok := Closest[*Source](from, nil); ok {
		t.Error("Closest of empty slice should report false")
	}
}
