package model

// TerrainType classifies a single room tile.
type TerrainType byte

const (
	Plain TerrainType = 0
	Wall  TerrainType = 1
	Swamp TerrainType = 2
)

// RoomTerrain is the 50x50 tile grid of one room, row-major.
// A room without terrain data is treated as all plain.
type RoomTerrain struct {
	Grid []TerrainType
}

func NewRoomTerrain(grid []TerrainType) *RoomTerrain {
	return &RoomTerrain{Grid: grid}
}

// At returns the terrain at (x, y). Out-of-bounds tiles are walls so that
// neighbour scans never step off the room edge.
func (t *RoomTerrain) At(x, y int) TerrainType {
	if x < 0 || x >= RoomSize || y < 0 || y >= RoomSize {
		return Wall
	}
	if t == nil || len(t.Grid) != RoomSize*RoomSize {
		return Plain
	}
	return t.Grid[y*RoomSize+x]
}

func (t *RoomTerrain) Walkable(x, y int) bool {
	return t.At(x, y) != Wall
}

// AccessTiles counts the walkable tiles adjacent to p. Used to cap how many
// creeps can work a source at once.
func (t *RoomTerrain) AccessTiles(p Pos) int {
	n := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if t.Walkable(p.X+dx, p.Y+dy) {
				n++
			}
		}
	}
	return n
}
