package model

import (
	"fmt"
	"strconv"
)

// RoomSize is the side length of a room in tiles.
const RoomSize = 50

// Unreachable is returned by RangeTo when positions can't be compared.
const Unreachable = 1 << 30

type Pos struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Room string `json:"roomName"`
}

func (p Pos) String() string {
	return fmt.Sprintf("[%s %d,%d]", p.Room, p.X, p.Y)
}

// RangeTo returns the Chebyshev distance between two positions. Positions in
// different rooms are compared on the world grid so that "closest" still works
// across room borders.
func (p Pos) RangeTo(o Pos) int {
	if p.Room == o.Room {
		return max(abs(p.X-o.X), abs(p.Y-o.Y))
	}
	px, py, ok1 := worldXY(p)
	ox, oy, ok2 := worldXY(o)
	if !ok1 || !ok2 {
		return Unreachable
	}
	return max(abs(px-ox), abs(py-oy))
}

// InRangeTo reports whether o is within r tiles of p.
func (p Pos) InRangeTo(o Pos, r int) bool {
	return p.RangeTo(o) <= r
}

func (p Pos) IsNearTo(o Pos) bool { return p.InRangeTo(o, 1) }

func worldXY(p Pos) (int, int, bool) {
	rx, ry, ok := RoomCoords(p.Room)
	if !ok {
		return 0, 0, false
	}
	return rx*RoomSize + p.X, ry*RoomSize + p.Y, true
}

// RoomCoords parses a room name such as "W7N3" into grid coordinates.
// E0 is x=0 and W0 is x=-1; S0 is y=0 and N0 is y=-1.
func RoomCoords(name string) (int, int, bool) {
	if len(name) < 4 {
		return 0, 0, false
	}
	h := name[0]
	if h != 'W' && h != 'E' {
		return 0, 0, false
	}
	i := 1
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 1 || i >= len(name) {
		return 0, 0, false
	}
	x, err := strconv.Atoi(name[1:i])
	if err != nil {
		return 0, 0, false
	}
	v := name[i]
	if v != 'N' && v != 'S' {
		return 0, 0, false
	}
	y, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, 0, false
	}
	if h == 'W' {
		x = -x - 1
	}
	if v == 'N' {
		y = -y - 1
	}
	return x, y, true
}

// RoomDistance is the linear room distance between two room names.
func RoomDistance(a, b string) int {
	ax, ay, ok1 := RoomCoords(a)
	bx, by, ok2 := RoomCoords(b)
	if !ok1 || !ok2 {
		return Unreachable
	}
	return max(abs(ax-bx), abs(ay-by))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
