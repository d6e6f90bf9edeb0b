// Package level holds the tile grid a maze is played on: parsing the ASCII
// layout, turning it into placement records for the renderer, and resolving
// circular bodies against it.
package level

import "math"

// Tile symbols
const (
	SymVoid  = ' '
	SymStart = 's'
	SymExit  = 'e'
)

// Tile is a grid coordinate. X is the column, Y is the row.
type Tile struct {
	X, Y int
}

// Add returns t offset by d
func (t Tile) Add(d Tile) Tile {
	return Tile{t.X + d.X, t.Y + d.Y}
}

// Vec3 is a world-space position. Y is up, tiles lie on the X/Z plane.
type Vec3 struct {
	X, Y, Z float64
}

// Cardinal and diagonal neighbour offsets, in resolution order.
var (
	Cardinal = [4]Tile{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	Diagonal = [4]Tile{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
)

// Grid is a parsed level
type Grid struct {
	data       [][]byte
	Rows       int
	Columns    int
	TileSize   float64
	WallHeight float64
	Start      Tile
}

// Parse builds a Grid from ASCII level text. Rows are split on '\n', '\r' is
// dropped and rows may have different lengths. Parse never fails; empty or
// odd input just yields a small or empty grid.
func Parse(ascii string, tileSize, wallHeight float64) *Grid {
	g := &Grid{TileSize: tileSize, WallHeight: wallHeight}

	row := []byte{}
	for i := 0; i < len(ascii); i++ {
		c := ascii[i]
		switch c {
		case '\r':
			continue
		case '\n':
			g.data = append(g.data, row)
			row = []byte{}
			continue
		}
		row = append(row, c)
		if len(row) > g.Columns {
			g.Columns = len(row)
		}
		if c == SymStart {
			// last one wins
			g.Start = Tile{X: len(row) - 1, Y: len(g.data)}
		}
	}
	g.data = append(g.data, row)
	g.Rows = len(g.data)
	return g
}

// Symbol returns the symbol at t, or SymVoid when t is outside the grid
func (g *Grid) Symbol(t Tile) byte {
	if t.X < 0 || t.Y < 0 || t.Y >= g.Rows || t.X >= len(g.data[t.Y]) {
		return SymVoid
	}
	return g.data[t.Y][t.X]
}

// Walkable reports whether t is inside its (possibly short) row and not void.
func (g *Grid) Walkable(t Tile) bool {
	return g.Symbol(t) != SymVoid
}

// TileToWorld returns the world position of a tile centre
func (g *Grid) TileToWorld(t Tile) Vec3 {
	return Vec3{X: float64(t.X) * g.TileSize, Z: float64(t.Y) * g.TileSize}
}

// WorldToTile returns the tile whose centre is nearest to p on the X/Z plane.
// p must be finite; NaN and infinite coordinates have no tile.
func (g *Grid) WorldToTile(p Vec3) Tile {
	return Tile{
		X: int(math.Floor((p.X + 0.5*g.TileSize) / g.TileSize)),
		Y: int(math.Floor((p.Z + 0.5*g.TileSize) / g.TileSize)),
	}
}

// ClosestWalkable does a breadth-first search over cardinal neighbours,
// bounded to the grid's extents, and returns the nearest walkable tile.
// It reports false when the grid has no walkable tile at all.
func (g *Grid) ClosestWalkable(t Tile) (Tile, bool) {
	if g.Walkable(t) {
		return t, true
	}
	inBox := func(c Tile) bool {
		return c.X >= 0 && c.Y >= 0 && c.X < g.Columns && c.Y < g.Rows
	}

	// Clamp the origin into the bounding box so the search can start.
	start := Tile{
		X: clampInt(t.X, 0, g.Columns-1),
		Y: clampInt(t.Y, 0, g.Rows-1),
	}
	if !inBox(start) {
		return t, false
	}

	seen := map[Tile]bool{start: true}
	queue := []Tile{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if g.Walkable(cur) {
			return cur, true
		}
		for _, d := range Cardinal {
			n := cur.Add(d)
			if inBox(n) && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return t, false
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
