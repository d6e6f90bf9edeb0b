package level

import (
	"math"
	"sort"
)

// Kind is the type of structure a renderer should instantiate
type Kind int

const (
	KindFloor Kind = iota
	KindWall
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindFloor:
		return "floor"
	case KindWall:
		return "wall"
	case KindExit:
		return "exit"
	}
	return "unknown"
}

// Placement is one structure to instantiate. Position is relative to the
// layout origin, Rotation is yaw in radians.
type Placement struct {
	Kind     Kind
	Tile     Tile
	Position Vec3
	Rotation float64
}

// Layout is the static geometry of a level. The root transform shared by
// every placement is fixed by Build.
type Layout struct {
	origin     Vec3
	Placements []Placement
}

// Origin returns the root transform applied to every placement
func (l *Layout) Origin() Vec3 {
	return l.origin
}

// World returns the world position of placement i
func (l *Layout) World(i int) Vec3 {
	p := l.Placements[i].Position
	return Vec3{X: p.X + l.origin.X, Y: p.Y + l.origin.Y, Z: p.Z + l.origin.Z}
}

// Count returns the number of placements of the given kind
func (l *Layout) Count(kind Kind) int {
	n := 0
	for _, p := range l.Placements {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

// wallSet maps column -> set of rows that need a wall
type wallSet map[int]map[int]struct{}

func (w wallSet) mark(t Tile) {
	rows, ok := w[t.X]
	if !ok {
		rows = make(map[int]struct{})
		w[t.X] = rows
	}
	rows[t.Y] = struct{}{}
}

// tiles returns marked tiles ordered by column, then row
func (w wallSet) tiles() []Tile {
	out := make([]Tile, 0, len(w)*2)
	for x, rows := range w {
		for y := range rows {
			out = append(out, Tile{x, y})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// Build walks the grid once and returns the placements needed to render it.
// Walls are marked first and emitted after the pass so a void tile bordered
// by several floors still gets a single wall.
func Build(g *Grid) *Layout {
	l := &Layout{
		origin: Vec3{X: g.TileSize * 0.5, Z: g.TileSize * 0.5},
	}
	walls := wallSet{}

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < len(g.data[y]); x++ {
			t := Tile{x, y}
			sym := g.data[y][x]
			if sym == SymVoid {
				continue
			}
			if sym == SymExit {
				l.Placements = append(l.Placements, Placement{
					Kind:     KindExit,
					Tile:     t,
					Position: g.TileToWorld(t),
					Rotation: exitYaw(g, t),
				})
				continue
			}
			l.Placements = append(l.Placements, Placement{
				Kind:     KindFloor,
				Tile:     t,
				Position: g.TileToWorld(t),
			})
			for _, d := range Cardinal {
				if n := t.Add(d); !g.Walkable(n) {
					walls.mark(n)
				}
			}
		}
	}

	for _, t := range walls.tiles() {
		l.Placements = append(l.Placements, Placement{
			Kind:     KindWall,
			Tile:     t,
			Position: g.TileToWorld(t),
		})
	}
	return l
}

// exitYaw turns an exit to face its corridor. A walkable neighbour with a
// solid tile opposite it is preferred; otherwise any walkable neighbour.
func exitYaw(g *Grid, t Tile) float64 {
	fallback := -1
	for i, d := range Cardinal {
		if !g.Walkable(t.Add(d)) {
			continue
		}
		if !g.Walkable(t.Add(Tile{-d.X, -d.Y})) {
			return yawFor(d)
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return 0
	}
	return yawFor(Cardinal[fallback])
}

// yawFor returns the rotation about Y that points local +Z along d
func yawFor(d Tile) float64 {
	return math.Atan2(float64(d.X), float64(d.Y))
}
