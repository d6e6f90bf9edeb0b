package level

import (
	"math"
	"testing"
)

func wallTiles(l *Layout) map[Tile]int {
	out := map[Tile]int{}
	for _, p := range l.Placements {
		if p.Kind == KindWall {
			out[p.Tile]++
		}
	}
	return out
}

func TestBuildIsolatedFloor(t *testing.T) {
	for _, ascii := range []string{"   \n . \n   ", "."} {
		g := Parse(ascii, 1, 1)
		l := Build(g)

		if n := l.Count(KindFloor); n != 1 {
			t.Errorf("%q: expected 1 floor, got %d", ascii, n)
		}
		walls := wallTiles(l)
		if len(walls) != 4 || l.Count(KindWall) != 4 {
			t.Fatalf("%q: expected 4 distinct walls, got %d placements at %v", ascii, l.Count(KindWall), walls)
		}
		floor := l.Placements[0].Tile
		for _, d := range Cardinal {
			if walls[floor.Add(d)] != 1 {
				t.Errorf("%q: expected one wall at %v", ascii, floor.Add(d))
			}
		}
	}
}

func TestBuildSharedWallsPlacedOnce(t *testing.T) {
	// (1,0) and (0,1) border both floors
	g := Parse(". \n .", 1, 1)
	l := Build(g)

	walls := wallTiles(l)
	if len(walls) != 6 {
		t.Errorf("expected 6 distinct walls, got %d", len(walls))
	}
	for tile, n := range walls {
		if n != 1 {
			t.Errorf("wall at %v placed %d times", tile, n)
		}
	}
	if l.Count(KindWall) != len(walls) {
		t.Errorf("expected %d wall placements, got %d", len(walls), l.Count(KindWall))
	}
}

func TestBuildWallsFollowFloors(t *testing.T) {
	g := Parse("s..\n. .\n..e", 2, 1)
	l := Build(g)

	if n := l.Count(KindExit); n != 1 {
		t.Errorf("expected 1 exit, got %d", n)
	}
	if n := l.Count(KindFloor); n != 7 {
		t.Errorf("expected 7 floors, got %d", n)
	}
	for _, p := range l.Placements {
		if p.Kind == KindWall && g.Walkable(p.Tile) {
			t.Errorf("wall placed on walkable tile %v", p.Tile)
		}
		if p.Position != g.TileToWorld(p.Tile) {
			t.Errorf("placement %v at %v, want %v", p.Tile, p.Position, g.TileToWorld(p.Tile))
		}
	}
	if _, ok := wallTiles(l)[Tile{1, 1}]; !ok {
		t.Error("expected a wall in the middle hole")
	}
}

func TestBuildOrigin(t *testing.T) {
	g := Parse(".", 4, 1)
	l := Build(g)
	if l.Origin() != (Vec3{X: 2, Z: 2}) {
		t.Errorf("expected origin (2,0,2), got %v", l.Origin())
	}
	if got := l.World(0); got != (Vec3{X: 2, Z: 2}) {
		t.Errorf("expected world (2,0,2), got %v", got)
	}

	o := l.Origin()
	o.X = 100
	if l.Origin() != (Vec3{X: 2, Z: 2}) || l.World(0) != (Vec3{X: 2, Z: 2}) {
		t.Errorf("origin changed through a copy: %v", l.Origin())
	}
}

func TestExitFacesCorridor(t *testing.T) {
	g := Parse(".e", 1, 1)
	l := Build(g)

	var exit *Placement
	for i := range l.Placements {
		if l.Placements[i].Kind == KindExit {
			exit = &l.Placements[i]
		}
	}
	if exit == nil {
		t.Fatal("no exit placed")
	}
	if math.Abs(exit.Rotation-(-math.Pi/2)) > 1e-9 {
		t.Errorf("expected exit yaw -pi/2, got %v", exit.Rotation)
	}

	// an exit doesn't request walls of its own
	if n := l.Count(KindWall); n != 3 {
		t.Errorf("expected 3 walls around the floor, got %d", n)
	}
}

func TestExitWithoutNeighbours(t *testing.T) {
	l := Build(Parse("e", 1, 1))
	if len(l.Placements) != 1 || l.Placements[0].Rotation != 0 {
		t.Errorf("expected a lone exit with zero yaw, got %+v", l.Placements)
	}
}

func TestBuildBundledLevel(t *testing.T) {
	g, _, err := Load(DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	l := Build(g)
	if l.Count(KindExit) != 1 {
		t.Errorf("expected 1 exit, got %d", l.Count(KindExit))
	}
	if l.Count(KindWall) == 0 {
		t.Error("expected walls")
	}
}
