package level

import (
	"math"
	"sync"
	"testing"
)

func TestResolveBoundary(t *testing.T) {
	// single floor tile at the origin, solid everywhere else
	g := Parse(".", 10, 1)
	r := 2.0

	p := Vec3{X: 3}
	if g.Resolve(&p, r) {
		t.Error("body touching the boundary should not collide")
	}
	if p.X != 3 {
		t.Errorf("position moved to %v", p)
	}

	p = Vec3{X: 4}
	if !g.Resolve(&p, r) {
		t.Error("body past the boundary should collide")
	}
	if p.X != 3 {
		t.Errorf("expected clamp to x=3, got %v", p.X)
	}
}

func TestResolveBothAxes(t *testing.T) {
	g := Parse(".", 10, 1)
	p := Vec3{X: -4, Z: 4}
	if !g.Resolve(&p, 2) {
		t.Fatal("expected collision")
	}
	if p.X != -3 || p.Z != 3 {
		t.Errorf("expected (-3,3), got (%v,%v)", p.X, p.Z)
	}
}

func TestResolveIdempotent(t *testing.T) {
	g := Parse("...\n...\n...", 10, 1)
	p := Vec3{X: 10, Z: 10}
	for i := 0; i < 2; i++ {
		if g.Resolve(&p, 2) {
			t.Errorf("call %d: open tile should not collide", i)
		}
		if p != (Vec3{X: 10, Z: 10}) {
			t.Errorf("call %d: position changed to %v", i, p)
		}
	}

	// after a clamp the second call sees the body at rest
	p = Vec3{X: 24}
	g.Resolve(&p, 2)
	before := p
	if g.Resolve(&p, 2) {
		t.Error("clamped body should not collide again")
	}
	if p != before {
		t.Errorf("position changed from %v to %v", before, p)
	}
}

func TestResolveInsideSolid(t *testing.T) {
	g := Parse(". ", 10, 1)
	p := Vec3{X: 10, Z: 1}
	if !g.Resolve(&p, 2) {
		t.Error("body inside a void tile should report a collision")
	}
	if p != (Vec3{X: 10, Z: 1}) {
		t.Errorf("position should not be adjusted, got %v", p)
	}
}

func TestResolveNonFinitePosition(t *testing.T) {
	g := Parse("...\n...\n...", 10, 1)
	for _, p := range []Vec3{
		{X: math.NaN(), Z: 10},
		{X: 10, Z: math.Inf(1)},
		{X: math.Inf(-1), Z: math.NaN()},
	} {
		q := p
		if !g.Resolve(&q, 2) {
			t.Errorf("%v: expected a collision", p)
		}
		if !(q.X == p.X || math.IsNaN(p.X)) || !(q.Z == p.Z || math.IsNaN(p.Z)) {
			t.Errorf("%v: position should not be adjusted, got %v", p, q)
		}
	}
}

func TestResolveDiagonalCorner(t *testing.T) {
	// (1,1) is past the end of row 1, so only the diagonal is solid
	g := Parse("..\n.", 10, 1)
	p := Vec3{X: 4, Z: 4}
	if !g.Resolve(&p, 2) {
		t.Fatal("expected corner collision")
	}
	want := 5 - math.Sqrt2
	if math.Abs(p.X-want) > 1e-9 || math.Abs(p.Z-want) > 1e-9 {
		t.Errorf("expected (%v,%v), got (%v,%v)", want, want, p.X, p.Z)
	}
	d := math.Hypot(p.X-5, p.Z-5)
	if math.Abs(d-2) > 1e-9 {
		t.Errorf("expected distance to corner 2, got %v", d)
	}

	p = Vec3{X: 2, Z: 2}
	if g.Resolve(&p, 2) {
		t.Error("body clear of the corner should not collide")
	}
}

func TestResolveOnCorner(t *testing.T) {
	g := Parse("..\n.", 10, 1)
	p := Vec3{X: 5 - 1e-12, Z: 5 - 1e-12}
	g.Resolve(&p, 2)
	if d := math.Hypot(p.X-5, p.Z-5); math.Abs(d-2) > 1e-6 {
		t.Errorf("expected body pushed 2 from the corner, got %v", d)
	}
}

func TestResolveConcurrent(t *testing.T) {
	g := Parse("...\n...\n...", 10, 1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				p := Vec3{X: 24, Z: float64(i)}
				if !g.Resolve(&p, 2) || p.X != 23 {
					t.Errorf("goroutine %d: expected clamp to 23, got %v", i, p.X)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
