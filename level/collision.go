package level

import "math"

// Resolve pushes a circle of radius r at p out of any solid tiles around it
// and reports whether it touched one. p is updated in place. The caller must
// keep r < TileSize. A position with a NaN or infinite coordinate is treated
// as inside a solid tile and left alone.
//
// Cardinal faces are clamped before diagonal corners are tested, since a face
// clamp can move the body clear of a corner. Resolve keeps no state between
// calls and is safe to use from several goroutines on the same Grid.
func (g *Grid) Resolve(p *Vec3, r float64) bool {
	if !finite(p.X) || !finite(p.Z) {
		return true
	}
	tile := g.WorldToTile(*p)
	if !g.Walkable(tile) {
		return true
	}

	half := g.TileSize * 0.5
	collided := false

	for _, d := range Cardinal {
		n := tile.Add(d)
		if g.Walkable(n) {
			continue
		}
		cx := float64(n.X) * g.TileSize
		cz := float64(n.Y) * g.TileSize
		if d.X > 0 && p.X+r > cx-half {
			p.X = cx - half - r
			collided = true
		} else if d.X < 0 && p.X-r < cx+half {
			p.X = cx + half + r
			collided = true
		}
		if d.Y > 0 && p.Z+r > cz-half {
			p.Z = cz - half - r
			collided = true
		} else if d.Y < 0 && p.Z-r < cz+half {
			p.Z = cz + half + r
			collided = true
		}
	}

	r2 := r * r
	for _, d := range Diagonal {
		n := tile.Add(d)
		if g.Walkable(n) {
			continue
		}
		// corner of n nearest to the current tile's centre
		cornerX := float64(n.X)*g.TileSize - float64(d.X)*half
		cornerZ := float64(n.Y)*g.TileSize - float64(d.Y)*half

		dx := p.X - cornerX
		dz := p.Z - cornerZ
		dist2 := dx*dx + dz*dz
		if dist2 >= r2 {
			continue
		}
		collided = true
		if dist2 == 0 {
			dx, dz = -float64(d.X), -float64(d.Y)
			dist2 = 2
		}
		scale := r / math.Sqrt(dist2)
		p.X = cornerX + dx*scale
		p.Z = cornerZ + dz*scale
	}

	return collided
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
