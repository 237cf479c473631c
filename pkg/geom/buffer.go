package geom

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// diskSegments is the number of sides used to approximate a disk when
// buffering. The approximating polygon is circumscribed, so a dilation
// always covers the true Minkowski sum and an erosion always removes at
// least the requested margin.
const diskSegments = 16

// Buffer returns the polygon grown (d > 0) or shrunk (d < 0) by d. The
// disk is approximated by a circumscribed regular polygon: dilation
// over-approximates and erosion under-approximates the exact result,
// which is the conservative direction for both pruning callers.
func (p Polygon) Buffer(d float64) (Polygon, error) {
	switch {
	case d == 0 || len(p.contours) == 0:
		return p, nil
	case d > 0:
		return p.dilate(d)
	default:
		return p.erode(-d)
	}
}

// dilate computes the Minkowski sum of p with a circumscribed disk by
// unioning the polygon with a swept rectangle per edge and a disk
// polygon per vertex.
func (p Polygon) dilate(r float64) (Polygon, error) {
	pieces := []Polygon{p}
	for _, c := range p.contours {
		n := len(c)
		for i := 0; i < n; i++ {
			a, b := c[i], c[(i+1)%n]
			if quad, ok := edgeQuad(a, b, r); ok {
				pieces = append(pieces, quad)
			}
			pieces = append(pieces, diskAt(Point{a.X, a.Y}, r))
		}
	}
	return UnionAll(pieces)
}

// erode computes the Minkowski difference as the complement of the
// dilated complement, restricted to a padded bounding box.
func (p Polygon) erode(r float64) (Polygon, error) {
	min, max, ok := p.BoundingBox()
	if !ok {
		return Polygon{}, nil
	}
	pad := 2*r + 1
	box := Rect(min.X-pad, min.Y-pad, max.X+pad, max.Y+pad)
	complement, err := box.Subtract(p)
	if err != nil {
		return Polygon{}, err
	}
	grown, err := complement.dilate(r)
	if err != nil {
		return Polygon{}, err
	}
	return p.Subtract(grown)
}

// edgeQuad returns the rectangle swept by a disk of radius r moving from
// a to b. ok is false for degenerate (zero-length) edges.
func edgeQuad(a, b polyclip.Point, r float64) (Polygon, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Polygon{}, false
	}
	// Unit normal scaled to r.
	nx, ny := -dy/length*r, dx/length*r
	return FromRing([]Point{
		{a.X + nx, a.Y + ny},
		{b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny},
		{a.X - nx, a.Y - ny},
	}), true
}

// diskAt returns a regular polygon circumscribing the disk of radius r
// centered at c, so the disk is fully covered.
func diskAt(c Point, r float64) Polygon {
	// Circumradius of the circumscribed k-gon.
	cr := r / math.Cos(math.Pi/diskSegments)
	pts := make([]Point, diskSegments)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / diskSegments
		pts[i] = Point{c.X + cr*math.Cos(theta), c.Y + cr*math.Sin(theta)}
	}
	return FromRing(pts)
}
