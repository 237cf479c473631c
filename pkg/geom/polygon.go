package geom

import (
	"fmt"
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// Point is a vertex in the plane.
type Point struct {
	X, Y float64
}

// Polygon is a 2D polygon, possibly with multiple disjoint contours and
// holes. The zero value is the empty polygon.
type Polygon struct {
	contours polyclip.Polygon
}

// FromRing builds a single-contour polygon from a vertex ring. The ring
// must not be self-intersecting; closure is implicit.
func FromRing(pts []Point) Polygon {
	var c polyclip.Contour
	for _, p := range pts {
		c.Add(polyclip.Point{X: p.X, Y: p.Y})
	}
	return Polygon{contours: polyclip.Polygon{c}}
}

// Rect builds an axis-aligned rectangle polygon.
func Rect(minX, minY, maxX, maxY float64) Polygon {
	return FromRing([]Point{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY},
	})
}

// minArea is the measure below which a polygon is treated as degenerate.
const minArea = 1e-12

// Area returns the total enclosed area. Holes subtract from the total.
func (p Polygon) Area() float64 {
	var sum float64
	for _, c := range p.contours {
		sum += signedArea(c)
	}
	return math.Abs(sum)
}

// signedArea computes the shoelace area of a single contour. Contours
// produced by boolean operations wind holes opposite to shells, so the
// signed values cancel correctly when summed.
func signedArea(c polyclip.Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return sum / 2
}

// IsEmpty reports whether the polygon encloses no area.
func (p Polygon) IsEmpty() bool {
	return p.Area() < minArea
}

// BoundingBox returns the axis-aligned bounding box of all contours.
// ok is false for the empty polygon.
func (p Polygon) BoundingBox() (min, max Point, ok bool) {
	first := true
	for _, c := range p.contours {
		for _, pt := range c {
			if first {
				min = Point{pt.X, pt.Y}
				max = min
				first = false
				continue
			}
			min.X = math.Min(min.X, pt.X)
			min.Y = math.Min(min.Y, pt.Y)
			max.X = math.Max(max.X, pt.X)
			max.Y = math.Max(max.Y, pt.Y)
		}
	}
	return min, max, !first
}

// Contains reports whether pt lies inside the polygon, using even-odd
// ray casting across all contours so holes are respected.
func (p Polygon) Contains(pt Point) bool {
	inside := false
	for _, c := range p.contours {
		n := len(c)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			if (c[i].Y > pt.Y) != (c[j].Y > pt.Y) {
				x := c[j].X + (pt.Y-c[i].Y)/(c[j].Y-c[i].Y)*(c[j].X-c[i].X)
				if pt.X < x {
					inside = !inside
				}
			}
		}
	}
	return inside
}

// construct runs a boolean operation, converting any panic from
// numerically degenerate input into an error so callers can fall back.
// Non-finite coordinates are rejected up front: the sweep does not
// terminate reliably on them.
func construct(op polyclip.Op, subject, clip polyclip.Polygon) (result polyclip.Polygon, err error) {
	if !finite(subject) || !finite(clip) {
		return nil, fmt.Errorf("polygon has non-finite coordinates")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("polygon boolean operation failed: %v", r)
		}
	}()
	return subject.Construct(op, clip), nil
}

func finite(p polyclip.Polygon) bool {
	for _, c := range p {
		for _, pt := range c {
			if math.IsNaN(pt.X) || math.IsInf(pt.X, 0) ||
				math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
				return false
			}
		}
	}
	return true
}

// Intersect returns the set intersection of p and q.
func (p Polygon) Intersect(q Polygon) (Polygon, error) {
	if len(p.contours) == 0 || len(q.contours) == 0 {
		return Polygon{}, nil
	}
	r, err := construct(polyclip.INTERSECTION, p.contours, q.contours)
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{contours: r}, nil
}

// Union returns the set union of p and q.
func (p Polygon) Union(q Polygon) (Polygon, error) {
	if len(p.contours) == 0 {
		return q, nil
	}
	if len(q.contours) == 0 {
		return p, nil
	}
	r, err := construct(polyclip.UNION, p.contours, q.contours)
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{contours: r}, nil
}

// Subtract returns p with q removed.
func (p Polygon) Subtract(q Polygon) (Polygon, error) {
	if len(p.contours) == 0 || len(q.contours) == 0 {
		return p, nil
	}
	r, err := construct(polyclip.DIFFERENCE, p.contours, q.contours)
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{contours: r}, nil
}

// UnionAll unions a slice of polygons, pairing adjacent polygons at each
// level so the boolean tree stays balanced.
func UnionAll(polys []Polygon) (Polygon, error) {
	if len(polys) == 0 {
		return Polygon{}, nil
	}
	for len(polys) > 1 {
		next := make([]Polygon, 0, (len(polys)+1)/2)
		for i := 0; i < len(polys); i += 2 {
			if i+1 == len(polys) {
				next = append(next, polys[i])
				continue
			}
			u, err := polys[i].Union(polys[i+1])
			if err != nil {
				return Polygon{}, err
			}
			next = append(next, u)
		}
		polys = next
	}
	return polys[0], nil
}
