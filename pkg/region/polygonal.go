package region

import (
	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
)

// Polygonal is a 2D region with an exact polygon boundary and an
// optional orientation field assigning headings over the region.
type Polygonal struct {
	dist.Var
	poly        geom.Polygon
	Orientation *PolygonalVectorField
}

// NewPolygonal builds a polygonal region. The orientation field may be
// nil.
func NewPolygonal(p geom.Polygon, orientation *PolygonalVectorField) *Polygonal {
	return &Polygonal{poly: p, Orientation: orientation}
}

// Polygon returns the region's boundary polygon.
func (r *Polygonal) Polygon() geom.Polygon { return r.poly }

func (r *Polygonal) Dependencies() []dist.Node { return nil }

func (r *Polygonal) Dimensionality() int { return 2 }

func (r *Polygonal) Size() float64 { return r.poly.Area() }

// ToPolygon implements PolygonConvertible; the conversion is exact.
func (r *Polygonal) ToPolygon() (geom.Polygon, bool) { return r.poly, true }

// Buffer offsets the boundary by distance: negative erodes, positive
// dilates. Returns Empty when erosion consumes the whole region and nil
// when the offset computation fails.
func (r *Polygonal) Buffer(distance float64) Region {
	buffered, err := r.poly.Buffer(distance)
	if err != nil {
		return nil
	}
	if buffered.IsEmpty() {
		return NewEmpty()
	}
	return NewPolygonal(buffered, r.Orientation)
}

// Intersect supports polygonal, voxel (via its footprint), workspace,
// and empty operands. The result keeps r's orientation field.
func (r *Polygonal) Intersect(other Region) Region {
	switch o := other.(type) {
	case *Empty:
		return o
	case *Workspace:
		return r.Intersect(o.Region)
	case *Polygonal:
		return r.intersectPolygon(o.poly)
	case *Voxel:
		footprint, err := o.Footprint()
		if err != nil {
			return nil
		}
		return r.intersectPolygon(footprint)
	}
	return nil
}

func (r *Polygonal) intersectPolygon(q geom.Polygon) Region {
	result, err := r.poly.Intersect(q)
	if err != nil {
		return nil
	}
	if result.IsEmpty() {
		return NewEmpty()
	}
	return NewPolygonal(result, r.Orientation)
}
