package region

import (
	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
)

// FieldCell pairs a polygon cell with its heading. A nil heading means
// the heading is not constant within the cell.
type FieldCell struct {
	Polygon geom.Polygon
	Heading *float64
}

// PolygonalVectorField assigns headings over a polygonal partition of a
// region. Indexing the field by a position inside a cell yields that
// cell's heading.
type PolygonalVectorField struct {
	Name  string
	Cells []FieldCell
}

// Heading wraps a constant cell heading.
func Heading(h float64) *float64 { return &h }

// HeadingAt builds the yaw expression for the field indexed at position,
// in the canonical shape the scenario frontend produces and the heading
// matcher recognizes: the "yaw" attribute of field[position].
func (f *PolygonalVectorField) HeadingAt(position dist.Node) dist.Node {
	at := dist.NewMethodCall(dist.MethodFieldAt, f, position)
	return dist.NewAttribute(at, "yaw")
}
