package region

import (
	"math/rand"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
)

// PointIn is the distribution of a point drawn uniformly from a region.
// It is the shape the containment and visibility matchers recognize.
type PointIn struct {
	dist.Var
	dist.Leaf
	Region Region
}

// NewPointIn returns a uniform-point distribution over r.
func NewPointIn(r Region) *PointIn { return &PointIn{Region: r} }

func (p *PointIn) Dependencies() []dist.Node { return []dist.Node{p.Region} }

// sampleAttempts bounds rejection sampling inside a bounding box.
const sampleAttempts = 1000

// Sample draws a uniform point from the region. ok is false when the
// region's representation does not support direct sampling or rejection
// sampling fails to land inside it.
func (p *PointIn) Sample(rng *rand.Rand) (geom.Vector, bool) {
	switch r := p.Region.(type) {
	case *Workspace:
		return NewPointIn(r.Region).Sample(rng)
	case *Polygonal:
		min, max, ok := r.Polygon().BoundingBox()
		if !ok {
			return geom.Vector{}, false
		}
		for i := 0; i < sampleAttempts; i++ {
			pt := geom.Point{
				X: min.X + rng.Float64()*(max.X-min.X),
				Y: min.Y + rng.Float64()*(max.Y-min.Y),
			}
			if r.Polygon().Contains(pt) {
				return geom.Vector{X: pt.X, Y: pt.Y}, true
			}
		}
		return geom.Vector{}, false
	case *Voxel:
		cells := r.sortedCells()
		if len(cells) == 0 {
			return geom.Vector{}, false
		}
		c := cells[rng.Intn(len(cells))]
		base := r.center(c)
		half := r.Pitch() / 2
		return geom.Vector{
			X: base.X + (rng.Float64()-0.5)*2*half,
			Y: base.Y + (rng.Float64()-0.5)*2*half,
			Z: base.Z + (rng.Float64()-0.5)*2*half,
		}, true
	}
	return geom.Vector{}, false
}
