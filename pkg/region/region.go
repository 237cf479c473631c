// Package region implements the geometric set representations the
// pruning engine narrows: exact 2D polygons, SDF-backed 3D volumes and
// surfaces, voxel grid approximations, and the workspace wrapper.
// Regions participate in the sampling graph (they embed conditioning
// state and expose dependencies) so derived regions can be checked for
// circular conditioning before they are used to restrict a position.
package region

import (
	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
)

// Region is a geometric set with a dimensionality and a size measure.
type Region interface {
	dist.Node
	// Dimensionality returns 0 through 3, or -1 when undefined.
	Dimensionality() int
	// Size returns the region's measure for its dimensionality (length,
	// area, or volume). NaN when uncomputable.
	Size() float64
	// Intersect returns the intersection with other, Empty when the
	// result encloses nothing, or nil when the combination of
	// representations is unsupported.
	Intersect(other Region) Region
}

// Bufferable is implemented by regions with an exact boundary
// representation that supports a signed offset: negative distances
// erode, positive distances dilate.
type Bufferable interface {
	// Buffer returns the offset region, or nil when the operation fails.
	Buffer(distance float64) Region
}

// PolygonConvertible is implemented by regions with a best-effort exact
// conversion to a 2D polygon.
type PolygonConvertible interface {
	ToPolygon() (geom.Polygon, bool)
}

// Voxelizable is implemented by regions that can be approximated by a
// voxel grid.
type Voxelizable interface {
	// Voxelized approximates the region on a grid with the given pitch.
	// When lazy is true the grid is built on first use.
	Voxelized(pitch float64, lazy bool) *Voxel
	// Extents returns the size of the region's bounding box.
	Extents() geom.Vector
}

// Empty is the unique bottom element: a region enclosing nothing. Any
// pruning result that collapses to Empty signals scenario infeasibility.
type Empty struct {
	dist.Var
}

// NewEmpty returns the empty region.
func NewEmpty() *Empty { return &Empty{} }

func (e *Empty) Dependencies() []dist.Node { return nil }

// Dimensionality of the empty region is 0 by convention.
func (e *Empty) Dimensionality() int { return 0 }

func (e *Empty) Size() float64 { return 0 }

func (e *Empty) Intersect(other Region) Region { return e }

// Workspace wraps a scenario's top-level region. Pattern matchers unwrap
// it before pruning.
type Workspace struct {
	dist.Var
	Region Region
}

// NewWorkspace wraps r as a workspace.
func NewWorkspace(r Region) *Workspace { return &Workspace{Region: r} }

func (w *Workspace) Dependencies() []dist.Node {
	if w.Region == nil {
		return nil
	}
	return []dist.Node{w.Region}
}

func (w *Workspace) Dimensionality() int { return w.Region.Dimensionality() }

func (w *Workspace) Size() float64 { return w.Region.Size() }

func (w *Workspace) Intersect(other Region) Region { return w.Region.Intersect(other) }
