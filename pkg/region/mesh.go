package region

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
)

// sizeEstimateCells controls the grid resolution used when estimating a
// mesh region's volume along its largest extent.
const sizeEstimateCells = 40

// classifyCells controls the grid resolution used to classify an
// intersection result as volumetric, surface-degenerate, or empty.
const classifyCells = 25

// MeshVolume is a 3D volume backed by a signed distance field. It has no
// exact boundary-offset operation; erosion and dilation go through a
// voxel approximation.
type MeshVolume struct {
	dist.Var
	sdf  sdf.SDF3
	size float64 // cached volume estimate, negative until computed
}

// NewMeshVolume wraps a signed distance field as a volume region.
func NewMeshVolume(s sdf.SDF3) *MeshVolume {
	return &MeshVolume{sdf: s, size: -1}
}

// Box builds a box-shaped volume of the given size centered at center.
func Box(size, center geom.Vector) *MeshVolume {
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, 0)
	if err != nil {
		panic(fmt.Sprintf("region: sdf.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: center.X, Y: center.Y, Z: center.Z})
	return NewMeshVolume(sdf.Transform3D(s, m))
}

// SDF returns the underlying signed distance field.
func (m *MeshVolume) SDF() sdf.SDF3 { return m.sdf }

func (m *MeshVolume) Dependencies() []dist.Node { return nil }

func (m *MeshVolume) Dimensionality() int { return 3 }

// Extents returns the size of the volume's bounding box.
func (m *MeshVolume) Extents() geom.Vector {
	bb := m.sdf.BoundingBox()
	return geom.Vector{X: bb.Max.X - bb.Min.X, Y: bb.Max.Y - bb.Min.Y, Z: bb.Max.Z - bb.Min.Z}
}

// Size estimates the enclosed volume by counting occupied voxels at a
// resolution proportional to the bounding box. The estimate is cached.
func (m *MeshVolume) Size() float64 {
	if m.size < 0 {
		ext := m.Extents().MaxExtent()
		if ext <= 0 {
			m.size = 0
			return 0
		}
		m.size = m.Voxelized(ext/sizeEstimateCells, false).Size()
	}
	return m.size
}

// Voxelized approximates the volume on a grid of the given pitch by
// sampling the distance field at cell centers. When lazy is true the
// grid is built on first use.
func (m *MeshVolume) Voxelized(pitch float64, lazy bool) *Voxel {
	bb := m.sdf.BoundingBox()
	origin := geom.Vector{X: bb.Min.X - pitch, Y: bb.Min.Y - pitch, Z: bb.Min.Z - pitch}
	s := m.sdf
	build := func() map[[3]int]struct{} {
		return sampleGrid(s, origin, geom.Vector{X: bb.Max.X + pitch, Y: bb.Max.Y + pitch, Z: bb.Max.Z + pitch}, pitch)
	}
	v := &Voxel{pitch: pitch, origin: origin}
	if lazy {
		v.build = build
	} else {
		v.cells = build()
	}
	return v
}

// Intersect supports mesh and voxel operands. Mesh-mesh intersections
// are classified: a result with no interior but with surface contact is
// returned as a MeshSurface so callers can treat it as unreliable.
func (m *MeshVolume) Intersect(other Region) Region {
	switch o := other.(type) {
	case *Empty:
		return o
	case *Workspace:
		return m.Intersect(o.Region)
	case *MeshVolume:
		lo, hi, ok := boxIntersection(m.sdf.BoundingBox(), o.sdf.BoundingBox())
		if !ok {
			return NewEmpty()
		}
		return classifyVolume(sdf.Intersect3D(m.sdf, o.sdf), lo, hi)
	case *Voxel:
		return m.Voxelized(o.Pitch(), false).Intersect(o)
	}
	return nil
}

// MeshSurface is a 2D surface embedded in 3D space. The pruner never
// narrows surfaces; the type exists so volume intersections that
// degenerate to surface contact can be recognized and skipped.
type MeshSurface struct {
	dist.Var
	sdf sdf.SDF3
}

// NewMeshSurface wraps a signed distance field as a surface region.
func NewMeshSurface(s sdf.SDF3) *MeshSurface { return &MeshSurface{sdf: s} }

func (m *MeshSurface) Dependencies() []dist.Node { return nil }

func (m *MeshSurface) Dimensionality() int { return 2 }

// Size of a mesh surface is uncomputable here.
func (m *MeshSurface) Size() float64 { return math.NaN() }

func (m *MeshSurface) Intersect(other Region) Region {
	if e, ok := other.(*Empty); ok {
		return e
	}
	return nil
}

// vec3 converts a geom vector to the SDF library's vector type.
func vec3(p geom.Vector) v3.Vec { return v3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// sampleGrid marks every cell whose center lies inside the field.
func sampleGrid(s sdf.SDF3, lo, hi geom.Vector, pitch float64) map[[3]int]struct{} {
	cells := make(map[[3]int]struct{})
	nx := int(math.Ceil((hi.X - lo.X) / pitch))
	ny := int(math.Ceil((hi.Y - lo.Y) / pitch))
	nz := int(math.Ceil((hi.Z - lo.Z) / pitch))
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				center := v3.Vec{
					X: lo.X + (float64(i)+0.5)*pitch,
					Y: lo.Y + (float64(j)+0.5)*pitch,
					Z: lo.Z + (float64(k)+0.5)*pitch,
				}
				if s.Evaluate(center) <= 0 {
					cells[[3]int{i, j, k}] = struct{}{}
				}
			}
		}
	}
	return cells
}

// boxIntersection intersects two bounding boxes; ok is false when they
// are disjoint.
func boxIntersection(a, b sdf.Box3) (lo, hi geom.Vector, ok bool) {
	lo = geom.Vector{X: math.Max(a.Min.X, b.Min.X), Y: math.Max(a.Min.Y, b.Min.Y), Z: math.Max(a.Min.Z, b.Min.Z)}
	hi = geom.Vector{X: math.Min(a.Max.X, b.Max.X), Y: math.Min(a.Max.Y, b.Max.Y), Z: math.Min(a.Max.Z, b.Max.Z)}
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return lo, hi, false
	}
	return lo, hi, true
}

// classifyVolume samples an intersection field over the given bounding
// box and classifies the result: volumetric if any cell center is
// strictly interior, surface contact if the field only grazes zero, and
// empty otherwise.
func classifyVolume(s sdf.SDF3, lo, hi geom.Vector) Region {
	ext := hi.Sub(lo).MaxExtent()
	if ext <= 0 {
		return NewEmpty()
	}
	pitch := ext / classifyCells
	interior, surface := 0, 0
	nx := int(math.Ceil((hi.X - lo.X) / pitch))
	ny := int(math.Ceil((hi.Y - lo.Y) / pitch))
	nz := int(math.Ceil((hi.Z - lo.Z) / pitch))
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				center := v3.Vec{
					X: lo.X + (float64(i)+0.5)*pitch,
					Y: lo.Y + (float64(j)+0.5)*pitch,
					Z: lo.Z + (float64(k)+0.5)*pitch,
				}
				d := s.Evaluate(center)
				switch {
				case d <= -pitch/2:
					interior++
				case d <= pitch/2:
					surface++
				}
			}
		}
	}
	switch {
	case interior > 0:
		return NewMeshVolume(s)
	case surface > 0:
		return NewMeshSurface(s)
	default:
		return NewEmpty()
	}
}
