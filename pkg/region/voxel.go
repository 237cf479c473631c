package region

import (
	"math"
	"sort"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
)

// Voxel approximates a region by an axis-aligned grid of occupied cells.
// It supports signed dilation by a 3x3x3-connectivity structuring unit,
// which mesh-backed regions use in place of an exact boundary offset.
type Voxel struct {
	dist.Var
	pitch  float64
	origin geom.Vector // world coordinate of cell (0,0,0)'s min corner
	cells  map[[3]int]struct{}
	build  func() map[[3]int]struct{} // deferred grid construction
}

// Pitch returns the grid's cell edge length.
func (v *Voxel) Pitch() float64 { return v.pitch }

// grid forces lazy construction and returns the occupied cell set.
func (v *Voxel) grid() map[[3]int]struct{} {
	if v.cells == nil && v.build != nil {
		v.cells = v.build()
		v.build = nil
	}
	return v.cells
}

// Count returns the number of occupied cells.
func (v *Voxel) Count() int { return len(v.grid()) }

func (v *Voxel) Dependencies() []dist.Node { return nil }

func (v *Voxel) Dimensionality() int { return 3 }

func (v *Voxel) Size() float64 {
	return float64(len(v.grid())) * v.pitch * v.pitch * v.pitch
}

// Dilation grows (iterations > 0) or erodes (iterations < 0) the voxel
// set by repeated passes of a 3x3x3 structuring unit. Each pass moves
// the boundary by at most pitch along any axis, so n passes bound the
// change by n * pitch * sqrt(3) in Euclidean distance.
func (v *Voxel) Dilation(iterations int) *Voxel {
	cur := v.grid()
	n := iterations
	erode := n < 0
	if erode {
		n = -n
	}
	for pass := 0; pass < n; pass++ {
		if erode {
			cur = erodeOnce(cur)
		} else {
			cur = dilateOnce(cur)
		}
	}
	if iterations == 0 {
		copied := make(map[[3]int]struct{}, len(cur))
		for c := range cur {
			copied[c] = struct{}{}
		}
		cur = copied
	}
	return &Voxel{pitch: v.pitch, origin: v.origin, cells: cur}
}

func dilateOnce(cells map[[3]int]struct{}) map[[3]int]struct{} {
	out := make(map[[3]int]struct{}, len(cells)*2)
	for c := range cells {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					out[[3]int{c[0] + dx, c[1] + dy, c[2] + dz}] = struct{}{}
				}
			}
		}
	}
	return out
}

func erodeOnce(cells map[[3]int]struct{}) map[[3]int]struct{} {
	out := make(map[[3]int]struct{}, len(cells))
	for c := range cells {
		keep := true
		for dx := -1; dx <= 1 && keep; dx++ {
			for dy := -1; dy <= 1 && keep; dy++ {
				for dz := -1; dz <= 1 && keep; dz++ {
					if _, ok := cells[[3]int{c[0] + dx, c[1] + dy, c[2] + dz}]; !ok {
						keep = false
					}
				}
			}
		}
		if keep {
			out[c] = struct{}{}
		}
	}
	return out
}

// center returns the world coordinate of a cell's center.
func (v *Voxel) center(c [3]int) geom.Vector {
	return geom.Vector{
		X: v.origin.X + (float64(c[0])+0.5)*v.pitch,
		Y: v.origin.Y + (float64(c[1])+0.5)*v.pitch,
		Z: v.origin.Z + (float64(c[2])+0.5)*v.pitch,
	}
}

// ContainsPoint reports whether p falls in an occupied cell.
func (v *Voxel) ContainsPoint(p geom.Vector) bool {
	idx := [3]int{
		int(math.Floor((p.X - v.origin.X) / v.pitch)),
		int(math.Floor((p.Y - v.origin.Y) / v.pitch)),
		int(math.Floor((p.Z - v.origin.Z) / v.pitch)),
	}
	_, ok := v.grid()[idx]
	return ok
}

// Intersect supports voxel, mesh-volume, polygonal, and workspace
// operands. Voxel-voxel intersection resamples the other grid at this
// grid's cell centers, so differing pitches and origins are tolerated.
func (v *Voxel) Intersect(other Region) Region {
	switch o := other.(type) {
	case *Empty:
		return o
	case *Workspace:
		return v.Intersect(o.Region)
	case *Voxel:
		out := make(map[[3]int]struct{})
		for c := range v.grid() {
			if o.ContainsPoint(v.center(c)) {
				out[c] = struct{}{}
			}
		}
		if len(out) == 0 {
			return NewEmpty()
		}
		return &Voxel{pitch: v.pitch, origin: v.origin, cells: out}
	case *MeshVolume:
		out := make(map[[3]int]struct{})
		s := o.SDF()
		for c := range v.grid() {
			p := v.center(c)
			if s.Evaluate(vec3(p)) <= 0 {
				out[c] = struct{}{}
			}
		}
		if len(out) == 0 {
			return NewEmpty()
		}
		return &Voxel{pitch: v.pitch, origin: v.origin, cells: out}
	case *Polygonal:
		return o.Intersect(v)
	}
	return nil
}

// Footprint projects the occupied cells onto the horizontal plane and
// returns the union of the resulting squares. Consecutive cells in a
// row are merged into single rectangles before the union to keep the
// boolean tree small.
func (v *Voxel) Footprint() (geom.Polygon, error) {
	columns := make(map[[2]int]struct{})
	for c := range v.grid() {
		columns[[2]int{c[0], c[1]}] = struct{}{}
	}
	rows := make(map[int][]int)
	for col := range columns {
		rows[col[0]] = append(rows[col[0]], col[1])
	}
	var rects []geom.Polygon
	for i, js := range rows {
		sort.Ints(js)
		runStart := js[0]
		prev := js[0]
		flush := func(endJ int) {
			minX := v.origin.X + float64(i)*v.pitch
			minY := v.origin.Y + float64(runStart)*v.pitch
			maxY := v.origin.Y + float64(endJ+1)*v.pitch
			rects = append(rects, geom.Rect(minX, minY, minX+v.pitch, maxY))
		}
		for _, j := range js[1:] {
			if j != prev+1 {
				flush(prev)
				runStart = j
			}
			prev = j
		}
		flush(prev)
	}
	return geom.UnionAll(rects)
}

// sortedCells returns the occupied cells in deterministic order, for
// reproducible sampling.
func (v *Voxel) sortedCells() [][3]int {
	out := make([][3]int, 0, len(v.grid()))
	for c := range v.grid() {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][0] != out[b][0] {
			return out[a][0] < out[b][0]
		}
		if out[a][1] != out[b][1] {
			return out[a][1] < out[b][1]
		}
		return out[a][2] < out[b][2]
	})
	return out
}
