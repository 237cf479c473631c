package prune

import (
	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
	"github.com/tbastian/winnow/pkg/region"
)

// matchInRegion recognizes positions that are uniform draws from a
// region, possibly plus a fixed-structure vector offset applied through
// an add operator with exactly one operand. It returns the base region
// and the offset node (nil when the draw is unshifted), or (nil, nil)
// for any other shape. Workspaces are unwrapped to their underlying
// region.
func matchInRegion(position dist.Node) (region.Region, dist.Node) {
	switch p := dist.Resolve(position).(type) {
	case *region.PointIn:
		return unwrapWorkspace(p.Region), nil
	case *dist.Operator:
		if p.Op != dist.OpAdd && p.Op != dist.OpRAdd {
			return nil, nil
		}
		pir, ok := dist.Resolve(p.Object).(*region.PointIn)
		if !ok || len(p.Operands) != 1 {
			return nil, nil
		}
		return unwrapWorkspace(pir.Region), p.Operands[0]
	}
	return nil, nil
}

func unwrapWorkspace(r region.Region) region.Region {
	if w, ok := r.(*region.Workspace); ok {
		return w.Region
	}
	return r
}

// matchPolygonalField recognizes heading expressions structurally equal
// to the yaw of a polygonal vector field indexed at position, possibly
// wrapped in an angle normalization call or a float typechecking
// decorator, possibly offset by additive disturbances with bounded
// support. It returns the field with summed lower/upper disturbance
// bounds, or (nil, 0, 0) as soon as the recognized shape breaks.
func matchPolygonalField(heading, position dist.Node) (*region.PolygonalVectorField, float64, float64) {
	switch h := dist.Resolve(heading).(type) {
	case *dist.FunctionCall:
		if h.Func == dist.FuncNormalizeAngle && len(h.Args) == 1 {
			return matchPolygonalField(h.Args[0], position)
		}
	case *dist.Typechecked:
		if h.ValueType == dist.TypeFloat {
			return matchPolygonalField(h.Dist, position)
		}
	case *dist.Attribute:
		if h.Name != "yaw" {
			break
		}
		call, ok := dist.Resolve(h.Object).(*dist.MethodCall)
		if !ok || call.Method != dist.MethodFieldAt || len(call.Args) != 1 {
			break
		}
		field, ok := call.Recv.(*region.PolygonalVectorField)
		if !ok || call.Args[0] != position {
			break
		}
		return field, 0, 0
	case *dist.Operator:
		if h.Op != dist.OpAdd && h.Op != dist.OpRAdd || len(h.Operands) != 1 {
			break
		}
		field, lower, upper := matchPolygonalField(h.Object, position)
		if field == nil {
			break
		}
		ol, oh := dist.SupportInterval(h.Operands[0])
		if ol == nil || oh == nil {
			break
		}
		return field, lower + *ol, upper + *oh
	}
	return nil, 0, 0
}

// offsetNorm upper-bounds the length of a recovered offset vector. When
// planar is true the vertical component is ignored, for 2D base regions
// where only the horizontal displacement matters. nil means no sound
// bound is available.
func offsetNorm(offset dist.Node, planar bool) *float64 {
	c, ok := dist.Resolve(offset).(*dist.Constant)
	if !ok {
		return nil
	}
	v, ok := c.Value.(geom.Vector)
	if !ok {
		return nil
	}
	if planar {
		v = v.Flat()
	}
	n := v.Norm()
	return &n
}
