package prune

import (
	"math"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/scenario"
)

// maxDistanceBetween upper-bounds the separation between obj and target,
// taking the minimum over visibility constraints (ego visibility in
// either direction, observing-entity relationships) and explicit
// distance relations. bounded is false when no applicable constraint
// exists.
func maxDistanceBetween(scn *scenario.Scenario, obj, target *scenario.Object) (float64, bool) {
	bound := math.Inf(1)

	tighten := func(d *float64) {
		if d != nil && *d < bound {
			bound = *d
		}
	}

	if obj == scn.Ego && target.RequireVisible {
		tighten(visibilityBound(scn.Ego, target))
	}
	if target == scn.Ego && obj.RequireVisible {
		tighten(visibilityBound(scn.Ego, obj))
	}
	if obj.ObservingEntity == target {
		tighten(visibilityBound(target, obj))
	}
	if target.ObservingEntity == obj {
		tighten(visibilityBound(obj, target))
	}

	for _, rel := range obj.Relations {
		dr, ok := rel.(*scenario.DistanceRelation)
		if ok && dr.Target == target && dr.Upper < bound {
			bound = dr.Upper
		}
	}

	return bound, !math.IsInf(bound, 1)
}

// visibilityBound upper-bounds the distance from an observer to a target
// it can see: the observer's maximum visible distance, plus the
// horizontal offset of its camera from its center, plus the target's
// maximum radius. nil when any term is unbounded.
func visibilityBound(observer, target *scenario.Object) *float64 {
	_, maxVisible := dist.SupportInterval(observer.VisibleDistance)
	if maxVisible == nil {
		return nil
	}
	bound := *maxVisible

	if observer.CameraOffset == nil {
		return nil
	}
	_, maxX := dist.SupportInterval(dist.NewAttribute(observer.CameraOffset, "x"))
	_, maxY := dist.SupportInterval(dist.NewAttribute(observer.CameraOffset, "y"))
	if maxX == nil || maxY == nil {
		return nil
	}
	bound += math.Hypot(*maxX, *maxY)

	_, maxRadius := dist.SupportInterval(target.Radius)
	if maxRadius == nil {
		return nil
	}
	bound += *maxRadius

	return &bound
}
