package prune

import (
	"math"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

// pruneVisibility narrows placement based on visibility requirements: an
// object required to be visible from an observer must lie within a
// conservatively buffered copy of the observer's visible region. The
// buffer covers every point from which the object, given its bounding
// radius, could still be seen.
func (p *Pruner) pruneVisibility(scn *scenario.Scenario) error {
	ego := scn.Ego

	for _, obj := range scn.Objects {
		base, offset := matchInRegion(dist.Resolve(obj.Position))
		if base == nil || dist.NeedsSampling(base) {
			continue
		}

		newBase := base

		if obj.RequireVisible && ego != nil && ego.VisibleRegion != nil {
			if restricted, ok := p.restrictToView(obj, newBase, base, ego.VisibleRegion); ok {
				p.log.Info("restricting to visible region of ego", "object", obj.Name)
				newBase = restricted
			}
		}

		// Only restrict to an observing entity's view when that view is
		// fixed, to avoid rebuilding it at every timestep.
		if oe := obj.ObservingEntity; oe != nil && oe.VisibleRegion != nil {
			if restricted, ok := p.restrictToView(obj, newBase, base, oe.VisibleRegion); ok {
				p.log.Info("restricting to visible region of observer",
					"object", obj.Name, "observer", oe.Name)
				newBase = restricted
			}
		}

		if _, ok := newBase.(*region.Empty); ok {
			return &scenario.InvalidScenarioError{Object: obj.Name, Reason: "cannot satisfy visibility requirements"}
		}
		if newBase == base {
			continue
		}

		if percent, ok := percentagePruned(base, newBase); !ok {
			p.log.Debug("visibility pruning could not compute reduction", "object", obj.Name)
		} else if percent <= negligiblePrunePercent {
			continue
		} else {
			p.log.Info("visibility constraint pruned space", "object", obj.Name, "percent", round1(percent))
		}

		var newPos dist.Node = region.NewPointIn(newBase)
		if offset != nil {
			newPos = dist.NewOperator(dist.OpAdd, newPos, offset)
		}
		obj.Position.ConditionTo(newPos)
	}
	return nil
}

// restrictToView intersects current with a buffered copy of view,
// guarding against views that are the base itself, still depend on
// unresolved randomness, or would create a circular conditioning
// dependency. ok is false when no restriction was applied.
func (p *Pruner) restrictToView(obj *scenario.Object, current, base, view region.Region) (region.Region, bool) {
	if base == view || dist.NeedsSampling(view) || dist.CheckCyclical(base, view) {
		return current, false
	}
	buffered := p.bufferView(obj, view)
	if buffered == nil {
		return current, false
	}
	restricted := current.Intersect(buffered)
	if restricted == nil {
		return current, false
	}
	return restricted, true
}

// bufferView dilates an observer's visible region so it contains every
// point that could be the position of obj while obj remains visible.
// The dilation must cover half of obj's bounding radius; because a bare
// voxelization is not an overapproximation of the region, one extra
// dilation pass is added to stay conservative. nil when the view cannot
// be voxelized or obj's radius is unbounded.
func (p *Pruner) bufferView(obj *scenario.Object, view region.Region) region.Region {
	voxelizable, ok := view.(region.Voxelizable)
	if !ok {
		return nil
	}
	_, maxRadius := dist.SupportInterval(obj.Radius)
	if maxRadius == nil {
		return nil
	}
	pitch := p.pitch * voxelizable.Extents().MaxExtent()
	if pitch <= 0 {
		return nil
	}
	iterations := int(math.Ceil((*maxRadius/2)/pitch)) + 1
	return voxelizable.Voxelized(pitch, true).Dilation(iterations)
}
