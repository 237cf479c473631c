package prune

import (
	"math"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

// pruneContainment narrows each object's placement by the requirement
// that it fit within its container. If an object is positioned uniformly
// (with a possible offset) in region B with container C, its position
// can instead be drawn uniformly from B's intersection with C; when a
// lower bound on the object's inradius is known, C is first eroded by
// that radius minus the maximum offset distance.
func (p *Pruner) pruneContainment(scn *scenario.Scenario) error {
	for _, obj := range scn.Objects {
		base, offset := matchInRegion(obj.Position)
		if base == nil || dist.NeedsSampling(base) {
			continue
		}
		if _, ok := base.(*region.Empty); ok {
			return &scenario.InvalidScenarioError{Object: obj.Name, Reason: "placed in empty region"}
		}

		container := scn.ContainerOf(obj)
		if container == nil || dist.NeedsSampling(container) {
			continue
		}
		if _, ok := container.(*region.Empty); ok {
			return &scenario.InvalidScenarioError{Object: obj.Name, Reason: "contained in empty region"}
		}

		// Maximum distance between the sampled point and the object.
		maxOffsetDistance := 0.0
		offsetBounded := true
		if offset != nil {
			_, planar := base.(*region.Polygonal)
			if d := offsetNorm(offset, planar); d != nil {
				maxOffsetDistance = *d
			} else {
				offsetBounded = false
			}
		}

		// Minimum radius of the object with respect to the container's
		// bounded dimensions: planar inradius for flat objects in 2D
		// regions, full inradius otherwise.
		var minRadius *float64
		if _, ok := base.(*region.Polygonal); ok &&
			dist.IsZeroInterval(obj.Pitch) && dist.IsZeroInterval(obj.Roll) {
			minRadius, _ = dist.SupportInterval(obj.PlanarInradius)
		} else {
			minRadius, _ = dist.SupportInterval(obj.Inradius)
		}

		if offsetBounded && minRadius != nil {
			if maxErosion := *minRadius - maxOffsetDistance; maxErosion > 0 {
				container = p.erodeContainer(container, maxErosion)
			}
		}

		// Same region: nothing to restrict.
		if base == container {
			continue
		}

		newBase := base.Intersect(container)
		if newBase == nil {
			// Unsupported representation pair; leave the object alone.
			continue
		}

		// A volume degenerating to surface contact means the mesh
		// operation is unreliable; abort this object.
		if _, wasVolume := base.(*region.MeshVolume); wasVolume {
			if _, isSurface := newBase.(*region.MeshSurface); isSurface {
				continue
			}
		}
		if _, ok := newBase.(*region.Empty); ok {
			return &scenario.InvalidScenarioError{Object: obj.Name, Reason: "does not fit in container"}
		}

		if percent, ok := percentagePruned(base, newBase); !ok {
			p.log.Debug("containment pruning could not compute reduction", "object", obj.Name)
		} else if percent <= negligiblePrunePercent {
			continue
		} else {
			p.log.Info("containment constraint pruned space", "object", obj.Name, "percent", round1(percent))
		}

		var newPos dist.Node = region.NewPointIn(newBase)
		if offset != nil {
			newPos = dist.NewOperator(dist.OpAdd, newPos, offset)
		}
		obj.Position.ConditionTo(newPos)
	}
	return nil
}

// erodeContainer shrinks the container inward by margin when a
// conservative erosion is available and productive; otherwise the
// container is returned unshrunk.
func (p *Pruner) erodeContainer(container region.Region, margin float64) region.Region {
	if b, ok := container.(region.Bufferable); ok {
		// Exact erosion through the boundary representation.
		if eroded := b.Buffer(-margin); eroded != nil {
			return eroded
		}
		return container
	}

	mesh, ok := container.(*region.MeshVolume)
	if !ok {
		return container
	}

	pitch := p.pitch * mesh.Extents().MaxExtent()
	if pitch <= 0 {
		return container
	}

	// Each erosion pass with the 3x3x3 structuring unit removes at most
	// hypot(pitch, pitch, pitch), bounding the safe pass count. One pass
	// is subtracted because a bare voxelization is not itself an
	// overapproximation of the mesh; one dilation pass would be.
	iterations := int(math.Floor(margin/geom.Hypot3(pitch, pitch, pitch))) - 1
	if iterations <= 0 {
		return container
	}

	eroded := mesh.Voxelized(pitch, true).Dilation(-iterations)
	if eroded.Size() < container.Size() {
		return eroded
	}
	return container
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
