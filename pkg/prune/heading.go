package prune

import (
	"math"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

// fieldMatch records a successful vector-field alignment match.
type fieldMatch struct {
	field *region.PolygonalVectorField
	lower float64
	upper float64
}

// pruneRelativeHeading narrows placement based on requirements bounding
// the relative heading between two objects that are both aligned (up to
// a bounded disturbance) to polygonal vector fields. An object
// positioned uniformly in a polygonal region can be restricted to the
// subset intersecting the field cells that can satisfy the relative
// heading bounds with respect to some cell of the target's field within
// the distance bound.
func (p *Pruner) pruneRelativeHeading(scn *scenario.Scenario) error {
	// First pass: which objects are aligned to polygonal vector fields?
	fields := make(map[*scenario.Object]fieldMatch)
	for _, obj := range scn.Objects {
		if obj.Heading == nil || obj.Position == nil {
			continue
		}
		field, lower, upper := matchPolygonalField(obj.Heading, obj.Position)
		if field != nil {
			fields[obj] = fieldMatch{field: field, lower: lower, upper: upper}
		}
	}

	// Second pass: apply relative heading relations between matched objects.
	for _, obj := range scn.Objects {
		fm, ok := fields[obj]
		if !ok {
			continue
		}

		base, offset := matchInRegion(dist.Resolve(obj.Position))
		if base == nil || dist.NeedsSampling(base) {
			continue
		}
		// A recovered offset would shift the footprint away from the
		// field cells; this pass requires an unshifted draw.
		if offset != nil {
			continue
		}
		convertible, ok := base.(region.PolygonConvertible)
		if !ok {
			continue
		}
		basePoly, ok := convertible.ToPolygon()
		if !ok {
			continue
		}

		newPoly := basePoly
		changed := false
		for _, rel := range obj.Relations {
			rh, ok := rel.(*scenario.RelativeHeadingRelation)
			if !ok {
				continue
			}
			tm, ok := fields[rh.Target]
			if !ok {
				continue
			}
			maxDist, bounded := maxDistanceBetween(scn, obj, rh.Target)
			if !bounded {
				// The separation must be bounded to restrict anything.
				continue
			}
			feasible, ok := feasibleRHPolygon(fm, tm, rh.Lower, rh.Upper, maxDist)
			if !ok {
				// The bounds are too weak to restrict the space.
				continue
			}
			pruned, err := newPoly.Intersect(feasible)
			if err != nil {
				// Numerically degenerate boolean; retry once with a
				// small positive buffer, then give up on this relation.
				padded, perr := feasible.Buffer(robustnessBuffer)
				if perr != nil {
					continue
				}
				pruned, err = newPoly.Intersect(padded)
				if err != nil {
					continue
				}
			}
			if before := newPoly.Area(); before > 0 {
				percent := math.Max(0, 100*(1.0-pruned.Area()/before))
				p.log.Info("relative heading constraint pruned space",
					"object", obj.Name, "target", rh.Target.Name, "percent", round1(percent))
			}
			newPoly = pruned
			changed = true
		}

		if changed && newPoly.IsEmpty() {
			return &scenario.InvalidScenarioError{Object: obj.Name, Reason: "cannot satisfy relative heading requirements"}
		}
		if changed {
			var orientation *region.PolygonalVectorField
			if pr, ok := base.(*region.Polygonal); ok {
				orientation = pr.Orientation
			}
			newBase := region.NewPolygonal(newPoly, orientation)
			obj.Position.ConditionTo(region.NewPointIn(newBase))
		}
	}
	return nil
}

// feasibleRHPolygon finds where objects aligned to the two matched
// fields can satisfy the relative heading bounds [lowerBound,
// upperBound], given a maximum separation of maxDist. ok is false when
// any involved interval spans a full turn (the constraint is vacuous)
// or a geometric operation fails.
func feasibleRHPolygon(base, target fieldMatch, lowerBound, upperBound, maxDist float64) (geom.Polygon, bool) {
	if base.upper-base.lower >= 2*math.Pi ||
		target.upper-target.lower >= 2*math.Pi ||
		upperBound-lowerBound >= 2*math.Pi {
		return geom.Polygon{}, false
	}

	// Dilate every target cell by the distance bound so any base point
	// within range of the cell is covered.
	type expandedCell struct {
		poly    geom.Polygon
		heading *float64
	}
	expanded := make([]expandedCell, 0, len(target.field.Cells))
	for _, cell := range target.field.Cells {
		buffered, err := cell.Polygon.Buffer(maxDist)
		if err != nil {
			return geom.Polygon{}, false
		}
		expanded = append(expanded, expandedCell{poly: buffered, heading: cell.Heading})
	}

	var pieces []geom.Polygon
	for _, baseCell := range base.field.Cells {
		for _, targetCell := range expanded {
			lower, upper := relativeHeadingRange(
				baseCell.Heading, base.lower, base.upper,
				targetCell.heading, target.lower, target.upper)
			if upper < lowerBound || lower > upperBound {
				continue // achievable RH interval misses the requirement
			}
			intersection, err := baseCell.Polygon.Intersect(targetCell.poly)
			if err != nil {
				// Dropping just this piece would shrink the union below
				// the feasible set; fail closed so the caller skips the
				// whole relation.
				return geom.Polygon{}, false
			}
			if intersection.IsEmpty() {
				continue
			}
			pieces = append(pieces, intersection)
		}
	}

	union, err := geom.UnionAll(pieces)
	if err != nil {
		return geom.Polygon{}, false
	}
	return union, true
}

// relativeHeadingRange bounds the achievable relative heading between
// two cell headings with bounded disturbances, splitting at the +-pi
// boundary when a disturbed interval wraps. A nil heading (not constant
// within the cell) yields the full range.
func relativeHeadingRange(baseHeading *float64, offsetL, offsetR float64, targetHeading *float64, tOffsetL, tOffsetR float64) (float64, float64) {
	if baseHeading == nil || targetHeading == nil {
		return -math.Pi, math.Pi
	}

	lower := geom.NormalizeAngle(*baseHeading + offsetL)
	upper := geom.NormalizeAngle(*baseHeading + offsetR)
	points := []float64{lower, upper}
	if upper < lower {
		points = append(points, math.Pi, -math.Pi)
	}

	tLower := geom.NormalizeAngle(*targetHeading + tOffsetL)
	tUpper := geom.NormalizeAngle(*targetHeading + tOffsetR)
	tPoints := []float64{tLower, tUpper}
	if tUpper < tLower {
		tPoints = append(tPoints, math.Pi, -math.Pi)
	}

	minRH, maxRH := math.Inf(1), math.Inf(-1)
	for _, tp := range tPoints {
		for _, pt := range points {
			rh := tp - pt
			minRH = math.Min(minRH, rh)
			maxRH = math.Max(maxRH, rh)
		}
	}
	return minRH, maxRH
}
