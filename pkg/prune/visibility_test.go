package prune

import (
	"errors"
	"testing"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

// visScenario builds an object required to be visible from an ego whose
// visible region is a 4x4x4 box at the origin.
func visScenario() (*scenario.Scenario, *scenario.Object) {
	ego := scenario.NewObject("ego")
	ego.Position = dist.NewConstant(geom.Vector{})
	ego.VisibleRegion = region.Box(geom.Vector{X: 4, Y: 4, Z: 4}, geom.Vector{})

	obj := scenario.NewObject("watched")
	obj.Position = region.NewPointIn(region.NewPolygonal(geom.Rect(-10, -10, 10, 10), nil))
	obj.Radius = dist.NewConstant(0.5)
	obj.RequireVisible = true

	scn := &scenario.Scenario{
		Ego:     ego,
		Objects: []*scenario.Object{obj},
	}
	return scn, obj
}

func TestVisibilityRestrictsToBufferedView(t *testing.T) {
	scn, obj := visScenario()

	// A coarse pitch keeps the voxel grids small.
	if err := New(WithPitch(0.05)).Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	got, ok := resolvedBase(t, obj).(*region.Polygonal)
	if !ok {
		t.Fatal("pruned base should be polygonal")
	}
	size := got.Size()
	if size >= 400 {
		t.Fatalf("pruned base size = %v, want a strict subset of the 20x20 base", size)
	}
	// The buffered view must cover the exact view plus the object's
	// radius, but stay near the 4x4 footprint.
	if size < 16 {
		t.Errorf("pruned base size = %v, must cover the view footprint of 16", size)
	}
	if size > 40 {
		t.Errorf("pruned base size = %v, buffer is too loose", size)
	}
	poly, _ := got.ToPolygon()
	if !poly.Contains(geom.Point{X: 0, Y: 0}) {
		t.Error("view center should survive")
	}
	// The buffer must grant at least half the object's radius (0.25) of
	// margin beyond the view footprint, or positions from which the
	// object is still partially visible would be excluded.
	for _, pt := range []geom.Point{{X: 2.2, Y: 0}, {X: 0, Y: -2.2}, {X: -2.2, Y: 0}} {
		if !poly.Contains(pt) {
			t.Errorf("point %v within the radius margin of the view must survive", pt)
		}
	}
	if poly.Contains(geom.Point{X: 6, Y: 0}) {
		t.Error("points far outside the view should be pruned")
	}
}

func TestVisibilityInfeasible(t *testing.T) {
	scn, obj := visScenario()
	// Move the object's placement region far away from the view.
	obj.Position = region.NewPointIn(region.NewPolygonal(geom.Rect(50, 50, 60, 60), nil))

	err := New(WithPitch(0.05)).Prune(scn)
	var invalid *scenario.InvalidScenarioError
	if !errors.As(err, &invalid) {
		t.Fatalf("Prune error = %v, want InvalidScenarioError", err)
	}
	if invalid.Object != "watched" {
		t.Errorf("error names object %q, want watched", invalid.Object)
	}
}

func TestVisibilityNotRequired(t *testing.T) {
	scn, obj := visScenario()
	obj.RequireVisible = false

	if err := New(WithPitch(0.05)).Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if obj.Position.Conditioned() != nil {
		t.Error("an object with no visibility requirement should be unchanged")
	}
}

func TestVisibilityNeedsEgoView(t *testing.T) {
	scn, obj := visScenario()
	scn.Ego.VisibleRegion = nil

	if err := New(WithPitch(0.05)).Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if obj.Position.Conditioned() != nil {
		t.Error("without a view region there is nothing to restrict to")
	}
}

func TestVisibilityUnboundedRadiusSkips(t *testing.T) {
	scn, obj := visScenario()
	obj.Radius = nil

	if err := New(WithPitch(0.05)).Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if obj.Position.Conditioned() != nil {
		t.Error("an unbounded radius makes the view buffer unsound; skip")
	}
}

func TestVisibilitySkipsWhenBaseIsView(t *testing.T) {
	scn, obj := visScenario()
	// The object is placed uniformly in the view itself.
	obj.Position = region.NewPointIn(scn.Ego.VisibleRegion)

	if err := New(WithPitch(0.05)).Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if obj.Position.Conditioned() != nil {
		t.Error("restricting a region to itself is pointless and must be skipped")
	}
}

func TestVisibilityObservingEntity(t *testing.T) {
	observer := scenario.NewObject("guard")
	observer.VisibleRegion = region.Box(geom.Vector{X: 4, Y: 4, Z: 4}, geom.Vector{})

	obj := scenario.NewObject("watched")
	obj.Position = region.NewPointIn(region.NewPolygonal(geom.Rect(-10, -10, 10, 10), nil))
	obj.Radius = dist.NewConstant(0.5)
	obj.ObservingEntity = observer

	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	if err := New(WithPitch(0.05)).Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	got := resolvedBase(t, obj)
	if got.Size() >= 400 {
		t.Errorf("pruned base size = %v, want a strict subset of the base", got.Size())
	}
}
