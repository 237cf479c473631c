package prune

import (
	"errors"
	"math"
	"testing"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

// resolvedBase unwraps an object's pruned position to its base region.
func resolvedBase(t *testing.T, obj *scenario.Object) region.Region {
	t.Helper()
	base, _ := matchInRegion(dist.Resolve(obj.Position))
	if base == nil {
		t.Fatal("position no longer matches a uniform regional draw")
	}
	return base
}

func TestContainmentIntersectsContainer(t *testing.T) {
	base := region.NewPolygonal(geom.Rect(-5, -5, 5, 5), nil)
	obj := scenario.NewObject("box")
	obj.Position = region.NewPointIn(base)
	obj.Container = region.NewPolygonal(geom.Rect(-2, -2, 2, 2), nil)
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	if err := New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	got, ok := resolvedBase(t, obj).(*region.Polygonal)
	if !ok {
		t.Fatal("pruned base should be polygonal")
	}
	// No inradius known, so the container is not eroded.
	if math.Abs(got.Size()-16) > 1e-9 {
		t.Errorf("pruned base size = %v, want 16", got.Size())
	}
}

func TestContainmentErodesByInradius(t *testing.T) {
	base := region.NewPolygonal(geom.Rect(-5, -5, 5, 5), nil)
	obj := scenario.NewObject("box")
	obj.Position = region.NewPointIn(base)
	obj.Container = region.NewPolygonal(geom.Rect(-2, -2, 2, 2), nil)
	obj.PlanarInradius = dist.NewConstant(1.0)
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	if err := New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	got, ok := resolvedBase(t, obj).(*region.Polygonal)
	if !ok {
		t.Fatal("pruned base should be polygonal")
	}
	// Exact erosion of the 4x4 container by 1 is the 2x2 square; ours
	// under-approximates, so the pruned base can only be smaller.
	size := got.Size()
	if size > 4+1e-9 {
		t.Errorf("pruned base size = %v, must not exceed 4", size)
	}
	if size < 3.2 {
		t.Errorf("pruned base size = %v, too conservative versus 4", size)
	}
	poly, _ := got.ToPolygon()
	if !poly.Contains(geom.Point{X: 0, Y: 0}) {
		t.Error("pruned base should contain the container center")
	}
	if poly.Contains(geom.Point{X: 1.5, Y: 1.5}) {
		t.Error("points within the inradius of the boundary must be pruned")
	}
}

func TestContainmentOffsetWeakensErosion(t *testing.T) {
	base := region.NewPolygonal(geom.Rect(-5, -5, 5, 5), nil)
	obj := scenario.NewObject("box")
	offset := dist.NewConstant(geom.Vector{X: 0.5})
	obj.Position = dist.NewOperator(dist.OpAdd, region.NewPointIn(base), offset)
	obj.Container = region.NewPolygonal(geom.Rect(-2, -2, 2, 2), nil)
	obj.PlanarInradius = dist.NewConstant(1.0)
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	if err := New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	// Erosion margin shrinks to inradius - |offset| = 0.5, giving a 3x3
	// square at most.
	got := resolvedBase(t, obj)
	if got.Size() > 9+1e-9 {
		t.Errorf("pruned base size = %v, must not exceed 9", got.Size())
	}
	if got.Size() < 7.5 {
		t.Errorf("pruned base size = %v, too conservative versus 9", got.Size())
	}

	// The offset structure must be preserved on the conditioned position.
	_, gotOffset := matchInRegion(dist.Resolve(obj.Position))
	if gotOffset != dist.Node(offset) {
		t.Error("conditioned position should keep the original offset node")
	}
}

func TestContainmentInfeasible(t *testing.T) {
	base := region.NewPolygonal(geom.Rect(-5, -5, 5, 5), nil)
	obj := scenario.NewObject("box")
	obj.Position = region.NewPointIn(base)
	obj.Container = region.NewPolygonal(geom.Rect(20, 20, 22, 22), nil)
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	err := New().Prune(scn)
	var invalid *scenario.InvalidScenarioError
	if !errors.As(err, &invalid) {
		t.Fatalf("Prune error = %v, want InvalidScenarioError", err)
	}
	if invalid.Object != "box" {
		t.Errorf("error names object %q, want box", invalid.Object)
	}
}

func TestContainmentEmptyBaseIsFatal(t *testing.T) {
	obj := scenario.NewObject("box")
	obj.Position = region.NewPointIn(region.NewEmpty())
	obj.Container = region.NewPolygonal(geom.Rect(-2, -2, 2, 2), nil)
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	var invalid *scenario.InvalidScenarioError
	if err := New().Prune(scn); !errors.As(err, &invalid) {
		t.Fatalf("Prune error = %v, want InvalidScenarioError", err)
	}
}

func TestContainmentSkipsUnmatchedPositions(t *testing.T) {
	obj := scenario.NewObject("free")
	obj.Position = dist.NewUniform(0, 1) // not a regional draw
	obj.Container = region.NewPolygonal(geom.Rect(-2, -2, 2, 2), nil)
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	if err := New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if obj.Position.Conditioned() != nil {
		t.Error("unmatched position should be left alone")
	}
}

func TestContainmentSkipsWhenBaseIsContainer(t *testing.T) {
	ws := region.NewPolygonal(geom.Rect(-5, -5, 5, 5), nil)
	obj := scenario.NewObject("box")
	obj.Position = region.NewPointIn(ws)
	scn := &scenario.Scenario{
		Workspace: region.NewWorkspace(ws),
		Objects:   []*scenario.Object{obj},
	}

	if err := New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if obj.Position.Conditioned() != nil {
		t.Error("placement over the whole container should be unchanged")
	}
}

func TestContainmentMeshVolumes(t *testing.T) {
	base := region.Box(geom.Vector{X: 2, Y: 2, Z: 2}, geom.Vector{})
	obj := scenario.NewObject("solid")
	obj.Position = region.NewPointIn(base)
	obj.Container = region.Box(geom.Vector{X: 2, Y: 2, Z: 2}, geom.Vector{X: 1})
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	if err := New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	got, ok := resolvedBase(t, obj).(*region.MeshVolume)
	if !ok {
		t.Fatal("pruned base should stay a mesh volume")
	}
	// Overlap slab is 1x2x2.
	if math.Abs(got.Size()-4) > 1 {
		t.Errorf("pruned base size = %v, want about 4", got.Size())
	}
}

func TestContainmentSkipsSurfaceDegeneration(t *testing.T) {
	base := region.Box(geom.Vector{X: 2, Y: 2, Z: 2}, geom.Vector{})
	obj := scenario.NewObject("solid")
	obj.Position = region.NewPointIn(base)
	// Grazing contact only: the intersection degenerates to a surface.
	obj.Container = region.Box(geom.Vector{X: 2, Y: 2, Z: 2}, geom.Vector{X: 1.995})
	scn := &scenario.Scenario{Objects: []*scenario.Object{obj}}

	if err := New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if obj.Position.Conditioned() != nil {
		t.Error("surface-degenerate intersection must not condition the position")
	}
}

func TestPercentagePruned(t *testing.T) {
	big := region.NewPolygonal(geom.Rect(0, 0, 10, 10), nil)
	small := region.NewPolygonal(geom.Rect(0, 0, 5, 5), nil)

	percent, ok := percentagePruned(big, small)
	if !ok || math.Abs(percent-75) > 1e-9 {
		t.Errorf("percentagePruned = %v, %v, want 75", percent, ok)
	}

	// Mismatched dimensionality is not comparable.
	mesh := region.Box(geom.Vector{X: 1, Y: 1, Z: 1}, geom.Vector{})
	if _, ok := percentagePruned(big, mesh); ok {
		t.Error("2D versus 3D should not be comparable")
	}

	// An uncomputable size is not comparable.
	surface := region.NewMeshSurface(mesh.SDF())
	if _, ok := percentagePruned(surface, surface); ok {
		t.Error("NaN sizes should not be comparable")
	}
}
