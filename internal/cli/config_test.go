package cli

import (
	"strings"
	"testing"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/prune"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

const twoCarScenario = `
workspace:
  rect: [-100, -100, 100, 100]
fields:
  - name: lanes
    cells:
      - rect: [-100, -8, 100, 0]
        heading: 0.0
      - rect: [-100, 0, 100, 8]
        heading: 3.14159265
ego: ego
objects:
  - name: ego
    position: { rect: [-100, -8, 100, 8] }
    align: lanes
    disturbance: [-0.05, 0.05]
    radius: 2.5
    inradius: 0.8
    container: { rect: [-100, -8, 100, 0] }
    visible_distance: 60
  - name: oncoming
    position: { rect: [-100, -8, 100, 8] }
    align: lanes
    radius: 2.5
    require_visible: true
    relations:
      - kind: relative_heading
        target: ego
        min: 2.8
        max: 3.5
      - kind: distance
        target: ego
        max: 60
`

func TestBuildScenario(t *testing.T) {
	scn, err := buildScenario([]byte(twoCarScenario))
	if err != nil {
		t.Fatalf("buildScenario failed: %v", err)
	}

	if scn.Workspace == nil {
		t.Fatal("workspace missing")
	}
	if len(scn.Objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(scn.Objects))
	}
	if scn.Ego == nil || scn.Ego.Name != "ego" {
		t.Fatal("ego not wired")
	}

	ego := scn.Objects[0]
	if ego.Container == nil {
		t.Error("ego container not built")
	}
	if ego.Heading == nil {
		t.Error("aligned object should have a heading expression")
	}
	if _, ok := dist.Resolve(ego.Position).(*region.PointIn); !ok {
		t.Errorf("ego position = %T, want uniform regional draw", dist.Resolve(ego.Position))
	}

	oncoming := scn.Objects[1]
	if !oncoming.RequireVisible {
		t.Error("require_visible not applied")
	}
	if len(oncoming.Relations) != 2 {
		t.Fatalf("got %d relations, want 2", len(oncoming.Relations))
	}
	rh, ok := oncoming.Relations[0].(*scenario.RelativeHeadingRelation)
	if !ok || rh.Target != ego || rh.Lower != 2.8 || rh.Upper != 3.5 {
		t.Errorf("relative heading relation = %+v", oncoming.Relations[0])
	}
	dr, ok := oncoming.Relations[1].(*scenario.DistanceRelation)
	if !ok || dr.Target != ego || dr.Upper != 60 {
		t.Errorf("distance relation = %+v", oncoming.Relations[1])
	}
}

func TestBuildScenarioPrunes(t *testing.T) {
	scn, err := buildScenario([]byte(twoCarScenario))
	if err != nil {
		t.Fatalf("buildScenario failed: %v", err)
	}
	// The loaded graph must be in the shape the pruning matchers expect.
	if err := prune.New().Prune(scn); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	base := baseRegionOf(scn.Objects[0].Position)
	if base == nil {
		t.Fatal("ego position no longer region-based")
	}
	// Containment restricts the ego to its lane.
	if base.Size() >= 200*16 {
		t.Errorf("ego base size = %v, want smaller than the full road", base.Size())
	}
}

func TestBuildScenarioErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"not yaml", "{:::", "decoding scenario"},
		{"no workspace", "objects: []", "no workspace"},
		{
			"bad rect",
			"workspace:\n  rect: [1, 2, 3]",
			"rect",
		},
		{
			"object without position",
			"workspace:\n  rect: [0, 0, 1, 1]\nobjects:\n  - name: a",
			"no position region",
		},
		{
			"duplicate names",
			"workspace:\n  rect: [0, 0, 9, 9]\nobjects:\n  - name: a\n    position: { rect: [0, 0, 1, 1] }\n  - name: a\n    position: { rect: [0, 0, 1, 1] }",
			"duplicate object name",
		},
		{
			"unknown ego",
			"workspace:\n  rect: [0, 0, 9, 9]\nego: ghost\nobjects: []",
			`unknown ego object "ghost"`,
		},
		{
			"unknown field",
			"workspace:\n  rect: [0, 0, 9, 9]\nobjects:\n  - name: a\n    position: { rect: [0, 0, 1, 1] }\n    align: nowhere",
			"unknown field",
		},
		{
			"unknown relation target",
			"workspace:\n  rect: [0, 0, 9, 9]\nobjects:\n  - name: a\n    position: { rect: [0, 0, 1, 1] }\n    relations:\n      - kind: distance\n        target: ghost\n        max: 5",
			"unknown target",
		},
		{
			"unknown relation kind",
			"workspace:\n  rect: [0, 0, 9, 9]\nobjects:\n  - name: a\n    position: { rect: [0, 0, 1, 1] }\n  - name: b\n    position: { rect: [0, 0, 1, 1] }\n    relations:\n      - kind: nearness\n        target: a",
			"unknown relation kind",
		},
		{
			"distance without max",
			"workspace:\n  rect: [0, 0, 9, 9]\nobjects:\n  - name: a\n    position: { rect: [0, 0, 1, 1] }\n  - name: b\n    position: { rect: [0, 0, 1, 1] }\n    relations:\n      - kind: distance\n        target: a",
			"needs max",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildScenario([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegionSpecRing(t *testing.T) {
	spec := regionSpec{Ring: [][]float64{{0, 0}, {4, 0}, {0, 3}}}
	poly, err := spec.polygon()
	if err != nil {
		t.Fatalf("polygon failed: %v", err)
	}
	if got := poly.Area(); got < 5.9 || got > 6.1 {
		t.Errorf("ring area = %v, want 6", got)
	}
}
