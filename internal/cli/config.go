package cli

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

// scenarioFile is the YAML description of a scenario. It stands in for
// the scenario-description frontend: the loader builds the same variable
// graph a frontend would, then hands it to the pruner.
type scenarioFile struct {
	Workspace *regionSpec  `yaml:"workspace"`
	Fields    []fieldSpec  `yaml:"fields"`
	Ego       string       `yaml:"ego"`
	Objects   []objectSpec `yaml:"objects"`
}

// regionSpec declares a polygonal region as a rectangle or a vertex ring.
type regionSpec struct {
	Rect []float64   `yaml:"rect,flow"`
	Ring [][]float64 `yaml:"ring"`
}

type fieldSpec struct {
	Name  string     `yaml:"name"`
	Cells []cellSpec `yaml:"cells"`
}

type cellSpec struct {
	Rect    []float64 `yaml:"rect,flow"`
	Heading *float64  `yaml:"heading"`
}

type objectSpec struct {
	Name            string         `yaml:"name"`
	Position        *regionSpec    `yaml:"position"`
	Offset          []float64      `yaml:"offset,flow"`
	Radius          *float64       `yaml:"radius"`
	Inradius        *float64       `yaml:"inradius"`
	PlanarInradius  *float64       `yaml:"planar_inradius"`
	Container       *regionSpec    `yaml:"container"`
	Align           string         `yaml:"align"`
	Disturbance     []float64      `yaml:"disturbance,flow"`
	RequireVisible  bool           `yaml:"require_visible"`
	VisibleDistance *float64       `yaml:"visible_distance"`
	VisibleBox      []float64      `yaml:"visible_box,flow"`
	ObservedBy      string         `yaml:"observed_by"`
	Relations       []relationSpec `yaml:"relations"`
}

type relationSpec struct {
	Kind   string   `yaml:"kind"`
	Target string   `yaml:"target"`
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
}

func (r *regionSpec) polygon() (geom.Polygon, error) {
	switch {
	case len(r.Rect) == 4:
		return geom.Rect(r.Rect[0], r.Rect[1], r.Rect[2], r.Rect[3]), nil
	case len(r.Ring) >= 3:
		pts := make([]geom.Point, len(r.Ring))
		for i, v := range r.Ring {
			if len(v) != 2 {
				return geom.Polygon{}, fmt.Errorf("ring vertex %d: want [x, y], got %v", i, v)
			}
			pts[i] = geom.Point{X: v[0], Y: v[1]}
		}
		return geom.FromRing(pts), nil
	default:
		return geom.Polygon{}, fmt.Errorf("region needs a rect [minX, minY, maxX, maxY] or a ring of vertices")
	}
}

// buildScenario decodes a YAML scenario description into the object and
// variable graph the pruner consumes.
func buildScenario(data []byte) (*scenario.Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if file.Workspace == nil {
		return nil, fmt.Errorf("scenario has no workspace")
	}

	wsPoly, err := file.Workspace.polygon()
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	fields := make(map[string]*region.PolygonalVectorField, len(file.Fields))
	for _, fs := range file.Fields {
		field := &region.PolygonalVectorField{Name: fs.Name}
		for i, cs := range fs.Cells {
			spec := regionSpec{Rect: cs.Rect}
			poly, err := spec.polygon()
			if err != nil {
				return nil, fmt.Errorf("field %q cell %d: %w", fs.Name, i, err)
			}
			field.Cells = append(field.Cells, region.FieldCell{Polygon: poly, Heading: cs.Heading})
		}
		fields[fs.Name] = field
	}

	scn := &scenario.Scenario{
		Workspace: region.NewWorkspace(region.NewPolygonal(wsPoly, nil)),
	}

	objects := make(map[string]*scenario.Object, len(file.Objects))
	for _, os := range file.Objects {
		obj, err := buildObject(os, fields)
		if err != nil {
			return nil, err
		}
		if _, dup := objects[os.Name]; dup {
			return nil, fmt.Errorf("duplicate object name %q", os.Name)
		}
		objects[os.Name] = obj
		scn.Objects = append(scn.Objects, obj)
	}

	// Second pass: wire references between objects.
	for _, os := range file.Objects {
		obj := objects[os.Name]
		if os.ObservedBy != "" {
			observer, ok := objects[os.ObservedBy]
			if !ok {
				return nil, fmt.Errorf("object %q observed by unknown object %q", os.Name, os.ObservedBy)
			}
			obj.ObservingEntity = observer
		}
		for i, rs := range os.Relations {
			target, ok := objects[rs.Target]
			if !ok {
				return nil, fmt.Errorf("object %q relation %d: unknown target %q", os.Name, i, rs.Target)
			}
			rel, err := buildRelation(rs, target)
			if err != nil {
				return nil, fmt.Errorf("object %q relation %d: %w", os.Name, i, err)
			}
			obj.Relations = append(obj.Relations, rel)
		}
	}

	if file.Ego != "" {
		ego, ok := objects[file.Ego]
		if !ok {
			return nil, fmt.Errorf("unknown ego object %q", file.Ego)
		}
		scn.Ego = ego
	}

	return scn, nil
}

func buildObject(spec objectSpec, fields map[string]*region.PolygonalVectorField) (*scenario.Object, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("object without a name")
	}
	if spec.Position == nil {
		return nil, fmt.Errorf("object %q has no position region", spec.Name)
	}

	obj := scenario.NewObject(spec.Name)

	poly, err := spec.Position.polygon()
	if err != nil {
		return nil, fmt.Errorf("object %q position: %w", spec.Name, err)
	}
	var orientation *region.PolygonalVectorField
	if spec.Align != "" {
		field, ok := fields[spec.Align]
		if !ok {
			return nil, fmt.Errorf("object %q aligned to unknown field %q", spec.Name, spec.Align)
		}
		orientation = field
	}
	base := region.NewPolygonal(poly, orientation)

	var position dist.Node = region.NewPointIn(base)
	if len(spec.Offset) == 3 {
		offset := dist.NewConstant(geom.Vector{X: spec.Offset[0], Y: spec.Offset[1], Z: spec.Offset[2]})
		position = dist.NewOperator(dist.OpAdd, position, offset)
	} else if spec.Offset != nil {
		return nil, fmt.Errorf("object %q offset: want [x, y, z], got %v", spec.Name, spec.Offset)
	}
	obj.Position = position

	if orientation != nil {
		heading := orientation.HeadingAt(position)
		if len(spec.Disturbance) == 2 {
			heading = dist.NewOperator(dist.OpAdd, heading,
				dist.NewUniform(spec.Disturbance[0], spec.Disturbance[1]))
		} else if spec.Disturbance != nil {
			return nil, fmt.Errorf("object %q disturbance: want [low, high], got %v", spec.Name, spec.Disturbance)
		}
		obj.Heading = dist.NewFunctionCall(dist.FuncNormalizeAngle, heading)
	}

	if spec.Radius != nil {
		obj.Radius = dist.NewConstant(*spec.Radius)
	}
	if spec.Inradius != nil {
		obj.Inradius = dist.NewConstant(*spec.Inradius)
	}
	if spec.PlanarInradius != nil {
		obj.PlanarInradius = dist.NewConstant(*spec.PlanarInradius)
	} else if spec.Inradius != nil {
		obj.PlanarInradius = obj.Inradius
	}
	if spec.Container != nil {
		cp, err := spec.Container.polygon()
		if err != nil {
			return nil, fmt.Errorf("object %q container: %w", spec.Name, err)
		}
		obj.Container = region.NewPolygonal(cp, nil)
	}
	obj.RequireVisible = spec.RequireVisible
	if spec.VisibleDistance != nil {
		obj.VisibleDistance = dist.NewConstant(*spec.VisibleDistance)
	}
	if len(spec.VisibleBox) == 6 {
		center := geom.Vector{X: spec.VisibleBox[0], Y: spec.VisibleBox[1], Z: spec.VisibleBox[2]}
		size := geom.Vector{X: spec.VisibleBox[3], Y: spec.VisibleBox[4], Z: spec.VisibleBox[5]}
		obj.VisibleRegion = region.Box(size, center)
	} else if spec.VisibleBox != nil {
		return nil, fmt.Errorf("object %q visible_box: want [cx, cy, cz, sx, sy, sz], got %v", spec.Name, spec.VisibleBox)
	}

	return obj, nil
}

func buildRelation(spec relationSpec, target *scenario.Object) (scenario.Relation, error) {
	switch spec.Kind {
	case "distance":
		if spec.Max == nil {
			return nil, fmt.Errorf("distance relation needs max")
		}
		lower := 0.0
		if spec.Min != nil {
			lower = *spec.Min
		}
		return &scenario.DistanceRelation{Target: target, Lower: lower, Upper: *spec.Max}, nil
	case "relative_heading":
		if spec.Min == nil || spec.Max == nil {
			return nil, fmt.Errorf("relative_heading relation needs min and max")
		}
		return &scenario.RelativeHeadingRelation{Target: target, Lower: *spec.Min, Upper: *spec.Max}, nil
	default:
		return nil, fmt.Errorf("unknown relation kind %q", spec.Kind)
	}
}
