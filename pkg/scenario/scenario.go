// Package scenario defines the scenario model the pruning engine
// operates on: objects with random placement and orientation variables,
// pairwise relations between objects, and the workspace that contains
// them.
package scenario

import (
	"fmt"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/geom"
	"github.com/tbastian/winnow/pkg/region"
)

// Relation constrains an object relative to a target object.
type Relation interface {
	relation() // marker: the relation set is closed
}

// DistanceRelation bounds the separation between an object and Target.
type DistanceRelation struct {
	Target *Object
	Lower  float64
	Upper  float64
}

func (*DistanceRelation) relation() {}

// RelativeHeadingRelation bounds the signed heading difference between
// an object and Target.
type RelativeHeadingRelation struct {
	Target *Object
	Lower  float64
	Upper  float64
}

func (*RelativeHeadingRelation) relation() {}

// Object is a scenario entity whose placement and orientation are
// variables in the sampling graph.
type Object struct {
	Name string

	Position dist.Node
	Heading  dist.Node
	Pitch    dist.Node
	Roll     dist.Node

	// Footprint bounds.
	Radius         dist.Node
	Inradius       dist.Node
	PlanarInradius dist.Node

	// Sensor model.
	CameraOffset    dist.Node // vector-valued
	VisibleDistance dist.Node
	VisibleRegion   region.Region

	// RequireVisible demands the object be visible from the ego.
	RequireVisible bool
	// ObservingEntity, when set, must be able to observe this object.
	ObservingEntity *Object

	// Container overrides the workspace as the region this object must
	// be wholly placed within.
	Container region.Region

	Relations []Relation
}

// NewObject returns an object named name with level orientation and a
// zero camera offset; placement and footprint variables start unset.
func NewObject(name string) *Object {
	return &Object{
		Name:         name,
		Pitch:        dist.NewConstant(0.0),
		Roll:         dist.NewConstant(0.0),
		CameraOffset: dist.NewConstant(geom.Vector{}),
	}
}

// Scenario is the full set of entities to be sampled.
type Scenario struct {
	Workspace *region.Workspace
	Ego       *Object
	Objects   []*Object
}

// ContainerOf returns the region obj must be wholly placed within: the
// object's own container if set, otherwise the workspace region.
func (s *Scenario) ContainerOf(obj *Object) region.Region {
	if obj.Container != nil {
		return obj.Container
	}
	if s.Workspace != nil {
		return s.Workspace.Region
	}
	return nil
}

// InvalidScenarioError reports that pruning proved the scenario can
// never satisfy its requirements. It is fatal to scenario compilation.
type InvalidScenarioError struct {
	Object string
	Reason string
}

func (e *InvalidScenarioError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("invalid scenario: %s", e.Reason)
	}
	return fmt.Sprintf("invalid scenario: object %q %s", e.Object, e.Reason)
}
