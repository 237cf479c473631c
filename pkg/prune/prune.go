// Package prune narrows the feasible sample space of a scenario before
// rejection sampling begins, so the sampler does not waste draws on
// configurations that are geometrically guaranteed to violate the
// scenario's requirements.
//
// Three passes run in a fixed order over every object:
//
//   - containment: erode and intersect placement regions with their
//     containers
//   - relative heading: restrict placement to vector-field cells
//     consistent with bounded relative-heading requirements
//   - visibility: restrict placement to a buffered approximation of an
//     observer's visible region
//
// Each pass reads current (possibly already conditioned) property
// values, attempts structural pattern matches, and on success
// permanently conditions the object's position to a uniform draw from a
// smaller region. Every step only removes configurations that are
// already infeasible, leaving the conditional distribution under the
// scenario's requirements unchanged.
package prune

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

const (
	// PruningPitch scales the voxel grid resolution relative to a mesh
	// region's largest bounding-box extent.
	PruningPitch = 0.01

	// negligiblePrunePercent is the reduction below which an object's
	// position is not worth re-conditioning.
	negligiblePrunePercent = 0.1

	// robustnessBuffer pads a feasible polygon once after a degenerate
	// boolean operation. Enlarging a clip polygon before intersecting is
	// a known soundness caveat carried over deliberately.
	robustnessBuffer = 0.1
)

// Pruner runs the pruning passes over a scenario.
type Pruner struct {
	log   *log.Logger
	pitch float64
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithLogger directs pass diagnostics to l. Without it the pruner is
// silent. Logging never affects pruning results.
func WithLogger(l *log.Logger) Option {
	return func(p *Pruner) { p.log = l }
}

// WithPitch overrides the relative voxelization pitch. Coarser pitches
// trade pruning tightness for speed; soundness is unaffected.
func WithPitch(pitch float64) Option {
	return func(p *Pruner) { p.pitch = pitch }
}

// New returns a Pruner with the given options applied.
func New(opts ...Option) *Pruner {
	p := &Pruner{
		log:   log.New(io.Discard),
		pitch: PruningPitch,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prune removes infeasible parts of scn's sample space by conditioning
// position variables in place. It returns a *scenario.InvalidScenarioError
// when a required placement region collapses to empty; any other anomaly
// degrades to skipping the affected object or relation.
func (p *Pruner) Prune(scn *scenario.Scenario) error {
	start := time.Now()
	p.log.Info("pruning scenario")

	if err := p.pruneContainment(scn); err != nil {
		return err
	}
	if err := p.pruneRelativeHeading(scn); err != nil {
		return err
	}
	if err := p.pruneVisibility(scn); err != nil {
		return err
	}

	p.log.Info("pruned scenario", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Prune runs the passes over scn with default options and the given
// logger (nil for silent operation).
func Prune(scn *scenario.Scenario, logger *log.Logger) error {
	opts := []Option{}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return New(opts...).Prune(scn)
}

// percentagePruned reports how much of base's size the pruned region
// removed, as a percentage. ok is false when the regions' sizes are not
// comparable (differing or undefined dimensionality, or an uncomputable
// size).
func percentagePruned(base, newBase region.Region) (float64, bool) {
	bd, nd := base.Dimensionality(), newBase.Dimensionality()
	if bd <= 0 || nd <= 0 || bd != nd {
		return 0, false
	}
	bs, ns := base.Size(), newBase.Size()
	if math.IsNaN(bs) || math.IsNaN(ns) || bs <= 0 {
		return 0, false
	}
	return math.Max(0, 100*(1.0-ns/bs)), true
}
