// Package geom provides the planar geometry primitives used by the
// region library and the pruning engine: 3D vectors, angle arithmetic,
// and 2D polygons with boolean set operations.
package geom

import (
	"fmt"
	"math"
)

// Vector is a point or displacement in 3D space.
type Vector struct {
	X, Y, Z float64
}

// Add returns the componentwise sum of v and o.
func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the componentwise difference v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by f.
func (v Vector) Scale(f float64) Vector {
	return Vector{v.X * f, v.Y * f, v.Z * f}
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Flat returns v projected onto the horizontal plane (Z zeroed).
func (v Vector) Flat() Vector {
	return Vector{v.X, v.Y, 0}
}

// MaxExtent returns the largest component magnitude of v.
func (v Vector) MaxExtent() float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Hypot3 returns the Euclidean norm of (x, y, z).
func Hypot3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
