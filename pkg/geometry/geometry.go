// Package geometry provides the 3-D Cartesian primitives the
// deconfliction engine is built on: points, vector arithmetic,
// distance, and linear interpolation.
//
// The engine operates in a local scene frame, not a geodetic one —
// coordinates are metres on flat axes, not latitude/longitude. There
// is no earth-curvature correction anywhere in this package.
package geometry

import "math"

// Point is a position in the local Cartesian frame, in metres.
type Point struct {
	X, Y, Z float64
}

// Sub returns the vector from other to p.
func (p Point) Sub(other Point) Vector {
	return Vector{p.X - other.X, p.Y - other.Y, p.Z - other.Z}
}

// Add translates p by v.
func (p Point) Add(v Vector) Point {
	return Point{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// Distance returns the Euclidean separation between p and other.
func (p Point) Distance(other Point) float64 {
	return p.Sub(other).Length()
}

// Vector is a displacement or velocity in the local Cartesian frame.
type Vector struct {
	X, Y, Z float64
}

// Dot returns the dot product of v and other.
func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length returns the Euclidean norm of v.
func (v Vector) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Scale returns v scaled by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// Lerp returns the point a fraction t of the way from a to b.
// t is not clamped; callers that need a point strictly within
// [a, b] must clamp t themselves.
func Lerp(a, b Point, t float64) Point {
	return a.Add(b.Sub(a).Scale(t))
}

// AABB is an axis-aligned bounding box covering a segment or a single
// point.
type AABB struct {
	Min, Max Point
}

// BoundingBox returns the AABB of two points.
func BoundingBox(a, b Point) AABB {
	return AABB{
		Min: Point{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)},
		Max: Point{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)},
	}
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
