// Package geom holds the 2D vector math shared by the emulator and the planner.
package geom

import (
	"math"
	"math/rand"
)

// Vec2 is a point or direction in world coordinates.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2             { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2             { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2        { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Div(k float64) Vec2          { return Vec2{a.X / k, a.Y / k} }
func (a Vec2) Dot(b Vec2) float64          { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Cross(b Vec2) float64        { return a.X*b.Y - a.Y*b.X }
func (a Vec2) Len2() float64               { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Len() float64                { return math.Sqrt(a.Len2()) }
func (a Vec2) Dist(b Vec2) float64         { return a.Sub(b).Len() }
func (a Vec2) Dist2(b Vec2) float64        { return a.Sub(b).Len2() }
func (a Vec2) IsZero() bool                { return a.X == 0 && a.Y == 0 }
func (a Vec2) Rot90() Vec2                 { return Vec2{-a.Y, a.X} }
func (a Vec2) Neg() Vec2                   { return Vec2{-a.X, -a.Y} }
func (a Vec2) Lerp(b Vec2, t float64) Vec2 { return a.Add(b.Sub(a).Scale(t)) }

// Norm returns the unit vector in the direction of a. The zero vector
// normalises to itself so callers never divide by zero.
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return a.Div(l)
}

// Rotate turns a counter-clockwise by angle radians.
func (a Vec2) Rotate(angle float64) Vec2 {
	s, c := math.Sincos(angle)
	return Vec2{a.X*c - a.Y*s, a.X*s + a.Y*c}
}

// Angle returns the unsigned angle between a and b in radians.
func Angle(a, b Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// FromAngle returns the unit vector at angle radians.
func FromAngle(angle float64) Vec2 {
	s, c := math.Sincos(angle)
	return Vec2{c, s}
}

// RandomUniform returns a vector with both components uniform in [-1, 1).
func RandomUniform(rng *rand.Rand) Vec2 {
	return Vec2{2*rng.Float64() - 1, 2*rng.Float64() - 1}
}
