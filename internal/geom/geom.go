// Package geom holds the stateless 2D math shared by the canvas and orbital
// workspaces: clamping, interpolation, range mapping and polar conversion.
package geom

import "math"

// Point is a 2D position. Whether it is in world or screen space depends on
// the caller.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Len returns the distance of p from the origin.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Polar is an orbital position. Angle is in degrees within [0,360) and
// Distance is normalized so 0 is the orbit center and 1 its edge.
type Polar struct {
	Angle    float64 `json:"angle"`
	Distance float64 `json:"distance"`
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// MapRange maps v from [inLo, inHi] onto [outLo, outHi]. A degenerate input
// range maps everything to outLo.
func MapRange(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// NormalizeAngle folds any angle in degrees into [0,360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360
	if a >= 360 {
		a = 0
	}
	return a
}

// PolarToCartesian converts an angle (degrees, 0 = +X, clockwise in screen
// space since Y grows downward) and a radius to an offset from the origin.
func PolarToCartesian(angleDeg, radius float64) Point {
	rad := DegToRad(angleDeg)
	return Point{
		X: radius * math.Cos(rad),
		Y: radius * math.Sin(rad),
	}
}

// CartesianToPolar converts an offset from the origin into an angle in
// [0,360) and a radius.
func CartesianToPolar(dx, dy float64) (angleDeg, radius float64) {
	return NormalizeAngle(RadToDeg(math.Atan2(dy, dx))), math.Hypot(dx, dy)
}
