package geom

// Matrix2D is a 2D affine transform in Canvas2D setTransform order
// [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//
// Board views only ever scale uniformly and translate, so b and c stay 0.
type Matrix2D [6]float64

// ScaleTranslate scales by s about the origin, then moves by (tx, ty).
func ScaleTranslate(s, tx, ty float64) Matrix2D {
	return Matrix2D{s, 0, 0, s, tx, ty}
}

// Apply transforms a point.
func (m Matrix2D) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// ApplyRect maps r through m. With no shear two opposite corners are
// enough; they are reordered if the scale is negative.
func (m Matrix2D) ApplyRect(r Rect) Rect {
	a := m.Apply(Point{X: r.X, Y: r.Y})
	b := m.Apply(Point{X: r.X + r.Width, Y: r.Y + r.Height})
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  max(a.X, b.X) - min(a.X, b.X),
		Height: max(a.Y, b.Y) - min(a.Y, b.Y),
	}
}
