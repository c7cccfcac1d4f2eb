package delaunay

import "math"

type Point struct {
	X float64
	Y float64
}

// orient returns twice the signed area of abc: > 0 when abc turns left.
func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// inCircle is positive when d lies strictly inside the circle through the
// CCW triangle abc.
func inCircle(a, b, c, d Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy

	return adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
}

// circumcircle returns the center and squared radius of the circle through
// a, b and c. Collinear input gives an infinite radius.
func circumcircle(a, b, c Point) (Point, float64) {
	// смещаемся в a, чтобы не терять точность на больших координатах
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y

	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return Point{math.Inf(1), math.Inf(1)}, math.Inf(1)
	}

	hb := bx*bx + by*by
	hc := cx*cx + cy*cy
	ux := (cy*hb - by*hc) / d
	uy := (bx*hc - cx*hb) / d

	return Point{a.X + ux, a.Y + uy}, ux*ux + uy*uy
}

type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) toggle() Axis { return a ^ 1 }

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// less is a strict total order for distinct points. Ties on the main
// coordinate go to the other one, so a median split always gives two
// halves separated by a line. For AxisY the secondary key is reversed:
// (y, -x) is the x order turned by 90 degrees, which lets the merge use
// one routine for both axes.
func (a Axis) less(p, q Point) bool {
	if a == AxisX {
		if p.X != q.X {
			return p.X < q.X
		}
		return p.Y < q.Y
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X > q.X
}
