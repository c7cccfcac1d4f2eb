package voronoi

// connectEdge продлевает луч или прямую до рамки. Направление задается
// сайтами: сайт LeftCell остается справа от va->vb.
func connectEdge(edge *Edge, bbox BoundingBox) bool {
	vb := edge.Vb
	if vb != NO_VERTEX {
		return true
	}

	va := edge.Va
	xl, xr, yt, yb := bbox.Xl, bbox.Xr, bbox.Yt, bbox.Yb
	l := edge.LeftCell.Site
	r := edge.RightCell.Site
	fx := (l.X + r.X) / 2
	fy := (l.Y + r.Y) / 2

	switch {
	case equalWithEpsilon(r.Y, l.Y):
		// вертикальная серединная прямая
		if fx < xl || fx >= xr {
			return false
		}
		if l.X > r.X {
			if va == NO_VERTEX {
				va = Vertex{fx, yt}
			} else if va.Y >= yb {
				return false
			}
			vb = Vertex{fx, yb}
		} else {
			if va == NO_VERTEX {
				va = Vertex{fx, yb}
			} else if va.Y < yt {
				return false
			}
			vb = Vertex{fx, yt}
		}

	default:
		fm := (l.X - r.X) / (r.Y - l.Y)
		fb := fy - fm*fx
		if fm < -1 || fm > 1 {
			if l.X > r.X {
				if va == NO_VERTEX {
					va = Vertex{(yt - fb) / fm, yt}
				} else if va.Y >= yb {
					return false
				}
				vb = Vertex{(yb - fb) / fm, yb}
			} else {
				if va == NO_VERTEX {
					va = Vertex{(yb - fb) / fm, yb}
				} else if va.Y < yt {
					return false
				}
				vb = Vertex{(yt - fb) / fm, yt}
			}
		} else {
			if l.Y < r.Y {
				if va == NO_VERTEX {
					va = Vertex{xl, fm*xl + fb}
				} else if va.X >= xr {
					return false
				}
				vb = Vertex{xr, fm*xr + fb}
			} else {
				if va == NO_VERTEX {
					va = Vertex{xr, fm*xr + fb}
				} else if va.X < xl {
					return false
				}
				vb = Vertex{xl, fm*xl + fb}
			}
		}
	}

	edge.Va = va
	edge.Vb = vb
	return true
}

// clipEdge - отсечение Лианга-Барски.
func clipEdge(edge *Edge, bbox BoundingBox) bool {
	ax, ay := edge.Va.X, edge.Va.Y
	dx := edge.Vb.X - ax
	dy := edge.Vb.Y - ay
	t0, t1 := 0.0, 1.0

	// p*t <= q для каждой стороны рамки
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	if !clip(-dx, ax-bbox.Xl) || !clip(dx, bbox.Xr-ax) ||
		!clip(-dy, ay-bbox.Yt) || !clip(dy, bbox.Yb-ay) {
		return false
	}

	if t0 > 0 {
		edge.Va = Vertex{ax + t0*dx, ay + t0*dy}
	}
	if t1 < 1 {
		edge.Vb = Vertex{ax + t1*dx, ay + t1*dy}
	}
	return true
}
