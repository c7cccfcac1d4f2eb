package delaunay

// NoCoverage is the value Interpolate reports for points outside the hull.
// It is paired with ok == false and must not be read as a measured zero.
const NoCoverage = 0.0

// Barycentric locates a point inside triangle Tri: the point equals
// W[0]*V[0] + W[1]*V[1] + W[2]*V[2]. Weights are non-negative and sum to 1.
type Barycentric struct {
	Tri int32
	V   [3]int32
	W   [3]float64
}

// Locate finds the real triangle containing (x, y). Points on a shared edge
// may be reported in either neighbor.
func (t *Triangulation) Locate(x, y float64) (Barycentric, bool) {
	if len(t.tris) == 0 {
		return Barycentric{}, false
	}
	p := Point{x, y}

	if t.strategy == StrategyWalk {
		if tri, ok, done := t.walk(p); done {
			if !ok {
				return Barycentric{}, false
			}
			return t.weights(tri, p), true
		}
	}

	tri, ok := t.scan(p)
	if !ok {
		return Barycentric{}, false
	}
	return t.weights(tri, p), true
}

// Interpolate returns the barycentric blend of node values at (x, y).
// Outside the hull it returns NoCoverage and false.
//
// Without real triangles (all nodes collinear) the value is interpolated
// linearly along the chain; a single node only covers its own position.
func (t *Triangulation) Interpolate(x, y float64) (float64, bool) {
	if len(t.nodes) == 0 {
		return NoCoverage, false
	}
	if t.start == NoTriangle {
		return t.interpolateDegenerate(Point{x, y})
	}

	b, ok := t.Locate(x, y)
	if !ok {
		return NoCoverage, false
	}
	return b.W[0]*t.value(b.V[0]) + b.W[1]*t.value(b.V[1]) + b.W[2]*t.value(b.V[2]), true
}

// walk is a visibility walk from the last hit. done is false when the
// step limit ran out and the caller should fall back to a scan.
func (t *Triangulation) walk(p Point) (tri int32, ok, done bool) {
	cur := t.hint.Load()
	if cur == NoTriangle {
		return NoTriangle, false, true
	}

	for steps := 0; steps <= len(t.tris); steps++ {
		tr := &t.tris[cur]
		moved := false
		for i := 0; i < 3; i++ {
			if t.side(tr.V[next3[i]], tr.V[prev3[i]], p) < 0 {
				nb := tr.Adj[i].Tri
				if t.tris[nb].ghost() {
					// шагнули за выпуклую оболочку
					return NoTriangle, false, true
				}
				cur = nb
				moved = true
				break
			}
		}
		if !moved {
			t.hint.Store(cur)
			return cur, true, true
		}
	}

	t.log.Warn("[dt-locate] Обход не сошелся, переходим к перебору")
	return NoTriangle, false, false
}

// side is orient(u, v, p) with the endpoints taken in index order, so the
// two triangles sharing an edge get exactly opposite values for any point.
func (t *Triangulation) side(u, v int32, p Point) float64 {
	if u < v {
		return orient(t.point(u), t.point(v), p)
	}
	return -orient(t.point(v), t.point(u), p)
}

func (t *Triangulation) scan(p Point) (int32, bool) {
	for i := range t.tris {
		tr := &t.tris[i]
		if tr.ghost() {
			continue
		}
		a, b, c := tr.V[0], tr.V[1], tr.V[2]
		if t.side(b, c, p) >= 0 && t.side(c, a, p) >= 0 && t.side(a, b, p) >= 0 {
			return int32(i), true
		}
	}
	return NoTriangle, false
}

func (t *Triangulation) weights(tri int32, p Point) Barycentric {
	tr := &t.tris[tri]
	a, b, c := tr.V[0], tr.V[1], tr.V[2]

	w := [3]float64{t.side(b, c, p), t.side(c, a, p), t.side(a, b, p)}
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
	}
	sum := w[0] + w[1] + w[2]

	return Barycentric{
		Tri: tri,
		V:   tr.V,
		W:   [3]float64{w[0] / sum, w[1] / sum, w[2] / sum},
	}
}

func (t *Triangulation) interpolateDegenerate(p Point) (float64, bool) {
	if t.hull == NoTriangle {
		if t.NumNodes() == 1 && t.point(0) == p {
			return t.value(0), true
		}
		return NoCoverage, false
	}

	g := t.hull
	for {
		tr := &t.tris[g]
		va, vb := tr.V[1], tr.V[0]
		a, b := t.point(va), t.point(vb)
		if orient(a, b, p) == 0 && within(a.X, b.X, p.X) && within(a.Y, b.Y, p.Y) {
			dx, dy := b.X-a.X, b.Y-a.Y
			s := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
			return (1-s)*t.value(va) + s*t.value(vb), true
		}

		g = tr.Adj[1].Tri
		if g == t.hull {
			return NoCoverage, false
		}
	}
}

func within(a, b, v float64) bool {
	if a > b {
		a, b = b, a
	}
	return a <= v && v <= b
}
