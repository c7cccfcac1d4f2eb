package delaunay

import "go.uber.org/zap"

// merge joins two triangulations separated along axis: every node of left
// precedes every node of right in axis order. Returns a ghost on the hull
// of the union.
func (b *builder) merge(left, right int32, axis Axis) int32 {
	b.merges++

	tl := b.extreme(left, axis, true)
	tr := b.extreme(right, axis, false)

	tl, tr = b.lowerTangent(tl, tr)

	g := b.bridge(tl, tr)
	flips := b.flips

	for {
		gl, gr := b.next(g), b.prev(g)
		t := &b.tris[g]
		pa, pb := b.pt(t.V[0]), b.pt(t.V[1])

		valid := func(c int32) bool { return orient(pa, pb, b.pt(c)) > 0 }

		// левый кандидат: вершина за ребром a-lc левой оболочки
		lc := b.tris[gl].V[0]
		for valid(lc) {
			in := b.tris[gl].Adj[2]
			if b.tris[in.Tri].ghost() {
				break
			}
			d := b.tris[in.Tri].V[in.Side]
			if inCircle(pa, pb, b.pt(lc), b.pt(d)) <= 0 {
				break
			}
			b.expose(gl)
			b.flips++
			lc = d
		}

		rc := b.tris[gr].V[1]
		for valid(rc) {
			in := b.tris[gr].Adj[2]
			if b.tris[in.Tri].ghost() {
				break
			}
			e := b.tris[in.Tri].V[in.Side]
			if inCircle(pa, pb, b.pt(rc), b.pt(e)) <= 0 {
				break
			}
			_, gr = b.expose(gr)
			b.flips++
			rc = e
		}

		lValid, rValid := valid(lc), valid(rc)
		if !lValid && !rValid {
			break
		}

		if !lValid || (rValid && inCircle(pa, pb, b.pt(lc), b.pt(rc)) > 0) {
			b.fill(gr, g)
			g = gr
		} else {
			b.fill(g, gl)
		}
	}

	b.log.Debug("[dt-merge] Слияние завершено",
		zap.Stringer("axis", axis),
		zap.Int("flips", b.flips-flips),
	)

	return g
}

// extreme walks the ghost cycle through g and returns the ghost whose
// V[1] is the largest node along axis (max) or whose V[0] is the smallest.
func (b *builder) extreme(g int32, axis Axis, max bool) int32 {
	slot := 0
	if max {
		slot = 1
	}

	best := g
	for h := b.next(g); h != g; h = b.next(h) {
		p, q := b.pt(b.tris[h].V[slot]), b.pt(b.tris[best].V[slot])
		if (max && axis.less(q, p)) || (!max && axis.less(p, q)) {
			best = h
		}
	}
	return best
}

// lowerTangent moves tl clockwise along the left hull and tr
// counter-clockwise along the right one until the segment from V[1] of tl
// to V[0] of tr has no hull node strictly below it.
func (b *builder) lowerTangent(tl, tr int32) (int32, int32) {
	limit := b.len() + 2
	for i := 0; ; i++ {
		if i > limit {
			throwf("lower tangent search does not converge")
		}

		a, c := b.pt(b.tris[tl].V[1]), b.pt(b.tris[tr].V[0])

		if pl := b.prev(tl); orient(a, c, b.pt(b.tris[pl].V[1])) < 0 {
			tl = pl
			continue
		}
		if nr := b.next(tr); orient(a, c, b.pt(b.tris[nr].V[0])) < 0 {
			tr = nr
			continue
		}
		return tl, tr
	}
}

// bridge adds the lower tangent edge a-b as a pair of ghosts spliced into
// both hull cycles. The upper ghost [a b] is returned: it is the base edge
// the merge climbs from.
func (b *builder) bridge(tl, tr int32) int32 {
	a, c := b.tris[tl].V[1], b.tris[tr].V[0]
	pl, nr := b.prev(tl), b.next(tr)

	g1 := b.reserve(2)
	g2 := g1 + 1

	b.setGhost(g1, c, a)
	b.setGhost(g2, a, c)

	b.link(g1, 2, g2, 2)
	b.link(g1, 0, pl, 1)
	b.link(g1, 1, nr, 0)
	b.link(g2, 0, tr, 1)
	b.link(g2, 1, tl, 0)

	return g2
}

// fill turns two consecutive ghosts g1 -> g2 into one real triangle and
// one ghost. With g1 = [q p] and g2 = [s q], g2 becomes the real [p s q]
// and g1 the ghost [s p] over the new hull edge.
func (b *builder) fill(g1, g2 int32) {
	if b.next(g1) != g2 {
		throwf("fill: ghost %d does not follow %d", g2, g1)
	}

	p, q := b.tris[g1].V[1], b.tris[g1].V[0]
	s := b.tris[g2].V[0]

	n1, n2 := b.tris[g1].Adj[2], b.tris[g2].Adj[2]
	pv, nx := b.tris[g1].Adj[0], b.tris[g2].Adj[1]

	b.setReal(g2, p, s, q)
	b.setGhost(g1, s, p)

	b.linkEdge(g2, 0, n2)
	b.linkEdge(g2, 1, n1)
	b.link(g2, 2, g1, 2)

	b.linkEdge(g1, 0, pv)
	b.linkEdge(g1, 1, nx)
}

// expose deletes the hull edge behind ghost h. The real triangle r across
// it becomes a ghost too, so the hull gains its far vertex d:
// h = [q p] turns into [d p] and r into [q d].
func (b *builder) expose(h int32) (int32, int32) {
	q, p := b.tris[h].V[0], b.tris[h].V[1]

	in := b.tris[h].Adj[2]
	r, k := in.Tri, in.Side
	rt := &b.tris[r]
	if rt.ghost() || rt.V[next3[k]] != p || rt.V[prev3[k]] != q {
		throwf("expose: triangle %d does not border ghost %d", r, h)
	}
	d := rt.V[k]

	nQR := rt.Adj[next3[k]]
	nRP := rt.Adj[prev3[k]]
	pv, nx := b.tris[h].Adj[0], b.tris[h].Adj[1]

	b.setGhost(h, d, p)
	b.setGhost(r, q, d)

	b.linkEdge(h, 2, nRP)
	b.linkEdge(r, 2, nQR)
	b.linkEdge(h, 0, pv)
	b.link(h, 1, r, 0)
	b.linkEdge(r, 1, nx)

	return h, r
}
