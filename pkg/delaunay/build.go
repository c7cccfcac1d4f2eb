package delaunay

import (
	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"go.uber.org/zap"
)

type builder struct {
	mesh
	log    *logger.ZapLogger
	merges int
	flips  int
}

// build triangulates refs and returns a ghost on the hull of the result.
// refs is reordered in place.
func (b *builder) build(refs []int32, axis Axis) int32 {
	switch len(refs) {
	case 2:
		return b.segment(refs[0], refs[1])
	case 3:
		return b.triangle(refs[0], refs[1], refs[2], axis)
	}

	med := len(refs) / 2
	b.selectKth(refs, med, axis)

	left := b.build(refs[:med], axis.toggle())
	right := b.build(refs[med:], axis.toggle())

	return b.merge(left, right, axis)
}

// segment makes the two ghosts of a lone edge p-q.
func (b *builder) segment(p, q int32) int32 {
	g1 := b.reserve(2)
	g2 := g1 + 1

	b.setGhost(g1, q, p)
	b.setGhost(g2, p, q)

	b.link(g1, 2, g2, 2)
	b.link(g1, 1, g2, 0)
	b.link(g2, 1, g1, 0)

	return g1
}

func (b *builder) triangle(p, q, r int32, axis Axis) int32 {
	o := orient(b.pt(p), b.pt(q), b.pt(r))
	if o == 0 {
		return b.chain(p, q, r, axis)
	}
	if o < 0 {
		q, r = r, q
	}

	t := b.reserve(4)
	gpq, gqr, grp := t+1, t+2, t+3

	b.setReal(t, p, q, r)
	b.setGhost(gpq, q, p)
	b.setGhost(gqr, r, q)
	b.setGhost(grp, p, r)

	b.link(t, 2, gpq, 2)
	b.link(t, 0, gqr, 2)
	b.link(t, 1, grp, 2)

	b.link(gpq, 1, gqr, 0)
	b.link(gqr, 1, grp, 0)
	b.link(grp, 1, gpq, 0)

	return gpq
}

// chain joins three collinear nodes with two edges through the middle one.
// Both sides of each edge are ghosts, no real triangle is made.
func (b *builder) chain(p, q, r int32, axis Axis) int32 {
	less := func(u, v int32) bool { return axis.less(b.pt(u), b.pt(v)) }
	if less(q, p) {
		p, q = q, p
	}
	if less(r, q) {
		q, r = r, q
	}
	if less(q, p) {
		p, q = q, p
	}
	// p < q < r

	g := b.reserve(4)
	g1, g2, g3, g4 := g, g+1, g+2, g+3

	b.setGhost(g1, q, p)
	b.setGhost(g2, r, q)
	b.setGhost(g3, q, r)
	b.setGhost(g4, p, q)

	b.link(g1, 2, g4, 2)
	b.link(g2, 2, g3, 2)

	b.link(g1, 1, g2, 0)
	b.link(g2, 1, g3, 0)
	b.link(g3, 1, g4, 0)
	b.link(g4, 1, g1, 0)

	b.log.Debug("[dt-build] Три точки на одной прямой, строим цепочку",
		zap.Int32("p", p), zap.Int32("q", q), zap.Int32("r", r))

	return g1
}

// selectKth partially orders refs so that refs[k] holds the k-th smallest
// node along axis, with smaller ones before it and larger ones after.
func (b *builder) selectKth(refs []int32, k int, axis Axis) {
	less := func(i, j int) bool { return axis.less(b.pt(refs[i]), b.pt(refs[j])) }

	lo, hi := 0, len(refs)-1
	for lo < hi {
		// медиана из трех в refs[hi] как опорный
		mid := lo + (hi-lo)/2
		if less(mid, lo) {
			refs[mid], refs[lo] = refs[lo], refs[mid]
		}
		if less(hi, lo) {
			refs[hi], refs[lo] = refs[lo], refs[hi]
		}
		if less(mid, hi) {
			refs[mid], refs[hi] = refs[hi], refs[mid]
		}

		store := lo
		for i := lo; i < hi; i++ {
			if less(i, hi) {
				refs[i], refs[store] = refs[store], refs[i]
				store++
			}
		}
		refs[store], refs[hi] = refs[hi], refs[store]

		switch {
		case store == k:
			return
		case store < k:
			lo = store + 1
		default:
			hi = store - 1
		}
	}
}
