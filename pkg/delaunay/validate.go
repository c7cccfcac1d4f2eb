package delaunay

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
)

// Validate audits the records: orientation of real triangles, mutual
// neighbor links, the empty circumcircle property on every internal edge,
// one ghost cycle around a convex hull, and the record count.
func (t *Triangulation) Validate() error {
	n := t.NumNodes()
	if len(t.tris) != arenaSize(n) {
		return errors.Wrapf(ErrCorrupt, "%d records for %d nodes", len(t.tris), n)
	}
	if len(t.tris) == 0 {
		return nil
	}

	otol, ctol := t.tolerance()
	ghosts := 0

	for i := range t.tris {
		ti := int32(i)
		tr := &t.tris[i]
		if tr.ghost() {
			ghosts++
		} else if o := orient(t.point(tr.V[0]), t.point(tr.V[1]), t.point(tr.V[2])); o <= 0 {
			return errors.Wrapf(ErrCorrupt, "triangle %d is not counter-clockwise", i)
		}

		for k := int8(0); k < 3; k++ {
			e := tr.Adj[k]
			nb := &t.tris[e.Tri]
			if nb.Adj[e.Side] != (Edge{ti, k}) {
				return errors.Wrapf(ErrCorrupt, "triangle %d side %d: link to %d is one-way", i, k, e.Tri)
			}
			// общее ребро проходится в обратную сторону
			if tr.V[next3[k]] != nb.V[prev3[e.Side]] || tr.V[prev3[k]] != nb.V[next3[e.Side]] {
				return errors.Wrapf(ErrCorrupt, "triangle %d side %d: edge differs from triangle %d", i, k, e.Tri)
			}

			if tr.ghost() || nb.ghost() {
				continue
			}
			d := nb.V[e.Side]
			a, b, c := t.point(tr.V[0]), t.point(tr.V[1]), t.point(tr.V[2])
			if inCircle(a, b, c, t.point(d)) > ctol {
				return errors.Wrapf(ErrCorrupt, "node %d inside circumcircle of triangle %d", d, i)
			}
		}
	}

	return t.validateHull(ghosts, otol)
}

func (t *Triangulation) validateHull(ghosts int, tol float64) error {
	if t.hull == NoTriangle || !t.tris[t.hull].ghost() {
		return errors.Wrap(ErrCorrupt, "no hull ghost")
	}

	seen := roaring.New()
	g := t.hull
	for {
		if !t.tris[g].ghost() {
			return errors.Wrapf(ErrCorrupt, "hull cycle enters real triangle %d", g)
		}
		if !seen.CheckedAdd(uint32(g)) {
			return errors.Wrapf(ErrCorrupt, "hull cycle revisits ghost %d before closing", g)
		}

		nx := t.tris[g].Adj[1].Tri
		a, b, c := t.point(t.tris[g].V[1]), t.point(t.tris[g].V[0]), t.point(t.tris[nx].V[0])
		if orient(a, b, c) < -tol {
			return errors.Wrapf(ErrCorrupt, "hull turns clockwise at node %d", t.tris[g].V[0])
		}

		g = nx
		if g == t.hull {
			break
		}
	}

	if int(seen.GetCardinality()) != ghosts {
		return errors.Wrapf(ErrCorrupt, "hull cycle has %d of %d ghosts", seen.GetCardinality(), ghosts)
	}
	return nil
}

// tolerance scales the slack of orient and inCircle with the extent of the
// node set. Small integer coordinates keep both predicates exact.
func (t *Triangulation) tolerance() (float64, float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	integral := true
	for i := 0; i < t.NumNodes(); i++ {
		p := t.point(int32(i))
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		if p.X != math.Trunc(p.X) || p.Y != math.Trunc(p.Y) {
			integral = false
		}
	}
	ext := math.Max(maxX-minX, maxY-minY)
	if integral && ext < 1<<10 {
		return 0, 0
	}
	return 1e-12 * ext * ext, 1e-10 * ext * ext * ext * ext
}
