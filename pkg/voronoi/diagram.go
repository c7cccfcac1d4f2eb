package voronoi

import (
	"math"
	"sort"

	"github.com/0x0FACED/go-dosemap/pkg/delaunay"
	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"go.uber.org/zap"
)

type Diagram struct {
	Cells []*Cell
	Edges []*Edge
}

// Vertices returns the distinct finite edge endpoints.
func (d *Diagram) Vertices() []Vertex {
	seen := make(map[Vertex]struct{}, 2*len(d.Edges))
	var out []Vertex
	for _, e := range d.Edges {
		for _, v := range [2]Vertex{e.Va, e.Vb} {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	return out
}

// FromTriangulation строит диаграмму Вороного как двойственный граф
// триангуляции: вершины - центры описанных окружностей, ребра соединяют
// центры соседних треугольников, ребрам оболочки соответствуют лучи.
func FromTriangulation(tri *delaunay.Triangulation, bbox BoundingBox, closeCells bool, log *logger.ZapLogger) *Diagram {
	if log == nil {
		log = logger.NewNop()
	}
	n := tri.NumNodes()
	log.Info("[v] Построение диаграммы по триангуляции", zap.Int("sites", n), zap.Int("records", tri.Len()))

	cells := make([]*Cell, n)
	for i := range cells {
		p, _ := tri.Node(int32(i))
		cells[i] = newCell(Vertex{p.X, p.Y}, int32(i))
	}

	var edges []*Edge
	add := func(l, r int32, va, vb Vertex) {
		e := newEdge(cells[l], cells[r])
		e.Va, e.Vb = va, vb
		edges = append(edges, e)
	}

	var rays, lines int
	for i := 0; i < tri.Len(); i++ {
		t := tri.Triangle(int32(i))
		if tri.IsGhost(int32(i)) {
			// цепочка коллинеарных точек: у соседних призраков нет
			// реального треугольника, ребро - вся серединная прямая
			twin := t.Adj[2].Tri
			if tri.IsGhost(twin) && int32(i) < twin {
				add(t.V[1], t.V[0], NO_VERTEX, NO_VERTEX)
				lines++
			}
			continue
		}
		c := Vertex{t.Center.X, t.Center.Y}
		for k := 0; k < 3; k++ {
			p, q := t.V[(k+1)%3], t.V[(k+2)%3]
			o := t.Adj[k].Tri
			if tri.IsGhost(o) {
				add(p, q, c, NO_VERTEX)
				rays++
				continue
			}
			if int32(i) < o {
				oc, _ := tri.Circumcircle(o)
				add(p, q, c, Vertex{oc.X, oc.Y})
			}
		}
	}
	log.Info("[v] Ребра собраны", zap.Int("edges", len(edges)), zap.Int("rays", rays), zap.Int("lines", lines))

	edges = clipEdges(edges, bbox)
	log.Info("[v] Ребра обрезаны по рамке", zap.Int("edges", len(edges)))

	for _, e := range edges {
		e.LeftCell.Halfedges = append(e.LeftCell.Halfedges, newHalfedge(e, e.LeftCell, e.RightCell))
		e.RightCell.Halfedges = append(e.RightCell.Halfedges, newHalfedge(e, e.RightCell, e.LeftCell))
	}
	for _, c := range cells {
		c.prepare()
	}

	if closeCells {
		closeAll(tri, cells, bbox)
		log.Info("[v] Ячейки замкнуты")
	}

	return &Diagram{Cells: cells, Edges: edges}
}

// closeAll clips the box by the bisector of every Delaunay neighbour.
func closeAll(tri *delaunay.Triangulation, cells []*Cell, bbox BoundingBox) {
	nbrs := neighbours(tri)
	for i, c := range cells {
		poly := bbox.corners()
		for _, j := range nbrs[i] {
			s := cells[j].Site
			nx, ny := s.X-c.Site.X, s.Y-c.Site.Y
			d := (s.X*s.X + s.Y*s.Y - c.Site.X*c.Site.X - c.Site.Y*c.Site.Y) / 2
			poly = clipHalfPlane(poly, nx, ny, d)
		}
		c.Polygon = poly
	}
}

func neighbours(tri *delaunay.Triangulation) [][]int32 {
	out := make([][]int32, tri.NumNodes())
	link := func(a, b int32) {
		out[a] = append(out[a], b)
		out[b] = append(out[b], a)
	}
	for i := 0; i < tri.Len(); i++ {
		t := tri.Triangle(int32(i))
		if tri.IsGhost(int32(i)) {
			link(t.V[0], t.V[1])
			continue
		}
		for k := 0; k < 3; k++ {
			link(t.V[k], t.V[(k+1)%3])
		}
	}
	for i, l := range out {
		sort.Slice(l, func(a, b int) bool { return l[a] < l[b] })
		uniq := l[:0]
		for k, v := range l {
			if k == 0 || v != l[k-1] {
				uniq = append(uniq, v)
			}
		}
		out[i] = uniq
	}
	return out
}

func clipEdges(edges []*Edge, bbox BoundingBox) []*Edge {
	for i := len(edges) - 1; i >= 0; i-- {
		edge := edges[i]

		if !connectEdge(edge, bbox) || !clipEdge(edge, bbox) || (math.Abs(edge.Va.X-edge.Vb.X) < 1e-9 && math.Abs(edge.Va.Y-edge.Vb.Y) < 1e-9) {
			edge.Va = NO_VERTEX
			edge.Vb = NO_VERTEX
			edges[i] = edges[len(edges)-1]
			edges = edges[:len(edges)-1]
		}
	}
	return edges
}
