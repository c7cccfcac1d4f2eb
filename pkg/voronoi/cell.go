package voronoi

import "sort"

type Cell struct {
	Site  Vertex
	Index int32

	// Halfedges run clockwise around the site.
	Halfedges []*Halfedge
	// Polygon is the cell clipped to the bounding box, counterclockwise.
	Polygon []Vertex
}

func newCell(site Vertex, index int32) *Cell {
	return &Cell{Site: site, Index: index}
}

// prepare drops halfedges whose edge was clipped away and sorts the rest
// by angle.
func (c *Cell) prepare() int {
	halfedges := c.Halfedges[:0]
	for _, h := range c.Halfedges {
		if h.Edge.Va != NO_VERTEX && h.Edge.Vb != NO_VERTEX {
			halfedges = append(halfedges, h)
		}
	}

	sort.Sort(halfedgesByAngle(halfedges))
	c.Halfedges = halfedges
	return len(halfedges)
}

// Neighbors lists the indices of the sites sharing an edge with this one.
func (c *Cell) Neighbors() []int32 {
	var out []int32
	for _, h := range c.Halfedges {
		other := h.Edge.RightCell
		if other == c {
			other = h.Edge.LeftCell
		}
		if other != nil {
			out = append(out, other.Index)
		}
	}
	return out
}

// Area of the clipped polygon.
func (c *Cell) Area() float64 {
	a := 0.0
	for i, p := range c.Polygon {
		q := c.Polygon[(i+1)%len(c.Polygon)]
		a += p.X*q.Y - q.X*p.Y
	}
	if a < 0 {
		a = -a
	}
	return a / 2
}

// clipHalfPlane keeps the part of the convex polygon where n·p <= d.
func clipHalfPlane(poly []Vertex, nx, ny, d float64) []Vertex {
	if len(poly) == 0 {
		return nil
	}
	out := make([]Vertex, 0, len(poly)+1)
	side := func(p Vertex) float64 { return nx*p.X + ny*p.Y - d }

	prev := poly[len(poly)-1]
	sp := side(prev)
	for _, cur := range poly {
		sc := side(cur)
		if (sp <= 0) != (sc <= 0) {
			t := sp / (sp - sc)
			out = append(out, Vertex{prev.X + t*(cur.X-prev.X), prev.Y + t*(cur.Y-prev.Y)})
		}
		if sc <= 0 {
			out = append(out, cur)
		}
		prev, sp = cur, sc
	}
	return out
}
