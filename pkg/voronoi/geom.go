package voronoi

import (
	"math"
)

type Vertex struct {
	X float64
	Y float64
}

var NO_VERTEX = Vertex{math.Inf(1), math.Inf(1)}

// BoundingBox uses Yt for the smaller and Yb for the larger y.
type BoundingBox struct {
	Xl, Xr, Yt, Yb float64
}

func NewBoundingBox(xl, xr, yt, yb float64) BoundingBox {
	return BoundingBox{xl, xr, yt, yb}
}

func (b BoundingBox) corners() []Vertex {
	return []Vertex{{b.Xl, b.Yt}, {b.Xr, b.Yt}, {b.Xr, b.Yb}, {b.Xl, b.Yb}}
}

// Edge separates the cells of two neighboring sites. Going from Va to Vb
// the site of LeftCell is on the right-hand side. RightCell is nil for
// edges along the bounding box.
type Edge struct {
	LeftCell  *Cell
	RightCell *Cell
	Va        Vertex
	Vb        Vertex
}

func newEdge(leftCell, rightCell *Cell) *Edge {
	return &Edge{
		LeftCell:  leftCell,
		RightCell: rightCell,
		Va:        NO_VERTEX,
		Vb:        NO_VERTEX,
	}
}

type Halfedge struct {
	Cell  *Cell
	Edge  *Edge
	Angle float64
}

type halfedgesByAngle []*Halfedge

func (s halfedgesByAngle) Len() int           { return len(s) }
func (s halfedgesByAngle) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s halfedgesByAngle) Less(i, j int) bool { return s[i].Angle > s[j].Angle }

func newHalfedge(edge *Edge, cell, other *Cell) *Halfedge {
	ret := &Halfedge{
		Cell: cell,
		Edge: edge,
	}

	if other != nil {
		ret.Angle = math.Atan2(other.Site.Y-cell.Site.Y, other.Site.X-cell.Site.X)
	} else {
		va := edge.Va
		vb := edge.Vb

		if edge.LeftCell == cell {
			ret.Angle = math.Atan2(vb.X-va.X, va.Y-vb.Y)
		} else {
			ret.Angle = math.Atan2(va.X-vb.X, vb.Y-va.Y)
		}
	}
	return ret
}

func (h *Halfedge) Start() Vertex {
	if h.Edge.LeftCell == h.Cell {
		return h.Edge.Va
	}
	return h.Edge.Vb
}

func (h *Halfedge) End() Vertex {
	if h.Edge.LeftCell == h.Cell {
		return h.Edge.Vb
	}
	return h.Edge.Va
}

func equalWithEpsilon(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
