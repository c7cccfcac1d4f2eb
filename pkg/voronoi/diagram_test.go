package voronoi

import (
	"math"
	"math/rand"
	"testing"

	"github.com/0x0FACED/go-dosemap/pkg/delaunay"
	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagramOf(t *testing.T, nodes []float64, bbox BoundingBox) *Diagram {
	t.Helper()
	tri, err := delaunay.Triangulate(nodes)
	require.NoError(t, err)
	return FromTriangulation(tri, bbox, true, logger.NewNop())
}

func boxArea(b BoundingBox) float64 {
	return (b.Xr - b.Xl) * (b.Yb - b.Yt)
}

// inside reports whether p lies in the counter-clockwise convex polygon.
func inside(poly []Vertex, p Vertex) bool {
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		if (b.X-a.X)*(p.Y-a.Y)-(b.Y-a.Y)*(p.X-a.X) < -1e-9 {
			return false
		}
	}
	return len(poly) > 0
}

func TestFromTriangulation_Square(t *testing.T) {
	bbox := NewBoundingBox(-1, 2, -1, 2)
	d := diagramOf(t, []float64{0, 0, 1, 1, 0, 2, 1, 1, 3, 0, 1, 4}, bbox)

	// cocircular: the inner edge collapses to a point, four rays remain
	require.Len(t, d.Edges, 4)
	for _, e := range d.Edges {
		assert.InDelta(t, 0.5, e.Va.X, 1e-12)
		assert.InDelta(t, 0.5, e.Va.Y, 1e-12)
	}

	require.Len(t, d.Cells, 4)
	for _, c := range d.Cells {
		assert.InDelta(t, 2.25, c.Area(), 1e-9)
		assert.True(t, inside(c.Polygon, c.Site))
		assert.Len(t, c.Halfedges, 2)
	}
}

func TestFromTriangulation_Collinear(t *testing.T) {
	bbox := NewBoundingBox(-1, 3, -1, 1)
	d := diagramOf(t, []float64{1, 0, 5, 0, 0, 5, 2, 0, 5}, bbox)

	require.Len(t, d.Edges, 2)
	xs := map[float64]bool{}
	for _, e := range d.Edges {
		assert.Equal(t, e.Va.X, e.Vb.X)
		assert.ElementsMatch(t, []float64{-1, 1}, []float64{e.Va.Y, e.Vb.Y})
		xs[e.Va.X] = true
	}
	assert.Equal(t, map[float64]bool{0.5: true, 1.5: true}, xs)

	assert.InDelta(t, 2.0, d.Cells[0].Area(), 1e-12)
	assert.InDelta(t, 3.0, d.Cells[1].Area(), 1e-12)
	assert.InDelta(t, 3.0, d.Cells[2].Area(), 1e-12)
	assert.ElementsMatch(t, []int32{1, 2}, d.Cells[0].Neighbors())
}

func TestFromTriangulation_SingleSite(t *testing.T) {
	bbox := NewBoundingBox(0, 4, 0, 2)
	d := diagramOf(t, []float64{1, 1, 7}, bbox)

	assert.Empty(t, d.Edges)
	require.Len(t, d.Cells, 1)
	assert.InDelta(t, boxArea(bbox), d.Cells[0].Area(), 1e-12)
}

func TestFromTriangulation_Random(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	const n = 200
	nodes := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, r.Float64()*100, r.Float64()*100, r.Float64())
	}
	bbox := NewBoundingBox(-10, 110, -10, 110)
	d := diagramOf(t, nodes, bbox)

	total := 0.0
	for _, c := range d.Cells {
		total += c.Area()
		require.True(t, inside(c.Polygon, c.Site), "site %d", c.Index)
		for i := 1; i < len(c.Halfedges); i++ {
			assert.GreaterOrEqual(t, c.Halfedges[i-1].Angle, c.Halfedges[i].Angle)
		}
	}
	assert.InDelta(t, boxArea(bbox), total, 1e-6)

	for _, e := range d.Edges {
		for _, v := range [2]Vertex{e.Va, e.Vb} {
			assert.True(t, v.X >= bbox.Xl-1e-9 && v.X <= bbox.Xr+1e-9, "%v", v)
			assert.True(t, v.Y >= bbox.Yt-1e-9 && v.Y <= bbox.Yb+1e-9, "%v", v)
		}
		// every point of a Voronoi edge is equidistant from both sites
		mid := Vertex{(e.Va.X + e.Vb.X) / 2, (e.Va.Y + e.Vb.Y) / 2}
		l, rs := e.LeftCell.Site, e.RightCell.Site
		assert.InDelta(t, math.Hypot(mid.X-l.X, mid.Y-l.Y), math.Hypot(mid.X-rs.X, mid.Y-rs.Y), 1e-6)
	}

	// query points land in the cell of their nearest site
	for k := 0; k < 500; k++ {
		p := Vertex{r.Float64()*120 - 10, r.Float64()*120 - 10}
		best, bd := 0, math.Inf(1)
		for i, c := range d.Cells {
			if dd := math.Hypot(p.X-c.Site.X, p.Y-c.Site.Y); dd < bd {
				best, bd = i, dd
			}
		}
		assert.True(t, inside(d.Cells[best].Polygon, p), "point %v", p)
	}
}

func TestFromTriangulation_HalfedgesChain(t *testing.T) {
	bbox := NewBoundingBox(-5, 15, -5, 15)
	nodes := []float64{}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			nodes = append(nodes, float64(x)*3+0.1*float64(y), float64(y)*3, 0)
		}
	}
	d := diagramOf(t, nodes, bbox)

	// interior cells are bounded, their halfedges form a closed loop
	for _, c := range d.Cells {
		if c.Index != 5 && c.Index != 6 && c.Index != 9 && c.Index != 10 {
			continue
		}
		require.NotEmpty(t, c.Halfedges)
		for i, h := range c.Halfedges {
			next := c.Halfedges[(i+1)%len(c.Halfedges)]
			assert.InDelta(t, h.End().X, next.Start().X, 1e-9)
			assert.InDelta(t, h.End().Y, next.Start().Y, 1e-9)
		}
	}
}

func TestClipEdge(t *testing.T) {
	bbox := NewBoundingBox(0, 10, 0, 10)

	e := &Edge{Va: Vertex{-5, 5}, Vb: Vertex{15, 5}}
	require.True(t, clipEdge(e, bbox))
	assert.Equal(t, Vertex{0, 5}, e.Va)
	assert.Equal(t, Vertex{10, 5}, e.Vb)

	e = &Edge{Va: Vertex{-5, -5}, Vb: Vertex{-1, 20}}
	assert.False(t, clipEdge(e, bbox))

	e = &Edge{Va: Vertex{2, 2}, Vb: Vertex{3, 4}}
	require.True(t, clipEdge(e, bbox))
	assert.Equal(t, Vertex{2, 2}, e.Va)
	assert.Equal(t, Vertex{3, 4}, e.Vb)
}

func TestClipHalfPlane(t *testing.T) {
	box := NewBoundingBox(0, 2, 0, 2).corners()
	half := clipHalfPlane(box, 1, 0, 1)
	c := &Cell{Polygon: half}
	assert.InDelta(t, 2.0, c.Area(), 1e-12)
	assert.Empty(t, clipHalfPlane(box, 1, 0, -1))
}
