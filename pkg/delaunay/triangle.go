package delaunay

const (
	// NoVertex fills the empty vertex slot of a ghost triangle.
	NoVertex int32 = -1
	// NoTriangle is an unset neighbor reference.
	NoTriangle int32 = -1
)

// Edge names a neighbor triangle and the slot at which it sees us.
type Edge struct {
	Tri  int32
	Side int8
}

// Triangle is one mesh record. Adj[i] lies across the edge V[i+1]->V[i+2]
// (indices mod 3), which is the edge opposite V[i].
//
// Real triangles are counter-clockwise. A ghost keeps NoVertex in V[2] and
// stands for the outer face beyond the hull edge V[1]->V[0]: Adj[2] leads
// into the mesh, Adj[0] and Adj[1] are the previous and next ghost along
// the counter-clockwise hull cycle.
type Triangle struct {
	V   [3]int32
	Adj [3]Edge

	// circumcircle, real triangles only
	Center  Point
	Radius2 float64
}

func (t *Triangle) ghost() bool { return t.V[2] == NoVertex }

var (
	next3 = [3]int8{1, 2, 0}
	prev3 = [3]int8{2, 0, 1}
)

// mesh is the mutable state shared by the builder and the merge.
type mesh struct {
	nodes []float64
	*arena
}

// offset is the position of node v in the x,y,v array. int32 would
// overflow past a third of its range.
func offset(v int32) int { return 3 * int(v) }

func (m *mesh) pt(v int32) Point {
	o := offset(v)
	return Point{m.nodes[o], m.nodes[o+1]}
}

func (m *mesh) link(t int32, i int8, u int32, j int8) {
	m.tris[t].Adj[i] = Edge{u, j}
	m.tris[u].Adj[j] = Edge{t, i}
}

func (m *mesh) linkEdge(t int32, i int8, e Edge) {
	m.link(t, i, e.Tri, e.Side)
}

// next and prev step along the ghost cycle.
func (m *mesh) next(g int32) int32 { return m.tris[g].Adj[1].Tri }
func (m *mesh) prev(g int32) int32 { return m.tris[g].Adj[0].Tri }

func (m *mesh) setGhost(t, a, b int32) {
	m.tris[t].V = [3]int32{a, b, NoVertex}
	m.tris[t].Center = Point{}
	m.tris[t].Radius2 = 0
}

func (m *mesh) setReal(t, a, b, c int32) {
	m.tris[t].V = [3]int32{a, b, c}
	m.tris[t].Center, m.tris[t].Radius2 = circumcircle(m.pt(a), m.pt(b), m.pt(c))
}
