package delaunay

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Triangulation is a Delaunay triangulation over a caller-owned node array
// laid out as x0,y0,v0, x1,y1,v1, ... The array is referenced, not copied,
// and must stay untouched while the triangulation is in use.
//
// After Triangulate returns the triangulation is read-only and safe for
// concurrent queries.
type Triangulation struct {
	nodes []float64
	tris  []Triangle
	hull  int32
	start int32

	strategy Strategy
	hint     atomic.Int32
	log      *logger.ZapLogger
}

type Strategy uint8

const (
	// StrategyWalk steps from triangle to triangle towards the query,
	// starting where the previous query ended.
	StrategyWalk Strategy = iota
	// StrategyScan tests every real triangle in turn.
	StrategyScan
)

type Option func(*Triangulation)

func WithLogger(l *logger.ZapLogger) Option {
	return func(t *Triangulation) {
		if l != nil {
			t.log = l
		}
	}
}

func WithStrategy(s Strategy) Option {
	return func(t *Triangulation) {
		t.strategy = s
	}
}

func newTriangulation(nodes []float64, opts []Option) *Triangulation {
	t := &Triangulation{
		nodes: nodes,
		hull:  NoTriangle,
		start: NoTriangle,
		log:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Triangulate builds the Delaunay triangulation of len(nodes)/3 nodes.
// Coincident positions are rejected with ErrDuplicateNode.
func Triangulate(nodes []float64, opts ...Option) (*Triangulation, error) {
	t := newTriangulation(nodes, opts)

	n, err := checkNodes(nodes)
	if err != nil {
		return nil, err
	}

	t.log.Debug("[dt] Построение триангуляции запущено", zap.Int("nodes", n))

	refs := make([]int32, n)
	for i := range refs {
		refs[i] = int32(i)
	}

	// дубликаты ищем по лексикографическому порядку
	sort.Slice(refs, func(i, j int) bool {
		return AxisX.less(t.point(refs[i]), t.point(refs[j]))
	})
	for i := 1; i < n; i++ {
		if t.point(refs[i-1]) == t.point(refs[i]) {
			t.log.Error("[dt] Найден дубликат!", zap.Int32("a", refs[i-1]), zap.Int32("b", refs[i]))
			return nil, errors.Wrapf(ErrDuplicateNode, "nodes %d and %d", refs[i-1], refs[i])
		}
	}

	b := &builder{
		mesh: mesh{nodes: nodes, arena: newArena(n)},
		log:  t.log,
	}

	root, err := b.run(refs)
	if err != nil {
		t.log.Error("[dt] Построение прервано", zap.Error(err))
		return nil, err
	}

	t.tris = b.tris[:b.len()]
	t.hull = root
	t.start = t.firstReal()
	t.hint.Store(t.start)

	t.log.Info("[dt] Триангуляция построена",
		zap.Int("nodes", n),
		zap.Int("triangles", len(t.tris)),
		zap.Int("merges", b.merges),
		zap.Int("flips", b.flips),
	)

	return t, nil
}

func (b *builder) run(refs []int32) (root int32, err error) {
	defer recoverInternal(&err)

	if len(refs) < 2 {
		return NoTriangle, nil
	}
	root = b.build(refs, AxisX)
	if b.len() != len(b.tris) {
		throwf("used %d of %d triangle records", b.len(), len(b.tris))
	}
	return root, nil
}

// maxNodes keeps both 2N-2 records and 3N array slots in int32.
const maxNodes = math.MaxInt32 / 3

func checkCount(n int) error {
	if n == 0 {
		return ErrNoNodes
	}
	if n > maxNodes {
		return errors.Wrapf(ErrTooManyNodes, "%d nodes", n)
	}
	return nil
}

func checkNodes(nodes []float64) (int, error) {
	if len(nodes)%3 != 0 {
		return 0, errors.Wrapf(ErrMalformedNodes, "length %d", len(nodes))
	}
	n := len(nodes) / 3
	if err := checkCount(n); err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		x, y := nodes[3*i], nodes[3*i+1]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			return 0, errors.Wrapf(ErrNonFinite, "node %d", i)
		}
	}
	return n, nil
}

// Free drops the triangle records. Queries on a freed triangulation report
// no coverage.
func (t *Triangulation) Free() {
	t.tris = nil
	t.nodes = nil
	t.hull = NoTriangle
	t.start = NoTriangle
	t.hint.Store(NoTriangle)
}

func (t *Triangulation) point(v int32) Point {
	o := offset(v)
	return Point{t.nodes[o], t.nodes[o+1]}
}

func (t *Triangulation) value(v int32) float64 {
	return t.nodes[offset(v)+2]
}

func (t *Triangulation) firstReal() int32 {
	for i := range t.tris {
		if !t.tris[i].ghost() {
			return int32(i)
		}
	}
	return NoTriangle
}

func (t *Triangulation) NumNodes() int { return len(t.nodes) / 3 }

// Len is the number of triangle records, ghosts included.
func (t *Triangulation) Len() int { return len(t.tris) }

// Node returns position and value of node i.
func (t *Triangulation) Node(i int32) (Point, float64) {
	return t.point(i), t.value(i)
}

// Triangle returns a copy of record i.
func (t *Triangulation) Triangle(i int32) Triangle {
	return t.tris[i]
}

func (t *Triangulation) IsGhost(i int32) bool {
	return t.tris[i].ghost()
}

// Triangles lists the vertex triples of the real triangles, counter-clockwise.
func (t *Triangulation) Triangles() [][3]int32 {
	out := make([][3]int32, 0, len(t.tris))
	for i := range t.tris {
		if !t.tris[i].ghost() {
			out = append(out, t.tris[i].V)
		}
	}
	return out
}

// Hull returns the hull nodes in counter-clockwise order. When all nodes
// are collinear the cycle runs along the chain and back.
func (t *Triangulation) Hull() []int32 {
	if t.hull == NoTriangle {
		if t.NumNodes() == 1 {
			return []int32{0}
		}
		return nil
	}
	var out []int32
	g := t.hull
	for {
		out = append(out, t.tris[g].V[1])
		g = t.tris[g].Adj[1].Tri
		if g == t.hull {
			return out
		}
	}
}

// Circumcircle returns the cached circumcircle of real triangle i.
func (t *Triangulation) Circumcircle(i int32) (Point, float64) {
	return t.tris[i].Center, t.tris[i].Radius2
}

// FromTriangles rebuilds a triangulation from previously exported records,
// for example a snapshot. Circumcircles are recomputed and the result is
// validated before it is returned.
func FromTriangles(nodes []float64, tris []Triangle, opts ...Option) (*Triangulation, error) {
	t := newTriangulation(nodes, opts)

	n, err := checkNodes(nodes)
	if err != nil {
		return nil, err
	}
	if len(tris) != arenaSize(n) {
		return nil, errors.Wrapf(ErrCorrupt, "%d records for %d nodes", len(tris), n)
	}

	t.tris = append([]Triangle(nil), tris...)
	for i := range t.tris {
		tr := &t.tris[i]
		for k, v := range tr.V {
			if v < NoVertex || int(v) >= n || (v == NoVertex && k != 2) {
				return nil, errors.Wrapf(ErrCorrupt, "triangle %d: bad vertex %d", i, v)
			}
		}
		for _, e := range tr.Adj {
			if e.Tri < 0 || int(e.Tri) >= len(t.tris) || e.Side < 0 || e.Side > 2 {
				return nil, errors.Wrapf(ErrCorrupt, "triangle %d: bad neighbor %v", i, e)
			}
		}
		if tr.ghost() {
			tr.Center, tr.Radius2 = Point{}, 0
			if t.hull == NoTriangle {
				t.hull = int32(i)
			}
		} else {
			tr.Center, tr.Radius2 = circumcircle(t.point(tr.V[0]), t.point(tr.V[1]), t.point(tr.V[2]))
		}
	}
	t.start = t.firstReal()
	t.hint.Store(t.start)

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
