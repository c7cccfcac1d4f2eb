package delaunay

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomNodes(seed int64, n int, extent float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	nodes := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, r.Float64()*extent, r.Float64()*extent, r.Float64()*100)
	}
	return nodes
}

// ellipseNodes places n nodes on an ellipse, in convex position. The
// angle offset breaks the mirror symmetry that would make quadruples
// cocircular.
func ellipseNodes(n int) []float64 {
	nodes := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		a := 2*math.Pi*float64(i)/float64(n) + 0.1
		nodes = append(nodes, 3*math.Cos(a), math.Sin(a), float64(i))
	}
	return nodes
}

func gridNodes(k int) []float64 {
	nodes := make([]float64, 0, 3*k*k)
	for y := 0; y < k; y++ {
		for x := 0; x < k; x++ {
			nodes = append(nodes, float64(x), float64(y), float64(x+y))
		}
	}
	return nodes
}

func lineNodes(n int) []float64 {
	nodes := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, float64(i), 2*float64(i), float64(10*i))
	}
	return nodes
}

// requireDelaunay checks the triangulation against brute force: no node
// strictly inside any circumcircle, and the Euler record count.
func requireDelaunay(t *testing.T, tri *Triangulation) {
	t.Helper()
	require.NoError(t, tri.Validate())

	n := tri.NumNodes()
	_, ctol := tri.tolerance()
	realTris := tri.Triangles()
	for _, v := range realTris {
		a, b, c := tri.point(v[0]), tri.point(v[1]), tri.point(v[2])
		require.Greater(t, orient(a, b, c), 0.0)
		for i := 0; i < n; i++ {
			d := int32(i)
			if d == v[0] || d == v[1] || d == v[2] {
				continue
			}
			require.LessOrEqual(t, inCircle(a, b, c, tri.point(d)), ctol,
				"node %d inside circumcircle of %v", d, v)
		}
	}

	require.Equal(t, 2*n-2, tri.Len())
	require.Equal(t, 2*n-2-len(tri.Hull()), len(realTris))
}

// insidePoints returns points strictly inside real triangles.
func insidePoints(tri *Triangulation, seed int64, per int) [][2]float64 {
	r := rand.New(rand.NewSource(seed))
	var out [][2]float64
	for _, v := range tri.Triangles() {
		a, b, c := tri.point(v[0]), tri.point(v[1]), tri.point(v[2])
		for i := 0; i < per; i++ {
			w0, w1 := r.Float64(), r.Float64()
			if w0+w1 > 1 {
				w0, w1 = 1-w0, 1-w1
			}
			w2 := 1 - w0 - w1
			out = append(out, [2]float64{
				w0*a.X + w1*b.X + w2*c.X,
				w0*a.Y + w1*b.Y + w2*c.Y,
			})
		}
	}
	return out
}
