package render

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"testing"

	"github.com/0x0FACED/go-dosemap/pkg/delaunay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planarTriangulation(t *testing.T) *delaunay.Triangulation {
	t.Helper()
	var nodes []float64
	for y := 0; y <= 4; y++ {
		for x := 0; x <= 4; x++ {
			fx, fy := float64(x), float64(y)
			nodes = append(nodes, fx, fy, 1+fx+2*fy)
		}
	}
	tri, err := delaunay.Triangulate(nodes)
	require.NoError(t, err)
	return tri
}

func TestGridFor(t *testing.T) {
	g := GridFor([][2]float64{{0, 0}, {10, 5}, {2, 1}}, 20)
	assert.Equal(t, Grid{MinX: 0, MinY: 0, MaxX: 10, MaxY: 5, Cols: 20, Rows: 10}, g)

	x, y := g.Center(0, 0)
	assert.Equal(t, 0.25, x)
	assert.Equal(t, 0.25, y)

	flat := GridFor([][2]float64{{0, 3}, {4, 3}}, 8)
	assert.Equal(t, 2.5, flat.MinY)
	assert.Equal(t, 3.5, flat.MaxY)
	assert.Equal(t, 2, flat.Rows)
}

func TestSample(t *testing.T) {
	tri := planarTriangulation(t)
	g := Grid{MinX: -1, MinY: -1, MaxX: 5, MaxY: 5, Cols: 24, Rows: 24}

	r, err := Sample(context.Background(), tri, g, WithWorkers(3))
	require.NoError(t, err)
	require.Len(t, r.Values, 24*24)

	for row := 0; row < g.Rows; row++ {
		for c := 0; c < g.Cols; c++ {
			x, y := g.Center(c, row)
			v := r.At(c, row)
			if x < 0 || x > 4 || y < 0 || y > 4 {
				assert.True(t, math.IsNaN(v), "(%v, %v)", x, y)
				continue
			}
			assert.InDelta(t, 1+x+2*y, v, 1e-9)
		}
	}

	lo, hi, ok := r.Range()
	require.True(t, ok)
	assert.InDelta(t, 1+0.125+0.25, lo, 1e-9)
	assert.InDelta(t, 1+3.875+7.75, hi, 1e-9)
	assert.InDelta(t, 16.0*16/(24*24), r.Coverage(), 1e-12)
}

func TestSample_FieldFunc(t *testing.T) {
	f := FieldFunc(func(x, y float64) (float64, bool) { return x * y, x > 0.5 })
	r, err := Sample(context.Background(), f, Grid{MaxX: 1, MaxY: 1, Cols: 2, Rows: 2})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r.At(0, 0)))
	assert.Equal(t, 0.75*0.25, r.At(1, 0))
	assert.Equal(t, 0.75*0.75, r.At(1, 1))
}

func TestSample_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sample(ctx, planarTriangulation(t), Grid{MaxX: 4, MaxY: 4, Cols: 8, Rows: 8})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSample_BadGrid(t *testing.T) {
	_, err := Sample(context.Background(), planarTriangulation(t), Grid{MaxX: 4, MaxY: 4})
	assert.Error(t, err)

	_, err = Sample(context.Background(), planarTriangulation(t), Grid{MinX: 2, MaxX: 2, MaxY: 4, Cols: 2, Rows: 2})
	assert.Error(t, err)
}

func TestRamp(t *testing.T) {
	assert.Equal(t, ramp[0], Ramp(-1))
	assert.Equal(t, ramp[0], Ramp(math.NaN()))
	assert.Equal(t, ramp[4], Ramp(2))
	assert.Equal(t, ramp[2], Ramp(0.5))
}

func TestPNG(t *testing.T) {
	tri := planarTriangulation(t)
	g := Grid{MinX: -0.5, MinY: -0.5, MaxX: 4.5, MaxY: 4.5, Cols: 10, Rows: 10}
	r, err := Sample(context.Background(), tri, g)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, r, Style{CellSize: 4, Mesh: tri}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	// угол вне оболочки остается фоном
	cr, cg, cb, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(background.R)*0x101, cr)
	assert.Equal(t, uint32(background.G)*0x101, cg)
	assert.Equal(t, uint32(background.B)*0x101, cb)
}
