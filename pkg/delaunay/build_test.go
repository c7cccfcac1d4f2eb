package delaunay

import (
	"math"
	"math/rand"
	"testing"

	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_Reserve(t *testing.T) {
	a := newArena(3)
	assert.Equal(t, 4, len(a.tris))
	assert.Equal(t, int32(0), a.reserve(1))
	assert.Equal(t, int32(1), a.reserve(3))
	assert.Equal(t, 4, a.len())

	err := func() (err error) {
		defer recoverInternal(&err)
		a.reserve(1)
		return nil
	}()
	assert.Equal(t, ErrInvariant, errors.Cause(err))
}

func TestArenaSize(t *testing.T) {
	assert.Equal(t, 0, arenaSize(1))
	assert.Equal(t, 2, arenaSize(2))
	assert.Equal(t, 4, arenaSize(3))
	assert.Equal(t, 98, arenaSize(50))
}

func TestCheckCount(t *testing.T) {
	assert.Equal(t, ErrNoNodes, checkCount(0))
	assert.NoError(t, checkCount(maxNodes))
	assert.Equal(t, ErrTooManyNodes, errors.Cause(checkCount(maxNodes+1)))

	// последний допустимый узел и его значение адресуются без переполнения
	last := int32(maxNodes - 1)
	assert.Equal(t, 3*(maxNodes-1)+2, offset(last)+2)
	assert.Greater(t, offset(math.MaxInt32), 0)
}

func TestRecoverInternal(t *testing.T) {
	run := func(throw, crash bool) (err error) {
		defer recoverInternal(&err)
		if throw {
			throwf("kaboom %d", 1)
		}
		if crash {
			panic("true panic")
		}
		return nil
	}

	t.Run("with throw", func(t *testing.T) {
		err := run(true, false)
		assert.EqualError(t, err, "kaboom 1: delaunay: internal invariant violated")
	})

	t.Run("with real panic", func(t *testing.T) {
		assert.Panics(t, func() { _ = run(false, true) })
	})

	t.Run("no error", func(t *testing.T) {
		assert.NoError(t, run(false, false))
	})
}

func TestAxisLess(t *testing.T) {
	p, q := Point{1, 2}, Point{1, 3}
	assert.True(t, AxisX.less(p, q))
	assert.False(t, AxisX.less(q, p))

	// на оси y при равенстве меньше тот, у кого x больше
	r, s := Point{5, 0}, Point{2, 0}
	assert.True(t, AxisY.less(r, s))
	assert.False(t, AxisY.less(s, r))
	assert.False(t, AxisY.less(s, s))
}

func TestSelectKth(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for _, axis := range []Axis{AxisX, AxisY} {
		for trial := 0; trial < 50; trial++ {
			n := 4 + r.Intn(60)
			nodes := make([]float64, 0, 3*n)
			for i := 0; i < n; i++ {
				// много совпадающих координат
				nodes = append(nodes, float64(r.Intn(5)), float64(i), 0)
			}
			b := &builder{mesh: mesh{nodes: nodes}}
			refs := make([]int32, n)
			for i := range refs {
				refs[i] = int32(i)
			}

			k := n / 2
			b.selectKth(refs, k, axis)
			for i := 0; i < k; i++ {
				require.True(t, axis.less(b.pt(refs[i]), b.pt(refs[k])))
			}
			for i := k + 1; i < n; i++ {
				require.True(t, axis.less(b.pt(refs[k]), b.pt(refs[i])))
			}
		}
	}
}

func TestPredicates(t *testing.T) {
	a, b, c := Point{0, 0}, Point{1, 0}, Point{0, 1}
	assert.Equal(t, 1.0, orient(a, b, c))
	assert.Equal(t, -1.0, orient(a, c, b))
	assert.Equal(t, 0.0, orient(a, b, Point{2, 0}))

	assert.Greater(t, inCircle(a, b, c, Point{0.5, 0.5}), 0.0)
	assert.Equal(t, 0.0, inCircle(a, b, c, Point{1, 1}))
	assert.Less(t, inCircle(a, b, c, Point{2, 2}), 0.0)

	center, r2 := circumcircle(a, b, c)
	assert.Equal(t, Point{0.5, 0.5}, center)
	assert.Equal(t, 0.5, r2)

	_, r2 = circumcircle(a, b, Point{3, 0})
	assert.True(t, r2 > 1e300)
}

func TestTriangulate_WithLogger(t *testing.T) {
	l := logger.New(logger.Config{Level: "debug"})
	_, err := Triangulate(gridNodes(3), WithLogger(l))
	require.NoError(t, err)

	logs := l.Logs()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], "[dt]")
	assert.Contains(t, logs[0], "[dt-merge]")
}
