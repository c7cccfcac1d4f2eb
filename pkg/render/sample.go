// Package render samples a dose field on a regular grid and draws it.
package render

import (
	"context"
	"math"
	"runtime"

	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Field is anything that can be queried for a value at a point.
type Field interface {
	Interpolate(x, y float64) (float64, bool)
}

// FieldFunc adapts a plain function to Field.
type FieldFunc func(x, y float64) (float64, bool)

func (f FieldFunc) Interpolate(x, y float64) (float64, bool) { return f(x, y) }

// Grid is a Cols x Rows lattice of cells over a rectangle. Samples are
// taken at cell centers.
type Grid struct {
	MinX, MinY float64
	MaxX, MaxY float64
	Cols, Rows int
}

// GridFor covers the bounding box of points (x,y pairs) with cells of
// roughly equal size, cols wide.
func GridFor(points [][2]float64, cols int) Grid {
	if len(points) == 0 {
		return Grid{MaxX: 1, MaxY: 1, Cols: cols, Rows: cols}
	}

	g := Grid{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
		Cols: cols,
	}
	for _, p := range points {
		g.MinX, g.MaxX = math.Min(g.MinX, p[0]), math.Max(g.MaxX, p[0])
		g.MinY, g.MaxY = math.Min(g.MinY, p[1]), math.Max(g.MaxY, p[1])
	}
	// вырожденный бокс расширяем до единичного
	if g.MaxX == g.MinX {
		g.MinX, g.MaxX = g.MinX-0.5, g.MaxX+0.5
	}
	if g.MaxY == g.MinY {
		g.MinY, g.MaxY = g.MinY-0.5, g.MaxY+0.5
	}

	g.Rows = int(math.Round(float64(cols) * (g.MaxY - g.MinY) / (g.MaxX - g.MinX)))
	if g.Rows < 1 {
		g.Rows = 1
	}
	return g
}

func (g Grid) cell() (float64, float64) {
	return (g.MaxX - g.MinX) / float64(g.Cols), (g.MaxY - g.MinY) / float64(g.Rows)
}

// Center returns the sample position of cell (c, r). Row 0 is at MinY.
func (g Grid) Center(c, r int) (float64, float64) {
	dx, dy := g.cell()
	return g.MinX + (float64(c)+0.5)*dx, g.MinY + (float64(r)+0.5)*dy
}

func (g Grid) validate() error {
	if g.Cols < 1 || g.Rows < 1 {
		return errors.Errorf("render: grid %dx%d is empty", g.Cols, g.Rows)
	}
	if !(g.MaxX > g.MinX) || !(g.MaxY > g.MinY) {
		return errors.Errorf("render: grid bounds [%v,%v]x[%v,%v] are empty", g.MinX, g.MaxX, g.MinY, g.MaxY)
	}
	return nil
}

// Raster holds one value per cell, row-major from MinY. Cells the field
// does not cover are NaN.
type Raster struct {
	Grid
	Values []float64
}

func (r *Raster) At(c, row int) float64 {
	return r.Values[row*r.Cols+c]
}

// Range returns the smallest and largest covered value. ok is false when
// no cell is covered.
func (r *Raster) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range r.Values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Coverage is the fraction of covered cells.
func (r *Raster) Coverage() float64 {
	n := 0
	for _, v := range r.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return float64(n) / float64(len(r.Values))
}

type config struct {
	workers int
	log     *logger.ZapLogger
}

type Option func(*config)

// WithWorkers bounds the number of rows sampled at once.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithLogger(l *logger.ZapLogger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// Sample evaluates f at every cell center. Rows are spread over workers;
// f must be safe for concurrent use.
func Sample(ctx context.Context, f Field, g Grid, opts ...Option) (*Raster, error) {
	cfg := &config{workers: runtime.GOMAXPROCS(0), log: logger.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}

	r := &Raster{Grid: g, Values: make([]float64, g.Cols*g.Rows)}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.workers)

	for row := 0; row < g.Rows; row++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := r.Values[row*g.Cols : (row+1)*g.Cols]
			for c := range out {
				x, y := g.Center(c, row)
				v, ok := f.Interpolate(x, y)
				if !ok {
					v = math.NaN()
				}
				out[c] = v
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "render: sample")
	}

	cfg.log.Debug("[render] Сетка посчитана",
		zap.Int("cols", g.Cols),
		zap.Int("rows", g.Rows),
		zap.Int("workers", cfg.workers),
		zap.Float64("coverage", r.Coverage()),
	)
	return r, nil
}
