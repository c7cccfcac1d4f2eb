package render

import (
	"image/color"
	"io"
	"math"

	"github.com/0x0FACED/go-dosemap/pkg/delaunay"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// Mesh is the part of a triangulation the overlay needs.
type Mesh interface {
	Triangles() [][3]int32
	Node(i int32) (delaunay.Point, float64)
	NumNodes() int
}

type Style struct {
	// CellSize is the side of one raster cell in pixels.
	CellSize int
	// Min and Max fix the color scale. Both zero means the raster range.
	Min, Max float64
	// Mesh overlays triangle edges and nodes when set.
	Mesh Mesh
}

var (
	background = color.RGBA{0x1e, 0x1e, 0x1e, 0xff}
	edgeColor  = color.RGBA{0xff, 0xff, 0xff, 0x90}
	nodeColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}

	// синий - голубой - зеленый - желтый - красный
	ramp = []color.RGBA{
		{0x30, 0x30, 0xd0, 0xff},
		{0x20, 0xc0, 0xe0, 0xff},
		{0x30, 0xc0, 0x40, 0xff},
		{0xf0, 0xe0, 0x30, 0xff},
		{0xe0, 0x30, 0x20, 0xff},
	}
)

// Ramp maps t in [0, 1] onto the color scale.
func Ramp(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return ramp[0]
	}
	if t >= 1 {
		return ramp[len(ramp)-1]
	}
	s := t * float64(len(ramp)-1)
	i := int(s)
	f := s - float64(i)
	a, b := ramp[i], ramp[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// PNG draws the raster, one square of CellSize pixels per cell, with y
// growing upwards.
func PNG(w io.Writer, r *Raster, st Style) error {
	if st.CellSize < 1 {
		st.CellSize = 1
	}
	lo, hi := st.Min, st.Max
	if lo == 0 && hi == 0 {
		var ok bool
		if lo, hi, ok = r.Range(); !ok {
			lo, hi = 0, 1
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	s := float64(st.CellSize)
	width, height := r.Cols*st.CellSize, r.Rows*st.CellSize
	c := gg.NewContext(width, height)
	c.SetColor(background)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			v := r.At(col, row)
			if math.IsNaN(v) {
				continue
			}
			c.SetColor(Ramp((v - lo) / span))
			c.DrawRectangle(float64(col)*s, float64(r.Rows-1-row)*s, s, s)
			c.Fill()
		}
	}

	if st.Mesh != nil {
		drawMesh(c, r.Grid, st.Mesh, s, float64(height))
	}

	if err := c.EncodePNG(w); err != nil {
		return errors.Wrap(err, "render: encode png")
	}
	return nil
}

func drawMesh(c *gg.Context, g Grid, m Mesh, s, height float64) {
	dx, dy := g.cell()

	c.Push()
	// начало координат внизу слева
	c.Translate(0, height)
	c.Scale(1, -1)
	c.Scale(s/dx, s/dy)
	c.Translate(-g.MinX, -g.MinY)

	c.SetColor(edgeColor)
	c.SetLineWidth(1)
	for _, t := range m.Triangles() {
		a, _ := m.Node(t[0])
		b, _ := m.Node(t[1])
		cc, _ := m.Node(t[2])
		c.MoveTo(a.X, a.Y)
		c.LineTo(b.X, b.Y)
		c.LineTo(cc.X, cc.Y)
		c.ClosePath()
		c.Stroke()
	}

	c.SetColor(nodeColor)
	for i := 0; i < m.NumNodes(); i++ {
		p, _ := m.Node(int32(i))
		x, y := c.TransformPoint(p.X, p.Y)
		c.Push()
		c.Identity()
		c.DrawCircle(x, y, 2)
		c.Fill()
		c.Pop()
	}
	c.Pop()
}
