// Package meshio persists triangulations as compact binary snapshots.
package meshio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/0x0FACED/go-dosemap/pkg/delaunay"
	"github.com/0x0FACED/go-dosemap/pkg/logger"
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	magic   = "DMSH"
	version = 1

	// magic, version u16, codec u8, pad u8, raw size u32, stored size u32
	headerSize = 4 + 2 + 1 + 1 + 4 + 4
	recordSize = 3*4 + 3*(4+1)

	// maxRawSize caps the decoded payload, about 13 million nodes.
	maxRawSize = 1 << 30
)

var (
	ErrBadMagic  = errors.New("meshio: not a mesh snapshot")
	ErrVersion   = errors.New("meshio: unsupported snapshot version")
	ErrTruncated = errors.New("meshio: snapshot is truncated")
	ErrUncovered = errors.New("meshio: node missing from every triangle")
	ErrOversized = errors.New("meshio: snapshot too large")
)

type config struct {
	codec Codec
	log   *logger.ZapLogger
	opts  []delaunay.Option
}

type Option func(*config)

// WithCodec selects the payload compression for Save. Load reads the
// codec from the header.
func WithCodec(c Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

func WithLogger(l *logger.ZapLogger) Option {
	return func(cfg *config) { cfg.log = l }
}

// WithTriangulationOptions are passed on to the triangulation Load builds.
func WithTriangulationOptions(opts ...delaunay.Option) Option {
	return func(cfg *config) { cfg.opts = append(cfg.opts, opts...) }
}

func newConfig(opts []Option) *config {
	cfg := &config{codec: CodecZstd, log: logger.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Save writes the nodes and every triangle record of tri.
func Save(w io.Writer, tri *delaunay.Triangulation, opts ...Option) error {
	cfg := newConfig(opts)

	raw := encode(tri)
	if len(raw) > maxRawSize {
		return errors.Wrapf(ErrOversized, "%d bytes", len(raw))
	}

	codec := cfg.codec
	stored, err := compress(codec, raw)
	if err != nil {
		return err
	}
	if stored == nil || len(stored) >= len(raw) {
		codec, stored = CodecNone, raw
	}

	hdr := make([]byte, headerSize)
	copy(hdr, magic)
	binary.LittleEndian.PutUint16(hdr[4:], version)
	hdr[6] = byte(codec)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(len(stored)))

	if _, err := w.Write(hdr); err != nil {
		return errors.Wrap(err, "write header")
	}
	if _, err := w.Write(stored); err != nil {
		return errors.Wrap(err, "write payload")
	}

	cfg.log.Info("[io] Снимок сетки записан",
		zap.Stringer("codec", codec),
		zap.Int("raw", len(raw)),
		zap.Int("stored", len(stored)),
	)
	return nil
}

// Load reads a snapshot written by Save and rebuilds the triangulation,
// which owns the decoded node array.
func Load(r io.Reader, opts ...Option) (*delaunay.Triangulation, error) {
	cfg := newConfig(opts)

	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, errors.Wrap(ErrTruncated, err.Error())
	}
	if string(hdr[:4]) != magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(hdr[4:]); v != version {
		return nil, errors.Wrapf(ErrVersion, "version %d", v)
	}
	codec := Codec(hdr[6])
	rawSize := int(binary.LittleEndian.Uint32(hdr[8:]))
	storedSize := int(binary.LittleEndian.Uint32(hdr[12:]))

	switch {
	case rawSize < 0 || rawSize > maxRawSize:
		return nil, errors.Wrapf(ErrOversized, "payload %d bytes", rawSize)
	case storedSize < 0 || storedSize > storedBound(rawSize):
		return nil, errors.Wrapf(ErrOversized, "stored %d bytes for %d", storedSize, rawSize)
	case codec == CodecNone && storedSize != rawSize:
		return nil, errors.Wrapf(ErrTruncated, "stored %d bytes, header says %d", storedSize, rawSize)
	}

	// память растет вместе с прочитанными данными, а не с заголовком
	stored, err := io.ReadAll(io.LimitReader(r, int64(storedSize)))
	if err != nil {
		return nil, errors.Wrap(err, "read payload")
	}
	if len(stored) != storedSize {
		return nil, errors.Wrapf(ErrTruncated, "payload %d of %d bytes", len(stored), storedSize)
	}

	raw, err := decompress(codec, stored, rawSize)
	if err != nil {
		return nil, err
	}
	if len(raw) != rawSize {
		return nil, errors.Wrapf(ErrTruncated, "payload %d bytes, header says %d", len(raw), rawSize)
	}

	nodes, tris, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := covered(len(nodes)/3, tris); err != nil {
		return nil, err
	}

	tri, err := delaunay.FromTriangles(nodes, tris, cfg.opts...)
	if err != nil {
		return nil, errors.Wrap(err, "meshio")
	}

	cfg.log.Info("[io] Снимок сетки прочитан",
		zap.Stringer("codec", codec),
		zap.Int("nodes", tri.NumNodes()),
		zap.Int("triangles", tri.Len()),
	)
	return tri, nil
}

func encode(tri *delaunay.Triangulation) []byte {
	n, k := tri.NumNodes(), tri.Len()
	buf := bytes.NewBuffer(make([]byte, 0, 8+24*n+recordSize*k))

	var b [8]byte
	binary.LittleEndian.PutUint32(b[:4], uint32(n))
	buf.Write(b[:4])
	for i := int32(0); i < int32(n); i++ {
		p, v := tri.Node(i)
		for _, f := range [3]float64{p.X, p.Y, v} {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
			buf.Write(b[:])
		}
	}

	binary.LittleEndian.PutUint32(b[:4], uint32(k))
	buf.Write(b[:4])
	for i := int32(0); i < int32(k); i++ {
		t := tri.Triangle(i)
		for _, v := range t.V {
			binary.LittleEndian.PutUint32(b[:4], uint32(v))
			buf.Write(b[:4])
		}
		for _, e := range t.Adj {
			binary.LittleEndian.PutUint32(b[:4], uint32(e.Tri))
			buf.Write(b[:4])
			buf.WriteByte(byte(e.Side))
		}
	}
	return buf.Bytes()
}

func decode(raw []byte) ([]float64, []delaunay.Triangle, error) {
	rd := bytes.NewReader(raw)

	var n uint32
	if err := binary.Read(rd, binary.LittleEndian, &n); err != nil {
		return nil, nil, errors.Wrap(ErrTruncated, "node count")
	}
	if uint64(n)*24 > uint64(rd.Len()) {
		return nil, nil, errors.Wrapf(ErrTruncated, "%d nodes", n)
	}
	nodes := make([]float64, 3*n)
	if err := binary.Read(rd, binary.LittleEndian, nodes); err != nil {
		return nil, nil, errors.Wrap(ErrTruncated, "nodes")
	}

	var k uint32
	if err := binary.Read(rd, binary.LittleEndian, &k); err != nil {
		return nil, nil, errors.Wrap(ErrTruncated, "triangle count")
	}
	if uint64(k)*recordSize != uint64(rd.Len()) {
		return nil, nil, errors.Wrapf(ErrTruncated, "%d triangles in %d bytes", k, rd.Len())
	}

	rec := raw[len(raw)-rd.Len():]
	tris := make([]delaunay.Triangle, k)
	for i := range tris {
		r := rec[i*recordSize:]
		for j := 0; j < 3; j++ {
			tris[i].V[j] = int32(binary.LittleEndian.Uint32(r[4*j:]))
		}
		r = r[12:]
		for j := 0; j < 3; j++ {
			tris[i].Adj[j] = delaunay.Edge{
				Tri:  int32(binary.LittleEndian.Uint32(r[5*j:])),
				Side: int8(r[5*j+4]),
			}
		}
	}
	return nodes, tris, nil
}

// covered checks that every node is a vertex of some record.
func covered(n int, tris []delaunay.Triangle) error {
	if n < 2 {
		return nil
	}
	seen := roaring.New()
	for _, t := range tris {
		for _, v := range t.V {
			if v >= 0 && int(v) < n {
				seen.Add(uint32(v))
			}
		}
	}
	if c := seen.GetCardinality(); c != uint64(n) {
		return errors.Wrapf(ErrUncovered, "%d of %d nodes referenced", c, n)
	}
	return nil
}
