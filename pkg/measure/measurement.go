package measure

import (
	"bufio"
	"bytes"
	"cmp"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Sample struct {
	X    float64
	Dose float64
}

// Scan is one detector row at in-plane offset Y, sorted by X.
type Scan struct {
	Y        float64
	CrossCal float64
	Points   []Sample
}

// Measurement holds scans sorted by Y.
type Measurement struct {
	Scans []Scan
}

func (m *Measurement) finish() error {
	if m.Len() == 0 {
		return ErrEmpty
	}
	slices.SortStableFunc(m.Scans, func(a, b Scan) int { return cmp.Compare(a.Y, b.Y) })
	for i := range m.Scans {
		slices.SortStableFunc(m.Scans[i].Points, func(a, b Sample) int { return cmp.Compare(a.X, b.X) })
	}
	return nil
}

// Len is the number of samples over all scans.
func (m *Measurement) Len() int {
	n := 0
	for _, s := range m.Scans {
		n += len(s.Points)
	}
	return n
}

// Nodes flattens the samples into x,y,dose triples.
func (m *Measurement) Nodes() []float64 {
	nodes := make([]float64, 0, 3*m.Len())
	for _, s := range m.Scans {
		for _, p := range s.Points {
			nodes = append(nodes, p.X, s.Y, p.Dose)
		}
	}
	return nodes
}

func (m *Measurement) Max() float64 {
	hi := 0.0
	for _, s := range m.Scans {
		for _, p := range s.Points {
			hi = math.Max(hi, p.Dose)
		}
	}
	return hi
}

func (m *Measurement) Sum() float64 {
	sum := 0.0
	for _, s := range m.Scans {
		for _, p := range s.Points {
			sum += p.Dose
		}
	}
	return sum
}

// Support counts the samples above fraction of the maximum dose. The
// detector software reports it with fraction 0.1.
func (m *Measurement) Support(fraction float64) int {
	threshold := fraction * m.Max()
	n := 0
	for _, s := range m.Scans {
		for _, p := range s.Points {
			if p.Dose > threshold {
				n++
			}
		}
	}
	return n
}

// PointDose interpolates linearly along the two scans around y, then
// between them. Points outside the scanned area report false.
func (m *Measurement) PointDose(x, y float64) (float64, bool) {
	i, exact := bracket(len(m.Scans), y, func(k int) float64 { return m.Scans[k].Y })
	if exact {
		return m.Scans[i].at(x)
	}
	if i < 0 || i+1 >= len(m.Scans) {
		return 0, false
	}

	s0, s1 := &m.Scans[i], &m.Scans[i+1]
	d0, ok0 := s0.at(x)
	d1, ok1 := s1.at(x)
	if !ok0 || !ok1 {
		return 0, false
	}
	t := (y - s0.Y) / (s1.Y - s0.Y)
	return d0 + t*(d1-d0), true
}

func (s *Scan) at(x float64) (float64, bool) {
	i, exact := bracket(len(s.Points), x, func(k int) float64 { return s.Points[k].X })
	if exact {
		return s.Points[i].Dose, true
	}
	if i < 0 || i+1 >= len(s.Points) {
		return 0, false
	}
	p0, p1 := s.Points[i], s.Points[i+1]
	t := (x - p0.X) / (p1.X - p0.X)
	return p0.Dose + t*(p1.Dose-p0.Dose), true
}

// bracket returns the last index whose key is not greater than v, or -1,
// and whether that key equals v.
func bracket(n int, v float64, key func(int) float64) (int, bool) {
	l, r := 0, n
	for l < r {
		med := (l + r) / 2
		k := key(med)
		switch {
		case v < k:
			r = med
		case k < v:
			l = med + 1
		default:
			return med, true
		}
	}
	return l - 1, false
}

// ReadTriples reads whitespace separated "x y dose" lines. Blank lines and
// everything after '#' are ignored. Samples sharing a y form one scan.
func ReadTriples(r io.Reader) (*Measurement, error) {
	rows := map[float64]int{}
	m := &Measurement{}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := sc.Text()
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		f := strings.Fields(s)
		if len(f) == 0 {
			continue
		}
		if len(f) != 3 {
			return nil, parseErr(line, errors.Wrapf(ErrMalformedData, "want 3 fields, got %d", len(f)))
		}

		var v [3]float64
		for i := range v {
			x, err := strconv.ParseFloat(f[i], 64)
			if err != nil {
				return nil, parseErr(line, errors.Wrapf(ErrMalformedData, "%q", f[i]))
			}
			v[i] = x
		}

		k, ok := rows[v[1]]
		if !ok {
			k = len(m.Scans)
			rows[v[1]] = k
			m.Scans = append(m.Scans, Scan{Y: v[1], CrossCal: 1})
		}
		m.Scans[k].Points = append(m.Scans[k].Points, Sample{X: v[0], Dose: v[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read triples")
	}

	if err := m.finish(); err != nil {
		return nil, err
	}
	return m, nil
}

// Read detects the format by its first statement.
func Read(r io.Reader) (*Measurement, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.Wrap(err, "read")
	}
	if bytes.HasPrefix(bytes.TrimSpace(head), []byte("BEGIN_SCAN_DATA")) {
		return ReadMCC(br)
	}
	return ReadTriples(br)
}

func Open(name string) (*Measurement, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open measurement")
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return m, nil
}
