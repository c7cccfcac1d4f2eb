package measure

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type scope uint8

const (
	scopeOutside scope = iota
	scopeFile
	scopeScan
	scopeData
)

type delim uint8

const (
	delimScanOpen delim = iota
	delimDataOpen
	delimScanClose
	delimDataClose
	delimFileOpen
	delimFileClose
)

var delims = map[string]delim{
	"BEGIN_SCAN":      delimScanOpen,
	"BEGIN_DATA":      delimDataOpen,
	"END_SCAN":        delimScanClose,
	"END_DATA":        delimDataClose,
	"BEGIN_SCAN_DATA": delimFileOpen,
	"END_SCAN_DATA":   delimFileClose,
}

const (
	keyOffAxis  = "SCAN_OFFAXIS_INPLANE"
	keyCrossCal = "CROSS_CALIBRATION"
)

type mccParser struct {
	scope scope
	line  int

	offAxis, crossCal         float64
	haveOffAxis, haveCrossCal bool

	m *Measurement
}

// ReadMCC parses a detector array export:
//
//	BEGIN_SCAN_DATA
//	  BEGIN_SCAN 1
//	    SCAN_OFFAXIS_INPLANE=-50.00
//	    CROSS_CALIBRATION=1.000
//	    BEGIN_DATA
//	      -100.00  0.512  #1
//	    END_DATA
//	  END_SCAN 1
//	END_SCAN_DATA
//
// Each scan is one row of detectors at a fixed in-plane offset (y); data
// lines give the position along the row (x) and the dose.
func ReadMCC(r io.Reader) (*Measurement, error) {
	p := &mccParser{m: &Measurement{}}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		if err := p.statement(strings.TrimSpace(sc.Text())); err != nil {
			return nil, parseErr(p.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read mcc")
	}
	if p.scope != scopeOutside {
		return nil, parseErr(p.line, errors.Wrap(ErrMismatchedDelimiter, "unexpected end of file"))
	}

	if err := p.m.finish(); err != nil {
		return nil, err
	}
	return p.m, nil
}

func (p *mccParser) statement(s string) error {
	if s == "" {
		return nil
	}

	if key, val, ok := strings.Cut(s, "="); ok {
		return p.attribute(strings.TrimSpace(key), strings.TrimSpace(val))
	}
	if pos, dose, ok := classifyData(s); ok {
		return p.datum(pos, dose)
	}
	if d, ok := delims[strings.Fields(s)[0]]; ok {
		return p.delimiter(d)
	}
	return errors.Wrapf(ErrUnclassifiable, "%q", s)
}

// classifyData accepts "pos dose" with anything after the second field
// ignored, as in "-100.00 0.512 #1".
func classifyData(s string) (float64, float64, bool) {
	f := strings.Fields(s)
	if len(f) < 2 {
		return 0, 0, false
	}
	pos, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return 0, 0, false
	}
	dose, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return pos, dose, true
}

func (p *mccParser) delimiter(d delim) error {
	switch {
	case p.scope == scopeOutside && d == delimFileOpen,
		p.scope == scopeFile && d == delimScanOpen:
		p.scope++

	case p.scope == scopeScan && d == delimDataOpen:
		if !p.haveOffAxis {
			return ErrMissingOffAxis
		}
		if !p.haveCrossCal {
			return ErrMissingCrossCal
		}
		p.m.Scans = append(p.m.Scans, Scan{Y: p.offAxis, CrossCal: p.crossCal})
		p.scope++

	case p.scope == scopeData && d == delimDataClose:
		p.haveOffAxis, p.haveCrossCal = false, false
		p.scope--

	case p.scope == scopeFile && d == delimFileClose,
		p.scope == scopeScan && d == delimScanClose:
		p.scope--

	default:
		return ErrMismatchedDelimiter
	}
	return nil
}

func (p *mccParser) attribute(key, val string) error {
	if p.scope != scopeScan {
		return nil
	}

	switch key {
	case keyOffAxis, keyCrossCal:
		x, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return errors.Wrapf(ErrMalformedAttribute, "%s=%q", key, val)
		}
		if key == keyOffAxis {
			p.offAxis, p.haveOffAxis = x, true
		} else {
			p.crossCal, p.haveCrossCal = x, true
		}
	}
	return nil
}

func (p *mccParser) datum(pos, dose float64) error {
	if p.scope != scopeData {
		return errors.Wrap(ErrMalformedData, "data outside BEGIN_DATA")
	}
	s := &p.m.Scans[len(p.m.Scans)-1]
	s.Points = append(s.Points, Sample{X: pos, Dose: dose})
	return nil
}
