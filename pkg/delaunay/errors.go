package delaunay

import "github.com/pkg/errors"

var (
	ErrNoNodes        = errors.New("delaunay: no nodes")
	ErrMalformedNodes = errors.New("delaunay: node array length is not a multiple of 3")
	ErrNonFinite      = errors.New("delaunay: node position is not finite")
	ErrDuplicateNode  = errors.New("delaunay: coincident nodes")
	ErrTooManyNodes   = errors.New("delaunay: too many nodes")
	ErrInvariant      = errors.New("delaunay: internal invariant violated")
	ErrCorrupt        = errors.New("delaunay: triangle records are inconsistent")
)

// Построение рекурсивное, пробрасывать ошибки через каждый уровень слияния
// неудобно. Внутри паникуем с internalError, на публичном API ловим.
type internalError struct {
	err error
}

func throwf(format string, args ...interface{}) {
	panic(internalError{errors.Wrapf(ErrInvariant, format, args...)})
}

// recoverInternal converts an internalError panic into err and re-panics
// on anything else.
func recoverInternal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(internalError)
	if !ok {
		panic(r)
	}
	*err = ie.err
}
