package delaunay

import "sync/atomic"

// arena hands out triangle records from one block sized up front.
// Records are never released one by one.
type arena struct {
	tris   []Triangle
	cursor atomic.Int32
}

// arenaSize is the number of records a triangulation of n distinct nodes
// uses: h ghosts plus 2n-2-h real triangles, whatever the hull size h.
func arenaSize(n int) int {
	if n < 2 {
		return 0
	}
	return 2*n - 2
}

func newArena(n int) *arena {
	return &arena{tris: make([]Triangle, arenaSize(n))}
}

// reserve returns the index of the first of k consecutive fresh records.
func (a *arena) reserve(k int32) int32 {
	end := a.cursor.Add(k)
	if int(end) > len(a.tris) {
		throwf("arena exhausted: want %d, capacity %d", end, len(a.tris))
	}
	return end - k
}

func (a *arena) len() int {
	return int(a.cursor.Load())
}
