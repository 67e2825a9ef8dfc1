package mesh

import (
	"runtime"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/spatial/r3"
)

// minArea excludes collapsed faces (pole slivers after a mutation) from the test.
const minArea = 1e-14

// Intersector answers whether any two non-adjacent triangles of a set overlap.
type Intersector interface {
	AnyIntersect(tris []Triangle) bool
}

// candidate reports whether tris i and j are worth an exact test.
func candidate(a, b Triangle, ba, bb r3.Box) bool {
	return !a.SharesVertex(b) && overlaps(ba, bb)
}

// BruteForce tests every pair, fanned out across goroutines.
type BruteForce struct {
	Workers int
}

// AnyIntersect implements Intersector.
func (bf BruteForce) AnyIntersect(tris []Triangle) bool {
	tris = nonDegenerate(tris)
	boxes := make([]r3.Box, len(tris))
	for i := range tris {
		boxes[i] = tris[i].Bounds()
	}

	var found atomic.Bool
	p := pool.New().WithMaxGoroutines(workers(bf.Workers))
	for i := range tris {
		p.Go(func() {
			for j := i + 1; j < len(tris); j++ {
				if found.Load() {
					return
				}
				if candidate(tris[i], tris[j], boxes[i], boxes[j]) && TrianglesIntersect(tris[i].P, tris[j].P) {
					found.Store(true)
					return
				}
			}
		})
	}
	p.Wait()
	return found.Load()
}

// BVHIntersector builds a bounding volume hierarchy over the triangles and
// tests each triangle only against leaves its box overlaps.
type BVHIntersector struct {
	Workers  int
	LeafSize int
}

// AnyIntersect implements Intersector.
func (bi BVHIntersector) AnyIntersect(tris []Triangle) bool {
	tris = nonDegenerate(tris)
	if len(tris) < 2 {
		return false
	}
	tree := BuildBVH(tris, bi.LeafSize)

	var found atomic.Bool
	p := pool.New().WithMaxGoroutines(workers(bi.Workers))
	chunk := (len(tris) + 63) / 64
	for start := 0; start < len(tris); start += chunk {
		end := min(start+chunk, len(tris))
		p.Go(func() {
			stack := make([]int, 0, 64)
			for i := start; i < end; i++ {
				if found.Load() {
					return
				}
				if tree.intersectsAny(i, stack) {
					found.Store(true)
					return
				}
			}
		})
	}
	p.Wait()
	return found.Load()
}

func nonDegenerate(tris []Triangle) []Triangle {
	out := make([]Triangle, 0, len(tris))
	for _, t := range tris {
		if t.Area() > minArea {
			out = append(out, t)
		}
	}
	return out
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
