package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const defaultLeafSize = 4

type bvhNode struct {
	box         r3.Box
	left, right int // child node indices, -1 for leaves
	start, end  int // range into BVH.order for leaves
}

// BVH is a binary bounding volume hierarchy over a fixed triangle set.
// Triangles are assigned to children by centroid: a centroid exactly on the
// split plane belongs to the left child, so every triangle lives in exactly
// one leaf.
type BVH struct {
	tris      []Triangle
	boxes     []r3.Box
	centroids []r3.Vec
	order     []int
	nodes     []bvhNode
	leafSize  int
}

// BuildBVH constructs the hierarchy. leafSize <= 0 selects the default.
func BuildBVH(tris []Triangle, leafSize int) *BVH {
	if leafSize <= 0 {
		leafSize = defaultLeafSize
	}
	b := &BVH{
		tris:      tris,
		boxes:     make([]r3.Box, len(tris)),
		centroids: make([]r3.Vec, len(tris)),
		order:     make([]int, len(tris)),
		leafSize:  leafSize,
	}
	for i, t := range tris {
		b.boxes[i] = t.Bounds()
		b.centroids[i] = t.Centroid()
		b.order[i] = i
	}
	if len(tris) > 0 {
		b.build(0, len(tris))
	}
	return b
}

// NodeCount returns the number of nodes in the tree.
func (b *BVH) NodeCount() int {
	return len(b.nodes)
}

func (b *BVH) build(start, end int) int {
	box := b.boxes[b.order[start]]
	cbox := r3.Box{Min: b.centroids[b.order[start]], Max: b.centroids[b.order[start]]}
	for _, idx := range b.order[start+1 : end] {
		box = union(box, b.boxes[idx])
		cbox = extend(cbox, b.centroids[idx])
	}

	id := len(b.nodes)
	b.nodes = append(b.nodes, bvhNode{box: box, left: -1, right: -1, start: start, end: end})
	if end-start <= b.leafSize {
		return id
	}

	// Split at the midpoint of the longest centroid extent
	extent := r3.Sub(cbox.Max, cbox.Min)
	axis := dominantAxis(extent)
	split := 0.5 * (axisOf(cbox.Min, axis) + axisOf(cbox.Max, axis))

	mid := start
	for i := start; i < end; i++ {
		if axisOf(b.centroids[b.order[i]], axis) <= split {
			b.order[i], b.order[mid] = b.order[mid], b.order[i]
			mid++
		}
	}
	if mid == start || mid == end {
		// All centroids coincide along the axis; keep as a leaf
		return id
	}

	left := b.build(start, mid)
	right := b.build(mid, end)
	b.nodes[id].left = left
	b.nodes[id].right = right
	return id
}

// intersectsAny reports whether triangle i overlaps any later triangle.
// stack is scratch space reused across calls.
func (b *BVH) intersectsAny(i int, stack []int) bool {
	t := b.tris[i]
	box := b.boxes[i]
	stack = append(stack[:0], 0)
	for len(stack) > 0 {
		n := b.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if !overlaps(n.box, box) {
			continue
		}
		if n.left < 0 {
			for _, j := range b.order[n.start:n.end] {
				if j <= i {
					continue
				}
				if candidate(t, b.tris[j], box, b.boxes[j]) && TrianglesIntersect(t.P, b.tris[j].P) {
					return true
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	return false
}
