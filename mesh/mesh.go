// Package mesh tessellates parametric surfaces into triangle meshes and
// answers whole-mesh self-intersection queries.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh.
// Indices holds 3 vertex indices per triangle.
type Mesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Triangle returns triangle i with its vertex indices.
func (m *Mesh) Triangle(i int) Triangle {
	a, b, c := m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	return Triangle{
		P: [3]r3.Vec{m.Positions[a], m.Positions[b], m.Positions[c]},
		V: [3]uint32{a, b, c},
	}
}

// Triangles returns every triangle of the mesh.
func (m *Mesh) Triangles() []Triangle {
	tris := make([]Triangle, m.TriangleCount())
	for i := range tris {
		tris[i] = m.Triangle(i)
	}
	return tris
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	var area float64
	for i := 0; i < m.TriangleCount(); i++ {
		area += m.Triangle(i).Area()
	}
	return area
}

// Triangle is one mesh face. V carries the source vertex indices so that
// faces sharing a vertex can be recognised as neighbours.
type Triangle struct {
	P [3]r3.Vec
	V [3]uint32
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t.P[1], t.P[0]), r3.Sub(t.P[2], t.P[0])))
}

// Centroid returns the mean of the three corners.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(r3.Add(t.P[0], t.P[1]), t.P[2]))
}

// SharesVertex reports whether the two triangles have a vertex index in common.
func (t Triangle) SharesVertex(o Triangle) bool {
	for _, a := range t.V {
		for _, b := range o.V {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Bounds returns the axis-aligned bounding box of the triangle.
func (t Triangle) Bounds() r3.Box {
	b := r3.Box{Min: t.P[0], Max: t.P[0]}
	for _, p := range t.P[1:] {
		b = extend(b, p)
	}
	return b
}

func extend(b r3.Box, p r3.Vec) r3.Box {
	b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	return b
}

func union(a, b r3.Box) r3.Box {
	return extend(extend(a, b.Min), b.Max)
}

func overlaps(a, b r3.Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}

func axisOf(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
