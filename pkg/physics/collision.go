// pkg/physics/collision.go
package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Geometry validation errors. A mesh failing any of these is never handed to the world.
var (
	ErrMissingPositions   = errors.New("geometry has no position attribute")
	ErrMissingIndices     = errors.New("geometry is not indexed")
	ErrEmptyGeometry      = errors.New("geometry has no vertices or no indices")
	ErrMalformedGeometry  = errors.New("geometry attribute length is not a multiple of 3")
	ErrNonFiniteVertex    = errors.New("geometry has a non-finite vertex component")
	ErrIndexOutOfRange    = errors.New("geometry index references a missing vertex")
	rayEpsilon            = 1e-9
	degenerateTriangleEps = 1e-12
)

// Geometry is raw indexed triangle data. A nil slice means the attribute is absent.
type Geometry struct {
	Positions []float64 // x, y, z triples
	Indices   []uint32  // three per triangle
}

// Trimesh is a validated static triangle mesh used as ground collision.
type Trimesh struct {
	vertices []mgl64.Vec3
	indices  []uint32
	min      mgl64.Vec3
	max      mgl64.Vec3
}

// NewTrimesh validates g and builds a trimesh from it.
func NewTrimesh(g Geometry) (*Trimesh, error) {
	if g.Positions == nil {
		return nil, ErrMissingPositions
	}
	if g.Indices == nil {
		return nil, ErrMissingIndices
	}
	if len(g.Positions) == 0 || len(g.Indices) == 0 {
		return nil, ErrEmptyGeometry
	}
	if len(g.Positions)%3 != 0 || len(g.Indices)%3 != 0 {
		return nil, ErrMalformedGeometry
	}

	vertices := make([]mgl64.Vec3, len(g.Positions)/3)
	for i := range vertices {
		v := mgl64.Vec3{g.Positions[3*i], g.Positions[3*i+1], g.Positions[3*i+2]}
		if !IsFinite(v) {
			return nil, fmt.Errorf("vertex %d: %w", i, ErrNonFiniteVertex)
		}
		vertices[i] = v
	}
	for i, idx := range g.Indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("index %d = %d with %d vertices: %w", i, idx, len(vertices), ErrIndexOutOfRange)
		}
	}

	t := &Trimesh{
		vertices: vertices,
		indices:  append([]uint32(nil), g.Indices...),
		min:      vertices[0],
		max:      vertices[0],
	}
	for _, v := range vertices[1:] {
		for k := 0; k < 3; k++ {
			t.min[k] = math.Min(t.min[k], v[k])
			t.max[k] = math.Max(t.max[k], v[k])
		}
	}
	return t, nil
}

// Triangles returns the number of triangles in the mesh.
func (t *Trimesh) Triangles() int {
	return len(t.indices) / 3
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (t *Trimesh) Bounds() (min, max mgl64.Vec3) {
	return t.min, t.max
}

// RayHit describes where a ray met a surface.
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3 // faces against the ray
	Distance float64
}

// Raycast returns the nearest hit along dir (unit length) within maxDist.
func (t *Trimesh) Raycast(origin, dir mgl64.Vec3, maxDist float64) (RayHit, bool) {
	if !t.rayHitsBounds(origin, dir, maxDist) {
		return RayHit{}, false
	}

	best := RayHit{Distance: math.Inf(1)}
	found := false
	for i := 0; i+2 < len(t.indices); i += 3 {
		a := t.vertices[t.indices[i]]
		b := t.vertices[t.indices[i+1]]
		c := t.vertices[t.indices[i+2]]

		dist, ok := intersectTriangle(origin, dir, a, b, c)
		if !ok || dist > maxDist || dist >= best.Distance {
			continue
		}

		normal := b.Sub(a).Cross(c.Sub(a)).Normalize()
		if normal.Dot(dir) > 0 {
			normal = normal.Mul(-1)
		}
		best = RayHit{Point: origin.Add(dir.Mul(dist)), Normal: normal, Distance: dist}
		found = true
	}
	return best, found
}

// rayHitsBounds is the slab test against the mesh AABB.
func (t *Trimesh) rayHitsBounds(origin, dir mgl64.Vec3, maxDist float64) bool {
	tMin, tMax := 0.0, maxDist
	for k := 0; k < 3; k++ {
		if math.Abs(dir[k]) < rayEpsilon {
			if origin[k] < t.min[k] || origin[k] > t.max[k] {
				return false
			}
			continue
		}
		inv := 1 / dir[k]
		t1 := (t.min[k] - origin[k]) * inv
		t2 := (t.max[k] - origin[k]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// intersectTriangle is the Möller-Trumbore ray/triangle test. Both faces count.
func intersectTriangle(origin, dir, a, b, c mgl64.Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < degenerateTriangleEps {
		return 0, false
	}
	inv := 1 / det

	s := origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	dist := e2.Dot(q) * inv
	if dist < 0 {
		return 0, false
	}
	return dist, true
}
