package assets

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

// Model is a loaded asset: a node hierarchy, some nodes carrying meshes.
type Model struct {
	Name string
	Root *Node
}

// Find looks up a node by exact name. It returns nil when absent.
func (m *Model) Find(name string) *Node {
	if m == nil || m.Root == nil || name == "" {
		return nil
	}
	return m.Root.FindByName(name)
}

// MeshInstance is a mesh with its node's world transform already applied.
type MeshInstance struct {
	Node     string
	Geometry physics.Geometry
}

// WorldMeshes returns every mesh in the model transformed into world space.
// Missing attributes stay nil so collision validation can reject them.
func (m *Model) WorldMeshes() []MeshInstance {
	if m == nil || m.Root == nil {
		return nil
	}

	var meshes []MeshInstance
	m.Root.Walk(func(n *Node) bool {
		if n.Mesh != nil {
			meshes = append(meshes, MeshInstance{
				Node:     n.Name,
				Geometry: transformGeometry(*n.Mesh, n.WorldMatrix()),
			})
		}
		return true
	})
	return meshes
}

func transformGeometry(g physics.Geometry, world mgl64.Mat4) physics.Geometry {
	out := physics.Geometry{}
	if g.Indices != nil {
		out.Indices = append([]uint32{}, g.Indices...)
	}
	if g.Positions == nil {
		return out
	}

	out.Positions = make([]float64, len(g.Positions))
	copy(out.Positions, g.Positions)
	for i := 0; i+2 < len(out.Positions); i += 3 {
		p := world.Mul4x1(mgl64.Vec4{out.Positions[i], out.Positions[i+1], out.Positions[i+2], 1})
		out.Positions[i], out.Positions[i+1], out.Positions[i+2] = p.X(), p.Y(), p.Z()
	}
	return out
}
