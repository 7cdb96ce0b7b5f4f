// Package assets holds the scene-graph models the session drives: the
// vehicle with its named wheel transforms and the track with its meshes.
package assets

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

// Node is a named transform in a model hierarchy. A node has at most one parent.
type Node struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
	Visible  bool
	Mesh     *physics.Geometry

	parent   *Node
	children []*Node
}

// NewNode creates a visible node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
		Visible:  true,
	}
}

// Add attaches child to n, detaching it from its previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It reports whether child was attached.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindByName returns the first node, depth-first, whose name matches exactly.
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// LocalMatrix is translate * rotate * scale.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).
		Mul4(n.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
}

// WorldMatrix composes the local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition is the origin of n in world space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}
