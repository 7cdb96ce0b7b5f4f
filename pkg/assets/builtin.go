package assets

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

// Built-in asset paths.
const (
	BuiltinCar   = "builtin:car"
	BuiltinTrack = "builtin:track"
)

// Node names used by the built-in models.
const (
	CarRootName       = "Car"
	CarBodyName       = "Body"
	SteeringWheelName = "SteeringWheel"
	TrackRootName     = "Track"
	RoadName          = "Road"
)

// CarWheelNames are the wheel nodes of the built-in car in
// front-left, front-right, rear-left, rear-right order. With +Z forward
// and +Y up, the left side is +X.
var CarWheelNames = [4]string{"WheelFront000", "WheelFront001", "WheelFront002", "WheelFront003"}

// Stadium track layout. The bottom straight runs along z=2.2 and the
// default spawn (-23, 1, 2.2) sits on it facing -X.
const (
	TrackStraightHalf = 40.0
	TrackRadius       = 25.0
	TrackCenterZ      = 27.2
	TrackHalfWidth    = 5.0

	straightSegments = 16
	arcSegments      = 24
)

// NewCar builds the built-in car: a body box plus four wheels and a steering wheel.
func NewCar() *Model {
	root := NewNode(CarRootName)

	body := NewNode(CarBodyName)
	body.Mesh = boxGeometry(mgl64.Vec3{0.6, 0.15, 1.25})
	root.Add(body)

	wheelPositions := [4]mgl64.Vec3{
		{0.6, -0.1, 1.1},
		{-0.6, -0.1, 1.1},
		{0.6, -0.1, -1.1},
		{-0.6, -0.1, -1.1},
	}
	for i, name := range CarWheelNames {
		w := NewNode(name)
		w.Position = wheelPositions[i]
		w.Mesh = boxGeometry(mgl64.Vec3{0.1, 0.2, 0.2})
		root.Add(w)
	}

	sw := NewNode(SteeringWheelName)
	sw.Position = mgl64.Vec3{0, 0.25, 0.3}
	body.Add(sw)

	return &Model{Name: BuiltinCar, Root: root}
}

// NewTrack builds the built-in stadium-shaped road at y=0.
func NewTrack() *Model {
	root := NewNode(TrackRootName)
	road := NewNode(RoadName)
	road.Mesh = ribbonGeometry(stadiumCenterline(), TrackHalfWidth)
	root.Add(road)
	return &Model{Name: BuiltinTrack, Root: root}
}

// TrackCenterline returns the built-in track's centreline in driving order,
// starting at the right end of the bottom straight and heading towards -X.
func TrackCenterline() []mgl64.Vec3 {
	path := stadiumCenterline()
	pts := make([]mgl64.Vec3, len(path))
	for i, p := range path {
		pts[i] = p.pos
	}
	return pts
}

type pathPoint struct {
	pos     mgl64.Vec3
	tangent mgl64.Vec3
}

// stadiumCenterline walks the loop: bottom straight towards -X, left arc,
// top straight towards +X, right arc.
func stadiumCenterline() []pathPoint {
	var pts []pathPoint
	bottom, top := TrackCenterZ-TrackRadius, TrackCenterZ+TrackRadius

	for k := 0; k < straightSegments; k++ {
		x := TrackStraightHalf - 2*TrackStraightHalf*float64(k)/straightSegments
		pts = append(pts, pathPoint{mgl64.Vec3{x, 0, bottom}, mgl64.Vec3{-1, 0, 0}})
	}
	pts = appendArc(pts, -TrackStraightHalf, -math.Pi/2)
	for k := 0; k < straightSegments; k++ {
		x := -TrackStraightHalf + 2*TrackStraightHalf*float64(k)/straightSegments
		pts = append(pts, pathPoint{mgl64.Vec3{x, 0, top}, mgl64.Vec3{1, 0, 0}})
	}
	return appendArc(pts, TrackStraightHalf, math.Pi/2)
}

// appendArc adds a half circle centred at (cx, TrackCenterZ), sweeping
// clockwise (as seen from +Y) from angle start.
func appendArc(pts []pathPoint, cx, start float64) []pathPoint {
	for k := 0; k < arcSegments; k++ {
		phi := start - math.Pi*float64(k)/arcSegments
		pts = append(pts, pathPoint{
			pos:     mgl64.Vec3{cx + TrackRadius*math.Cos(phi), 0, TrackCenterZ + TrackRadius*math.Sin(phi)},
			tangent: mgl64.Vec3{math.Sin(phi), 0, -math.Cos(phi)},
		})
	}
	return pts
}

// ribbonGeometry extrudes a closed centerline sideways into a triangle strip.
func ribbonGeometry(path []pathPoint, halfWidth float64) *physics.Geometry {
	n := len(path)
	g := &physics.Geometry{
		Positions: make([]float64, 0, n*6),
		Indices:   make([]uint32, 0, n*6),
	}
	for _, p := range path {
		side := mgl64.Vec3{-p.tangent.Z(), 0, p.tangent.X()}.Mul(halfWidth)
		l, r := p.pos.Add(side), p.pos.Sub(side)
		g.Positions = append(g.Positions, l.X(), l.Y(), l.Z(), r.X(), r.Y(), r.Z())
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := uint32(2*i), uint32(2*i+1)
		c, d := uint32(2*j), uint32(2*j+1)
		g.Indices = append(g.Indices, a, c, b, b, c, d)
	}
	return g
}

// boxGeometry is an axis-aligned box centred on the origin.
func boxGeometry(half mgl64.Vec3) *physics.Geometry {
	g := &physics.Geometry{Positions: make([]float64, 0, 24)}
	for i := 0; i < 8; i++ {
		x, y, z := half.X(), half.Y(), half.Z()
		if i&1 == 0 {
			x = -x
		}
		if i&2 == 0 {
			y = -y
		}
		if i&4 == 0 {
			z = -z
		}
		g.Positions = append(g.Positions, x, y, z)
	}
	g.Indices = []uint32{
		0, 2, 1, 1, 2, 3, // -z
		4, 5, 6, 5, 7, 6, // +z
		0, 1, 4, 1, 5, 4, // -y
		2, 6, 3, 3, 6, 7, // +y
		0, 4, 2, 2, 4, 6, // -x
		1, 3, 5, 3, 7, 5, // +x
	}
	return g
}
