package app

import (
	"math"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// localMatrix composes Scale -> Rotate -> Translate(X, Y) into
// [a, b, c, d, tx, ty].
func localMatrix(t TransformData) [6]float64 {
	sin, cos := math.Sincos(t.Rotation)
	return [6]float64{
		cos * t.ScaleX,
		sin * t.ScaleX,
		-sin * t.ScaleY,
		cos * t.ScaleY,
		t.X,
		t.Y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine returns the identity when m is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

var transformQuery = donburi.NewQuery(filter.Contains(Transform, GlobalTransform))

// PropagateTransforms writes every GlobalTransform from the local
// Transform and the parent chain. Parents are resolved on demand so entity
// order does not matter; a parent cycle is broken at the entity that closes it.
func PropagateTransforms(e *ecs.ECS) {
	done := make(map[donburi.Entity]GlobalTransformData)
	visiting := make(map[donburi.Entity]bool)

	var resolve func(entry *donburi.Entry) GlobalTransformData
	resolve = func(entry *donburi.Entry) GlobalTransformData {
		if g, ok := done[entry.Entity()]; ok {
			return g
		}
		t := Transform.Get(entry)
		g := GlobalTransformData{Matrix: localMatrix(*t), Z: t.Z}
		visiting[entry.Entity()] = true
		if entry.HasComponent(Parent) {
			pe := Parent.Get(entry).Entity
			if e.World.Valid(pe) && !visiting[pe] {
				if parent := e.World.Entry(pe); parent.HasComponent(Transform) {
					pg := resolve(parent)
					g.Matrix = multiplyAffine(pg.Matrix, g.Matrix)
					g.Z += pg.Z
				}
			}
		}
		delete(visiting, entry.Entity())
		done[entry.Entity()] = g
		return g
	}

	transformQuery.Each(e.World, func(entry *donburi.Entry) {
		g := resolve(entry)
		if *GlobalTransform.Get(entry) != g {
			GlobalTransform.SetValue(entry, g)
		}
	})
}
