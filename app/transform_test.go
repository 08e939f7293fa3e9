package app

import (
	"math"
	"testing"

	"github.com/yohamta/donburi"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestMultiplyInvertAffine(t *testing.T) {
	m := localMatrix(TransformData{X: 10, Y: -4, Rotation: 0.7, ScaleX: 2, ScaleY: 3})
	id := multiplyAffine(m, invertAffine(m))
	for i, want := range identityTransform {
		if !approxEqual(id[i], want, epsilon) {
			t.Errorf("m*inv(m)[%d] = %f, want %f", i, id[i], want)
		}
	}
}

func TestInvertSingular(t *testing.T) {
	if got := invertAffine([6]float64{}); got != identityTransform {
		t.Errorf("invert(zero) = %v, want identity", got)
	}
}

func TestPropagateTransformsParent(t *testing.T) {
	a := NewWithBackend(DefaultConfig(), nil)
	parent := SpawnSprite(a.ECS, SpriteData{}, 100, 50)
	child := SpawnSprite(a.ECS, SpriteData{}, 10, 0)
	child.AddComponent(Parent)
	Parent.SetValue(child, ParentData{Entity: parent.Entity()})
	Transform.Get(parent).Z = 2
	Transform.Get(child).Z = 1

	PropagateTransforms(a.ECS)

	x, y := GlobalTransform.Get(child).Translation()
	if !approxEqual(x, 110, epsilon) || !approxEqual(y, 50, epsilon) {
		t.Errorf("child world = (%f,%f), want (110,50)", x, y)
	}
	if z := GlobalTransform.Get(child).Z; z != 3 {
		t.Errorf("child Z = %f, want 3", z)
	}
}

func TestPropagateTransformsParentCycle(t *testing.T) {
	a := NewWithBackend(DefaultConfig(), nil)
	e1 := SpawnSprite(a.ECS, SpriteData{}, 1, 0)
	e2 := SpawnSprite(a.ECS, SpriteData{}, 2, 0)
	for _, link := range [][2]*donburi.Entry{{e1, e2}, {e2, e1}} {
		link[0].AddComponent(Parent)
		Parent.SetValue(link[0], ParentData{Entity: link[1].Entity()})
	}
	PropagateTransforms(a.ECS) // must terminate
	x, _ := GlobalTransform.Get(e1).Translation()
	if x != 3 {
		t.Errorf("e1 x = %f, want 3", x)
	}
}
