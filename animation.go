package pixelperfect

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	dmath "github.com/yohamta/donburi/features/math"
)

// BarTween moves CameraState.BarOffset from From to To over Duration seconds.
type BarTween struct {
	From, To dmath.Vec2
	Duration float32
	Ease     ease.TweenFunc
}

// BarAnimatorData plays BarTweens one after another on a camera's
// BarOffset. The component removes itself when the last step finishes.
type BarAnimatorData struct {
	Steps []BarTween
	// Round snaps the offset to whole virtual pixels every frame.
	Round bool

	step   int
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// NewBarAnimator returns an animator playing steps in order.
func NewBarAnimator(round bool, steps ...BarTween) BarAnimatorData {
	return BarAnimatorData{Steps: steps, Round: round}
}

// Done reports whether every step has finished.
func (a *BarAnimatorData) Done() bool {
	return a.step >= len(a.Steps)
}

// Update advances the current step by dt seconds and returns the offset to
// apply. A finished step hands over to the next one on the following call.
func (a *BarAnimatorData) Update(dt float32) dmath.Vec2 {
	if a.Done() {
		if len(a.Steps) == 0 {
			return dmath.Vec2{}
		}
		return a.round(a.Steps[len(a.Steps)-1].To)
	}
	s := a.Steps[a.step]
	if a.tweenX == nil {
		fn := s.Ease
		if fn == nil {
			fn = ease.Linear
		}
		a.tweenX = gween.New(float32(s.From.X), float32(s.To.X), s.Duration, fn)
		a.tweenY = gween.New(float32(s.From.Y), float32(s.To.Y), s.Duration, fn)
		a.doneX, a.doneY = false, false
	}

	x, doneX := a.tweenX.Update(dt)
	y, doneY := a.tweenY.Update(dt)
	a.doneX = a.doneX || doneX
	a.doneY = a.doneY || doneY
	out := dmath.Vec2{X: float64(x), Y: float64(y)}

	if a.doneX && a.doneY {
		out = s.To
		a.step++
		a.tweenX, a.tweenY = nil, nil
	}
	return a.round(out)
}

func (a *BarAnimatorData) round(v dmath.Vec2) dmath.Vec2 {
	if !a.Round {
		return v
	}
	return dmath.Vec2{X: math.Round(v.X), Y: math.Round(v.Y)}
}

// BarAnimation is the BarAnimatorData component.
var BarAnimation = donburi.NewComponentType[BarAnimatorData]()

// animateBars advances every bar animator by dt seconds and writes the
// result into the camera. Finished animators are removed.
func animateBars(e *ecs.ECS, dt float32) {
	var finished []*donburi.Entry
	BarAnimation.Each(e.World, func(entry *donburi.Entry) {
		if !entry.HasComponent(Camera) {
			return
		}
		a := BarAnimation.Get(entry)
		Camera.Get(entry).BarOffset = a.Update(dt)
		if a.Done() {
			finished = append(finished, entry)
		}
	})
	for _, entry := range finished {
		entry.RemoveComponent(BarAnimation)
	}
}
