package pixelperfect

import (
	"fmt"
	"math"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/events"
	dmath "github.com/yohamta/donburi/features/math"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/pixelperfect/app"
)

const (
	// SetPixelation applies PixelationState to the camera resolution and
	// projection. It runs before app.SetCameraUpdate.
	SetPixelation app.SystemSet = "pixel_perfect_pixelation"
	// SetTransformSnap writes the floored subpixel translation into the
	// camera Transform. It runs after SetPixelation and before
	// app.SetTransformPropagate.
	SetTransformSnap app.SystemSet = "pixel_perfect_transform_snap"
)

// PixelationCaptured is published when a camera's starting resolution is
// captured for a newly seen PixelationState.
type PixelationCaptured struct {
	Entity     donburi.Entity
	Resolution dmath.Vec2
}

// PixelationCapturedEvent carries PixelationCaptured.
var PixelationCapturedEvent = events.NewEventType[PixelationCaptured]()

var pixelationQuery = donburi.NewQuery(filter.Contains(Camera, Pixelation, app.Projection))

// updatePixelation captures the starting resolution of newly seen
// pixelations and rescales resolution and projection whenever joins changed
// since the last application. It returns the number of cameras written.
func updatePixelation(e *ecs.ECS) int {
	written := 0
	pixelationQuery.Each(e.World, func(entry *donburi.Entry) {
		cam := Camera.Get(entry)
		p := Pixelation.Get(entry)

		if !p.captured {
			mustValidResolution(cam.Resolution)
			p.starting = cam.Resolution
			p.captured = true
			PixelationCapturedEvent.Publish(e.World, PixelationCaptured{Entity: entry.Entity(), Resolution: cam.Resolution})
		} else if p.Joins == p.applied {
			return
		}

		mustValidJoins(p.Joins)
		scale := scaleFactor(p.Joins)
		res := dmath.Vec2{X: p.starting.X * scale, Y: p.starting.Y * scale}
		if !(res.X > 0 && res.Y > 0) {
			panic(fmt.Sprintf("pixelperfect: joins %v shrinks resolution (%v, %v) to zero", p.Joins, p.starting.X, p.starting.Y))
		}
		cam.Resolution = res
		app.Projection.Get(entry).Scale = 1 / scale
		p.applied = p.Joins
		written++
	})
	return written
}

var snapQuery = donburi.NewQuery(filter.Contains(Camera, app.Transform))

// snapTransforms floors every camera's subpixel translation into its
// Transform, leaving Z alone. Transforms already in place are not written.
// It returns the number of transforms written.
func snapTransforms(e *ecs.ECS) int {
	written := 0
	snapQuery.Each(e.World, func(entry *donburi.Entry) {
		sub := Camera.Get(entry).SubpixelTranslation
		x, y := math.Floor(sub.X), math.Floor(sub.Y)
		t := app.Transform.Get(entry)
		if t.X == x && t.Y == y {
			return
		}
		t.X, t.Y = x, y
		written++
	})
	return written
}
