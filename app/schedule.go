package app

import (
	"fmt"

	"github.com/yohamta/donburi/ecs"

	"github.com/phanxgames/pixelperfect/internal/order"
)

// Stage is a coarse phase of a tick. Stages run in declaration order.
type Stage int

const (
	// Update runs gameplay systems.
	Update Stage = iota
	// PostUpdate derives state from what Update wrote: pixelation,
	// snapping, transform propagation and camera views.
	PostUpdate

	stageCount
)

func (s Stage) String() string {
	switch s {
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// SystemSet names a group of systems ordered as a unit within a stage.
type SystemSet string

const (
	// SetDefault holds systems added without an explicit set.
	SetDefault SystemSet = "default"
	// SetTransformPropagate writes GlobalTransform from Transform.
	SetTransformPropagate SystemSet = "transform_propagate"
	// SetCameraUpdate writes CameraView from GlobalTransform and Projection.
	SetCameraUpdate SystemSet = "camera_update"
)

type stageSchedule struct {
	sets    []string
	systems map[string][]ecs.System
	edges   map[string][]string
}

func (s *stageSchedule) ensure(set SystemSet) {
	name := string(set)
	if _, ok := s.systems[name]; ok {
		return
	}
	s.sets = append(s.sets, name)
	s.systems[name] = nil
}

// schedule collects systems per stage and set, then flattens them into a
// single ordered list for the ECS.
type schedule struct {
	stages   [stageCount]stageSchedule
	compiled bool
}

func newSchedule() *schedule {
	s := &schedule{}
	for i := range s.stages {
		s.stages[i] = stageSchedule{
			systems: make(map[string][]ecs.System),
			edges:   make(map[string][]string),
		}
	}
	return s
}

func (s *schedule) stage(st Stage) *stageSchedule {
	if st < 0 || st >= stageCount {
		panic(fmt.Sprintf("app: unknown stage %v", st))
	}
	if s.compiled {
		panic("app: schedule changed after the app started")
	}
	return &s.stages[st]
}

func (s *schedule) addSystems(st Stage, set SystemSet, systems ...ecs.System) {
	ss := s.stage(st)
	ss.ensure(set)
	ss.systems[string(set)] = append(ss.systems[string(set)], systems...)
}

// chain orders sets one after another.
func (s *schedule) chain(st Stage, sets ...SystemSet) {
	ss := s.stage(st)
	for _, set := range sets {
		ss.ensure(set)
	}
	for i := 1; i < len(sets); i++ {
		from := string(sets[i-1])
		ss.edges[from] = append(ss.edges[from], string(sets[i]))
	}
}

// order returns every system of every stage in execution order.
// Cycles panic.
func (s *schedule) order() []ecs.System {
	var out []ecs.System
	for i := range s.stages {
		ss := &s.stages[i]
		sorted, err := order.Sort(ss.sets, ss.edges)
		if err != nil {
			panic(fmt.Sprintf("app: %v sets: %v", Stage(i), err))
		}
		for _, name := range sorted {
			out = append(out, ss.systems[name]...)
		}
	}
	return out
}

// setOrder returns the sorted set names of st, for inspection.
func (s *schedule) setOrder(st Stage) ([]SystemSet, error) {
	ss := &s.stages[st]
	sorted, err := order.Sort(ss.sets, ss.edges)
	if err != nil {
		return nil, err
	}
	out := make([]SystemSet, len(sorted))
	for i, n := range sorted {
		out[i] = SystemSet(n)
	}
	return out, nil
}
