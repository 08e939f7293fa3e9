package app

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yohamta/donburi/ecs"
)

func TestScheduleSetOrder(t *testing.T) {
	s := newSchedule()
	var ran []string
	sys := func(name string) ecs.System {
		return func(*ecs.ECS) { ran = append(ran, name) }
	}
	s.addSystems(PostUpdate, SetCameraUpdate, sys("camera"))
	s.addSystems(PostUpdate, SetTransformPropagate, sys("propagate"))
	s.addSystems(Update, SetDefault, sys("gameplay"))
	s.chain(PostUpdate, SetTransformPropagate, SetCameraUpdate)
	s.chain(PostUpdate, "snap", SetTransformPropagate)
	s.addSystems(PostUpdate, "snap", sys("snap"))

	for _, f := range s.order() {
		f(nil)
	}
	want := []string{"gameplay", "snap", "propagate", "camera"}
	if !reflect.DeepEqual(ran, want) {
		t.Errorf("ran %v, want %v", ran, want)
	}
}

func TestScheduleCyclePanics(t *testing.T) {
	s := newSchedule()
	s.chain(PostUpdate, "a", "b")
	s.chain(PostUpdate, "b", "a")
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on cycle")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "cycle") {
			t.Errorf("panic = %v, want cycle message", r)
		}
	}()
	s.order()
}

func TestScheduleFrozenAfterStartup(t *testing.T) {
	a := NewWithBackend(DefaultConfig(), nil)
	a.Startup()
	defer func() {
		if recover() == nil {
			t.Error("expected panic when adding systems after startup")
		}
	}()
	a.AddSystems(Update, SetDefault, func(*ecs.ECS) {})
}

func TestStageString(t *testing.T) {
	if Update.String() != "Update" || PostUpdate.String() != "PostUpdate" {
		t.Errorf("stage names = %q, %q", Update, PostUpdate)
	}
}
