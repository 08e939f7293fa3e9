package order

import (
	"reflect"
	"testing"
)

func TestSortKeepsDeclarationOrder(t *testing.T) {
	got, err := Sort([]string{"a", "b", "c"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
}

func TestSortHonorsEdges(t *testing.T) {
	edges := map[string][]string{
		"snap":       {"propagate"},
		"pixelation": {"snap", "camera"},
		"propagate":  {"camera"},
	}
	got, err := Sort([]string{"propagate", "camera", "pixelation", "snap"}, edges)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"pixelation", "snap", "propagate", "camera"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
}

func TestSortDetectsCycle(t *testing.T) {
	edges := map[string][]string{"a": {"b"}, "b": {"a"}}
	if _, err := Sort([]string{"a", "b"}, edges); err == nil {
		t.Error("expected cycle error")
	}
}

func TestSortUnknownName(t *testing.T) {
	if _, err := Sort([]string{"a"}, map[string][]string{"a": {"zzz"}}); err == nil {
		t.Error("expected unknown name error")
	}
	if _, err := Sort([]string{"a"}, map[string][]string{"zzz": {"a"}}); err == nil {
		t.Error("expected unknown name error")
	}
}

func TestSortDuplicateName(t *testing.T) {
	if _, err := Sort([]string{"a", "a"}, nil); err == nil {
		t.Error("expected duplicate error")
	}
}
