package render

import (
	"errors"
	"reflect"
	"testing"
)

func TestGraphOrder(t *testing.T) {
	g := NewGraph()
	var ran []string
	rec := func(name string) Node {
		return NodeFunc(func(*RenderContext, *View, *World) error {
			ran = append(ran, name)
			return nil
		})
	}
	g.AddNode(NodeMainPass, rec(NodeMainPass))
	g.AddNode(NodeEndMainPassPostProcessing, rec(NodeEndMainPassPostProcessing))
	g.AddNode(NodeTonemapping, rec(NodeTonemapping))
	g.AddNode("post", rec("post"))
	g.AddEdges(NodeMainPass, NodeTonemapping, NodeEndMainPassPostProcessing)
	g.AddEdges(NodeTonemapping, "post", NodeEndMainPassPostProcessing)

	if err := g.Run(NewRenderContext(nil), &View{}, NewWorld()); err != nil {
		t.Fatal(err)
	}
	want := []string{NodeMainPass, NodeTonemapping, "post", NodeEndMainPassPostProcessing}
	if !reflect.DeepEqual(ran, want) {
		t.Errorf("ran %v, want %v", ran, want)
	}
}

func TestGraphStopsOnError(t *testing.T) {
	g := NewGraph()
	boom := errors.New("boom")
	called := false
	g.AddNode("a", NodeFunc(func(*RenderContext, *View, *World) error { return boom }))
	g.AddNode("b", NodeFunc(func(*RenderContext, *View, *World) error { called = true; return nil }))
	g.AddEdges("a", "b")

	err := g.Run(NewRenderContext(nil), &View{}, NewWorld())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if called {
		t.Error("node after failing node ran")
	}
}

func TestGraphUnknownEdgePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown node")
		}
	}()
	g := NewGraph()
	g.AddNode("a", EmptyNode{})
	g.AddEdges("a", "missing")
}

func TestGraphCyclePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for cycle")
		}
	}()
	g := NewGraph()
	g.AddNode("a", EmptyNode{})
	g.AddNode("b", EmptyNode{})
	g.AddEdges("a", "b", "a")
	g.Order()
}
