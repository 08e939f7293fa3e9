package render

import (
	"fmt"

	"github.com/phanxgames/pixelperfect/internal/order"
)

// Well-known nodes of the 2D core graph.
const (
	NodeMainPass                  = "main_pass"
	NodeTonemapping               = "tonemapping"
	NodeEndMainPassPostProcessing = "end_main_pass_post_processing"
)

// Node is one step of the per-view render graph.
type Node interface {
	Run(ctx *RenderContext, view *View, world *World) error
}

// NodeFunc adapts a function to Node.
type NodeFunc func(ctx *RenderContext, view *View, world *World) error

func (f NodeFunc) Run(ctx *RenderContext, view *View, world *World) error {
	return f(ctx, view, world)
}

// EmptyNode does nothing. It marks a position other nodes order against.
type EmptyNode struct{}

func (EmptyNode) Run(*RenderContext, *View, *World) error { return nil }

// Graph runs named nodes once per view in dependency order.
type Graph struct {
	names  []string
	nodes  map[string]Node
	edges  map[string][]string
	sorted []string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]Node), edges: make(map[string][]string)}
}

// AddNode registers n under name. Duplicate names panic.
func (g *Graph) AddNode(name string, n Node) {
	if _, ok := g.nodes[name]; ok {
		panic(fmt.Sprintf("render: graph node %q already exists", name))
	}
	g.names = append(g.names, name)
	g.nodes[name] = n
	g.sorted = nil
}

// AddEdges orders the given nodes one after another. Unknown names panic.
func (g *Graph) AddEdges(chain ...string) {
	for _, name := range chain {
		if _, ok := g.nodes[name]; !ok {
			panic(fmt.Sprintf("render: graph node %q does not exist", name))
		}
	}
	for i := 1; i < len(chain); i++ {
		g.edges[chain[i-1]] = append(g.edges[chain[i-1]], chain[i])
	}
	g.sorted = nil
}

// Order returns node names in execution order. A cycle panics.
func (g *Graph) Order() []string {
	if g.sorted == nil {
		s, err := order.Sort(g.names, g.edges)
		if err != nil {
			panic("render: graph: " + err.Error())
		}
		g.sorted = s
	}
	return g.sorted
}

// Run executes every node for view, stopping at the first error.
func (g *Graph) Run(ctx *RenderContext, view *View, world *World) error {
	for _, name := range g.Order() {
		if err := g.nodes[name].Run(ctx, view, world); err != nil {
			return fmt.Errorf("node %s: %w", name, err)
		}
	}
	return nil
}
