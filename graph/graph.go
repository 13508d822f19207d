package graph

import (
	"context"
	"fmt"
	"sort"
)

// End is the terminal marker. Edges that point at End finish execution.
const End = "__end__"

// NodeFunc is the function executed by a node
type NodeFunc[S any] func(context.Context, S) (S, error)

// ConditionFunc inspects the state and returns a branch label
type ConditionFunc[S any] func(context.Context, S) (string, error)

// Node represents a node in the execution graph.
// A node leaves either through a fixed edge (Next) or through a
// condition whose result is looked up in NextMap.
type Node[S any] struct {
	Name      string
	Execute   NodeFunc[S]
	Next      string
	Condition ConditionFunc[S]
	NextMap   map[string]string // condition result -> next node
}

// Graph represents an execution flow graph over a state of type S
type Graph[S any] struct {
	nodes     map[string]*Node[S]
	order     []string
	startNode string
	maxVisits int
}

// NewGraph creates a new graph
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:     make(map[string]*Node[S]),
		maxVisits: 10,
	}
}

func (g *Graph[S]) validateNode(node *Node[S]) {
	if node.Name == "" {
		panic("node name cannot be empty")
	}
	if node.Name == End {
		panic(fmt.Sprintf("node name %s is reserved", End))
	}
	if node.Execute == nil {
		panic(fmt.Sprintf("node %s must have non-nil Execute function", node.Name))
	}
}

// AddNode adds a node to the graph
func (g *Graph[S]) AddNode(node *Node[S]) {
	if _, exists := g.nodes[node.Name]; exists {
		panic(fmt.Sprintf("node %s already exists", node.Name))
	}

	g.validateNode(node)

	g.nodes[node.Name] = node
	g.order = append(g.order, node.Name)
}

// SetStartNode sets the start node
func (g *Graph[S]) SetStartNode(name string) {
	if _, exists := g.nodes[name]; !exists {
		panic(fmt.Sprintf("node %s not found", name))
	}
	g.startNode = name
}

// SetMaxVisits sets the maximum number of visits to a node
func (g *Graph[S]) SetMaxVisits(maxVisits int) {
	g.maxVisits = maxVisits
}

// Validate checks that the graph has a start node and that every
// fixed edge and every branch target names a known node or End.
func (g *Graph[S]) Validate() error {
	if g.startNode == "" {
		return fmt.Errorf("start node not set")
	}
	for _, name := range g.order {
		node := g.nodes[name]
		if node.Condition == nil {
			if node.Next == "" {
				return fmt.Errorf("no next node specified for node %s", name)
			}
			if err := g.checkTarget(name, node.Next); err != nil {
				return err
			}
			continue
		}
		if len(node.NextMap) == 0 {
			return fmt.Errorf("condition node %s has no branches", name)
		}
		for label, target := range node.NextMap {
			if err := g.checkTarget(name, target); err != nil {
				return fmt.Errorf("branch %q: %w", label, err)
			}
		}
	}
	return nil
}

func (g *Graph[S]) checkTarget(from, to string) error {
	if to == End {
		return nil
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("node %s points at unknown node %s", from, to)
	}
	return nil
}

// Execute runs the graph from the start node until End is reached.
// Exactly one node is current at any time: the node runs, then either
// its fixed edge is followed or its condition picks the next node.
func (g *Graph[S]) Execute(ctx context.Context, state S) (S, error) {
	if g.startNode == "" {
		return state, fmt.Errorf("start node not set")
	}

	visited := make(map[string]int)
	current := g.startNode

	for current != End {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("execution interrupted before node %s: %w", current, err)
		}

		node, exists := g.nodes[current]
		if !exists {
			return state, fmt.Errorf("node %s not found", current)
		}

		// Detect runaway loops by counting how many times we revisit a node.
		visited[current]++
		if visited[current] > g.maxVisits {
			return state, fmt.Errorf("infinite loop detected at node %s", current)
		}

		var err error
		state, err = node.Execute(ctx, state)
		if err != nil {
			return state, fmt.Errorf("error executing node %s: %w", node.Name, err)
		}

		current, err = g.resolveNext(ctx, node, state)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

func (g *Graph[S]) resolveNext(ctx context.Context, node *Node[S], state S) (string, error) {
	if node.Condition == nil {
		if node.Next == "" {
			return "", fmt.Errorf("no next node specified for node %s", node.Name)
		}
		return node.Next, nil
	}

	result, err := node.Condition(ctx, state)
	if err != nil {
		return "", fmt.Errorf("error evaluating condition at node %s: %w", node.Name, err)
	}
	next, ok := node.NextMap[result]
	if !ok || next == "" {
		return "", fmt.Errorf("condition at node %s returned unknown branch %q", node.Name, result)
	}
	return next, nil
}

// GetNode returns a node by name
func (g *Graph[S]) GetNode(name string) (*Node[S], error) {
	node, exists := g.nodes[name]
	if !exists {
		return nil, fmt.Errorf("node %s not found", name)
	}
	return node, nil
}

// Nodes returns node names in insertion order
func (g *Graph[S]) Nodes() []string {
	return append([]string(nil), g.order...)
}

// StartNode returns the entry node name
func (g *Graph[S]) StartNode() string {
	return g.startNode
}

// Successors returns every node reachable in one step from name, sorted.
func (g *Graph[S]) Successors(name string) []string {
	node, exists := g.nodes[name]
	if !exists {
		return nil
	}
	if node.Condition == nil {
		return []string{node.Next}
	}
	seen := make(map[string]struct{}, len(node.NextMap))
	var out []string
	for _, target := range node.NextMap {
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// Builder helps build graphs fluently
type Builder[S any] struct {
	graph *Graph[S]
}

// NewBuilder creates a new graph builder
func NewBuilder[S any]() *Builder[S] {
	return &Builder[S]{
		graph: NewGraph[S](),
	}
}

// AddNode adds a node to the graph
func (b *Builder[S]) AddNode(name string, execute NodeFunc[S]) *Builder[S] {
	b.graph.AddNode(&Node[S]{
		Name:    name,
		Execute: execute,
	})
	return b
}

// AddEdge connects two nodes with a fixed edge
func (b *Builder[S]) AddEdge(from, to string) *Builder[S] {
	node, exists := b.graph.nodes[from]
	if !exists {
		panic(fmt.Sprintf("node %s not found", from))
	}
	node.Next = to
	return b
}

// AddConditionalEdges routes from a node through a condition
func (b *Builder[S]) AddConditionalEdges(from string, condition ConditionFunc[S], nextMap map[string]string) *Builder[S] {
	node, exists := b.graph.nodes[from]
	if !exists {
		panic(fmt.Sprintf("node %s not found", from))
	}
	if condition == nil {
		panic(fmt.Sprintf("node %s must have non-nil Condition function", from))
	}
	node.Condition = condition
	node.NextMap = make(map[string]string, len(nextMap))
	for k, v := range nextMap {
		node.NextMap[k] = v
	}
	return b
}

// SetStart sets the start node
func (b *Builder[S]) SetStart(name string) *Builder[S] {
	b.graph.SetStartNode(name)
	return b
}

// SetMaxVisits sets the maximum number of visits to a node
func (b *Builder[S]) SetMaxVisits(maxVisits int) *Builder[S] {
	b.graph.SetMaxVisits(maxVisits)
	return b
}

// Build validates and returns the constructed graph
func (b *Builder[S]) Build() (*Graph[S], error) {
	if err := b.graph.Validate(); err != nil {
		return nil, err
	}
	return b.graph, nil
}
