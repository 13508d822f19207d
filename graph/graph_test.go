package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type trace struct {
	steps []string
	value int
}

func step(name string) NodeFunc[*trace] {
	return func(ctx context.Context, s *trace) (*trace, error) {
		s.steps = append(s.steps, name)
		return s, nil
	}
}

func TestNewGraph(t *testing.T) {
	g := NewGraph[*trace]()
	if g == nil {
		t.Errorf("NewGraph returned nil")
	}
}

func TestAddNode(t *testing.T) {
	g := NewGraph[*trace]()
	g.AddNode(&Node[*trace]{Name: "test_node", Execute: step("test_node"), Next: End})

	retrieved, err := g.GetNode("test_node")
	if err != nil {
		t.Errorf("Failed to retrieve added node: %v", err)
	}
	if retrieved.Name != "test_node" {
		t.Errorf("Retrieved node name mismatch")
	}
}

func TestAddNodeEmptyName(t *testing.T) {
	g := NewGraph[*trace]()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected function to panic, but it did not")
		} else if r != "node name cannot be empty" {
			t.Errorf("Expected panic value to be 'node name cannot be empty', but got %v", r)
		}
	}()

	g.AddNode(&Node[*trace]{Name: "", Execute: step("x")})
}

func TestAddNodeReservedName(t *testing.T) {
	g := NewGraph[*trace]()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected function to panic, but it did not")
		}
	}()

	g.AddNode(&Node[*trace]{Name: End, Execute: step("x")})
}

func TestAddNodeDuplicate(t *testing.T) {
	g := NewGraph[*trace]()
	g.AddNode(&Node[*trace]{Name: "dup_node", Execute: step("a")})

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected function to panic, but it did not")
		} else if r != "node dup_node already exists" {
			t.Errorf("Expected panic value to be 'node dup_node already exists', but got %v", r)
		}
	}()
	g.AddNode(&Node[*trace]{Name: "dup_node", Execute: step("b")})
}

func TestAddNodeNilExecute(t *testing.T) {
	g := NewGraph[*trace]()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected function to panic, but it did not")
		}
	}()
	g.AddNode(&Node[*trace]{Name: "empty"})
}

func TestSetStartNodeNotFound(t *testing.T) {
	g := NewGraph[*trace]()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected function to panic, but it did not")
		} else if r != "node nonexistent not found" {
			t.Errorf("Expected panic value to be 'node nonexistent not found', but got %v", r)
		}
	}()

	g.SetStartNode("nonexistent")
}

func TestExecuteSimpleLinearGraph(t *testing.T) {
	g, err := NewBuilder[*trace]().
		AddNode("start", step("start")).
		AddNode("node1", step("node1")).
		AddNode("node2", step("node2")).
		AddEdge("start", "node1").
		AddEdge("node1", "node2").
		AddEdge("node2", End).
		SetStart("start").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	state, err := g.Execute(context.Background(), &trace{})
	if err != nil {
		t.Fatalf("Graph execution failed: %v", err)
	}

	want := "start,node1,node2"
	if got := strings.Join(state.steps, ","); got != want {
		t.Errorf("visited %q, want %q", got, want)
	}
}

func TestExecuteWithCondition(t *testing.T) {
	build := func() *Graph[*trace] {
		g, err := NewBuilder[*trace]().
			AddNode("decide", step("decide")).
			AddNode("high", step("high")).
			AddNode("low", step("low")).
			AddConditionalEdges("decide", func(ctx context.Context, s *trace) (string, error) {
				if s.value > 10 {
					return "high", nil
				}
				return "low", nil
			}, map[string]string{"high": "high", "low": "low"}).
			AddEdge("high", End).
			AddEdge("low", End).
			SetStart("decide").
			Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		return g
	}

	tests := []struct {
		name  string
		value int
		want  string
	}{
		{name: "high branch", value: 15, want: "decide,high"},
		{name: "low branch", value: 5, want: "decide,low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := build().Execute(context.Background(), &trace{value: tt.value})
			if err != nil {
				t.Fatalf("Graph execution failed: %v", err)
			}
			if got := strings.Join(state.steps, ","); got != tt.want {
				t.Errorf("visited %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConditionCanJumpToEnd(t *testing.T) {
	g, err := NewBuilder[*trace]().
		AddNode("gate", step("gate")).
		AddNode("work", step("work")).
		AddConditionalEdges("gate", func(ctx context.Context, s *trace) (string, error) {
			return "stop", nil
		}, map[string]string{"stop": End, "go": "work"}).
		AddEdge("work", End).
		SetStart("gate").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	state, err := g.Execute(context.Background(), &trace{})
	if err != nil {
		t.Fatalf("Graph execution failed: %v", err)
	}
	if len(state.steps) != 1 || state.steps[0] != "gate" {
		t.Errorf("expected only gate to run, got %v", state.steps)
	}
}

func TestExecuteUnknownBranch(t *testing.T) {
	g, err := NewBuilder[*trace]().
		AddNode("gate", step("gate")).
		AddConditionalEdges("gate", func(ctx context.Context, s *trace) (string, error) {
			return "sideways", nil
		}, map[string]string{"forward": End}).
		SetStart("gate").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := g.Execute(context.Background(), &trace{}); err == nil {
		t.Error("expected error for unknown branch label")
	}
}

func TestExecuteNodeError(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewBuilder[*trace]().
		AddNode("fail", func(ctx context.Context, s *trace) (*trace, error) {
			return s, boom
		}).
		AddEdge("fail", End).
		SetStart("fail").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err = g.Execute(context.Background(), &trace{})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped node error, got %v", err)
	}
}

func TestExecuteDetectsLoop(t *testing.T) {
	g, err := NewBuilder[*trace]().
		AddNode("a", step("a")).
		AddNode("b", step("b")).
		AddEdge("a", "b").
		AddEdge("b", "a").
		SetStart("a").
		SetMaxVisits(1).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err = g.Execute(context.Background(), &trace{})
	if err == nil || !strings.Contains(err.Error(), "infinite loop") {
		t.Errorf("expected loop detection, got %v", err)
	}
}

func TestExecuteHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, err := NewBuilder[*trace]().
		AddNode("first", func(ctx context.Context, s *trace) (*trace, error) {
			cancel()
			s.steps = append(s.steps, "first")
			return s, nil
		}).
		AddNode("second", step("second")).
		AddEdge("first", "second").
		AddEdge("second", End).
		SetStart("first").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	state, err := g.Execute(ctx, &trace{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(state.steps) != 1 {
		t.Errorf("second node should not run after cancellation, got %v", state.steps)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Graph[*trace], error)
	}{
		{
			name: "missing start",
			build: func() (*Graph[*trace], error) {
				return NewBuilder[*trace]().AddNode("a", step("a")).AddEdge("a", End).Build()
			},
		},
		{
			name: "dangling edge",
			build: func() (*Graph[*trace], error) {
				return NewBuilder[*trace]().AddNode("a", step("a")).AddEdge("a", "ghost").SetStart("a").Build()
			},
		},
		{
			name: "no outgoing edge",
			build: func() (*Graph[*trace], error) {
				return NewBuilder[*trace]().AddNode("a", step("a")).SetStart("a").Build()
			},
		},
		{
			name: "dangling branch",
			build: func() (*Graph[*trace], error) {
				return NewBuilder[*trace]().
					AddNode("a", step("a")).
					AddConditionalEdges("a", func(context.Context, *trace) (string, error) { return "x", nil },
						map[string]string{"x": "ghost"}).
					SetStart("a").
					Build()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build(); err == nil {
				t.Error("expected Build to fail")
			}
		})
	}
}

func TestSuccessors(t *testing.T) {
	g, err := NewBuilder[*trace]().
		AddNode("a", step("a")).
		AddNode("b", step("b")).
		AddConditionalEdges("a", func(context.Context, *trace) (string, error) { return "x", nil },
			map[string]string{"x": "b", "y": End, "z": "b"}).
		AddEdge("b", End).
		SetStart("a").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := g.Successors("a")
	if len(got) != 2 || got[0] != End || got[1] != "b" {
		t.Errorf("unexpected successors %v", got)
	}
	if s := g.Successors("b"); len(s) != 1 || s[0] != End {
		t.Errorf("unexpected successors %v", s)
	}
	if g.Successors("missing") != nil {
		t.Error("expected nil successors for unknown node")
	}
}
