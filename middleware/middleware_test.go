package middleware

import (
	"context"
	"errors"
	"testing"
)

func TestMiddlewareChain(t *testing.T) {
	t.Run("empty chain executes final handler", func(t *testing.T) {
		chain := NewChain()
		executed := false

		err := chain.Execute(NewContext(context.Background(), "validate_config", "run-1"), func(ctx *Context) error {
			executed = true
			return nil
		})

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !executed {
			t.Error("final handler was not executed")
		}
	})

	t.Run("middleware chain executes in order", func(t *testing.T) {
		order := []string{}

		m1 := &TestMiddleware{name: "m1", order: &order}
		m2 := &TestMiddleware{name: "m2", order: &order}

		chain := NewChain(m1).Add(m2)
		ctx := NewContext(context.Background(), "generate_code", "run-1")

		_ = chain.Execute(ctx, func(c *Context) error {
			order = append(order, "final")
			return nil
		})

		expected := []string{"m1", "m2", "final"}
		if len(order) != len(expected) {
			t.Fatalf("expected %d steps, got %d", len(expected), len(order))
		}
		for i, e := range expected {
			if order[i] != e {
				t.Errorf("expected step %d to be %s, got %s", i, e, order[i])
			}
		}
		if names := chain.Names(); len(names) != 2 || names[0] != "m1" || names[1] != "m2" {
			t.Errorf("Names() = %v", names)
		}
	})

	t.Run("error stops chain execution", func(t *testing.T) {
		order := []string{}
		m1 := &TestMiddleware{name: "m1", err: errors.New("test error"), order: &order}
		m2 := &TestMiddleware{name: "m2", order: &order}

		chain := NewChain(m1, m2)
		ctx := NewContext(context.Background(), "create_docker", "run-1")

		finalCalled := false
		err := chain.Execute(ctx, func(c *Context) error {
			finalCalled = true
			return nil
		})

		if err == nil {
			t.Error("expected error from middleware")
		}
		if finalCalled {
			t.Error("final handler should not be called after middleware error")
		}
		if ctx.Error != err {
			t.Errorf("ctx.Error = %v, want %v", ctx.Error, err)
		}
	})
}

func TestContextDefaults(t *testing.T) {
	var c Context
	if c.Context() == nil {
		t.Error("zero Context should fall back to a background context")
	}

	type key struct{}
	nc := NewContext(context.Background(), "finalize_output", "run-9")
	nc.SetContext(context.WithValue(nc.Context(), key{}, "v"))
	if nc.Context().Value(key{}) != "v" {
		t.Error("SetContext did not replace the context")
	}
	if nc.Stage != "finalize_output" || nc.RunID != "run-9" || nc.Metadata == nil {
		t.Errorf("unexpected context %+v", nc)
	}
}

type TestMiddleware struct {
	name  string
	order *[]string
	err   error
}

func (m *TestMiddleware) Name() string {
	return m.name
}

func (m *TestMiddleware) Execute(ctx *Context, next Handler) error {
	*m.order = append(*m.order, m.name)
	if m.err != nil {
		return m.err
	}
	return next(ctx)
}
