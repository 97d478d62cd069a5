package middleware

import (
	"context"
	"testing"
)

func newCtx() *CommandContext {
	return &CommandContext{Ctx: context.Background(), TaskID: "t1"}
}

func TestEmptyChainPassesThrough(t *testing.T) {
	c := NewChain()
	out, err := c.Process(newCtx(), "open youtube")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "open youtube" {
		t.Errorf("got %q, want passthrough", out)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return NewFunc(name, func(ctx *CommandContext, cmd string, next ProcessFunc) (string, error) {
			order = append(order, name)
			return next(ctx, cmd+"|"+name)
		})
	}

	c := NewChain(mk("first"), mk("second"))
	out, err := c.Process(newCtx(), "cmd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order[0] != "first" || order[1] != "second" {
		t.Errorf("wrong execution order: %v", order)
	}
	if out != "cmd|first|second" {
		t.Errorf("got %q", out)
	}
}

func TestValidationStopsChain(t *testing.T) {
	called := false
	c := NewChain(
		NewCommandValidation("Message Luma"),
		NewFunc("probe", func(ctx *CommandContext, cmd string, next ProcessFunc) (string, error) {
			called = true
			return next(ctx, cmd)
		}),
	)

	if _, err := c.Process(newCtx(), "   "); err == nil {
		t.Error("expected rejection of blank command")
	}
	if _, err := c.Process(newCtx(), "Message Luma"); err == nil {
		t.Error("expected rejection of placeholder command")
	}
	if called {
		t.Error("downstream middleware ran after rejection")
	}

	if _, err := c.Process(newCtx(), "real command"); err != nil {
		t.Errorf("valid command rejected: %v", err)
	}
}
