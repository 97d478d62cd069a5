// Package middleware provides a processing chain for commands on their way
// to the agent. Middleware can validate, transform, or reject the command
// text before dispatch; rule injection and input validation are built on it.
package middleware

import (
	"context"
	"fmt"

	"github.com/machovotrish/luma/pkg/log"
)

// CommandContext carries contextual information through the chain.
type CommandContext struct {
	// Ctx is the task context
	Ctx context.Context
	// TaskID identifies the task being dispatched
	TaskID string
	// Metadata holds additional values middleware may read or set
	Metadata map[string]interface{}
}

// ProcessFunc advances the chain with the (possibly rewritten) command.
type ProcessFunc func(ctx *CommandContext, command string) (string, error)

// Middleware processes a command and optionally passes it along the chain.
type Middleware interface {
	// Process handles the command; returning an error stops dispatch
	Process(ctx *CommandContext, command string, next ProcessFunc) (string, error)
	// Name identifies the middleware for logging
	Name() string
}

// Chain is an ordered list of middleware.
type Chain struct {
	middleware []Middleware
}

// NewChain creates a chain from the given middleware, in order.
func NewChain(middleware ...Middleware) *Chain {
	return &Chain{middleware: middleware}
}

// Add appends middleware to the chain.
func (c *Chain) Add(m Middleware) {
	c.middleware = append(c.middleware, m)
}

// Len returns the number of middleware in the chain.
func (c *Chain) Len() int {
	return len(c.middleware)
}

// Process runs the command through every middleware and returns the text
// the adapter should receive.
func (c *Chain) Process(ctx *CommandContext, command string) (string, error) {
	if len(c.middleware) == 0 {
		return command, nil
	}

	var process ProcessFunc
	process = func(ctx *CommandContext, command string) (string, error) {
		return command, nil
	}

	// Wrap in reverse order so the first middleware runs first.
	for i := len(c.middleware) - 1; i >= 0; i-- {
		m := c.middleware[i]
		next := process
		process = func(ctx *CommandContext, command string) (string, error) {
			return m.Process(ctx, command, next)
		}
	}

	return process(ctx, command)
}

// Func adapts a function to the Middleware interface.
type Func struct {
	name string
	fn   func(ctx *CommandContext, command string, next ProcessFunc) (string, error)
}

// NewFunc creates middleware from a function.
func NewFunc(name string, fn func(ctx *CommandContext, command string, next ProcessFunc) (string, error)) Middleware {
	return &Func{name: name, fn: fn}
}

// Process implements Middleware.
func (f *Func) Process(ctx *CommandContext, command string, next ProcessFunc) (string, error) {
	return f.fn(ctx, command, next)
}

// Name implements Middleware.
func (f *Func) Name() string {
	return f.name
}

// ValidationFunc inspects a command and returns an error to reject it.
type ValidationFunc func(ctx *CommandContext, command string) error

// NewValidation creates middleware that rejects commands failing validate.
func NewValidation(name string, validate ValidationFunc) Middleware {
	return NewFunc(name, func(ctx *CommandContext, command string, next ProcessFunc) (string, error) {
		if err := validate(ctx, command); err != nil {
			log.WithFields(map[string]interface{}{
				"middleware": name,
				"task_id":    ctx.TaskID,
			}).WithError(err).Warn("command rejected")
			return "", fmt.Errorf("validation failed in %s: %w", name, err)
		}
		return next(ctx, command)
	})
}

// TransformFunc rewrites a command.
type TransformFunc func(ctx *CommandContext, command string) (string, error)

// NewTransform creates middleware that rewrites the command before dispatch.
func NewTransform(name string, transform TransformFunc) Middleware {
	return NewFunc(name, func(ctx *CommandContext, command string, next ProcessFunc) (string, error) {
		rewritten, err := transform(ctx, command)
		if err != nil {
			return "", fmt.Errorf("transform error in %s: %w", name, err)
		}
		return next(ctx, rewritten)
	})
}
