package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

type (
	// Handler runs one kind of job.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	JobHandlerFunc[T any] func(ctx context.Context, payload T) error
)

// NewTaskHandler builds a handler named after the payload type. Payloads that
// cannot be decoded fail permanently.
func NewTaskHandler[T any](handler JobHandlerFunc[T]) Handler {
	var payload T
	return &typedHandler[T]{
		name:    qualifiedStructName(payload),
		handler: handler,
	}
}

// NewNamedHandler is NewTaskHandler with an explicit name.
func NewNamedHandler[T any](name string, handler JobHandlerFunc[T]) Handler {
	return &typedHandler[T]{
		name:    name,
		handler: handler,
	}
}

type typedHandler[T any] struct {
	name    string
	handler JobHandlerFunc[T]
}

func (h *typedHandler[T]) Name() string {
	return h.name
}

func (h *typedHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return Permanent(fmt.Errorf("decode %s payload: %w", h.name, err))
	}
	return h.handler(ctx, t)
}
