package policy

import (
	"context"

	"github.com/VivekBose50/ClinicalNoteTool/internal/inference"
)

// Engine defines the gate's policy interface.
// It runs before and after the upstream model call.
type Engine interface {
	// BeforeModel runs on the normalized request before calling the model.
	// It records identifier hits on the request and can return an error
	// to block.
	BeforeModel(ctx context.Context, req *inference.Request) error

	// AfterModel runs on the normalized response after calling the model.
	// It can flag identifiers in the generated note.
	AfterModel(ctx context.Context, req *inference.Request, resp *inference.Response) error
}

// noopEngine is the simplest possible implementation: it does nothing.
type noopEngine struct{}

// NewNoop returns a policy engine that performs no checks.
func NewNoop() Engine {
	return &noopEngine{}
}

func (n *noopEngine) BeforeModel(ctx context.Context, req *inference.Request) error {
	return nil
}

func (n *noopEngine) AfterModel(ctx context.Context, req *inference.Request, resp *inference.Response) error {
	return nil
}
