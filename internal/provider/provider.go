package provider

import (
	"context"

	"github.com/VivekBose50/ClinicalNoteTool/internal/inference"
)

// Provider is the interface for upstream text-generation services.
type Provider interface {
	ChatCompletion(ctx context.Context, req *inference.Request) (*inference.Response, error)
}
