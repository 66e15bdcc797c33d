package provider

import (
	"context"

	"github.com/VivekBose50/ClinicalNoteTool/internal/inference"
)

// FakeProvider returns a canned response. It is the test double and the
// degraded-mode fallback when no upstream provider is configured.
type FakeProvider struct {
	ResponseText string
	Error        error
}

func NewFake(response string) *FakeProvider {
	return &FakeProvider{ResponseText: response}
}

func (f *FakeProvider) ChatCompletion(ctx context.Context, req *inference.Request) (*inference.Response, error) {
	if f.Error != nil {
		return nil, f.Error
	}
	return &inference.Response{
		Message: inference.Message{
			Role:    "assistant",
			Content: f.ResponseText,
		},
		Usage: inference.Usage{
			PromptTokens:     2,
			CompletionTokens: 3,
			TotalTokens:      5,
		},
	}, nil
}
