package policy

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/VivekBose50/ClinicalNoteTool/internal/config"
	"github.com/VivekBose50/ClinicalNoteTool/internal/identifier"
	"github.com/VivekBose50/ClinicalNoteTool/internal/inference"
)

// Scorer produces advisory ML scores for a piece of text. Implemented by
// the guard model; nil means no model is loaded.
type Scorer interface {
	Score(text string) (map[string]float32, error)
}

// BlockError is returned by BeforeModel when the note contains sensitive
// identifiers and the configured action is "block". It carries the full
// detection result so the caller can report every reason and match.
type BlockError struct {
	Result identifier.DetectionResult
}

func (e *BlockError) Error() string {
	reasons := make([]string, 0, len(e.Result.Reasons))
	for _, r := range e.Result.Reasons {
		reasons = append(reasons, string(r))
	}
	return fmt.Sprintf("note contains sensitive identifiers: %s", strings.Join(reasons, ", "))
}

// basicEngine gates requests on the identifier detector. The detector is a
// pure function; the engine adds the configured action, tracing, and the
// optional advisory guard score.
type basicEngine struct {
	cfg    config.PolicyConfig
	scorer Scorer
	tracer trace.Tracer
}

// NewBasic returns the standard identifier-gating policy engine.
func NewBasic(cfg config.PolicyConfig, scorer Scorer, tracer trace.Tracer) Engine {
	return &basicEngine{
		cfg:    cfg,
		scorer: scorer,
		tracer: tracer,
	}
}

func (b *basicEngine) BeforeModel(ctx context.Context, req *inference.Request) error {
	_, span := b.tracer.Start(ctx, "policy.before_model")
	defer span.End()

	if b.cfg.Identifiers == "ignore" {
		return nil
	}

	text := req.UserText()
	result := identifier.Detect(text)

	if b.scorer != nil {
		scores, err := b.scorer.Score(text)
		if err != nil {
			// Advisory only: the regex gate is authoritative.
			log.Printf("policy: guard model score failed: %v", err)
		} else {
			req.GuardScores = scores
		}
	}

	if !result.HasIdentifiers {
		return nil
	}

	for _, r := range result.Reasons {
		req.PolicyHits = append(req.PolicyHits, string(r))
	}
	req.MatchCount += len(result.Matches)
	span.SetAttributes(
		attribute.Int("policy.identifier_reasons", len(result.Reasons)),
		attribute.Int("policy.identifier_matches", len(result.Matches)),
	)

	if b.cfg.Identifiers == "log" {
		log.Printf("policy: identifiers detected (action=log): %v", req.PolicyHits)
		return nil
	}

	return &BlockError{Result: result}
}

func (b *basicEngine) AfterModel(ctx context.Context, req *inference.Request, resp *inference.Response) error {
	_, span := b.tracer.Start(ctx, "policy.after_model")
	defer span.End()

	if !b.cfg.ResponseCheck {
		return nil
	}

	result := identifier.Detect(resp.Message.Content)
	if !result.HasIdentifiers {
		return nil
	}

	// The generated note echoing identifiers is warned, never blocked: the
	// clinician sees the output and decides.
	for _, r := range result.Reasons {
		hit := "output_" + string(r)
		req.PolicyHits = append(req.PolicyHits, hit)
	}
	req.MatchCount += len(result.Matches)
	span.SetAttributes(attribute.Int("policy.output_identifier_reasons", len(result.Reasons)))
	log.Printf("policy: identifiers in generated note: %v", result.Reasons)
	return nil
}
