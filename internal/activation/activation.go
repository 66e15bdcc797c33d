package activation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/VivekBose50/ClinicalNoteTool/internal/inference"
	"github.com/VivekBose50/ClinicalNoteTool/internal/redact"
)

// Decision is the outcome of a request from the gate's perspective.
type Decision string

const (
	DecisionAllow         Decision = "allow"
	DecisionBlockedBefore Decision = "blocked_before"
	DecisionWarnedAfter   Decision = "warned_after"
	DecisionErrorProvider Decision = "error_provider"
)

// Meta identifies which clinic, provider and model handled the request.
type Meta struct {
	ClinicID string `json:"clinic_id"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// TimingMs holds per-stage latency in milliseconds.
type TimingMs struct {
	PreCheck  float64 `json:"pre_check"`
	Provider  float64 `json:"provider"`
	PostCheck float64 `json:"post_check"`
	Total     float64 `json:"total"`
}

// Event is the canonical activation payload, one per gated request.
type Event struct {
	Version     string             `json:"version"`
	Timestamp   time.Time          `json:"timestamp"`
	RequestID   string             `json:"request_id"`
	Meta        Meta               `json:"meta"`
	Decision    Decision           `json:"decision"`
	Reasons     []string           `json:"reasons,omitempty"`
	MatchCount  int                `json:"match_count"`
	GuardScores map[string]float32 `json:"guard_scores,omitempty"`
	// NotePreview is populated only at activation level "full" and is
	// always passed through the redactor first.
	NotePreview string   `json:"note_preview,omitempty"`
	TimingMs    TimingMs `json:"timing_ms"`
	Error       string   `json:"error,omitempty"`
}

// BuildParams collects inputs needed to assemble an activation event.
type BuildParams struct {
	Request      *inference.Request
	ProviderName string
	Decision     Decision
	// Level is the configured activation level: "metadata" or "full".
	Level string
	Err   error
}

// BuildEvent creates an activation event from a gated request.
func BuildEvent(params BuildParams) *Event {
	if params.Request == nil {
		return nil
	}
	req := params.Request

	ev := &Event{
		Version:   "1",
		Timestamp: time.Now().UTC(),
		RequestID: uuid.NewString(),
		Meta: Meta{
			ClinicID: req.ClinicID,
			Provider: params.ProviderName,
			Model:    req.Model,
		},
		Decision:    params.Decision,
		Reasons:     cloneStrings(req.PolicyHits),
		MatchCount:  req.MatchCount,
		GuardScores: cloneFloatMap(req.GuardScores),
	}

	if t := req.Timings; t != nil {
		ev.TimingMs = TimingMs{
			PreCheck:  durationMillis(t.PreCheck),
			Provider:  durationMillis(t.Provider),
			PostCheck: durationMillis(t.PostCheck),
		}
		ev.TimingMs.Total = ev.TimingMs.PreCheck + ev.TimingMs.Provider + ev.TimingMs.PostCheck
	}

	if params.Level == "full" {
		ev.NotePreview = redact.String(truncate(req.UserText(), 500))
	}

	if params.Err != nil {
		ev.Error = redact.String(params.Err.Error())
	}

	return ev
}

// LogEvent prints a redacted JSON representation of the activation event.
func LogEvent(ev *Event) {
	if ev == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		redact.Logf("activation: failed to marshal event: %v", err)
		return
	}
	redact.Logf("activation: %s", string(data))
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloatMap(in map[string]float32) map[string]float32 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]float32, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
