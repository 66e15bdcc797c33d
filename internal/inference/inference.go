package inference

import "time"

// Message is a normalized representation of a chat message sent to or
// received from the upstream model.
type Message struct {
	Role    string
	Content string
}

// Request is the normalized note-generation request the gate operates on.
type Request struct {
	ClinicID string
	Model    string
	Messages []Message
	// Timings captures per-stage latency for activation events.
	Timings *Timings
	// PolicyHits lists the identifier categories that triggered on this
	// request, e.g. ["swedish_personal_number", "phone_number"].
	PolicyHits []string
	// MatchCount is the number of distinct matched substrings across all
	// detector passes (input and, when enabled, output).
	MatchCount int
	// GuardScores holds advisory ML scores (label -> probability) when the
	// guard model is enabled. Informational only.
	GuardScores map[string]float32
}

// UserText concatenates the user-authored message content. This is the text
// the identifier gate evaluates; system instructions are ours, not the
// clinician's, and are never checked.
func (r *Request) UserText() string {
	out := ""
	for _, m := range r.Messages {
		if m.Role != "user" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += m.Content
	}
	return out
}

// Usage holds token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the normalized provider response.
type Response struct {
	Message Message
	Usage   Usage
}

// Timings holds latency measurements for the stages of one request.
type Timings struct {
	PreCheck  time.Duration
	Provider  time.Duration
	PostCheck time.Duration
}
