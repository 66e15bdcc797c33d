package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VivekBose50/ClinicalNoteTool/internal/activation"
	"github.com/VivekBose50/ClinicalNoteTool/internal/auth"
	"github.com/VivekBose50/ClinicalNoteTool/internal/identifier"
	"github.com/VivekBose50/ClinicalNoteTool/internal/inference"
	"github.com/VivekBose50/ClinicalNoteTool/internal/policy"
)

type checkRequest struct {
	Text string `json:"text"`
}

type matchPayload struct {
	Reason  string `json:"reason"`
	Match   string `json:"match"`
	Message string `json:"message"`
}

type checkResponse struct {
	HasIdentifiers bool           `json:"has_identifiers"`
	Reasons        []string       `json:"reasons"`
	Matches        []matchPayload `json:"matches"`
}

// generateRequest accepts either a plain "text" field (optionally with an
// "instruction" forwarded as a system message) or an OpenAI-style messages
// array. Both shapes pass through the same identifier gate.
type generateRequest struct {
	Text        string        `json:"text"`
	Instruction string        `json:"instruction"`
	Model       string        `json:"model"`
	Messages    []noteMessage `json:"messages"`
}

type noteMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateResponse struct {
	ID       string       `json:"id"`
	Created  int64        `json:"created"`
	Model    string       `json:"model"`
	Note     string       `json:"note"`
	Usage    usagePayload `json:"usage"`
	Warnings []string     `json:"warnings,omitempty"`
}

type usagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type blockedResponse struct {
	Error   string         `json:"error"`
	Reasons []string       `json:"reasons"`
	Matches []matchPayload `json:"matches"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (s *Server) handleNotesCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	clinic, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxNoteBytes)
	var reqBody checkRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeBodyError(w, err)
		return
	}

	start := time.Now()
	result := identifier.Detect(reqBody.Text)
	elapsed := time.Since(start)

	decision := activation.DecisionAllow
	if result.HasIdentifiers {
		decision = activation.DecisionBlockedBefore
	}

	infReq := &inference.Request{
		ClinicID: clinic.ID,
		Messages: []inference.Message{{Role: "user", Content: reqBody.Text}},
		Timings:  &inference.Timings{PreCheck: elapsed},
	}
	for _, reason := range result.Reasons {
		infReq.PolicyHits = append(infReq.PolicyHits, string(reason))
	}
	infReq.MatchCount = len(result.Matches)

	s.metrics.ObserveCheck(string(decision), elapsed.Seconds())
	s.metrics.ObserveReasons(infReq.PolicyHits)
	s.emitActivation(r, infReq, "", decision, nil)

	writeJSON(w, http.StatusOK, buildCheckResponse(result))
}

func (s *Server) handleNotesGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	clinic, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxNoteBytes)
	var reqBody generateRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeBodyError(w, err)
		return
	}

	providerName := s.clinicProviders[clinic.ID]
	if providerName == "" {
		providerName = s.defaultProvider
	}
	prov, ok := s.providers[providerName]
	if !ok {
		log.Printf("no provider %q for clinic %q", providerName, clinic.ID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorDetail{Message: "unknown provider for clinic", Type: "configuration_error"},
		})
		return
	}

	ctx := r.Context()
	infReq := normalizeRequest(clinic.ID, &reqBody)
	if strings.TrimSpace(infReq.UserText()) == "" {
		// Nothing user-authored to gate; forwarding would skip the check.
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorDetail{Message: "request carries no note text", Type: "invalid_request_error"},
		})
		return
	}

	preStart := time.Now()
	err := s.policy.BeforeModel(ctx, infReq)
	infReq.Timings.PreCheck = time.Since(preStart)

	if err != nil {
		s.metrics.ObserveCheck(string(activation.DecisionBlockedBefore), infReq.Timings.PreCheck.Seconds())
		s.metrics.ObserveReasons(infReq.PolicyHits)
		s.emitActivation(r, infReq, providerName, activation.DecisionBlockedBefore, err)

		var blockErr *policy.BlockError
		if errors.As(err, &blockErr) {
			resp := blockedResponse{
				Error:   "note contains sensitive identifiers",
				Reasons: make([]string, 0, len(blockErr.Result.Reasons)),
			}
			for _, reason := range blockErr.Result.Reasons {
				resp.Reasons = append(resp.Reasons, string(reason))
			}
			for _, m := range blockErr.Result.Matches {
				resp.Matches = append(resp.Matches, matchPayload{
					Reason:  string(m.Reason),
					Match:   m.Match,
					Message: m.Reason.Description(),
				})
			}
			writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error: errorDetail{Message: "blocked by policy", Type: "policy_error"},
		})
		return
	}

	provStart := time.Now()
	infResp, err := prov.ChatCompletion(ctx, infReq)
	infReq.Timings.Provider = time.Since(provStart)
	s.metrics.ObserveProviderLatency(infReq.Timings.Provider.Seconds())

	if err != nil {
		log.Printf("provider %q error: %v", providerName, err)
		s.metrics.ObserveCheck(string(activation.DecisionErrorProvider), infReq.Timings.PreCheck.Seconds())
		s.emitActivation(r, infReq, providerName, activation.DecisionErrorProvider, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: errorDetail{Message: "upstream provider error", Type: "provider_error"},
		})
		return
	}

	postStart := time.Now()
	// AfterModel warns on identifiers in the output, never blocks.
	if err := s.policy.AfterModel(ctx, infReq, infResp); err != nil {
		log.Printf("after-model check error: %v", err)
	}
	infReq.Timings.PostCheck = time.Since(postStart)

	decision := activation.DecisionAllow
	warnings := outputWarnings(infReq.PolicyHits)
	if len(warnings) > 0 {
		decision = activation.DecisionWarnedAfter
	}

	s.metrics.ObserveCheck(string(decision), infReq.Timings.PreCheck.Seconds())
	s.metrics.ObserveReasons(infReq.PolicyHits)
	s.emitActivation(r, infReq, providerName, decision, nil)

	writeJSON(w, http.StatusOK, generateResponse{
		ID:      "note-" + uuid.NewString(),
		Created: time.Now().Unix(),
		Model:   infReq.Model,
		Note:    infResp.Message.Content,
		Usage: usagePayload{
			PromptTokens:     infResp.Usage.PromptTokens,
			CompletionTokens: infResp.Usage.CompletionTokens,
			TotalTokens:      infResp.Usage.TotalTokens,
		},
		Warnings: warnings,
	})
}

// authenticate resolves the Bearer key to a clinic or writes a 401.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (auth.Clinic, bool) {
	apiKey, ok := parseBearerToken(r.Header.Get("Authorization"))
	if !ok || apiKey == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: errorDetail{Message: "invalid or missing API key", Type: "authentication_error"},
		})
		return auth.Clinic{}, false
	}
	clinic, ok := s.auth.Lookup(apiKey)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: errorDetail{Message: "invalid API key", Type: "authentication_error"},
		})
		return auth.Clinic{}, false
	}
	return clinic, true
}

func (s *Server) emitActivation(r *http.Request, req *inference.Request, providerName string, decision activation.Decision, cause error) {
	ev := activation.BuildEvent(activation.BuildParams{
		Request:      req,
		ProviderName: providerName,
		Decision:     decision,
		Level:        s.loggingLevel,
		Err:          cause,
	})
	activation.LogEvent(ev)
	s.emitter.Emit(r.Context(), ev)
}

func normalizeRequest(clinicID string, req *generateRequest) *inference.Request {
	msgs := make([]inference.Message, 0, len(req.Messages)+2)
	if req.Instruction != "" {
		msgs = append(msgs, inference.Message{Role: "system", Content: req.Instruction})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, inference.Message{Role: m.Role, Content: m.Content})
	}
	if req.Text != "" {
		msgs = append(msgs, inference.Message{Role: "user", Content: req.Text})
	}
	return &inference.Request{
		ClinicID: clinicID,
		Model:    req.Model,
		Messages: msgs,
		Timings:  &inference.Timings{},
	}
}

func buildCheckResponse(result identifier.DetectionResult) checkResponse {
	resp := checkResponse{
		HasIdentifiers: result.HasIdentifiers,
		Reasons:        []string{},
		Matches:        []matchPayload{},
	}
	for _, reason := range result.Reasons {
		resp.Reasons = append(resp.Reasons, string(reason))
	}
	for _, m := range result.Matches {
		resp.Matches = append(resp.Matches, matchPayload{
			Reason:  string(m.Reason),
			Match:   m.Match,
			Message: m.Reason.Description(),
		})
	}
	return resp
}

func outputWarnings(hits []string) []string {
	var out []string
	for _, h := range hits {
		if strings.HasPrefix(h, "output_") {
			out = append(out, h)
		}
	}
	return out
}

// parseBearerToken extracts the token from an Authorization: Bearer header.
func parseBearerToken(h string) (string, bool) {
	if h == "" {
		return "", false
	}
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeBodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: errorDetail{Message: "request body too large", Type: "invalid_request_error"},
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorDetail{Message: "invalid JSON body", Type: "invalid_request_error"},
	})
}
