package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VivekBose50/ClinicalNoteTool/internal/config"
	"github.com/VivekBose50/ClinicalNoteTool/internal/provider"
)

const testAPIKey = "test-key"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:         ":0",
			MaxNoteBytes: 64 * 1024,
		},
		DefaultProvider: "fake",
		Clinics: []config.ClinicConfig{
			{ID: "clinic-a", APIKeys: []string{testAPIKey}},
		},
		Logging: config.LoggingConfig{ActivationLevel: "metadata"},
		Policy:  config.PolicyConfig{Identifiers: "block"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, prov provider.Provider) *httptest.Server {
	t.Helper()
	s, err := newForTest(cfg, map[string]provider.Provider{"fake": prov})
	if err != nil {
		t.Fatalf("newForTest: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, apiKey string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCheckRequiresAuth(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("ok"))

	resp := postJSON(t, srv.URL+"/v1/notes/check", "", checkRequest{Text: "hello"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/v1/notes/check", "wrong-key", checkRequest{Text: "hello"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCheckCleanNote(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("ok"))

	resp := postJSON(t, srv.URL+"/v1/notes/check", testAPIKey, checkRequest{
		Text: "The patient complains of lower back pain radiating to the left leg.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.HasIdentifiers {
		t.Fatalf("clean note flagged: %+v", body)
	}
	if len(body.Reasons) != 0 || len(body.Matches) != 0 {
		t.Fatalf("expected empty reasons/matches, got %+v", body)
	}
}

func TestCheckFlagsIdentifiers(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("ok"))

	resp := postJSON(t, srv.URL+"/v1/notes/check", testAPIKey, checkRequest{
		Text: "Pnr 19850412-1234, kontakta anna.svensson@vgregion.se.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.HasIdentifiers {
		t.Fatal("expected identifiers")
	}

	wantReasons := map[string]bool{"swedish_personal_number": false, "email": false}
	for _, r := range body.Reasons {
		if _, ok := wantReasons[r]; ok {
			wantReasons[r] = true
		}
	}
	for r, seen := range wantReasons {
		if !seen {
			t.Errorf("missing reason %q in %+v", r, body.Reasons)
		}
	}
	for _, m := range body.Matches {
		if m.Message == "" {
			t.Errorf("match %+v missing message", m)
		}
	}
}

func TestGenerateBlocksOnIdentifiers(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("should not be called"))

	resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, generateRequest{
		Model: "gpt-4.1-mini",
		Messages: []noteMessage{
			{Role: "user", Content: "Skriv anteckning för pnr 19850412-1234."},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body blockedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Reasons) == 0 || body.Reasons[0] != "swedish_personal_number" {
		t.Fatalf("reasons = %+v", body.Reasons)
	}
	if len(body.Matches) == 0 || body.Matches[0].Match != "19850412-1234" {
		t.Fatalf("matches = %+v", body.Matches)
	}
}

func TestGenerateTextFieldBlocked(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("should not be called"))

	resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, generateRequest{
		Text: "Pnr 19850412-1234, söker för hosta.",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body blockedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Reasons) == 0 || body.Reasons[0] != "swedish_personal_number" {
		t.Fatalf("reasons = %+v", body.Reasons)
	}
	if len(body.Matches) == 0 || body.Matches[0].Match != "19850412-1234" {
		t.Fatalf("matches = %+v", body.Matches)
	}
}

func TestGenerateTextFieldClean(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("Patient seen for routine follow-up."))

	// The instruction becomes a system message: it is ours, not the
	// clinician's, and must not be gated.
	resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, generateRequest{
		Text:        "Patient follow-up, stable hypertension.",
		Instruction: "You are a scribe. Example reference id: 19850412-1234.",
		Model:       "gpt-4.1-mini",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Note != "Patient seen for routine follow-up." {
		t.Fatalf("note = %q", body.Note)
	}
}

func TestGenerateRejectsMissingNoteText(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("should not be called"))

	bodies := map[string]generateRequest{
		"empty body":       {Model: "gpt-4.1-mini"},
		"instruction only": {Instruction: "Write a structured note.", Model: "gpt-4.1-mini"},
		"system message only": {Model: "gpt-4.1-mini", Messages: []noteMessage{
			{Role: "system", Content: "Write a structured note."},
		}},
	}
	for name, reqBody := range bodies {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, reqBody)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGenerateCleanNote(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("Patient seen for routine follow-up."))

	resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, generateRequest{
		Model: "gpt-4.1-mini",
		Messages: []noteMessage{
			{Role: "user", Content: "Patient follow-up, stable hypertension."},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Note != "Patient seen for routine follow-up." {
		t.Fatalf("note = %q", body.Note)
	}
	if !strings.HasPrefix(body.ID, "note-") {
		t.Fatalf("id = %q", body.ID)
	}
	if body.Usage.TotalTokens == 0 {
		t.Fatal("expected usage")
	}
	if len(body.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", body.Warnings)
	}
}

func TestGenerateWarnsOnOutputIdentifiers(t *testing.T) {
	cfg := testConfig()
	cfg.Policy.ResponseCheck = true
	srv := newTestServer(t, cfg, provider.NewFake("Reach the clinic at vard@example.com."))

	resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, generateRequest{
		Model: "gpt-4.1-mini",
		Messages: []noteMessage{
			{Role: "user", Content: "Summarize the visit."},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, wn := range body.Warnings {
		if wn == "output_email" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected output_email warning, got %+v", body.Warnings)
	}
}

func TestGenerateProviderError(t *testing.T) {
	prov := &provider.FakeProvider{Error: errors.New("upstream down")}
	srv := newTestServer(t, testConfig(), prov)

	resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, generateRequest{
		Model: "gpt-4.1-mini",
		Messages: []noteMessage{
			{Role: "user", Content: "Patient follow-up."},
		},
	})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestCheckRejectsOversizedBody(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxNoteBytes = 128
	srv := newTestServer(t, cfg, provider.NewFake("ok"))

	resp := postJSON(t, srv.URL+"/v1/notes/check", testAPIKey, checkRequest{
		Text: strings.Repeat("a", 1024),
	})
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
}

func TestCheckRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("ok"))

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/notes/check", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("ok"))

	resp, err := http.Get(srv.URL + "/v1/notes/check")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testConfig(), provider.NewFake("ok"))

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestNewFallsBackToFakeProviderWithoutUpstream(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultProvider = ""

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New with no providers should run degraded, got: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp := postJSON(t, srv.URL+"/v1/notes/generate", testAPIKey, generateRequest{
		Text: "Patient follow-up, stable hypertension.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body.Note, "no upstream provider") {
		t.Fatalf("note = %q, want canned fallback text", body.Note)
	}
}

func TestParseBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseBearerToken(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseBearerToken(%q) = %q, %v; want %q, %v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}
