package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/VivekBose50/ClinicalNoteTool/internal/activation"
	"github.com/VivekBose50/ClinicalNoteTool/internal/auth"
	"github.com/VivekBose50/ClinicalNoteTool/internal/config"
	"github.com/VivekBose50/ClinicalNoteTool/internal/guardmodel"
	"github.com/VivekBose50/ClinicalNoteTool/internal/metrics"
	"github.com/VivekBose50/ClinicalNoteTool/internal/policy"
	"github.com/VivekBose50/ClinicalNoteTool/internal/provider"
)

// Server wraps the HTTP components of the note gate.
type Server struct {
	mux             *http.ServeMux
	cfg             *config.Config
	auth            *auth.Auth
	policy          policy.Engine
	providers       map[string]provider.Provider // name -> provider
	defaultProvider string
	clinicProviders map[string]string // clinic ID -> provider name
	emitter         *activation.Emitter
	loggingLevel    string
	metrics         *metrics.GateMetrics
	tracer          trace.Tracer
	guard           *guardmodel.Model
}

// New creates a note gate server with all routes registered.
func New(cfg *config.Config) (*Server, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	authz, err := auth.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build auth: %w", err)
	}

	// Optional advisory guard model. Load failures never stop the gate;
	// the regex detector is authoritative either way.
	var guard *guardmodel.Model
	var scorer policy.Scorer
	if cfg.GuardModel.Enabled {
		guard, err = guardmodel.Load(cfg.GuardModel.BundleDir, cfg.GuardModel.SeqLen)
		if err != nil {
			log.Printf("guard model unavailable: %v; continuing regex-only", err)
			guard = nil
		} else {
			scorer = guard
		}
	}

	tracer := otel.Tracer("notetool")
	pol := policy.NewBasic(cfg.Policy, scorer, tracer)

	provs, provErr := buildProviderRegistry(cfg)
	if provErr != nil {
		log.Printf("warning: failed to build providers from config: %v", provErr)
		log.Printf("falling back to fake provider")
		provs = map[string]provider.Provider{
			"fake": provider.NewFake("generated note unavailable: no upstream provider configured"),
		}
		cfg.DefaultProvider = "fake"
	}

	clinicProviders := make(map[string]string)
	for _, c := range cfg.Clinics {
		providerName := c.Provider
		if providerName == "" {
			providerName = cfg.DefaultProvider
		}
		clinicProviders[c.ID] = providerName
	}

	emitter, err := buildEmitter(cfg)
	if err != nil {
		return nil, fmt.Errorf("build activation emitter: %w", err)
	}

	s := &Server{
		mux:             http.NewServeMux(),
		cfg:             cfg,
		auth:            authz,
		policy:          pol,
		providers:       provs,
		defaultProvider: cfg.DefaultProvider,
		clinicProviders: clinicProviders,
		emitter:         emitter,
		loggingLevel:    strings.ToLower(cfg.Logging.ActivationLevel),
		metrics:         metrics.NewGateMetrics(prometheus.DefaultRegisterer),
		tracer:          tracer,
		guard:           guard,
	}

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/v1/notes/check", s.handleNotesCheck)
	s.mux.HandleFunc("/v1/notes/generate", s.handleNotesGenerate)

	return s, nil
}

// newForTest builds a server without touching the default Prometheus
// registry or real providers.
func newForTest(cfg *config.Config, provs map[string]provider.Provider) (*Server, error) {
	authz, err := auth.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer("notetool-test")
	clinicProviders := make(map[string]string)
	for _, c := range cfg.Clinics {
		providerName := c.Provider
		if providerName == "" {
			providerName = cfg.DefaultProvider
		}
		clinicProviders[c.ID] = providerName
	}

	s := &Server{
		mux:             http.NewServeMux(),
		cfg:             cfg,
		auth:            authz,
		policy:          policy.NewBasic(cfg.Policy, nil, tracer),
		providers:       provs,
		defaultProvider: cfg.DefaultProvider,
		clinicProviders: clinicProviders,
		emitter:         activation.NewEmitter(activation.EmitterConfig{QueueSize: 16}, nil),
		loggingLevel:    strings.ToLower(cfg.Logging.ActivationLevel),
		metrics:         metrics.NewGateMetrics(prometheus.NewRegistry()),
		tracer:          tracer,
	}

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/v1/notes/check", s.handleNotesCheck)
	s.mux.HandleFunc("/v1/notes/generate", s.handleNotesGenerate)

	return s, nil
}

// Handler exposes the mux, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	log.Printf("note gate listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Close flushes activation sinks and releases the guard model.
func (s *Server) Close(ctx context.Context) {
	if s.emitter != nil {
		s.emitter.Close(ctx)
	}
	if s.guard != nil {
		s.guard.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

// buildProviderRegistry constructs all configured providers.
func buildProviderRegistry(cfg *config.Config) (map[string]provider.Provider, error) {
	if len(cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}

	reg := make(map[string]provider.Provider, len(cfg.Providers))
	for name, pcfg := range cfg.Providers {
		switch pcfg.Type {
		case "openai":
			apiKey := os.Getenv(pcfg.APIKeyEnv)
			if apiKey == "" {
				return nil, fmt.Errorf("provider %q: environment variable %s is empty", name, pcfg.APIKeyEnv)
			}
			reg[name] = provider.NewOpenAI(pcfg.BaseURL, apiKey, 60*time.Second, 0)
		default:
			return nil, fmt.Errorf("provider %q: unsupported type %q", name, pcfg.Type)
		}
	}

	if cfg.DefaultProvider == "" {
		return nil, errors.New("default_provider is empty")
	}
	if _, ok := reg[cfg.DefaultProvider]; !ok {
		return nil, fmt.Errorf("default_provider %q not found in providers map", cfg.DefaultProvider)
	}

	return reg, nil
}

func buildEmitter(cfg *config.Config) (*activation.Emitter, error) {
	var sinks []activation.Sink

	if path := strings.TrimSpace(cfg.Activation.FilePath); path != "" {
		sink, err := activation.NewFileSink(path)
		if err != nil {
			return nil, fmt.Errorf("file sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if url := strings.TrimSpace(cfg.Activation.WebhookURL); url != "" {
		sink, err := activation.NewWebhookSink(url, nil, 2*time.Second)
		if err != nil {
			return nil, fmt.Errorf("webhook sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	return activation.NewEmitter(activation.EmitterConfig{}, sinks), nil
}
