package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the note tool configuration.
type Config struct {
	Server          ServerConfig              `yaml:"server"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
	DefaultProvider string                    `yaml:"default_provider"`
	Clinics         []ClinicConfig            `yaml:"clinics"`
	Logging         LoggingConfig             `yaml:"logging"`
	Policy          PolicyConfig              `yaml:"policy"`
	Activation      ActivationConfig          `yaml:"activation"`
	GuardModel      GuardModelConfig          `yaml:"guard_model"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
	// MaxNoteBytes bounds the request body; the detector itself has no
	// length limit, so the ceiling lives at the interface.
	MaxNoteBytes int64 `yaml:"max_note_bytes"`
}

type ProviderConfig struct {
	Type      string `yaml:"type"`        // e.g. "openai"
	BaseURL   string `yaml:"base_url"`    // e.g. "https://api.openai.com/v1"
	APIKeyEnv string `yaml:"api_key_env"` // e.g. "OPENAI_API_KEY"
	Model     string `yaml:"model"`       // default model name
}

type ClinicConfig struct {
	ID       string   `yaml:"id"`
	Provider string   `yaml:"provider"` // provider name from Providers map
	APIKeys  []string `yaml:"api_keys"`
}

type LoggingConfig struct {
	// ActivationLevel controls how much of the note appears in activation
	// events: "metadata" (reasons only) or "full" (redacted preview).
	ActivationLevel string `yaml:"activation_level"`
}

type PolicyConfig struct {
	Identifiers   string `yaml:"identifiers"`    // block | log | ignore
	ResponseCheck bool   `yaml:"response_check"` // re-run detector on model output
}

type ActivationConfig struct {
	FilePath   string `yaml:"file_path"`   // JSONL sink, empty disables
	WebhookURL string `yaml:"webhook_url"` // HTTP sink, empty disables
}

type GuardModelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BundleDir string `yaml:"bundle_dir"`
	SeqLen    int    `yaml:"seq_len"`
}

// Load reads configuration from a YAML file. A missing file yields the
// default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{},
		Clinics:   []ClinicConfig{},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxNoteBytes <= 0 {
		cfg.Server.MaxNoteBytes = 64 * 1024
	}

	// With exactly one provider configured, it is the default.
	if cfg.DefaultProvider == "" && len(cfg.Providers) == 1 {
		for name := range cfg.Providers {
			cfg.DefaultProvider = name
		}
	}

	if cfg.Logging.ActivationLevel == "" {
		cfg.Logging.ActivationLevel = "metadata"
	}
	if cfg.Policy.Identifiers == "" {
		cfg.Policy.Identifiers = "block"
	}
	if cfg.GuardModel.SeqLen <= 0 {
		cfg.GuardModel.SeqLen = 256
	}
}
