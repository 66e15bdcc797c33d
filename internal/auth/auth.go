package auth

import (
	"fmt"

	"github.com/VivekBose50/ClinicalNoteTool/internal/config"
)

// Clinic is the runtime representation of a clinic with its provider binding.
type Clinic struct {
	ID       string
	Provider string
}

// Auth holds mappings from API keys to clinics.
type Auth struct {
	apiKeyToClinic map[string]Clinic
}

// NewFromConfig builds an Auth instance from the loaded config.
func NewFromConfig(cfg *config.Config) (*Auth, error) {
	m := make(map[string]Clinic)

	for _, c := range cfg.Clinics {
		if c.ID == "" {
			return nil, fmt.Errorf("clinic with empty id in config")
		}
		clinic := Clinic{
			ID:       c.ID,
			Provider: c.Provider,
		}
		for _, key := range c.APIKeys {
			if key == "" {
				continue
			}
			if _, exists := m[key]; exists {
				return nil, fmt.Errorf("api key %q is assigned to multiple clinics", key)
			}
			m[key] = clinic
		}
	}

	return &Auth{
		apiKeyToClinic: m,
	}, nil
}

// Lookup returns the clinic for a given API key, if any.
func (a *Auth) Lookup(apiKey string) (Clinic, bool) {
	if a == nil {
		return Clinic{}, false
	}
	c, ok := a.apiKeyToClinic[apiKey]
	return c, ok
}
