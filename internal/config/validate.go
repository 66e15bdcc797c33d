package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	// Zero providers is a valid degraded setup: the server falls back to a
	// local canned provider so the detection endpoints stay usable without
	// an upstream. Provider cross-checks only apply when providers exist.
	if len(cfg.Providers) > 0 {
		if strings.TrimSpace(cfg.DefaultProvider) == "" {
			return errors.New("default_provider must be set")
		}
		if _, ok := cfg.Providers[cfg.DefaultProvider]; !ok {
			return fmt.Errorf("default_provider %q not found in providers", cfg.DefaultProvider)
		}
		for name, p := range cfg.Providers {
			if err := validateProviderConfig(name, p); err != nil {
				return err
			}
		}
	}

	for _, c := range cfg.Clinics {
		if strings.TrimSpace(c.ID) == "" {
			return errors.New("clinic id must be set")
		}
		if len(cfg.Providers) == 0 {
			continue
		}
		providerName := c.Provider
		if providerName == "" {
			providerName = cfg.DefaultProvider
		}
		if _, ok := cfg.Providers[providerName]; !ok {
			return fmt.Errorf("clinic %q references unknown provider %q", c.ID, providerName)
		}
	}

	switch cfg.Logging.ActivationLevel {
	case "metadata", "full":
	default:
		return fmt.Errorf("logging.activation_level %q must be metadata or full", cfg.Logging.ActivationLevel)
	}

	switch cfg.Policy.Identifiers {
	case "block", "log", "ignore":
	default:
		return fmt.Errorf("policy.identifiers %q must be block, log or ignore", cfg.Policy.Identifiers)
	}

	if cfg.Activation.WebhookURL != "" {
		u, err := url.Parse(cfg.Activation.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("activation.webhook_url %q is not a valid URL", cfg.Activation.WebhookURL)
		}
	}

	if cfg.GuardModel.Enabled && strings.TrimSpace(cfg.GuardModel.BundleDir) == "" {
		return errors.New("guard_model.bundle_dir must be set when guard_model.enabled is true")
	}

	return nil
}

func validateProviderConfig(name string, p ProviderConfig) error {
	if p.Type != "openai" {
		return fmt.Errorf("provider %q has unsupported type %q", name, p.Type)
	}
	if strings.TrimSpace(p.BaseURL) != "" {
		u, err := url.Parse(p.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("provider %q base_url %q is not a valid URL", name, p.BaseURL)
		}
	}
	return nil
}
