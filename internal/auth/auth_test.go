package auth

import (
	"testing"

	"github.com/VivekBose50/ClinicalNoteTool/internal/config"
)

func TestNewFromConfigAndLookup(t *testing.T) {
	cfg := &config.Config{
		Clinics: []config.ClinicConfig{
			{ID: "clinic-a", Provider: "openai", APIKeys: []string{"key-a1", "key-a2"}},
			{ID: "clinic-b", APIKeys: []string{"key-b", ""}},
		},
	}

	a, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	c, ok := a.Lookup("key-a2")
	if !ok || c.ID != "clinic-a" || c.Provider != "openai" {
		t.Fatalf("Lookup(key-a2) = %+v, %v", c, ok)
	}

	if _, ok := a.Lookup("key-b"); !ok {
		t.Fatal("expected key-b to resolve")
	}
	if _, ok := a.Lookup(""); ok {
		t.Fatal("empty key must not resolve")
	}
	if _, ok := a.Lookup("unknown"); ok {
		t.Fatal("unknown key must not resolve")
	}
}

func TestNewFromConfigRejectsDuplicateKey(t *testing.T) {
	cfg := &config.Config{
		Clinics: []config.ClinicConfig{
			{ID: "clinic-a", APIKeys: []string{"shared"}},
			{ID: "clinic-b", APIKeys: []string{"shared"}},
		},
	}

	if _, err := NewFromConfig(cfg); err == nil {
		t.Fatal("expected error for duplicate api key")
	}
}

func TestNewFromConfigRejectsEmptyID(t *testing.T) {
	cfg := &config.Config{
		Clinics: []config.ClinicConfig{{ID: "", APIKeys: []string{"k"}}},
	}
	if _, err := NewFromConfig(cfg); err == nil {
		t.Fatal("expected error for empty clinic id")
	}
}

func TestLookupOnNilAuth(t *testing.T) {
	var a *Auth
	if _, ok := a.Lookup("k"); ok {
		t.Fatal("nil Auth must not resolve keys")
	}
}
