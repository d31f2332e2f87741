package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected Default(), got %+v", cfg)
	}
}

func TestLoadOverlaysFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picgc.toml")
	body := []byte(`
backend = "bitmap"
page_units = 256
stress = true
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "bitmap" || cfg.PageUnits != 256 || !cfg.Stress {
		t.Fatalf("unexpected overlay result: %+v", cfg)
	}
	// Fields absent from the file keep their defaults.
	if cfg.GrowthNumerator != 7 || cfg.GrowthDenominator != 8 {
		t.Fatalf("expected default growth threshold to survive overlay, got %d/%d", cfg.GrowthNumerator, cfg.GrowthDenominator)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("this is not [valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestHeapOptionsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Backend = "nonsense"
	if _, err := cfg.HeapOptions(); err == nil {
		t.Fatalf("expected an error for an unknown backend")
	}
}
