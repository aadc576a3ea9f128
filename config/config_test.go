package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Overlay.Vector != 0x3F {
		t.Errorf("Expected Overlay.Vector=0x3F, got %#x", cfg.Overlay.Vector)
	}
	if cfg.Overlay.MaxPages != 500 {
		t.Errorf("Expected Overlay.MaxPages=500, got %d", cfg.Overlay.MaxPages)
	}
	if cfg.Overlay.MaxHeaderParagraphs != 100 {
		t.Errorf("Expected Overlay.MaxHeaderParagraphs=100, got %d", cfg.Overlay.MaxHeaderParagraphs)
	}
	if cfg.Strings.MinRunLength != 4 {
		t.Errorf("Expected Strings.MinRunLength=4, got %d", cfg.Strings.MinRunLength)
	}
	if len(cfg.Strings.Categories) == 0 {
		t.Error("Expected a non-empty default category table")
	}
	if cfg.Report.TopN != 10 {
		t.Errorf("Expected Report.TopN=10, got %d", cfg.Report.TopN)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load of a missing file returned an error: %v", err)
	}
	want := DefaultConfig()
	if cfg.Overlay != want.Overlay {
		t.Errorf("missing-file config = %+v, want defaults %+v", cfg.Overlay, want.Overlay)
	}
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned an error: %v", err)
	}
	if cfg.Overlay.Vector != 0x3F {
		t.Errorf("Overlay.Vector = %#x, want default 0x3F", cfg.Overlay.Vector)
	}
}

func TestLoadOverridesOverlayVector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recomp.toml")
	contents := "[overlay]\nvector = 0x21\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if cfg.Overlay.Vector != 0x21 {
		t.Errorf("Overlay.Vector = %#x, want 0x21 (overridden)", cfg.Overlay.Vector)
	}
}

func TestLoadMalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recomp.toml")
	if err := os.WriteFile(path, []byte("this is not valid toml [[["), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error loading a malformed config file, got nil")
	}
}
