package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultUsesContinueHomeRoot(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.IndexRoot == "" {
		t.Fatalf("expected a non-empty default IndexRoot")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected default log config: %+v", cfg.Log)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist.yaml")
	cfg, err := Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultProvider != "default" {
		t.Fatalf("DefaultProvider = %q, want %q", cfg.DefaultProvider, "default")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsidx.yaml")
	content := "index_root: /tmp/custom-root\ndefault_provider: acme\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IndexRoot != "/tmp/custom-root" {
		t.Fatalf("IndexRoot = %q, want /tmp/custom-root", cfg.IndexRoot)
	}
	if cfg.DefaultProvider != "acme" {
		t.Fatalf("DefaultProvider = %q, want acme", cfg.DefaultProvider)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverridesFileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsidx.yaml")
	if err := os.WriteFile(path, []byte("default_provider: from-file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WSIDX_PROVIDER", "from-env")
	t.Setenv("WSIDX_EXTRA_IGNORE", "*.bin,*.cache")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultProvider != "from-env" {
		t.Fatalf("DefaultProvider = %q, want from-env (env must beat file)", cfg.DefaultProvider)
	}
	if len(cfg.ExtraIgnoreGlobs) != 2 || cfg.ExtraIgnoreGlobs[0] != "*.bin" {
		t.Fatalf("ExtraIgnoreGlobs = %v, want [*.bin *.cache]", cfg.ExtraIgnoreGlobs)
	}
}
