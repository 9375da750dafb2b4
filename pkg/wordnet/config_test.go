package wordnet

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wordnet.yaml")
	content := "path: /var/lib/wordnet.db\nbatch_size: 64\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Path != "/var/lib/wordnet.db" || cfg.BatchSize != 64 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AllowConcurrent {
		t.Fatalf("unset field should keep its default")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wordnet.yaml")
	if err := os.WriteFile(path, []byte("path: x.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BatchSize != DefaultConfig().BatchSize {
		t.Fatalf("default batch size not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
