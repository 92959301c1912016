package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/binderdb/binder/pkg/config"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Normalize()

	if cfg.StoragePath != "binder-data" {
		t.Errorf("expected default storage path, got %q", cfg.StoragePath)
	}
	if cfg.DataCapacityPerSegment != config.DefaultDataCapacity {
		t.Errorf("expected default data capacity, got %d", cfg.DataCapacityPerSegment)
	}
	if cfg.MaxDocumentsPerSegment != config.DefaultMaxDocuments {
		t.Errorf("expected default max documents, got %d", cfg.MaxDocumentsPerSegment)
	}
	if cfg.Backend != config.BackendFile {
		t.Errorf("expected default backend %q, got %q", config.BackendFile, cfg.Backend)
	}
}

func TestNormalizeRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{Backend: "carrier-pigeon"}
	cfg.Normalize()

	if cfg.Backend != config.BackendFile {
		t.Errorf("expected fallback to %q, got %q", config.BackendFile, cfg.Backend)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binder.yaml")

	yamlData := `
storage_path: /tmp/docs
data_capacity_per_segment: 2000
max_documents_per_segment: 4
backend: mmap
log_level: warn
`
	if err := os.WriteFile(path, []byte(yamlData), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, rest, err := config.LoadConfig([]string{"-config", path, "put"})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.StoragePath != "/tmp/docs" {
		t.Errorf("storage path not loaded, got %q", cfg.StoragePath)
	}
	if cfg.DataCapacityPerSegment != 2000 {
		t.Errorf("data capacity not loaded, got %d", cfg.DataCapacityPerSegment)
	}
	if cfg.MaxDocumentsPerSegment != 4 {
		t.Errorf("max documents not loaded, got %d", cfg.MaxDocumentsPerSegment)
	}
	if cfg.Backend != config.BackendMmap {
		t.Errorf("backend not loaded, got %q", cfg.Backend)
	}
	if len(rest) != 1 || rest[0] != "put" {
		t.Errorf("expected remaining args [put], got %v", rest)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binder.yaml")

	if err := os.WriteFile(path, []byte("backend: mmap\nmax_documents_per_segment: 8\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := config.LoadConfig([]string{"-config", path, "-backend", "file"})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Backend != config.BackendFile {
		t.Errorf("explicit flag should win over file, got %q", cfg.Backend)
	}
	if cfg.MaxDocumentsPerSegment != 8 {
		t.Errorf("untouched file value should survive, got %d", cfg.MaxDocumentsPerSegment)
	}
}
