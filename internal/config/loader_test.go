package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("LoadFromFile(\"\"): %v", err)
	}
	if cfg.ConfidenceThreshold != DefaultConfig().ConfidenceThreshold {
		t.Errorf("ConfidenceThreshold = %v, want default", cfg.ConfidenceThreshold)
	}
	if cfg.DataDir == "" {
		t.Error("expected finishLoad to resolve a non-empty DataDir")
	}
}

func TestLoadFromFile_ReadsFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"workers": 8, "severity_floor": "HIGH"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.SeverityFloor != "HIGH" {
		t.Errorf("SeverityFloor = %q, want HIGH", cfg.SeverityFloor)
	}
}

func TestLoadFromFile_EmptyFileIsDefaultsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.ConfidenceThreshold != DefaultConfig().ConfidenceThreshold {
		t.Errorf("ConfidenceThreshold = %v, want default", cfg.ConfidenceThreshold)
	}
}

func TestSaveConfig_RoundTripsThroughLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.RetentionCeiling = 42
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.RetentionCeiling != 42 {
		t.Errorf("RetentionCeiling = %d, want 42", loaded.RetentionCeiling)
	}
}

func TestLoadOrCreateConfig_CreatesOnFirstCall(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadOrCreateConfig(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateConfig: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}

	if _, err := os.Stat(GetConfigPath(dir)); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}

	again, err := LoadOrCreateConfig(dir)
	if err != nil {
		t.Fatalf("second LoadOrCreateConfig: %v", err)
	}
	if again.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", again.DataDir, dir)
	}
}
