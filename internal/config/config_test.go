// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"c19-miner/internal/detector"
	"c19-miner/internal/miner"
	"c19-miner/internal/resilience"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "c19-miner.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	// With no config file, should return defaults without error
	cfg := LoadConfigOrDefault("")
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Defaults.Format == "" {
		t.Error("expected default format to be set")
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	// A path that doesn't exist should fall back to defaults
	cfg := LoadConfigOrDefault("/nonexistent/path/c19-miner.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, ":::invalid yaml:::")

	// Should fall back to defaults, not panic
	cfg := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults on parse error)")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected default format=json, got %q", cfg.Defaults.Format)
	}
	if cfg.Matching.Window != nil {
		t.Errorf("expected no default window, got %d", *cfg.Matching.Window)
	}
	if !cfg.Matching.Escape {
		t.Error("expected escape=true by default")
	}
	if !cfg.Matching.Normalize.NFC {
		t.Error("expected nfc=true by default")
	}
	if len(cfg.Categories) != 5 {
		t.Errorf("expected 5 default categories, got %d", len(cfg.Categories))
	}
	if cfg.Batch.Workers < 1 || cfg.Batch.Workers > 8 {
		t.Errorf("expected 1..8 workers, got %d", cfg.Batch.Workers)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeConfig(t, `
defaults:
  format: yaml
matching:
  window: 5
  strategy: per_entry
batch:
  record_timeout: 2s
categories:
  - name: COVID-19
    kind: keyed
    negation: true
    reference_field: wikidata
    reference_url: "https://www.wikidata.org/wiki/{key}"
logging:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "yaml" {
		t.Errorf("expected format=yaml, got %q", cfg.Defaults.Format)
	}
	if cfg.Matching.Window == nil || *cfg.Matching.Window != 5 {
		t.Errorf("expected window=5, got %v", cfg.Matching.Window)
	}
	if cfg.Matching.Strategy != string(detector.StrategyPerEntry) {
		t.Errorf("expected strategy=per_entry, got %q", cfg.Matching.Strategy)
	}
	// Fields absent from the file keep their defaults
	if !cfg.Matching.Escape {
		t.Error("expected escape default to survive")
	}
	if !cfg.Defaults.EnablePreprocessors {
		t.Error("expected enable_preprocessors default to survive")
	}
	if cfg.Batch.RecordTimeout != 2*time.Second {
		t.Errorf("expected record_timeout=2s, got %s", cfg.Batch.RecordTimeout)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Name != miner.CategoryCovid19 {
		t.Errorf("expected categories to be replaced, got %+v", cfg.Categories)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.GetProfile("legacy") == nil {
		t.Error("expected built-in profiles to survive")
	}
}

func TestLoadConfig_ExplicitFalse(t *testing.T) {
	configPath := writeConfig(t, `
matching:
  window: 6
  escape: false
  normalize:
    nfc: false
    tokenize: true
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Matching.Escape {
		t.Error("expected escape=false")
	}
	if cfg.Matching.Normalize.NFC || !cfg.Matching.Normalize.Tokenize {
		t.Errorf("unexpected normalize options %+v", cfg.Matching.Normalize)
	}
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := map[string]string{
		"negative window":    "matching:\n  window: -1\n",
		"unknown strategy":   "matching:\n  strategy: fastest\n",
		"duplicate":          "categories:\n  - {name: a, kind: flat, vocabulary: a.txt}\n  - {name: a, kind: flat, vocabulary: a.txt}\n",
		"unknown kind":       "categories:\n  - {name: a, kind: tree, vocabulary: a.txt}\n",
		"log format":         "logging:\n  format: xml\n",
		"profile strategy":   "profiles:\n  fast:\n    strategy: fastest\n",
		"negative workers":   "batch:\n  workers: -2\n",
		"negative top":       "report:\n  top_n: -1\n",
		"missing vocabulary": "categories:\n  - {name: fármacos, kind: keyed}\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_ApplyProfile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cfg.ApplyProfile("legacy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Matching.Window == nil || *cfg.Matching.Window != 6 {
		t.Errorf("expected window=6, got %v", cfg.Matching.Window)
	}
	if cfg.Matching.Escape {
		t.Error("expected legacy profile to disable escaping")
	}
	if cfg.Matching.Strategy != string(detector.StrategyPerEntry) {
		t.Errorf("expected per_entry, got %q", cfg.Matching.Strategy)
	}

	err = cfg.ApplyProfile("missing")
	if resilience.TypeOf(err) != resilience.ErrorTypeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}

	profiles := cfg.ListProfiles()
	if len(profiles) != 2 || profiles[0] != "legacy" || profiles[1] != "urgencias" {
		t.Errorf("unexpected profiles %v", profiles)
	}
}

func TestConfig_EngineOptionsRequireWindow(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := cfg.EngineOptions(); resilience.TypeOf(err) != resilience.ErrorTypeInvalidInput {
		t.Errorf("expected invalid input without a window, got %v", err)
	}

	window := 5
	cfg.Matching.Window = &window
	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Detector.Window != 5 || !opts.Detector.Escape || opts.Detector.Strategy != detector.StrategyAlternation {
		t.Errorf("unexpected options %+v", opts.Detector)
	}
}

func TestConfig_BuildEngine(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "matching:\n  window: 5\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	engine, err := cfg.BuildEngine(miner.Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := miner.New("paciente con sospecha de covid-19 el día de hoy", engine)
	if err := m.CheckCovid19(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, _ := m.Clues().Category(miner.CategoryCovid19)
	if got := result.Keys(); len(got) != 1 || got[0] != "Q84263196" {
		t.Errorf("unexpected keys %v", got)
	}
}

func TestFindConfigFile_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("C19MINER_CONFIG_DIR", "")

	if got := FindConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	if err := os.WriteFile(".c19-miner.yaml", []byte("matching:\n  window: 5\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != ".c19-miner.yaml" {
		t.Errorf("expected .c19-miner.yaml, got %q", got)
	}
}

func TestFindConfigFile_ConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("C19MINER_CONFIG_DIR", filepath.Join(dir, "etc"))

	if err := os.MkdirAll(filepath.Join(dir, "etc"), 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "etc", "config.yml")
	if err := os.WriteFile(want, []byte("matching:\n  window: 4\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != want {
		t.Errorf("expected %s, got %q", want, got)
	}
}

func TestLoadConfig_ShippedExample(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "examples", "c19-miner.yaml"))
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if cfg.Matching.Window == nil || *cfg.Matching.Window != 5 {
		t.Errorf("expected window 5, got %v", cfg.Matching.Window)
	}
	if cfg.Batch.RecordTimeout != 30*time.Second {
		t.Errorf("expected 30s record timeout, got %v", cfg.Batch.RecordTimeout)
	}
	if p := cfg.GetProfile("triage"); p == nil || p.Format != "text" {
		t.Errorf("expected triage profile, got %+v", p)
	}
	if cfg.GetProfile("urgencias") == nil {
		t.Error("built-in profiles must survive the file's profiles")
	}
	if _, err := cfg.BuildEngine(miner.Hooks{}); err != nil {
		t.Errorf("engine from example config: %v", err)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
