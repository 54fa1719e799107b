package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nzsl.json")

	content := `{
		"minifyWhitespace": false,
		"treeShaking": true,
		"usedStages": ["frag"],
		"keepNames": ["foo", "bar"]
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.MinifyWhitespace == nil || *cfg.MinifyWhitespace != false {
		t.Errorf("MinifyWhitespace: got %v, want false", cfg.MinifyWhitespace)
	}

	if cfg.TreeShaking == nil || *cfg.TreeShaking != true {
		t.Errorf("TreeShaking: got %v, want true", cfg.TreeShaking)
	}

	if len(cfg.UsedStages) != 1 || cfg.UsedStages[0] != "frag" {
		t.Errorf("UsedStages: got %v, want [frag]", cfg.UsedStages)
	}

	if len(cfg.KeepNames) != 2 || cfg.KeepNames[0] != "foo" || cfg.KeepNames[1] != "bar" {
		t.Errorf("KeepNames: got %v, want [foo bar]", cfg.KeepNames)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "project", "shaders")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}

	configPath := filepath.Join(tmpDir, "project", "nzsl.json")
	content := `{"treeShaking": true}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(subDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config, got nil")
	}

	if foundPath != configPath {
		t.Errorf("found config at %s, expected %s", foundPath, configPath)
	}

	if cfg.TreeShaking == nil || *cfg.TreeShaking != true {
		t.Errorf("TreeShaking: got %v, want true", cfg.TreeShaking)
	}
}

func TestLoadNoConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, path, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg != nil {
		t.Errorf("expected nil config, got %v", cfg)
	}

	if path != "" {
		t.Errorf("expected empty path, got %s", path)
	}
}

func TestToOptions(t *testing.T) {
	trueVal := true
	falseVal := false

	cfg := &Config{
		TreeShaking: &trueVal,
		UsedStages:  []string{"frag", "vert"},
		KeepNames:   []string{"keep1", "keep2"},
	}

	opts := cfg.ToOptions()

	if opts.TreeShaking != true {
		t.Errorf("TreeShaking: got %v, want true", opts.TreeShaking)
	}

	if len(opts.UsedStages) != 2 {
		t.Errorf("UsedStages: got %v, want 2 items", opts.UsedStages)
	}

	if len(opts.KeepNames) != 2 {
		t.Errorf("KeepNames: got %v, want 2 items", opts.KeepNames)
	}

	printCfg := &Config{MinifyWhitespace: &falseVal}
	printOpts := printCfg.PrintOptions()
	if printOpts.MinifyWhitespace != false {
		t.Errorf("MinifyWhitespace: got %v, want false", printOpts.MinifyWhitespace)
	}
}

func TestMerge(t *testing.T) {
	trueVal := true
	falseVal := false

	// Config disables tree shaking
	cfg := &Config{
		TreeShaking: &falseVal,
	}

	// CLI overrides to true
	cliOpts := MergeOptions{
		TreeShaking: &trueVal,
	}

	opts := cfg.Merge(cliOpts)

	if opts.TreeShaking != true {
		t.Errorf("TreeShaking: got %v, want true (CLI override)", opts.TreeShaking)
	}
}

func TestMergeNoTreeShaking(t *testing.T) {
	trueVal := true

	cfg := &Config{
		TreeShaking: &trueVal,
	}

	cliOpts := MergeOptions{
		NoTreeShaking: true,
	}

	opts := cfg.Merge(cliOpts)

	if opts.TreeShaking != false {
		t.Errorf("TreeShaking: got %v, want false (--no-tree-shaking)", opts.TreeShaking)
	}
}

func TestMergeKeepNames(t *testing.T) {
	cfg := &Config{
		KeepNames: []string{"configName1", "configName2"},
	}

	cliOpts := MergeOptions{
		KeepNames: []string{"cliName"},
	}

	opts := cfg.Merge(cliOpts)

	if len(opts.KeepNames) != 3 {
		t.Errorf("KeepNames: got %d items, want 3", len(opts.KeepNames))
	}
}

func TestConfigFileNames(t *testing.T) {
	tmpDir := t.TempDir()

	// Test .nzslrc (second priority)
	rcPath := filepath.Join(tmpDir, ".nzslrc")
	content := `{"treeShaking": true}`

	if err := os.WriteFile(rcPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config, got nil")
	}

	if filepath.Base(foundPath) != ".nzslrc" {
		t.Errorf("expected .nzslrc, got %s", filepath.Base(foundPath))
	}

	// Now add nzsl.json (higher priority) - should use that instead
	jsonPath := filepath.Join(tmpDir, "nzsl.json")
	jsonContent := `{"treeShaking": false}`

	if err := os.WriteFile(jsonPath, []byte(jsonContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if filepath.Base(foundPath) != "nzsl.json" {
		t.Errorf("expected nzsl.json (higher priority), got %s", filepath.Base(foundPath))
	}

	if cfg.TreeShaking == nil || *cfg.TreeShaking != false {
		t.Errorf("TreeShaking: got %v, want false (from nzsl.json)", cfg.TreeShaking)
	}
}
