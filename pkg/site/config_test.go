package site

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Title != "Articles" {
		t.Errorf("title = %q", cfg.Title)
	}
	if cfg.ContentDir != filepath.Join(dir, "content") {
		t.Errorf("contentDir = %q", cfg.ContentDir)
	}
	if cfg.OutputDir != filepath.Join(dir, "public") {
		t.Errorf("outputDir = %q", cfg.OutputDir)
	}
	if cfg.BuildDrafts {
		t.Error("drafts should be off by default")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `title: "JS Notebook"
baseURL: "https://example.com/"
contentDir: articles
outputDir: dist
buildDrafts: true
exclude:
  - "private/**"
`
	if err := os.WriteFile(filepath.Join(dir, "mulch.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Title != "JS Notebook" {
		t.Errorf("title = %q", cfg.Title)
	}
	if cfg.BaseURL != "https://example.com/" {
		t.Errorf("baseURL = %q", cfg.BaseURL)
	}
	if cfg.ContentDir != filepath.Join(dir, "articles") {
		t.Errorf("contentDir = %q", cfg.ContentDir)
	}
	if cfg.OutputDir != filepath.Join(dir, "dist") {
		t.Errorf("outputDir = %q", cfg.OutputDir)
	}
	if !cfg.BuildDrafts {
		t.Error("buildDrafts should be true")
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "private/**" {
		t.Errorf("exclude = %v", cfg.Exclude)
	}
}

func TestLoadConfigAbsolutePathsKept(t *testing.T) {
	dir := t.TempDir()
	content := t.TempDir()
	yaml := "contentDir: " + content + "\n"
	if err := os.WriteFile(filepath.Join(dir, "mulch.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ContentDir != content {
		t.Errorf("contentDir = %q, want %q", cfg.ContentDir, content)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mulch.yaml"), []byte("title: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestConfigExists(t *testing.T) {
	dir := t.TempDir()
	if ConfigExists(dir) {
		t.Error("empty dir should have no config")
	}

	if err := WriteDefaultConfig(dir); err != nil {
		t.Fatalf("WriteDefaultConfig failed: %v", err)
	}
	if !ConfigExists(dir) {
		t.Error("expected config to be detected")
	}

	// The generated file round-trips through the loader.
	if _, err := LoadConfig(dir); err != nil {
		t.Errorf("generated config does not load: %v", err)
	}
}
