// Package site turns a content directory of articles into a static HTML
// site: configuration, page rendering, and incremental rebuilds.
package site

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFileName is the site configuration file looked up at the content root.
const ConfigFileName = "mulch"

// Config describes a site build.
type Config struct {
	Title       string   `mapstructure:"title"`
	BaseURL     string   `mapstructure:"baseURL"`
	ContentDir  string   `mapstructure:"contentDir"`
	OutputDir   string   `mapstructure:"outputDir"`
	DateFormat  string   `mapstructure:"dateFormat"`
	BuildDrafts bool     `mapstructure:"buildDrafts"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
}

// DefaultConfig returns the configuration used when no mulch.yaml exists.
func DefaultConfig() Config {
	return Config{
		Title:      "Articles",
		BaseURL:    "/",
		ContentDir: "content",
		OutputDir:  "public",
		DateFormat: "January 2, 2006",
		Include:    []string{"**/*"},
	}
}

// LoadConfig reads mulch.yaml (or .json/.toml) from the given directory,
// falling back to defaults when the file is absent. Unknown keys are
// ignored; a malformed file is an error.
func LoadConfig(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.AddConfigPath(dir)

	def := DefaultConfig()
	v.SetDefault("title", def.Title)
	v.SetDefault("baseURL", def.BaseURL)
	v.SetDefault("contentDir", def.ContentDir)
	v.SetDefault("outputDir", def.OutputDir)
	v.SetDefault("dateFormat", def.DateFormat)
	v.SetDefault("buildDrafts", def.BuildDrafts)
	v.SetDefault("include", def.Include)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read site config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid site config: %w", err)
	}

	// Relative paths resolve against the config directory.
	if !filepath.IsAbs(cfg.ContentDir) {
		cfg.ContentDir = filepath.Join(dir, cfg.ContentDir)
	}
	if !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(dir, cfg.OutputDir)
	}

	return cfg, nil
}

// WriteDefaultConfig writes a starter mulch.yaml into dir.
func WriteDefaultConfig(dir string) error {
	def := DefaultConfig()
	content := fmt.Sprintf(`title: %q
baseURL: %q
contentDir: %q
outputDir: %q
dateFormat: %q
`, def.Title, def.BaseURL, def.ContentDir, def.OutputDir, def.DateFormat)

	path := filepath.Join(dir, ConfigFileName+".yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write site config: %w", err)
	}
	return nil
}

// ConfigExists reports whether a site config file is present in dir.
func ConfigExists(dir string) bool {
	for _, ext := range []string{".yaml", ".yml", ".json", ".toml"} {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName+ext)); err == nil {
			return true
		}
	}
	return false
}
