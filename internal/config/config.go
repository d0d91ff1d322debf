package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/app-bundler/internal/domain/app"
)

// Config is the project manifest shared by the bundler binaries.
type Config struct {
	// SupportBaseURL is where official stub artifacts are published.
	// Leave empty to use the compiled-in default; override for mirrors.
	SupportBaseURL string `yaml:"support_base_url,omitempty"`
	// DataDir is the cache root for downloaded artifacts.
	DataDir string `yaml:"data_dir,omitempty"`
	// BuildDir is the root of the build output tree.
	BuildDir string `yaml:"build_dir,omitempty"`
	// Apps lists the applications this project builds.
	Apps []*app.App `yaml:"apps"`
}

const (
	// DefaultConfigFilename is the default filename for the project manifest.
	DefaultConfigFilename = "app-bundler.yaml"

	// DefaultDataDirname is the default cache root.
	DefaultDataDirname = "data"

	// DefaultBuildDirname is the default build output root.
	DefaultBuildDirname = "build"

	// DefaultFilePermissions is the default file permission for manifest files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil manifest is provided.
	errConfigIsNotSet = errors.New("manifest is not set")
	// errNoApps is returned when the manifest declares no applications.
	errNoApps = errors.New("at least one app must be declared")
	// errDuplicateApp is returned when two apps share a name.
	errDuplicateApp = errors.New("app names must be unique")
	// errUnknownApp is returned when a requested app is not in the manifest.
	errUnknownApp = errors.New("app is not declared in the manifest")
)

// Load reads the project manifest from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the manifest to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Validate checks the manifest for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if len(cfg.Apps) == 0 {
		return errNoApps
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDirname
	}

	if cfg.BuildDir == "" {
		cfg.BuildDir = DefaultBuildDirname
	}

	if cfg.SupportBaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.SupportBaseURL); err != nil {
			return fmt.Errorf("invalid support base URL: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(cfg.Apps))

	for _, a := range cfg.Apps {
		if err := a.Validate(); err != nil {
			return err
		}

		if _, found := seen[a.Name]; found {
			return fmt.Errorf("%w: %s", errDuplicateApp, a.Name)
		}

		seen[a.Name] = struct{}{}
	}

	return nil
}

// App returns the declared app with the provided name.
func (c *Config) App(name string) (*app.App, error) {
	for _, a := range c.Apps {
		if a.Name == name {
			return a, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", errUnknownApp, name)
}
