// Package config holds symvis project configuration: the library's macro
// naming, where the generated header goes, and the default build facts the
// CLI resolves against when no flags are given. Configuration lives in a
// YAML file (conventionally .symvis/config.yaml at the project root), with
// a small set of environment overrides for CI use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"symvis/internal/header"
	"symvis/internal/visibility"
)

// DefaultPath is the conventional config location relative to a project root.
const DefaultPath = ".symvis/config.yaml"

// Config holds all symvis configuration.
type Config struct {
	// Name is the library name; the macro prefix is derived from it when
	// not set explicitly.
	Name string `yaml:"name"`

	// MacroPrefix overrides the derived prefix (uppercase C identifier).
	MacroPrefix string `yaml:"macro_prefix,omitempty"`

	// Header controls the generated export header.
	Header HeaderConfig `yaml:"header"`

	// Facts are the default build facts for resolved output.
	Facts FactsConfig `yaml:"facts"`

	// Logging controls the category logger.
	Logging LoggingConfig `yaml:"logging"`
}

// HeaderConfig controls output location and macro naming.
type HeaderConfig struct {
	// Output is the header path, relative to the project root.
	Output string `yaml:"output"`

	// Guard overrides the derived include-guard macro.
	Guard string `yaml:"guard,omitempty"`

	// BuildSharedDefine, BuildMainDefine and SuppressDefine override the
	// derived gate macro names.
	BuildSharedDefine string `yaml:"build_shared_define,omitempty"`
	BuildMainDefine   string `yaml:"build_main_define,omitempty"`
	SuppressDefine    string `yaml:"suppress_define,omitempty"`

	// MacrosInclude is an optional generated-options header to include.
	MacrosInclude string `yaml:"macros_include,omitempty"`
}

// FactsConfig is the YAML/env spelling of visibility.Facts.
type FactsConfig struct {
	Platform       string `yaml:"platform"`
	BuildMode      string `yaml:"build_mode"`
	Role           string `yaml:"role"`
	SuppressExport bool   `yaml:"suppress_export"`
}

// LoggingConfig mirrors the logger's settings.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns a Config for the given library name with host
// defaults: resolve for the running platform, shared build, building role.
func DefaultConfig(name string) *Config {
	return &Config{
		Name: name,
		Header: HeaderConfig{
			Output: filepath.Join("include", strings.ToLower(sanitizePrefix(name)), "export.h"),
		},
		Facts: FactsConfig{
			Platform:  visibility.HostPlatform().String(),
			BuildMode: visibility.BuildShared.String(),
			Role:      visibility.RoleBuildingLibrary.String(),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads and validates a config file, then applies env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets CI force facts without editing the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SYMVIS_PLATFORM"); v != "" {
		c.Facts.Platform = v
	}
	if v := os.Getenv("SYMVIS_BUILD_MODE"); v != "" {
		c.Facts.BuildMode = v
	}
	if v := os.Getenv("SYMVIS_ROLE"); v != "" {
		c.Facts.Role = v
	}
	if v := os.Getenv("SYMVIS_NO_EXPORT"); v != "" {
		c.Facts.SuppressExport = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks names and fact spellings without touching the filesystem.
func (c *Config) Validate() error {
	if c.Name == "" && c.MacroPrefix == "" {
		return fmt.Errorf("config needs a name or macro_prefix")
	}
	if _, err := c.HeaderOptions(); err != nil {
		return err
	}
	if _, err := c.VisibilityFacts(); err != nil {
		return err
	}
	return nil
}

// Prefix returns the effective macro prefix.
func (c *Config) Prefix() string {
	if c.MacroPrefix != "" {
		return c.MacroPrefix
	}
	return sanitizePrefix(c.Name)
}

// HeaderOptions converts the config into header.Options.
func (c *Config) HeaderOptions() (header.Options, error) {
	o := header.Options{
		Prefix:            c.Prefix(),
		Guard:             c.Header.Guard,
		BuildSharedDefine: c.Header.BuildSharedDefine,
		BuildMainDefine:   c.Header.BuildMainDefine,
		SuppressDefine:    c.Header.SuppressDefine,
		MacrosInclude:     c.Header.MacrosInclude,
	}
	if err := o.Validate(); err != nil {
		return header.Options{}, fmt.Errorf("header options: %w", err)
	}
	return o, nil
}

// VisibilityFacts converts the configured fact strings into a validated
// visibility.Facts record.
func (c *Config) VisibilityFacts() (visibility.Facts, error) {
	platform, err := visibility.ParsePlatform(c.Facts.Platform)
	if err != nil {
		return visibility.Facts{}, fmt.Errorf("facts.platform: %w", err)
	}
	mode, err := visibility.ParseBuildMode(c.Facts.BuildMode)
	if err != nil {
		return visibility.Facts{}, fmt.Errorf("facts.build_mode: %w", err)
	}
	role, err := visibility.ParseRole(c.Facts.Role)
	if err != nil {
		return visibility.Facts{}, fmt.Errorf("facts.role: %w", err)
	}
	return visibility.Facts{
		Platform:       platform,
		BuildMode:      mode,
		Role:           role,
		SuppressExport: c.Facts.SuppressExport,
	}, nil
}

// sanitizePrefix derives an uppercase C identifier from a library name,
// e.g. "my-lib" becomes "MY_LIB".
func sanitizePrefix(name string) string {
	var sb strings.Builder
	for i, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
