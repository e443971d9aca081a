// Package config loads project settings from beacon.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/beacon-lang/beacon/internal/compiler/codegen"
)

// Config represents the Beacon project configuration
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Source      SourceConfig   `mapstructure:"source"`
	Generate    GenerateConfig `mapstructure:"generate"`
}

// SourceConfig locates the declaration files
type SourceConfig struct {
	Dir string `mapstructure:"dir"`
}

// GenerateConfig controls the generation pass
type GenerateConfig struct {
	OutputDir     string `mapstructure:"output_dir"`
	Package       string `mapstructure:"package"`
	RuntimeImport string `mapstructure:"runtime_import"`
	Cache         bool   `mapstructure:"cache"`
}

var packageNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Load reads beacon.yml or beacon.yaml, searching upward from the
// working directory so commands run from a subdirectory still find
// their project. Environment variables with a BEACON_ prefix override
// file values, e.g. BEACON_GENERATE_OUTPUT_DIR.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("source.dir", "models")
	v.SetDefault("generate.output_dir", "generated")
	v.SetDefault("generate.package", "models")
	v.SetDefault("generate.runtime_import", codegen.DefaultRuntimeImport)
	v.SetDefault("generate.cache", true)

	v.SetConfigName("beacon")
	v.SetConfigType("yaml")
	root, rootErr := GetProjectRoot()
	if rootErr == nil {
		v.AddConfigPath(root)
	} else {
		// Not inside a project; defaults plus environment still apply.
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BEACON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	// Paths in beacon.yml are project-root relative. When the file was
	// found above the working directory, anchor them there so they keep
	// meaning what the file says.
	if rootErr == nil {
		if cwd, err := os.Getwd(); err == nil && cwd != root {
			config.Source.Dir = rebase(root, config.Source.Dir)
			config.Generate.OutputDir = rebase(root, config.Generate.OutputDir)
		}
	}

	return &config, nil
}

// rebase anchors a root-relative path; absolute paths pass through.
func rebase(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// InProject checks if the current directory is a Beacon project
func InProject() bool {
	if _, err := os.Stat("beacon.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("beacon.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot tries to find the project root by looking for beacon.yml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "beacon.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "beacon.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("not in a Beacon project (no beacon.yml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	// The package name lands verbatim in every generated file's package
	// clause, so reject anything the Go compiler would.
	if cfg.Generate.Package != "" && !packageNamePattern.MatchString(cfg.Generate.Package) {
		return fmt.Errorf("generate.package must be a lowercase Go package name, got: %s", cfg.Generate.Package)
	}
	if cfg.Source.Dir == "" {
		return fmt.Errorf("source.dir must not be empty")
	}
	if cfg.Generate.OutputDir == "" {
		return fmt.Errorf("generate.output_dir must not be empty")
	}
	return nil
}
