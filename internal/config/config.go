// Package config handles loading, saving, and resolving the GitFleet
// configuration file and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-directory GitFleet config file.
	LocalConfigFilename = ".gitfleet.yaml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/gitfleet/v1alpha1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "GitFleetConfig"

	// EnvConfig points at a config file or directory.
	EnvConfig = "GITFLEET_CONFIG"
	// EnvBaseDir overrides the checkout base directory.
	EnvBaseDir = "GITFLEET_DIR"
	// EnvUsername is the GitHub account to manage.
	EnvUsername = "GITHUB_USERNAME"
	// EnvToken is the GitHub token. Never written to the config file.
	EnvToken = "GITHUB_TOKEN"

	defaultBaseDirName = "github-repos"
)

// Defaults holds default values for batch operations.
type Defaults struct {
	RemoteName     string `yaml:"remote_name"`
	Workers        int    `yaml:"workers"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config represents the on-disk GitFleet configuration.
type Config struct {
	APIVersion     string   `yaml:"apiVersion"`
	Kind           string   `yaml:"kind"`
	Username       string   `yaml:"username,omitempty"`
	BaseDir        string   `yaml:"base_dir,omitempty"`
	Exclude        []string `yaml:"exclude"`
	CachePath      string   `yaml:"cache_path,omitempty"`
	CacheStaleDays int      `yaml:"cache_stale_days"`
	Defaults       Defaults `yaml:"defaults"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion:     ConfigAPIVersion,
		Kind:           ConfigKind,
		Exclude:        []string{"**/node_modules/**", "**/.terraform/**", "**/dist/**", "**/vendor/**"},
		CacheStaleDays: 7,
		Defaults: Defaults{
			RemoteName:     "origin",
			Workers:        8,
			TimeoutSeconds: 60,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, the GITFLEET_CONFIG env
// var, and finally os.UserConfigDir()/gitfleet.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gitfleet"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, GITFLEET_CONFIG, nearest local dotfile in
// cwd/parents, then global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// FindNearestConfigPath searches cwd and each parent directory for
// .gitfleet.yaml. It returns an empty string when no local config file is
// found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigGVK(&cfg)
	if err := validateConfigGVK(&cfg); err != nil {
		return nil, err
	}

	defaults := DefaultConfig().Defaults
	if cfg.Defaults.Workers == 0 {
		cfg.Defaults.Workers = defaults.Workers
	}
	if cfg.Defaults.TimeoutSeconds == 0 {
		cfg.Defaults.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if cfg.Defaults.RemoteName == "" {
		cfg.Defaults.RemoteName = defaults.RemoteName
	}

	return &cfg, nil
}

// LoadOrDefault loads the config at path, substituting the defaults when
// the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			def := DefaultConfig()
			return &def, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	applyConfigGVK(cfg)
	if err := validateConfigGVK(cfg); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDotEnv loads the nearest .env file at or above dir. Variables already
// present in the process environment are left alone. It returns the loaded
// path, or an empty string when no .env file exists.
func LoadDotEnv(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, godotenv.Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// ApplyEnv layers environment overrides onto cfg.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	if username := os.Getenv(EnvUsername); username != "" {
		cfg.Username = username
	}
	if baseDir := os.Getenv(EnvBaseDir); baseDir != "" {
		cfg.BaseDir = baseDir
	}
}

// Token returns the GitHub token from the environment.
func Token() string {
	return os.Getenv(EnvToken)
}

// ResolveBaseDir returns the effective checkout base directory: the flag
// value, then the configured value, then ~/github-repos.
func ResolveBaseDir(flagValue string, cfg *Config) (string, error) {
	dir := strings.TrimSpace(flagValue)
	if dir == "" && cfg != nil {
		dir = strings.TrimSpace(cfg.BaseDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, defaultBaseDirName)
	}
	if strings.HasPrefix(dir, "~"+string(filepath.Separator)) || dir == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(dir, "~"), string(filepath.Separator)))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// GuardBaseDir refuses base directories nested inside an existing git
// checkout, where per-repo clones would land inside another repository's
// worktree.
func GuardBaseDir(dir string) error {
	probe := filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(probe, ".git")); err == nil {
			return fmt.Errorf("base directory %s is inside the git repository at %s", dir, probe)
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return nil
		}
		probe = parent
	}
}

func isConfigFilePath(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, "config.yaml") || strings.HasSuffix(lower, "config.yml") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
