package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/renatogalera/hunkpick/pkg/textenc"
)

const (
	DefaultLogLevel = "info"
	DefaultGitPath  = "git"
	DefaultTimeout  = 30
)

type Config struct {
	// ContextLines is passed to git diff as -U<n>. Zero keeps git's default.
	ContextLines int    `yaml:"contextLines,omitempty" validate:"gte=0,lte=1000"`
	Encoding     string `yaml:"encoding,omitempty"`
	GitPath      string `yaml:"gitPath,omitempty"`
	TempDir      string `yaml:"tempDir,omitempty"`
	LogLevel     string `yaml:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error"`
	// Timeout bounds each git invocation, in seconds.
	Timeout       int  `yaml:"timeout,omitempty" validate:"gte=0"`
	VerifyPatches bool `yaml:"verifyPatches"`
}

// Default returns the configuration written when no file exists yet.
func Default() *Config {
	return &Config{
		Encoding:      "utf-8",
		GitPath:       DefaultGitPath,
		LogLevel:      DefaultLogLevel,
		Timeout:       DefaultTimeout,
		VerifyPatches: true,
	}
}

// DefaultPath returns ~/.config/<binary>/config.yaml.
func DefaultPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to determine executable path: %w", err)
	}
	binaryName := filepath.Base(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", binaryName, "config.yaml"), nil
}

// LoadOrCreateConfig reads the config at path, writing the defaults there
// first when the file does not exist. An empty path means DefaultPath.
func LoadOrCreateConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		defaultCfg := Default()
		if err := saveConfig(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultCfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func saveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (cfg *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := textenc.Lookup(cfg.Encoding); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Codec returns the text codec for the configured encoding.
func (cfg *Config) Codec() (textenc.Codec, error) {
	return textenc.Lookup(cfg.Encoding)
}

// TimeoutDuration returns Timeout as a duration. Zero means no limit.
func (cfg *Config) TimeoutDuration() time.Duration {
	return time.Duration(cfg.Timeout) * time.Second
}
