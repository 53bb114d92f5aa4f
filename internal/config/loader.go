package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project configuration directory.
const DirName = ".symbolpack"

// Loader loads configuration.
type Loader interface {
	// Load reads defaults, then the config file, then environment
	// variables (env wins).
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader that searches rootDir/.symbolpack for
// config.yml. A non-empty configFile is read instead and must exist.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{rootDir: rootDir, configFile: configFile}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SYMBOLPACK_*, plus GHIDRA_VERSION)
// 2. Config file (.symbolpack/config.yml or --config)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	v.SetEnvPrefix("SYMBOLPACK")
	v.AutomaticEnv()
	// SYMBOLPACK_ANCHORS_VALUE_TYPE -> anchors.value_type
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("analyzer.name")
	v.BindEnv("analyzer.version", "SYMBOLPACK_ANALYZER_VERSION", "GHIDRA_VERSION")
	v.BindEnv("analyzer.toolchain")
	v.BindEnv("analyzer.notes")
	v.BindEnv("anchors.confidence")
	v.BindEnv("anchors.value_type")
	v.BindEnv("capabilities.registry")
	v.BindEnv("ledger.path")
	v.BindEnv("schema.validate")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("analyzer.name", defaults.Analyzer.Name)
	v.SetDefault("analyzer.version", defaults.Analyzer.Version)
	v.SetDefault("analyzer.toolchain", defaults.Analyzer.Toolchain)
	v.SetDefault("analyzer.notes", defaults.Analyzer.Notes)

	v.SetDefault("anchors.confidence", defaults.Anchors.Confidence)
	v.SetDefault("anchors.value_type", defaults.Anchors.ValueType)

	v.SetDefault("capabilities.registry", defaults.Capabilities.Registry)
	v.SetDefault("ledger.path", defaults.Ledger.Path)
	v.SetDefault("schema.validate", defaults.Schema.Validate)
}

// LoadConfig loads configuration rooted at the working directory.
func LoadConfig(configFile string) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, configFile).Load()
}
