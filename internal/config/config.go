// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"c19-miner/internal/detector"
	"c19-miner/internal/miner"
	"c19-miner/internal/observability"
	"c19-miner/internal/paths"
	"c19-miner/internal/resilience"
	"c19-miner/internal/textnorm"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format              string   `yaml:"format"`
		Verbose             bool     `yaml:"verbose"`
		Debug               bool     `yaml:"debug"`
		NoColor             bool     `yaml:"no_color"`
		Recursive           bool     `yaml:"recursive"`
		EnablePreprocessors bool     `yaml:"enable_preprocessors"`
		ExcludePatterns     []string `yaml:"exclude_patterns"`
	} `yaml:"defaults"`

	Matching MatchingConfig `yaml:"matching"`

	Negation struct {
		// Frames replace the built-in negation phrases when set.
		Frames []string `yaml:"frames"`
	} `yaml:"negation"`

	Categories []miner.CategorySpec `yaml:"categories"`

	// Preprocessor configurations
	Preprocessors struct {
		TextExtraction struct {
			Enabled bool     `yaml:"enabled"`
			Types   []string `yaml:"types"`
		} `yaml:"text_extraction"`
	} `yaml:"preprocessors"`

	Batch BatchConfig `yaml:"batch"`

	Report ReportConfig `yaml:"report"`

	Logging observability.LogConfig `yaml:"logging"`

	// Profiles for different note sources
	Profiles map[string]Profile `yaml:"profiles"`
}

// MatchingConfig holds matcher settings. Window has no built-in value.
type MatchingConfig struct {
	Window    *int             `yaml:"window"`
	Strategy  string           `yaml:"strategy"`
	Escape    bool             `yaml:"escape"`
	Normalize textnorm.Options `yaml:"normalize"`
}

// BatchConfig controls batch extraction.
type BatchConfig struct {
	Workers       int           `yaml:"workers"`
	RecordTimeout time.Duration `yaml:"record_timeout"`
	OutputDir     string        `yaml:"output_dir"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	MetricsOut    string        `yaml:"metrics_out"`
}

// ReportConfig controls report generation.
type ReportConfig struct {
	OnlyCovid bool `yaml:"only_covid"`
	TopN      int  `yaml:"top_n"`
	// Column lists for the boolean sheets, as vocabulary sources.
	SymptomColumns     string `yaml:"symptom_columns"`
	ComorbidityColumns string `yaml:"comorbidity_columns"`
}

// Profile represents matching settings tuned for one kind of note
type Profile struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Window      *int   `yaml:"window"`
	Strategy    string `yaml:"strategy"`
	Escape      *bool  `yaml:"escape"`
	// Categories replace the configured categories when set.
	Categories []miner.CategorySpec `yaml:"categories"`
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	// Default configuration
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "json"
	config.Defaults.EnablePreprocessors = true

	config.Matching.Strategy = string(detector.StrategyAlternation)
	config.Matching.Escape = true
	config.Matching.Normalize = textnorm.DefaultOptions()

	config.Categories = miner.DefaultCategorySpecs()

	// Set default preprocessor values
	config.Preprocessors.TextExtraction.Enabled = true
	config.Preprocessors.TextExtraction.Types = []string{"txt", "pdf"}

	config.Batch.Workers = defaultWorkers()
	config.Batch.RecordTimeout = 30 * time.Second
	config.Batch.OutputDir = "."
	config.Batch.CacheTTL = 10 * time.Minute

	config.Report.TopN = 10
	config.Report.SymptomColumns = "builtin:sintomas_columnas.tsv"
	config.Report.ComorbidityColumns = "builtin:comorbilidades_columnas.tsv"

	config.Logging = observability.LogConfig{Level: "info", Format: "console"}

	// Built-in profiles for the two note layouts seen in production
	config.Profiles["urgencias"] = Profile{
		Description: "Emergency admission notes: five-word windows, one pass per category",
		Window:      intPtr(5),
		Strategy:    string(detector.StrategyAlternation),
	}
	config.Profiles["legacy"] = Profile{
		Description: "Byte-compatible with older extractions: six-word windows, unescaped forms, one pass per form",
		Window:      intPtr(6),
		Strategy:    string(detector.StrategyPerEntry),
		Escape:      boolPtr(false),
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	// Read config file
	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Store default values before unmarshaling
	defaultEnablePreprocessors := config.Defaults.EnablePreprocessors
	defaultTextExtractionEnabled := config.Preprocessors.TextExtraction.Enabled
	defaultEscape := config.Matching.Escape
	defaultNFC := config.Matching.Normalize.NFC

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Restore defaults if not explicitly set in config file
	// This handles the case where YAML unmarshaling sets bool fields to false
	// when they're not present in the config file
	if !containsField(data, "defaults", "enable_preprocessors") {
		config.Defaults.EnablePreprocessors = defaultEnablePreprocessors
	}
	if !containsField(data, "preprocessors", "text_extraction", "enabled") {
		config.Preprocessors.TextExtraction.Enabled = defaultTextExtractionEnabled
	}
	if !containsField(data, "matching", "escape") {
		config.Matching.Escape = defaultEscape
	}
	if !containsField(data, "matching", "normalize", "nfc") {
		config.Matching.Normalize.NFC = defaultNFC
	}
	// Profiles in the file are decoded into the built-in map, so built-ins survive
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	// Validate the configuration
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	return n
}

// FindConfigFile returns the first existing file of paths.ConfigCandidates, or ""
func FindConfigFile() string {
	for _, candidate := range paths.ConfigCandidates() {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// ListProfiles returns the available profile names in sorted order
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the named profile on the configuration
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return resilience.NewInvalidInputError(fmt.Sprintf("profile %q not found", name), nil)
	}

	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.Window != nil {
		c.Matching.Window = intPtr(*profile.Window)
	}
	if profile.Strategy != "" {
		c.Matching.Strategy = profile.Strategy
	}
	if profile.Escape != nil {
		c.Matching.Escape = *profile.Escape
	}
	if len(profile.Categories) > 0 {
		c.Categories = append([]miner.CategorySpec(nil), profile.Categories...)
	}
	return ValidateConfig(c)
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			// Last key - check if it exists
			_, exists := current[key]
			return exists
		}
		// Intermediate key - navigate deeper
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

// ValidateConfig validates the configuration. An unset window is accepted here
// and rejected when engine options are built.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Matching.Window != nil && *config.Matching.Window < 0 {
		return resilience.NewInvalidInputError(fmt.Sprintf("matching.window must not be negative, got %d", *config.Matching.Window), nil)
	}
	if _, err := detector.ParseStrategy(config.Matching.Strategy); err != nil {
		return fmt.Errorf("matching.strategy: %w", err)
	}

	if err := miner.ValidateSpecs(config.Categories); err != nil {
		return fmt.Errorf("categories: %w", err)
	}

	if config.Batch.Workers < 0 {
		return resilience.NewInvalidInputError(fmt.Sprintf("batch.workers must not be negative, got %d", config.Batch.Workers), nil)
	}
	if config.Batch.RecordTimeout < 0 {
		return resilience.NewInvalidInputError("batch.record_timeout must not be negative", nil)
	}
	if config.Report.TopN < 0 {
		return resilience.NewInvalidInputError(fmt.Sprintf("report.top_n must not be negative, got %d", config.Report.TopN), nil)
	}

	switch config.Logging.Format {
	case "", "json", "console":
	default:
		return resilience.NewInvalidInputError(fmt.Sprintf("logging.format must be json or console, got %q", config.Logging.Format), nil)
	}

	for name, profile := range config.Profiles {
		if profile.Window != nil && *profile.Window < 0 {
			return resilience.NewInvalidInputError(fmt.Sprintf("profile '%s': window must not be negative", name), nil)
		}
		if profile.Strategy != "" {
			if _, err := detector.ParseStrategy(profile.Strategy); err != nil {
				return fmt.Errorf("profile '%s': %w", name, err)
			}
		}
		if len(profile.Categories) > 0 {
			if err := miner.ValidateSpecs(profile.Categories); err != nil {
				return fmt.Errorf("profile '%s': %w", name, err)
			}
		}
	}

	return nil
}

// EngineOptions returns the matcher options. The window must have been set by the
// configuration file, a profile or a flag.
func (c *Config) EngineOptions() (miner.Options, error) {
	if c.Matching.Window == nil {
		return miner.Options{}, resilience.NewInvalidInputError("window size is not configured: set matching.window or pass --window", nil)
	}
	return miner.Options{
		Detector: detector.Options{
			Window:   *c.Matching.Window,
			Strategy: detector.Strategy(c.Matching.Strategy),
			Escape:   c.Matching.Escape,
		},
		Normalize: c.Matching.Normalize,
	}, nil
}

// BuildEngine loads the configured vocabularies and compiles them.
func (c *Config) BuildEngine(hooks miner.Hooks) (*miner.Engine, error) {
	opts, err := c.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts.Hooks = hooks

	categories, err := miner.LoadCategories(c.Categories, c.Negation.Frames)
	if err != nil {
		return nil, err
	}
	return miner.NewEngine(categories, opts)
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Callers should not crash on a missing or bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}
