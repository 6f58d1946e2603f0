package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`

	// Face detection service settings
	Detection DetectionConfig `yaml:"detection"`

	// Reframing settings
	Reframe ReframeConfig `yaml:"reframe"`

	// Shot preview settings
	Previews PreviewConfig `yaml:"previews"`
}

// DetectionConfig configures the external face-detection service client
type DetectionConfig struct {
	Endpoint            string `yaml:"endpoint" env:"QLIP_DETECTION_ENDPOINT"`
	APIKey              string `yaml:"api_key" env:"QLIP_DETECTION_API_KEY"`
	JobCheckDelayMs     int    `yaml:"job_check_delay_ms"`
	MaxPolls            int    `yaml:"max_polls"`
	MaxTransientRetries int    `yaml:"max_transient_retries"`
}

// ReframeConfig holds the crop and segmentation thresholds
type ReframeConfig struct {
	ConfidenceThreshold          float64 `yaml:"confidence_threshold"`
	HighConfidenceThreshold      float64 `yaml:"high_confidence_threshold"`
	PaddingFactorBase            float64 `yaml:"padding_factor_base"`
	SignificantMovementThreshold float64 `yaml:"significant_movement_threshold"`
	CropChangeTolerance          float64 `yaml:"crop_change_tolerance"`
	MinShotDurationSec           float64 `yaml:"min_shot_duration_sec"`
	SmoothCrops                  bool    `yaml:"smooth_crops"`
}

// PreviewConfig configures per-shot preview stills
type PreviewConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxWidth int  `yaml:"max_width"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv lets the service endpoint and key come from the environment,
// so credentials never need to live in the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("QLIP_DETECTION_ENDPOINT"); v != "" {
		c.Detection.Endpoint = v
	}
	if v := os.Getenv("QLIP_DETECTION_API_KEY"); v != "" {
		c.Detection.APIKey = v
	}
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	if c.Detection.JobCheckDelayMs <= 0 {
		return fmt.Errorf("detection.job_check_delay_ms must be positive, got %d", c.Detection.JobCheckDelayMs)
	}
	if c.Reframe.MinShotDurationSec <= 0 {
		return fmt.Errorf("reframe.min_shot_duration_sec must be positive, got %g", c.Reframe.MinShotDurationSec)
	}
	if c.Reframe.ConfidenceThreshold < 0 || c.Reframe.ConfidenceThreshold > 100 {
		return fmt.Errorf("reframe.confidence_threshold must be in [0,100], got %g", c.Reframe.ConfidenceThreshold)
	}
	if c.Reframe.HighConfidenceThreshold < 0 || c.Reframe.HighConfidenceThreshold > 100 {
		return fmt.Errorf("reframe.high_confidence_threshold must be in [0,100], got %g", c.Reframe.HighConfidenceThreshold)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		WorkDir: "./work",
		Detection: DetectionConfig{
			Endpoint:            "http://localhost:8080",
			JobCheckDelayMs:     5000,
			MaxPolls:            120,
			MaxTransientRetries: 3,
		},
		Reframe: ReframeConfig{
			ConfidenceThreshold:          85.0,
			HighConfidenceThreshold:      95.0,
			PaddingFactorBase:            1.0,
			SignificantMovementThreshold: 0.7,
			CropChangeTolerance:          0.6,
			MinShotDurationSec:           0.6,
			SmoothCrops:                  false,
		},
		Previews: PreviewConfig{
			Enabled:  false,
			MaxWidth: 480,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".qlip", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
