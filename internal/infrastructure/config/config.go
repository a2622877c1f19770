package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Simulation SimulationConfig `koanf:"simulation"`
	Pressure   PressureConfig   `koanf:"pressure"`
	Scoring    ScoringConfig    `koanf:"scoring"`
	Mitigation MitigationConfig `koanf:"mitigation"`
	Trigger    TriggerConfig    `koanf:"trigger"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

type SimulationConfig struct {
	TickInterval time.Duration `koanf:"tick_interval" validate:"gt=0"`
	ScoreTimeout time.Duration `koanf:"score_timeout" validate:"gt=0"`
}

type PressureConfig struct {
	DecayRate         float64                `koanf:"decay_rate" validate:"gte=0,lte=1"`
	Window            time.Duration          `koanf:"window" validate:"gt=0"`
	MaxReadings       int                    `koanf:"max_readings" validate:"gt=0"`
	CriticalThreshold float64                `koanf:"critical_threshold" validate:"gte=0,lte=1"`
	TrendSamples      int                    `koanf:"trend_samples" validate:"gt=1"`
	Weights           map[string]float64     `koanf:"weights"`
}

type ScoringConfig struct {
	// Thresholds maps chaos level names to minimum scores.
	Thresholds            map[string]float64 `koanf:"thresholds"`
	TemporalEnabled       bool               `koanf:"temporal_enabled"`
	TemporalWeight        float64            `koanf:"temporal_weight" validate:"gte=0"`
	TemporalCap           float64            `koanf:"temporal_cap" validate:"gte=0,lte=1"`
	ActivationThreshold   float64            `koanf:"activation_threshold" validate:"gte=0,lte=1"`
	CatastrophicThreshold float64            `koanf:"catastrophic_threshold" validate:"gte=0,lte=1"`
	MaxCandidates         int                `koanf:"max_candidates" validate:"gt=0"`
}

type MitigationConfig struct {
	// Ceiling caps combined effectiveness so stacked mitigations can
	// never fully cancel chaos.
	Ceiling          float64            `koanf:"ceiling" validate:"gte=0,lte=1"`
	DefaultDecayRate float64            `koanf:"default_decay_rate" validate:"gte=0"`
	DecayRates       map[string]float64 `koanf:"decay_rates"`
}

type TriggerConfig struct {
	MaxEventsPerHour     int                       `koanf:"max_events_per_hour" validate:"gt=0"`
	MaxEventsPerDay      int                       `koanf:"max_events_per_day" validate:"gt=0"`
	MaxConcurrentEvents  int                       `koanf:"max_concurrent_events" validate:"gt=0"`
	MinEvalInterval      time.Duration             `koanf:"min_eval_interval" validate:"gte=0"`
	Variance             float64                   `koanf:"variance" validate:"gte=0,lte=1"`
	CascadeVariance      float64                   `koanf:"cascade_variance" validate:"gte=0,lte=1"`
	DefaultCooldown      time.Duration             `koanf:"default_cooldown" validate:"gt=0"`
	RegionTopK           int                       `koanf:"region_top_k" validate:"gt=0"`
	BaseLevelProbability map[string]float64        `koanf:"base_level_probability"`
	Templates            map[string]TemplateConfig `koanf:"templates"`
}

// TemplateConfig overrides fields of one built-in event template. Zero
// fields keep the built-in value.
type TemplateConfig struct {
	Severity           string        `koanf:"severity"`
	Duration           time.Duration `koanf:"duration"`
	Cooldown           time.Duration `koanf:"cooldown"`
	Weight             float64       `koanf:"weight"`
	Rarity             float64       `koanf:"rarity"`
	Source             string        `koanf:"source"`
	MinLevel           string        `koanf:"min_level"`
	MaxConcurrent      int           `koanf:"max_concurrent"`
	CascadeTargets     []string      `koanf:"cascade_targets"`
	CascadeProbability float64       `koanf:"cascade_probability"`
	CascadeDelay       time.Duration `koanf:"cascade_delay"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SampleRate   float64 `koanf:"sample_rate" validate:"gte=0,lte=1"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port" validate:"gt=0,lte=65535"`
}

func defaults() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Simulation: SimulationConfig{
			TickInterval: 1 * time.Minute,
			ScoreTimeout: 5 * time.Second,
		},
		Pressure: PressureConfig{
			DecayRate:         0.02,
			Window:            24 * time.Hour,
			MaxReadings:       100,
			CriticalThreshold: 0.8,
			TrendSamples:      20,
			Weights: map[string]float64{
				"economic":      1.0,
				"political":     1.2,
				"social":        1.0,
				"environmental": 0.9,
				"diplomatic":    1.1,
				"temporal":      0.6,
			},
		},
		Scoring: ScoringConfig{
			Thresholds: map[string]float64{
				"dormant":      0.0,
				"stable":       0.05,
				"low":          0.3,
				"moderate":     0.6,
				"high":         0.8,
				"critical":     0.9,
				"catastrophic": 0.97,
			},
			TemporalEnabled:       true,
			TemporalWeight:        0.5,
			TemporalCap:           0.3,
			ActivationThreshold:   0.5,
			CatastrophicThreshold: 0.8,
			MaxCandidates:         5,
		},
		Mitigation: MitigationConfig{
			Ceiling:          0.8,
			DefaultDecayRate: 0.05,
			DecayRates: map[string]float64{
				"diplomatic_treaty": 0.01,
				"economic_aid":      0.03,
				"military_presence": 0.02,
				"relief_effort":     0.08,
				"festival":          0.15,
				"propaganda":        0.10,
			},
		},
		Trigger: TriggerConfig{
			MaxEventsPerHour:    3,
			MaxEventsPerDay:     10,
			MaxConcurrentEvents: 5,
			MinEvalInterval:     30 * time.Second,
			Variance:            0.2,
			CascadeVariance:     0.3,
			DefaultCooldown:     48 * time.Hour,
			RegionTopK:          3,
			BaseLevelProbability: map[string]float64{
				"dormant":      0.0,
				"stable":       0.02,
				"low":          0.05,
				"moderate":     0.12,
				"high":         0.25,
				"critical":     0.4,
				"catastrophic": 0.6,
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			SampleRate: 0.1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9091,
		},
	}
}

// Load builds configuration from defaults, an optional configs/config.yaml,
// and CHAOS_-prefixed environment variables, in that order of precedence.
func Load() (*Config, error) {
	return LoadFrom("configs/config.yaml")
}

// LoadFrom is Load with an explicit config file path, for tests.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional, but one that exists must parse.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("CHAOS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CHAOS_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Out-of-range tunables fall back to documented defaults instead of
	// failing startup.
	if err := validator.New().Struct(&cfg); err != nil {
		cfg.sanitize()
	}

	return &cfg, nil
}

// sanitize resets any field that fails validation to its default value,
// section by section.
func (c *Config) sanitize() {
	v := validator.New()
	def := defaults()

	if v.Struct(&c.Simulation) != nil {
		c.Simulation = def.Simulation
	}
	if v.Struct(&c.Pressure) != nil {
		c.Pressure = def.Pressure
	}
	if v.Struct(&c.Scoring) != nil {
		c.Scoring = def.Scoring
	}
	if v.Struct(&c.Mitigation) != nil {
		c.Mitigation = def.Mitigation
	}
	if v.Struct(&c.Trigger) != nil {
		c.Trigger = def.Trigger
	}
	if v.Struct(&c.Telemetry) != nil {
		c.Telemetry = def.Telemetry
	}
	if v.Struct(&c.Metrics) != nil {
		c.Metrics = def.Metrics
	}
}

// SourceWeight returns the weight for a pressure source name, falling back
// to 1.0 for missing entries.
func (p PressureConfig) SourceWeight(name string) float64 {
	if w, ok := p.Weights[name]; ok {
		return w
	}
	return 1.0
}
