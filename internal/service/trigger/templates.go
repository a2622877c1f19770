package trigger

import (
	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/domain/pressure"
	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
)

// BuildTemplates overlays configuration entries on the built-in event
// table. Unknown event types, sources, levels, and severities are logged
// and ignored; missing fields keep their built-in values.
func BuildTemplates(cfg config.TriggerConfig, logger *zap.Logger) map[chaos.EventType]*chaos.Template {
	if logger == nil {
		logger = zap.NewNop()
	}
	templates := chaos.DefaultTemplates()

	for name, tc := range cfg.Templates {
		tmpl, ok := templates[chaos.EventType(name)]
		if !ok {
			logger.Warn("template config for unknown event type ignored", zap.String("type", name))
			continue
		}
		if tc.Severity != "" {
			if sev, ok := chaos.ParseSeverity(tc.Severity); ok {
				tmpl.BaseSeverity = sev
			}
		}
		if tc.Duration > 0 {
			tmpl.BaseDuration = tc.Duration
		}
		if tc.Cooldown > 0 {
			tmpl.BaseCooldown = tc.Cooldown
		}
		if tc.Weight > 0 {
			tmpl.Weight = tc.Weight
		}
		if tc.Rarity > 0 {
			tmpl.Rarity = tc.Rarity
		}
		if tc.Source != "" {
			if src, ok := pressure.ParseSource(tc.Source); ok {
				tmpl.Source = src
			}
		}
		if tc.MinLevel != "" {
			if level, ok := chaos.ParseLevel(tc.MinLevel); ok {
				tmpl.MinLevel = level
			}
		}
		if tc.MaxConcurrent > 0 {
			tmpl.MaxConcurrent = tc.MaxConcurrent
		}
		if len(tc.CascadeTargets) > 0 {
			targets := make([]chaos.EventType, 0, len(tc.CascadeTargets))
			for _, t := range tc.CascadeTargets {
				targets = append(targets, chaos.EventType(t))
			}
			tmpl.CascadeTargets = targets
		}
		if tc.CascadeProbability > 0 {
			tmpl.CascadeProbability = tc.CascadeProbability
		}
		if tc.CascadeDelay > 0 {
			tmpl.CascadeDelay = tc.CascadeDelay
		}
	}

	// Every template must end up with sane fallbacks.
	for _, tmpl := range templates {
		if tmpl.BaseCooldown <= 0 {
			tmpl.BaseCooldown = chaos.DefaultCooldown
		}
		if tmpl.BaseDuration <= 0 {
			tmpl.BaseDuration = chaos.DefaultDuration
		}
		if tmpl.Weight <= 0 {
			tmpl.Weight = chaos.DefaultWeight
		}
		if tmpl.Rarity <= 0 {
			tmpl.Rarity = chaos.DefaultRarity
		}
	}
	return templates
}
