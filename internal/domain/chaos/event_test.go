package chaos_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
	"github.com/sharronesofer/worldchaos/internal/testutil/fixtures"
)

var baseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNewEvent(t *testing.T) {
	tmpl := fixtures.NewTemplateBuilder(t).
		WithType(chaos.EventWar).
		WithCascade(0.5, 48*time.Hour, chaos.EventFamine, chaos.EventMassMigration).
		Build()
	tmpl.BaseDuration = 30 * 24 * time.Hour

	tests := []struct {
		name     string
		severity chaos.Severity
		regions  []string
		validate func(t *testing.T, e *chaos.Event)
	}{
		{
			name:     "duration scales with severity",
			severity: chaos.SeverityCatastrophic,
			regions:  []string{"ironmark"},
			validate: func(t *testing.T, e *chaos.Event) {
				assert.NotEqual(t, uuid.Nil, e.ID)
				assert.Equal(t, chaos.EventWar, e.Type)
				assert.Equal(t, 90*24*time.Hour, e.Duration)
				assert.Equal(t, chaos.StatusPending, e.Status)
				assert.False(t, e.Global)
				assert.Equal(t, 0.5, e.CascadeProbability)
				assert.Nil(t, e.ParentID)
			},
		},
		{
			name:     "minor severity halves duration",
			severity: chaos.SeverityMinor,
			regions:  []string{"ironmark"},
			validate: func(t *testing.T, e *chaos.Event) {
				assert.Equal(t, 15*24*time.Hour, e.Duration)
			},
		},
		{
			name:     "no regions means global",
			severity: chaos.SeverityModerate,
			validate: func(t *testing.T, e *chaos.Event) {
				assert.True(t, e.Global)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := chaos.NewEvent(tmpl, tt.severity, tt.regions, baseTime)
			require.NotNil(t, e)
			tt.validate(t, e)
		})
	}
}

func TestEvent_Lifecycle(t *testing.T) {
	tmpl := fixtures.NewTemplateBuilder(t).Build()

	t.Run("pending to active to resolved", func(t *testing.T) {
		e := chaos.NewEvent(tmpl, chaos.SeverityModerate, nil, baseTime)
		e.Activate()
		assert.Equal(t, chaos.StatusActive, e.Status)

		e.Resolve(baseTime.Add(time.Hour))
		assert.Equal(t, chaos.StatusResolved, e.Status)
		require.NotNil(t, e.EndedAt)
		assert.Equal(t, baseTime.Add(time.Hour), *e.EndedAt)
	})

	t.Run("resolved event cannot reactivate", func(t *testing.T) {
		e := chaos.NewEvent(tmpl, chaos.SeverityModerate, nil, baseTime)
		e.Resolve(baseTime)
		e.Activate()
		assert.Equal(t, chaos.StatusResolved, e.Status)
	})

	t.Run("expires once duration elapsed", func(t *testing.T) {
		e := chaos.NewEvent(tmpl, chaos.SeverityModerate, nil, baseTime)
		e.Activate()

		assert.False(t, e.ExpireIfDue(baseTime.Add(e.Duration-time.Second)))
		assert.Equal(t, chaos.StatusActive, e.Status)

		assert.True(t, e.ExpireIfDue(baseTime.Add(e.Duration)))
		assert.Equal(t, chaos.StatusExpired, e.Status)
		require.NotNil(t, e.EndedAt)

		// Already expired, second call is a no-op.
		assert.False(t, e.ExpireIfDue(baseTime.Add(e.Duration+time.Hour)))
	})
}

func TestCooldown(t *testing.T) {
	cd := &chaos.Cooldown{
		Type:          chaos.EventWar,
		LastTriggered: baseTime,
		Duration:      48 * time.Hour,
	}

	t.Run("active strictly inside the window", func(t *testing.T) {
		assert.True(t, cd.Active(baseTime))
		assert.True(t, cd.Active(baseTime.Add(48*time.Hour-time.Nanosecond)))
		assert.False(t, cd.Active(baseTime.Add(48*time.Hour)))
		assert.False(t, cd.Active(baseTime.Add(49*time.Hour)))
	})

	t.Run("progress", func(t *testing.T) {
		assert.Equal(t, 0.0, cd.Progress(baseTime))
		assert.InDelta(t, 0.5, cd.Progress(baseTime.Add(24*time.Hour)), 1e-9)
		assert.Equal(t, 1.0, cd.Progress(baseTime.Add(72*time.Hour)))
		assert.Equal(t, 0.0, cd.Progress(baseTime.Add(-time.Hour)))
	})

	t.Run("remaining never negative", func(t *testing.T) {
		assert.Equal(t, 48*time.Hour, cd.Remaining(baseTime))
		assert.Equal(t, 24*time.Hour, cd.Remaining(baseTime.Add(24*time.Hour)))
		assert.Equal(t, time.Duration(0), cd.Remaining(baseTime.Add(100*time.Hour)))
	})

	t.Run("zero duration is always elapsed", func(t *testing.T) {
		zero := &chaos.Cooldown{LastTriggered: baseTime}
		assert.False(t, zero.Active(baseTime))
		assert.Equal(t, 1.0, zero.Progress(baseTime))
	})
}

func TestDefaultTemplates(t *testing.T) {
	templates := chaos.DefaultTemplates()

	// Every mapped event type carries a template and every template knows
	// its own type.
	for source, types := range chaos.SourceEvents {
		for _, et := range types {
			tmpl, ok := templates[et]
			require.True(t, ok, "missing template for %s", et)
			assert.Equal(t, et, tmpl.Type)
			if !tmpl.CatastrophicOnly {
				assert.Equal(t, source, tmpl.Source, "template %s source mismatch", et)
			}
		}
	}

	for _, et := range chaos.CatastrophicEvents {
		tmpl, ok := templates[et]
		require.True(t, ok)
		assert.True(t, tmpl.CatastrophicOnly, "%s must be catastrophic-gated", et)
	}

	for et, tmpl := range templates {
		assert.Positive(t, tmpl.BaseDuration, "%s duration", et)
		assert.Positive(t, tmpl.BaseCooldown, "%s cooldown", et)
		assert.Positive(t, tmpl.Weight, "%s weight", et)
		assert.Positive(t, tmpl.Rarity, "%s rarity", et)
		for _, target := range tmpl.CascadeTargets {
			_, ok := templates[target]
			assert.True(t, ok, "%s cascade target %s has no template", et, target)
		}
	}
}
