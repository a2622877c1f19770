package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sharronesofer/worldchaos/internal/domain/chaos"
)

// logSink delivers fired events to the structured log and the Prometheus
// counters. A narrative backend replaces this in game deployments.
type logSink struct {
	logger *zap.Logger
}

func newLogSink(logger *zap.Logger) *logSink {
	return &logSink{logger: logger}
}

func (s *logSink) Publish(ctx context.Context, e *chaos.Event) error {
	recordPublished(e)
	fields := []zap.Field{
		zap.String("event_id", e.ID.String()),
		zap.String("type", string(e.Type)),
		zap.String("severity", e.Severity.String()),
		zap.Strings("regions", e.Regions),
		zap.Duration("duration", e.Duration),
	}
	if e.ParentID != nil {
		fields = append(fields, zap.String("parent_id", e.ParentID.String()))
	}
	s.logger.Info("chaos event triggered", fields...)
	return nil
}
