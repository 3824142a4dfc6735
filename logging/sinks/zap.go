package sinks

import (
	"context"

	"go.uber.org/zap"

	"emberwatch/server/logging"
)

// ZapSink forwards events to a zap logger so gameplay events interleave with
// the server's operational logs.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Write(event logging.Event) error {
	fields := []zap.Field{
		zap.Uint64("tick", event.Tick),
		zap.String("actor", formatEntity(event.Actor)),
	}
	if event.Category != "" {
		fields = append(fields, zap.String("category", event.Category))
	}
	if len(event.Targets) > 0 {
		ids := make([]string, 0, len(event.Targets))
		for _, t := range event.Targets {
			ids = append(ids, formatEntity(t))
		}
		fields = append(fields, zap.Strings("targets", ids))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	for k, v := range event.Extra {
		fields = append(fields, zap.Any(k, v))
	}
	switch event.Severity {
	case logging.SeverityDebug:
		s.logger.Debug(string(event.Type), fields...)
	case logging.SeverityWarn:
		s.logger.Warn(string(event.Type), fields...)
	case logging.SeverityError:
		s.logger.Error(string(event.Type), fields...)
	default:
		s.logger.Info(string(event.Type), fields...)
	}
	return nil
}

func (s *ZapSink) Close(context.Context) error {
	return s.logger.Sync()
}
