package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/env"
)

// logObserver writes Env lifecycle events to zap.
type logObserver struct {
	log *zap.Logger
}

func (o *logObserver) OnEnvEvent(e env.Event) {
	fields := []zap.Field{
		zap.String("call_id", e.EnvID.String()),
		zap.Uint64("generation", e.Generation),
	}

	switch e.Type {
	case env.EventScopeViolation:
		o.log.Warn("handle scope violation", append(fields,
			zap.Stringer("handle", e.Handle),
			zap.String("detail", e.Detail))...)
	case env.EventClosed:
		o.log.Debug("env closed", append(fields,
			zap.Int("handles", e.Handles),
			zap.Int("round_trips", e.RoundTrips))...)
	case env.EventEscaped:
		o.log.Debug("handle escaped", append(fields, zap.Stringer("handle", e.Handle))...)
	case env.EventOpened:
		o.log.Debug("env opened", fields...)
	}
}
