package moderation

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventStatusChanged      ActivityEventType = "moderation.status.changed"
	ActivityEventNotificationFailed ActivityEventType = "moderation.notification.failed"
	ActivityEventSessionBlocked     ActivityEventType = "moderation.session.blocked"
)

// ActivityEvent captures audit-friendly information about a moderation
// action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	Principal  PrincipalRef
	FromStatus AccountStatus
	ToStatus   AccountStatus
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort (errors are logged) so you can forward to a
// database or queue without blocking a transition.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
