package moderation

import "context"

// Notifier appends a user-facing notification describing a status change.
// Emission is best-effort by contract: the transition engine logs and
// swallows failures, the status mutation is never rolled back because an
// inbox write failed.
type Notifier interface {
	Emit(ctx context.Context, record *Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, record *Notification) error

// Emit implements Notifier.
func (f NotifierFunc) Emit(ctx context.Context, record *Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, record)
}

type noopNotifier struct{}

func (noopNotifier) Emit(context.Context, *Notification) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// NewOutboxNotifier returns the default Notifier: a decoupled write to the
// notifications table through the repository. Failures surface to the
// engine's error channel, not to the transition.
func NewOutboxNotifier(repo Notifications) Notifier {
	return NotifierFunc(func(ctx context.Context, record *Notification) error {
		_, err := repo.Append(ctx, record)
		return err
	})
}
