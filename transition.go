package moderation

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidStatus   = "INVALID_ACCOUNT_STATUS"
	textCodeInvalidDuration = "INVALID_SUSPENSION_DURATION"
)

// DefaultTransitionReason is recorded when an admin submits a transition
// without a reason.
const DefaultTransitionReason = "No reason provided"

// Notification copy per transition branch. Reactivation is the only branch
// whose copy depends on the prior stored status.
const (
	titleSuspended   = "Account Suspended"
	titleTerminated  = "Account Terminated"
	titleRestored    = "Account Restored"
	titleLifted      = "Suspension Lifted"
	titleReactivated = "Account Reactivated"

	messageRestored    = "Your account has been fully restored. Welcome back to the platform."
	messageLifted      = "The restriction on your account has been lifted. Welcome back."
	messageReactivated = "Your account is active again."
)

// ErrInvalidStatus is returned when a requested status is outside the closed
// set of account statuses.
var ErrInvalidStatus = goerrors.New("invalid account status", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidStatus).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidDuration is returned when a suspension is requested without a
// positive duration.
var ErrInvalidDuration = goerrors.New("suspension requires a positive duration", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidDuration).
	WithCode(goerrors.CodeBadRequest)

// ActorRef identifies who/what triggered a transition.
type ActorRef struct {
	ID   string
	Type string
}

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Duration time.Duration
	Metadata map[string]any
}

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	Actor     ActorRef
	Principal PrincipalRef
	From      AccountStatus
	To        AccountStatus
	Meta      TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase identifies whether a hook ran before or after
// persistence.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// TransitionOption customizes a single Apply call.
type TransitionOption func(*transitionOptions)

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// EngineOption customizes engine construction.
type EngineOption func(*transitionEngine)

// TransitionEngine validates and applies admin-requested status changes,
// computing derived suspension fields and emitting the matching inbox
// notification plus an audit event. Notification and audit failures never
// fail the mutation.
type TransitionEngine interface {
	Apply(ctx context.Context, actor ActorRef, ref PrincipalRef, target AccountStatus, opts ...TransitionOption) (*Account, error)
}

// WithEngineClock injects a custom clock (useful for tests).
func WithEngineClock(clock func() time.Time) EngineOption {
	return func(e *transitionEngine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithEngineNotifier sets the Notifier that receives inbox notifications.
func WithEngineNotifier(n Notifier) EngineOption {
	return func(e *transitionEngine) {
		e.notifier = normalizeNotifier(n)
	}
}

// WithEngineActivitySink sets the ActivitySink used to publish audit events.
func WithEngineActivitySink(sink ActivitySink) EngineOption {
	return func(e *transitionEngine) {
		e.activitySink = normalizeActivitySink(sink)
	}
}

// WithEngineLogger overrides the logger used for sink and notifier failures.
func WithEngineLogger(logger Logger) EngineOption {
	return func(e *transitionEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEngineHookErrorHandler overrides how hook failures are propagated.
// Provide a handler to convert hook errors into domain-specific responses,
// otherwise the default handler panics with guidance for developers.
func WithEngineHookErrorHandler(handler HookErrorHandler) EngineOption {
	return func(e *transitionEngine) {
		if handler != nil {
			e.hookErrorHandler = handler
		}
	}
}

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithSuspensionDuration sets how long a suspension lasts. Required for
// transitions into the suspended status.
func WithSuspensionDuration(d time.Duration) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Duration = d
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithSuspensionTime overrides the timestamp recorded as the suspension
// start.
func WithSuspensionTime(t time.Time) TransitionOption {
	return func(opts *transitionOptions) {
		opts.suspensionTime = &t
	}
}

// WithBeforeTransitionHook adds a hook executed before the status update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the status update
// succeeds.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

// NewTransitionEngine returns the default implementation backed by the
// provided Accounts repository.
func NewTransitionEngine(accounts Accounts, opts ...EngineOption) TransitionEngine {
	e := &transitionEngine{
		accounts:     accounts,
		now:          time.Now,
		notifier:     noopNotifier{},
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		hookErrorHandler: func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
			return defaultHookErrorHandler(ctx, phase, err, tc)
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

type transitionEngine struct {
	accounts         Accounts
	now              func() time.Time
	notifier         Notifier
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

type transitionOptions struct {
	metadata       TransitionMetadata
	suspensionTime *time.Time
	beforeHooks    []TransitionHook
	afterHooks     []TransitionHook
}

func (o *transitionOptions) cloneMetadata() TransitionMetadata {
	var cloned map[string]any
	if len(o.metadata.Metadata) > 0 {
		cloned = make(map[string]any, len(o.metadata.Metadata))
		for k, v := range o.metadata.Metadata {
			cloned[k] = v
		}
	}

	return TransitionMetadata{
		Reason:   o.metadata.Reason,
		Duration: o.metadata.Duration,
		Metadata: cloned,
	}
}

func (o *transitionOptions) reasonOrDefault() string {
	if o.metadata.Reason == "" {
		return DefaultTransitionReason
	}
	return o.metadata.Reason
}

// Apply executes the requested transition. Unlike the auth lifecycle
// machines this engine has no transition graph: every member of the closed
// set is reachable from every other, lifting a permanent ban included. The
// read-modify-write is unsynchronized; concurrent admin actions on the same
// principal resolve last-writer-wins.
func (e *transitionEngine) Apply(ctx context.Context, actor ActorRef, ref PrincipalRef, target AccountStatus, opts ...TransitionOption) (*Account, error) {
	if _, ok := ParseKind(ref.Kind.String()); !ok {
		return nil, ErrInvalidStatus.WithMetadata(map[string]any{
			"kind":   ref.Kind.String(),
			"reason": "unknown principal kind",
		})
	}

	if _, ok := ParseStatus(target.String()); !ok {
		return nil, ErrInvalidStatus.WithMetadata(map[string]any{
			"target": target.String(),
		})
	}

	options := e.buildTransitionOptions(opts...)

	// Prior stored status decides the reactivation copy, so the read has
	// to happen before the write.
	current, err := e.accounts.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	from := current.Status

	ctxData := TransitionContext{
		Actor:     actor,
		Principal: ref,
		From:      from,
		To:        target,
		Meta:      options.cloneMetadata(),
	}

	if err := e.runHooks(ctx, options.beforeHooks, ctxData, HookPhaseBefore); err != nil {
		return nil, err
	}

	statusOpts, notification, err := e.buildStatusOptions(from, target, options)
	if err != nil {
		return nil, err
	}

	updated, err := e.accounts.UpdateStatus(ctx, ref, target, statusOpts...)
	if err != nil {
		return nil, err
	}

	if err := e.runHooks(ctx, options.afterHooks, ctxData, HookPhaseAfter); err != nil {
		return nil, err
	}

	e.notify(ctx, ref, notification)

	e.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventStatusChanged,
		Actor:      actor,
		Principal:  ref,
		FromStatus: from,
		ToStatus:   target,
		Metadata:   e.transitionMetadata(ctxData.Meta),
	})

	return updated, nil
}

// buildStatusOptions maps a branch to the columns it writes and the
// notification it emits. A nil notification means the branch is silent
// (inactive).
func (e *transitionEngine) buildStatusOptions(from, target AccountStatus, opts *transitionOptions) ([]StatusUpdateOption, *Notification, error) {
	reason := opts.reasonOrDefault()

	switch target {
	case StatusSuspended:
		if opts.metadata.Duration <= 0 {
			return nil, nil, ErrInvalidDuration.WithMetadata(map[string]any{
				"duration": opts.metadata.Duration.String(),
			})
		}

		start := e.now()
		if opts.suspensionTime != nil {
			start = *opts.suspensionTime
		}
		end := start.Add(opts.metadata.Duration)

		return []StatusUpdateOption{
				WithSuspensionReason(reason),
				WithSuspensionWindow(start, end),
			}, &Notification{
				Title:   titleSuspended,
				Message: reason,
			}, nil

	case StatusActive:
		notification := &Notification{Title: titleReactivated, Message: messageReactivated}
		switch from {
		case StatusTerminated:
			notification = &Notification{Title: titleRestored, Message: messageRestored}
		case StatusSuspended:
			notification = &Notification{Title: titleLifted, Message: messageLifted}
		}

		return []StatusUpdateOption{WithSuspensionCleared()}, notification, nil

	case StatusTerminated:
		// Stale suspension timestamps survive a terminate on purpose;
		// only status and reason are written.
		return []StatusUpdateOption{
				WithSuspensionReason(reason),
			}, &Notification{
				Title:   titleTerminated,
				Message: reason,
			}, nil

	default: // StatusInactive, silent branch
		return []StatusUpdateOption{WithSuspensionReason(reason)}, nil, nil
	}
}

// notify fires the inbox write. Failures are logged and recorded as audit
// events, never surfaced: the status mutation already happened and stays.
func (e *transitionEngine) notify(ctx context.Context, ref PrincipalRef, notification *Notification) {
	if notification == nil {
		return
	}

	notification.PrincipalID = ref.ID
	notification.PrincipalKind = ref.Kind
	notification.Type = NotificationTypeAccountStatus

	if err := normalizeNotifier(e.notifier).Emit(ctx, notification); err != nil {
		e.logger.Error("transition notification emit error: %v", err)
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventNotificationFailed,
			Principal: ref,
			Metadata: map[string]any{
				"title": notification.Title,
				"error": err.Error(),
			},
		})
	}
}

func (e *transitionEngine) runHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if e.hookErrorHandler == nil {
				return err
			}
			return e.hookErrorHandler(ctx, phase, err, data)
		}
	}
	return nil
}

func (e *transitionEngine) buildTransitionOptions(opts ...TransitionOption) *transitionOptions {
	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

func defaultHookErrorHandler(_ context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
	panic(fmt.Sprintf(
		"go-moderation: %s transition hook failed: %v\nPrincipal: %s from=%s to=%s reason=%s\nProvide moderation.WithEngineHookErrorHandler to customize error handling in production.",
		phase,
		err,
		tc.Principal,
		tc.From,
		tc.To,
		tc.Meta.Reason,
	))
}

func (e *transitionEngine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}

	sink := normalizeActivitySink(e.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		e.logger.Error("transition activity sink error: %v", err)
	}
}

func (e *transitionEngine) transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && meta.Duration == 0 && len(meta.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if meta.Reason != "" {
		result["reason"] = meta.Reason
	}
	if meta.Duration > 0 {
		result["duration_seconds"] = int64(meta.Duration.Seconds())
	}
	for k, v := range meta.Metadata {
		result[k] = v
	}
	return result
}
