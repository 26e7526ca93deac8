package moderation

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ApplyTransitionMessage is the admin-triggered status change request.
// Status, kind, and duration arrive as raw wire values; the handler
// validates them against the closed sets before touching the engine.
type ApplyTransitionMessage struct {
	PrincipalID     string `json:"principal_id" example:"350399bc-c095-4bdc-a59c-3352d44848e4" doc:"Moderated principal id."`
	Kind            string `json:"kind" example:"artist" doc:"Principal kind: user or artist."`
	Status          string `json:"status" example:"suspended" doc:"Requested status."`
	Reason          string `json:"reason" example:"policy violation" doc:"Free-text reason recorded on the account."`
	DurationSeconds int64  `json:"duration_seconds" example:"3600" doc:"Suspension length, required when status is suspended."`
	ActorID         string `json:"actor_id,omitempty" doc:"Admin applying the change."`
	OnResponse      func(updated *Account)
}

func (m ApplyTransitionMessage) Type() string { return "moderation.status.transition" }

type ApplyTransitionHandler struct {
	engine TransitionEngine
}

func NewApplyTransitionHandler(engine TransitionEngine) *ApplyTransitionHandler {
	return &ApplyTransitionHandler{engine: engine}
}

func (h *ApplyTransitionHandler) Execute(ctx context.Context, event ApplyTransitionMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during status transition",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ApplyTransitionHandler) execute(ctx context.Context, event ApplyTransitionMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	id, err := uuid.Parse(event.PrincipalID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid principal id")
	}

	kind, ok := ParseKind(event.Kind)
	if !ok {
		return ErrInvalidStatus.WithMetadata(map[string]any{
			"kind":   event.Kind,
			"reason": "unknown principal kind",
		})
	}

	target, ok := ParseStatus(event.Status)
	if !ok {
		return ErrInvalidStatus.WithMetadata(map[string]any{
			"target": event.Status,
		})
	}

	opts := []TransitionOption{
		WithTransitionReason(event.Reason),
	}
	if event.DurationSeconds > 0 {
		opts = append(opts, WithSuspensionDuration(time.Duration(event.DurationSeconds)*time.Second))
	}

	updated, err := h.engine.Apply(
		ctx,
		ActorRef{ID: event.ActorID, Type: "admin"},
		PrincipalRef{ID: id, Kind: kind},
		target,
		opts...,
	)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(updated)
	}

	return nil
}
