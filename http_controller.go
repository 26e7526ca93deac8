package moderation

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterModerationRoutes mounts the admin console API on the given
// router. Status reads/writes per principal, plus the inbox collaborator
// surface (list, mark read).
func RegisterModerationRoutes[T any](app router.Router[T], opts ...ModerationControllerOption) {

	controller := NewModerationController(opts...)

	app.
		Get(controller.Routes.Status, controller.StatusShow).
		SetName("moderation.status.get")

	app.
		Patch(controller.Routes.Status, controller.StatusUpdate).
		SetName("moderation.status.patch")

	app.
		Get(controller.Routes.Notifications, controller.NotificationsList).
		SetName("moderation.notifications.get")

	app.
		Patch(controller.Routes.NotificationRead, controller.NotificationMarkRead).
		SetName("moderation.notifications.read")
}

type ModerationControllerRoutes struct {
	Status           string
	Notifications    string
	NotificationRead string
}

type ModerationController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Engine       TransitionEngine
	Clock        func() time.Time
	Routes       *ModerationControllerRoutes
	ErrorHandler router.ErrorHandler
}

type ModerationControllerOption func(*ModerationController) *ModerationController

func NewModerationController(opts ...ModerationControllerOption) *ModerationController {
	c := &ModerationController{
		Logger:       defLogger{},
		Clock:        time.Now,
		ErrorHandler: defaultErrHandler,
		Routes: &ModerationControllerRoutes{
			Status:           "/moderation/:kind/:id/status",
			Notifications:    "/moderation/:kind/:id/notifications",
			NotificationRead: "/moderation/notifications/:id/read",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in moderation controller...")
	}

	if c.Engine == nil {
		c.Engine = NewTransitionEngine(
			c.Repo.Accounts(),
			WithEngineNotifier(NewOutboxNotifier(c.Repo.Notifications())),
			WithEngineLogger(c.Logger),
		)
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) ModerationControllerOption {
	return func(c *ModerationController) *ModerationController {
		c.Repo = repo
		return c
	}
}

func WithControllerEngine(engine TransitionEngine) ModerationControllerOption {
	return func(c *ModerationController) *ModerationController {
		c.Engine = engine
		return c
	}
}

func WithControllerLogger(logger Logger) ModerationControllerOption {
	return func(c *ModerationController) *ModerationController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerClock(clock func() time.Time) ModerationControllerOption {
	return func(c *ModerationController) *ModerationController {
		if clock != nil {
			c.Clock = clock
		}
		return c
	}
}

func WithControllerDebug(debug bool) ModerationControllerOption {
	return func(c *ModerationController) *ModerationController {
		c.Debug = debug
		return c
	}
}

// StatusShow returns the stored status projection with the effective status
// resolved at read time. The raw status field is what the listing UI
// renders; effective_status is what enforcement acts on. Both ride in one
// payload so the divergence stays visible instead of silently corrected.
func (a *ModerationController) StatusShow(ctx router.Context) error {
	ref, err := a.principalFromParams(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorBody(err.Error()))
	}

	record, err := a.Repo.Accounts().Get(ctx.Context(), ref)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.JSON(fiber.StatusNotFound, errorBody("account not found"))
		}
		a.Logger.Error("status read error: %v", err)
		return ctx.JSON(fiber.StatusInternalServerError, errorBody("failed to read status"))
	}

	return ctx.JSON(fiber.StatusOK, ProjectStatus(record, a.Clock()))
}

// StatusUpdatePayload is the admin transition request body.
type StatusUpdatePayload struct {
	Status          string `form:"status" json:"status"`
	Reason          string `form:"reason" json:"reason"`
	DurationSeconds int64  `form:"duration_seconds" json:"duration_seconds"`
	ActorID         string `form:"actor_id" json:"actor_id"`
}

// Validate will run validation rules
func (r StatusUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Status,
			validation.Required,
			validation.In(
				StatusActive.String(),
				StatusSuspended.String(),
				StatusInactive.String(),
				StatusTerminated.String(),
			),
		),
		validation.Field(
			&r.DurationSeconds,
			validation.By(validateSuspensionDuration(r.Status)),
		),
	)
}

func validateSuspensionDuration(status string) validation.RuleFunc {
	return func(value interface{}) error {
		seconds, _ := value.(int64)
		if status == StatusSuspended.String() && seconds <= 0 {
			return fmt.Errorf("must be a positive number of seconds")
		}
		return nil
	}
}

func (a *ModerationController) StatusUpdate(ctx router.Context) error {
	ref, err := a.principalFromParams(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorBody(err.Error()))
	}

	payload := new(StatusUpdatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("status update parse payload: %v", err)
		return ctx.JSON(fiber.StatusBadRequest, errorBody("failed to parse payload"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("status update validate payload: %v", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= MODERATION TRANSITION ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("====================================")
	}

	var updated *Account

	req := ApplyTransitionMessage{
		PrincipalID:     ref.ID.String(),
		Kind:            ref.Kind.String(),
		Status:          payload.Status,
		Reason:          payload.Reason,
		DurationSeconds: payload.DurationSeconds,
		ActorID:         payload.ActorID,
		OnResponse: func(record *Account) {
			updated = record
		},
	}

	applyTransition := NewApplyTransitionHandler(a.Engine)
	if err := applyTransition.Execute(ctx.Context(), req); err != nil {
		return a.transitionError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, ProjectStatus(updated, a.Clock()))
}

func (a *ModerationController) NotificationsList(ctx router.Context) error {
	ref, err := a.principalFromParams(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorBody(err.Error()))
	}

	records, err := a.Repo.Notifications().ListForPrincipal(ctx.Context(), ref)
	if err != nil {
		a.Logger.Error("notifications list error: %v", err)
		return ctx.JSON(fiber.StatusInternalServerError, errorBody("failed to list notifications"))
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"notifications": records,
	})
}

func (a *ModerationController) NotificationMarkRead(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorBody("invalid notification id"))
	}

	record, err := a.Repo.Notifications().MarkRead(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.JSON(fiber.StatusNotFound, errorBody("notification not found"))
		}
		a.Logger.Error("notification mark read error: %v", err)
		return ctx.JSON(fiber.StatusInternalServerError, errorBody("failed to update notification"))
	}

	return ctx.JSON(fiber.StatusOK, record)
}

func (a *ModerationController) principalFromParams(ctx router.Context) (PrincipalRef, error) {
	kind, ok := ParseKind(ctx.Param("kind", ""))
	if !ok {
		return PrincipalRef{}, ErrUnknownPrincipalKind
	}

	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return PrincipalRef{}, fmt.Errorf("invalid principal id")
	}

	return PrincipalRef{ID: id, Kind: kind}, nil
}

// transitionError maps engine failures onto the wire: validation to 400,
// unknown principals to 404, anything else to the generic failure message
// the admin UI shows.
func (a *ModerationController) transitionError(ctx router.Context, err error) error {
	if repository.IsRecordNotFound(err) {
		return ctx.JSON(fiber.StatusNotFound, errorBody("account not found"))
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
		return ctx.JSON(fiber.StatusBadRequest, errorBody(richErr.Message))
	}

	a.Logger.Error("status transition error: %v", err)
	return ctx.JSON(fiber.StatusInternalServerError, errorBody("failed to update status"))
}

func errorBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if errs, ok := err.(validation.Errors); ok {
		for field, ferr := range errs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}

func defaultErrHandler(ctx router.Context, err error) error {
	return ctx.JSON(fiber.StatusInternalServerError, errorBody(err.Error()))
}
