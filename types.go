package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// PrincipalRef identifies a moderated account across both kinds.
type PrincipalRef struct {
	ID   uuid.UUID     `json:"id"`
	Kind PrincipalKind `json:"kind"`
}

func (r PrincipalRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Session holds the attributes of an authenticated session this core
// consumes. Token minting and verification live with the credential layer.
type Session interface {
	GetPrincipalID() string
	GetPrincipalUUID() (uuid.UUID, error)
	GetKind() PrincipalKind
	GetIssuedAt() *time.Time
	Principal() (PrincipalRef, error)
}

// StatusFetcher retrieves the current status projection for a principal.
// The server-side implementation reads through the Accounts repository; the
// poller consumes it over whatever transport the host app provides.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, ref PrincipalRef) (*StatusProjection, error)
}

// StatusFetcherFunc adapts a function to the StatusFetcher interface.
type StatusFetcherFunc func(ctx context.Context, ref PrincipalRef) (*StatusProjection, error)

func (f StatusFetcherFunc) FetchStatus(ctx context.Context, ref PrincipalRef) (*StatusProjection, error) {
	return f(ctx, ref)
}

// CredentialStore clears local session credentials when enforcement kicks a
// principal out.
type CredentialStore interface {
	Clear(ctx context.Context) error
}

// CredentialStoreFunc adapts a function to the CredentialStore interface.
type CredentialStoreFunc func(ctx context.Context) error

func (f CredentialStoreFunc) Clear(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] MODERATION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] MODERATION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] MODERATION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
