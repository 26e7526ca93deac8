package moderation

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PrincipalKind partitions moderated accounts. Users and artists live in
// separate tables with an identical moderation shape.
type PrincipalKind string

const (
	// KindUser is a client account booking performers
	KindUser PrincipalKind = "user"
	// KindArtist is a performer account receiving bookings
	KindArtist PrincipalKind = "artist"
)

// ParseKind validates a raw kind string.
func ParseKind(s string) (PrincipalKind, bool) {
	switch PrincipalKind(s) {
	case KindUser:
		return KindUser, true
	case KindArtist:
		return KindArtist, true
	}
	return "", false
}

// Table returns the storage table backing the kind.
func (k PrincipalKind) Table() string {
	if k == KindArtist {
		return "artists"
	}
	return "users"
}

func (k PrincipalKind) String() string {
	return string(k)
}

// AccountStatus is the moderation status of a principal
type AccountStatus string

const (
	// StatusActive is the default status, account in good standing
	StatusActive AccountStatus = "active"
	// StatusSuspended is a time-bound restriction, lapses at SuspensionEnd
	StatusSuspended AccountStatus = "suspended"
	// StatusInactive is a non-time-bound deactivation
	StatusInactive AccountStatus = "inactive"
	// StatusTerminated is a permanent ban, no automatic recovery
	StatusTerminated AccountStatus = "terminated"
)

// ParseStatus validates a raw status against the closed set.
func ParseStatus(s string) (AccountStatus, bool) {
	switch AccountStatus(s) {
	case StatusActive, StatusSuspended, StatusInactive, StatusTerminated:
		return AccountStatus(s), true
	}
	return "", false
}

func (s AccountStatus) String() string {
	return string(s)
}

// Account is the moderated view of a principal. The bun table tag covers the
// user kind; the repository swaps the table expression for artists.
type Account struct {
	bun.BaseModel    `bun:"table:users,alias:acct"`
	ID               uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Kind             PrincipalKind `bun:"-" json:"kind,omitempty"`
	Status           AccountStatus `bun:"status,notnull" json:"status,omitempty"`
	SuspensionReason *string       `bun:"suspension_reason" json:"suspension_reason,omitempty"`
	SuspensionStart  *time.Time    `bun:"suspension_start,nullzero" json:"suspension_start,omitempty"`
	SuspensionEnd    *time.Time    `bun:"suspension_end,nullzero" json:"suspension_end,omitempty"`
	CreatedAt        *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt        *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus defaults a zero status to active, matching the implicit
// record created at registration time.
func (a *Account) EnsureStatus() {
	if a.Status == "" {
		a.Status = StatusActive
	}
}

// IsActive checks the stored status, not the effective one
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

func (a *Account) IsSuspended() bool {
	return a.Status == StatusSuspended
}

func (a *Account) IsTerminated() bool {
	return a.Status == StatusTerminated
}

func (a *Account) IsInactive() bool {
	return a.Status == StatusInactive
}

// EffectiveStatus resolves time-based expiry against the stored status.
// Advisory only, the stored record is never mutated here.
func (a *Account) EffectiveStatus(now time.Time) AccountStatus {
	return ResolveEffectiveStatus(a.Status, a.SuspensionEnd, now)
}

// Ref returns the principal reference for the account.
func (a *Account) Ref() PrincipalRef {
	return PrincipalRef{ID: a.ID, Kind: a.Kind}
}

// StatusProjection is the subset of Account returned by status reads and
// transition results.
type StatusProjection struct {
	ID               uuid.UUID     `json:"id"`
	Kind             PrincipalKind `json:"kind"`
	Status           AccountStatus `json:"status"`
	EffectiveStatus  AccountStatus `json:"effective_status"`
	SuspensionReason *string       `json:"suspension_reason,omitempty"`
	SuspensionEnd    *time.Time    `json:"suspension_end,omitempty"`
}

// ProjectStatus builds the wire projection for an account, resolving the
// effective status at the given instant.
func ProjectStatus(account *Account, now time.Time) *StatusProjection {
	return &StatusProjection{
		ID:               account.ID,
		Kind:             account.Kind,
		Status:           account.Status,
		EffectiveStatus:  account.EffectiveStatus(now),
		SuspensionReason: account.SuspensionReason,
		SuspensionEnd:    account.SuspensionEnd,
	}
}

// Resolve recomputes the effective status from the projection's own fields.
// Shares the comparison with Account.EffectiveStatus so the poller and
// server reads cannot disagree by a tick.
func (p *StatusProjection) Resolve(now time.Time) AccountStatus {
	return ResolveEffectiveStatus(p.Status, p.SuspensionEnd, now)
}

// Reason returns the recorded reason or an empty string.
func (p *StatusProjection) Reason() string {
	if p.SuspensionReason == nil {
		return ""
	}
	return *p.SuspensionReason
}

// NotificationTypeAccountStatus tags notifications produced by status
// transitions.
const NotificationTypeAccountStatus = "account_status"

// Notification is an inbox row appended as a transition side effect.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:ntf"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PrincipalID   uuid.UUID     `bun:"principal_id,notnull,type:uuid" json:"principal_id,omitempty"`
	PrincipalKind PrincipalKind `bun:"principal_kind,notnull" json:"principal_kind,omitempty"`
	Title         string        `bun:"title,notnull" json:"title,omitempty"`
	Message       string        `bun:"message" json:"message,omitempty"`
	Type          string        `bun:"type,notnull" json:"type,omitempty"`
	IsRead        bool          `bun:"is_read" json:"is_read"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
