package moderation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the moderation view over both principal tables. One
// implementation serves users and artists; the table is selected per call
// from the PrincipalRef kind.
type Accounts interface {
	Get(ctx context.Context, ref PrincipalRef) (*Account, error)
	GetTx(ctx context.Context, tx bun.IDB, ref PrincipalRef) (*Account, error)

	Create(ctx context.Context, record *Account) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)

	UpdateStatus(ctx context.Context, ref PrincipalRef, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, ref PrincipalRef, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
}

type accounts struct {
	db *bun.DB
}

var _ Accounts = (*accounts)(nil)

func NewAccountsRepository(db *bun.DB) Accounts {
	return &accounts{db: db}
}

// StatusUpdateOption mutates the persisted columns of a status change. Only
// columns an option names are written, so a terminate leaves stale
// suspension timestamps untouched while a reactivate clears them.
type StatusUpdateOption func(*StatusUpdate)

// StatusUpdate carries the record fields and column set a status change
// writes. Exposed so alternate Accounts implementations can fold the same
// options.
type StatusUpdate struct {
	Record  Account
	Columns []string
}

// NewStatusUpdate folds options into the column writes of a status change.
func NewStatusUpdate(status AccountStatus, opts ...StatusUpdateOption) *StatusUpdate {
	now := time.Now()
	upd := &StatusUpdate{
		Record:  Account{Status: status, UpdatedAt: &now},
		Columns: []string{"status", "updated_at"},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(upd)
		}
	}

	return upd
}

// Writes reports whether the update touches the given column.
func (u *StatusUpdate) Writes(column string) bool {
	for _, c := range u.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// WithSuspensionReason records the free-text reason alongside the status.
func WithSuspensionReason(reason string) StatusUpdateOption {
	return func(u *StatusUpdate) {
		u.Record.SuspensionReason = &reason
		u.Columns = append(u.Columns, "suspension_reason")
	}
}

// WithSuspensionWindow records the [start, end] window of a suspension.
func WithSuspensionWindow(start, end time.Time) StatusUpdateOption {
	return func(u *StatusUpdate) {
		u.Record.SuspensionStart = &start
		u.Record.SuspensionEnd = &end
		u.Columns = append(u.Columns, "suspension_start", "suspension_end")
	}
}

// WithSuspensionCleared nulls reason, start, and end in one write.
func WithSuspensionCleared() StatusUpdateOption {
	return func(u *StatusUpdate) {
		u.Record.SuspensionReason = nil
		u.Record.SuspensionStart = nil
		u.Record.SuspensionEnd = nil
		u.Columns = append(u.Columns, "suspension_reason", "suspension_start", "suspension_end")
	}
}

func (a *accounts) Get(ctx context.Context, ref PrincipalRef) (*Account, error) {
	return a.GetTx(ctx, a.db, ref)
}

func (a *accounts) GetTx(ctx context.Context, tx bun.IDB, ref PrincipalRef) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		ModelTableExpr("? AS acct", bun.Ident(ref.Kind.Table())).
		Where("acct.id = ?", ref.ID).
		Where("acct.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id":   ref.ID.String(),
					"kind": ref.Kind.String(),
				})
		}
		return nil, err
	}

	record.Kind = ref.Kind
	record.EnsureStatus()

	return record, nil
}

func (a *accounts) Create(ctx context.Context, record *Account) (*Account, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	prepareAccountDefaults(record)

	_, err := tx.NewInsert().
		Model(record).
		ModelTableExpr("? AS acct", bun.Ident(record.Kind.Table())).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (a *accounts) UpdateStatus(ctx context.Context, ref PrincipalRef, status AccountStatus, opts ...StatusUpdateOption) (*Account, error) {
	return a.UpdateStatusTx(ctx, a.db, ref, status, opts...)
}

// UpdateStatusTx is a plain read-modify-write: no row lock guards the
// suspension columns, so concurrent admin actions on one principal resolve
// last-writer-wins.
func (a *accounts) UpdateStatusTx(ctx context.Context, tx bun.IDB, ref PrincipalRef, status AccountStatus, opts ...StatusUpdateOption) (*Account, error) {
	upd := NewStatusUpdate(status, opts...)
	upd.Record.ID = ref.ID

	res, err := tx.NewUpdate().
		Model(&upd.Record).
		ModelTableExpr("? AS acct", bun.Ident(ref.Kind.Table())).
		Column(upd.Columns...).
		Where("acct.id = ?", ref.ID).
		Where("acct.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id":   ref.ID.String(),
				"kind": ref.Kind.String(),
			})
	}

	return a.GetTx(ctx, tx, ref)
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.Kind == "" {
		record.Kind = KindUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// NewRepositoryStatusFetcher adapts the Accounts repository to the
// StatusFetcher contract used by the enforcement poller and the admin read
// path. The clock is injectable so read-site expiry resolution is testable.
func NewRepositoryStatusFetcher(repo Accounts, clock func() time.Time) StatusFetcher {
	if clock == nil {
		clock = time.Now
	}
	return StatusFetcherFunc(func(ctx context.Context, ref PrincipalRef) (*StatusProjection, error) {
		record, err := repo.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		return ProjectStatus(record, clock()), nil
	})
}
