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

// Notifications is the append-mostly inbox store. Rows are created by the
// transition engine and only ever mutated by MarkRead.
type Notifications interface {
	repository.Repository[*Notification]

	Append(ctx context.Context, record *Notification) (*Notification, error)
	AppendTx(ctx context.Context, tx bun.IDB, record *Notification) (*Notification, error)

	ListForPrincipal(ctx context.Context, ref PrincipalRef) ([]*Notification, error)
	ListForPrincipalTx(ctx context.Context, tx bun.IDB, ref PrincipalRef) ([]*Notification, error)

	MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error)
	MarkReadTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Notification, error)
}

type notifications struct {
	repository.Repository[*Notification]
	db *bun.DB
}

var (
	_ Notifications                        = (*notifications)(nil)
	_ repository.Repository[*Notification] = (*notifications)(nil)
)

func NewNotificationsRepository(db *bun.DB) Notifications {
	repo := repository.NewRepository[*Notification](db, repository.ModelHandlers[*Notification]{
		NewRecord: func() *Notification { return &Notification{} },
		GetID: func(n *Notification) uuid.UUID {
			if n == nil {
				return uuid.Nil
			}
			return n.ID
		},
		SetID: func(n *Notification, id uuid.UUID) {
			if n != nil {
				n.ID = id
			}
		},
	})

	return &notifications{
		Repository: repo,
		db:         db,
	}
}

func (r *notifications) Append(ctx context.Context, record *Notification) (*Notification, error) {
	return r.AppendTx(ctx, r.db, record)
}

func (r *notifications) AppendTx(ctx context.Context, tx bun.IDB, record *Notification) (*Notification, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Type == "" {
		record.Type = NotificationTypeAccountStatus
	}
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}

	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *notifications) ListForPrincipal(ctx context.Context, ref PrincipalRef) ([]*Notification, error) {
	return r.ListForPrincipalTx(ctx, r.db, ref)
}

func (r *notifications) ListForPrincipalTx(ctx context.Context, tx bun.IDB, ref PrincipalRef) ([]*Notification, error) {
	records := []*Notification{}

	err := tx.NewSelect().
		Model(&records).
		Where("ntf.principal_id = ?", ref.ID).
		Where("ntf.principal_kind = ?", ref.Kind).
		Order("ntf.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *notifications) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return r.MarkReadTx(ctx, r.db, id)
}

func (r *notifications) MarkReadTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Notification, error) {
	record := &Notification{ID: id, IsRead: true}

	res, err := tx.NewUpdate().
		Model(record).
		Column("is_read").
		Where("ntf.id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	err = tx.NewSelect().
		Model(record).
		Where("ntf.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}
