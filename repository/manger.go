package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-moderation"
	"github.com/uptrace/bun"
)

type mngr struct {
	db            *bun.DB
	accounts      moderation.Accounts
	notifications moderation.Notifications
}

func NewRepositoryManager(db *bun.DB) moderation.RepositoryManager {
	return &mngr{
		db:            db,
		accounts:      moderation.NewAccountsRepository(db),
		notifications: moderation.NewNotificationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	if m.notifications == nil {
		return errors.New("repository notifications should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Accounts() moderation.Accounts {
	return m.accounts
}

func (m mngr) Notifications() moderation.Notifications {
	return m.notifications
}
