package moderation

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// RepositoryManager aggregates the persistence surface the moderation core
// needs. Implemented by the repository package; host apps can swap in their
// own as long as the contract holds.
type RepositoryManager interface {
	Accounts() Accounts
	Notifications() Notifications
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	MustValidate()
}
