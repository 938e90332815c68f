package signup

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Redemptions() Redemptions
}

type mngr struct {
	db          *bun.DB
	users       Users
	redemptions Redemptions
}

func NewRepositoryManager(db *bun.DB, ledgerTTL time.Duration) RepositoryManager {
	return &mngr{
		db:          db,
		users:       NewUsersRepository(db),
		redemptions: NewRedemptionsRepository(db, ledgerTTL),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.redemptions == nil {
		return errors.New("repository redemptions should be initialized")
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

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Redemptions() Redemptions {
	return m.redemptions
}
