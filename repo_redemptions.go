package signup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Redemptions is the ledger of consumed activation tokens.
type Redemptions interface {
	// IsRedeemed reports whether a live (non expired) redemption record
	// exists for the token. Expired records count as absent.
	IsRedeemed(ctx context.Context, token string) (bool, error)
	IsRedeemedTx(ctx context.Context, tx bun.IDB, token string) (bool, error)

	// Record writes the redemption mark. It is an atomic insert-if-absent
	// keyed by the token digest: the returned bool is true when this call
	// inserted the row, false when another redemption already holds it.
	Record(ctx context.Context, token string) (bool, error)
	RecordTx(ctx context.Context, tx bun.IDB, token string) (bool, error)

	// PurgeExpired removes records past their retention window and returns
	// how many were deleted.
	PurgeExpired(ctx context.Context) (int, error)
}

type redemptions struct {
	repository.Repository[*Redemption]
	db        *bun.DB
	retention time.Duration
	now       func() time.Time
}

var _ Redemptions = (*redemptions)(nil)

type RedemptionsOption func(*redemptions)

// WithRedemptionsClock injects a custom clock (useful for tests).
func WithRedemptionsClock(clock func() time.Time) RedemptionsOption {
	return func(r *redemptions) {
		if clock != nil {
			r.now = clock
		}
	}
}

func NewRedemptionsRepository(db *bun.DB, retention time.Duration, opts ...RedemptionsOption) Redemptions {
	repo := repository.NewRepository[*Redemption](db, repository.ModelHandlers[*Redemption]{
		NewRecord: func() *Redemption { return &Redemption{} },
		GetID: func(r *Redemption) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Redemption, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token_digest"
		},
	})

	if retention <= 0 {
		retention = DefaultLedgerTTL
	}

	ledger := &redemptions{
		Repository: repo,
		db:         db,
		retention:  retention,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ledger)
		}
	}

	return ledger
}

func (a *redemptions) IsRedeemed(ctx context.Context, token string) (bool, error) {
	return a.IsRedeemedTx(ctx, a.db, token)
}

func (a *redemptions) IsRedeemedTx(ctx context.Context, tx bun.IDB, token string) (bool, error) {
	// The count has to be inspected, not the query result's mere presence:
	// an empty result set is still a result set.
	count, err := tx.NewSelect().
		Model((*Redemption)(nil)).
		Where("?TableAlias.token_digest = ?", TokenDigest(token)).
		Where("?TableAlias.expires_at > ?", a.now()).
		Count(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to query redemption ledger")
	}

	return count > 0, nil
}

func (a *redemptions) Record(ctx context.Context, token string) (bool, error) {
	return a.RecordTx(ctx, a.db, token)
}

func (a *redemptions) RecordTx(ctx context.Context, tx bun.IDB, token string) (bool, error) {
	now := a.now()
	record := &Redemption{
		ID:          uuid.New(),
		TokenDigest: TokenDigest(token),
		RecordedAt:  &now,
		ExpiresAt:   now.Add(a.retention),
	}

	res, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (token_digest) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to write redemption record")
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to inspect redemption write")
	}

	return inserted > 0, nil
}

func (a *redemptions) PurgeExpired(ctx context.Context) (int, error) {
	res, err := a.db.NewDelete().
		Model((*Redemption)(nil)).
		Where("?TableAlias.expires_at <= ?", a.now()).
		Exec(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to purge redemption ledger")
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to inspect ledger purge")
	}

	return int(deleted), nil
}

// TokenDigest is the ledger key for a token. Storing a digest instead of the
// raw credential keeps live tokens out of the database.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
