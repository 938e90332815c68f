package signup

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ActivateAccountMessage struct {
	Token      string `json:"activation_token"`
	Code       string `json:"activation_code"`
	OnResponse func(*ActivateAccountResponse)
}

func (e ActivateAccountMessage) Type() string { return "user.activate_account" }

type ActivateAccountResponse struct {
	User  *User        `json:"user,omitempty"`
	State AttemptState `json:"state,omitempty"`
}

// ActivateAccountHandler runs the redemption path. Gates run in a fixed
// order and the first failure short circuits: replay check, token
// verification, code comparison, user lookup, verified flag update, ledger
// write.
type ActivateAccountHandler struct {
	repo   RepositoryManager
	tokens *ActivationService
	logger Logger
}

func NewActivateAccountHandler(repo RepositoryManager, tokens *ActivationService) *ActivateAccountHandler {
	return &ActivateAccountHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *ActivateAccountHandler) WithLogger(logger Logger) *ActivateAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ActivateAccountHandler) Execute(ctx context.Context, event ActivateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateAccountHandler) execute(ctx context.Context, event ActivateAccountMessage) error {
	att := newAttempt()
	resp := &ActivateAccountResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := att.advance(StateRedemptionPending); err != nil {
		return err
	}

	redeemed, err := h.repo.Redemptions().IsRedeemed(ctx, event.Token)
	if err != nil {
		return att.reject(err)
	}
	if redeemed {
		return att.reject(ErrTokenRedeemed)
	}

	claims, err := h.tokens.Verify(event.Token)
	if err != nil {
		return att.reject(err)
	}

	if claims.Code != event.Code {
		return att.reject(ErrCodeMismatch)
	}

	var user *User

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := h.repo.Users().GetByEmailTx(ctx, tx, claims.Draft.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return sentinelWithMetadata(ErrUserNotFound, map[string]any{
					"email": claims.Draft.Email,
				})
			}
			return goerrors.Wrap(err, goerrors.CategoryExternal, "failed to look up user draft")
		}

		if user, err = h.repo.Users().MarkVerifiedTx(ctx, tx, record.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryExternal, "failed to mark user verified")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return att.reject(richErr)
		}
		return att.reject(goerrors.Wrap(err, goerrors.CategoryInternal, "account activation transaction failed"))
	}

	// The ledger write is the replay lock. Losing the insert means a
	// concurrent redemption of this token already won; a storage failure is
	// logged but does not undo an activation that already happened.
	inserted, err := h.repo.Redemptions().Record(ctx, event.Token)
	if err != nil {
		h.logger.Warn("activation succeeded but ledger write failed", "email", claims.Draft.Email, "error", err)
	} else if !inserted {
		return att.reject(ErrTokenRedeemed)
	}

	if err := att.advance(StateActivated); err != nil {
		return err
	}

	resp.User = user
	resp.State = att.State()

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
