package signup_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-signup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLifecycleAgainstStore(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := signup.NewRepositoryManager(db, time.Hour)
	require.NoError(t, repo.Validate())

	service, err := signup.NewActivationService(testConfig())
	require.NoError(t, err)

	mailer := &capturingMailer{}

	var signupResp *signup.SignupRequestResponse

	err = signup.NewSignupRequestHandler(repo, service).
		WithMailer(mailer).
		WithLogger(testLogger{}).
		Execute(ctx, signup.SignupRequestMessage{
			Name:     "Pepe Rone",
			Email:    "pepe.rone@example.com",
			Password: "password12345",
			OnResponse: func(r *signup.SignupRequestResponse) {
				signupResp = r
			},
		})
	require.NoError(t, err)
	require.NotNil(t, signupResp)

	// the persisted draft is unverified and carries a hash, not the password
	draft, err := repo.Users().GetByEmail(ctx, "pepe.rone@example.com")
	require.NoError(t, err)
	assert.False(t, draft.IsVerified)
	assert.NotEmpty(t, draft.PasswordHash)
	assert.NotEqual(t, "password12345", draft.PasswordHash)

	claims, err := service.Verify(signupResp.ActivationToken)
	require.NoError(t, err)

	var activateResp *signup.ActivateAccountResponse

	err = signup.NewActivateAccountHandler(repo, service).
		WithLogger(testLogger{}).
		Execute(ctx, signup.ActivateAccountMessage{
			Token: signupResp.ActivationToken,
			Code:  claims.Code,
			OnResponse: func(r *signup.ActivateAccountResponse) {
				activateResp = r
			},
		})
	require.NoError(t, err)
	require.NotNil(t, activateResp)
	assert.Equal(t, signup.StateActivated, activateResp.State)

	verified, err := repo.Users().GetByEmail(ctx, "pepe.rone@example.com")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	redeemed, err := repo.Redemptions().IsRedeemed(ctx, signupResp.ActivationToken)
	require.NoError(t, err)
	assert.True(t, redeemed)
}

func TestConcurrentRedemptionSingleActivation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := signup.NewRepositoryManager(db, time.Hour)

	service, err := signup.NewActivationService(testConfig())
	require.NoError(t, err)

	var signupResp *signup.SignupRequestResponse

	err = signup.NewSignupRequestHandler(repo, service).
		WithLogger(testLogger{}).
		Execute(ctx, signup.SignupRequestMessage{
			Name:     "Pepe Rone",
			Email:    "pepe.rone@example.com",
			Password: "password12345",
			OnResponse: func(r *signup.SignupRequestResponse) {
				signupResp = r
			},
		})
	require.NoError(t, err)

	claims, err := service.Verify(signupResp.ActivationToken)
	require.NoError(t, err)

	const redeemers = 8

	var wg sync.WaitGroup
	errs := make([]error, redeemers)

	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handler := signup.NewActivateAccountHandler(repo, service).WithLogger(testLogger{})
			errs[i] = handler.Execute(ctx, signup.ActivateAccountMessage{
				Token: signupResp.ActivationToken,
				Code:  claims.Code,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < redeemers; i++ {
		if errs[i] == nil {
			winners++
		} else {
			assert.ErrorIs(t, errs[i], signup.ErrTokenRedeemed)
		}
	}
	// the ledger admits exactly one redemption no matter how the attempts interleave
	assert.Equal(t, 1, winners)

	user, err := repo.Users().GetByEmail(ctx, "pepe.rone@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
}
