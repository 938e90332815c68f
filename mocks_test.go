package signup_test

import (
	"context"
	"database/sql"
	"sync"

	"github.com/goliatone/go-signup"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockRepositoryManager implements signup.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Users() signup.Users {
	args := m.Called()
	return args.Get(0).(signup.Users)
}

func (m *MockRepositoryManager) Redemptions() signup.Redemptions {
	args := m.Called()
	return args.Get(0).(signup.Redemptions)
}

// MockUsers implements signup.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*signup.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*signup.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*signup.User, error) {
	args := m.Called(ctx, tx, email)
	user, _ := args.Get(0).(*signup.User)
	return user, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *signup.User) (*signup.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*signup.User)
	return user, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *signup.User) (*signup.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*signup.User)
	return user, args.Error(1)
}

func (m *MockUsers) MarkVerified(ctx context.Context, id uuid.UUID) (*signup.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*signup.User)
	return user, args.Error(1)
}

func (m *MockUsers) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*signup.User, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*signup.User)
	return user, args.Error(1)
}

// MockRedemptions implements signup.Redemptions
type MockRedemptions struct {
	mock.Mock
}

func (m *MockRedemptions) IsRedeemed(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedemptions) IsRedeemedTx(ctx context.Context, tx bun.IDB, token string) (bool, error) {
	args := m.Called(ctx, tx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedemptions) Record(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedemptions) RecordTx(ctx context.Context, tx bun.IDB, token string) (bool, error) {
	args := m.Called(ctx, tx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedemptions) PurgeExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockMailer implements signup.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email signup.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// capturingMailer records every delivered mail so tests can fish the
// activation code back out.
type capturingMailer struct {
	mu      sync.Mutex
	mails   []signup.Email
	sendErr error
}

func (m *capturingMailer) Send(_ context.Context, email signup.Email) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, email)
	return nil
}

func (m *capturingMailer) last() (signup.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.mails) == 0 {
		return signup.Email{}, false
	}
	return m.mails[len(m.mails)-1], true
}

// stubRepoManager runs transaction callbacks inline so command handler
// tests exercise the gate ordering against mocked repositories.
type stubRepoManager struct {
	users       signup.Users
	redemptions signup.Redemptions
}

func (s *stubRepoManager) Validate() error { return nil }

func (s *stubRepoManager) MustValidate() {}

func (s *stubRepoManager) RunInTx(ctx context.Context, _ *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

func (s *stubRepoManager) Users() signup.Users { return s.users }

func (s *stubRepoManager) Redemptions() signup.Redemptions { return s.redemptions }
