package flightdeck_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	flightdeck "github.com/velocityworks/flightdeck"
)

// MockLogger implements flightdeck.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockUsers implements flightdeck.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Create(ctx context.Context, record *flightdeck.User) (*flightdeck.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *flightdeck.User) (*flightdeck.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*flightdeck.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*flightdeck.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByUsername(ctx context.Context, username string) (*flightdeck.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

func (m *MockUsers) Update(ctx context.Context, record *flightdeck.User, columns ...string) (*flightdeck.User, error) {
	args := m.Called(ctx, record, columns)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

func (m *MockUsers) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUsers) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockBlacklist implements flightdeck.BlacklistStore
type MockBlacklist struct {
	mock.Mock
}

func (m *MockBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	args := m.Called(ctx, token, expiresAt)
	return args.Error(0)
}

// MockIdentityProvider implements flightdeck.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (*flightdeck.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByID(ctx context.Context, id int64) (*flightdeck.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*flightdeck.User)
	return user, args.Error(1)
}

// MockRepositoryManager implements flightdeck.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
	users *MockUsers
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{users: new(MockUsers)}
}

func (m *MockRepositoryManager) Validate() error { return nil }
func (m *MockRepositoryManager) MustValidate()   {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() flightdeck.Users {
	return m.users
}

func (m *MockRepositoryManager) Profiles() repository.Repository[*flightdeck.Profile] {
	return nil
}

func (m *MockRepositoryManager) Blacklist() *flightdeck.SQLBlacklist {
	return nil
}

// testConfig implements flightdeck.Config
type testConfig struct {
	signingKey string
	ttlMinutes int
	scheme     string
	contextKey string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey: "test-signing-key",
		ttlMinutes: 5,
		scheme:     "Token",
		contextKey: "user",
	}
}

func (c *testConfig) GetSigningKey() string   { return c.signingKey }
func (c *testConfig) GetTokenTTLMinutes() int { return c.ttlMinutes }
func (c *testConfig) GetAuthScheme() string   { return c.scheme }
func (c *testConfig) GetContextKey() string   { return c.contextKey }
