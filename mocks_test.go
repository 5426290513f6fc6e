package relink_test

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/relinkhq/relink"
	"github.com/stretchr/testify/mock"
)

// testLogger swallows log output so assertions stay focused on behavior.
type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockUserStore implements relink.UserFinder, relink.UserTracker, and
// relink.TokenRevoker for testing.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*relink.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*relink.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*relink.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*relink.User)
	return user, args.Error(1)
}

func (m *MockUserStore) TrackSuccessfulLogin(ctx context.Context, user *relink.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) RevokeTokensBefore(ctx context.Context, user *relink.User, epoch time.Time) (*relink.User, error) {
	args := m.Called(ctx, user, epoch)
	updated, _ := args.Get(0).(*relink.User)
	return updated, args.Error(1)
}

// MockIdentityProvider implements relink.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (relink.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(relink.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (relink.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(relink.Identity)
	return identity, args.Error(1)
}

// testConfig implements relink.Config with test-friendly values.
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
}

func (c testConfig) GetSigningKey() string { return c.signingKey }
func (c testConfig) GetSigningMethod() string { return "HS256" }
func (c testConfig) GetContextKey() string { return "user" }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetTokenLookup() string { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string { return "Bearer" }
func (c testConfig) GetIssuer() string { return c.issuer }
func (c testConfig) GetEnvironment() string { return "test" }
func (c testConfig) GetMaxPageSize() int { return relink.MaxPageSize }

func newTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 24,
		issuer:          "test-issuer",
	}
}

func newActiveUser() *relink.User {
	now := time.Now()
	return &relink.User{
		ID:        uuid.New(),
		Name:      "Test User",
		Email:     "test@example.com",
		Status:    relink.UserStatusActive,
		CreatedAt: &now,
	}
}

// recordingSink captures every activity event it receives.
type recordingSink struct {
	events []relink.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event relink.ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}
