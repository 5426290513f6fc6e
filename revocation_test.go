package relink_test

import (
	"context"
	"testing"
	"time"

	"github.com/relinkhq/relink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRevoker_RevokeAll(t *testing.T) {
	t.Run("advances the epoch to now", func(t *testing.T) {
		user := newActiveUser()
		now := time.Now().Truncate(time.Millisecond)

		store := &MockUserStore{}
		store.On("RevokeTokensBefore", mock.Anything, user, now).Return(user, nil)

		revoker := relink.NewRevoker(store).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return now })

		epoch, err := revoker.RevokeAll(context.Background(), user)

		assert.NoError(t, err)
		assert.Equal(t, now, epoch)
		assert.NotNil(t, user.TokensRevokedAt)
		assert.Equal(t, now, *user.TokensRevokedAt)

		store.AssertExpectations(t)
	})

	t.Run("adopts a later epoch kept by the store", func(t *testing.T) {
		user := newActiveUser()
		now := time.Now().Truncate(time.Millisecond)
		later := now.Add(time.Second)

		updated := *user
		updated.TokensRevokedAt = &later

		store := &MockUserStore{}
		store.On("RevokeTokensBefore", mock.Anything, user, now).Return(&updated, nil)

		revoker := relink.NewRevoker(store).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return now })

		epoch, err := revoker.RevokeAll(context.Background(), user)

		assert.NoError(t, err)
		assert.Equal(t, later, epoch)
		assert.Equal(t, later, *user.TokensRevokedAt)
	})

	t.Run("rejects a nil user", func(t *testing.T) {
		revoker := relink.NewRevoker(&MockUserStore{}).WithLogger(testLogger{})

		epoch, err := revoker.RevokeAll(context.Background(), nil)

		assert.Error(t, err)
		assert.True(t, epoch.IsZero())
	})

	t.Run("emits a revocation activity event", func(t *testing.T) {
		user := newActiveUser()
		now := time.Now().Truncate(time.Millisecond)

		store := &MockUserStore{}
		store.On("RevokeTokensBefore", mock.Anything, user, now).Return(user, nil)

		sink := &recordingSink{}
		revoker := relink.NewRevoker(store).
			WithLogger(testLogger{}).
			WithActivitySink(sink).
			WithClock(func() time.Time { return now })

		_, err := revoker.RevokeAll(context.Background(), user)
		assert.NoError(t, err)

		assert.Len(t, sink.events, 1)
		event := sink.events[0]
		assert.Equal(t, relink.ActivityEventTokensRevoked, event.EventType)
		assert.Equal(t, user.ID.String(), event.UserID)
		assert.Equal(t, now.UnixMilli(), event.Metadata["epoch"])
	})
}

func TestRevoker_InvalidatesIssuedTokens(t *testing.T) {
	// End to end: issue, revoke, observe the token die.
	user := newActiveUser()

	users := &MockUserStore{}
	users.On("FindByID", mock.Anything, user.ID.String()).Return(user, nil)
	users.On("RevokeTokensBefore", mock.Anything, user, mock.Anything).
		Run(func(args mock.Arguments) {
			epoch := args.Get(2).(time.Time)
			user.TokensRevokedAt = &epoch
		}).
		Return(user, nil)

	auther := newTestAuthenticator(&MockIdentityProvider{}, users)
	revoker := relink.NewRevoker(users).WithLogger(testLogger{})

	token, err := auther.IssueToken(relink.NewIdentityFromUser(user))
	assert.NoError(t, err)

	_, ok := auther.CurrentUser(context.Background(), token)
	assert.True(t, ok)

	// Issued-at carries second precision, so push the epoch past it.
	revoker = revoker.WithClock(func() time.Time { return time.Now().Add(2 * time.Second) })

	_, err = revoker.RevokeAll(context.Background(), user)
	assert.NoError(t, err)

	_, ok = auther.CurrentUser(context.Background(), token)
	assert.False(t, ok)
}
