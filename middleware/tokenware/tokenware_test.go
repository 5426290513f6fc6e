package tokenware_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/relinkhq/relink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/relinkhq/relink/middleware/tokenware"
)

// stubAuth resolves every token to a fixed outcome.
type stubAuth struct {
	user *relink.User
	ok   bool
}

func (s stubAuth) CurrentUser(_ context.Context, _ string) (*relink.User, bool) {
	return s.user, s.ok
}

func passthrough(ctx router.Context) error {
	return ctx.Next()
}

func TestTokenware_ValidToken(t *testing.T) {
	user := &relink.User{Name: "Test User"}

	mw := tokenware.New(tokenware.Config{
		Auth: stubAuth{user: user, ok: true},
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer valid-token")
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	ctx.On("SetContext", mock.Anything).Return()

	err := mw(passthrough)(ctx)

	assert.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestTokenware_MissingToken(t *testing.T) {
	var handlerErr error

	mw := tokenware.New(tokenware.Config{
		Auth: stubAuth{},
		ErrorHandler: func(ctx router.Context, err error) error {
			handlerErr = err
			return err
		},
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := mw(passthrough)(ctx)

	assert.Error(t, err)
	assert.ErrorIs(t, handlerErr, tokenware.ErrTokenMissing)
	assert.False(t, ctx.NextCalled)
}

func TestTokenware_InvalidToken(t *testing.T) {
	mw := tokenware.New(tokenware.Config{
		Auth: stubAuth{ok: false},
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer expired-token")
	ctx.On("Context").Return(context.Background())

	err := mw(passthrough)(ctx)

	assert.Error(t, err)
	assert.False(t, ctx.NextCalled)
}

func TestTokenware_OptionalMode(t *testing.T) {
	t.Run("missing token continues anonymously", func(t *testing.T) {
		mw := tokenware.New(tokenware.Config{
			Auth:     stubAuth{},
			Optional: true,
		})

		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("")

		err := mw(passthrough)(ctx)

		assert.NoError(t, err)
		assert.True(t, ctx.NextCalled)
	})

	t.Run("invalid token continues anonymously", func(t *testing.T) {
		mw := tokenware.New(tokenware.Config{
			Auth:     stubAuth{ok: false},
			Optional: true,
		})

		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("Bearer garbage")
		ctx.On("Context").Return(context.Background())

		err := mw(passthrough)(ctx)

		assert.NoError(t, err)
		assert.True(t, ctx.NextCalled)
	})

	t.Run("valid token still attaches the user", func(t *testing.T) {
		user := &relink.User{Name: "Test User"}

		mw := tokenware.New(tokenware.Config{
			Auth:     stubAuth{user: user, ok: true},
			Optional: true,
		})

		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("Bearer valid-token")
		ctx.On("Context").Return(context.Background())
		ctx.On("Locals", "user", mock.Anything).Return(nil)
		ctx.On("SetContext", mock.Anything).Return()

		err := mw(passthrough)(ctx)

		assert.NoError(t, err)
		assert.True(t, ctx.NextCalled)
		ctx.AssertCalled(t, "Locals", "user", mock.Anything)
	})
}

func TestTokenware_Filter(t *testing.T) {
	mw := tokenware.New(tokenware.Config{
		Auth: stubAuth{},
		Filter: func(ctx router.Context) bool {
			return true
		},
	})

	ctx := router.NewMockContext()

	err := mw(passthrough)(ctx)

	assert.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestGetDefaultConfig(t *testing.T) {
	t.Run("panics without an authenticator", func(t *testing.T) {
		require.Panics(t, func() {
			tokenware.GetDefaultConfig(tokenware.Config{})
		})
	})

	t.Run("fills in defaults", func(t *testing.T) {
		cfg := tokenware.GetDefaultConfig(tokenware.Config{Auth: stubAuth{}})

		assert.Equal(t, "user", cfg.ContextKey)
		assert.Equal(t, "header:"+router.HeaderAuthorization, cfg.TokenLookup)
		assert.Equal(t, "Bearer", cfg.AuthScheme)
		assert.NotNil(t, cfg.SuccessHandler)
		assert.NotNil(t, cfg.ErrorHandler)
		assert.NotNil(t, cfg.ContextEnricher)
	})
}

func TestExtractRawTokenFromContext(t *testing.T) {
	t.Run("first extractor with a value wins", func(t *testing.T) {
		extractors := []tokenware.TokenExtractor{
			func(router.Context) (string, error) { return "", tokenware.ErrTokenMissing },
			func(router.Context) (string, error) { return "found-token", nil },
			func(router.Context) (string, error) { return "never-reached", nil },
		}

		raw, err := tokenware.ExtractRawTokenFromContext(nil, extractors)

		assert.NoError(t, err)
		assert.Equal(t, "found-token", raw)
	})

	t.Run("returns the last error when nothing matches", func(t *testing.T) {
		extractors := []tokenware.TokenExtractor{
			func(router.Context) (string, error) { return "", tokenware.ErrTokenMissing },
		}

		raw, err := tokenware.ExtractRawTokenFromContext(nil, extractors)

		assert.Empty(t, raw)
		assert.ErrorIs(t, err, tokenware.ErrTokenMissing)
	})
}

func TestTokenware_BareTokenRejected(t *testing.T) {
	// A header without the auth scheme prefix is treated as missing.
	var handlerErr error

	mw := tokenware.New(tokenware.Config{
		Auth: stubAuth{ok: true, user: &relink.User{}},
		ErrorHandler: func(ctx router.Context, err error) error {
			handlerErr = err
			return err
		},
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("raw-token-without-scheme")

	err := mw(passthrough)(ctx)

	assert.Error(t, err)
	assert.ErrorIs(t, handlerErr, tokenware.ErrTokenMissing)
}
