package relink_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/relinkhq/relink"
	"github.com/stretchr/testify/assert"
)

func TestNewTokenService(t *testing.T) {
	signingKey := []byte("test-signing-key")

	t.Run("creates token service with logger", func(t *testing.T) {
		service := relink.NewTokenService(signingKey, 24, "test-issuer", testLogger{})
		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := relink.NewTokenService(signingKey, 24, "test-issuer", nil)
		assert.NotNil(t, service)
	})
}

func TestTokenService_Generate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"
	service := relink.NewTokenService(signingKey, 24, issuer, testLogger{})

	user := newActiveUser()
	identity := relink.NewIdentityFromUser(user)

	t.Run("generates valid signed token", func(t *testing.T) {
		tokenString, err := service.Generate(identity)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		token, err := jwt.ParseWithClaims(tokenString, &relink.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return signingKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims, ok := token.Claims.(*relink.JWTClaims)
		assert.True(t, ok)
		assert.Equal(t, user.ID.String(), claims.Subject())
		assert.Equal(t, user.ID.String(), claims.UserID())
		assert.Equal(t, user.Name, claims.Name())
		assert.Equal(t, issuer, claims.RegisteredClaims.Issuer)
		assert.NotNil(t, claims.RegisteredClaims.IssuedAt)
		assert.NotNil(t, claims.RegisteredClaims.ExpiresAt)
		assert.NotEmpty(t, claims.RegisteredClaims.ID)
	})

	t.Run("sets expiration from configured validity", func(t *testing.T) {
		beforeGenerate := time.Now()
		tokenString, err := service.Generate(identity)
		afterGenerate := time.Now()

		assert.NoError(t, err)

		token, err := jwt.ParseWithClaims(tokenString, &relink.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return signingKey, nil
		})

		assert.NoError(t, err)
		claims := token.Claims.(*relink.JWTClaims)
		actualExpiry := claims.Expires()

		// Allow for a small margin of difference due to timing
		assert.True(t, actualExpiry.After(beforeGenerate.Add(24*time.Hour-time.Second)))
		assert.True(t, actualExpiry.Before(afterGenerate.Add(24*time.Hour+time.Second)))
	})

	t.Run("zero expiration falls back to the default validity", func(t *testing.T) {
		fallback := relink.NewTokenService(signingKey, 0, issuer, testLogger{})

		tokenString, err := fallback.Generate(identity)
		assert.NoError(t, err)

		claims, err := fallback.Validate(tokenString)
		assert.NoError(t, err)

		validity := claims.Expires().Sub(claims.IssuedAt())
		assert.Equal(t, relink.DefaultTokenValidity, validity)
	})
}

func TestTokenService_Validate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"
	service := relink.NewTokenService(signingKey, 24, issuer, testLogger{})

	user := newActiveUser()
	identity := relink.NewIdentityFromUser(user)

	t.Run("round trips a generated token", func(t *testing.T) {
		tokenString, err := service.Generate(identity)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)

		assert.NoError(t, err)
		assert.NotNil(t, claims)
		assert.Equal(t, user.ID.String(), claims.Subject())
		assert.Equal(t, user.Name, claims.Name())
	})

	t.Run("returns error for expired token", func(t *testing.T) {
		now := time.Now()
		expiredClaims := &relink.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now.Add(-25 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Hour)),
			},
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims)
		tokenString, err := token.SignedString(signingKey)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)

		assert.Error(t, err)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, relink.ErrTokenExpired)
		assert.True(t, relink.IsTokenExpiredError(err))
	})

	t.Run("returns error for malformed token", func(t *testing.T) {
		claims, err := service.Validate("not.a.valid.jwt.token")

		assert.Error(t, err)
		assert.Nil(t, claims)
		assert.True(t, relink.IsMalformedError(err))
	})

	t.Run("returns error for token signed with a different key", func(t *testing.T) {
		forged := relink.NewTokenService([]byte("wrong-signing-key"), 24, issuer, testLogger{})

		tokenString, err := forged.Generate(identity)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("returns error for token from a different issuer", func(t *testing.T) {
		other := relink.NewTokenService(signingKey, 24, "other-issuer", testLogger{})

		tokenString, err := other.Generate(identity)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("returns error for token with tampered payload", func(t *testing.T) {
		tokenString, err := service.Generate(identity)
		assert.NoError(t, err)

		// Flip a character in the payload segment
		tampered := []byte(tokenString)
		mid := len(tampered) / 2
		if tampered[mid] == 'a' {
			tampered[mid] = 'b'
		} else {
			tampered[mid] = 'a'
		}

		claims, err := service.Validate(string(tampered))

		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestTokenService_SignClaims(t *testing.T) {
	signingKey := []byte("test-signing-key")
	service := relink.NewTokenService(signingKey, 24, "test-issuer", testLogger{}).(*relink.TokenServiceImpl)

	t.Run("signs custom claims", func(t *testing.T) {
		now := time.Now()
		claims := &relink.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Subject:   uuid.New().String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			BearerName: "Custom Bearer",
		}

		tokenString, err := service.SignClaims(claims)
		assert.NoError(t, err)

		parsed, err := service.Validate(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, "Custom Bearer", parsed.Name())
	})

	t.Run("rejects nil claims", func(t *testing.T) {
		tokenString, err := service.SignClaims(nil)

		assert.Error(t, err)
		assert.Empty(t, tokenString)
	})
}
