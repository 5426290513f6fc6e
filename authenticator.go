package relink

import (
	"context"
	"reflect"
	"time"
)

// UserFinder resolves a token subject to the stored principal. The
// authenticator needs the stored record (not just an Identity) because
// the revocation epoch and account status live on it.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*User, error)
}

// Auther implements the session lifecycle: credential login, token
// issuance, renewal, and the validation pipeline used by the request
// middleware.
type Auther struct {
	provider     IdentityProvider
	users        UserFinder
	signingKey   []byte
	validity     int
	issuer       string
	logger       Logger
	tokenService TokenService
	activitySink ActivitySink
}

// NewAuthenticator returns a new Auther wired to the given identity
// provider and principal store.
func NewAuthenticator(provider IdentityProvider, users UserFinder, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		users:        users,
		signingKey:   []byte(opts.GetSigningKey()),
		validity:     opts.GetTokenExpiration(),
		issuer:       opts.GetIssuer(),
		logger:       defLogger{},
		tokenService: tokenService,
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.validity,
		s.issuer,
		logger,
	)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login exchanges credentials for a signed session token.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	var err error
	var identity Identity

	if identity, err = s.provider.VerifyIdentity(ctx, identifier, password); err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return "", ErrIdentityNotFound
	}

	token, err := s.IssueToken(identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return token, nil
}

// IssueToken signs a fresh token for an already-authenticated identity.
// No side effects: last-login bookkeeping belongs to the caller.
func (s *Auther) IssueToken(identity Identity) (string, error) {
	return s.tokenService.Generate(identity)
}

// RenewToken exchanges a currently valid token for a fresh one with a
// full validity window. It fails exactly as validation fails: a token
// that is expired, revoked, or forged cannot be renewed.
func (s *Auther) RenewToken(ctx context.Context, raw string) (string, error) {
	user, ok := s.CurrentUser(ctx, raw)
	if !ok {
		return "", ErrUnableToDecodeSession
	}

	token, err := s.IssueToken(NewIdentityFromUser(user))
	if err != nil {
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenRenewed, ActorRef{ID: user.ID.String(), Type: "user"}, user.ID.String(), nil)

	return token, nil
}

// CurrentUser is the single validation primitive behind both the soft
// and hard auth modes. All failure causes (forged, malformed, expired,
// unknown subject, revoked, suspended) collapse into the same not-ok
// result; diagnostics only reach the log.
func (s *Auther) CurrentUser(ctx context.Context, raw string) (*User, bool) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("CurrentUser token rejected", "error", err)
		return nil, false
	}

	user, err := s.users.FindByID(ctx, claims.Subject())
	if err != nil || user == nil {
		s.logger.Debug("CurrentUser unknown subject", "subject", claims.Subject())
		return nil, false
	}

	if revokedBefore(user, claims.IssuedAt()) {
		s.logger.Debug("CurrentUser token predates revocation epoch",
			"subject", claims.Subject(),
			"issued_at", claims.IssuedAt(),
			"revoked_at", user.TokensRevokedAt,
		)
		return nil, false
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		s.logger.Debug("CurrentUser user not authenticatable", "status", user.Status)
		return nil, false
	}

	return user, true
}

// SessionFromToken decodes a raw token into a Session without touching
// the principal store. Used where only the claim contents matter.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// revokedBefore reports whether a token issued at issuedAt falls behind
// the user's revocation epoch. Equal timestamps stay valid so a token
// minted in the same instant as the revocation survives it.
func revokedBefore(user *User, issuedAt time.Time) bool {
	if user.TokensRevokedAt == nil {
		return false
	}
	return issuedAt.Before(*user.TokensRevokedAt)
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "user",
	}
}

var _ Authenticator = (*Auther)(nil)
