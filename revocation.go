package relink

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TokenRevoker persists a user's revocation epoch. The store enforces
// monotonicity: an epoch is never moved backward.
type TokenRevoker interface {
	RevokeTokensBefore(ctx context.Context, user *User, epoch time.Time) (*User, error)
}

// Revoker is the mass-revocation controller. Advancing the epoch to
// "now" invalidates every token issued earlier in O(1), with no
// server-side token table: validation simply compares the token's iat
// against the stored watermark.
type Revoker struct {
	store  TokenRevoker
	sink   ActivitySink
	logger Logger
	now    func() time.Time
}

// NewRevoker returns a Revoker over the given store.
func NewRevoker(store TokenRevoker) *Revoker {
	return &Revoker{
		store:  store,
		sink:   noopActivitySink{},
		logger: defLogger{},
		now:    time.Now,
	}
}

func (r *Revoker) WithLogger(logger Logger) *Revoker {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithActivitySink configures the audit sink for revocation events.
func (r *Revoker) WithActivitySink(sink ActivitySink) *Revoker {
	r.sink = normalizeActivitySink(sink)
	return r
}

// WithClock injects a custom clock (useful for tests).
func (r *Revoker) WithClock(clock func() time.Time) *Revoker {
	if clock != nil {
		r.now = clock
	}
	return r
}

// RevokeAll invalidates every token issued for the user up to this
// instant. Tokens issued strictly after the returned epoch stay valid.
// Two concurrent calls race on last-write-wins, which is harmless: both
// use "now", so the surviving epoch is never earlier than the loser's.
func (r *Revoker) RevokeAll(ctx context.Context, user *User) (time.Time, error) {
	if user == nil {
		return time.Time{}, goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	epoch := r.now()

	updated, err := r.store.RevokeTokensBefore(ctx, user, epoch)
	if err != nil {
		return time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist revocation epoch")
	}

	if updated != nil && updated.TokensRevokedAt != nil {
		// The store may keep a later epoch from a concurrent call.
		epoch = *updated.TokensRevokedAt
		user.TokensRevokedAt = updated.TokensRevokedAt
	} else {
		user.TokensRevokedAt = &epoch
	}

	r.emit(ctx, user, epoch)

	return epoch, nil
}

func (r *Revoker) emit(ctx context.Context, user *User, epoch time.Time) {
	event := ActivityEvent{
		EventType:  ActivityEventTokensRevoked,
		Actor:      ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:     user.ID.String(),
		OccurredAt: epoch,
		Metadata: map[string]any{
			"epoch": epoch.UnixMilli(),
		},
	}

	if err := normalizeActivitySink(r.sink).Record(ctx, event); err != nil {
		r.logger.Warn("activity sink record error: %v", err)
	}
}
