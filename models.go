package relink

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserStatus is the lifecycle state of a user account
type UserStatus = string

const (
	// UserStatusActive is the normal, authenticatable state
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended blocks logins and invalidates session checks
	// until the account is reinstated
	UserStatusSuspended UserStatus = "suspended"
)

// ErrUserSuspended is returned when a suspended account attempts to authenticate
var ErrUserSuspended = goerrors.New("user account is suspended", goerrors.CategoryAuth).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("USER_SUSPENDED")

// User is the principal model. TokensRevokedAt is the revocation epoch:
// tokens issued before it fail validation regardless of their expiry.
type User struct {
	bun.BaseModel   `bun:"table:users,alias:usr"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name            string     `bun:"name,notnull" json:"name,omitempty"`
	Email           string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone           string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash    string     `bun:"password_hash" json:"-"`
	Status          UserStatus `bun:"status" json:"status,omitempty"`
	LoggedInAt      *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	TokensRevokedAt *time.Time `bun:"tokens_revoked_at,nullzero" json:"tokens_revoked_at,omitempty"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt       *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the zero value for rows created before the
// status column existed.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// PublicUser is the API-safe projection of a user record
type PublicUser struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	LoggedInAt *time.Time `json:"last_login,omitempty"`
	CreatedAt  *time.Time `json:"created,omitempty"`
}

// Public returns the user shape exposed by the API, never including the
// password hash or the revocation epoch.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		LoggedInAt: u.LoggedInAt,
		CreatedAt:  u.CreatedAt,
	}
}

func statusAuthError(status UserStatus) error {
	switch status {
	case UserStatusSuspended:
		return ErrUserSuspended
	default:
		return nil
	}
}

// RedirectType identifies the action a short-code entry performs.
// Only plain redirects exist today; the column is kept so other actions
// can ship without a schema change.
type RedirectType = string

// RedirectTypeRedirect is a plain 302 to the destination URL
const RedirectTypeRedirect RedirectType = "redirect"

// Redirect is a short-code entry: Code is the URL path to match and
// Destination where the visitor is sent.
type Redirect struct {
	bun.BaseModel `bun:"table:redirects,alias:rdr"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"-"`
	Code          string       `bun:"code,notnull,unique" json:"id"`
	Destination   string       `bun:"destination,notnull" json:"destination"`
	Type          RedirectType `bun:"type,notnull" json:"type"`
	CreatorID     string       `bun:"creator_id" json:"creator,omitempty"`
	UpdaterID     string       `bun:"updater_id" json:"updater,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// SortValue returns the record's value for a pagination sort key.
func (r *Redirect) SortValue(key SortKey) time.Time {
	var t *time.Time
	switch key {
	case SortKeyUpdated:
		t = r.UpdatedAt
	default:
		t = r.CreatedAt
	}
	if t == nil {
		return time.Time{}
	}
	return *t
}
