package relink

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthAPIController serves the token and user management API.
type AuthAPIController struct {
	Logger     Logger
	Repo       RepositoryManager
	Auther     *Auther
	Revoker    *Revoker
	ContextKey string
}

type AuthAPIOption func(*AuthAPIController) *AuthAPIController

func NewAuthAPIController(opts ...AuthAPIOption) *AuthAPIController {
	c := &AuthAPIController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth API controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth API controller...")
	}

	if c.Revoker == nil {
		c.Revoker = NewRevoker(c.Repo.Users()).WithLogger(c.Logger)
	}

	return c
}

func WithAuthAPILogger(logger Logger) AuthAPIOption {
	return func(c *AuthAPIController) *AuthAPIController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuthAPIRepository(repo RepositoryManager) AuthAPIOption {
	return func(c *AuthAPIController) *AuthAPIController {
		c.Repo = repo
		return c
	}
}

func WithAuthAPIAuthenticator(auther *Auther) AuthAPIOption {
	return func(c *AuthAPIController) *AuthAPIController {
		c.Auther = auther
		return c
	}
}

func WithAuthAPIRevoker(revoker *Revoker) AuthAPIOption {
	return func(c *AuthAPIController) *AuthAPIController {
		c.Revoker = revoker
		return c
	}
}

func WithAuthAPIContextKey(key string) AuthAPIOption {
	return func(c *AuthAPIController) *AuthAPIController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

// RegisterRoutes mounts the auth API. Authorize and renew stay public,
// everything else sits behind the hard auth gate.
func (c *AuthAPIController) RegisterRoutes(group RouteRegistrar, requireAuth router.MiddlewareFunc) {
	group.Post("/authorize", c.Authorize)
	group.Post("/renew", c.Renew)
	group.Get("/users", c.ListUsers, requireAuth)
	group.Post("/users", c.CreateUser, requireAuth)
	group.Get("/users/:id", c.ShowUser, requireAuth)
	group.Patch("/users/:id", c.UpdateUser, requireAuth)
	group.Delete("/users/:id", c.DeleteUser, requireAuth)
	group.Post("/users/:id/revoke", c.RevokeTokens, requireAuth)
}

// AuthorizeRequest is the credentials payload.
type AuthorizeRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// Authorize exchanges email + password for a signed token.
func (c *AuthAPIController) Authorize(ctx router.Context) error {
	payload := new(AuthorizeRequest)

	if err := ctx.Bind(payload); err != nil {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()))
	}

	token, err := c.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	user, err := c.Repo.Users().GetByIdentifier(ctx.Context(), payload.Email)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	c.Logger.Info("new token issued", "user", user.Name, "id", user.ID.String())

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}

// Renew exchanges a still-valid token for a fresh one.
func (c *AuthAPIController) Renew(ctx router.Context) error {
	raw := BearerFromHeader(ctx, "Bearer")
	if raw == "" {
		return apiError(ctx, http.StatusUnauthorized, APICodeAuthorizationFailed, "Failed to authorize you")
	}

	token, err := c.Auther.RenewToken(ctx.Context(), raw)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
	})
}

// ListUsers returns a simple list of users.
func (c *AuthAPIController) ListUsers(ctx router.Context) error {
	records, err := c.Repo.Users().ListAll(ctx.Context())
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	users := make([]PublicUser, 0, len(records))
	for _, u := range records {
		users = append(users, u.Public())
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}

// CreateUserRequest is the new-user payload.
type CreateUserRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
	Password string `form:"password" json:"password"`
}

func (c *AuthAPIController) CreateUser(ctx router.Context) error {
	payload := new(CreateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Failed to parse request body")
	}

	if _, err := c.Repo.Users().GetByIdentifier(ctx.Context(), payload.Email); err == nil {
		return apiError(ctx, http.StatusConflict, APICodeIDConflict, "That email has already been used!")
	}

	handler := NewRegisterUserHandler(c.Repo)
	user, err := handler.Execute(ctx.Context(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	})
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    user.Public(),
	})
}

func (c *AuthAPIController) ShowUser(ctx router.Context) error {
	user, err := c.resolveUser(ctx)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    user.Public(),
	})
}

// UpdateUserRequest carries the patchable user fields.
type UpdateUserRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (c *AuthAPIController) UpdateUser(ctx router.Context) error {
	payload := new(UpdateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Failed to parse request body")
	}

	if payload.Name == "" && payload.Email == "" && payload.Password == "" {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Something must be updated!")
	}

	user, err := c.resolveUser(ctx)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if payload.Name != "" {
		user.Name = payload.Name
	}
	if payload.Email != "" {
		user.Email = payload.Email
	}
	if payload.Password != "" {
		hash, err := HashPassword(payload.Password)
		if err != nil {
			return RespondError(ctx, c.Logger, err)
		}
		user.PasswordHash = hash
	}

	updated, err := c.Repo.Users().Update(ctx.Context(), user)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    updated.Public(),
	})
}

func (c *AuthAPIController) DeleteUser(ctx router.Context) error {
	id := ctx.Param("id")

	current, _ := UserFromRouter(ctx, c.ContextKey)
	if id == "me" || (current != nil && id == current.ID.String()) {
		return apiError(ctx, http.StatusServiceUnavailable, APICodeNotImplemented, "You can't delete yourself yet.")
	}

	user, err := c.Repo.Users().FindByID(ctx.Context(), id)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	count, err := c.Repo.Users().CountAll(ctx.Context())
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}
	if count <= 1 {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "You can't delete the last user. (Yet)")
	}

	if err := c.Repo.Users().DeleteByID(ctx.Context(), user.ID); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
	})
}

// RevokeTokens invalidates every token issued for the user so far.
func (c *AuthAPIController) RevokeTokens(ctx router.Context) error {
	user, err := c.resolveUser(ctx)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	epoch, err := c.Revoker.RevokeAll(ctx.Context(), user)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"revoked_at": epoch.UnixMilli(),
	})
}

// resolveUser turns the :id path param into a stored user, honoring the
// "me" alias for the authenticated principal.
func (c *AuthAPIController) resolveUser(ctx router.Context) (*User, error) {
	id := ctx.Param("id")
	if id == "me" {
		if current, ok := UserFromRouter(ctx, c.ContextKey); ok {
			return current, nil
		}
		return nil, ErrUnableToFindSession
	}

	return c.Repo.Users().FindByID(ctx.Context(), id)
}
