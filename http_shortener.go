package relink

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// ShortenerAPIController serves redirect management and listing.
type ShortenerAPIController struct {
	Logger     Logger
	Repo       RepositoryManager
	Sink       ActivitySink
	ContextKey string
}

type ShortenerAPIOption func(*ShortenerAPIController) *ShortenerAPIController

func NewShortenerAPIController(opts ...ShortenerAPIOption) *ShortenerAPIController {
	c := &ShortenerAPIController{
		Logger:     defLogger{},
		Sink:       noopActivitySink{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in shortener API controller...")
	}

	return c
}

func WithShortenerAPILogger(logger Logger) ShortenerAPIOption {
	return func(c *ShortenerAPIController) *ShortenerAPIController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithShortenerAPIRepository(repo RepositoryManager) ShortenerAPIOption {
	return func(c *ShortenerAPIController) *ShortenerAPIController {
		c.Repo = repo
		return c
	}
}

func WithShortenerAPISink(sink ActivitySink) ShortenerAPIOption {
	return func(c *ShortenerAPIController) *ShortenerAPIController {
		c.Sink = normalizeActivitySink(sink)
		return c
	}
}

func WithShortenerAPIContextKey(key string) ShortenerAPIOption {
	return func(c *ShortenerAPIController) *ShortenerAPIController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

// RegisterRoutes mounts the shortener API. Reading a single redirect is
// public, management and listing require a session.
func (c *ShortenerAPIController) RegisterRoutes(group RouteRegistrar, requireAuth router.MiddlewareFunc) {
	group.Get("/redirects", c.ListRedirects, requireAuth)
	group.Post("/redirects", c.CreateRedirect, requireAuth)
	group.Get("/redirects/:id", c.ShowRedirect)
	group.Patch("/redirects/:id", c.UpdateRedirect, requireAuth)
	group.Delete("/redirects/:id", c.DeleteRedirect, requireAuth)
}

// ListRedirects serves one page of redirects plus paging metadata.
func (c *ShortenerAPIController) ListRedirects(ctx router.Context) error {
	params, err := ParseListParams(ctx)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	page, err := Paginate[*Redirect](ctx.Context(), c.Repo.Redirects(), params)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"redirects": page.Items,
		"paging":    page.Paging,
	})
}

func (c *ShortenerAPIController) CreateRedirect(ctx router.Context) error {
	payload := new(CreateRedirectMessage)
	if err := ctx.Bind(payload); err != nil {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Failed to parse request body")
	}

	if payload.Destination == "" {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Destination must be provided")
	}

	if user, ok := UserFromRouter(ctx, c.ContextKey); ok {
		payload.CreatorID = user.ID.String()
	}

	handler := NewCreateRedirectHandler(c.Repo).
		WithLogger(c.Logger).
		WithActivitySink(c.Sink)

	redirect, err := handler.Execute(ctx.Context(), *payload)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"redirect": redirect,
	})
}

func (c *ShortenerAPIController) ShowRedirect(ctx router.Context) error {
	redirect, err := c.Repo.Redirects().GetByCode(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"redirect": redirect,
	})
}

// UpdateRedirectRequest carries the patchable redirect fields.
type UpdateRedirectRequest struct {
	Destination string `form:"destination" json:"destination"`
	Type        string `form:"type" json:"type"`
}

func (c *ShortenerAPIController) UpdateRedirect(ctx router.Context) error {
	payload := new(UpdateRedirectRequest)
	if err := ctx.Bind(payload); err != nil {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Failed to parse request body")
	}

	if payload.Destination == "" && payload.Type == "" {
		return apiError(ctx, http.StatusBadRequest, APICodeInvalidParam, "Something must be updated!")
	}

	redirect, err := c.Repo.Redirects().GetByCode(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if payload.Destination != "" {
		redirect.Destination = payload.Destination
	}
	if payload.Type != "" {
		redirect.Type = payload.Type
	}

	if user, ok := UserFromRouter(ctx, c.ContextKey); ok {
		touchUpdated(redirect, user.ID.String())
	}

	updated, err := c.Repo.Redirects().Update(ctx.Context(), redirect)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"redirect": updated,
	})
}

func (c *ShortenerAPIController) DeleteRedirect(ctx router.Context) error {
	code := ctx.Param("id")

	if _, err := c.Repo.Redirects().GetByCode(ctx.Context(), code); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if err := c.Repo.Redirects().DeleteByCode(ctx.Context(), code); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success": true,
	})
}
