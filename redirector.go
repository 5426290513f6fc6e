package relink

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// NewRedirector returns the handler behind GET /:code, the hot path of
// the whole service. A miss falls through to the next handler so the
// application can serve its 404 page; a hit answers with a plain 302.
func NewRedirector(repo RepositoryManager, logger Logger, sink ActivitySink) router.HandlerFunc {
	if logger == nil {
		logger = defLogger{}
	}
	sink = normalizeActivitySink(sink)

	return func(ctx router.Context) error {
		code := ctx.Param("code")

		redirect, err := repo.Redirects().GetByCode(ctx.Context(), code)
		if err != nil {
			if errors.IsNotFound(err) {
				logger.Info("redirect lookup", "code", code, "found", false)
				return ctx.Next()
			}
			return RespondError(ctx, logger, err)
		}

		logger.Info("redirect lookup", "code", code, "found", true)

		if redirect.Type != RedirectTypeRedirect {
			logger.Error("redirect has a non-redirect type", "code", code, "type", redirect.Type)
			return apiError(ctx, http.StatusInternalServerError, APICodeInternalError, "The application encountered an internal error")
		}

		event := ActivityEvent{
			EventType:  ActivityEventRedirectServed,
			Actor:      ActorRef{Type: "visitor"},
			OccurredAt: time.Now(),
			Metadata: map[string]any{
				"code":        code,
				"destination": redirect.Destination,
			},
		}
		if err := sink.Record(ctx.Context(), event); err != nil {
			logger.Warn("activity sink record error: %v", err)
		}

		return ctx.Redirect(redirect.Destination, http.StatusFound)
	}
}
