package relink

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type CreateRedirectMessage struct {
	Code        string `json:"id"`
	Destination string `json:"destination"`
	CreatorID   string `json:"-"`
}

func (e CreateRedirectMessage) Type() string { return "redirect.create" }

func (e CreateRedirectMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Code, validation.Length(1, 64)),
		validation.Field(&e.Destination, validation.Required, is.URL),
	)
}

type CreateRedirectHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
}

func NewCreateRedirectHandler(repo RepositoryManager) *CreateRedirectHandler {
	return &CreateRedirectHandler{
		repo:   repo,
		sink:   noopActivitySink{},
		logger: defLogger{},
	}
}

func (h *CreateRedirectHandler) WithLogger(l Logger) *CreateRedirectHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *CreateRedirectHandler) WithActivitySink(sink ActivitySink) *CreateRedirectHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *CreateRedirectHandler) Execute(ctx context.Context, event CreateRedirectMessage) (*Redirect, error) {
	if err := event.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid redirect payload")
	}

	record := &Redirect{
		Code:        event.Code,
		Destination: event.Destination,
		Type:        RedirectTypeRedirect,
		CreatorID:   event.CreatorID,
	}

	created, err := h.repo.Redirects().CreateWithCode(ctx, record)
	if err != nil {
		if goerrors.Is(err, ErrCodeCollision) {
			// Random code collided with an existing row. Worth an audit
			// trail entry since at 36^6 codes this should almost never
			// happen.
			h.logger.Error("random short code collision", "code", record.Code)
			h.recordCollision(ctx, record)
		}
		return nil, err
	}

	return created, nil
}

func (h *CreateRedirectHandler) recordCollision(ctx context.Context, record *Redirect) {
	event := ActivityEvent{
		EventType: ActivityEventCodeCollision,
		Actor:     ActorRef{ID: record.CreatorID, Type: "user"},
		UserID:    record.CreatorID,
		Metadata: map[string]any{
			"code": record.Code,
		},
	}

	if err := normalizeActivitySink(h.sink).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}
}
