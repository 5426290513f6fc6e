package relink

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Redirects interface {
	repository.Repository[*Redirect]

	GetByCode(ctx context.Context, code string) (*Redirect, error)
	GetByCodeTx(ctx context.Context, tx bun.IDB, code string) (*Redirect, error)

	CreateWithCode(ctx context.Context, record *Redirect) (*Redirect, error)
	CreateWithCodeTx(ctx context.Context, tx bun.IDB, record *Redirect) (*Redirect, error)

	FetchWindow(ctx context.Context, params ListParams, limit int) ([]*Redirect, error)
	FetchNeighbors(ctx context.Context, params ListParams, limit int) ([]*Redirect, error)
	CountAll(ctx context.Context) (int, error)

	DeleteByCode(ctx context.Context, code string) error
}

type redirects struct {
	repository.Repository[*Redirect]
	db *bun.DB
}

var (
	_ Redirects                        = (*redirects)(nil)
	_ repository.Repository[*Redirect] = (*redirects)(nil)
	_ CursorCollection[*Redirect]      = (*redirects)(nil)
)

func NewRedirectsRepository(db *bun.DB) Redirects {
	repo := repository.NewRepository[*Redirect](db, repository.ModelHandlers[*Redirect]{
		NewRecord: func() *Redirect { return &Redirect{} },
		GetID: func(r *Redirect) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Redirect, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "code"
		},
	})

	return &redirects{
		Repository: repo,
		db:         db,
	}
}

func (a *redirects) GetByCode(ctx context.Context, code string) (*Redirect, error) {
	return a.GetByCodeTx(ctx, a.db, code)
}

func (a *redirects) GetByCodeTx(ctx context.Context, tx bun.IDB, code string) (*Redirect, error) {
	record := &Redirect{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.code = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"code": code,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *redirects) CreateWithCode(ctx context.Context, record *Redirect) (*Redirect, error) {
	return a.CreateWithCodeTx(ctx, a.db, record)
}

// CreateWithCodeTx inserts a redirect, assigning a random code when the
// caller supplied none. A taken custom code is the caller's fault
// (conflict); two random codes colliding is ours (internal).
func (a *redirects) CreateWithCodeTx(ctx context.Context, tx bun.IDB, record *Redirect) (*Redirect, error) {
	custom := record.Code != ""
	if !custom {
		code, err := NewShortCode()
		if err != nil {
			return nil, err
		}
		record.Code = code
	}

	if _, err := a.GetByCodeTx(ctx, tx, record.Code); err == nil {
		if custom {
			return nil, ErrIDConflict
		}
		return nil, ErrCodeCollision
	} else if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Type == "" {
		record.Type = RedirectTypeRedirect
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *redirects) FetchWindow(ctx context.Context, params ListParams, limit int) ([]*Redirect, error) {
	column := sortColumn(params.SortKey)

	op, dir := "<", "DESC"
	if params.Ascending {
		op, dir = ">", "ASC"
	}

	var records []*Redirect
	err := a.db.NewSelect().
		Model(&records).
		Where(fmt.Sprintf("?TableAlias.%s %s ?", column, op), params.Cursor).
		OrderExpr(fmt.Sprintf("?TableAlias.%s %s", column, dir)).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// FetchNeighbors reads the records on the far side of the cursor,
// inclusive, ordered away from the current page.
func (a *redirects) FetchNeighbors(ctx context.Context, params ListParams, limit int) ([]*Redirect, error) {
	column := sortColumn(params.SortKey)

	op, dir := ">=", "ASC"
	if params.Ascending {
		op, dir = "<=", "DESC"
	}

	var records []*Redirect
	err := a.db.NewSelect().
		Model(&records).
		Where(fmt.Sprintf("?TableAlias.%s %s ?", column, op), params.Cursor).
		OrderExpr(fmt.Sprintf("?TableAlias.%s %s", column, dir)).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *redirects) CountAll(ctx context.Context) (int, error) {
	return a.db.NewSelect().
		Model((*Redirect)(nil)).
		Count(ctx)
}

func (a *redirects) DeleteByCode(ctx context.Context, code string) error {
	_, err := a.db.NewDelete().
		Model((*Redirect)(nil)).
		Where("code = ?", code).
		Exec(ctx)
	return err
}

func sortColumn(key SortKey) string {
	if key == SortKeyUpdated {
		return "updated_at"
	}
	return "created_at"
}

// touchUpdated stamps update metadata before persisting a patch.
func touchUpdated(record *Redirect, updaterID string) {
	now := time.Now()
	record.UpdatedAt = &now
	record.UpdaterID = updaterID
}
