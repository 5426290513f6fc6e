package relink

import (
	"context"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SortKey names a timestamp column a listing can be ordered by.
type SortKey string

const (
	SortKeyCreated SortKey = "created"
	SortKeyUpdated SortKey = "updated"
)

// MaxPageSize caps the number of items a single listing page can carry.
const MaxPageSize = 100

// ListParams is the normalized form of a listing request: which column
// to order by, which way, where to start, and how many rows to return.
type ListParams struct {
	SortKey   SortKey
	Ascending bool
	Cursor    time.Time
	Limit     int
}

// QueryReader reads raw query string values. router.Context satisfies it.
type QueryReader interface {
	Query(name string, defaultValue ...string) string
}

// ParseListParams normalizes listing query parameters.
//
// An unknown sort key falls back to created rather than erroring, but a
// supplied `ascending` outside {true, false}, an unparsable `start`
// timestamp, or a non positive-integer `limit` reject the request with
// an InvalidParam error. Omitted values default to: descending order,
// a cursor meaning "first page in the requested direction", and the
// maximum page size.
func ParseListParams(q QueryReader) (ListParams, error) {
	params := ListParams{
		SortKey: coerceSortKey(q.Query("sort")),
	}

	switch raw := q.Query("ascending"); raw {
	case "true":
		params.Ascending = true
	case "false", "":
		params.Ascending = false
	default:
		return params, InvalidParam("invalid ascending query param, must be true or false")
	}

	if raw := q.Query("start"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return params, InvalidParam("invalid timestamp provided as start query param")
		}
		params.Cursor = time.UnixMilli(ms)
	} else if params.Ascending {
		params.Cursor = time.UnixMilli(0)
	} else {
		params.Cursor = time.Now()
	}

	if raw := q.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return params, InvalidParam("limit query param is not a valid integer")
		}
		params.Limit = min(MaxPageSize, n)
	} else {
		params.Limit = MaxPageSize
	}

	return params, nil
}

func coerceSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortKeyCreated, SortKeyUpdated:
		return SortKey(raw)
	default:
		return SortKeyCreated
	}
}

// Sortable exposes the timestamp a record is ordered by.
type Sortable interface {
	SortValue(key SortKey) time.Time
}

// CursorCollection is the storage contract the pagination engine reads
// through. FetchWindow returns up to limit records strictly past the
// cursor, ordered in the direction of travel. FetchNeighbors returns up
// to limit records on or before the cursor, ordered the opposite way.
// The three reads share no snapshot: a collection mutating between them
// can make Total momentarily disagree with the visible window, which is
// accepted.
type CursorCollection[T Sortable] interface {
	FetchWindow(ctx context.Context, params ListParams, limit int) ([]T, error)
	FetchNeighbors(ctx context.Context, params ListParams, limit int) ([]T, error)
	CountAll(ctx context.Context) (int, error)
}

// Paging describes how to navigate around the returned page. Cursors
// are millisecond timestamps, null when there is no page in that
// direction.
type Paging struct {
	Next  *int64 `json:"next"`
	Pages int    `json:"pages"`
	Prev  *int64 `json:"prev"`
	Self  *int64 `json:"self"`
	Total int    `json:"total"`
}

// Page is one slice of an ordered collection plus its paging metadata.
type Page[T Sortable] struct {
	Items  []T
	Paging Paging
}

// Paginate computes one listing page. It fetches limit+1 records so the
// extra row acts as a sentinel: its presence means a further page
// exists, and its sort value (offset one millisecond toward the current
// page) becomes the next cursor. The prev cursor comes from an
// independent opposite-direction fetch, offset the same way, so that
// resubmitting either cursor as start lands exactly on the neighboring
// page.
func Paginate[T Sortable](ctx context.Context, coll CursorCollection[T], params ListParams) (*Page[T], error) {
	if params.Limit <= 0 || params.Limit > MaxPageSize {
		params.Limit = MaxPageSize
	}

	window, err := coll.FetchWindow(ctx, params, params.Limit+1)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch listing page")
	}

	total, err := coll.CountAll(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count collection")
	}

	neighbors, err := coll.FetchNeighbors(ctx, params, params.Limit+1)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch neighboring page")
	}

	page := &Page[T]{
		Items: window,
		Paging: Paging{
			Total: total,
		},
	}

	if len(window) > params.Limit {
		extra := window[params.Limit]
		page.Items = window[:params.Limit]
		page.Paging.Next = offsetCursor(extra.SortValue(params.SortKey), params.Ascending)
	}

	if page.Items == nil {
		page.Items = []T{}
	}

	if len(neighbors) > 0 {
		last := neighbors[len(neighbors)-1]
		page.Paging.Prev = offsetCursor(last.SortValue(params.SortKey), params.Ascending)
	}

	if len(page.Items) > 0 {
		self := page.Items[0].SortValue(params.SortKey).UnixMilli() - 1
		page.Paging.Self = &self
	}

	if total > 0 {
		page.Paging.Pages = (total + params.Limit - 1) / params.Limit
	}

	return page, nil
}

// offsetCursor nudges a boundary timestamp one millisecond back toward
// the page it borders, so the value round-trips as a strict cursor.
func offsetCursor(t time.Time, ascending bool) *int64 {
	ms := t.UnixMilli()
	if ascending {
		ms--
	} else {
		ms++
	}
	return &ms
}
