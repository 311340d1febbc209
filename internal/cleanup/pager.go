package cleanup

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"
)

const (
	// MaxPerPage is the largest page size the Pages list endpoints accept.
	MaxPerPage = 25

	DefaultPagePause   = 500 * time.Millisecond
	DefaultDeletePause = 800 * time.Millisecond
)

// ErrPageRepeated means the endpoint returned the previous page again, which
// happens when it ignores the page parameter.
var ErrPageRepeated = errors.New("page repeats the previous page")

// Sleeper paces calls to the remote API.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ContextSleeper waits on a timer and returns early with the context error
// when ctx is done.
type ContextSleeper struct{}

func (ContextSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PageFunc fetches one page of a list resource. Pages are numbered from 1.
type PageFunc[T any] func(ctx context.Context, page, perPage int) ([]T, error)

type Pager struct {
	PerPage int
	// Pause is slept after every non-empty page before the next request.
	Pause time.Duration
	// SinglePage issues exactly one request, for endpoints that do not paginate.
	SinglePage bool
	Sleeper    Sleeper
}

type EnumerationError struct {
	Page int
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumeration failed on page %d: %v", e.Page, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

func (p Pager) perPage() int {
	switch {
	case p.PerPage < 1:
		return MaxPerPage
	case p.PerPage > MaxPerPage:
		return MaxPerPage
	default:
		return p.PerPage
	}
}

// FetchAll requests successive pages until one comes back empty and returns
// every item in delivery order. A failure on any page discards what was
// already fetched: callers never see a truncated collection.
func FetchAll[T any](ctx context.Context, p Pager, fetch PageFunc[T]) ([]T, error) {
	perPage := p.perPage()
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = ContextSleeper{}
	}

	if p.SinglePage {
		items, err := fetch(ctx, 1, perPage)
		if err != nil {
			return nil, &EnumerationError{Page: 1, Err: err}
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	all := []T{}
	var prev []T
	for page := 1; ; page++ {
		items, err := fetch(ctx, page, perPage)
		if err != nil {
			return nil, &EnumerationError{Page: page, Err: err}
		}
		if len(items) == 0 {
			return all, nil
		}
		if reflect.DeepEqual(items, prev) {
			return nil, &EnumerationError{Page: page, Err: ErrPageRepeated}
		}
		all = append(all, items...)
		prev = items

		if err := sleeper.Sleep(ctx, p.Pause); err != nil {
			return nil, &EnumerationError{Page: page + 1, Err: err}
		}
	}
}
