package stratus

import (
	"context"
)

// ListResponse represents the envelope every list endpoint returns.
type ListResponse[T any] struct {
	Data             []T  `json:"data"`
	TruncatedResults bool `json:"truncatedResults"`
}

// PageFetcher fetches one page of records for the given parameters.
type PageFetcher[T any] func(ctx context.Context, params *QueryParams) (*ListResponse[T], error)

// Iterator walks a paginated listing lazily, one page at a time. The
// sequence is finite and non-restartable. It ends when a page comes back
// empty, shorter than the page size, or flagged as truncated by the
// server. A fetch failure ends the sequence early instead of
// propagating; the swallowed error stays available through Err so
// callers can report a partial fetch.
type Iterator[T any] struct {
	ctx    context.Context
	fetch  PageFetcher[T]
	params *QueryParams
	page   []T
	index  int
	next   int
	pages  int
	done   bool
	err    error
}

// NewIterator creates an iterator over the listing served by fetch,
// starting at page 0. params may be nil for defaults.
func NewIterator[T any](ctx context.Context, fetch PageFetcher[T], params *QueryParams) *Iterator[T] {
	if params == nil {
		params = NewQueryParams()
	}

	return &Iterator[T]{
		ctx:    ctx,
		fetch:  fetch,
		params: params.Clone(),
	}
}

// HasNext reports whether another record is available, fetching the
// next page when the buffered one is exhausted.
func (it *Iterator[T]) HasNext() bool {
	if it.index < len(it.page) {
		return true
	}

	if it.done {
		return false
	}

	it.fetchPage()

	return it.index < len(it.page)
}

// Next returns the next record, or ErrNoMoreItems once the sequence is
// exhausted.
func (it *Iterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		return zero, ErrNoMoreItems
	}

	record := it.page[it.index]
	it.index++

	return record, nil
}

// All drains the remaining records.
func (it *Iterator[T]) All() []T {
	var records []T

	for it.HasNext() {
		records = append(records, it.page[it.index])
		it.index++
	}

	return records
}

// Err returns the fetch error that truncated the sequence, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Pages returns the number of pages fetched so far.
func (it *Iterator[T]) Pages() int {
	return it.pages
}

func (it *Iterator[T]) fetchPage() {
	it.params.Page = it.next

	resp, err := it.fetch(it.ctx, it.params)
	if err != nil {
		it.page = nil
		it.index = 0
		it.done = true
		it.err = err

		return
	}

	it.pages++
	it.page = resp.Data
	it.index = 0
	it.next++

	pageSize := it.params.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if len(resp.Data) == 0 || len(resp.Data) < pageSize || resp.TruncatedResults {
		it.done = true
	}
}

// FetchAll collects every record of a paginated listing. When a page
// fetch fails mid-listing, the records gathered so far are returned
// together with a *PartialFetchError; a clean listing returns a nil
// error.
func FetchAll[T any](ctx context.Context, fetch PageFetcher[T], params *QueryParams) ([]T, error) {
	iterator := NewIterator(ctx, fetch, params)
	records := iterator.All()

	err := iterator.Err()
	if err != nil {
		return records, &PartialFetchError{Pages: iterator.Pages(), Err: err}
	}

	return records, nil
}
