package stratus

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize matches the server's maximum list page size.
const DefaultPageSize = 1000

// QueryParams represents the query parameters accepted by every list
// endpoint.
type QueryParams struct {
	// Include is the comma-joined field projection.
	Include []string
	// Where is an optional server-side filter expression, e.g.
	// "projectId eq 'abc'".
	Where string
	// Page is the 0-based page index.
	Page int
	// PageSize is the number of records per page.
	PageSize int
	// DisableTotal skips the server-side total count, which is
	// expensive and unused by this client.
	DisableTotal bool
}

// NewQueryParams creates query parameters with the defaults every list
// call uses.
func NewQueryParams(include ...string) *QueryParams {
	return &QueryParams{
		Include:      include,
		PageSize:     DefaultPageSize,
		DisableTotal: true,
	}
}

// Clone returns a copy that can be mutated without affecting the
// original, used by the paginator to advance the page index.
func (p *QueryParams) Clone() *QueryParams {
	clone := *p
	clone.Include = append([]string(nil), p.Include...)

	return &clone
}

// ToValues converts the parameters to url.Values.
func (p *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if len(p.Include) > 0 {
		values.Set("include", strings.Join(p.Include, ","))
	}

	if p.Where != "" {
		values.Set("where", p.Where)
	}

	values.Set("page", strconv.Itoa(p.Page))

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	values.Set("pagesize", strconv.Itoa(pageSize))

	if p.DisableTotal {
		values.Set("disabletotal", "true")
	}

	return values
}
