package humastar

import (
	"fmt"
	"net/url"
	"strconv"
)

// DefaultLimit is the page size used when a request does not name one.
const DefaultLimit = 100

// Pager is implemented by response bodies that carry pagination metadata.
type Pager interface {
	PaginationLinks(u url.URL) []string
}

// PageBody is a generic paginated response envelope.
type PageBody[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Current offset"`
	Limit  int `json:"limit" doc:"Page size"`
	Data   []T `json:"data" doc:"Items"`
}

// Paginate slices items into a page. Offsets past the end give an empty page
// and a non-positive limit falls back to DefaultLimit.
func Paginate[T any](items []T, offset, limit int) PageBody[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset = max(offset, 0)
	start := min(offset, len(items))
	end := min(start+limit, len(items))
	data := make([]T, end-start)
	copy(data, items[start:end])
	return PageBody[T]{Total: len(items), Offset: offset, Limit: limit, Data: data}
}

// PaginationLinks returns RFC 8288 first/prev/next/last links. Query
// parameters other than offset and limit are carried over from u.
func (p PageBody[T]) PaginationLinks(u url.URL) []string {
	if p.Limit <= 0 {
		return nil
	}
	link := func(offset int, rel string) string {
		q := u.Query()
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(p.Limit))
		target := url.URL{Path: u.Path, RawQuery: q.Encode()}
		return fmt.Sprintf(`<%s>; rel="%s"`, target.String(), rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	last := max((p.Total-1)/p.Limit*p.Limit, 0)
	return append(links, link(last, "last"))
}
