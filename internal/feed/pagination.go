package feed

import (
	"net/url"
	"strconv"

	"github.com/connectly/backend/internal/util"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams is the sanitized pagination input. Malformed values never
// produce an error; they clamp to defaults so feed URLs are forgiving.
type PageParams struct {
	Page int
	Size int
}

// ParsePageParams reads page and page_size from a query string.
// Non-numeric or non-positive page falls back to 1; non-numeric or
// non-positive size falls back to the default; size caps at MaxPageSize.
func ParsePageParams(query url.Values) PageParams {
	p := PageParams{Page: 1, Size: DefaultPageSize}

	if n := util.ParseInt(query.Get("page"), 0); n >= 1 {
		p.Page = n
	}
	if n := util.ParseInt(query.Get("page_size"), 0); n >= 1 {
		p.Size = n
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Envelope is the wire shape of every paginated response.
type Envelope struct {
	Count       int64       `json:"count"`
	Next        *string     `json:"next"`
	Previous    *string     `json:"previous"`
	CurrentPage int         `json:"current_page"`
	TotalPages  int         `json:"total_pages"`
	Results     interface{} `json:"results"`
}

// TotalPages is ceil(count/size); an empty set still has one page so
// current_page/total_pages stay meaningful.
func TotalPages(count int64, size int) int {
	if count <= 0 {
		return 1
	}
	pages := int((count + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage pulls an out-of-range page back to 1 rather than erroring.
func ClampPage(page int, totalPages int) int {
	if page < 1 || page > totalPages {
		return 1
	}
	return page
}

// BuildEnvelope assembles the response envelope. next and previous are
// the request URL with the page parameter rewritten; nil at the edges.
func BuildEnvelope(requestURL *url.URL, params PageParams, count int64, results interface{}) Envelope {
	totalPages := TotalPages(count, params.Size)

	env := Envelope{
		Count:       count,
		CurrentPage: params.Page,
		TotalPages:  totalPages,
		Results:     results,
	}

	if params.Page < totalPages {
		env.Next = pageURL(requestURL, params.Page+1)
	}
	if params.Page > 1 {
		env.Previous = pageURL(requestURL, params.Page-1)
	}
	return env
}

func pageURL(requestURL *url.URL, page int) *string {
	u := *requestURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
